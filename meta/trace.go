package meta

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/skarn-lang/skarn/internal/log"
)

// TraceOption names one observational trace stream.
type TraceOption string

const (
	// TraceElimDebug is the fine-grained stream of the elimination core:
	// one line per constructor-field recursion.
	TraceElimDebug TraceOption = "elim.debug"
)

// TraceConfig is a read-only snapshot of enabled trace options, taken when
// the caller builds a simplifier. The zero value has every stream disabled
// and Emit is a no-op, so callers that never trace pay nothing.
type TraceConfig struct {
	run     string
	enabled map[TraceOption]struct{}
	out     *slog.Logger
}

// NewTraceConfig snapshots the given options under a fresh run id.
func NewTraceConfig(opts ...TraceOption) TraceConfig {
	enabled := make(map[TraceOption]struct{}, len(opts))
	for _, opt := range opts {
		enabled[opt] = struct{}{}
	}
	return TraceConfig{
		run:     uuid.NewString(),
		enabled: enabled,
		out:     log.DefaultLogger,
	}
}

// WithLogger redirects emission, keeping options and run id. Tests use this
// to capture the stream.
func (c TraceConfig) WithLogger(out *slog.Logger) TraceConfig {
	c.out = out
	return c
}

func (c TraceConfig) Enabled(opt TraceOption) bool {
	_, ok := c.enabled[opt]
	return ok
}

// Run is the id shared by every line of one invocation.
func (c TraceConfig) Run() string {
	return c.run
}

// Emit logs msg on the option's stream when it is enabled. The option name
// doubles as the log section, so the usual section filter applies.
func (c TraceConfig) Emit(opt TraceOption, msg string, attrs ...any) {
	if c.out == nil || !c.Enabled(opt) {
		return
	}
	base := []any{"section", string(opt), "run", c.run}
	c.out.Info(msg, append(base, attrs...)...)
}
