//go:build js && wasm

package skarn

import (
	"context"
	"fmt"
	"strings"
	"syscall/js"

	"github.com/skarn-lang/skarn/skerr"
)

// SimplifyGoalJS takes a goal file as YAML text and returns the rendered
// outcome of a full simplification run, or the problems that stopped it.
func SimplifyGoalJS(_ js.Value, args []js.Value) (ret any) {
	defer func() {
		if r := recover(); r != nil {
			ret = "simplifier panicked: " + fmt.Sprint(r)
		}
	}()

	loaded, errText := loadFromString(args[0].String())
	if errText != "" {
		return errText
	}
	report, err := SimplifyAll(context.Background(), loaded.Simplifier(), loaded.Goal)
	if err != nil {
		return fmt.Sprintf("simplification failed:\n%s", err)
	}
	return RenderReport(report)
}

// ShowGoalJS renders the goal a YAML description loads into, without
// simplifying it.
func ShowGoalJS(_ js.Value, args []js.Value) (ret any) {
	defer func() {
		if r := recover(); r != nil {
			ret = "loader panicked: " + fmt.Sprint(r)
		}
	}()

	loaded, errText := loadFromString(args[0].String())
	if errText != "" {
		return errText
	}
	return RenderGoal(loaded.Goal)
}

func loadFromString(src string) (*LoadedGoal, string) {
	loaded, err := ParseGoalFile([]byte(src), "goal.yaml")
	if err != nil {
		return nil, fmt.Sprintf("the loader encountered a failure:\n\n%s", err)
	}
	if loaded.Errors().HasError() {
		sb := strings.Builder{}
		sb.WriteString("the goal file has the following problems:\n")
		for _, problem := range loaded.Errors().Errors() {
			sb.WriteString(skerr.FormatWithCode(problem))
			sb.WriteByte('\n')
		}
		return nil, sb.String()
	}
	return loaded, ""
}
