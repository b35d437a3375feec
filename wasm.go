//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/skarn-lang/skarn/skarn"
)

func main() {
	js.Global().Set("SimplifyGoal", js.FuncOf(skarn.SimplifyGoalJS))
	js.Global().Set("ShowGoal", js.FuncOf(skarn.ShowGoalJS))

	// wait indefinitely so that Go does not terminate execution
	// and the functions remain available
	<-make(chan struct{})
}
