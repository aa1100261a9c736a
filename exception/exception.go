package exception

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/mezonai/token/logx"
	"github.com/mezonai/token/monitoring"
)

// SafeGo runs fn on a new goroutine and logs a panic instead of crashing the node.
func SafeGo(name string, fn func()) {
	go func() {
		defer recoverAndLog(name)
		fn()
	}()
}

// SafeGoWithPanic is SafeGo for goroutines the node cannot run without: a panic
// is logged and the process exits.
func SafeGoWithPanic(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				report(name, r)
				os.Exit(1)
			}
		}()
		fn()
	}()
}

func recoverAndLog(name string) {
	if r := recover(); r != nil {
		report(name, r)
	}
}

func report(name string, r interface{}) {
	monitoring.IncreasePanicCount()
	logx.Error("PANIC", fmt.Sprintf("Panic in %s: %v\n%s", name, r, debug.Stack()))
}
