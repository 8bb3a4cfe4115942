package go_func_utils

import (
	"runtime/debug"

	"github.com/charmbracelet/log"
)

// SafeGo runs fn on a new goroutine. A panic is written to logger with its
// stack before it is re-raised, since the terminal UI hides stderr.
func SafeGo(logger *log.Logger, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("PANIC: %v\n%s", r, debug.Stack())
				panic(r)
			}
		}()
		fn()
	}()
}
