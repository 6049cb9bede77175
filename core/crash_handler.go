package core

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync/atomic"
)

// CrashHandler receives the recovered value of a panicking goroutine
type CrashHandler func(r any, stack []byte)

var crashHandler atomic.Pointer[CrashHandler]

// SetCrashHandler installs h for goroutines started with Go
// The terminal shell uses this to restore the screen before the process exits
func SetCrashHandler(h CrashHandler) {
	if h == nil {
		crashHandler.Store(nil)
		return
	}
	crashHandler.Store(&h)
}

// HandleCrash routes r to the installed handler, or prints the stack trace and exits
func HandleCrash(r any) {
	if r == nil {
		return
	}

	stack := debug.Stack()
	if h := crashHandler.Load(); h != nil {
		(*h)(r, stack)
		return
	}

	// Force flush stdout before printing to stderr
	os.Stdout.Sync()
	fmt.Fprintf(os.Stderr, "\r\n\x1b[31mCRASH DETECTED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", stack)
	os.Stderr.Sync()

	os.Exit(1)
}

// Go runs a function in a new goroutine with panic recovery.
// Use this instead of the 'go' keyword so a crash reaches the handler.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
