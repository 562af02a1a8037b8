package core

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync"
)

var (
	cleanupMu sync.Mutex
	cleanups  []func()
)

// RegisterCrashCleanup adds a function run before the process dies on panic
// Used by the terminal view to restore the screen so the trace stays readable
func RegisterCrashCleanup(fn func()) {
	cleanupMu.Lock()
	defer cleanupMu.Unlock()
	cleanups = append(cleanups, fn)
}

// HandleCrash is the unified panic handler that runs cleanups and prints the stack trace
func HandleCrash(r any) {
	if r == nil {
		return
	}

	cleanupMu.Lock()
	fns := cleanups
	cleanups = nil
	cleanupMu.Unlock()
	for _, fn := range fns {
		fn()
	}

	os.Stdout.Sync()
	os.Stderr.Sync()

	fmt.Fprintf(os.Stderr, "\r\nCRASH DETECTED: %v\r\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())

	os.Stderr.Sync()
	os.Exit(1)
}

// Go runs a function in a new goroutine with panic recovery.
// Use this instead of the 'go' keyword to ensure screen cleanup on crash.
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
