package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync/atomic"

	"github.com/lixenwraith/keyflow/termio"
)

// crashTerminal is restored by handleCrash once set
var crashTerminal atomic.Pointer[termio.Terminal]

// handleCrash resets the terminal and prints the stack trace, then exits
func handleCrash(r any) {
	if r == nil {
		return
	}

	if t := crashTerminal.Load(); t != nil {
		termio.EmergencyReset(t)
	}
	_ = os.Stdout.Sync()

	// \r\n: the line discipline may still be raw
	fmt.Fprintf(os.Stderr, "\r\n\x1b[31mKEYFLOW CRASHED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
	_ = os.Stderr.Sync()

	os.Exit(1)
}

// crashSafe wraps a goroutine body so a panic restores the terminal before exit
func crashSafe(fn func() error) func() error {
	return func() error {
		defer func() {
			if r := recover(); r != nil {
				handleCrash(r)
			}
		}()
		return fn()
	}
}
