// Package dblock serializes test packages that share one Postgres database.
package dblock

import (
	"net"
	"os"
	"time"
)

const defaultLockAddr = "127.0.0.1:45433"

// Acquire blocks until this process owns the lock and returns its release
// func. The lock is a listening TCP socket, so it dies with the process.
func Acquire() func() {
	addr := os.Getenv("LEDGER_TEST_LOCK_ADDR")
	if addr == "" {
		addr = defaultLockAddr
	}
	for {
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			return func() { ln.Close() }
		}
		time.Sleep(50 * time.Millisecond)
	}
}
