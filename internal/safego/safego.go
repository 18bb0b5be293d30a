// Package safego runs background work in panic-recovering goroutines,
// so a bug in one detached hook or removal job can't take the
// foreground CLI process down with it.
//
// Grounded on the teacher's internal/recovery.SafeGo, rewired onto
// internal/logx's zerolog logger instead of the stdlib log package.
package safego

import (
	"runtime/debug"

	"github.com/worktrunk/worktrunk/internal/logx"
)

// Go runs fn in a goroutine, logging and recovering any panic instead
// of letting it propagate.
func Go(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logx.Logger.Error().
					Interface("panic", r).
					Str("goroutine", name).
					Bytes("stack", debug.Stack()).
					Msg("recovered panic in background goroutine")
			}
		}()
		fn()
	}()
}
