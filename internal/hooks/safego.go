package hooks

import "github.com/worktrunk/worktrunk/internal/safego"

// safeGo runs fn in a panic-recovering background goroutine, so a bug
// in one background hook can't take the foreground CLI process down
// with it. Thin alias over internal/safego, which both this package
// and internal/lifecycle's removal jobs share.
func safeGo(name string, fn func()) {
	safego.Go(name, fn)
}
