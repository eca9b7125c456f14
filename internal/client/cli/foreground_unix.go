//go:build unix

package cli

import (
	"os"
	"os/signal"
	"syscall"
)

// notifyForeground reports SIGCONT, sent when a stopped job is resumed.
func notifyForeground() (<-chan os.Signal, func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGCONT)
	return ch, func() { signal.Stop(ch) }
}
