//go:build !unix

package cli

import "os"

func notifyForeground() (<-chan os.Signal, func()) {
	return nil, func() {}
}
