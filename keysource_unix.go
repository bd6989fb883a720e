//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package serialteleop

import (
	"os"

	"github.com/bft-labs/serialteleop/internal/adapters/terminal"
)

func defaultKeySource() KeySource {
	return terminal.New(os.Stdin)
}
