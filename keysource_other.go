//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package serialteleop

import (
	"fmt"
	"time"

	"github.com/bft-labs/serialteleop/internal/domain"
)

// unsupportedKeys fails raw mode entry on platforms without termios.
type unsupportedKeys struct{}

func (unsupportedKeys) EnterRawMode() error {
	return fmt.Errorf("%w: raw keyboard input is not supported on this platform", domain.ErrTerminal)
}

func (unsupportedKeys) PollKey(time.Duration) (byte, bool, error) { return 0, false, nil }
func (unsupportedKeys) Restore() error                            { return nil }

func defaultKeySource() KeySource {
	return unsupportedKeys{}
}
