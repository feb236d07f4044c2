package calculator

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter indicates a non-positive window or one that exceeds
// the available history for a function with a hard minimum.
var ErrInvalidParameter = errors.New("calculator: invalid parameter")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidParameter}, args...)...)
}
