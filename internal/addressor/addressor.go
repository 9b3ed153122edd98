// Package addressor hands out channel addresses in the order a payload is
// written to, and read back from, an image.
package addressor

import (
	"fmt"
)

// Addressor returns the next channel address on each call, or an *EmptyPoolError once exhausted.
type Addressor func() (int64, error)

// EmptyPoolError is returned when an addressor is called after handing out every address.
type EmptyPoolError struct {
	Handed int64
}

func (e *EmptyPoolError) Error() string {
	return fmt.Sprintf("The pool of channel addresses is empty after %d addresses.", e.Handed)
}

// Sequential hands out 0, 1, ..., channels-1, then fails.
func Sequential(channels int64) Addressor {
	pos := int64(-1)
	return func() (int64, error) {
		if pos+1 >= channels {
			return -1, &EmptyPoolError{Handed: max(channels, 0)}
		}
		pos++
		return pos, nil
	}
}
