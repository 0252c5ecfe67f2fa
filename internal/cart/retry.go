package cart

import (
	"errors"

	"github.com/joao-fontenele/dineahead/internal/domain"
)

// RetryOnConflict runs fn and, if it lost an optimistic-concurrency race,
// runs it exactly once more. A second conflict is returned to the caller.
func RetryOnConflict(fn func() error) error {
	err := fn()
	if errors.Is(err, domain.ErrConflict) {
		err = fn()
	}
	return err
}
