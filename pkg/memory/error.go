package memory

import "fmt"

// NotFoundError is returned when an item id cannot be resolved, directly or
// through merge aliases.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("memory item not found: %s", e.ID)
}
