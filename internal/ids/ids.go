package ids

import "github.com/segmentio/ksuid"

// New returns a new sortable, globally unique id string.
func New() string {
	return ksuid.New().String()
}
