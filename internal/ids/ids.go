package ids

import "github.com/segmentio/ksuid"

// New returns a k-sortable identifier; later ids sort after earlier ones.
func New() string {
	return ksuid.New().String()
}
