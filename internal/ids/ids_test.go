package ids

import (
	"testing"
	"time"
)

func TestNewIsUnique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := New()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = struct{}{}
	}
}

func TestNewSortsByTime(t *testing.T) {
	first := New()
	time.Sleep(1100 * time.Millisecond)
	second := New()
	if !(first < second) {
		t.Fatalf("expected %s < %s", first, second)
	}
}
