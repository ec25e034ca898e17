//go:build !linux

package process

import (
	"errors"
	"testing"
)

func TestStubCollectorBehavior(t *testing.T) {
	if _, err := NewCollector("/proc", 1000, nil); !errors.Is(err, errUnsupported) {
		t.Fatalf("expected errUnsupported, got %v", err)
	}

	var c Collector
	if entries, err := c.Collect(); err != errUnsupported || entries != nil {
		t.Fatalf("collect should fail with errUnsupported, got entries=%v err=%v", entries, err)
	}
	if uid := c.UID(); uid != 0 {
		t.Fatalf("expected zero uid, got %d", uid)
	}
}
