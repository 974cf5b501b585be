package chatid

import (
	"strings"
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		prefix     string
		wantPrefix string
	}{
		{name: "conversation id", prefix: "conv", wantPrefix: "conv_"},
		{name: "upload id", prefix: "upl", wantPrefix: "upl_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.prefix)
			if !strings.HasPrefix(got, tt.wantPrefix) {
				t.Errorf("New(%q) = %q, want prefix %q", tt.prefix, got, tt.wantPrefix)
			}
			if !IsValid(tt.prefix, got) {
				t.Errorf("IsValid(%q, %q) = false, want true", tt.prefix, got)
			}
		})
	}
}

func TestNewUniqueness(t *testing.T) {
	const n = 1000
	seen := make(map[string]struct{}, n)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := New("conv")
			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	if len(seen) != n {
		t.Errorf("generated %d unique ids, want %d", len(seen), n)
	}
}

func TestParse(t *testing.T) {
	id := New("conv")
	if _, err := Parse("conv", id); err != nil {
		t.Errorf("Parse(%q) error = %v", id, err)
	}
	if _, err := Parse("conv", "upl_01hq3zx7e9fake00000000000"); err == nil {
		t.Error("Parse() with wrong prefix should fail")
	}
	if IsValid("conv", "conv_not-a-ulid") {
		t.Error("IsValid() with malformed ULID should be false")
	}
}
