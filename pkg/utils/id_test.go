package utils

import (
	"strings"
	"sync"
	"testing"
)

func TestGenerateRunID(t *testing.T) {
	id := GenerateRunID()
	if !strings.HasPrefix(id, "rep-") {
		t.Errorf("GenerateRunID() = %s, want rep- prefix", id)
	}
	if !IsRunID(id) {
		t.Errorf("IsRunID(%s) = false", id)
	}
}

func TestIsRunID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"rep-1b4e28ba-2fa1-11d2-883f-0016d3cca427", true},
		{"run-1b4e28ba-2fa1-11d2-883f-0016d3cca427", false},
		{"rep-not-a-uuid", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsRunID(tt.id); got != tt.want {
			t.Errorf("IsRunID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestRunIDConcurrency(t *testing.T) {
	const n = 100
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- GenerateRunID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate run ID %s", id)
		}
		seen[id] = true
	}
}
