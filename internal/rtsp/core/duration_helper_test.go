package core

import (
	"testing"
	"time"
)

func mustParse(t *testing.T, s string, out *time.Duration) {
	t.Helper()
	d, err := time.ParseDuration(s)
	if err != nil {
		t.Fatalf("parse duration %q: %v", s, err)
	}
	*out = d
}
