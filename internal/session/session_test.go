package session

import "testing"

func TestNew_UniqueIDs(t *testing.T) {
	a, b := New(), New()
	if a.ID == "" {
		t.Fatal("expected non-empty session ID")
	}
	if a.ID == b.ID {
		t.Fatal("expected two sessions to get distinct IDs")
	}
	if a.String() != a.ID {
		t.Errorf("String() = %q, want %q", a.String(), a.ID)
	}
}
