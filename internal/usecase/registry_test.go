package usecase

import "testing"

func TestRegistry_LookupIsCaseInsensitive(t *testing.T) {
	r := testRegistry()
	for _, id := range []string{"sp500", "SP500", "Sp500"} {
		idx, ok := r.Lookup(id)
		if !ok {
			t.Fatalf("lookup %q failed", id)
		}
		if idx.ID != "sp500" {
			t.Errorf("lookup %q: canonical id %q, want sp500", id, idx.ID)
		}
	}
	if _, ok := r.Lookup("ftse100"); ok {
		t.Error("unregistered index must not resolve")
	}
}

func TestRegistry_ListIsStable(t *testing.T) {
	r := testRegistry()
	if got := len(r.List()); got != 2 {
		t.Fatalf("expected 2 indices, got %d", got)
	}
}
