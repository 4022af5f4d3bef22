package registry

import "testing"

func TestRegistry_SetGet(t *testing.T) {
	r := NewRegistry()
	r.SetGlobal("k", 42)
	v, ok := r.GetGlobal("k")
	if !ok || v != 42 {
		t.Errorf("GetGlobal = %v, %v; want 42, true", v, ok)
	}
	if _, ok := r.GetGlobal("missing"); ok {
		t.Error("GetGlobal missing: want false")
	}
}

func TestRegistry_LockedSetPanics(t *testing.T) {
	r := NewRegistry()
	r.Lock("k")
	if !r.IsLocked("k") {
		t.Fatal("IsLocked = false after Lock")
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic on SetGlobal of locked key")
		}
	}()
	r.SetGlobal("k", 1)
}

func TestRegistry_UnlockForTesting(t *testing.T) {
	r := NewRegistry()
	r.Lock("k")
	r.UnlockForTesting("k")
	if r.IsLocked("k") {
		t.Error("IsLocked = true after UnlockForTesting")
	}
	r.SetGlobal("k", "ok")
}

func TestRegistry_AppendList(t *testing.T) {
	r := NewRegistry()
	Append(r, "jobs", "tokens:purge")
	Append(r, "jobs", "stock:lowalert")

	got := List[string](r, "jobs")
	if len(got) != 2 || got[0] != "tokens:purge" || got[1] != "stock:lowalert" {
		t.Fatalf("List = %v", got)
	}
	got[0] = "changed"
	if List[string](r, "jobs")[0] != "tokens:purge" {
		t.Error("List returned the stored slice, want a copy")
	}
	if len(List[int](r, "jobs")) != 0 {
		t.Error("List with the wrong element type should be empty")
	}

	r.Lock("jobs")
	defer func() {
		if recover() == nil {
			t.Error("expected panic on Append to locked key")
		}
	}()
	Append(r, "jobs", "search:reindex")
}
