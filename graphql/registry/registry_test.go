package registry

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRegisterResolve(t *testing.T) {
	defer Unregister("binCount")
	Register("binCount", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		zone, err := StringArg(args, "zone", true)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"zone": zone, "bins": 4}, nil
	})

	got, err := Resolve(context.Background(), "binCount", map[string]interface{}{"zone": " A "})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m := got.(map[string]interface{}); m["zone"] != "A" || m["bins"] != 4 {
		t.Errorf("got %v", m)
	}

	_, err = Resolve(context.Background(), "binCount", nil)
	if err == nil || err.Error() != "binCount: zone is required" {
		t.Errorf("err = %v, want binCount: zone is required", err)
	}
}

func TestResolveUnknown(t *testing.T) {
	defer Unregister("nonexistent")
	_, err := Resolve(context.Background(), "nonexistent", nil)
	if err == nil || !strings.Contains(err.Error(), "unknown extension") {
		t.Fatalf("err = %v, want unknown extension", err)
	}
}

func TestResolveWrapsError(t *testing.T) {
	defer Unregister("failing")
	boom := errors.New("boom")
	Register("failing", func(context.Context, map[string]interface{}) (interface{}, error) { return nil, boom })
	if _, err := Resolve(context.Background(), "failing", nil); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
}

func TestNamesSorted(t *testing.T) {
	noop := func(context.Context, map[string]interface{}) (interface{}, error) { return nil, nil }
	defer Unregister("zoneTotals")
	defer Unregister("abcAnalysis")
	Register("zoneTotals", noop)
	Register("abcAnalysis", noop)

	names := Names()
	ia, iz := -1, -1
	for i, n := range names {
		switch n {
		case "abcAnalysis":
			ia = i
		case "zoneTotals":
			iz = i
		}
	}
	if ia < 0 || iz < 0 || ia > iz {
		t.Errorf("Names() = %v", names)
	}
}

func TestDuplicatePanics(t *testing.T) {
	defer Unregister("dup")
	noop := func(context.Context, map[string]interface{}) (interface{}, error) { return nil, nil }
	Register("dup", noop)
	defer func() {
		if recover() == nil {
			t.Error("want panic on duplicate name")
		}
	}()
	Register("dup", noop)
}

func TestRegisterAfterResolvePanics(t *testing.T) {
	Resolve(context.Background(), "nonexistent", nil)
	defer func() {
		if recover() == nil {
			t.Error("want panic after first Resolve")
		}
		Unregister("late")
	}()
	Register("late", func(context.Context, map[string]interface{}) (interface{}, error) { return nil, nil })
}

func TestArgs(t *testing.T) {
	args := map[string]interface{}{"sku": "P-1", "limit": float64(5), "bad": 1.5, "num": 3}
	if s, err := StringArg(args, "sku", true); err != nil || s != "P-1" {
		t.Errorf("StringArg = %q, %v", s, err)
	}
	if s, err := StringArg(args, "missing", false); err != nil || s != "" {
		t.Errorf("optional StringArg = %q, %v", s, err)
	}
	if _, err := StringArg(args, "num", false); err == nil {
		t.Error("want error for non-string")
	}
	if n, err := IntArg(args, "limit", 10); err != nil || n != 5 {
		t.Errorf("IntArg = %d, %v", n, err)
	}
	if n, _ := IntArg(args, "missing", 10); n != 10 {
		t.Errorf("IntArg fallback = %d", n)
	}
	if _, err := IntArg(args, "bad", 0); err == nil {
		t.Error("want error for fractional value")
	}
}
