package adapter

import (
	"context"
	"errors"
	"testing"
)

// stubAdapter fills the registry in tests without a real driver.
type stubAdapter struct {
	name string
	port int
}

func (s *stubAdapter) Name() string     { return s.name }
func (s *stubAdapter) DefaultPort() int { return s.port }
func (s *stubAdapter) Connect(context.Context, string) (Connection, error) {
	return nil, errors.New("stub: not implemented")
}

// freshRegistry empties Registry for one test and restores it afterwards,
// since driver subpackages may have registered themselves already.
func freshRegistry(t *testing.T) {
	t.Helper()
	saved := Registry
	Registry = map[string]Adapter{}
	t.Cleanup(func() { Registry = saved })
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

func TestRegister(t *testing.T) {
	freshRegistry(t)

	Register(&stubAdapter{name: "testdb", port: 9999})

	got, ok := Registry["testdb"]
	if !ok {
		t.Fatal("Register should key the adapter by its name")
	}
	if got.Name() != "testdb" || got.DefaultPort() != 9999 {
		t.Errorf("registered adapter = %q port %d", got.Name(), got.DefaultPort())
	}
}

func TestRegisterSeveral(t *testing.T) {
	freshRegistry(t)

	engines := []struct {
		name string
		port int
	}{
		{"alpha", 1111},
		{"bravo", 2222},
		{"charlie", 3333},
	}
	for _, e := range engines {
		Register(&stubAdapter{name: e.name, port: e.port})
	}

	if len(Registry) != len(engines) {
		t.Fatalf("registry holds %d adapters, want %d", len(Registry), len(engines))
	}
	for _, e := range engines {
		got, ok := Registry[e.name]
		if !ok {
			t.Errorf("%q missing from registry", e.name)
			continue
		}
		if got.DefaultPort() != e.port {
			t.Errorf("%q port = %d, want %d", e.name, got.DefaultPort(), e.port)
		}
	}
}

func TestLookup(t *testing.T) {
	freshRegistry(t)
	Register(&stubAdapter{name: "testdb", port: 1234})

	a, err := Lookup("testdb")
	if err != nil {
		t.Fatalf("Lookup(testdb): %v", err)
	}
	if a.Name() != "testdb" {
		t.Errorf("Lookup(testdb).Name() = %q", a.Name())
	}

	if _, err := Lookup("missing"); err == nil {
		t.Error("Lookup of an unregistered engine should fail")
	}
}

// ---------------------------------------------------------------------------
// Shared types
// ---------------------------------------------------------------------------

func TestQueryResultShape(t *testing.T) {
	sel := QueryResult{IsSelect: true, RowCount: 5, Columns: []string{"id"}}
	if !sel.IsSelect {
		t.Error("row-returning result should keep IsSelect")
	}

	exec := QueryResult{RowCount: 1, Message: "INSERT 0 1"}
	if exec.IsSelect {
		t.Error("exec result should not be marked IsSelect")
	}
}

func TestSentinelErrorsDistinct(t *testing.T) {
	if ErrNotConnected == nil || ErrCancelled == nil {
		t.Fatal("sentinel errors must be non-nil")
	}
	if errors.Is(ErrNotConnected, ErrCancelled) {
		t.Error("ErrNotConnected and ErrCancelled must be distinct")
	}
}
