package orchestrator

import "testing"

func TestAnOpenPortReturnsEphemeralPort(t *testing.T) {
	port, err := anOpenPort()
	if err != nil {
		t.Fatalf("anOpenPort: %v", err)
	}
	if port == 0 {
		t.Fatal("expected a non-zero ephemeral port")
	}
}

func TestMojikaDirIsCreated(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir, err := mojikaDir()
	if err != nil {
		t.Fatalf("mojikaDir: %v", err)
	}
	if dir == "" {
		t.Fatal("expected a non-empty download dir")
	}
}

func TestNewWiresEveryComponent(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	o, err := New()
	if err != nil {
		t.Skipf("networking unavailable in this sandbox: %v", err)
	}
	if o.Self().ID == "" {
		t.Fatal("expected a generated self id")
	}
	if o.DownloadDir() == "" {
		t.Fatal("expected a resolved download dir")
	}
	if o.Registry() == nil {
		t.Fatal("expected a non-nil registry")
	}
}
