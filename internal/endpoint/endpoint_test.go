package endpoint_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vermaysha/html2pdf/internal/endpoint"
)

// ---------------------------------------------------------------------------
// TestStore_Read - Record lookup
// ---------------------------------------------------------------------------

func TestStore_Read(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content *string
		want    string
		wantErr error
	}{
		{name: "missing file", content: nil, wantErr: endpoint.ErrNoRecord},
		{name: "empty file", content: ptr(""), wantErr: endpoint.ErrNoRecord},
		{name: "whitespace only", content: ptr("  \n\t"), wantErr: endpoint.ErrNoRecord},
		{name: "address", content: ptr("ws://127.0.0.1:9222/devtools/browser/abc"), want: "ws://127.0.0.1:9222/devtools/browser/abc"},
		{name: "trailing newline trimmed", content: ptr("ws://127.0.0.1:1/x\n"), want: "ws://127.0.0.1:1/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := endpoint.NewStore(t.TempDir())
			if tt.content != nil {
				if err := os.WriteFile(store.Path, []byte(*tt.content), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			got, err := store.Read()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Read() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Read() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Read() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestStore_WriteReadRemove - Full record lifecycle
// ---------------------------------------------------------------------------

func TestStore_WriteReadRemove(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "cache")
	store := endpoint.NewStore(dir)

	if store.Exists() {
		t.Fatal("record should not exist before Write")
	}

	addr := "ws://127.0.0.1:41234/devtools/browser/1"
	if err := store.Write(addr); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !store.Exists() {
		t.Fatal("record should exist after Write")
	}

	info, err := os.Stat(store.Path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 && os.PathSeparator == '/' {
		t.Errorf("record permissions = %o, want 600", perm)
	}

	got, err := store.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != addr {
		t.Errorf("Read() = %q, want %q", got, addr)
	}

	if err := store.Remove(); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if store.Exists() {
		t.Error("record should not exist after Remove")
	}

	// Removing twice is fine.
	if err := store.Remove(); err != nil {
		t.Errorf("second Remove() error = %v", err)
	}
}

func TestStore_WriteEmpty(t *testing.T) {
	t.Parallel()

	store := endpoint.NewStore(t.TempDir())
	if err := store.Write("   "); !errors.Is(err, endpoint.ErrEmptyAddress) {
		t.Errorf("Write(blank) error = %v, want %v", err, endpoint.ErrEmptyAddress)
	}
	if store.Exists() {
		t.Error("blank Write must not create a record")
	}
}

func TestStore_WriteOverwrites(t *testing.T) {
	t.Parallel()

	store := endpoint.NewStore(t.TempDir())
	if err := store.Write("ws://old"); err != nil {
		t.Fatal(err)
	}
	if err := store.Write("ws://new"); err != nil {
		t.Fatal(err)
	}

	got, err := store.Read()
	if err != nil {
		t.Fatal(err)
	}
	if got != "ws://new" {
		t.Errorf("Read() = %q, want ws://new", got)
	}

	entries, err := os.ReadDir(filepath.Dir(store.Path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the record in the cache dir, found %d entries", len(entries))
	}
}

func ptr(s string) *string { return &s }
