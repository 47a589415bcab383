package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kyaw-zaya123/checking/internal/config"
)

func TestKey(t *testing.T) {
	tests := []struct {
		prefix, attempt, want string
	}{
		{"comparisons", "abc", "comparisons/abc.html"},
		{"/nested/dir/", "abc", "nested/dir/abc.html"},
		{"", "abc", "abc.html"},
	}

	for _, tt := range tests {
		if got := Key(tt.prefix, tt.attempt); got != tt.want {
			t.Errorf("Key(%q, %q) = %q, want %q", tt.prefix, tt.attempt, got, tt.want)
		}
	}
}

func TestLocalPut(t *testing.T) {
	dir := t.TempDir()
	store := NewLocal(dir)

	location, err := store.Put(context.Background(), "comparisons/abc.html", []byte("<html></html>"), "text/html")
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if location != filepath.Join(dir, "comparisons", "abc.html") {
		t.Errorf("unexpected location %s", location)
	}

	data, err := os.ReadFile(location)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<html></html>" {
		t.Errorf("unexpected content %q", data)
	}

	entries, _ := os.ReadDir(filepath.Join(dir, "comparisons"))
	if len(entries) != 1 {
		t.Errorf("expected only the archived file, found %d entries", len(entries))
	}
}

func TestLocalPut_RejectsEscapingKeys(t *testing.T) {
	store := NewLocal(t.TempDir())

	for _, key := range []string{"../outside.html", "a/../../outside.html", "/etc/passwd"} {
		if _, err := store.Put(context.Background(), key, []byte("x"), "text/html"); err == nil {
			t.Errorf("expected error for key %q", key)
		}
	}
}

func TestLocalPut_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewLocal(t.TempDir()).Put(ctx, "a.html", nil, "text/html"); err == nil {
		t.Error("expected context error")
	}
}

func TestNew(t *testing.T) {
	cfg := config.New()

	store, err := New(context.Background(), cfg, nil, nil)
	if err != nil || store != nil {
		t.Errorf("disabled archive: store=%v err=%v", store, err)
	}

	cfg.Output.ArchiveBackend = "local"
	cfg.Output.ArchiveDir = t.TempDir()
	store, err = New(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if store.Name() != "local" {
		t.Errorf("expected local store, got %s", store.Name())
	}

	cfg.Output.ArchiveBackend = "azure"
	cfg.Output.AzureServiceURL = "https://acct.blob.core.windows.net/?sv=2024&sig=x"
	cfg.Output.AzureContainer = "reports"
	store, err = New(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if store.Name() != "azure" {
		t.Errorf("expected azure store, got %s", store.Name())
	}

	cfg.Output.ArchiveBackend = "tape"
	if _, err := New(context.Background(), cfg, nil, nil); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestAzureBlobURLDropsSAS(t *testing.T) {
	store, err := NewAzureStore("https://acct.blob.core.windows.net/?sv=2024&sig=secret", "reports", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := store.blobURL("comparisons/abc.html")
	if got != "https://acct.blob.core.windows.net/reports/comparisons/abc.html" {
		t.Errorf("blobURL = %s", got)
	}
}
