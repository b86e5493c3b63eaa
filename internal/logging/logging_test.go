package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveLogDir(t *testing.T) {
	tests := []struct {
		configured, exeDir, want string
	}{
		{"/var/log/notary", "/opt/bin", "/var/log/notary"},
		{"", "/opt/bin", filepath.Join("/opt/bin", "logs")},
		{"", "", "logs"},
	}

	for _, tt := range tests {
		if got := ResolveLogDir(tt.configured, tt.exeDir); got != tt.want {
			t.Errorf("ResolveLogDir(%q, %q) = %q, want %q", tt.configured, tt.exeDir, got, tt.want)
		}
	}
}

func TestNewFileWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	w, err := NewFileWriter(dir)
	if err != nil {
		t.Fatalf("NewFileWriter failed: %v", err)
	}
	defer w.Close()

	if w.Filename != filepath.Join(dir, LogFileName) {
		t.Errorf("unexpected log file %q", w.Filename)
	}
	if _, err := os.Stat(filepath.Join(dir, ".write-test")); !os.IsNotExist(err) {
		t.Error("expected write probe to be removed")
	}
	if _, err := w.Write([]byte("hello\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}
