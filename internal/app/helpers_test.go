package app

import (
	"os"
	"path/filepath"
	"testing"
)

func writeBadCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prices.csv")
	content := "date,price\n2020-01-01,100\n2020-01-02,101\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv fixture: %v", err)
	}
	return path
}
