package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"quantlab/internal/series"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prices.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}
	return path
}

func TestLoadCSV_SortsAndParses(t *testing.T) {
	// 行故意乱序，close 列在前。
	path := writeTempCSV(t, `close,date
101.5,2020-01-02
100.0,2020-01-01
103.25,2020-01-03
`)

	prices, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV returned error: %v", err)
	}
	if prices.Len() != 3 {
		t.Fatalf("loaded %d rows, want 3", prices.Len())
	}

	want := []float64{100.0, 101.5, 103.25}
	for i, p := range prices.Prices {
		if p != want[i] {
			t.Errorf("price[%d] = %f, want %f", i, p, want[i])
		}
	}
	for i := 1; i < prices.Len(); i++ {
		if !prices.Timestamps[i].After(prices.Timestamps[i-1]) {
			t.Errorf("timestamps not ascending at %d", i)
		}
	}
}

func TestLoadCSV_MissingCloseColumn(t *testing.T) {
	path := writeTempCSV(t, `date,price
2020-01-01,100
2020-01-02,101
`)

	if _, err := LoadCSV(path); !errors.Is(err, series.ErrInvalidInput) {
		t.Errorf("missing close column: want ErrInvalidInput, got %v", err)
	}
}

func TestLoadCSV_MissingDateColumn(t *testing.T) {
	path := writeTempCSV(t, `timestamp,close
2020-01-01,100
`)

	if _, err := LoadCSV(path); !errors.Is(err, series.ErrInvalidInput) {
		t.Errorf("missing date column: want ErrInvalidInput, got %v", err)
	}
}

func TestLoadCSV_BadValues(t *testing.T) {
	badPrice := writeTempCSV(t, `date,close
2020-01-01,100
2020-01-02,not-a-number
`)
	if _, err := LoadCSV(badPrice); !errors.Is(err, series.ErrInvalidInput) {
		t.Errorf("bad price: want ErrInvalidInput, got %v", err)
	}

	badDate := writeTempCSV(t, `date,close
2020-01-01,100
someday,101
`)
	if _, err := LoadCSV(badDate); !errors.Is(err, series.ErrInvalidInput) {
		t.Errorf("bad date: want ErrInvalidInput, got %v", err)
	}

	negative := writeTempCSV(t, `date,close
2020-01-01,100
2020-01-02,-5
`)
	if _, err := LoadCSV(negative); !errors.Is(err, series.ErrInvalidInput) {
		t.Errorf("negative price: want ErrInvalidInput, got %v", err)
	}
}

func TestLoadCSV_FileNotFound(t *testing.T) {
	if _, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
