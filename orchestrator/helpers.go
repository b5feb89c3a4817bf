package orchestrator

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/maastricht-university/stress-features/features"
)

// FindWavFiles walks root and returns every regular file with a ".wav"
// extension, case-insensitively.
func FindWavFiles(root string) ([]AudioFile, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", abs)
	}
	var out []AudioFile
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || !strings.EqualFold(filepath.Ext(path), ".wav") {
			return nil
		}
		rel, err := filepath.Rel(abs, path)
		if err != nil {
			return err
		}
		out = append(out, AudioFile{Path: path, RelPath: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LabelFor returns the stress label (parent directory name) and display
// name (base name) of a recording.
func LabelFor(path string) (stressLevel, name string) {
	return filepath.Base(filepath.Dir(path)), filepath.Base(path)
}

// Summarize computes mean, median, min and max of every column of m.
func Summarize(m features.Matrix, stressLevel string, t features.Type, name string) []Record {
	cols := m.Cols()
	if m.Rows() == 0 || cols == 0 {
		return nil
	}
	out := make([]Record, 0, cols)
	for j := 0; j < cols; j++ {
		col := m.Column(j)
		out = append(out, Record{
			StressLevel: stressLevel,
			Type:        t,
			FileName:    name,
			Mean:        stat.Mean(col, nil),
			Median:      median(col),
			Min:         floats.Min(col),
			Max:         floats.Max(col),
		})
	}
	return out
}

// median averages the two middle values for even lengths. col is sorted in
// place.
func median(col []float64) float64 {
	sort.Float64s(col)
	n := len(col)
	if n%2 == 1 {
		return col[n/2]
	}
	return (col[n/2-1] + col[n/2]) / 2
}

// Table is the append-only log of statistics records for one run.
type Table struct {
	records []Record
}

// Append adds recs in order.
func (t *Table) Append(recs ...Record) {
	t.records = append(t.records, recs...)
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.records) }

// Records returns the records in insertion order.
func (t *Table) Records() []Record { return t.records }
