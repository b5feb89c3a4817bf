package orchestrator

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/maastricht-university/stress-features/features"
)

// AggregateFile is the name of the statistics table under the output root.
const AggregateFile = "aggregated_statistics.csv"

var aggregateHeader = []string{"Stress Level", "Coefficient Type", "File Name", "Mean", "Median", "Min", "Max"}

// Sink receives every delimited file the pipeline produces.
type Sink interface {
	Write(path string, rows [][]string) error
}

// FileSink writes comma separated files, creating parent directories as
// needed and truncating existing files.
type FileSink struct{}

func (FileSink) Write(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// MemorySink keeps written files in memory. A second write to the same path
// replaces the first.
type MemorySink struct {
	mu    sync.Mutex
	files map[string][][]string
	order []string
}

func NewMemorySink() *MemorySink {
	return &MemorySink{files: map[string][][]string{}}
}

func (s *MemorySink) Write(path string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[path]; !ok {
		s.order = append(s.order, path)
	}
	cp := make([][]string, len(rows))
	for i, r := range rows {
		cp[i] = append([]string(nil), r...)
	}
	s.files[path] = cp
	return nil
}

// Rows returns what was last written to path.
func (s *MemorySink) Rows(path string) ([][]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.files[path]
	return rows, ok
}

// Paths returns every written path in first-write order.
func (s *MemorySink) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// ErrOutputCollision is returned when two recordings would write the same
// matrix files, e.g. a.wav and a.WAV in one directory.
var ErrOutputCollision = errors.New("recordings share an output path")

// checkOutputPaths fails on the first pair of files whose matrices would land
// on the same path.
func checkOutputPaths(files []AudioFile) error {
	seen := make(map[string]string, len(files))
	for _, f := range files {
		p := matrixPath("", f.RelPath, features.MFCC)
		if prev, ok := seen[p]; ok {
			return fmt.Errorf("%w: %s and %s", ErrOutputCollision, prev, f.RelPath)
		}
		seen[p] = f.RelPath
	}
	return nil
}

// matrixPath returns <out>/<rel dir>/<type>/<stem>_<type>.csv.
func matrixPath(outRoot, relPath string, t features.Type) string {
	base := filepath.Base(relPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outRoot, filepath.Dir(relPath), t.String(), stem+"_"+t.String()+".csv")
}

// formatFloat writes the shortest representation that round-trips, in the
// notation Python's float repr uses: positional with at least one decimal
// for exponents in [-4, 16), scientific otherwise.
func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	sci := strconv.FormatFloat(v, 'e', -1, 64)
	_, exp, _ := strings.Cut(sci, "e")
	if e, _ := strconv.Atoi(exp); e < -4 || e >= 16 {
		return sci
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// matrixRows appends the label, type and file name to every frame.
func matrixRows(m features.Matrix, stressLevel string, t features.Type, name string) [][]string {
	rows := make([][]string, len(m))
	for i, frame := range m {
		row := make([]string, 0, len(frame)+3)
		for _, v := range frame {
			row = append(row, formatFloat(v))
		}
		rows[i] = append(row, stressLevel, t.String(), name)
	}
	return rows
}

func aggregateRows(records []Record) [][]string {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, aggregateHeader)
	for _, r := range records {
		rows = append(rows, []string{
			r.StressLevel,
			r.Type.String(),
			r.FileName,
			formatFloat(r.Mean),
			formatFloat(r.Median),
			formatFloat(r.Min),
			formatFloat(r.Max),
		})
	}
	return rows
}

func writeMatrix(sink Sink, outRoot string, f AudioFile, m features.Matrix, stressLevel string, t features.Type, name string) (string, error) {
	path := matrixPath(outRoot, f.RelPath, t)
	return path, sink.Write(path, matrixRows(m, stressLevel, t, name))
}

func writeAggregate(sink Sink, outRoot string, table *Table) (string, error) {
	path := filepath.Join(outRoot, AggregateFile)
	return path, sink.Write(path, aggregateRows(table.Records()))
}
