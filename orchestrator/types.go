package orchestrator

import "github.com/maastricht-university/stress-features/features"

// AudioFile is one discovered recording.
type AudioFile struct {
	Path    string // absolute
	RelPath string // relative to the discovery root
}

// Record summarizes one dimension of one (file, coefficient type) matrix.
type Record struct {
	StressLevel string
	Type        features.Type
	FileName    string
	Mean        float64
	Median      float64
	Min         float64
	Max         float64
}

// Summary counts what a run produced.
type Summary struct {
	Files    int
	Matrices map[features.Type]int
	Frames   map[features.Type]int
	Records  map[features.Type]int
	// AggregatePath is where the statistics table was written.
	AggregatePath string
}

func newSummary() *Summary {
	return &Summary{
		Matrices: map[features.Type]int{},
		Frames:   map[features.Type]int{},
		Records:  map[features.Type]int{},
	}
}

// TotalRecords returns the number of rows in the aggregate table.
func (s *Summary) TotalRecords() int {
	n := 0
	for _, c := range s.Records {
		n += c
	}
	return n
}
