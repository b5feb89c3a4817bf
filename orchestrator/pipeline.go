package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/stress-features/audio"
	"github.com/maastricht-university/stress-features/clients"
	cfg "github.com/maastricht-university/stress-features/config"
	"github.com/maastricht-university/stress-features/features"
	"github.com/maastricht-university/stress-features/spectral"
)

// Decoder loads the samples of one recording.
type Decoder func(path string) (*audio.Signal, error)

type Pipeline struct {
	cfg      *cfg.Root
	http     *clients.HTTP
	features *features.Dispatcher
	sink     Sink
	decode   Decoder
	log      logrus.FieldLogger
}

// Option overrides a pipeline collaborator.
type Option func(*Pipeline)

// WithExtractor replaces the extractor chosen from the configuration.
func WithExtractor(ext features.Extractor) Option {
	return func(p *Pipeline) { p.features = features.NewDispatcher(ext) }
}

func WithSink(s Sink) Option {
	return func(p *Pipeline) { p.sink = s }
}

func WithDecoder(d Decoder) Option {
	return func(p *Pipeline) { p.decode = d }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Pipeline) { p.log = l }
}

// NewPipeline extracts features in process unless an extraction service URL
// is configured.
func NewPipeline(c *cfg.Root, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:    c,
		http:   clients.NewHTTP(cfg.DurSeconds(c.Services.Extraction.TimeoutSeconds)),
		sink:   FileSink{},
		decode: audio.Decode,
		log:    logrus.StandardLogger(),
	}
	var ext features.Extractor = spectral.NewExtractor()
	if url := c.Services.Extraction.URL; url != "" {
		ext = p.http.FeatureService(url)
	}
	p.features = features.NewDispatcher(ext)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes every recording under inputRoot and writes the per-file
// matrices and the aggregate statistics under the configured output root.
// The first error aborts the run; matrices already written stay on disk and
// no aggregate file is produced.
func (p *Pipeline) Run(ctx context.Context, inputRoot string) (*Summary, error) {
	log := p.log.WithField("run", uuid.NewString())
	started := time.Now()

	files, err := FindWavFiles(inputRoot)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", inputRoot, err)
	}
	log.WithFields(logrus.Fields{"root": inputRoot, "files": len(files)}).Info("discovered recordings")
	if err := checkOutputPaths(files); err != nil {
		return nil, err
	}

	table := &Table{}
	sum := newSummary()
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.processFile(ctx, log, f, table, sum); err != nil {
			return nil, err
		}
		sum.Files++
	}

	path, err := writeAggregate(p.sink, p.cfg.Paths.Outputs, table)
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	sum.AggregatePath = path
	log.WithFields(logrus.Fields{
		"path":    path,
		"records": table.Len(),
		"elapsed": time.Since(started).Round(time.Millisecond),
	}).Info("wrote aggregated statistics")
	return sum, nil
}

func (p *Pipeline) processFile(ctx context.Context, log logrus.FieldLogger, f AudioFile, table *Table, sum *Summary) error {
	stressLevel, name := LabelFor(f.Path)
	flog := log.WithFields(logrus.Fields{"file": f.RelPath, "label": stressLevel})
	flog.Info("processing file")

	sig, err := p.decode(f.Path)
	if err != nil {
		return fmt.Errorf("read %s: %w", f.Path, err)
	}

	for _, t := range features.Types {
		m, err := p.features.Compute(ctx, t, sig.Samples, sig.SampleRate)
		if err != nil {
			return fmt.Errorf("extract %s: %w", f.Path, err)
		}
		path, err := writeMatrix(p.sink, p.cfg.Paths.Outputs, f, m, stressLevel, t, name)
		if err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		recs := Summarize(m, stressLevel, t, name)
		table.Append(recs...)

		sum.Matrices[t]++
		sum.Frames[t] += m.Rows()
		sum.Records[t] += len(recs)
		flog.WithFields(logrus.Fields{"type": t.String(), "frames": m.Rows(), "dims": m.Cols()}).Debug("wrote feature matrix")
	}
	return nil
}
