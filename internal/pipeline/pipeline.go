// Package pipeline wires the lister, accumulator, and sink into a single
// sequential run: list pages, buffer records, flush full batches, final
// partial flush, close, and (for remote output) upload.
//
// There is no internal parallelism. Listing, accumulation, and flushing
// proceed strictly in one control flow; the next page is never requested
// while a flush is outstanding, and no state is shared across goroutines.
package pipeline

import (
	"context"
	"time"

	"github.com/xitongsys/parquet-go/parquet"

	"github.com/objstream/bucketfest/internal/lister"
	"github.com/objstream/bucketfest/internal/logger"
	"github.com/objstream/bucketfest/internal/manifest"
	"github.com/objstream/bucketfest/internal/progress"
	"github.com/objstream/bucketfest/internal/retry"
	"github.com/objstream/bucketfest/internal/storage"
)

// Config parameterizes one manifest run.
type Config struct {
	// Source names the bucket and optional prefix to enumerate.
	Source storage.SourceLocation

	// Output is the manifest destination, local or remote.
	Output storage.OutputLocation

	// Delimiter drives file-name extraction. Empty selects the default.
	Delimiter string

	// Compression is the parquet codec for the manifest file.
	Compression parquet.CompressionCodec

	// PageSize overrides the listing page size. 0 selects the default.
	PageSize int

	// BatchSize overrides the flush threshold. 0 selects the default.
	BatchSize int

	// Retry overrides the network retry schedule. Zero value selects the
	// default policy.
	Retry retry.Policy

	// ReportInterval overrides the progress report cadence.
	ReportInterval time.Duration
}

// Stats summarises a completed run.
type Stats struct {
	Objects uint64
	Batches int
	Elapsed time.Duration
}

// Pipeline executes the enumeration-accumulation-serialization run.
type Pipeline struct {
	source storage.Store
	dest   storage.Store // nil for local output
	cfg    Config
	log    *logger.Logger
}

// New builds a Pipeline. dest may be nil when cfg.Output is local.
func New(source, dest storage.Store, cfg Config, log *logger.Logger) *Pipeline {
	if cfg.Retry == (retry.Policy{}) {
		cfg.Retry = retry.DefaultPolicy()
	}
	return &Pipeline{source: source, dest: dest, cfg: cfg, log: log}
}

// Run executes the whole pipeline and returns its stats. Any error is
// fatal to the run; partial local output may remain on disk, but a remote
// destination never holds a partial manifest.
func (p *Pipeline) Run(ctx context.Context) (Stats, error) {
	var uploader manifest.Uploader
	if p.dest != nil {
		uploader = p.dest
	}
	sink, err := manifest.OpenSink(p.cfg.Output, p.cfg.Compression, uploader, p.cfg.Retry, p.log)
	if err != nil {
		return Stats{}, err
	}
	defer sink.Cleanup()

	l := lister.New(p.source, p.cfg.Source.Bucket, p.cfg.Source.Prefix, p.log,
		lister.WithPageSize(p.cfg.PageSize),
		lister.WithRetryPolicy(p.cfg.Retry))
	acc := manifest.NewAccumulator(p.cfg.Source.Bucket, p.cfg.Delimiter, p.cfg.BatchSize)
	tracker := progress.NewTracker(p.log, p.cfg.ReportInterval)

	p.log.InfoWith("listing started", map[string]interface{}{
		"bucket": p.cfg.Source.Bucket,
		"prefix": p.cfg.Source.Prefix,
		"output": p.cfg.Output.String(),
	})

	var stats Stats
	for l.Next(ctx) {
		acc.Append(l.Object())
		tracker.Observe(l.Accepted())
		if acc.ShouldFlush() {
			if err := sink.WriteBatch(acc.DrainBatch()); err != nil {
				return stats, err
			}
			stats.Batches++
		}
	}
	if err := l.Err(); err != nil {
		return stats, err
	}

	if acc.Len() > 0 {
		if err := sink.WriteBatch(acc.DrainBatch()); err != nil {
			return stats, err
		}
		stats.Batches++
	}

	if err := sink.Finalize(ctx); err != nil {
		return stats, err
	}

	stats.Objects = l.Accepted()
	stats.Elapsed = tracker.Elapsed()
	tracker.LogSummary(p.cfg.Output.String())
	return stats, nil
}
