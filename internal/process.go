package internal

import (
	"context"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// BackWriter stamps resolved metadata into a staged file.
// *MetadataWriter is the production implementation.
type BackWriter interface {
	Write(path string, resolved ResolvedMetadata) error
}

// Processor runs the per-file resolution pipeline over a batch. Files are
// independent of one another, so resolution and metadata writes fan out
// over a bounded worker pool; outcomes are merged back in original
// archive-entry order before the organizer assigns names and counters, so
// the output plan is deterministic regardless of worker scheduling.
type Processor struct {
	cfg    *Config
	log    *zap.Logger
	writer BackWriter // nil when exiftool is unavailable; writes then degrade
}

func NewProcessor(cfg *Config, logger *zap.Logger, writer BackWriter) *Processor {
	return &Processor{cfg: cfg, log: logger, writer: writer}
}

type fileOutcome struct {
	resolved ResolvedMetadata
	class    Classification
}

// ProcessBatch resolves, writes back, and organizes every file. A single
// file's failure never aborts its siblings; only context cancellation
// stops the batch, and then no output plan is returned at all.
func (p *Processor) ProcessBatch(ctx context.Context, files []MediaFile) ([]PlanEntry, Summary, error) {
	outcomes := make([]fileOutcome, len(files))

	workers := p.cfg.Workers
	if workers > len(files) {
		workers = len(files)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	var completed atomic.Int64

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = p.processFile(files[i])
				p.log.Debug("file processed",
					zap.String("file", files[i].RelPath),
					zap.Int64("completed", completed.Add(1)),
					zap.Int("total", len(files)))
			}
		}()
	}

feed:
	for i := range files {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, Summary{}, err
	}

	org := NewOrganizer()
	for i, oc := range outcomes {
		org.Add(files[i], oc.resolved, oc.class)
	}
	return org.Plan(), org.Summary(), nil
}

// processFile gathers the tier candidates, resolves them, and writes the
// result back into the staged copy. Every per-file error is swallowed here
// and surfaces only through the resulting classification.
func (p *Processor) processFile(file MediaFile) fileOutcome {
	var in ResolveInputs

	if file.SidecarPath != "" {
		data, err := os.ReadFile(file.SidecarPath)
		if err != nil {
			p.log.Debug("sidecar unreadable",
				zap.Error(newProcessError(file.RelPath, ErrorCategorySidecarParse, err)))
		} else {
			in.Sidecar, in.HasSidecar = ParseSidecar(data)
		}
	}

	emb := ReadEmbeddedMetadata(file.Path)
	switch emb.Tier {
	case TierEXIF:
		in.EXIF, in.HasEXIF = emb.Timestamp, true
	case TierXMP:
		in.XMP, in.HasXMP = emb.Timestamp, true
	}
	if emb.HasOrientation {
		// Already merged with EXIF preference by the reader.
		in.EXIFOrientation, in.HasEXIFOrientation = emb.Orientation, true
	}

	in.Filename, in.HasFilename = ParseFilenameDate(file.BaseName())

	if !file.ModTime.IsZero() {
		in.Mtime, in.HasMtime = file.ModTime, true
	}

	resolved := Resolve(in, ResolveOptions{
		MtimeFallback:   p.cfg.MtimeFallback,
		MissingMetadata: p.cfg.MissingMetadata,
	})
	class := Classify(resolved.SourceTier, p.cfg.MissingMetadata)

	if resolved.HasTimestamp {
		if err := p.writeBack(file, resolved); err != nil {
			p.log.Warn("metadata write failed, degrading file",
				zap.Error(newProcessError(file.RelPath, ErrorCategoryMetadataWrite, err)))
			class = Classify(TierNone, p.cfg.MissingMetadata)
		}
	}

	return fileOutcome{resolved: resolved, class: class}
}

func (p *Processor) writeBack(file MediaFile, resolved ResolvedMetadata) error {
	if p.writer == nil {
		return errExiftoolUnavailable
	}
	return p.writer.Write(file.Path, resolved)
}
