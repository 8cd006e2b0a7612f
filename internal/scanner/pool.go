package scanner

import (
	"context"
	"sync"

	"media-indexer/internal/exiftool"
	"media-indexer/internal/hashing"
	"media-indexer/internal/mediatypes"
	"media-indexer/internal/workers"
)

// fileAction is the change detector's verdict for one file.
type fileAction int

const (
	actNew fileAction = iota
	actChanged
	actUnchanged
	actHashOnly // unchanged, but backfill a missing hash
)

// prep holds the I/O-heavy work for one file, computed concurrently before
// the directory transaction opens so results can be applied in walk order.
type prep struct {
	hash       string
	hashErr    error
	result     *exiftool.Result
	extractErr error
	extracted  bool
}

// maxExtractWorkers caps concurrent extractor subprocesses.
const maxExtractWorkers = 16

// poolSize resolves the bounded worker count for extraction and hashing.
func (s *Scanner) poolSize() int {
	if s.cfg.Workers > 0 {
		return min(s.cfg.Workers, maxExtractWorkers)
	}
	return workers.ForIO(maxExtractWorkers)
}

// needsExtract reports whether a file of the given kind gets a metadata
// extractor invocation. Video extraction is gated on the video-tags toggle.
func (s *Scanner) needsExtract(kind mediatypes.FileType) bool {
	if kind == mediatypes.FileTypeVideo {
		return s.cfg.VideoTags
	}
	return true
}

// prepareFiles runs hashing and metadata extraction for a directory's files
// on a bounded pool. The returned slice is indexed like files, so the caller
// can merge results in deterministic walk order regardless of completion
// order. Files whose action needs no I/O are left as zero prep values.
func (s *Scanner) prepareFiles(ctx context.Context, files []fileEntry, actions []fileAction) []prep {
	preps := make([]prep, len(files))

	sem := make(chan struct{}, s.poolSize())
	var wg sync.WaitGroup

	for i := range files {
		wantHash := s.cfg.HashMode != hashing.ModeNone &&
			(actions[i] == actNew || actions[i] == actChanged || actions[i] == actHashOnly)
		wantExtract := (actions[i] == actNew || actions[i] == actChanged) &&
			s.needsExtract(files[i].kind)
		if !wantHash && !wantExtract {
			continue
		}

		wg.Add(1)
		go func(i int, wantHash, wantExtract bool) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				preps[i].extractErr = ctx.Err()
				return
			}

			if wantHash {
				preps[i].hash, preps[i].hashErr = hashing.File(files[i].fsPath, s.cfg.HashMode)
			}
			if wantExtract {
				if ctx.Err() != nil {
					preps[i].extractErr = ctx.Err()
					return
				}
				preps[i].result, preps[i].extractErr = s.extractor.Extract(ctx, files[i].fsPath)
				preps[i].extracted = true
			}
		}(i, wantHash, wantExtract)
	}

	wg.Wait()
	return preps
}
