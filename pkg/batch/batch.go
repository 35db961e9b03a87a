// Package batch runs the remap engine over single files and directory trees.
//
// Every file is an independent unit: a parse failure is recorded and the
// batch moves on. No state is shared between files, which is what makes the
// optional worker pool safe.
package batch

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Thiesant/M2-SequenceIdxHashByID-Remapper/pkg/backup"
	"github.com/Thiesant/M2-SequenceIdxHashByID-Remapper/pkg/m2"
)

// Options configures a batch run.
type Options struct {
	// Force reprocesses files that already carry the idempotency footer.
	Force bool
	// Backup keeps a copy of the original before an in-place overwrite.
	Backup bool
	// CompressBackup stores backups as zstd containers instead of plain
	// .bak copies.
	CompressBackup bool
	// Workers is the number of files processed concurrently in directory
	// mode. Values below 2 mean sequential processing.
	Workers int
	// Log receives per-file progress and warnings. Defaults to slog.Default.
	Log *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Log != nil {
		return o.Log
	}
	return slog.Default()
}

// Per-file terminal states.
const (
	StatusProcessed = "processed"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// Backup file suffixes.
const (
	BackupSuffix           = ".bak"
	CompressedBackupSuffix = ".bak.zst"
)

// FileResult records the outcome of processing one model file.
type FileResult struct {
	Path          string `json:"path"`
	Status        string `json:"status"`
	Sequences     int    `json:"sequences,omitempty"`
	TableLength   int    `json:"table_length,omitempty"`
	Changes       int    `json:"changes,omitempty"`
	Unaddressable int    `json:"unaddressable,omitempty"`
	Backup        string `json:"backup,omitempty"`
	Error         string `json:"error,omitempty"`
}

// ProcessFile runs the engine on a single model file. When outPath is empty
// the input is overwritten in place, after a backup copy when
// Options.Backup is set. The output buffer is fully materialized before any
// write; a failed file is never written at all.
func ProcessFile(path, outPath string, opts Options) FileResult {
	log := opts.logger()
	res := FileResult{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		return fail(res, log, fmt.Errorf("read file: %w", err))
	}

	r, err := m2.Remap(data, opts.Force)
	if err != nil {
		return fail(res, log, err)
	}

	if r.Status == m2.StatusSkipped {
		res.Status = StatusSkipped
		log.Debug("already processed", "path", path)
		return res
	}

	res.Sequences = len(r.Sequences)
	res.TableLength = len(r.Table)
	res.Changes = r.Changes
	res.Unaddressable = len(r.Unaddressable)
	for _, s := range r.Unaddressable {
		log.Warn("animation id not addressable by lookup table",
			"path", path, "animation_id", s.AnimationID, "sequence_index", s.Index)
	}

	if outPath == "" {
		outPath = path
		if opts.Backup {
			bak, err := writeBackup(path, data, opts.CompressBackup)
			if err != nil {
				return fail(res, log, fmt.Errorf("create backup: %w", err))
			}
			res.Backup = bak
		}
	}

	if err := os.WriteFile(outPath, r.Output, 0644); err != nil {
		return fail(res, log, fmt.Errorf("write output: %w", err))
	}

	res.Status = StatusProcessed
	log.Info("remapped", "path", path, "sequences", res.Sequences,
		"table_length", res.TableLength, "changes", res.Changes)
	return res
}

func fail(res FileResult, log *slog.Logger, err error) FileResult {
	res.Status = StatusFailed
	res.Error = err.Error()
	log.Error("remap failed", "path", res.Path, "error", err)
	return res
}

func writeBackup(path string, data []byte, compress bool) (string, error) {
	if compress {
		p := path + CompressedBackupSuffix
		return p, backup.WriteFile(p, data, backup.DefaultCompressionLevel)
	}
	p := path + BackupSuffix
	return p, os.WriteFile(p, data, 0644)
}

// ProcessDir processes every model file under root, each in place and
// independently. Non-recursive mode looks at the top level only. The
// returned report lists results in deterministic path order regardless of
// worker count.
func ProcessDir(root string, recursive bool, opts Options) (*Report, error) {
	paths, err := collectModelFiles(root, recursive)
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, len(paths))
	workers := opts.Workers
	if workers < 2 {
		for i, p := range paths {
			results[i] = ProcessFile(p, "", opts)
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					results[i] = ProcessFile(paths[i], "", opts)
				}
			}()
		}
		for i := range paths {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	report := &Report{Results: results}
	for _, r := range results {
		report.count(r)
	}
	return report, nil
}

// IsModelFile reports whether path carries the .m2 extension, matched
// case-insensitively like the game's own loader.
func IsModelFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".m2")
}

func collectModelFiles(root string, recursive bool) ([]string, error) {
	var paths []string

	if !recursive {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("read directory: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() && IsModelFile(e.Name()) {
				paths = append(paths, filepath.Join(root, e.Name()))
			}
		}
		return paths, nil
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsModelFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}
