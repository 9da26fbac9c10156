package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/cutoff/internal/adapters/repository"
	"github.com/okian/cutoff/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0644
)

// Run reads every input, summarizes the merged rows and writes the dataset.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	if len(config.Inputs) == 0 {
		return nil, ErrNoInputs
	}
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("summarize")

	log.Info(ctx, "starting summary export",
		logger.Int("inputs", len(config.Inputs)),
		logger.String("output", config.Output),
		logger.Int("workers", config.Workers))

	rows, dropped, err := readAll(ctx, config)
	if err != nil {
		return nil, err
	}

	var merged []Allotment
	for i, part := range rows {
		merged = append(merged, part...)
		stats.RowsDropped += dropped[i]
		stats.RowsRead += len(part) + dropped[i]
	}
	stats.FilesRead = len(config.Inputs)

	summaries := Summarize(merged)
	stats.Groups = len(summaries)

	if err := writeDataset(config.Output, summaries); err != nil {
		return nil, err
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "summary export finished",
		logger.Int("files", stats.FilesRead),
		logger.Int("rowsRead", stats.RowsRead),
		logger.Int("rowsDropped", stats.RowsDropped),
		logger.Int("groups", stats.Groups),
		logger.String("duration", stats.Duration.String()))
	return stats, nil
}

// readAll parses the inputs concurrently; results keep argument order.
func readAll(ctx context.Context, config *Config) ([][]Allotment, []int, error) {
	rows := make([][]Allotment, len(config.Inputs))
	dropped := make([]int, len(config.Inputs))

	g, gctx := errgroup.WithContext(ctx)
	if config.Workers > 0 {
		g.SetLimit(config.Workers)
	}
	for i, path := range config.Inputs {
		g.Go(func() error {
			r, d, err := ReadFile(gctx, path)
			if err != nil {
				return err
			}
			rows[i], dropped[i] = r, d
			logger.Named("summarize").Debug(gctx, "input parsed",
				logger.String("path", path), logger.Int("rows", len(r)), logger.Int("dropped", d))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return rows, dropped, nil
}

// writeDataset writes summaries as an indented JSON array.
func writeDataset(path string, summaries []repository.Row) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summaries); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), filePermission); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteOutput, path, err)
	}
	return nil
}
