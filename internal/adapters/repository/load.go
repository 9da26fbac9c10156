package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/cutoff/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// Format is a dataset file encoding.
type Format string

// Supported dataset formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Row is one entry of a dataset file as written by the summary exporter.
// Missing or null numbers decode as NaN.
type Row struct {
	College     string   `json:"college" yaml:"college"`
	Course      string   `json:"course" yaml:"course"`
	CollegeType string   `json:"college_type" yaml:"college_type"`
	Quota       string   `json:"quota" yaml:"quota"`
	Community   string   `json:"community" yaml:"community"`
	Category    string   `json:"category" yaml:"category"`
	Round       string   `json:"round" yaml:"round"`
	Year        *int     `json:"year" yaml:"year"`
	RankMean    *float64 `json:"rank_mean" yaml:"rank_mean"`
	RankStd     *float64 `json:"rank_std" yaml:"rank_std"`
	RankMin     *float64 `json:"rank_min" yaml:"rank_min"`
	RankMax     *float64 `json:"rank_max" yaml:"rank_max"`
	MarksMean   *float64 `json:"marks_mean" yaml:"marks_mean"`
	MarksStd    *float64 `json:"marks_std" yaml:"marks_std"`
	MarksMin    *float64 `json:"marks_min" yaml:"marks_min"`
	MarksMax    *float64 `json:"marks_max" yaml:"marks_max"`
}

// Record converts the row to a domain record.
func (r *Row) Record() model.HistoricalRecord {
	year := 0
	if r.Year != nil {
		year = *r.Year
	}
	return model.HistoricalRecord{
		Identity: model.Identity{
			Institution:     r.College,
			Program:         r.Course,
			Quota:           r.Quota,
			Category:        r.Category,
			Community:       r.Community,
			InstitutionType: r.CollegeType,
			Year:            year,
		},
		Round: r.Round,
		Rank:  model.Stats{Mean: num(r.RankMean), Std: num(r.RankStd), Min: num(r.RankMin), Max: num(r.RankMax)},
		Score: model.Stats{Mean: num(r.MarksMean), Std: num(r.MarksStd), Min: num(r.MarksMin), Max: num(r.MarksMax)},
	}
}

func num(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Decode parses a dataset document.
func Decode(data []byte, format Format) ([]model.HistoricalRecord, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	var rows []Row
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodeDataset, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodeDataset, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	out := make([]model.HistoricalRecord, len(rows))
	for i := range rows {
		out[i] = rows[i].Record()
	}
	return out, nil
}

// Load reads the dataset at path into a MemoryStore.
func Load(ctx context.Context, path string, opts ...Option) (*MemoryStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied dataset path
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadDataset, err)
	}
	records, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	opts = append([]Option{WithSource(path)}, opts...)
	return NewMemoryStore(ctx, records, opts...), nil
}
