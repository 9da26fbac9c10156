package summarize

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// CSV column headers of the allotment lists.
const (
	colCollege     = "COLLEGE"
	colCourse      = "COURSE"
	colCollegeType = "COLLEGE_TYPE"
	colQuota       = "QUOTA"
	colCommunity   = "COMMUNITY"
	colCategory    = "CATEGORY"
	colRound       = "ROUND"
	colYear        = "YEAR"
	colRank        = "RANK"
	colMarks       = "TOTAL MARKS"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF} //nolint:gochecknoglobals // byte order mark

// ReadFile parses one allotment CSV file.
func ReadFile(ctx context.Context, path string) ([]Allotment, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %w", ErrReadInput, path, err)
	}
	rows, dropped, err := ReadCSV(ctx, bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %w", ErrReadInput, path, err)
	}
	return rows, dropped, nil
}

// ReadCSV parses allotment rows. Rows whose rank or total marks is not a
// finite number are skipped and counted. Missing text columns read as "".
func ReadCSV(ctx context.Context, r io.Reader) ([]Allotment, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	field := func(rec []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var (
		out     []Allotment
		dropped int
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, err
		}

		rank, rankOK := parseNumber(field(rec, colRank))
		marks, marksOK := parseNumber(field(rec, colMarks))
		if !rankOK || !marksOK {
			dropped++
			continue
		}
		out = append(out, Allotment{
			College:     field(rec, colCollege),
			Course:      field(rec, colCourse),
			CollegeType: field(rec, colCollegeType),
			Quota:       field(rec, colQuota),
			Community:   field(rec, colCommunity),
			Category:    field(rec, colCategory),
			Round:       field(rec, colRound),
			Year:        parseYear(field(rec, colYear)),
			Rank:        rank,
			Marks:       marks,
		})
	}
	return out, dropped, nil
}

func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseYear accepts "2024" and "2024.0"; anything else is unknown.
func parseYear(s string) *int {
	v, ok := parseNumber(s)
	if !ok || v != math.Trunc(v) {
		return nil
	}
	y := int(v)
	return &y
}
