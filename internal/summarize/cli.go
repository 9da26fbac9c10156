package summarize

import "os"

// ShowHelp prints usage information for the summary exporter.
func ShowHelp() {
	os.Stdout.WriteString(`Cutoff Summary Exporter
=======================

Builds the cutoff dataset served by the predictor from allotment CSV files.

Usage:
  go run ./cmd/summarize [options] FILE.csv [FILE.csv ...]

Each CSV needs the headers COLLEGE, COURSE, COLLEGE_TYPE, QUOTA, COMMUNITY,
CATEGORY, ROUND, YEAR, RANK and TOTAL MARKS. Rows without a numeric rank or
total marks are skipped.

Options:
  -output string
        Output JSON file path (default "data/tn_cutoffs.json")
  -workers int
        Files parsed concurrently (default one per file)
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  go run ./cmd/summarize round1.csv round2.csv
  go run ./cmd/summarize -output /tmp/cutoffs.json 2024/*.csv
`)
}
