// Package summarize turns raw counselling allotment rows into the per-round
// cutoff summaries served by the predictor.
package summarize

import "time"

// Config holds the exporter settings.
type Config struct {
	Inputs  []string // CSV files, merged in this order
	Output  string   // dataset JSON path
	Workers int      // files parsed concurrently; 0 means one per input
}

// Allotment is one admitted candidate as listed in an allotment CSV.
type Allotment struct {
	College     string
	Course      string
	CollegeType string
	Quota       string
	Community   string
	Category    string
	Round       string
	Year        *int
	Rank        float64
	Marks       float64
}

// Stats holds export statistics.
type Stats struct {
	FilesRead   int
	RowsRead    int
	RowsDropped int
	Groups      int
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}
