package summarize

import (
	"cmp"
	"math"
	"slices"

	"github.com/okian/cutoff/internal/adapters/repository"
	"github.com/okian/cutoff/internal/domain/stats"
)

const precision = 1000 // three decimals

type groupKey struct {
	college     string
	course      string
	collegeType string
	quota       string
	community   string
	category    string
	round       string
	year        int
	hasYear     bool
}

type group struct {
	key   groupKey
	ranks []float64
	marks []float64
}

// Summarize groups rows by program, round and year and describes the rank
// and marks distribution of each group. Output is sorted by the group key,
// with unknown years last.
func Summarize(rows []Allotment) []repository.Row {
	groups := make(map[groupKey]*group)
	for _, a := range rows {
		k := groupKey{
			college: a.College, course: a.Course, collegeType: a.CollegeType, quota: a.Quota,
			community: a.Community, category: a.Category, round: a.Round,
		}
		if a.Year != nil {
			k.year, k.hasYear = *a.Year, true
		}
		g, ok := groups[k]
		if !ok {
			g = &group{key: k}
			groups[k] = g
		}
		g.ranks = append(g.ranks, a.Rank)
		g.marks = append(g.marks, a.Marks)
	}

	ordered := make([]*group, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	slices.SortFunc(ordered, func(a, b *group) int { return compareKeys(a.key, b.key) })

	out := make([]repository.Row, 0, len(ordered))
	for _, g := range ordered {
		out = append(out, g.row())
	}
	return out
}

func compareKeys(a, b groupKey) int {
	if c := cmp.Or(
		cmp.Compare(a.college, b.college),
		cmp.Compare(a.course, b.course),
		cmp.Compare(a.collegeType, b.collegeType),
		cmp.Compare(a.quota, b.quota),
		cmp.Compare(a.community, b.community),
		cmp.Compare(a.category, b.category),
		cmp.Compare(a.round, b.round),
	); c != 0 {
		return c
	}
	switch {
	case a.hasYear && !b.hasYear:
		return -1
	case !a.hasYear && b.hasYear:
		return 1
	}
	return cmp.Compare(a.year, b.year)
}

func (g *group) row() repository.Row {
	k := g.key
	r := repository.Row{
		College:     k.college,
		Course:      k.course,
		CollegeType: k.collegeType,
		Quota:       k.quota,
		Community:   k.community,
		Category:    k.category,
		Round:       k.round,
	}
	if k.hasYear {
		y := k.year
		r.Year = &y
	}
	r.RankMean, r.RankStd, r.RankMin, r.RankMax = describe(g.ranks)
	r.MarksMean, r.MarksStd, r.MarksMin, r.MarksMax = describe(g.marks)
	return r
}

func describe(values []float64) (mean, std, lo, hi *float64) {
	m, s := stats.Sample(values)
	l, h := stats.Bounds(values)
	return round3(m), round3(s), round3(l), round3(h)
}

func round3(v float64) *float64 {
	r := math.Round(v*precision) / precision
	return &r
}
