package consolidate_test

import (
	"math"
	"testing"

	"github.com/okian/cutoff/internal/domain/consolidate"
	"github.com/okian/cutoff/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func record(college, round string, year int, score model.Stats) model.HistoricalRecord {
	return model.HistoricalRecord{
		Identity: model.Identity{
			Institution:     college,
			Program:         "MBBS",
			Quota:           "7.5%",
			Category:        "GOVT",
			Community:       "BC",
			InstitutionType: "Government",
			Year:            year,
		},
		Round: round,
		Rank:  model.Stats{Mean: 1000, Std: 50, Min: 900, Max: 1100},
		Score: score,
	}
}

func TestKeyOf(t *testing.T) {
	Convey("Given two identities differing only in case and padding", t, func() {
		a := model.Identity{Institution: "Madras Medical College", Program: "MBBS", Year: 2025}
		b := model.Identity{Institution: "  madras MEDICAL college ", Program: "mbbs ", Year: 2025}

		Convey("Then their keys should be equal", func() {
			So(consolidate.KeyOf(a), ShouldResemble, consolidate.KeyOf(b))
		})

		Convey("And a different year should give a different key", func() {
			c := a
			c.Year = 2024
			So(consolidate.KeyOf(a), ShouldNotResemble, consolidate.KeyOf(c))
		})
	})

	Convey("Given fields that would collide when joined with a delimiter", t, func() {
		a := model.Identity{Institution: "A|B", Program: "C"}
		b := model.Identity{Institution: "A", Program: "B|C"}

		Convey("Then the typed keys should stay distinct", func() {
			So(consolidate.KeyOf(a), ShouldNotResemble, consolidate.KeyOf(b))
		})
	})
}

func TestConsolidate(t *testing.T) {
	Convey("Given an empty dataset", t, func() {
		res := consolidate.Consolidate(nil)

		Convey("Then no summaries should be produced", func() {
			So(res.Summaries, ShouldBeEmpty)
			So(res.InvalidObservations, ShouldEqual, 0)
		})
	})

	Convey("Given two rounds of the same program", t, func() {
		r1 := record("Madras Medical College", "Round1", 2025, model.Stats{Mean: 500, Std: 20, Min: 450, Max: 550})
		r2 := record(" MADRAS medical college", "Round2", 2025, model.Stats{Mean: 480, Std: 15, Min: 440, Max: 520})
		res := consolidate.Consolidate([]model.HistoricalRecord{r1, r2})

		Convey("Then they should merge into one all-rounds summary", func() {
			So(res.Summaries, ShouldHaveLength, 1)
			sum := res.Summaries[0]
			So(sum.Scope, ShouldEqual, model.ScopeAllRounds)
			So(sum.Institution, ShouldEqual, "Madras Medical College")
		})

		Convey("And the score statistics should be pooled", func() {
			sum := res.Summaries[0]
			So(sum.Score.Mean, ShouldEqual, 490.0)
			So(sum.Score.Std, ShouldAlmostEqual, math.Sqrt(412.5), 1e-9)
		})

		Convey("And the bounds should span every round", func() {
			sum := res.Summaries[0]
			So(sum.Score.Min, ShouldEqual, 440.0)
			So(sum.Score.Max, ShouldEqual, 550.0)
		})

		Convey("And the per-round records should be retained in order", func() {
			sum := res.Summaries[0]
			So(sum.Rounds, ShouldHaveLength, 2)
			So(sum.Rounds[0].Round, ShouldEqual, "Round1")
			So(sum.Rounds[1].Round, ShouldEqual, "Round2")
		})
	})

	Convey("Given records for different programs and years", t, func() {
		s := model.Stats{Mean: 400, Std: 10, Min: 380, Max: 420}
		records := []model.HistoricalRecord{
			record("Stanley Medical College", "Round1", 2025, s),
			record("Madras Medical College", "Round1", 2025, s),
			record("Stanley Medical College", "Round1", 2024, s),
			record("Stanley Medical College", "Round2", 2025, s),
		}
		res := consolidate.Consolidate(records)

		Convey("Then every record should land in exactly one group", func() {
			So(res.Summaries, ShouldHaveLength, 3)
			total := 0
			for _, sum := range res.Summaries {
				total += len(sum.Rounds)
			}
			So(total, ShouldEqual, len(records))
		})

		Convey("And groups should keep first-seen order", func() {
			So(res.Summaries[0].Institution, ShouldEqual, "Stanley Medical College")
			So(res.Summaries[0].Year, ShouldEqual, 2025)
			So(res.Summaries[1].Institution, ShouldEqual, "Madras Medical College")
			So(res.Summaries[2].Year, ShouldEqual, 2024)
		})
	})

	Convey("Given records with invalid statistics and blank identity fields", t, func() {
		bad := record("Madras Medical College", "Round1", 2025, model.Stats{Mean: math.NaN(), Std: -3, Min: math.NaN(), Max: math.NaN()})
		good := record("Madras Medical College", "Round2", 2025, model.Stats{Mean: 450, Std: 5, Min: 440, Max: 460})
		blank := record("", "Round1", 2025, model.Stats{Mean: 300, Std: 1, Min: 299, Max: 301})
		res := consolidate.Consolidate([]model.HistoricalRecord{bad, good, blank})

		Convey("Then invalid observations should be dropped and counted", func() {
			So(res.InvalidObservations, ShouldEqual, 1)
			So(res.Summaries[0].Score.Mean, ShouldEqual, 450.0)
			So(res.Summaries[0].Score.Min, ShouldEqual, 440.0)
		})

		Convey("And blank identities should be grouped but flagged", func() {
			So(res.Summaries, ShouldHaveLength, 2)
			So(res.MalformedRecords, ShouldEqual, 1)
		})
	})
}

func TestConsolidate_NoValidRounds(t *testing.T) {
	Convey("Given a program whose every score round is unusable", t, func() {
		missing := model.Stats{Mean: math.NaN(), Std: math.NaN(), Min: math.NaN(), Max: math.NaN()}
		res := consolidate.Consolidate([]model.HistoricalRecord{
			record("Ghost College", "Round1", 2025, missing),
			record("Ghost College", "Round2", 2025, missing),
		})

		Convey("Then the pooled score should stay undefined rather than zero", func() {
			So(res.Summaries, ShouldHaveLength, 1)
			So(math.IsNaN(res.Summaries[0].Score.Mean), ShouldBeTrue)
			So(math.IsNaN(res.Summaries[0].Score.Std), ShouldBeTrue)
			So(res.InvalidObservations, ShouldEqual, 2)
		})

		Convey("And the valid rank metric should still be pooled", func() {
			So(res.Summaries[0].Rank.Mean, ShouldEqual, 1000.0)
		})
	})
}
