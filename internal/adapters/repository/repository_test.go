package repository_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/cutoff/internal/adapters/repository"
	"github.com/okian/cutoff/internal/domain/model"
	"github.com/okian/cutoff/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const datasetJSON = `[
  {
    "college": "Madras Medical College",
    "course": "MBBS",
    "college_type": "Government",
    "quota": "7.5%",
    "community": "BC",
    "category": "GOVT",
    "round": "Round1",
    "year": 2025,
    "rank_mean": 120.5,
    "rank_std": 10.0,
    "rank_min": 100.0,
    "rank_max": 140.0,
    "marks_mean": 500.0,
    "marks_std": 20.0,
    "marks_min": 450.0,
    "marks_max": 550.0
  },
  {
    "college": "Ragas Dental College",
    "course": "BDS",
    "college_type": "Self Financing",
    "quota": "7.5%",
    "community": "MBC",
    "category": "GOVT",
    "round": "Round2",
    "year": null,
    "rank_mean": 900.0,
    "rank_std": null,
    "rank_min": 850.0,
    "rank_max": 950.0,
    "marks_mean": 300.0,
    "marks_min": 280.0,
    "marks_max": 320.0
  }
]`

const datasetYAML = `
- college: Madras Medical College
  course: MBBS
  college_type: Government
  quota: "7.5%"
  community: SC
  category: GOVT
  round: Round1
  year: 2024
  rank_mean: 200
  rank_std: 0
  rank_min: 200
  rank_max: 200
  marks_mean: 480
  marks_std: 0
  marks_min: 480
  marks_max: 480
`

func writeFile(dir, name, body string) string {
	path := filepath.Join(dir, name)
	So(os.WriteFile(path, []byte(body), 0o600), ShouldBeNil)
	return path
}

func TestLoad(t *testing.T) {
	Convey("Given dataset files on disk", t, func() {
		ctx := context.Background()
		dir := t.TempDir()

		Convey("When a JSON dataset is loaded", func() {
			store, err := repository.Load(ctx, writeFile(dir, "cutoffs.json", datasetJSON))

			Convey("Then every row should become a record", func() {
				So(err, ShouldBeNil)
				So(store.Count(ctx), ShouldEqual, 2)
				recs := store.Records(ctx)
				So(recs[0].Institution, ShouldEqual, "Madras Medical College")
				So(recs[0].InstitutionType, ShouldEqual, "Government")
				So(recs[0].Round, ShouldEqual, "Round1")
				So(recs[0].Year, ShouldEqual, 2025)
				So(recs[0].Score.Mean, ShouldEqual, 500.0)
				So(recs[0].Rank.Mean, ShouldEqual, 120.5)
			})

			Convey("And null or missing numbers should become NaN", func() {
				recs := store.Records(ctx)
				So(recs[1].Year, ShouldEqual, 0)
				So(math.IsNaN(recs[1].Rank.Std), ShouldBeTrue)
				So(math.IsNaN(recs[1].Score.Std), ShouldBeTrue)
				So(recs[1].Score.Min, ShouldEqual, 280.0)
			})
		})

		Convey("When a YAML dataset is loaded", func() {
			store, err := repository.Load(ctx, writeFile(dir, "cutoffs.yml", datasetYAML))

			Convey("Then it should decode the same fields", func() {
				So(err, ShouldBeNil)
				recs := store.Records(ctx)
				So(recs, ShouldHaveLength, 1)
				So(recs[0].Quota, ShouldEqual, "7.5%")
				So(recs[0].Year, ShouldEqual, 2024)
				So(recs[0].Score.Mean, ShouldEqual, 480.0)
			})
		})

		Convey("When the extension is not supported", func() {
			_, err := repository.Load(ctx, writeFile(dir, "cutoffs.csv", "a,b"))

			Convey("Then ErrUnsupportedFormat should be returned", func() {
				So(errors.Is(err, repository.ErrUnsupportedFormat), ShouldBeTrue)
			})
		})

		Convey("When the file does not exist", func() {
			_, err := repository.Load(ctx, filepath.Join(dir, "missing.json"))

			Convey("Then ErrReadDataset should be returned", func() {
				So(errors.Is(err, repository.ErrReadDataset), ShouldBeTrue)
			})
		})

		Convey("When the document is malformed", func() {
			_, err := repository.Load(ctx, writeFile(dir, "broken.json", `{"college":`))

			Convey("Then ErrDecodeDataset should be returned", func() {
				So(errors.Is(err, repository.ErrDecodeDataset), ShouldBeTrue)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := repository.Load(cctx, writeFile(dir, "cutoffs.json", datasetJSON))

			Convey("Then the context error should be returned", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestDecode(t *testing.T) {
	Convey("Given a JSON document with a byte order mark", t, func() {
		recs, err := repository.Decode([]byte("\xef\xbb\xbf[]"), repository.FormatJSON)

		Convey("Then it should decode to no records", func() {
			So(err, ShouldBeNil)
			So(recs, ShouldBeEmpty)
		})
	})

	Convey("Given an unknown format", t, func() {
		_, err := repository.Decode([]byte("[]"), repository.Format("toml"))

		Convey("Then ErrUnsupportedFormat should be returned", func() {
			So(errors.Is(err, repository.ErrUnsupportedFormat), ShouldBeTrue)
		})
	})
}

func TestMemoryStore_Options(t *testing.T) {
	Convey("Given a store with overlapping values", t, func() {
		ctx := context.Background()
		records := []model.HistoricalRecord{
			{Identity: model.Identity{Program: "MBBS", Community: "BC", Category: "GOVT", Quota: "7.5%", InstitutionType: "Government", Year: 2025}},
			{Identity: model.Identity{Program: "BDS", Community: "MBC", Category: "GOVT", Quota: "7.5%", InstitutionType: "Self Financing", Year: 2024}},
			{Identity: model.Identity{Program: " MBBS ", Community: "", Category: "GOVT", Quota: "7.5%", InstitutionType: "Government", Year: 2025}},
		}
		store := repository.NewMemoryStore(ctx, records)

		Convey("When options are requested", func() {
			opts := store.Options(ctx)

			Convey("Then values should be distinct, trimmed, non-blank and sorted", func() {
				So(opts.Programs, ShouldResemble, []string{"BDS", "MBBS"})
				So(opts.Communities, ShouldResemble, []string{"BC", "MBC"})
				So(opts.Categories, ShouldResemble, []string{"GOVT"})
				So(opts.Quotas, ShouldResemble, []string{"7.5%"})
				So(opts.InstitutionTypes, ShouldResemble, []string{"Government", "Self Financing"})
				So(opts.Years, ShouldResemble, []int{2024, 2025})
			})

			Convey("And mutating the result should not affect the store", func() {
				opts.Programs[0] = "changed"
				So(store.Options(ctx).Programs[0], ShouldEqual, "BDS")
			})
		})

		Convey("When the caller mutates its input slice", func() {
			records[0].Program = "changed"

			Convey("Then the store should keep its own copy", func() {
				So(store.Records(ctx)[0].Program, ShouldEqual, "MBBS")
			})
		})
	})
}

func TestMemoryStore_Malformed(t *testing.T) {
	Convey("Given a dataset with a record missing its institution", t, func() {
		var buf bytes.Buffer
		So(logger.InitWithWriter(&buf), ShouldBeNil)

		ctx := context.Background()
		full := model.Identity{
			Institution: "Madras Medical College", Program: "MBBS", Quota: "7.5%",
			Category: "GOVT", Community: "BC", InstitutionType: "Government", Year: 2025,
		}
		blank := full
		blank.Institution = " "
		store := repository.NewMemoryStore(ctx,
			[]model.HistoricalRecord{{Identity: full}, {Identity: blank}},
			repository.WithLogger(logger.Get()))

		Convey("Then the store should count it and warn once at load", func() {
			So(store.Malformed(), ShouldEqual, 1)
			So(strings.Count(buf.String(), "dataset has malformed records"), ShouldEqual, 1)
		})

		Convey("And reading the records should not warn again", func() {
			before := buf.Len()
			_ = store.Records(ctx)
			_ = store.Options(ctx)
			So(buf.Len(), ShouldEqual, before)
		})
	})
}
