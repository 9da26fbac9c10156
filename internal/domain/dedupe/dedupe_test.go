package dedupe_test

import (
	"testing"

	dedupe "github.com/okian/cutoff/internal/domain/dedupe"
	"github.com/okian/cutoff/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func prediction(college, program string, prob, mean float64, year int) model.Prediction {
	return model.Prediction{
		Identity: model.Identity{
			Institution: college,
			Program:     program,
			Year:        year,
		},
		Probability: prob,
		Score:       model.Stats{Mean: mean},
	}
}

func TestBestPerInstitution(t *testing.T) {
	Convey("Given no predictions", t, func() {
		out, dropped := dedupe.BestPerInstitution(nil)

		Convey("Then the result should be empty", func() {
			So(out, ShouldBeEmpty)
			So(dropped, ShouldEqual, 0)
		})
	})

	Convey("Given two variants of the same institution", t, func() {
		Convey("When names differ only in case and padding", func() {
			preds := []model.Prediction{
				prediction("Madras Medical College", "MBBS", 0.60, 500, 2025),
				prediction("  madras medical COLLEGE ", "BDS", 0.62, 480, 2025),
			}
			out, dropped := dedupe.BestPerInstitution(preds)

			Convey("Then only the more probable one should survive", func() {
				So(out, ShouldHaveLength, 1)
				So(dropped, ShouldEqual, 1)
				So(out[0].Probability, ShouldEqual, 0.62)
				So(out[0].Program, ShouldEqual, "BDS")
			})
		})

		Convey("When probabilities tie", func() {
			preds := []model.Prediction{
				prediction("Stanley Medical College", "MBBS", 0.7, 480, 2025),
				prediction("Stanley Medical College", "BDS", 0.7, 495, 2025),
			}
			out, _ := dedupe.BestPerInstitution(preds)

			Convey("Then the higher mean score should win", func() {
				So(out[0].Program, ShouldEqual, "BDS")
			})
		})

		Convey("When probability and mean tie", func() {
			preds := []model.Prediction{
				prediction("Stanley Medical College", "MBBS", 0.7, 480, 2024),
				prediction("Stanley Medical College", "MBBS", 0.7, 480, 2025),
			}
			out, _ := dedupe.BestPerInstitution(preds)

			Convey("Then the more recent year should win", func() {
				So(out[0].Year, ShouldEqual, 2025)
			})
		})

		Convey("When every criterion ties", func() {
			preds := []model.Prediction{
				prediction("Stanley Medical College", "MBBS", 0.7, 480, 2025),
				prediction("Stanley Medical College", "BDS", 0.7, 480, 2025),
			}
			out, _ := dedupe.BestPerInstitution(preds)

			Convey("Then the first one seen should stay", func() {
				So(out[0].Program, ShouldEqual, "MBBS")
			})
		})
	})

	Convey("Given several institutions", t, func() {
		preds := []model.Prediction{
			prediction("B College", "MBBS", 0.3, 400, 2025),
			prediction("A College", "MBBS", 0.9, 500, 2025),
			prediction("B College", "BDS", 0.5, 390, 2025),
		}
		out, dropped := dedupe.BestPerInstitution(preds)

		Convey("Then first-appearance order should be kept", func() {
			So(out, ShouldHaveLength, 2)
			So(dropped, ShouldEqual, 1)
			So(out[0].Institution, ShouldEqual, "B College")
			So(out[0].Probability, ShouldEqual, 0.5)
			So(out[1].Institution, ShouldEqual, "A College")
		})
	})
}
