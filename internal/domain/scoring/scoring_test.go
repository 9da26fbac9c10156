package scoring_test

import (
	"math"
	"testing"

	"github.com/okian/cutoff/internal/domain/model"
	scoring "github.com/okian/cutoff/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalCDF(t *testing.T) {
	Convey("Given the normal CDF approximation", t, func() {
		Convey("Then it should match reference values", func() {
			So(scoring.NormalCDF(0), ShouldAlmostEqual, 0.5, 1e-7)
			So(scoring.NormalCDF(1), ShouldAlmostEqual, 0.8413447, 1e-6)
			So(scoring.NormalCDF(-1), ShouldAlmostEqual, 0.1586553, 1e-6)
			So(scoring.NormalCDF(1.96), ShouldAlmostEqual, 0.9750021, 1e-6)
		})

		Convey("And it should be symmetric around zero", func() {
			for _, z := range []float64{0.25, 0.5, 1.5, 2.5, 3.5} {
				So(scoring.NormalCDF(z)+scoring.NormalCDF(-z), ShouldAlmostEqual, 1, 1e-9)
			}
		})

		Convey("And it should agree with math.Erf within the approximation error", func() {
			for z := -4.0; z <= 4.0; z += 0.25 {
				exact := 0.5 * (1 + math.Erf(z/math.Sqrt2))
				So(scoring.NormalCDF(z), ShouldAlmostEqual, exact, 2e-7)
			}
		})
	})
}

func TestFromStats(t *testing.T) {
	Convey("Given a summary with spread", t, func() {
		s := model.Stats{Mean: 500, Std: 20, Min: 450, Max: 550}

		Convey("When the score sits on the mean", func() {
			exp := scoring.FromStats(500, s)

			Convey("Then the normal CDF method should give one half", func() {
				So(exp.Method, ShouldEqual, model.MethodNormalCDF)
				So(exp.Reason, ShouldEqual, model.ReasonNone)
				So(exp.ZScore, ShouldNotBeNil)
				So(*exp.ZScore, ShouldEqual, 0.0)
				So(exp.RawScore, ShouldAlmostEqual, 0.5, 1e-7)
			})

			Convey("And the payload should echo every input", func() {
				So(exp.InputScore, ShouldEqual, 500.0)
				So(exp.Mean, ShouldEqual, 500.0)
				So(exp.Std, ShouldEqual, 20.0)
				So(exp.Min, ShouldEqual, 450.0)
				So(exp.Max, ShouldEqual, 550.0)
			})
		})

		Convey("When the score equals the floor", func() {
			exp := scoring.FromStats(450, s)

			Convey("Then it should not be treated as below the floor", func() {
				So(exp.Reason, ShouldNotEqual, model.ReasonBelowFloor)
				So(exp.Method, ShouldEqual, model.MethodNormalCDF)
				So(*exp.ZScore, ShouldEqual, -2.5)
			})
		})

		Convey("When the score is below the floor", func() {
			exp := scoring.FromStats(449.99, s)

			Convey("Then the fallback should return zero", func() {
				So(exp.Method, ShouldEqual, model.MethodFallback)
				So(exp.Reason, ShouldEqual, model.ReasonBelowFloor)
				So(exp.RawScore, ShouldEqual, 0.0)
				So(exp.ZScore, ShouldBeNil)
			})
		})

		Convey("When the score increases", func() {
			Convey("Then the probability should never decrease", func() {
				prev := -1.0
				for score := 450.0; score <= 580; score += 2 {
					raw := scoring.FromStats(score, s).RawScore
					So(raw, ShouldBeGreaterThanOrEqualTo, prev)
					So(raw, ShouldBeBetweenOrEqual, 0, 1)
					prev = raw
				}
			})
		})
	})

	Convey("Given undefined inputs", t, func() {
		s := model.Stats{Mean: 500, Std: 20, Min: 450, Max: 550}

		Convey("When the score is NaN", func() {
			exp := scoring.FromStats(math.NaN(), s)

			Convey("Then the undefined-input fallback should apply", func() {
				So(exp.Method, ShouldEqual, model.MethodFallback)
				So(exp.Reason, ShouldEqual, model.ReasonUndefinedInput)
				So(exp.RawScore, ShouldEqual, 0.0)
				So(exp.ZScore, ShouldBeNil)
			})
		})

		Convey("When the mean is missing", func() {
			missing := s
			missing.Mean = math.NaN()
			exp := scoring.FromStats(520, missing)

			Convey("Then the undefined-input fallback should apply", func() {
				So(exp.Reason, ShouldEqual, model.ReasonUndefinedInput)
				So(exp.RawScore, ShouldEqual, 0.0)
			})
		})

		Convey("When the score is infinite", func() {
			exp := scoring.FromStats(math.Inf(1), s)

			Convey("Then it should still be absorbed", func() {
				So(exp.Reason, ShouldEqual, model.ReasonUndefinedInput)
			})
		})
	})

	Convey("Given a summary without spread but with a range", t, func() {
		s := model.Stats{Mean: 50, Std: 0, Min: 0, Max: 100}

		Convey("Then the min-max method should interpolate", func() {
			exp := scoring.FromStats(25, s)
			So(exp.Method, ShouldEqual, model.MethodMinMax)
			So(exp.RawScore, ShouldEqual, 0.25)
			So(exp.ZScore, ShouldBeNil)
		})

		Convey("And scores above the max should clamp to one", func() {
			So(scoring.FromStats(150, s).RawScore, ShouldEqual, 1.0)
		})

		Convey("And a missing std should also fall through to min-max", func() {
			nanStd := s
			nanStd.Std = math.NaN()
			So(scoring.FromStats(75, nanStd).Method, ShouldEqual, model.MethodMinMax)
		})
	})

	Convey("Given a degenerate single-point summary", t, func() {
		s := model.Stats{Mean: 600, Std: 0, Min: 600, Max: 600}

		Convey("When the score meets the mean", func() {
			exp := scoring.FromStats(600, s)

			Convey("Then the coarse high heuristic should apply", func() {
				So(exp.Method, ShouldEqual, model.MethodFallback)
				So(exp.Reason, ShouldEqual, model.ReasonDegenerate)
				So(exp.RawScore, ShouldEqual, 0.85)
			})
		})

		Convey("When min is missing and the score is under the mean", func() {
			noFloor := model.Stats{Mean: 600, Std: 0, Min: math.NaN(), Max: math.NaN()}
			exp := scoring.FromStats(590, noFloor)

			Convey("Then the coarse low heuristic should apply", func() {
				So(exp.Reason, ShouldEqual, model.ReasonDegenerate)
				So(exp.RawScore, ShouldEqual, 0.15)
			})
		})
	})
}

func TestTierFor(t *testing.T) {
	Convey("Given raw probabilities", t, func() {
		Convey("Then they should map to fixed tiers", func() {
			So(scoring.TierFor(0.75), ShouldEqual, model.TierHigh)
			So(scoring.TierFor(0.99), ShouldEqual, model.TierHigh)
			So(scoring.TierFor(0.7499), ShouldEqual, model.TierMedium)
			So(scoring.TierFor(0.45), ShouldEqual, model.TierMedium)
			So(scoring.TierFor(0.4499), ShouldEqual, model.TierLow)
			So(scoring.TierFor(0), ShouldEqual, model.TierLow)
		})
	})
}
