package diversity_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/okian/dataq/internal/domain/diversity"
	"github.com/okian/dataq/internal/domain/model"
	"github.com/okian/dataq/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

func column(name string, values ...any) model.Dataset {
	data := make(model.Dataset, 0, len(values))
	for _, v := range values {
		data = append(data, model.NewRecord(model.F(name, v)))
	}
	return data
}

func TestFieldDiversity(t *testing.T) {
	ctx := context.Background()

	Convey("Given a field holding one value in every record", t, func() {
		data := column("c", "x", "x", "x", "x", "x")
		res, err := diversity.New().Assess(ctx, data, nil, model.DetailMedium)
		So(err, ShouldBeNil)

		Convey("Then diversity is the unique ratio share only", func() {
			So(res.Score, ShouldAlmostEqual, 0.3/5, 1e-12)
			So(res.Details["entropy_scores"].(map[string]float64)["c"], ShouldEqual, 0)
		})

		Convey("And a high severity low_diversity issue is raised", func() {
			So(len(res.Issues), ShouldEqual, 1)
			So(res.Issues[0].Type, ShouldEqual, model.IssueLowDiversity)
			So(res.Issues[0].Severity, ShouldEqual, model.SeverityHigh)
		})
	})

	Convey("Given distinct values", t, func() {
		res, err := diversity.New().Assess(ctx, column("id", "a", "b", "c", "d"), nil, model.DetailLow)
		So(err, ShouldBeNil)

		Convey("Then diversity is maximal", func() {
			So(res.Score, ShouldAlmostEqual, 1.0, 1e-12)
			So(res.Issues, ShouldBeEmpty)
			So(res.Details, ShouldBeNil)
		})
	})

	Convey("Given two balanced values", t, func() {
		res, err := diversity.New().Assess(ctx, column("b", "a", "a", "b", "b"), nil, model.DetailMedium)
		So(err, ShouldBeNil)

		Convey("Then entropy is normalized to one", func() {
			So(res.Details["entropy_scores"].(map[string]float64)["b"], ShouldAlmostEqual, 1.0, 1e-12)
			So(res.Details["unique_value_ratios"].(map[string]float64)["b"], ShouldAlmostEqual, 0.5, 1e-12)
			So(res.Score, ShouldAlmostEqual, 0.85, 1e-12)
		})
	})
}

func TestOverallTrimming(t *testing.T) {
	Convey("Given four distinct fields and one constant field", t, func() {
		var data model.Dataset
		for i := 0; i < 4; i++ {
			data = append(data, model.NewRecord(
				model.F("a", i), model.F("b", i*2), model.F("c", i*3), model.F("d", i*4), model.F("k", "same"),
			))
		}
		res, err := diversity.New().Assess(context.Background(), data, nil, model.DetailLow)
		So(err, ShouldBeNil)

		Convey("Then the outlying field is trimmed from the mean", func() {
			So(res.Score, ShouldAlmostEqual, 1.0, 1e-12)
		})

		Convey("But it still raises an issue", func() {
			So(len(res.Issues), ShouldEqual, 1)
			So(res.Issues[0].FieldName(), ShouldEqual, "k")
		})
	})

	Convey("Given two fields without outliers", t, func() {
		data := model.Dataset{
			model.NewRecord(model.F("id", 1), model.F("flag", true)),
			model.NewRecord(model.F("id", 2), model.F("flag", true)),
			model.NewRecord(model.F("id", 3), model.F("flag", true)),
			model.NewRecord(model.F("id", 4), model.F("flag", true)),
		}

		Convey("Then the plain mean is used", func() {
			res, err := diversity.New().Assess(context.Background(), data, nil, model.DetailLow)
			So(err, ShouldBeNil)
			So(res.Score, ShouldAlmostEqual, (1.0+0.3/4)/2, 1e-12)
		})
	})
}

func TestDistributions(t *testing.T) {
	ctx := context.Background()

	Convey("Given a numeric field", t, func() {
		data := column("n", 1, 2, 3, 4, 5, 6, 7, 8, 9, 10.0)

		Convey("When assessing at medium detail", func() {
			res, err := diversity.New().Assess(ctx, data, nil, model.DetailMedium)
			So(err, ShouldBeNil)

			Convey("Then a summary is reported", func() {
				sum := res.Details["distributions"].(map[string]stats.Summary)["n"]
				So(sum.Min, ShouldEqual, 1)
				So(sum.Max, ShouldEqual, 10)
				So(sum.Mean, ShouldAlmostEqual, 5.5, 1e-12)
				So(sum.Median, ShouldAlmostEqual, 5.5, 1e-12)
				So(sum.Q1, ShouldAlmostEqual, 3.25, 1e-12)
				So(sum.Q3, ShouldAlmostEqual, 7.75, 1e-12)
				So(sum.Skewness, ShouldAlmostEqual, 0, 1e-9)
				So(res.Details, ShouldNotContainKey, "value_distributions")
			})
		})

		Convey("When assessing at high detail", func() {
			res, err := diversity.New().Assess(ctx, data, nil, model.DetailHigh)
			So(err, ShouldBeNil)

			Convey("Then a ten bucket histogram is reported", func() {
				vd := res.Details["value_distributions"].(map[string]map[string]any)["n"]
				So(vd["type"], ShouldEqual, diversity.DistributionNumeric)
				hist := vd["histogram"].([]stats.Bucket)
				So(len(hist), ShouldEqual, 10)
				total := 0
				for _, b := range hist {
					total += b.Count
				}
				So(total, ShouldEqual, 10)
			})
		})
	})

	Convey("Given a numeric field too short for kurtosis", t, func() {
		res, err := diversity.New().Assess(ctx, column("n", 1, 2, 3), nil, model.DetailMedium)

		Convey("Then only that distribution is omitted", func() {
			So(err, ShouldBeNil)
			So(res.Details["distributions"], ShouldNotContainKey, "n")
			So(res.Details["field_scores"], ShouldContainKey, "n")
		})
	})

	Convey("Given a numeric field whose moments overflow", t, func() {
		data := column("x", 1e200, -1e200, 0, 5, 7)

		Convey("When assessing at medium detail", func() {
			res, err := diversity.New().Assess(ctx, data, nil, model.DetailMedium)
			So(err, ShouldBeNil)

			Convey("Then the distribution is omitted and the result still encodes", func() {
				So(res.Details["distributions"], ShouldNotContainKey, "x")
				So(res.Details["field_scores"], ShouldContainKey, "x")
				_, err := json.Marshal(res)
				So(err, ShouldBeNil)
			})
		})

		Convey("When assessing at high detail", func() {
			res, err := diversity.New().Assess(ctx, column("x", 1e308, -1e308, 0, 5, 7), nil, model.DetailHigh)
			So(err, ShouldBeNil)

			Convey("Then the field falls back to top values", func() {
				vd := res.Details["value_distributions"].(map[string]map[string]any)["x"]
				So(vd["type"], ShouldEqual, diversity.DistributionCategorical)
				_, err := json.Marshal(res)
				So(err, ShouldBeNil)
			})
		})
	})

	Convey("Given a categorical field at high detail", t, func() {
		res, err := diversity.New(diversity.WithTopValues(2)).
			Assess(ctx, column("c", "x", "y", "x", "z", "x", "y"), nil, model.DetailHigh)
		So(err, ShouldBeNil)

		Convey("Then the most frequent values are listed with counts", func() {
			vd := res.Details["value_distributions"].(map[string]map[string]any)["c"]
			So(vd["type"], ShouldEqual, diversity.DistributionCategorical)
			top := vd["top_values"].([]model.ValueCount)
			So(len(top), ShouldEqual, 2)
			So(top[0].Value, ShouldResemble, model.String("x"))
			So(top[0].Count, ShouldEqual, 3)
			So(top[1].Value, ShouldResemble, model.String("y"))
		})
	})
}

func TestDetailLevels(t *testing.T) {
	ctx := context.Background()
	data := model.Dataset{
		model.NewRecord(model.F("n", 1), model.F("c", "x")),
		model.NewRecord(model.F("n", 2), model.F("c", "x")),
		model.NewRecord(model.F("n", 3), model.F("c", "y")),
		model.NewRecord(model.F("n", 4), model.F("c", "x")),
		model.NewRecord(model.F("n", 5), model.F("c", "z")),
	}

	Convey("Given the same dataset assessed twice", t, func() {
		a := diversity.New()
		first, err := a.Assess(ctx, data, nil, model.DetailHigh)
		So(err, ShouldBeNil)
		second, err := a.Assess(ctx, data, nil, model.DetailHigh)
		So(err, ShouldBeNil)

		Convey("Then both results are identical", func() {
			So(second, ShouldResemble, first)
		})
	})

	Convey("Given high detail", t, func() {
		high, err := diversity.New().Assess(ctx, data, nil, model.DetailHigh)
		So(err, ShouldBeNil)
		med, err := diversity.New().Assess(ctx, data, nil, model.DetailMedium)
		So(err, ShouldBeNil)

		Convey("Then it is a superset of medium detail", func() {
			So(high.Score, ShouldEqual, med.Score)
			for k, v := range med.Details {
				So(high.Details, ShouldContainKey, k)
				So(high.Details[k], ShouldResemble, v)
			}
			So(high.Details, ShouldContainKey, "value_distributions")
		})
	})
}

func TestDiversityEdgeCases(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty dataset", t, func() {
		res, err := diversity.New().Assess(ctx, nil, nil, model.DetailMedium)
		So(err, ShouldBeNil)
		So(res.Score, ShouldEqual, 0)
		So(res.Details["error"], ShouldEqual, "empty dataset")
	})

	Convey("Given only null values", t, func() {
		res, err := diversity.New().Assess(ctx, column("a", nil, nil), nil, model.DetailMedium)
		So(err, ShouldBeNil)
		So(res.Score, ShouldEqual, 0)
		So(res.Details["error"], ShouldEqual, "no non-null values")
	})

	Convey("Given a field that is null everywhere next to a populated one", t, func() {
		data := model.Dataset{
			model.NewRecord(model.F("a", 1), model.F("b", nil)),
			model.NewRecord(model.F("a", 2), model.F("b", nil)),
		}

		Convey("Then the null field is skipped", func() {
			res, err := diversity.New().Assess(ctx, data, nil, model.DetailMedium)
			So(err, ShouldBeNil)
			So(res.Details["field_scores"], ShouldNotContainKey, "b")
			So(res.Score, ShouldAlmostEqual, 1.0, 1e-12)
		})
	})
}
