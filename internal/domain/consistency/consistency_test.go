package consistency_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/dataq/internal/domain/consistency"
	"github.com/okian/dataq/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func column(name string, values ...any) model.Dataset {
	data := make(model.Dataset, 0, len(values))
	for _, v := range values {
		data = append(data, model.NewRecord(model.F(name, v)))
	}
	return data
}

func TestTypeConsistency(t *testing.T) {
	Convey("Given a field of ISO dates", t, func() {
		data := column("d", "2024-01-01", "2024-02-11", "2023-12-31", nil)

		Convey("When assessing at medium detail", func() {
			res, err := consistency.New().Assess(context.Background(), data, nil, model.DetailMedium)
			So(err, ShouldBeNil)

			Convey("Then the field is fully consistent", func() {
				So(res.Score, ShouldEqual, 1.0)
				So(res.Issues, ShouldBeEmpty)
				So(res.Details["type_consistency"].(map[string]float64)["d"], ShouldEqual, 1.0)
				So(res.Details["format_consistency"].(map[string]float64)["d"], ShouldEqual, 1.0)
				So(res.Details["field_scores"].(map[string]float64)["d"], ShouldEqual, 1.0)
				So(res.Details["detected_formats"].(map[string]string)["d"], ShouldEqual, "iso_date")
			})
		})
	})

	Convey("Given a numeric field with a stray string", t, func() {
		data := column("v", 1, 2, 3, "x")

		Convey("When assessing at high detail", func() {
			res, err := consistency.New().Assess(context.Background(), data, nil, model.DetailHigh)
			So(err, ShouldBeNil)

			Convey("Then the non-string field reuses its type score as format score", func() {
				So(res.Score, ShouldAlmostEqual, 0.75, 1e-12)
				So(res.Details["format_consistency"].(map[string]float64)["v"], ShouldAlmostEqual, 0.75, 1e-12)
			})

			Convey("And an inconsistent_type issue is raised at high severity", func() {
				So(len(res.Issues), ShouldEqual, 1)
				So(res.Issues[0].Type, ShouldEqual, model.IssueInconsistentType)
				So(res.Issues[0].Severity, ShouldEqual, model.SeverityHigh)
				So(res.Issues[0].Metrics["type_consistency"], ShouldAlmostEqual, 0.75, 1e-12)
			})

			Convey("And one example per kind is reported", func() {
				ex := res.Details["type_examples"].(map[string]map[string]model.Value)
				So(ex["v"]["int"], ShouldResemble, model.Int(1))
				So(ex["v"]["string"], ShouldResemble, model.String("x"))
			})
		})
	})

	Convey("Given int, float and string spellings of one", t, func() {
		data := column("n", 1, 1.0, "1")

		Convey("Then each is a distinct kind", func() {
			res, err := consistency.New().Assess(context.Background(), data, nil, model.DetailMedium)
			So(err, ShouldBeNil)
			So(res.Details["type_consistency"].(map[string]float64)["n"], ShouldAlmostEqual, 1.0/3, 1e-12)
		})
	})
}

func TestFormatConsistency(t *testing.T) {
	Convey("Given mostly ISO dates and one US date", t, func() {
		data := column("d", "2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "01/05/2024")
		res, err := consistency.New().Assess(context.Background(), data, nil, model.DetailMedium)
		So(err, ShouldBeNil)

		Convey("Then the best pattern rate is the format score", func() {
			So(res.Details["format_consistency"].(map[string]float64)["d"], ShouldAlmostEqual, 0.8, 1e-12)
			So(res.Details["detected_formats"].(map[string]string)["d"], ShouldEqual, "iso_date")
			So(res.Score, ShouldAlmostEqual, 0.6+0.4*0.8, 1e-12)
		})

		Convey("And a low severity inconsistent_format issue is raised", func() {
			So(len(res.Issues), ShouldEqual, 1)
			So(res.Issues[0].Type, ShouldEqual, model.IssueInconsistentFormat)
			So(res.Issues[0].Severity, ShouldEqual, model.SeverityLow)
		})
	})

	Convey("Given free text matching no pattern", t, func() {
		data := column("code", "abc", "def", "ghi", "jk", "xyz")
		res, err := consistency.New().Assess(context.Background(), data, nil, model.DetailMedium)
		So(err, ShouldBeNil)

		Convey("Then format falls back to length consistency", func() {
			So(res.Details["format_consistency"].(map[string]float64)["code"], ShouldAlmostEqual, 0.8, 1e-12)
			So(res.Details["detected_formats"].(map[string]string)["code"], ShouldEqual, "length")
		})
	})

	Convey("Given a custom pattern bank", t, func() {
		data := column("code", "abc", "def", "ghi", "jk", "xyz")
		a := consistency.New(consistency.WithPatterns([]consistency.Pattern{
			{Name: "letters", Matcher: matchAll{}},
		}))

		Convey("Then the new pattern is used without code changes", func() {
			res, err := a.Assess(context.Background(), data, nil, model.DetailMedium)
			So(err, ShouldBeNil)
			So(res.Score, ShouldEqual, 1.0)
			So(res.Details["detected_formats"].(map[string]string)["code"], ShouldEqual, "letters")
		})
	})
}

type matchAll struct{}

func (matchAll) MatchString(string) bool { return true }

func TestRelationships(t *testing.T) {
	rec := func(country, state any) model.Record {
		return model.NewRecord(model.F("country", country), model.F("state", state))
	}
	data := model.Dataset{
		rec("US", "CA"),
		rec("US", "NY"),
		rec("US", "TX"),
		rec("US", nil),
		rec(nil, nil),
	}

	Convey("Given state depending on country", t, func() {
		schema := &model.Schema{Dependencies: map[string][]string{"state": {"country"}}}
		res, err := consistency.New().Assess(context.Background(), data, schema, model.DetailMedium)
		So(err, ShouldBeNil)

		Convey("Then the violation costs a fixed penalty", func() {
			So(res.Score, ShouldAlmostEqual, 0.95, 1e-12)
			So(res.Details["relationship_scores"].(map[string]float64)["state_country"], ShouldAlmostEqual, 0.75, 1e-12)
		})

		Convey("And an inconsistent_relationship issue is keyed by both fields", func() {
			So(len(res.Issues), ShouldEqual, 1)
			So(res.Issues[0].FieldName(), ShouldEqual, "state_country")
			So(res.Issues[0].Type, ShouldEqual, model.IssueInconsistentRelationship)
			So(res.Issues[0].Severity, ShouldEqual, model.SeverityHigh)
		})
	})

	Convey("Given a dependency on an unknown field", t, func() {
		schema := &model.Schema{Dependencies: map[string][]string{"state": {"ghost"}}}

		Convey("Then it is skipped silently", func() {
			res, err := consistency.New().Assess(context.Background(), data, schema, model.DetailLow)
			So(err, ShouldBeNil)
			So(res.Score, ShouldEqual, 1.0)
			So(res.Issues, ShouldBeEmpty)
		})
	})
}

func TestRelationshipPenalty(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e", "f"}
	deps := make(map[string][]string, len(names))
	for _, n := range names {
		deps[n] = []string{"k"}
	}
	schema := &model.Schema{Dependencies: deps}

	Convey("Given six fields each missing once where their key is present", t, func() {
		var data model.Dataset
		for i := 0; i < 5; i++ {
			fields := []model.Field{model.F("k", i)}
			for j, n := range names {
				var v any = i
				if j%5 == i {
					v = nil
				}
				fields = append(fields, model.F(n, v))
			}
			data = append(data, model.NewRecord(fields...))
		}
		res, err := consistency.New().Assess(context.Background(), data, schema, model.DetailMedium)
		So(err, ShouldBeNil)

		Convey("Then the penalty is capped at 0.2", func() {
			So(res.Details["relationship_violations"], ShouldEqual, 6)
			So(res.Score, ShouldAlmostEqual, 0.8, 1e-12)
		})

		Convey("And a ratio of exactly 0.8 is a medium violation", func() {
			So(len(res.Issues), ShouldEqual, 6)
			for _, is := range res.Issues {
				So(is.Type, ShouldEqual, model.IssueInconsistentRelationship)
				So(is.Severity, ShouldEqual, model.SeverityMedium)
				So(is.Metrics["consistency"], ShouldAlmostEqual, 0.8, 1e-12)
			}
		})
	})

	Convey("Given fields mixing every kind under the full penalty", t, func() {
		data := model.Dataset{
			model.NewRecord(model.F("a", nil), model.F("b", true), model.F("c", true)),
			model.NewRecord(model.F("a", true), model.F("b", nil), model.F("c", 1)),
			model.NewRecord(model.F("a", 1), model.F("b", 1), model.F("c", nil)),
			model.NewRecord(model.F("a", 2.5), model.F("b", 2.5), model.F("c", 2.5)),
			model.NewRecord(model.F("a", "s"), model.F("b", "s"), model.F("c", "s")),
		}
		mixed := &model.Schema{Dependencies: map[string][]string{
			"a": {"b", "c"},
			"b": {"a", "c"},
			"c": {"a", "b"},
		}}
		res, err := consistency.New().Assess(context.Background(), data, mixed, model.DetailMedium)
		So(err, ShouldBeNil)

		Convey("Then the score bottoms out without going negative", func() {
			So(res.Details["field_scores"].(map[string]float64)["a"], ShouldAlmostEqual, 0.25, 1e-12)
			So(res.Details["relationship_violations"], ShouldEqual, 6)
			So(res.Score, ShouldAlmostEqual, 0.05, 1e-12)
			So(res.Score, ShouldBeGreaterThanOrEqualTo, 0)
		})

		Convey("And ratios below 0.8 are high violations", func() {
			for _, is := range res.Issues {
				if is.Type == model.IssueInconsistentRelationship {
					So(is.Severity, ShouldEqual, model.SeverityHigh)
				}
			}
		})
	})
}

func TestDetailLevels(t *testing.T) {
	data := model.Dataset{
		model.NewRecord(model.F("d", "2024-01-01"), model.F("v", 1), model.F("w", "x")),
		model.NewRecord(model.F("d", "01/02/2024"), model.F("v", "two"), model.F("w", nil)),
		model.NewRecord(model.F("d", "2024-01-03"), model.F("v", 3), model.F("w", "z")),
	}
	schema := &model.Schema{Dependencies: map[string][]string{"w": {"v"}}}

	Convey("Given the same dataset assessed twice", t, func() {
		a := consistency.New()
		first, err := a.Assess(context.Background(), data, schema, model.DetailHigh)
		So(err, ShouldBeNil)
		second, err := a.Assess(context.Background(), data, schema, model.DetailHigh)
		So(err, ShouldBeNil)

		Convey("Then both results are identical", func() {
			So(second, ShouldResemble, first)
		})
	})

	Convey("Given high detail", t, func() {
		high, err := consistency.New().Assess(context.Background(), data, schema, model.DetailHigh)
		So(err, ShouldBeNil)
		med, err := consistency.New().Assess(context.Background(), data, schema, model.DetailMedium)
		So(err, ShouldBeNil)

		Convey("Then it is a superset of medium detail", func() {
			So(high.Score, ShouldEqual, med.Score)
			So(high.Issues, ShouldResemble, med.Issues)
			for k, v := range med.Details {
				So(high.Details, ShouldContainKey, k)
				So(high.Details[k], ShouldResemble, v)
			}
			So(high.Details, ShouldContainKey, "type_examples")
		})
	})
}

func TestConsistencyEdgeCases(t *testing.T) {
	Convey("Given an empty dataset", t, func() {
		res, err := consistency.New().Assess(context.Background(), model.Dataset{}, nil, model.DetailLow)
		So(err, ShouldBeNil)
		So(res.Score, ShouldEqual, 0)
		So(res.Details["error"], ShouldEqual, "empty dataset")
	})

	Convey("Given records without fields", t, func() {
		res, err := consistency.New().Assess(context.Background(), model.Dataset{model.NewRecord()}, nil, model.DetailLow)
		So(err, ShouldBeNil)
		So(res.Score, ShouldEqual, 0)
		So(res.Details["error"], ShouldEqual, "no fields")
	})

	Convey("Given an invalid detail level", t, func() {
		_, err := consistency.New().Assess(context.Background(), column("a", 1), nil, "loud")
		So(errors.Is(err, model.ErrInvalidDetailLevel), ShouldBeTrue)
	})

	Convey("Given low detail", t, func() {
		res, _ := consistency.New().Assess(context.Background(), column("v", 1, "x"), nil, model.DetailLow)
		So(res.Details, ShouldBeNil)
	})
}
