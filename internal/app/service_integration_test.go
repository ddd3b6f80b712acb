package service_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	service "github.com/okian/dataq/internal/app"
	"github.com/okian/dataq/internal/domain/model"
	"github.com/okian/dataq/internal/testdatasets"
	"github.com/okian/dataq/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func generate(t *testing.T, opts ...testdatasets.Option) (model.Dataset, *model.Schema) {
	t.Helper()
	g := testdatasets.NewGenerator(opts...)
	data, err := g.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return data, g.Schema()
}

func TestService_Integration(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with the real assessors", t, func() {
		svc := started(t, service.WithLogger(logger.Nop()), service.WithPassThreshold(0.5))
		defer svc.Stop()

		Convey("When a clean dataset is assessed", func() {
			data, schema := generate(t, testdatasets.WithRecords(200), testdatasets.WithSeed(3))
			report, err := svc.Assess(ctx, service.Request{Data: data, Schema: schema, Level: model.DetailHigh})

			Convey("Then every dimension reports and the dataset passes", func() {
				So(err, ShouldBeNil)
				So(report.Records, ShouldEqual, 200)
				So(report.Dimensions, ShouldHaveLength, 4)
				So(report.Dimensions[model.Completeness].Score, ShouldEqual, 1.0)
				So(report.Dimensions[model.Consistency].Score, ShouldBeGreaterThan, 0.95)
				So(report.Passed, ShouldBeTrue)
				So(report.Dimensions[model.Uniqueness].Details, ShouldContainKey, "duplicate_records")
			})
		})

		Convey("When a numeric field holds extreme magnitudes", func() {
			data := model.Dataset{}
			for _, x := range []float64{1e200, -1e200, 0, 5, 7} {
				data = append(data, model.NewRecord(model.F("x", x)))
			}
			report, err := svc.Assess(ctx, service.Request{Data: data, Level: model.DetailMedium})

			Convey("Then the report still encodes as JSON", func() {
				So(err, ShouldBeNil)
				_, err := json.Marshal(report)
				So(err, ShouldBeNil)
				dist := report.Dimensions[model.Diversity].Details["distributions"]
				So(dist, ShouldNotContainKey, "x")
			})
		})

		Convey("When a defective dataset is assessed", func() {
			clean, schema := generate(t, testdatasets.WithRecords(200), testdatasets.WithSeed(3))
			dirty, _ := generate(t,
				testdatasets.WithRecords(200),
				testdatasets.WithSeed(3),
				testdatasets.WithMissingRate(0.3),
				testdatasets.WithDuplicateRate(0.3),
				testdatasets.WithFormatNoise(0.3),
			)
			good, errGood := svc.Assess(ctx, service.Request{Data: clean, Schema: schema})
			bad, errBad := svc.Assess(ctx, service.Request{Data: dirty, Schema: schema})

			Convey("Then it scores below the clean one", func() {
				So(errGood, ShouldBeNil)
				So(errBad, ShouldBeNil)
				So(bad.Dimensions[model.Completeness].Score, ShouldBeLessThan, good.Dimensions[model.Completeness].Score)
				So(bad.Dimensions[model.Uniqueness].Score, ShouldBeLessThan, good.Dimensions[model.Uniqueness].Score)
				So(bad.Dimensions[model.Consistency].Score, ShouldBeLessThan, good.Dimensions[model.Consistency].Score)
				So(bad.OverallScore, ShouldBeLessThan, good.OverallScore)
				So(bad.IssueCount, ShouldBeGreaterThan, good.IssueCount)
			})
		})

		Convey("When an empty dataset is assessed", func() {
			report, err := svc.Assess(ctx, service.Request{Data: model.Dataset{}})

			Convey("Then every dimension scores zero with an error detail", func() {
				So(err, ShouldBeNil)
				So(report.OverallScore, ShouldEqual, 0)
				So(report.Passed, ShouldBeFalse)
				for _, r := range report.Dimensions {
					So(r.Details["error"], ShouldEqual, "empty dataset")
				}
			})
		})

		Convey("When many datasets are assessed concurrently", func() {
			const n = 16
			var wg sync.WaitGroup
			errs := make([]error, n)
			scores := make([]float64, n)
			inputs := make([]model.Dataset, 2)
			schema := testdatasets.NewGenerator().Schema()
			for i := range inputs {
				inputs[i], _ = generate(t, testdatasets.WithRecords(50), testdatasets.WithSeed(int64(i)))
			}
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					data := inputs[i%2]
					r, err := svc.Assess(ctx, service.Request{Data: data, Schema: schema, Level: model.DetailLow})
					errs[i] = err
					if err == nil {
						scores[i] = r.OverallScore
					}
				}(i)
			}
			wg.Wait()

			Convey("Then all succeed and equal inputs score equally", func() {
				for i := 0; i < n; i++ {
					So(errs[i], ShouldBeNil)
				}
				So(scores[2], ShouldEqual, scores[0])
				So(scores[3], ShouldEqual, scores[1])
				So(svc.GetStats()["assessed"], ShouldEqual, int64(n))
			})
		})
	})
}
