package dimension_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/okian/dataq/internal/domain/dimension"
	"github.com/okian/dataq/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAll(t *testing.T) {
	Convey("Given the default assessors", t, func() {
		all := dimension.All(nil)

		Convey("Then they cover every dimension in canonical order", func() {
			So(len(all), ShouldEqual, 4)
			for i, d := range model.Dimensions() {
				So(all[i].Dimension(), ShouldEqual, d)
			}
		})

		Convey("And they can run concurrently on shared input", func() {
			data := model.Dataset{
				model.NewRecord(model.F("a", 1), model.F("b", "x")),
				model.NewRecord(model.F("a", nil), model.F("b", "x")),
				model.NewRecord(model.F("a", 3), model.F("b", "y")),
			}
			results := make([]model.DimensionResult, len(all))
			var wg sync.WaitGroup
			for i, a := range all {
				wg.Add(1)
				go func(i int, a dimension.Assessor) {
					defer wg.Done()
					results[i], _ = a.Assess(context.Background(), data, nil, model.DetailHigh)
				}(i, a)
			}
			wg.Wait()
			for _, r := range results {
				So(r.Score, ShouldBeBetweenOrEqual, 0, 1)
			}
		})

		Convey("And low detail never carries details", func() {
			data := model.Dataset{model.NewRecord(model.F("a", 1)), model.NewRecord(model.F("a", 1))}
			for _, a := range all {
				r, err := a.Assess(context.Background(), data, nil, model.DetailLow)
				So(err, ShouldBeNil)
				So(r.Details, ShouldBeNil)
			}
		})
	})
}

func TestRegistry(t *testing.T) {
	Convey("Given a registry of two assessors", t, func() {
		all := dimension.All(nil)
		r := dimension.NewRegistry(all[3], all[0])

		Convey("Then dimensions are listed in canonical order", func() {
			So(r.Dimensions(), ShouldResemble, []model.Dimension{model.Completeness, model.Uniqueness})
		})

		Convey("And unknown dimensions are rejected", func() {
			_, err := r.Lookup(model.Diversity)
			So(errors.Is(err, dimension.ErrUnknownDimension), ShouldBeTrue)
		})
	})
}
