package predict_test

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/okian/homeval/internal/domain/predict"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFormatCurrency(t *testing.T) {
	Convey("Given values to render as dollars", t, func() {
		Convey("Then thousands are grouped and two decimals kept", func() {
			So(predict.FormatCurrency(1234567.8912), ShouldEqual, "$1,234,567.89")
			So(predict.FormatCurrency(412345.5), ShouldEqual, "$412,345.50")
			So(predict.FormatCurrency(999), ShouldEqual, "$999.00")
			So(predict.FormatCurrency(0), ShouldEqual, "$0.00")
		})

		Convey("And halves round away from zero", func() {
			So(predict.FormatCurrency(0.125), ShouldEqual, "$0.13")
			So(predict.FormatCurrency(999.995), ShouldEqual, "$1,000.00")
		})

		Convey("And negatives keep the sign after the symbol", func() {
			So(predict.FormatCurrency(-1234.5), ShouldEqual, "$-1,234.50")
		})

		Convey("And non-finite values are spelled out", func() {
			So(predict.FormatCurrency(math.NaN()), ShouldEqual, "$nan")
			So(predict.FormatCurrency(math.Inf(1)), ShouldEqual, "$inf")
			So(predict.FormatCurrency(math.Inf(-1)), ShouldEqual, "$-inf")
		})

		Convey("And stripping symbols parses back within a cent", func() {
			for _, v := range []float64{412345.6789, 1.005, 12345678.9, -5432.1} {
				s := strings.NewReplacer("$", "", ",", "").Replace(predict.FormatCurrency(v))
				back, err := strconv.ParseFloat(s, 64)
				So(err, ShouldBeNil)
				So(math.Abs(back-v), ShouldBeLessThanOrEqualTo, 0.01)
			}
		})
	})
}

func TestParseFeatures(t *testing.T) {
	Convey("Given textual feature values", t, func() {
		Convey("When all eight parse", func() {
			v, err := predict.ParseFeatures([]string{"8.3252", "41", " 6.98 ", "1.02", "322", "2.55", "37.88", "-122.23"})

			Convey("Then the vector is returned in order", func() {
				So(err, ShouldBeNil)
				So(v, ShouldResemble, []float64{8.3252, 41, 6.98, 1.02, 322, 2.55, 37.88, -122.23})
			})
		})

		Convey("When one value is not a number", func() {
			_, err := predict.ParseFeatures([]string{"8.3", "41", "6.9", "abc", "322", "2.5", "37.8", "-122.2"})

			Convey("Then the error names the offending feature", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "data[3] (AveBedrms)")
				So(err.Error(), ShouldContainSubstring, `"abc"`)
			})
		})

		Convey("When the count is wrong", func() {
			_, err := predict.ParseFeatures([]string{"1", "2"})

			Convey("Then a length mismatch is reported", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldEqual, "data: expected 8 features, got 2")
			})
		})
	})
}
