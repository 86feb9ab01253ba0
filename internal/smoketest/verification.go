package smoketest

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/okian/homeval/internal/domain/model"
	"github.com/okian/homeval/internal/domain/predict"
	"github.com/shopspring/decimal"
)

// Verification errors.
var (
	ErrMismatch    = errors.New("prediction mismatch")
	ErrNoRejection = errors.New("malformed input accepted")
	ErrFailed      = errors.New("smoke test failed")
)

// verifyPrediction compares a server answer with the locally computed one.
func verifyPrediction(local *predict.Linear, c Case, resp PredictResponse) error {
	if resp.Error != "" {
		return fmt.Errorf("%w: %s: server error %q", ErrMismatch, c.Name, resp.Error)
	}
	var v model.FeatureVector
	copy(v[:], c.Features)
	want := local.Evaluate(v)

	if !withinRelative(resp.Prediction, want, RelativeTolerance) {
		return fmt.Errorf("%w: %s: got %v, want %v", ErrMismatch, c.Name, resp.Prediction, want)
	}
	if !slices.Equal(resp.InputFeatures, c.Features) {
		return fmt.Errorf("%w: %s: input_features %v do not echo %v", ErrMismatch, c.Name, resp.InputFeatures, c.Features)
	}
	if !slices.Equal(resp.FeatureNames, model.FeatureNames()) {
		return fmt.Errorf("%w: %s: feature_names %v", ErrMismatch, c.Name, resp.FeatureNames)
	}
	parsed, err := parseCurrency(resp.PredictionFormatted)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMismatch, c.Name, err)
	}
	if math.Abs(parsed-resp.Prediction) > centTolerance {
		return fmt.Errorf("%w: %s: %q is not %v to the cent", ErrMismatch, c.Name, resp.PredictionFormatted, resp.Prediction)
	}
	return nil
}

// verifyRejection expects an error body for a malformed case.
func verifyRejection(c Case, resp PredictResponse) error {
	if resp.Error == "" {
		return fmt.Errorf("%w: %s returned prediction %v", ErrNoRejection, c.Name, resp.Prediction)
	}
	return nil
}

// parseCurrency reverses the "$1,234.56" rendering.
func parseCurrency(s string) (float64, error) {
	digits, ok := strings.CutPrefix(s, "$")
	if !ok {
		return 0, fmt.Errorf("formatted value %q lacks the dollar sign", s)
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(digits, ",", ""))
	if err != nil {
		return 0, fmt.Errorf("formatted value %q: %w", s, err)
	}
	if d.Exponent() != -2 {
		return 0, fmt.Errorf("formatted value %q does not carry two decimals", s)
	}
	return d.InexactFloat64(), nil
}

func withinRelative(got, want, tol float64) bool {
	diff := math.Abs(got - want)
	if want == 0 {
		return diff <= tol
	}
	return diff/math.Abs(want) <= tol
}
