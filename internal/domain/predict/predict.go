// Package predict turns a housing feature vector into a price estimate.
package predict

import (
	"context"
	"fmt"

	"github.com/okian/homeval/internal/domain/model"
)

const featureCount = model.FeatureCount

// Result is a single prediction together with the inputs that produced it.
type Result struct {
	// Prediction is the estimate in dollars.
	Prediction float64
	// Formatted renders Prediction for display, e.g. "$1,234,567.89".
	Formatted    string
	Features     model.FeatureVector
	FeatureNames []string
}

// Predictor computes a prediction from a feature vector.
type Predictor interface {
	Predict(ctx context.Context, features []float64) (Result, error)
}

// Linear implements Predictor as intercept + dot(coefficients, features),
// scaled to dollars. It holds no mutable state and is safe for concurrent use.
type Linear struct {
	params model.Parameters
	scale  float64
}

// NewLinear creates a linear predictor over the baked-in model parameters.
func NewLinear(opts ...Option) *Linear {
	l := &Linear{
		params: model.Linear(),
		scale:  model.ScaleFactor,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Parameters returns the coefficients and intercept in use.
func (l *Linear) Parameters() model.Parameters { return l.params }

// Scale returns the output multiplier.
func (l *Linear) Scale() float64 { return l.scale }

// Predict validates the arity of features and evaluates the model.
// NaN and infinities are accepted and propagate through IEEE-754 rules.
func (l *Linear) Predict(_ context.Context, features []float64) (res Result, err error) {
	if len(features) != featureCount {
		return Result{}, arityError("data", len(features))
	}
	var v model.FeatureVector
	copy(v[:], features)

	defer func() {
		if r := recover(); r != nil {
			res, err = Result{}, &ComputationError{Cause: fmt.Errorf("%v", r)}
		}
	}()

	p := l.Evaluate(v)
	return Result{
		Prediction:   p,
		Formatted:    FormatCurrency(p),
		Features:     v,
		FeatureNames: model.FeatureNames(),
	}, nil
}

// Evaluate computes the scaled prediction for v. Terms are summed in
// ascending feature order starting from the intercept.
func (l *Linear) Evaluate(v model.FeatureVector) float64 {
	raw := l.params.Intercept()
	for i := 0; i < featureCount; i++ {
		raw += l.params.Coefficient(i) * v[i]
	}
	return raw * l.scale
}
