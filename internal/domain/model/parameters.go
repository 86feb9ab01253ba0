package model

// ScaleFactor converts the model's target unit (hundreds of thousands of
// dollars) to dollars.
const ScaleFactor = 100000

// Model identity reported by the API.
const (
	Name        = "Simple Linear Regression"
	Description = "Pre-trained linear model coefficients over the California housing features"
)

// Parameters is an immutable set of linear coefficients and intercept.
// The zero value is a model that always predicts zero.
type Parameters struct {
	coefficients FeatureVector
	intercept    float64
}

// NewParameters builds a Parameters value. The coefficient array is copied.
func NewParameters(coefficients FeatureVector, intercept float64) Parameters {
	return Parameters{coefficients: coefficients, intercept: intercept}
}

// Coefficients returns a copy of the per-feature multipliers.
func (p Parameters) Coefficients() FeatureVector { return p.coefficients }

// Coefficient returns the multiplier for feature i.
func (p Parameters) Coefficient(i int) float64 { return p.coefficients[i] }

// Intercept returns the constant offset.
func (p Parameters) Intercept() float64 { return p.intercept }

// linear holds the coefficients extracted from the trained scikit-learn
// LinearRegression model.
var linear = NewParameters(
	FeatureVector{0.43663, 0.01384, -0.11757, 0.64933, -0.00013, -0.04221, -0.89986, -0.87088},
	0.14756,
)

// Linear returns the baked-in model parameters.
func Linear() Parameters { return linear }
