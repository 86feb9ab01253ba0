// Package model contains the housing feature layout and the baked-in
// linear model parameters shared by every layer.
package model

// FeatureCount is the fixed arity of a feature vector.
const FeatureCount = 8

// Feature positions within a FeatureVector.
const (
	MedInc = iota
	HouseAge
	AveRooms
	AveBedrms
	Population
	AveOccup
	Latitude
	Longitude
)

// FeatureVector holds one sample, positionally bound to FeatureNames.
type FeatureVector [FeatureCount]float64

// Slice returns the vector as a freshly allocated slice.
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, FeatureCount)
	copy(out, v[:])
	return out
}

var featureNames = [FeatureCount]string{
	"MedInc", "HouseAge", "AveRooms", "AveBedrms",
	"Population", "AveOccup", "Latitude", "Longitude",
}

var featureLabels = [FeatureCount]string{
	"Median Income",
	"House Age",
	"Average Rooms",
	"Average Bedrooms",
	"Population",
	"Average Occupancy",
	"Latitude",
	"Longitude",
}

// FeatureNames returns the feature names in vector order.
func FeatureNames() []string {
	out := make([]string, FeatureCount)
	copy(out, featureNames[:])
	return out
}

// FeatureName returns the name at position i, or "" when out of range.
func FeatureName(i int) string {
	if i < 0 || i >= FeatureCount {
		return ""
	}
	return featureNames[i]
}

// FeatureLabels returns human readable labels in vector order.
func FeatureLabels() []string {
	out := make([]string, FeatureCount)
	copy(out, featureLabels[:])
	return out
}

// DefaultFeatures is a real sample from the California housing dataset,
// used whenever a request omits its data.
func DefaultFeatures() FeatureVector {
	return FeatureVector{8.3252, 41.0, 6.98, 1.02, 322, 2.55, 37.88, -122.23}
}

// Examples returns the sample rows offered by the UI.
func Examples() []FeatureVector {
	return []FeatureVector{
		{8.3252, 41.0, 6.98, 1.02, 322, 2.55, 37.88, -122.23},
		{8.3014, 21.0, 6.24, 0.97, 2401, 2.11, 37.86, -122.22},
		{7.2574, 52.0, 8.29, 1.07, 496, 2.80, 37.85, -122.24},
	}
}
