package smoketest

import (
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"
	"github.com/okian/homeval/internal/domain/model"
)

// featureRange bounds a random feature roughly to the census data it stands for.
type featureRange struct{ min, max float64 }

var featureRanges = [model.FeatureCount]featureRange{
	model.MedInc:     {0.5, 15},
	model.HouseAge:   {1, 52},
	model.AveRooms:   {1, 10},
	model.AveBedrms:  {0.5, 3},
	model.Population: {3, 35000},
	model.AveOccup:   {1, 6},
	model.Latitude:   {32.5, 42},
	model.Longitude:  {-124.3, -114.3},
}

// fixedCases returns the default vector followed by the documented examples.
func fixedCases() []Case {
	cases := []Case{{ID: uuid.NewString(), Name: "default", Features: model.DefaultFeatures().Slice()}}
	for i, ex := range model.Examples() {
		cases = append(cases, Case{
			ID:       uuid.NewString(),
			Name:     "example-" + strconv.Itoa(i),
			Features: ex.Slice(),
		})
	}
	return cases
}

// randomCases draws n vectors from the feature ranges.
func randomCases(n int, seed uint64) []Case {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	cases := make([]Case, n)
	for i := range cases {
		v := make([]float64, model.FeatureCount)
		for j, r := range featureRanges {
			v[j] = r.min + rng.Float64()*(r.max-r.min)
		}
		cases[i] = Case{ID: uuid.NewString(), Name: "random", Features: v}
	}
	return cases
}

// malformedCases returns inputs the server must answer with an error body.
func malformedCases() []Case {
	d := model.DefaultFeatures().Slice()
	return []Case{
		{ID: uuid.NewString(), Name: "seven-features", Features: d[:model.FeatureCount-1]},
		{ID: uuid.NewString(), Name: "nine-features", Features: append(append([]float64{}, d...), 1)},
	}
}
