package predict

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/homeval/internal/domain/model"
)

// ParseFeatures converts textual values (form fields, CLI arguments) into a
// feature vector, naming the first value that is not a number.
func ParseFeatures(values []string) ([]float64, error) {
	if len(values) != featureCount {
		return nil, arityError("data", len(values))
	}
	out := make([]float64, featureCount)
	for i, raw := range values {
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, &ValidationError{
				Field:  FieldName(i),
				Reason: fmt.Sprintf("%q is not a number", raw),
			}
		}
		out[i] = f
	}
	return out, nil
}

// FieldName labels position i of the request data, e.g. "data[3] (AveBedrms)".
func FieldName(i int) string {
	if name := model.FeatureName(i); name != "" {
		return fmt.Sprintf("data[%d] (%s)", i, name)
	}
	return fmt.Sprintf("data[%d]", i)
}
