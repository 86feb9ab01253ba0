package api

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/okian/homeval/internal/domain/model"
	"github.com/okian/homeval/internal/domain/predict"
)

//go:embed schema/predict_request.json
var predictRequestSchema []byte

const predictSchemaURL = "predict_request.json"

// compilePredictSchema compiles the embedded request schema. It panics on
// failure since the schema ships with the binary.
func compilePredictSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(predictSchemaURL, bytes.NewReader(predictRequestSchema)); err != nil {
		panic(fmt.Sprintf("add predict schema: %v", err))
	}
	return compiler.MustCompile(predictSchemaURL)
}

// rejection is a schema violation translated to the prediction domain.
type rejection struct {
	err    *predict.ValidationError
	reason string // metrics label: arity, type
}

// translateSchemaError reduces a schema failure to the single most useful
// violation: arity first, then the lowest offending element.
func translateSchemaError(err error, doc any) rejection {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return rejection{err: &predict.ValidationError{Field: "body", Reason: err.Error()}, reason: "malformed"}
	}

	leaves := leafErrors(verr)
	sort.SliceStable(leaves, func(i, j int) bool {
		return leaves[i].InstanceLocation < leaves[j].InstanceLocation
	})
	for _, leaf := range leaves {
		if isArityKeyword(leaf.KeywordLocation) {
			return rejection{err: arityRejection(doc), reason: "arity"}
		}
	}

	for _, leaf := range leaves {
		loc := strings.TrimPrefix(leaf.InstanceLocation, "/")
		switch {
		case loc == "":
			return rejection{
				err:    &predict.ValidationError{Field: "body", Reason: "expected a JSON object"},
				reason: "type",
			}
		case loc == "data":
			return rejection{
				err:    &predict.ValidationError{Field: "data", Reason: fmt.Sprintf("expected an array of %d numbers", model.FeatureCount)},
				reason: "type",
			}
		case strings.HasPrefix(loc, "data/"):
			idx, convErr := strconv.Atoi(strings.TrimPrefix(loc, "data/"))
			if convErr != nil {
				continue
			}
			return rejection{
				err:    &predict.ValidationError{Field: predict.FieldName(idx), Reason: "expected a number"},
				reason: "type",
			}
		}
	}
	return rejection{err: &predict.ValidationError{Field: "data", Reason: verr.Message}, reason: "type"}
}

func leafErrors(verr *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(verr.Causes) == 0 {
		return []*jsonschema.ValidationError{verr}
	}
	var out []*jsonschema.ValidationError
	for _, c := range verr.Causes {
		out = append(out, leafErrors(c)...)
	}
	return out
}

func isArityKeyword(loc string) bool {
	return strings.HasSuffix(loc, "/minItems") || strings.HasSuffix(loc, "/maxItems")
}

func arityRejection(doc any) *predict.ValidationError {
	n := 0
	if obj, ok := doc.(map[string]any); ok {
		if arr, ok := obj["data"].([]any); ok {
			n = len(arr)
		}
	}
	return &predict.ValidationError{
		Field:  "data",
		Reason: fmt.Sprintf("expected %d features, got %d", model.FeatureCount, n),
	}
}
