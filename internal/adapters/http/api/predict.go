package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/okian/homeval/internal/domain/model"
	"github.com/okian/homeval/internal/domain/predict"
	"github.com/okian/homeval/pkg/logger"
	"github.com/okian/homeval/pkg/metrics"
)

// PredictDependencies defines what the prediction endpoint needs.
type PredictDependencies interface {
	Predict(ctx context.Context, features []float64) (predict.Result, error)
	RecordRejected(ctx context.Context, err error)
}

// PredictHandler handles POST /predict.
type PredictHandler struct {
	server *Server
	deps   PredictDependencies
	schema *jsonschema.Schema
}

// NewPredictHandler creates a new prediction handler.
func NewPredictHandler(server *Server, deps PredictDependencies) *PredictHandler {
	return &PredictHandler{
		server: server,
		deps:   deps,
		schema: compilePredictSchema(),
	}
}

// predictResponse mirrors the OpenAPI schema for a successful POST /predict.
type predictResponse struct {
	Prediction          float64   `json:"prediction"`
	PredictionFormatted string    `json:"prediction_formatted"`
	InputFeatures       []float64 `json:"input_features"`
	FeatureNames        []string  `json:"feature_names"`
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	ctx := r.Context()

	features, rej := h.decode(w, r)
	if rej != nil {
		metrics.RecordValidationError(rej.reason)
		h.deps.RecordRejected(ctx, rej.err)
		writeError(w, h.server.statusFor(rej.err), rej.err)
		return
	}

	res, err := h.deps.Predict(ctx, features)
	if err != nil {
		switch {
		case errors.Is(err, predict.ErrInvalidInput):
			metrics.RecordValidationError("arity")
		case errors.Is(err, predict.ErrComputation):
			h.server.log().Warn(ctx, "prediction failed", logger.Error(err))
			err = WrapKind(op, ErrInternal, err)
		}
		writeError(w, h.server.statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, predictResponse{
		Prediction:          res.Prediction,
		PredictionFormatted: res.Formatted,
		InputFeatures:       res.Features.Slice(),
		FeatureNames:        res.FeatureNames,
	})
}

// decode reads the body, validates it against the request schema and
// returns the feature vector. Empty bodies, {} and "data": null select the
// default sample.
func (h *PredictHandler) decode(w http.ResponseWriter, r *http.Request) ([]float64, *rejection) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.server.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &rejection{
				err:    &predict.ValidationError{Field: "body", Reason: fmt.Sprintf("exceeds %d bytes", tooLarge.Limit)},
				reason: "too_large",
			}
		}
		return nil, &rejection{err: &predict.ValidationError{Field: "body", Reason: err.Error()}, reason: "malformed"}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		metrics.RecordDefaultInput()
		return model.DefaultFeatures().Slice(), nil
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &rejection{
			err:    &predict.ValidationError{Field: "body", Reason: "malformed JSON: " + err.Error()},
			reason: "malformed",
		}
	}
	if err := h.schema.Validate(doc); err != nil {
		rej := translateSchemaError(err, doc)
		return nil, &rej
	}

	obj, _ := doc.(map[string]any)
	raw, _ := obj["data"].([]any)
	if raw == nil {
		metrics.RecordDefaultInput()
		return model.DefaultFeatures().Slice(), nil
	}
	features := make([]float64, len(raw))
	for i, v := range raw {
		f, ok := v.(float64)
		if !ok {
			return nil, &rejection{
				err:    &predict.ValidationError{Field: predict.FieldName(i), Reason: "expected a number"},
				reason: "type",
			}
		}
		features[i] = f
	}
	return features, nil
}
