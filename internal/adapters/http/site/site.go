// Package site serves the HTML front-ends for the prediction API.
package site

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/homeval/internal/domain/model"
	"github.com/okian/homeval/internal/domain/predict"
	"github.com/okian/homeval/pkg/logger"
	"github.com/okian/homeval/pkg/metrics"
)

// Error constants
var (
	ErrRender = errors.New("page render failed")
)

const (
	predictorTemplate = "predictor.html.tmpl"
	aboutTemplate     = "about.html.tmpl"
	maxFormBytes      = 16 << 10
)

// Predictor is the subset of the service the no-script form fallback needs.
type Predictor interface {
	Predict(ctx context.Context, features []float64) (predict.Result, error)
	RecordRejected(ctx context.Context, err error)
}

// Middleware decorates a page handler, e.g. with metrics.
type Middleware func(next http.HandlerFunc, endpoint string) http.Handler

// Handler renders the predictor and about pages.
type Handler struct {
	predictor Predictor
	wrap      Middleware
	logger    logger.Logger
}

// Option applies a configuration option to the Handler.
type Option func(*Handler)

// WithMiddleware sets the decorator applied to every page route.
func WithMiddleware(m Middleware) Option {
	return func(h *Handler) {
		if m != nil {
			h.wrap = m
		}
	}
}

// WithLogger sets the logger used for render failures.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandler creates the page handler.
func NewHandler(p Predictor, opts ...Option) *Handler {
	h := &Handler{
		predictor: p,
		wrap: func(next http.HandlerFunc, _ string) http.Handler {
			return next
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register attaches the page routes to mux:
//
//	GET  /ui, /predictor  -> prediction form
//	POST /ui, /predictor  -> form fallback rendered server side
//	GET  /about           -> about page
//	GET  /static/...      -> embedded CSS and JavaScript
func Register(_ context.Context, mux *http.ServeMux, h *Handler) {
	if mux == nil {
		panic("mux is nil")
	}
	if h == nil {
		panic("handler is nil")
	}
	mux.Handle("/ui", h.wrap(h.HandlePredictor, "ui"))
	mux.Handle("/predictor", h.wrap(h.HandlePredictor, "ui"))
	mux.Handle("/about", h.wrap(h.HandleAbout, "about"))
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(FS())))
}

type featureField struct {
	Name  string
	Label string
	Value string
}

type example struct {
	Values []float64
}

type predictorPage struct {
	Fields    []featureField
	Examples  []example
	Formatted string
	Error     string
}

// HandlePredictor renders the form, or on POST evaluates the submitted
// fields and renders the result into the same page.
func (h *Handler) HandlePredictor(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.render(w, r, predictorTemplate, newPredictorPage(model.DefaultFeatures().Slice()))
	case http.MethodPost:
		h.handleForm(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		page := newPredictorPage(model.DefaultFeatures().Slice())
		page.Error = "could not read form: " + err.Error()
		h.render(w, r, predictorTemplate, page)
		return
	}

	names := model.FeatureNames()
	raw := make([]string, len(names))
	for i, name := range names {
		raw[i] = r.PostForm.Get(name)
	}
	page := newPredictorPage(nil)
	for i := range page.Fields {
		page.Fields[i].Value = raw[i]
	}

	features, err := predict.ParseFeatures(raw)
	if err != nil {
		// Predict accounts for its own failures; parse failures never reach it.
		metrics.RecordValidationError("type")
		h.predictor.RecordRejected(r.Context(), err)
	} else {
		var res predict.Result
		res, err = h.predictor.Predict(r.Context(), features)
		if err == nil {
			page.Formatted = res.Formatted
		}
	}
	if err != nil {
		page.Error = err.Error()
	}
	h.render(w, r, predictorTemplate, page)
}

// HandleAbout renders the about page.
func (h *Handler) HandleAbout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	h.render(w, r, aboutTemplate, newPredictorPage(model.DefaultFeatures().Slice()))
}

// render executes into a buffer so a template failure never leaves a
// half-written page.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		if h.logger != nil {
			h.logger.Error(r.Context(), "page render failed", logger.String("template", name), logger.Error(err))
		}
		http.Error(w, ErrRender.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func newPredictorPage(values []float64) predictorPage {
	names := model.FeatureNames()
	labels := model.FeatureLabels()
	fields := make([]featureField, len(names))
	for i := range names {
		fields[i] = featureField{Name: names[i], Label: labels[i]}
		if i < len(values) {
			fields[i].Value = strconv.FormatFloat(values[i], 'f', -1, 64)
		}
	}
	examples := model.Examples()
	rows := make([]example, len(examples))
	for i, ex := range examples {
		rows[i] = example{Values: ex.Slice()}
	}
	return predictorPage{Fields: fields, Examples: rows}
}

// joinFloats renders values as a comma separated list for data attributes.
func joinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}
