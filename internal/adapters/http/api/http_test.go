package api_test

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/okian/homeval/internal/adapters/http/api"
	service "github.com/okian/homeval/internal/app"
	"github.com/okian/homeval/internal/domain/model"
	"github.com/okian/homeval/internal/domain/predict"
	"github.com/okian/homeval/pkg/logger"
	"github.com/okian/homeval/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// panickingService fails inside Predict to exercise recovery.
type panickingService struct {
	*service.Service
}

func (p *panickingService) Predict(context.Context, []float64) (predict.Result, error) {
	panic("boom")
}

func newMux(opts ...api.Option) *http.ServeMux {
	return newMuxWith(service.New(), opts...)
}

func newMuxWith(deps api.Dependencies, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, opts...).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
	return out
}

func floats(raw any) []float64 {
	items := raw.([]any)
	out := make([]float64, len(items))
	for i, v := range items {
		out[i] = v.(float64)
	}
	return out
}

func TestServer_Root(t *testing.T) {
	Convey("Given a registered API", t, func() {
		mux := newMux()

		Convey("When requesting GET /", func() {
			w := do(mux, http.MethodGet, "/", "")

			Convey("Then it reports a running service", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
				body := decode(w)
				So(body["message"], ShouldEqual, "House Price Prediction API")
				So(body["status"], ShouldEqual, "running")
				So(body["model"], ShouldContainSubstring, "Linear")
			})
		})

		Convey("When requesting an unknown path", func() {
			w := do(mux, http.MethodGet, "/unknown", "")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When posting to /", func() {
			w := do(mux, http.MethodPost, "/", "{}")

			Convey("Then the method is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(decode(w), ShouldContainKey, "error")
			})
		})
	})
}

func TestServer_Predict(t *testing.T) {
	Convey("Given a registered API", t, func() {
		mux := newMux()
		linear := predict.NewLinear()

		Convey("When posting the default sample explicitly", func() {
			w := do(mux, http.MethodPost, "/predict", `{"data": [8.3252, 41.0, 6.98, 1.02, 322, 2.55, 37.88, -122.23]}`)

			Convey("Then the prediction matches the linear formula", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				want := (0.14756 + 0.43663*8.3252 + 0.01384*41.0 - 0.11757*6.98 + 0.64933*1.02 -
					0.00013*322 - 0.04221*2.55 - 0.89986*37.88 - 0.87088*(-122.23)) * 100000
				got := body["prediction"].(float64)
				So(math.Abs(got-want)/math.Abs(want), ShouldBeLessThan, 1e-6)
				So(body, ShouldNotContainKey, "error")
			})

			Convey("And the formatted value parses back within a cent", func() {
				body := decode(w)
				s := strings.NewReplacer("$", "", ",", "").Replace(body["prediction_formatted"].(string))
				back, err := strconv.ParseFloat(s, 64)
				So(err, ShouldBeNil)
				So(math.Abs(back-body["prediction"].(float64)), ShouldBeLessThanOrEqualTo, 0.01)
			})

			Convey("And inputs and feature names are echoed", func() {
				body := decode(w)
				So(floats(body["input_features"]), ShouldResemble, model.DefaultFeatures().Slice())
				names := body["feature_names"].([]any)
				So(len(names), ShouldEqual, 8)
				So(names[0], ShouldEqual, "MedInc")
				So(names[7], ShouldEqual, "Longitude")
			})
		})

		Convey("When the body omits the data", func() {
			for _, body := range []string{"", "{}", `{"data": null}`, "  \n"} {
				w := do(mux, http.MethodPost, "/predict", body)

				So(w.Code, ShouldEqual, http.StatusOK)
				got := decode(w)
				So(got["prediction"], ShouldAlmostEqual, linear.Evaluate(model.DefaultFeatures()), 1e-6)
				So(floats(got["input_features"]), ShouldResemble, model.DefaultFeatures().Slice())
			}
		})

		Convey("When posting other vectors", func() {
			for _, ex := range model.Examples()[1:] {
				payload, err := json.Marshal(map[string]any{"data": ex.Slice()})
				So(err, ShouldBeNil)
				w := do(mux, http.MethodPost, "/predict", string(payload))

				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["prediction"], ShouldAlmostEqual, linear.Evaluate(ex), 1e-6)
			}
		})

		Convey("When extra keys are present", func() {
			w := do(mux, http.MethodPost, "/predict", `{"data": [1,2,3,4,5,6,7,8], "model": "v2"}`)

			Convey("Then they are ignored", func() {
				So(decode(w), ShouldContainKey, "prediction")
			})
		})
	})
}

func TestServer_PredictValidation(t *testing.T) {
	Convey("Given a registered API with compatible error statuses", t, func() {
		mux := newMux()

		Convey("When posting seven features", func() {
			w := do(mux, http.MethodPost, "/predict", `{"data": [1,2,3,4,5,6,7]}`)

			Convey("Then an error body is returned with 200 and no prediction", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["error"], ShouldEqual, "data: expected 8 features, got 7")
				So(body, ShouldNotContainKey, "prediction")
			})
		})

		Convey("When posting nine features", func() {
			w := do(mux, http.MethodPost, "/predict", `{"data": [1,2,3,4,5,6,7,8,9]}`)

			Convey("Then the length mismatch is reported", func() {
				body := decode(w)
				So(body["error"], ShouldEqual, "data: expected 8 features, got 9")
				So(body, ShouldNotContainKey, "prediction")
			})
		})

		Convey("When a feature is not a number", func() {
			w := do(mux, http.MethodPost, "/predict", `{"data": [8.3, 41, 6.9, "abc", 322, 2.5, 37.8, -122.2]}`)

			Convey("Then the offending feature is named", func() {
				body := decode(w)
				So(body["error"], ShouldEqual, "data[3] (AveBedrms): expected a number")
				So(body, ShouldNotContainKey, "prediction")
			})
		})

		Convey("When a numeric string is sent", func() {
			w := do(mux, http.MethodPost, "/predict", `{"data": ["8.3", 41, 6.9, 1, 322, 2.5, 37.8, -122.2]}`)

			Convey("Then it is rejected rather than coerced", func() {
				So(decode(w)["error"], ShouldContainSubstring, "data[0] (MedInc)")
			})
		})

		Convey("When data is not an array", func() {
			w := do(mux, http.MethodPost, "/predict", `{"data": "8.3,41"}`)

			Convey("Then the shape is reported", func() {
				So(decode(w)["error"], ShouldEqual, "data: expected an array of 8 numbers")
			})
		})

		Convey("When the body is not an object", func() {
			w := do(mux, http.MethodPost, "/predict", `[1,2,3,4,5,6,7,8]`)

			Convey("Then the body is rejected", func() {
				So(decode(w)["error"], ShouldEqual, "body: expected a JSON object")
			})
		})

		Convey("When the body is not JSON", func() {
			w := do(mux, http.MethodPost, "/predict", `{"data": [1,2`)

			Convey("Then a malformed body error is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["error"], ShouldStartWith, "body: malformed JSON")
			})
		})

		Convey("When the result overflows to infinity", func() {
			w := do(mux, http.MethodPost, "/predict", `{"data": [1e308, 0, 0, 0, 0, 0, 0, 0]}`)

			Convey("Then a computation error is returned instead of invalid JSON", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["error"], ShouldContainSubstring, "prediction failed")
			})
		})

		Convey("When using GET on /predict", func() {
			w := do(mux, http.MethodGet, "/predict", "")

			Convey("Then the method is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(w.Header().Get("Allow"), ShouldEqual, http.MethodPost)
			})
		})
	})

	Convey("Given a registered API with strict error statuses", t, func() {
		mux := newMux(api.WithStrictErrors(true), api.WithMaxBodyBytes(64))

		Convey("Then validation failures answer 400", func() {
			w := do(mux, http.MethodPost, "/predict", `{"data": [1,2,3]}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(w), ShouldContainKey, "error")
		})

		Convey("And computation failures answer 500", func() {
			w := do(mux, http.MethodPost, "/predict", `{"data": [1e308,0,0,0,0,0,0,0]}`)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(decode(w), ShouldContainKey, "error")
		})

		Convey("And oversized bodies are rejected", func() {
			w := do(mux, http.MethodPost, "/predict", `{"data": [1.0000000001, 2.0000000001, 3.0000000001, 4.0000000001, 5, 6, 7, 8]}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(w)["error"], ShouldEqual, "body: exceeds 64 bytes")
		})

		Convey("And valid requests still answer 200", func() {
			w := do(mux, http.MethodPost, "/predict", `{"data": [1,2,3,4,5,6,7,8]}`)
			So(w.Code, ShouldEqual, http.StatusOK)
		})
	})
}

// predictionValue returns the sample count and sum of the prediction value histogram.
func predictionValue() (uint64, float64) {
	families, err := metrics.GetRegistry().Gather()
	So(err, ShouldBeNil)
	for _, f := range families {
		if f.GetName() == "homeval_predictor_prediction_value_dollars" {
			h := f.GetMetric()[0].GetHistogram()
			return h.GetSampleCount(), h.GetSampleSum()
		}
	}
	return 0, 0
}

func TestServer_PredictOverflowAccounting(t *testing.T) {
	Convey("Given a registered API", t, func() {
		mux := newMux()
		countBefore, _ := predictionValue()

		Convey("When two overflowing requests precede a valid one", func() {
			up := do(mux, http.MethodPost, "/predict", `{"data": [1e308,1e308,1e308,1e308,1e308,1e308,1e308,1e308]}`)
			down := do(mux, http.MethodPost, "/predict", `{"data": [-1e308,-1e308,-1e308,-1e308,-1e308,-1e308,-1e308,-1e308]}`)
			ok := do(mux, http.MethodPost, "/predict", `{"data": [1,2,3,4,5,6,7,8]}`)

			Convey("Then only the valid request is counted as a prediction", func() {
				So(decode(up), ShouldContainKey, "error")
				So(decode(down), ShouldContainKey, "error")
				So(decode(ok), ShouldContainKey, "prediction")

				stats := decode(do(mux, http.MethodGet, "/stats", ""))
				So(stats["predictions"], ShouldEqual, 1.0)
				So(stats["computationErrors"], ShouldEqual, 2.0)

				count, sum := predictionValue()
				So(count-countBefore, ShouldEqual, uint64(1))
				So(math.IsNaN(sum), ShouldBeFalse)
				So(math.IsInf(sum, 0), ShouldBeFalse)
			})
		})
	})
}

func TestServer_Metadata(t *testing.T) {
	Convey("Given a registered API", t, func() {
		mux := newMux()

		Convey("Then /model describes the parameters", func() {
			w := do(mux, http.MethodGet, "/model", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode(w)
			So(body["intercept"], ShouldEqual, 0.14756)
			So(len(body["coefficients"].([]any)), ShouldEqual, 8)
			So(len(body["examples"].([]any)), ShouldEqual, 3)
		})

		Convey("And /healthz answers ok", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["status"], ShouldEqual, "ok")
		})

		Convey("And /stats reports counters", func() {
			do(mux, http.MethodPost, "/predict", "{}")
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["predictions"], ShouldEqual, 1.0)
		})

		Convey("And /metrics exposes Prometheus text", func() {
			do(mux, http.MethodPost, "/predict", "{}")
			w := do(mux, http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "homeval_predictor_predictions_total")
		})
	})
}

func TestServer_Middleware(t *testing.T) {
	Convey("Given a registered API", t, func() {
		mux := newMux()

		Convey("When the caller supplies a request id", func() {
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "req-42")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it is echoed", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "req-42")
			})
		})

		Convey("When the caller supplies none", func() {
			w := do(mux, http.MethodGet, "/", "")

			Convey("Then one is generated", func() {
				So(len(w.Header().Get(api.RequestIDHeader)), ShouldEqual, 36)
			})
		})
	})

	Convey("Given a service that panics", t, func() {
		mux := newMuxWith(&panickingService{Service: service.New()})

		Convey("When predicting", func() {
			w := do(mux, http.MethodPost, "/predict", "{}")

			Convey("Then the panic becomes an error body", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decode(w)["error"], ShouldEqual, "internal error")
			})
		})
	})

	Convey("Given a nil mux", t, func() {
		Convey("Then registering panics", func() {
			So(func() {
				api.NewServer(service.New()).Register(context.Background(), nil)
			}, ShouldPanic)
		})
	})
}

func TestKindErrors(t *testing.T) {
	Convey("Given kind errors", t, func() {
		cause := errors.New("bad token")

		Convey("Then wrapped errors match both kind and cause", func() {
			err := api.WrapKind("api.predict", api.ErrBadRequest, cause)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.predict: bad token")
		})

		Convey("And wrapping nil yields nil", func() {
			So(api.WrapKind("op", api.ErrBadRequest, nil), ShouldBeNil)
		})

		Convey("And bare kinds carry the operation", func() {
			err := api.NewKind("api.root", api.ErrMethodNotAllowed)
			So(errors.Is(err, api.ErrMethodNotAllowed), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.root: method not allowed")
		})
	})
}
