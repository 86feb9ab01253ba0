package smoketest

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL string        // Base URL of the service
	Random  int           // Number of random vectors to post
	Workers int           // Number of concurrent workers
	Timeout time.Duration // HTTP request timeout
	Seed    uint64        // Seed for the random vectors
	Verbose bool          // Log every prediction
}

// Case is one prediction request and the vector it sends.
type Case struct {
	ID       string
	Name     string
	Features []float64
}

// PredictRequest is the body posted to /predict.
type PredictRequest struct {
	Data []float64 `json:"data"`
}

// PredictResponse is the union of the success and error bodies of /predict.
type PredictResponse struct {
	Prediction          float64   `json:"prediction"`
	PredictionFormatted string    `json:"prediction_formatted"`
	InputFeatures       []float64 `json:"input_features"`
	FeatureNames        []string  `json:"feature_names"`
	Error               string    `json:"error"`
}

// InfoResponse is the body of GET /.
type InfoResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Model   string `json:"model"`
	Version string `json:"version"`
}

// Stats holds run statistics.
type Stats struct {
	CasesPlanned    int
	CasesSubmitted  int
	CasesVerified   int
	CasesFailed     int
	RejectionsOK    int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
	FailureMessages []string
}
