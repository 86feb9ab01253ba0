package smoketest

import "time"

// Defaults for the smoke CLI.
const (
	DefaultBaseURL = "http://localhost:10000"
	DefaultRandom  = 100
	DefaultTimeout = 10 * time.Second
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
	maxFailureMessages      = 20
)

// Verification tolerances.
const (
	RelativeTolerance = 1e-6
	// formatted strings round to the cent
	centTolerance = 0.005 + 1e-9
)
