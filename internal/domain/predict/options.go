package predict

import "github.com/okian/homeval/internal/domain/model"

// Option applies a configuration option to the Linear predictor.
type Option func(*Linear)

// WithParameters replaces the baked-in model parameters.
func WithParameters(p model.Parameters) Option {
	return func(l *Linear) {
		l.params = p
	}
}

// WithScale sets the output multiplier. Non-positive values are ignored.
func WithScale(scale float64) Option {
	return func(l *Linear) {
		if scale > 0 {
			l.scale = scale
		}
	}
}
