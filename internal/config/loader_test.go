package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/homeval/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Port, convey.ShouldEqual, 10000)
				convey.So(cfg.Host, convey.ShouldEqual, "0.0.0.0")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			})
		})

		convey.Convey("When PORT is set", func() {
			_ = os.Setenv("PORT", "8000")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it selects the listening port", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Port, convey.ShouldEqual, 8000)
				convey.So(cfg.Addr(), convey.ShouldEqual, "0.0.0.0:8000")
			})
		})

		convey.Convey("When PORT is not a number", func() {
			_ = os.Setenv("PORT", "http")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it fails as an invalid config", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When prefixed environment variables are set", func() {
			_ = os.Setenv("PORT", "8000")
			_ = os.Setenv("HOMEVAL_PORT", "9090")
			_ = os.Setenv("HOMEVAL_STRICT_ERRORS", "true")
			_ = os.Setenv("HOMEVAL_LOG_LEVEL", "debug")
			_ = os.Setenv("HOMEVAL_HOST", "127.0.0.1")

			cfg, err := config.Load(ctx)

			convey.Convey("Then they override PORT and the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Port, convey.ShouldEqual, 9090)
				convey.So(cfg.StrictErrors, convey.ShouldBeTrue)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.Addr(), convey.ShouldEqual, "127.0.0.1:9090")
			})
		})

		convey.Convey("When loading a YAML file", func() {
			tmpFile := createTempConfigFile(`
port: 7000
strict_errors: true
max_body_bytes: 4096
log_format: json
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("HOMEVAL_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values merge over the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Port, convey.ShouldEqual, 7000)
				convey.So(cfg.StrictErrors, convey.ShouldBeTrue)
				convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, int64(4096))
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.Host, convey.ShouldEqual, "0.0.0.0")
			})

			convey.Convey("And PORT overrides the file", func() {
				_ = os.Setenv("PORT", "7100")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Port, convey.ShouldEqual, 7100)
			})
		})

		convey.Convey("When the YAML file names the metrics", func() {
			tmpFile := createTempConfigFile(`
metrics_namespace: house
metrics_subsystem: api
metrics_const_labels:
  region: ca
metrics_price_buckets: [100000, 500000]
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("HOMEVAL_CONFIG", tmpFile)
			_ = os.Setenv("HOMEVAL_METRICS_LATENCY_BUCKETS", "1, 10,100")

			cfg, err := config.Load(ctx)

			convey.Convey("Then the metrics settings are loaded", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "house")
				convey.So(cfg.MetricsSubsystem, convey.ShouldEqual, "api")
				convey.So(cfg.MetricsConstLabels, convey.ShouldResemble, map[string]string{"region": "ca"})
				convey.So(cfg.MetricsPriceBuckets, convey.ShouldResemble, []float64{100000, 500000})
				convey.So(cfg.MetricsLatencyBuckets, convey.ShouldResemble, []float64{1, 10, 100})
			})
		})

		convey.Convey("When the metrics namespace is not a valid name", func() {
			_ = os.Setenv("HOMEVAL_METRICS_NAMESPACE", "house-prices")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it fails as an invalid config", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "MetricsNamespace")
			})
		})

		convey.Convey("When buckets are not increasing", func() {
			_ = os.Setenv("HOMEVAL_METRICS_PRICE_BUCKETS", "500000,100000")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it fails as an invalid config", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "MetricsPriceBuckets")
			})
		})

		convey.Convey("When the YAML file is invalid", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("HOMEVAL_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the YAML file does not exist", func() {
			_ = os.Setenv("HOMEVAL_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the port is out of range", func() {
			_ = os.Setenv("HOMEVAL_PORT", "70000")

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation names the field", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "Port")
			})
		})

		convey.Convey("When the log format is unknown", func() {
			_ = os.Setenv("HOMEVAL_LOG_FORMAT", "xml")

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "LogFormat")
			})
		})

		convey.Convey("When a numeric variable is not a number", func() {
			_ = os.Setenv("HOMEVAL_MAX_BODY_BYTES", "lots")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"PORT",
		"HOMEVAL_CONFIG",
		"HOMEVAL_PORT",
		"HOMEVAL_HOST",
		"HOMEVAL_LOG_LEVEL",
		"HOMEVAL_LOG_FORMAT",
		"HOMEVAL_STRICT_ERRORS",
		"HOMEVAL_MAX_BODY_BYTES",
		"HOMEVAL_METRICS_NAMESPACE",
		"HOMEVAL_METRICS_LATENCY_BUCKETS",
		"HOMEVAL_METRICS_PRICE_BUCKETS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "homeval-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
