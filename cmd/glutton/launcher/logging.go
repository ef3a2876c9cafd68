package launcher

import (
	"fmt"
	"io"
	"time"

	"github.com/evalphobia/logrus_sentry"
	"github.com/sirupsen/logrus"
)

var sentryLevels = []logrus.Level{
	logrus.PanicLevel,
	logrus.FatalLevel,
	logrus.ErrorLevel,
}

// makeLogger builds the process logger from cfg. Output goes to out.
func makeLogger(cfg LoggingConfig, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.Out = out

	switch cfg.Format {
	case "", "text":
		logger.Formatter = &logrus.TextFormatter{
			ForceColors:     cfg.Color,
			DisableColors:   !cfg.Color,
			FullTimestamp:   true,
			TimestampFormat: "01-02|15:04:05.000",
		}
	case "json":
		logger.Formatter = &logrus.JSONFormatter{}
	default:
		return nil, fmt.Errorf("unknown log format %q (valid: text, json)", cfg.Format)
	}

	level := cfg.Verbosity
	if level < int(logrus.PanicLevel) {
		level = int(logrus.PanicLevel)
	}
	if level > int(logrus.TraceLevel) {
		level = int(logrus.TraceLevel)
	}
	logger.SetLevel(logrus.Level(level))

	if cfg.SentryDSN != "" {
		hook, err := logrus_sentry.NewSentryHook(cfg.SentryDSN, sentryLevels)
		if err != nil {
			return nil, fmt.Errorf("sentry hook: %w", err)
		}
		hook.Timeout = 5 * time.Second
		logger.AddHook(hook)
	}
	return logger, nil
}
