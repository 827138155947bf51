// Package logging configures the process-wide logrus logger so that RTMP
// stream keys never reach a log sink unredacted.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/syossan27/streamkey-redactor/pkg/redact"
)

// Setup configures the standard logrus logger with the given level and
// format and installs a RedactionHook. Calling Setup again replaces the
// previous configuration.
func Setup(level, format string) error {
	return Configure(logrus.StandardLogger(), os.Stderr, level, format)
}

// Configure applies level, format and the redaction hook to logger.
func Configure(logger *logrus.Logger, out io.Writer, level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}

	switch format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unsupported log format: %s", format)
	}

	logger.SetLevel(lvl)
	logger.SetOutput(out)

	hooks := make(logrus.LevelHooks)
	hooks.Add(NewRedactionHook())
	logger.ReplaceHooks(hooks)

	return nil
}

// RedactionHook rewrites log entries so that every RTMP URL in the message
// or in any field is redacted before formatting. A non-string field that
// carries an RTMP URL is replaced by its redacted fmt.Sprint rendering.
type RedactionHook struct{}

func NewRedactionHook() *RedactionHook {
	return &RedactionHook{}
}

func (h *RedactionHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire runs on a copy of the entry's fields, so rewriting them in place does
// not affect the logger's shared state.
func (h *RedactionHook) Fire(entry *logrus.Entry) error {
	entry.Message = redact.Text(entry.Message)

	for key, value := range entry.Data {
		switch v := value.(type) {
		case string:
			entry.Data[key] = redact.Text(v)
		case nil:
		default:
			// errors, Stringers, slices and maps are rendered the way the
			// formatter would print them.
			if rendered := fmt.Sprint(v); redact.ContainsRTMPURL(rendered) {
				entry.Data[key] = redact.Text(rendered)
			}
		}
	}

	return nil
}
