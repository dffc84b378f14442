package logger

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

// capture sends log output to a buffer without colours or timestamps and
// restores stderr when the test ends.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		log.SetLevel(logrus.InfoLevel)
	})
	return &buf
}

func TestInit(t *testing.T) {
	tests := []struct {
		level   string
		want    logrus.Level
		wantErr bool
	}{
		{level: "debug", want: logrus.DebugLevel},
		{level: "info", want: logrus.InfoLevel},
		{level: "warn", want: logrus.WarnLevel},
		{level: "ERROR", want: logrus.ErrorLevel},
		{level: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			capture(t)
			err := Init(tt.level)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Init(%q) expected error", tt.level)
				}
				return
			}
			if err != nil {
				t.Fatalf("Init(%q) error = %v", tt.level, err)
			}
			if got := log.GetLevel(); got != tt.want {
				t.Errorf("Init(%q) level = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestLogging(t *testing.T) {
	buf := capture(t)

	tests := []struct {
		name          string
		logFunc       func(string, ...map[string]interface{})
		message       string
		fields        map[string]interface{}
		expectedLevel string
	}{
		{
			name:          "Debug message",
			logFunc:       Debug,
			message:       "Fetching block children",
			expectedLevel: "debug",
		},
		{
			name:          "Info message",
			logFunc:       Info,
			message:       "Group completed",
			expectedLevel: "info",
		},
		{
			name:          "Warn message",
			logFunc:       Warn,
			message:       "Group export retried",
			expectedLevel: "warning",
		},
		{
			name:    "Debug with fields",
			logFunc: Debug,
			message: "Debug with fields",
			fields: map[string]interface{}{
				"group": "marketing",
			},
			expectedLevel: "debug",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			log.SetLevel(logrus.DebugLevel)

			if tt.fields != nil {
				tt.logFunc(tt.message, tt.fields)
			} else {
				tt.logFunc(tt.message)
			}

			output := buf.String()
			if !strings.Contains(output, "level="+tt.expectedLevel) {
				t.Errorf("Expected log level %s, got %s", tt.expectedLevel, output)
			}
			if !strings.Contains(output, tt.message) {
				t.Errorf("Expected message %s, got %s", tt.message, output)
			}
			if tt.fields != nil {
				for k, v := range tt.fields {
					if !strings.Contains(output, k+"="+v.(string)) {
						t.Errorf("Expected field %s=%v in output: %s", k, v, output)
					}
				}
			}
		})
	}
}

func TestError(t *testing.T) {
	buf := capture(t)

	cause := errors.New("status 503: service_unavailable")

	Error("Group failed", cause)
	output := buf.String()
	for _, want := range []string{"level=error", "Group failed", "service_unavailable"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output: %s", want, output)
		}
	}

	buf.Reset()
	Error("Group failed", cause, map[string]interface{}{"group": "seo"})
	output = buf.String()
	if !strings.Contains(output, "group=seo") || !strings.Contains(output, "service_unavailable") {
		t.Errorf("Expected error and fields in output: %s", output)
	}
}

func TestSetFormat(t *testing.T) {
	buf := capture(t)

	if err := SetFormat("json"); err != nil {
		t.Fatalf("SetFormat(json) error = %v", err)
	}
	Info("Run started", map[string]interface{}{"run_id": "abc"})
	output := buf.String()
	if !strings.Contains(output, `"run_id":"abc"`) {
		t.Errorf("Expected JSON field in output: %s", output)
	}
	if !strings.Contains(output, `"msg":"Run started"`) {
		t.Errorf("Expected JSON message in output: %s", output)
	}

	if err := SetFormat("xml"); err == nil {
		t.Error("Expected error for unknown format, got nil")
	}
	if err := SetFormat("text"); err != nil {
		t.Errorf("SetFormat(text) error = %v", err)
	}
}
