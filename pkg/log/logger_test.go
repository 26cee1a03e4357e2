package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/modelbench/modelbench/pkg/errors"
)

func TestSetupWiresWarningsIntoLogger(t *testing.T) {
	if err := Setup("debug", false); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	var buf bytes.Buffer
	SetOutput(zerolog.New(&buf))
	defer Setup("info", false)

	errors.Warn(errors.NewUndefinedMetricWarning("auc_roc", "missing class", 0.0))

	// Warn goes through the hook captured at Setup time, which writes to
	// the logger installed then, not the buffer. Re-install the hook so it
	// resolves the current logger.
	errors.SetZerologWarnFunc(func(w error) {
		L().Warn().Msg(w.Error())
	})
	errors.Warn(errors.NewUndefinedMetricWarning("auc_roc", "missing class", 0.0))

	if !strings.Contains(buf.String(), "auc_roc") {
		t.Errorf("warning not routed to logger output: %q", buf.String())
	}
}

func TestSetupSuppressWarnings(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup("info", true); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	SetOutput(zerolog.New(&buf))
	errors.SetZerologWarnFunc(func(w error) {
		L().Warn().Msg(w.Error())
	})
	defer Setup("info", false)

	errors.Warn(errors.NewConvergenceWarning("sgd", 100))
	if buf.Len() != 0 {
		t.Errorf("suppressed warning was logged: %q", buf.String())
	}
}

func TestChainedLoggerCalls(t *testing.T) {
	if err := Setup("debug", false); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	var buf bytes.Buffer
	SetOutput(zerolog.New(&buf))
	defer Setup("info", false)

	L().Info().Str("operation", "benchmark").Msg("finished")

	if !strings.Contains(buf.String(), "benchmark") {
		t.Errorf("chained call did not reach the logger output: %q", buf.String())
	}
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	if err := Setup("verbose", false); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}
