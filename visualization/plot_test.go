package visualization

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelbench/modelbench/training"
)

func sampleResults() training.Results {
	return training.Results{
		"Random Forest": {"accuracy": 0.92, "f1": 0.91},
		"Naive Bayes":   {"accuracy": 0.81, "f1": 0.79},
		"SVM":           {"accuracy": 0.88, "f1": math.NaN()},
	}
}

func TestPlotResultsWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comparison.png")

	require.NoError(t, PlotResults(sampleResults(), []string{"accuracy", "f1"}, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestPlotResultsDefaultMetric(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accuracy.png")
	require.NoError(t, PlotResults(sampleResults(), nil, path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestPlotResultsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	assert.Error(t, PlotResults(training.Results{}, nil, path))
}

func TestPlotResultsMissingMetric(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.png")
	err := PlotResults(sampleResults(), []string{"rmse"}, path)
	assert.Error(t, err)
}
