package errors

import (
	"strings"
	"testing"
)

func TestUnsupportedFormatError(t *testing.T) {
	err := NewUnsupportedFormatError("data.txt", ".txt", []string{".csv", ".json"})

	var ufe *UnsupportedFormatError
	if !As(err, &ufe) {
		t.Fatalf("expected UnsupportedFormatError, got %T", err)
	}
	if ufe.Extension != ".txt" {
		t.Errorf("Extension = %q, want %q", ufe.Extension, ".txt")
	}
	if !strings.Contains(err.Error(), "unsupported file format") {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestClassDiversityError(t *testing.T) {
	err := NewClassDiversityError("train", 1)

	var cde *ClassDiversityError
	if !As(err, &cde) {
		t.Fatalf("expected ClassDiversityError, got %T", err)
	}
	if cde.Vector != "train" || cde.Classes != 1 {
		t.Errorf("got %+v", cde)
	}
}

func TestNotFittedError(t *testing.T) {
	err := NewNotFittedError("RandomForest", "Predict")
	want := "modelbench: RandomForest: this model is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWarnRespectsMute(t *testing.T) {
	var captured []error
	SetWarningHandler(func(w error) { captured = append(captured, w) })
	defer SetWarningHandler(nil)

	Warn(NewUndefinedMetricWarning("auc_roc", "only one class present", 0.0))
	if len(captured) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(captured))
	}

	MuteWarnings(true)
	defer MuteWarnings(false)
	Warn(NewUndefinedMetricWarning("auc_roc", "only one class present", 0.0))
	if len(captured) != 1 {
		t.Fatalf("muted warning was still delivered")
	}
}

func TestWrapPreservesType(t *testing.T) {
	base := NewDimensionError("KNN.Predict", 4, 3, 1)
	wrapped := Wrap(base, "prediction failed")

	var de *DimensionError
	if !As(wrapped, &de) {
		t.Fatalf("wrapping lost the DimensionError type")
	}
	if de.Expected != 4 || de.Got != 3 {
		t.Errorf("got %+v", de)
	}
}
