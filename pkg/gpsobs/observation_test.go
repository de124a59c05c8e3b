package gpsobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestDeltaSecondsWithoutPreviousUsesFallback(t *testing.T) {
	t.Parallel()

	o := GpsObservation{TimestampMillis: 5000}
	assert.InDelta(t, 1.5, o.DeltaSeconds(1.5), 1e-9)
}

func TestDeltaSecondsWithPrevious(t *testing.T) {
	t.Parallel()

	prev := &GpsObservation{TimestampMillis: 1000}
	o := GpsObservation{TimestampMillis: 3500, Previous: prev}
	assert.InDelta(t, 2.5, o.DeltaSeconds(1.0), 1e-9)
}

func TestFrobeniusRelativeErrorZeroWhenEqual(t *testing.T) {
	t.Parallel()

	m := mat.NewSymDense(2, []float64{1, 0, 0, 1})
	assert.InDelta(t, 0, FrobeniusRelativeError(m, m), 1e-9)
}

func TestFrobeniusRelativeErrorScalesWithDeviation(t *testing.T) {
	t.Parallel()

	truth := mat.NewSymDense(2, []float64{1, 0, 0, 1})
	learned := mat.NewSymDense(2, []float64{2, 0, 0, 1})
	err := FrobeniusRelativeError(learned, truth)
	assert.Greater(t, err, 0.0)
}

func TestExceedsDiagnosticThreshold(t *testing.T) {
	t.Parallel()

	truth := mat.NewSymDense(2, []float64{1, 0, 0, 1})
	close := mat.NewSymDense(2, []float64{1.1, 0, 0, 1})
	far := mat.NewSymDense(2, []float64{10, 0, 0, 1})

	assert.False(t, ExceedsDiagnosticThreshold(close, truth))
	assert.True(t, ExceedsDiagnosticThreshold(far, truth))
}

func TestDiagnosticThresholdConstant(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.40, DiagnosticThreshold, 1e-9)
}
