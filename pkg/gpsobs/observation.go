// Package gpsobs defines the inbound observation types the estimator
// consumes: a timestamped 2D position fix, plus an optional ground-truth
// variant used only for diagnostic logging.
package gpsobs

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// GpsObservation is one inbound position fix.
type GpsObservation struct {
	TimestampMillis int64
	ProjectedPoint  *mat.VecDense // 2D planar coordinate, same projection as the road graph
	Previous        *GpsObservation
	True            *TrueObservation
}

// DeltaSeconds returns the elapsed time since Previous, or fallback when
// there is no previous observation (the initial-observation-frequency
// default from configuration).
func (o GpsObservation) DeltaSeconds(fallback float64) float64 {
	if o.Previous == nil {
		return fallback
	}
	return float64(o.TimestampMillis-o.Previous.TimestampMillis) / 1000.0
}

// TrueObservation carries a ground-truth vehicle state used only for
// diagnostic logging: an update-error warning fires when a learned
// covariance's inverse-Wishart mean deviates from the truth by more than
// 40% Frobenius norm of the truth.
type TrueObservation struct {
	TrueQRoad   *mat.SymDense
	TrueQGround *mat.SymDense
	TrueSigma   *mat.SymDense
}

// FrobeniusRelativeError returns ||learned-truth||_F / ||truth||_F.
func FrobeniusRelativeError(learned, truth mat.Matrix) float64 {
	r, c := truth.Dims()
	var num, den float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			d := learned.At(i, j) - truth.At(i, j)
			num += d * d
			t := truth.At(i, j)
			den += t * t
		}
	}
	if den == 0 {
		return 0
	}
	return math.Sqrt(num) / math.Sqrt(den)
}

// DiagnosticThreshold is the 40% Frobenius-relative-error threshold past
// which an update-error warning is emitted.
const DiagnosticThreshold = 0.40

// ExceedsDiagnosticThreshold reports whether learned deviates from truth by
// more than DiagnosticThreshold in relative Frobenius norm.
func ExceedsDiagnosticThreshold(learned, truth mat.Matrix) bool {
	return FrobeniusRelativeError(learned, truth) > DiagnosticThreshold
}
