// Package util holds the small math and formatting helpers shared across
// pkg/geo: degree/radian conversion and the decimal-precision normalization
// the S2-based snap-distance projection depends on.
package util

import (
	"math"
	"strconv"
	"strings"
)

func DegreeToRadians(angle float64) float64 {
	return angle * (math.Pi / 180.0)
}

func RadiansToDegree(rad float64) float64 {
	return 180.0 * rad / math.Pi
}

func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

func CountDecimalPlacesF64(value float64) int {
	strValue := strconv.FormatFloat(value, 'f', -1, 64)

	parts := strings.Split(strValue, ".")
	if len(parts) < 2 {
		return 0
	}
	return len(parts[1])
}
