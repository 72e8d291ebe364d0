package common

import "math"

// RoundTo rounds the value to the provided number of decimals, half away from zero
func RoundTo(value float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(value*pow) / pow
}

// IntPtr returns a pointer to the provided value
func IntPtr(value int) *int {
	return &value
}

// FloatPtr returns a pointer to the provided value
func FloatPtr(value float64) *float64 {
	return &value
}
