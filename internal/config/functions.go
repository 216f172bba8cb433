package config

import "math"

// Function is a test function with its first partial derivatives.
type Function struct {
	Value func(x1, x2 float64) float64
	D1    func(x1, x2 float64) float64
	D2    func(x1, x2 float64) float64
}

// Functions are the test functions a Problem may name.
var Functions = map[string]Function{
	"sincos": {
		Value: func(x1, x2 float64) float64 { return math.Sin(2*math.Pi*x1) * math.Cos(2*math.Pi*x2) },
		D1: func(x1, x2 float64) float64 {
			return 2 * math.Pi * math.Cos(2*math.Pi*x1) * math.Cos(2*math.Pi*x2)
		},
		D2: func(x1, x2 float64) float64 {
			return -2 * math.Pi * math.Sin(2*math.Pi*x1) * math.Sin(2*math.Pi*x2)
		},
	},
	"poly": {
		Value: func(x1, x2 float64) float64 { return x1*x1*x2 - 3*x2 + 1 },
		D1:    func(x1, x2 float64) float64 { return 2 * x1 * x2 },
		D2:    func(x1, _ float64) float64 { return x1*x1 - 3 },
	},
	"gauss": {
		Value: func(x1, x2 float64) float64 { return math.Exp(-(x1*x1 + x2*x2)) },
		D1:    func(x1, x2 float64) float64 { return -2 * x1 * math.Exp(-(x1*x1 + x2*x2)) },
		D2:    func(x1, x2 float64) float64 { return -2 * x2 * math.Exp(-(x1*x1 + x2*x2)) },
	},
}
