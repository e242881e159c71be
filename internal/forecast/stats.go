package forecast

import "math"

// Regression holds an ordinary least squares fit of value against index position
type Regression struct {
	Slope     float64
	Intercept float64
}

// At evaluates the regression line at index x
func (r Regression) At(x float64) float64 {
	return r.Intercept + r.Slope*x
}

// fitOLS regresses values against their index 0..n-1
func fitOLS(values []float64) Regression {
	n := float64(len(values))
	if n == 0 {
		return Regression{}
	}

	sumX, sumY, sumXY, sumX2 := 0.0, 0.0, 0.0, 0.0
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumX2 += x * x
	}

	denominator := n*sumX2 - sumX*sumX
	if denominator == 0 {
		return Regression{Intercept: sumY / n}
	}
	slope := (n*sumXY - sumX*sumY) / denominator
	intercept := (sumY - slope*sumX) / n
	return Regression{Slope: slope, Intercept: intercept}
}

// rSquared is the coefficient of determination of fitted against actual. It is not
// clamped, so poor fits go negative. A constant actual series scores 1 only when fitted exactly.
func rSquared(actual, fitted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(fitted) {
		return 0
	}
	mean := average(actual)
	ssRes, ssTot := 0.0, 0.0
	for i := range actual {
		res := actual[i] - fitted[i]
		ssRes += res * res
		dev := actual[i] - mean
		ssTot += dev * dev
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

// mape returns the mean absolute percentage error (in percent) and the number of
// zero actuals that had to be skipped
func mape(actual, fitted []float64) (float64, int) {
	if len(actual) == 0 || len(actual) != len(fitted) {
		return 0, 0
	}
	sum := 0.0
	count := 0
	zeros := 0
	for i := range actual {
		if actual[i] == 0 {
			zeros++
			continue
		}
		sum += math.Abs((actual[i] - fitted[i]) / actual[i])
		count++
	}
	if count == 0 {
		return 0, zeros
	}
	return sum / float64(count) * 100, zeros
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
