package engine

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// distributionMarkers captures the shape of a numeric column's distribution
type distributionMarkers struct {
	Skewness   float64
	Kurtosis   float64
	IsNormal   bool
	NormalityP float64
}

// analyzeDistribution computes skewness, kurtosis and an approximate
// normality check from precomputed mean and sample standard deviation.
func analyzeDistribution(data []float64, mean, stdDev float64) distributionMarkers {
	markers := distributionMarkers{NormalityP: 1.0}
	if len(data) < 3 || stdDev == 0 {
		return markers
	}

	markers.Skewness = sampleSkewness(data, mean, stdDev)
	markers.Kurtosis = sampleKurtosis(data, mean, stdDev)
	markers.IsNormal, markers.NormalityP = testNormality(markers.Skewness, markers.Kurtosis)
	return markers
}

// sampleSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func sampleSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n

	// Bias correction for sample skewness
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return skewness * correction
}

// sampleKurtosis computes sample excess kurtosis
func sampleKurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 {
		return 0
	}

	n := float64(len(data))
	sumFourthDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumFourthDeviations += deviation * deviation * deviation * deviation
	}

	kurtosis := sumFourthDeviations / n
	excessKurtosis := kurtosis - 3

	if n > 3 {
		correction := (n - 1) / ((n - 2) * (n - 3))
		excessKurtosis = excessKurtosis*correction + 6/(n+1)
	}

	return excessKurtosis
}

// testNormality approximates a normality test from skewness and excess
// kurtosis. A proper Shapiro-Wilk test would need significance tables;
// this chi-square approximation matches how the profiling pipeline flags
// clearly non-normal columns.
func testNormality(skewness, excessKurtosis float64) (isNormal bool, pValue float64) {
	testStat := math.Abs(skewness) + math.Abs(excessKurtosis)/2

	chiDist := distuv.ChiSquared{K: 2}
	pValue = 1 - chiDist.CDF(testStat*testStat)

	isNormal = pValue > 0.05
	return isNormal, pValue
}
