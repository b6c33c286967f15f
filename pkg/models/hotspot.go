package models

import "math"

// Empirical CDF percentiles for churn (commits touching a file in 30 days).
// Most files in a healthy codebase see 0-2 commits a month; 5+ is notably
// active. See Nagappan et al., "Use of Relative Code Churn Measures to
// Predict System Defect Density" (ICSE 2005).
var churnCDF = [][2]float64{
	{0, 0.0},
	{1, 0.30},
	{2, 0.50},
	{3, 0.60},
	{5, 0.75},
	{7, 0.85},
	{10, 0.92},
	{15, 0.96},
	{20, 0.98},
	{50, 1.0},
}

// Empirical CDF percentiles for per-block structural complexity. Block
// complexity weights are small integers (loop=2, conditional/switch=1), so
// the scale is a per-region aggregate rather than per-function cognitive.
var blockComplexityCDF = [][2]float64{
	{0, 0.0},
	{1, 0.25},
	{2, 0.45},
	{3, 0.60},
	{5, 0.75},
	{8, 0.88},
	{12, 0.94},
	{20, 0.98},
	{40, 1.0},
}

// NormalizeChurnCDF maps a commit count to its empirical percentile (0-1).
func NormalizeChurnCDF(commits int) float64 {
	return interpolateCDF(churnCDF, float64(commits))
}

// NormalizeBlockComplexityCDF maps aggregate block complexity to its
// empirical percentile (0-1).
func NormalizeBlockComplexityCDF(complexity float64) float64 {
	return interpolateCDF(blockComplexityCDF, complexity)
}

// CalculateHotspotScore combines normalized churn and complexity with a
// geometric mean, so both factors must be elevated for a high score.
func CalculateHotspotScore(churnNorm, complexityNorm float64) float64 {
	if churnNorm <= 0 || complexityNorm <= 0 {
		return 0
	}
	return math.Sqrt(churnNorm * complexityNorm)
}

// interpolateCDF performs linear interpolation on empirical CDF percentiles.
func interpolateCDF(cdf [][2]float64, value float64) float64 {
	if value <= cdf[0][0] {
		return cdf[0][1]
	}
	last := len(cdf) - 1
	if value >= cdf[last][0] {
		return cdf[last][1]
	}

	for i := 0; i < last; i++ {
		v1, p1 := cdf[i][0], cdf[i][1]
		v2, p2 := cdf[i+1][0], cdf[i+1][1]
		if value >= v1 && value <= v2 {
			t := (value - v1) / (v2 - v1)
			return p1 + t*(p2-p1)
		}
	}
	return 0
}

// FileChurnMetrics tracks commit activity for one file over the window.
type FileChurnMetrics struct {
	Path         string `json:"path"`
	RelativePath string `json:"relative_path"`
	Commits      int    `json:"commits"`
	LinesAdded   int    `json:"lines_added"`
	LinesDeleted int    `json:"lines_deleted"`
}
