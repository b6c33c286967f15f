package analyzer

import (
	"context"
	"sort"

	"github.com/seerlab/seer/internal/flow"
	"github.com/seerlab/seer/pkg/models"
)

// ChurnSource supplies commit activity for the file a symbol lives in.
type ChurnSource interface {
	FileCommits(ctx context.Context, path string) (int, error)
}

// Hotspots scores blocks by the geometric mean of CDF-normalized churn and
// block complexity. The geometric mean keeps intersection semantics: a
// block only scores high when both factors are elevated.
type Hotspots struct {
	churn ChurnSource
}

// NewHotspots creates a hotspot analyzer. churn may be nil, in which case
// no hotspots are reported.
func NewHotspots(churn ChurnSource) *Hotspots {
	return &Hotspots{churn: churn}
}

// hotspotThreshold is the score below which a block is not worth reporting.
const hotspotThreshold = 0.1

// AnalyzeHotspots implements flow.HotspotAnalyzer.
func (h *Hotspots) AnalyzeHotspots(ctx context.Context, input flow.AnalyzerInput) ([]models.BlockHotspot, error) {
	if h.churn == nil || input.Symbol.File == "" {
		return nil, nil
	}

	commits, err := h.churn.FileCommits(ctx, input.Symbol.File)
	if err != nil {
		return nil, err
	}
	churnScore := models.NormalizeChurnCDF(commits)

	var hotspots []models.BlockHotspot
	for _, b := range input.Blocks {
		if b.Type == models.BlockEntry || b.Type == models.BlockExit {
			continue
		}
		weight := float64(b.Complexity) + 0.5*float64(len(b.Calls))
		complexityScore := models.NormalizeBlockComplexityCDF(weight)
		score := models.CalculateHotspotScore(churnScore, complexityScore)
		if score < hotspotThreshold {
			continue
		}
		hotspots = append(hotspots, models.BlockHotspot{
			BlockID:         b.ID,
			StartLine:       b.StartLine,
			EndLine:         b.EndLine,
			HotspotScore:    score,
			ChurnScore:      churnScore,
			ComplexityScore: complexityScore,
			Commits:         commits,
		})
	}

	sort.Slice(hotspots, func(i, j int) bool {
		return hotspots[i].HotspotScore > hotspots[j].HotspotScore
	})
	return hotspots, nil
}
