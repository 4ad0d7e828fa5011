package assess

import (
	"math"

	"github.com/MrWong99/elocution/pkg/types"
)

const (
	// rhythmBaseline stands in for rhythm, which cannot be measured without
	// timing data.
	rhythmBaseline = 0.85
	// pausePenalty is charged per word of count deviation.
	pausePenalty = 0.05

	fastRatio = 1.2
	slowRatio = 0.8

	paceFastScore = 0.6
	paceSlowScore = 0.7
	paceGoodScore = 0.9
)

// Scores are the utterance-level aggregates, all on the 0..1 scale.
type Scores struct {
	Overall           float64
	Clarity           float64
	Fluency           float64
	Pace              float64
	PaceLabel         types.PaceLabel
	OverallConfidence float64
}

// WordScore is the composite score for one word: 1.0 for an exact match,
// otherwise the mean of similarity and confidence.
func WordScore(exactMatch bool, similarity, confidence float64) float64 {
	if exactMatch {
		return 1.0
	}
	return (similarity + confidence) / 2
}

// Aggregate combines per-word results into utterance scores. recognizedCount
// is the full number of recognized words, including any beyond the
// reference length. words must be non-empty.
func Aggregate(words []types.WordAssessment, recognizedCount int) Scores {
	n := len(words)
	var exact int
	var scoreSum, confSum float64
	for _, w := range words {
		if w.ExactMatch {
			exact++
		}
		scoreSum += w.Score
		confSum += w.Confidence
	}

	pace, label := Pace(n, recognizedCount)
	return Scores{
		Overall:           float64(exact) / float64(n),
		Clarity:           scoreSum / float64(n),
		Fluency:           Fluency(n, recognizedCount),
		Pace:              pace,
		PaceLabel:         label,
		OverallConfidence: confSum / float64(n),
	}
}

// Fluency derives a coarse fluency score from how far the recognized word
// count strays from the reference word count.
func Fluency(referenceCount, recognizedCount int) float64 {
	dev := math.Abs(float64(recognizedCount - referenceCount))
	pause := math.Max(0, 1-pausePenalty*dev)
	return (pause + rhythmBaseline) / 2
}

// Pace maps the recognized/reference word ratio onto three fixed bands.
func Pace(referenceCount, recognizedCount int) (float64, types.PaceLabel) {
	if referenceCount == 0 {
		return paceSlowScore, types.PaceTooSlow
	}
	r := float64(recognizedCount) / float64(referenceCount)
	switch {
	case r > fastRatio:
		return paceFastScore, types.PaceTooFast
	case r < slowRatio:
		return paceSlowScore, types.PaceTooSlow
	}
	return paceGoodScore, types.PaceGood
}
