package assess

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/MrWong99/elocution/pkg/types"
)

const (
	issueLowConfidence = "Low confidence"
	issueIncorrect     = "Incorrect pronunciation"

	genericTip = "Say the word slowly and clearly, giving every syllable its full length."

	excellentConfidence = 0.9
	highPriorityBelow   = 0.5
)

// Feedback is everything the generator derives from the word assessments.
// All slices are non-nil.
type Feedback struct {
	Suggestions         []types.Suggestion
	Strengths           []types.Strength
	AreasForImprovement []types.ImprovementArea
	CommonIssues        []types.IssueCount
}

// feedbackGenerator turns word assessments into learner-facing feedback.
type feedbackGenerator struct {
	lowConfidence    float64
	commonIssueLimit int
	improvementLimit int
}

// generate builds suggestions, strengths, improvement areas and the common
// issue histogram. exercises is the drill list for the utterance language.
func (g feedbackGenerator) generate(words []types.WordAssessment, exercises []string) Feedback {
	fb := Feedback{
		Suggestions:         []types.Suggestion{},
		Strengths:           []types.Strength{},
		AreasForImprovement: []types.ImprovementArea{},
	}

	counts := make(map[[2]string]int)
	for _, w := range words {
		for _, is := range w.PhonemeIssues {
			counts[[2]string{is.Expected, is.Heard}]++
		}

		if w.ExactMatch && w.Confidence >= g.lowConfidence {
			label := "good"
			if w.Confidence > excellentConfidence {
				label = "excellent"
			}
			fb.Strengths = append(fb.Strengths, types.Strength{
				Word:       w.ReferenceWord,
				Label:      label,
				Confidence: w.Confidence,
			})
			continue
		}

		issue := issueIncorrect
		if w.ExactMatch {
			issue = issueLowConfidence
		}
		fb.Suggestions = append(fb.Suggestions, types.Suggestion{
			Word:              w.ReferenceWord,
			Issue:             issue,
			Tip:               tipFor(w),
			PracticeExercises: append([]string{}, exercises...),
		})

		prio := types.PriorityMedium
		if w.Confidence < highPriorityBelow {
			prio = types.PriorityHigh
		}
		fb.AreasForImprovement = append(fb.AreasForImprovement, types.ImprovementArea{
			Word:       w.ReferenceWord,
			Difficulty: w.Difficulty,
			Priority:   prio,
		})
	}

	slices.SortStableFunc(fb.AreasForImprovement, func(a, b types.ImprovementArea) int {
		return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
	})
	fb.AreasForImprovement = truncate(fb.AreasForImprovement, g.improvementLimit)
	fb.CommonIssues = truncate(histogram(counts), g.commonIssueLimit)
	return fb
}

// tipFor points at the most severe phoneme issue of w, falling back to a
// generic clarity tip.
func tipFor(w types.WordAssessment) string {
	if len(w.PhonemeIssues) == 0 {
		if w.SoundsAlike {
			return fmt.Sprintf("%q sounded like %q; stress the sounds that tell them apart.", w.ReferenceWord, w.RecognizedWord)
		}
		return genericTip
	}
	worst := w.PhonemeIssues[0]
	for _, is := range w.PhonemeIssues[1:] {
		if is.Similarity < worst.Similarity {
			worst = is
		}
	}
	return fmt.Sprintf("Focus on the %q sound in %q: %s.", worst.Expected, w.ReferenceWord, worst.Description)
}

// histogram orders mismatch counts descending, breaking ties by pattern so
// the output is deterministic.
func histogram(counts map[[2]string]int) []types.IssueCount {
	out := make([]types.IssueCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, types.IssueCount{
			Pattern:  k[0] + " -> " + k[1],
			Expected: k[0],
			Heard:    k[1],
			Count:    n,
		})
	}
	slices.SortFunc(out, func(a, b types.IssueCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Pattern, b.Pattern)
	})
	return out
}

func truncate[T any](s []T, limit int) []T {
	if limit >= 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
