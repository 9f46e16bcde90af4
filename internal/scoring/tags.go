package scoring

import (
	"sort"

	"github.com/vytor/chesslegends/internal/models"
)

// missTags describes how a guess differs from the historical move.
func missTags(guess, historical models.Move, color models.Color) []models.Tag {
	tags := []models.Tag{models.TagDeviation}
	if guess.From != historical.From {
		tags = append(tags, models.TagWrongPiece)
	}
	if historical.Forcing() && !guess.Forcing() {
		tags = append(tags, models.TagMissedForcing)
	}
	if advance(guess, color) < 0 && advance(historical, color) > 0 {
		tags = append(tags, models.TagPassiveAlternative)
	}
	return tags
}

// advance is the number of ranks m moves toward the opponent.
func advance(m models.Move, color models.Color) int {
	if len(m.From) != 2 || len(m.To) != 2 {
		return 0
	}
	d := int(m.To[1]) - int(m.From[1])
	if color == models.Black {
		d = -d
	}
	return d
}

func classTags(class string) []models.Tag {
	switch class {
	case ClassGood:
		return []models.Tag{models.TagReasonable}
	case ClassBlunder:
		return []models.Tag{models.TagBlunder}
	default:
		return []models.Tag{models.TagInferior}
	}
}

// WeaknessTags returns the weakness tags found on at least two results, most frequent
// first and alphabetical on ties.
func WeaknessTags(results []models.GuessResult) []models.Tag {
	counts := map[models.Tag]int{}
	for _, r := range results {
		seen := map[models.Tag]bool{}
		for _, t := range r.Tags {
			if t.Weakness() && !seen[t] {
				seen[t] = true
				counts[t]++
			}
		}
	}

	out := []models.Tag{}
	for t, n := range counts {
		if n >= 2 {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if counts[out[i]] != counts[out[j]] {
			return counts[out[i]] > counts[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}
