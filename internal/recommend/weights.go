package recommend

import (
	"github.com/vytor/chesslegends/internal/models"
	"github.com/vytor/chesslegends/internal/rules"
)

// Candidate is one distinct historical move with its selection weight.
type Candidate struct {
	Move   string  `json:"move"`
	Count  int     `json:"count"`
	Weight float64 `json:"weight"`
}

// Weigh groups continuations by move in first-seen order, dropping moves that are not
// legal. Each occurrence adds 1 plus its recency: the share of dated continuations
// played in the same year or earlier. Undated occurrences have recency 0.
func Weigh(conts []models.Continuation, legal []models.Move) []Candidate {
	var years []int
	for _, c := range conts {
		if c.Year > 0 {
			years = append(years, c.Year)
		}
	}
	recency := func(year int) float64 {
		if year <= 0 || len(years) == 0 {
			return 0
		}
		n := 0
		for _, y := range years {
			if y <= year {
				n++
			}
		}
		return float64(n) / float64(len(years))
	}

	pos := map[string]int{}
	var out []Candidate
	for _, c := range conts {
		if !rules.Contains(legal, c.Move) {
			continue
		}
		i, ok := pos[c.Move]
		if !ok {
			i = len(out)
			pos[c.Move] = i
			out = append(out, Candidate{Move: c.Move})
		}
		out[i].Count++
		out[i].Weight += 1 + recency(c.Year)
	}
	return out
}
