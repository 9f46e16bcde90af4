package scoring

// Move classifications by centipawn loss.
const (
	ClassGood       = "good"
	ClassInaccuracy = "inaccuracy"
	ClassMistake    = "mistake"
	ClassBlunder    = "blunder"
)

// Scores per outcome. An exact historical match always outranks the oracle's move,
// which outranks every other legal move.
const (
	ScoreExact      = 100
	ScoreOracleBest = 70
	ScoreGood       = 40
	ScoreInaccuracy = 25
	ScoreMistake    = 10
	ScoreBlunder    = 0
	ScoreUnverified = 20
)

// CPLoss is how much the mover lost going from evalBefore to evalAfter. Both are
// from White's perspective.
func CPLoss(evalBefore, evalAfter int, isWhiteMove bool) int {
	diff := evalAfter - evalBefore

	// For white moves a falling eval is a loss, for black moves a rising one.
	loss := diff
	if isWhiteMove {
		loss = -diff
	}
	if loss < 0 {
		return 0
	}
	return loss
}

// Classify buckets a centipawn loss.
func Classify(loss int) string {
	switch {
	case loss > 200:
		return ClassBlunder
	case loss > 100:
		return ClassMistake
	case loss > 50:
		return ClassInaccuracy
	default:
		return ClassGood
	}
}

func scoreFor(class string) int {
	switch class {
	case ClassGood:
		return ScoreGood
	case ClassInaccuracy:
		return ScoreInaccuracy
	case ClassMistake:
		return ScoreMistake
	default:
		return ScoreBlunder
	}
}
