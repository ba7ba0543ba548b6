package pipeline

import "github.com/sarchlab/pipesim/timing/config"

// BranchPredictorStats holds statistics for the branch predictor.
type BranchPredictorStats struct {
	// Predictions is the total number of branch predictions made.
	Predictions uint64
	// Correct is the number of correct predictions.
	Correct uint64
	// Mispredictions is the number of incorrect predictions.
	Mispredictions uint64
}

// Accuracy returns the prediction accuracy as a percentage.
func (s BranchPredictorStats) Accuracy() float64 {
	if s.Predictions == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Predictions) * 100
}

// MispredictionRate returns the misprediction rate as a percentage.
func (s BranchPredictorStats) MispredictionRate() float64 {
	if s.Predictions == 0 {
		return 0
	}
	return float64(s.Mispredictions) / float64(s.Predictions) * 100
}

// BranchPredictor is a static predictor. It decides how many bubbles a
// resolved branch costs.
type BranchPredictor struct {
	policy   config.BranchPolicy
	inDecode bool

	stats BranchPredictorStats
}

// NewBranchPredictor creates a predictor. With inDecode set, a flush costs
// one bubble instead of two.
func NewBranchPredictor(policy config.BranchPolicy, inDecode bool) *BranchPredictor {
	return &BranchPredictor{policy: policy, inDecode: inDecode}
}

// Penalty returns the number of bubbles a flush costs.
func (bp *BranchPredictor) Penalty() int {
	if bp.inDecode {
		return 1
	}
	return 2
}

// Bubbles returns the number of bubbles to insert after a branch with the
// given outcome and updates the statistics.
func (bp *BranchPredictor) Bubbles(taken bool) int {
	var correct bool

	switch bp.policy {
	case config.PredictNone:
		return bp.Penalty()
	case config.PredictPerfect:
		correct = true
	case config.PredictTaken:
		correct = taken
	case config.PredictNotTaken:
		correct = !taken
	}

	bp.stats.Predictions++
	if correct {
		bp.stats.Correct++
		return 0
	}

	bp.stats.Mispredictions++

	return bp.Penalty()
}

// Stats returns the predictor statistics.
func (bp *BranchPredictor) Stats() BranchPredictorStats {
	return bp.stats
}

// Reset clears the statistics.
func (bp *BranchPredictor) Reset() {
	bp.stats = BranchPredictorStats{}
}
