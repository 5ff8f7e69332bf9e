package session

// ItemResult tallies answers for one item within a session.
type ItemResult struct {
	ItemID    string
	Attempted int
	Correct   int
	Accuracy  float64 // Correct / Attempted (computed)
}

// Record adds a new answer result.
func (r *ItemResult) Record(correct bool) {
	r.Attempted++
	if correct {
		r.Correct++
	}
	if r.Attempted > 0 {
		r.Accuracy = float64(r.Correct) / float64(r.Attempted)
	}
}
