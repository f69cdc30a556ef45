package evaluation

// RankOf returns the 1-based position of name in ranked, or 0 when absent.
func RankOf(name string, ranked []string) int {
	for i, candidate := range ranked {
		if candidate == name {
			return i + 1
		}
	}
	return 0
}

// ReciprocalRank maps a 1-based rank to its reciprocal. Rank 0 (not found)
// contributes nothing.
func ReciprocalRank(rank int) float64 {
	if rank <= 0 {
		return 0.0
	}
	return 1.0 / float64(rank)
}
