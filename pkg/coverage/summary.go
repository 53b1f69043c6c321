package coverage

// Summary describes a depth array.
type Summary struct {
	Positions int     `json:"positions"`
	Covered   int     `json:"covered"` // positions with depth > 0
	Max       int     `json:"max"`
	MaxAt     int     `json:"max_at"` // offset of the first maximum
	Mean      float64 `json:"mean"`
}

// Summarize reduces depth to a Summary. An empty array gives a zero Summary.
func Summarize(depth []int) Summary {
	s := Summary{Positions: len(depth)}
	if len(depth) == 0 {
		return s
	}
	total := 0
	for i, d := range depth {
		total += d
		if d > 0 {
			s.Covered++
		}
		if d > s.Max {
			s.Max, s.MaxAt = d, i
		}
	}
	s.Mean = float64(total) / float64(len(depth))
	return s
}

// Max returns the largest value in depth, or 0 when depth is empty.
func Max(depth []int) int {
	m := 0
	for _, d := range depth {
		m = max(m, d)
	}
	return m
}
