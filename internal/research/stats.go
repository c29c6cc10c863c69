package research

// Stats holds rolling timing statistics for the duration of a run, used by
// the scheduling decision to estimate how long remaining work will take.
type Stats struct {
	AverageIterationTimeMs  float64 `json:"averageIterationTimeMs"`
	AverageComponentTimeMs  float64 `json:"averageComponentTimeMs"`
	CompletedIterations     int     `json:"completedIterations"`
	TotalIterationsTimeMs   int64   `json:"totalIterationsTime"`
	IterationTimesMs        []int64 `json:"iterationTimes"`
}

// RecordIteration records the time spent on one deep-research iteration and
// refreshes AverageIterationTimeMs.
func (s *Stats) RecordIteration(ms int64) {
	s.IterationTimesMs = append(s.IterationTimesMs, ms)
	s.TotalIterationsTimeMs += ms
	s.CompletedIterations++
	s.AverageIterationTimeMs = float64(s.TotalIterationsTimeMs) / float64(s.CompletedIterations)
}

// RecordComponent updates AverageComponentTimeMs with a newly completed
// component's total time spent, using a simple running mean over the
// number of components completed so far.
func (s *Stats) RecordComponent(ms int64, completedComponents int) {
	if completedComponents <= 0 {
		s.AverageComponentTimeMs = float64(ms)
		return
	}
	total := s.AverageComponentTimeMs*float64(completedComponents) + float64(ms)
	s.AverageComponentTimeMs = total / float64(completedComponents+1)
}

// RecentIterationTime returns the mean of the last n iteration times,
// falling back to AverageIterationTimeMs, then to a hardcoded 60s default —
// the three-tier fallback named in spec §4.5 step 3.
func (s *Stats) RecentIterationTime(n int) float64 {
	if n <= 0 {
		n = 3
	}
	if len(s.IterationTimesMs) > 0 {
		start := len(s.IterationTimesMs) - n
		if start < 0 {
			start = 0
		}
		window := s.IterationTimesMs[start:]
		var sum int64
		for _, t := range window {
			sum += t
		}
		return float64(sum) / float64(len(window))
	}
	if s.AverageIterationTimeMs > 0 {
		return s.AverageIterationTimeMs
	}
	return 60000
}
