package trials

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary aggregates the episode summaries of a trial for the stats endpoint and the console.
type Summary struct {
	Episodes        int     `json:"episodes"`
	MeanTicks       float64 `json:"meanTicks"`
	StdTicks        float64 `json:"stdTicks"`
	P90Ticks        float64 `json:"p90Ticks"`
	MeanHazardTicks float64 `json:"meanHazardTicks"`
	StdHazardTicks  float64 `json:"stdHazardTicks"`
	Collisions      int     `json:"collisions"`
	Avoidances      int     `json:"avoidances"`
	Skips           int     `json:"skips"`
	DeadEnds        int     `json:"deadEnds"`
	FinishRate      float64 `json:"finishRate"`
	PeakSpeed       float64 `json:"peakSpeed"`
}

// Summarize reduces the episode summaries. An empty input gives the zero Summary.
func Summarize(episodes []EpisodeSummary) (summary Summary) {
	n := len(episodes)
	if n == 0 {
		return
	}

	ticks := make([]float64, 0, n)
	hazardTicks := make([]float64, 0, n)
	speeds := make([]float64, 0, n)
	finished := 0
	for _, ep := range episodes {
		ticks = append(ticks, float64(ep.Ticks))
		hazardTicks = append(hazardTicks, float64(ep.HazardTicks))
		speeds = append(speeds, ep.PeakSpeed)
		summary.Collisions += ep.Collisions
		summary.Avoidances += ep.Avoidances
		summary.Skips += ep.Skips
		summary.DeadEnds += ep.DeadEnds
		if ep.Finished {
			finished++
		}
	}

	summary.Episodes = n
	summary.MeanTicks, summary.StdTicks = meanStdDev(ticks)
	summary.MeanHazardTicks, summary.StdHazardTicks = meanStdDev(hazardTicks)
	sort.Float64s(ticks)
	summary.P90Ticks = stat.Quantile(0.9, stat.Empirical, ticks, nil)
	summary.FinishRate = float64(finished) / float64(n)
	summary.PeakSpeed = floats.Max(speeds)
	return
}

// The sample deviation of a single value is undefined; report it as zero so the summary stays json-safe.
func meanStdDev(x []float64) (mean, std float64) {
	if len(x) == 1 {
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}
