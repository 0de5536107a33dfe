package report

import (
	"math"
	"time"
)

// FocusScore rates a stretch of browsing from 0 to 100: the share of time spent on work
// domains, minus ten points per tab switch per minute. No tracked time scores 100.
func FocusScore(workTime, totalTime time.Duration, switches int) int {
	if totalTime <= 0 {
		return 100
	}
	workRatio := float64(workTime) / float64(totalTime)
	perMinute := float64(switches) / totalTime.Minutes()
	score := 100*workRatio - 10*perMinute
	return int(math.Round(math.Max(0, math.Min(100, score))))
}
