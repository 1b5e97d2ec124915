package comparator

import "time"

// Stats are the slowest, fastest and average time spent comparing one stem.
type Stats struct {
	Slowest      time.Duration
	Fastest      time.Duration
	Average      time.Duration
	NumberOfRuns int
}

func newStats(timeStats []time.Duration) Stats {
	n := len(timeStats)
	if n == 0 {
		return Stats{}
	}
	tmin, tmax := timeStats[0], timeStats[0]
	var sum time.Duration
	for _, tt := range timeStats {
		if tt < tmin {
			tmin = tt
		}
		if tt > tmax {
			tmax = tt
		}
		sum += tt
	}
	return Stats{
		Slowest:      tmax,
		Fastest:      tmin,
		Average:      time.Duration(int64(sum) / int64(n)),
		NumberOfRuns: n,
	}
}
