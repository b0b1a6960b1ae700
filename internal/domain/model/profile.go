package model

import "time"

// Badge names.
const BadgeEarlySwaparcer = "earlySwaparcer"

// Badges is a set of named achievements derived from profile stats.
type Badges map[string]bool

// Profile holds the aggregate stats for one trading wallet (or legacy user id).
// SwapCount and SwapVolume are only ever incremented; LpProvided is set by an
// external collaborator.
type Profile struct {
	ID            string
	Username      string
	WalletID      string
	WalletAddress string
	Avatar        string
	SwapCount     int64
	SwapVolume    float64
	LpProvided    float64
	Badges        Badges
	CreatedAt     time.Time
}

// EvaluateBadges derives the badge set from the numeric stats. A badge that is
// already earned stays earned even if the thresholds would no longer hold.
func EvaluateBadges(existing Badges, swapCount int64, swapVolume, lpProvided float64) Badges {
	badges := make(Badges, len(existing)+1)
	for name, earned := range existing {
		badges[name] = earned
	}

	if swapCount >= 100 || swapVolume >= 10000 || lpProvided >= 1000 {
		badges[BadgeEarlySwaparcer] = true
	}
	return badges
}

// Metric identifies a leaderboard ranking dimension.
type Metric string

const (
	MetricSwapVolume Metric = "swapVolume"
	MetricSwapCount  Metric = "swapCount"
	MetricLpProvided Metric = "lpProvided"
)

// Value returns the profile's value for the metric.
func (m Metric) Value(p *Profile) float64 {
	switch m {
	case MetricSwapCount:
		return float64(p.SwapCount)
	case MetricLpProvided:
		return p.LpProvided
	default:
		return p.SwapVolume
	}
}

// LeaderboardEntry is the public projection served to clients.
type LeaderboardEntry struct {
	Username   string  `json:"username"`
	Avatar     string  `json:"avatar"`
	SwapVolume float64 `json:"swapVolume"`
	Badges     Badges  `json:"badges"`
}

// RankedProfile is the per-metric projection with all ranking stats exposed.
type RankedProfile struct {
	UserID     string  `json:"userId"`
	SwapVolume float64 `json:"swapVolume"`
	SwapCount  int64   `json:"swapCount"`
	LpProvided float64 `json:"lpProvided"`
}
