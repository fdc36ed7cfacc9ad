package transport

import "koppara_backend/internal/analytics/engine"

// LeaderboardRequest selects the ranking and size of the leaderboard.
type LeaderboardRequest struct {
	By    string `form:"by" validate:"omitempty,ranking"`
	Limit int    `form:"limit" validate:"omitempty,min=1,max=100"`
}

// LeaderboardResponse is a ranked list of distributors.
type LeaderboardResponse struct {
	By    string                    `json:"by"`
	Items []engine.DistributorStats `json:"items"`
}

// MyStatsResponse is the calling distributor's funnel.
type MyStatsResponse struct {
	Stats    engine.DistributorStats `json:"stats"`
	Products []engine.ProductStats   `json:"products"`
}
