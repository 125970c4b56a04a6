package model

import "time"

type LeaderboardEntry struct {
	Rank        uint64 `json:"rank"`
	AccountID   string `json:"account_id"`
	DisplayName string `json:"display_name,omitempty"`
	Points      int64  `json:"points"`
	ActiveDays  int64  `json:"active_days"`
}

type GetLeaderboardRequest struct {
	Tier   string `json:"tier"`
	Period string `json:"period"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

type GetLeaderboardResponse struct {
	PeriodValue string             `json:"period_value"`
	RefreshedAt time.Time          `json:"refreshed_at"`
	Entries     []LeaderboardEntry `json:"entries"`
}

type GetRankRequest struct {
	AccountID string `json:"account_id"`
	Tier      string `json:"tier"`
	Period    string `json:"period"`
}

type GetRankResponse struct {
	Rank        uint64 `json:"rank"`
	Points      int64  `json:"points"`
	Approximate bool   `json:"approximate,omitempty"`
}

type GetPreviousLeaderboardRequest struct {
	Tier   string `json:"tier"`
	Period string `json:"period"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

type GetPreviousLeaderboardResponse struct {
	PeriodValue string             `json:"period_value"`
	Entries     []LeaderboardEntry `json:"entries"`
}
