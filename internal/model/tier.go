package model

import "time"

type ClassifyTierRequest struct {
	Sex          string    `json:"sex"`
	BirthDate    time.Time `json:"birth_date"`
	FitnessLevel string    `json:"fitness_level"`
}

type ClassifyTierResponse struct {
	Tier  string   `json:"tier"`
	Tiers []string `json:"tiers"`
}

type GetTiersRequest struct{}

type GetTiersResponse struct {
	Tiers []string `json:"tiers"`
}
