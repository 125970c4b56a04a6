package model

import "time"

type Account struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"display_name"`
	Sex          string    `json:"sex"`
	BirthDate    time.Time `json:"birth_date"`
	FitnessLevel string    `json:"fitness_level"`
	Balance      uint64    `json:"balance"`
	Tier         string    `json:"tier"`
	Tiers        []string  `json:"tiers"`
	Disabled     bool      `json:"disabled"`
	CreatedAt    time.Time `json:"created_at"`
}

type CreateAccountRequest struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"display_name"`
	Sex          string    `json:"sex"`
	BirthDate    time.Time `json:"birth_date"`
	FitnessLevel string    `json:"fitness_level"`
}

type CreateAccountResponse struct {
	Account Account `json:"account"`
}

type GetAccountRequest struct {
	ID string `json:"id"`
}

type GetAccountResponse struct {
	Account Account `json:"account"`
}

type UpdateAccountProfileRequest struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"display_name"`
	Sex          string    `json:"sex"`
	BirthDate    time.Time `json:"birth_date"`
	FitnessLevel string    `json:"fitness_level"`
}

type UpdateAccountProfileResponse struct {
	Account Account `json:"account"`
}

type DisableAccountRequest struct {
	ID string `json:"id"`
}

type DisableAccountResponse struct{}

type EnableAccountRequest struct {
	ID string `json:"id"`
}

type EnableAccountResponse struct{}
