package domain

import "time"

type Guardian struct {
	Name  string `json:"name" validate:"required,min=1,max=64"`
	Phone string `json:"phone" validate:"required,phone"`
}

type User struct {
	ID         string     `json:"id"`
	Phone      string     `json:"phone"`
	Name       string     `json:"name"`
	Guardians  []Guardian `json:"guardians"`
	PushTokens []string   `json:"push_tokens"`
	CreatedAt  time.Time  `json:"created_at"`
}

type UpsertProfileRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=64"`
	Phone string `json:"phone" validate:"required,phone"`
}

type RegisterPushTokenRequest struct {
	Token string `json:"token" validate:"required,min=8,max=4096"`
}
