package models

import "time"

type ClientProfile struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"user"`
	FullName  string    `json:"fullName"`
	Age       int       `json:"age"`
	Gender    string    `json:"gender"`
	Weight    float64   `json:"weight"`
	Height    float64   `json:"height"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
