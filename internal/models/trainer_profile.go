package models

import "time"

type TrainerProfile struct {
	ID                string    `json:"_id"`
	UserID            string    `json:"user"`
	Bio               string    `json:"bio"`
	Specializations   []string  `json:"specializations"`
	Certifications    []string  `json:"certifications"`
	Methodology       *string   `json:"methodology"`
	Availability      *string   `json:"availability"`
	ProfilePictureURL *string   `json:"profilePictureUrl"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
