package dto

import "time"

type DlqEntryDTO struct {
	ID        string    `json:"id" yaml:"id"`
	Command   string    `json:"command" yaml:"command"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

type DlqRetryDTO struct {
	ID string `json:"id" validate:"required"`
}
