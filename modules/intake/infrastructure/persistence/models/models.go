package models

import "time"

type Submission struct {
	ID            string
	Reference     string
	Name          string
	Email         string
	StoreURL      string
	Message       string
	HasVoiceNote  bool
	VoiceNoteLink string
	Status        string
	CreatedAt     time.Time
}
