package persistence

import (
	"github.com/google/uuid"

	"github.com/storefixhq/storefix/modules/intake/domain/aggregates/submission"
	"github.com/storefixhq/storefix/modules/intake/infrastructure/persistence/models"
)

func toDBSubmission(sub submission.Submission) *models.Submission {
	return &models.Submission{
		ID:            sub.ID().String(),
		Reference:     sub.Reference(),
		Name:          sub.Name(),
		Email:         sub.Email(),
		StoreURL:      sub.StoreURL(),
		Message:       sub.Message(),
		HasVoiceNote:  sub.HasVoiceNote(),
		VoiceNoteLink: sub.VoiceNoteLink(),
		Status:        string(sub.Status()),
		CreatedAt:     sub.CreatedAt(),
	}
}

func toDomainSubmission(row *models.Submission) (submission.Submission, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, err
	}
	opts := []submission.Option{
		submission.WithID(id),
		submission.WithStoreURL(row.StoreURL),
		submission.WithMessage(row.Message),
		submission.WithStatus(submission.Status(row.Status)),
		submission.WithCreatedAt(row.CreatedAt),
		submission.WithHasVoiceNote(row.HasVoiceNote),
	}
	if row.VoiceNoteLink != "" {
		opts = append(opts, submission.WithVoiceNote(row.VoiceNoteLink))
	}
	return submission.New(row.Reference, row.Name, row.Email, opts...), nil
}
