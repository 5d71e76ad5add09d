package mysa

import (
	"alfred/internal/components/telemetry"
	"alfred/internal/question"
	"alfred/internal/upload"
	"context"
	"errors"
	"fmt"
)

var ErrNoAssessment = errors.New("question has no module code or assessment type")

// Uploader creates the questions of a bank under the assessments they name.
type Uploader struct {
	client Client
	lookup Lookup
	tel    telemetry.API
}

func NewUploader(client Client, lookup Lookup, tel telemetry.API) Uploader {
	return Uploader{
		client: client,
		lookup: lookup,
		tel:    tel,
	}
}

// Prepare checks a question and builds its payload without sending anything.
func (u Uploader) Prepare(q question.Question) (Payload, error) {
	if err := q.Validate(); err != nil {
		return Payload{}, upload.Skip(err)
	}
	if !q.Module.Valid || !q.Assessment.Valid {
		return Payload{}, upload.Skip(ErrNoAssessment)
	}
	ids, err := u.lookup.Find(q.Module.String, q.Assessment.String, q.QualificationType)
	if err != nil {
		return Payload{}, upload.Skip(err)
	}
	payload, err := NewPayload(q, q.Module.String, ids)
	if err != nil {
		return Payload{}, fmt.Errorf("build payload: %w", err)
	}
	return payload, nil
}

func (u Uploader) Run(ctx context.Context, bank question.QuestionBank) (upload.Summary, error) {
	return upload.Run(ctx, "mysa", bank, func(ctx context.Context, q question.Question) error {
		payload, err := u.Prepare(q)
		if err != nil {
			return err
		}
		return u.client.CreateQuestion(ctx, payload)
	}, u.tel)
}
