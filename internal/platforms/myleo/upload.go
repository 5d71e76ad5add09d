package myleo

import (
	"alfred/internal/components/telemetry"
	"alfred/internal/question"
	"alfred/internal/upload"
	"context"
)

// Uploader creates the questions of a bank in the user's personal question bank.
// Module and assessment columns are not used by MyLEO.
type Uploader struct {
	client Client
	tel    telemetry.API
}

func NewUploader(client Client, tel telemetry.API) Uploader {
	return Uploader{client: client, tel: tel}
}

func (u Uploader) Run(ctx context.Context, bank question.QuestionBank) (upload.Summary, error) {
	return upload.Run(ctx, "myleo", bank, func(ctx context.Context, q question.Question) error {
		if err := q.Validate(); err != nil {
			return upload.Skip(err)
		}
		return u.client.CreateQuestion(ctx, NewPayload(q))
	}, u.tel)
}
