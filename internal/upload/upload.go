// Package upload runs the question-by-question upload loop shared by every platform.
package upload

import (
	"alfred/internal/components/telemetry"
	"alfred/internal/question"
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	report_skipped = "question.skipped"
	report_failed  = "question.failed"
	report_created = "question.created"
)

var meter = otel.Meter("alfred/internal/upload")

var questionCounter metric.Int64Counter

func init() {
	var err error
	questionCounter, err = meter.Int64Counter(
		"alfred.upload.questions",
		metric.WithDescription("Questions processed by an upload, by outcome."),
	)
	if err != nil {
		otel.Handle(err)
		questionCounter = noop.Int64Counter{}
	}
}

// ErrSkipped marks a question that was never sent because it cannot be uploaded as is.
var ErrSkipped = errors.New("skipped")

// Skip wraps err so the question is counted as skipped rather than failed.
func Skip(err error) error {
	return fmt.Errorf("%w: %w", ErrSkipped, err)
}

type Summary struct {
	Total   int
	Created int
	Skipped int
	Failed  int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d/%d Questions created", s.Created, s.Total)
}

// CreateFunc uploads a single question.
type CreateFunc func(ctx context.Context, q question.Question) error

// Run uploads every question of the bank in order. A question that fails does
// not stop the ones after it, only cancelling ctx does.
func Run(ctx context.Context, platform string, bank question.QuestionBank, create CreateFunc, tel telemetry.API) (Summary, error) {
	tel = telemetry.NewScopedAPI(platform, tel)
	summary := Summary{Total: len(bank.Questions)}
	platformAttr := attribute.String("platform", platform)

	count := func(outcome string) {
		questionCounter.Add(ctx, 1, metric.WithAttributes(
			platformAttr,
			attribute.String("outcome", outcome),
		))
	}

	for i, q := range bank.Questions {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		err := create(ctx, q)
		switch {
		case err == nil:
			summary.Created++
			count("created")
			tel.ReportDebug(report_created, i+1, q.Title)
		case errors.Is(err, ErrSkipped):
			summary.Skipped++
			count("skipped")
			tel.ReportWarning(report_skipped, i+1, q.Title, err)
		case ctx.Err() != nil:
			summary.Failed++
			count("failed")
			return summary, ctx.Err()
		default:
			summary.Failed++
			count("failed")
			tel.ReportBroken(report_failed, fmt.Errorf("question %d (%s): %w", i+1, q.Title, err))
		}
	}
	tel.ReportCount(report_created, int64(summary.Created))

	return summary, nil
}
