package upload

import (
	"alfred/internal/components/telemetry"
	"alfred/internal/question"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func bankOf(titles ...string) question.QuestionBank {
	var bank question.QuestionBank
	for _, title := range titles {
		bank.Questions = append(bank.Questions, question.Question{Title: title})
	}
	return bank
}

func TestRunOutcomes(t *testing.T) {
	bank := bankOf("ok", "invalid", "broken", "ok again")
	rec := telemetry.NewRecorder()

	var seen []string
	summary, err := Run(context.Background(), "test", bank, func(ctx context.Context, q question.Question) error {
		seen = append(seen, q.Title)
		switch q.Title {
		case "invalid":
			return Skip(question.ErrNoOptions)
		case "broken":
			return errors.New("status 500")
		}
		return nil
	}, rec)
	require.NoError(t, err)

	require.Equal(t, []string{"ok", "invalid", "broken", "ok again"}, seen)
	require.Equal(t, Summary{Total: 4, Created: 2, Skipped: 1, Failed: 1}, summary)
	require.Equal(t, "2/4 Questions created", summary.String())

	skipped := rec.Reports(telemetry.KindWarning, report_skipped)
	require.Len(t, skipped, 1)
	require.ErrorIs(t, skipped[0].Params[2].(error), question.ErrNoOptions)
	require.Len(t, rec.Reports(telemetry.KindBroken, report_failed), 1)

	counts := rec.Reports(telemetry.KindCount, report_created)
	require.Len(t, counts, 1)
	require.EqualValues(t, 2, counts[0].Count)
}

func TestQuestionCounter(t *testing.T) {
	require.NotNil(t, questionCounter)
	require.NotPanics(t, func() {
		questionCounter.Add(context.Background(), 1)
	})
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	summary, err := Run(ctx, "test", bankOf("a", "b", "c"), func(ctx context.Context, q question.Question) error {
		calls++
		cancel()
		return ctx.Err()
	}, telemetry.NewRecorder())
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
	require.Equal(t, Summary{Total: 3, Failed: 1}, summary)
}

func TestRunEmptyBank(t *testing.T) {
	summary, err := Run(context.Background(), "test", question.QuestionBank{}, func(context.Context, question.Question) error {
		t.Fatal("create should not be called")
		return nil
	}, telemetry.NewRecorder())
	require.NoError(t, err)
	require.Equal(t, "0/0 Questions created", summary.String())
}
