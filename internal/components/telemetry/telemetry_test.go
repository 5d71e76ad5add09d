package telemetry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	rec := NewRecorder()
	tel := NewScopedAPI("mysa", rec)

	tel.ReportWarning("client.create-question", "title")
	tel.ReportBroken("client.assessment-filter")
	tel.ReportCount("questions", 3)

	warnings := rec.Reports(KindWarning, "")
	require.Len(t, warnings, 1)
	require.Equal(t, "mysa: client.create-question", warnings[0].ID)
	require.Equal(t, []any{"title"}, warnings[0].Params)

	require.Len(t, rec.Reports(KindBroken, "assessment-filter"), 1)
	require.Empty(t, rec.Reports(KindBroken, "create-question"))

	counts := rec.Reports(KindCount, "questions")
	require.Len(t, counts, 1)
	require.Equal(t, int64(3), counts[0].Count)
}
