package question

import (
	"alfred/internal/components/telemetry"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var fullHeader = []string{
	"Title", "Question", "Score", "Ans", "Est.time (min)",
	"A marks", "C marks", "P marks",
	"Module Code", "Assessment Type", "Qualification Type",
}

func valid(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func mustParse(t *testing.T, header []string, rows ...[]string) (QuestionBank, *telemetry.Recorder) {
	t.Helper()
	rec := telemetry.NewRecorder()
	bank, err := Parse(NewTable(header, rows), rec)
	require.NoError(t, err)
	return bank, rec
}

func TestParseSheet(t *testing.T) {
	bank, rec := mustParse(
		t, fullHeader,
		[]string{"Q1", "Calculate the molar mass of water", "2", "b", "3", "", "1", "", "A1159C", "CWF", ""},
		[]string{"a", "16 g/mol"},
		[]string{"b", "18 g/mol"},
		[]string{"c", "20 g/mol"},
		[]string{},
		[]string{"Q2", "Which gas is inert?", "1", "a", "1", "1", "1", "1", "", "", "CET (AY2023 Term 2)"},
		[]string{"a", "Argon"},
		[]string{"b", "Oxygen"},
		[]string{"c", "Hydrogen"},
		[]string{"Q3", "Boiling point of water?", "1.5", "c", "", "", "", "", "A2009C", "CW1", ""},
		[]string{"a", "90"},
		[]string{"b", "95"},
		[]string{"c", "100"},
	)

	expected := []Question{
		{
			Title:                "Q1",
			Content:              "Calculate the molar mass of water",
			Score:                2,
			Answer:               "b",
			EstimatedTimeMinutes: 3,
			Competency:           Competency{Competent: 1},
			Options: []Option{
				{Label: "a", Text: "16 g/mol"},
				{Label: "b", Text: "18 g/mol"},
				{Label: "c", Text: "20 g/mol"},
			},
			Module:     valid("A1159C"),
			Assessment: valid("CWF"),
		},
		{
			Title:                "Q2",
			Content:              "Which gas is inert?",
			Score:                1,
			Answer:               "a",
			EstimatedTimeMinutes: 1,
			Competency:           Competency{Advanced: 1, Competent: 1, Proficient: 1},
			Options: []Option{
				{Label: "a", Text: "Argon"},
				{Label: "b", Text: "Oxygen"},
				{Label: "c", Text: "Hydrogen"},
			},
			Module:            valid("A1159C"),
			Assessment:        valid("CWF"),
			QualificationType: valid("CET (AY2023 Term 2)"),
		},
		{
			Title:   "Q3",
			Content: "Boiling point of water?",
			Score:   1.5,
			Answer:  "c",
			Options: []Option{
				{Label: "a", Text: "90"},
				{Label: "b", Text: "95"},
				{Label: "c", Text: "100"},
			},
			Module:            valid("A2009C"),
			Assessment:        valid("CW1"),
			QualificationType: valid("CET (AY2023 Term 2)"),
		},
	}

	diff := cmp.Diff(expected, bank.Questions)
	if diff != "" {
		t.Fatal(diff)
	}
	require.Empty(t, rec.Reports(telemetry.KindWarning, ""))

	for _, q := range bank.Questions {
		require.NoError(t, q.Validate())
	}
}

func TestParseQuestionCount(t *testing.T) {
	bank, _ := mustParse(
		t, []string{"Title", "Question", "Score", "Ans"},
		[]string{"Q1", "one", "1", "a"},
		[]string{"Q2", "two", "1", "a"},
		[]string{"", "", "", ""},
		[]string{"Q3", "three", "1", "a"},
		[]string{"a", "option"},
	)
	require.Len(t, bank.Questions, 3)
	require.Empty(t, bank.Questions[0].Options)
	require.Empty(t, bank.Questions[1].Options)
	require.Len(t, bank.Questions[2].Options, 1)
}

func TestStickyColumns(t *testing.T) {
	bank, _ := mustParse(
		t, fullHeader,
		[]string{"Q1", "one", "1", "a", "", "", "", "", "A3079C", "", ""},
		[]string{"Q2", "two", "1", "a", "", "", "", "", "", "CWF", ""},
		[]string{"Q3", "three", "1", "a", "", "", "", "", "   ", "", ""},
	)
	require.Len(t, bank.Questions, 3)
	for _, q := range bank.Questions {
		require.Equal(t, valid("A3079C"), q.Module)
		require.False(t, q.QualificationType.Valid)
	}
	// each column carries forward on its own
	require.False(t, bank.Questions[0].Assessment.Valid)
	require.Equal(t, valid("CWF"), bank.Questions[1].Assessment)
	require.Equal(t, valid("CWF"), bank.Questions[2].Assessment)
}

func TestStickyColumnsIgnoreOptionRows(t *testing.T) {
	bank, _ := mustParse(
		t, fullHeader,
		[]string{"Q1", "one", "1", "a", "", "", "", "", "A3079C", "", ""},
		[]string{"a", "option", "", "", "", "", "", "", "A0001F", "", ""},
		[]string{"Q2", "two", "1", "a", "", "", "", "", "", "", ""},
	)
	require.Equal(t, valid("A3079C"), bank.Questions[1].Module)
}

func TestMissingStickyColumns(t *testing.T) {
	bank, _ := mustParse(
		t, []string{"Title", "Question", "Score", "Ans"},
		[]string{"Q1", "one", "1", "a"},
		[]string{"Q2", "two", "1", "a"},
	)
	for _, q := range bank.Questions {
		require.False(t, q.Module.Valid)
		require.False(t, q.Assessment.Valid)
		require.False(t, q.QualificationType.Valid)
	}
}

func TestCompetencyColumnMigration(t *testing.T) {
	legacy, _ := mustParse(
		t, []string{"Title", "Question", "Score", "Ans", "A", "C", "P"},
		[]string{"Q1", "one", "1", "a", "2", "", "0.5"},
	)
	current, _ := mustParse(
		t, []string{"Title", "Question", "Score", "Ans", "A marks", "C marks", "P marks"},
		[]string{"Q1", "one", "1", "a", "2", "", "0.5"},
	)
	require.Equal(t, Competency{Advanced: 2, Proficient: 0.5}, legacy.Questions[0].Competency)
	require.Equal(t, legacy.Questions[0].Competency, current.Questions[0].Competency)

	// "<letter> marks" wins when both are present
	both, _ := mustParse(
		t, []string{"Title", "Question", "Score", "Ans", "A", "A marks"},
		[]string{"Q1", "one", "1", "a", "1", "3"},
	)
	require.Equal(t, float64(3), both.Questions[0].Competency.Advanced)
}

func TestOptionOrder(t *testing.T) {
	bank, _ := mustParse(
		t, []string{"Title", "Question", "Score", "Ans"},
		[]string{"Q1", "one", "1", "z"},
		[]string{"z", "last letter"},
		[]string{"a", "first letter"},
		[]string{"m", "middle letter"},
		[]string{"a", "first letter again"},
	)
	require.Equal(t, []Option{
		{Label: "z", Text: "last letter"},
		{Label: "a", Text: "first letter again"},
		{Label: "m", Text: "middle letter"},
	}, bank.Questions[0].Options)
}

// Options with no question before them (or after a blank row) are dropped instead
// of failing the parse. This is long standing behavior that sheets rely on.
func TestOrphanChoiceRowsAreDropped(t *testing.T) {
	bank, rec := mustParse(
		t, []string{"Title", "Question", "Score", "Ans"},
		[]string{"a", "orphan before any question"},
		[]string{"Q1", "one", "1", "a"},
		[]string{"a", "kept"},
		[]string{"", ""},
		[]string{"b", "orphan after a blank row"},
	)
	require.Len(t, bank.Questions, 1)
	require.Equal(t, []Option{{Label: "a", Text: "kept"}}, bank.Questions[0].Options)
	require.Len(t, rec.Reports(telemetry.KindWarning, report_parse_orphan_choice), 2)
}

func TestMissingRequiredColumn(t *testing.T) {
	_, err := Parse(NewTable([]string{"Title", "Question", "Ans"}, nil), telemetry.NewRecorder())
	require.True(t, errors.Is(err, ErrMissingColumn))
}

func TestUnreadableNumbers(t *testing.T) {
	bank, rec := mustParse(
		t, []string{"Title", "Question", "Score", "Ans", "Est.time (min)", "C"},
		[]string{"Q1", "one", "two", "a", "2.7", "lots"},
	)
	require.Len(t, bank.Questions, 1)
	require.Equal(t, float64(0), bank.Questions[0].Score)
	require.Equal(t, 2, bank.Questions[0].EstimatedTimeMinutes)
	require.Equal(t, float64(0), bank.Questions[0].Competency.Competent)
	require.Len(t, rec.Reports(telemetry.KindWarning, report_parse_number), 2)
}

func TestValidate(t *testing.T) {
	q := Question{Title: "Q1", Answer: "d"}
	require.ErrorIs(t, q.Validate(), ErrNoOptions)

	q.Options = []Option{{Label: "a", Text: "1"}, {Label: "b", Text: "2"}}
	require.ErrorIs(t, q.Validate(), ErrAnswerNotAnOption)

	q.Answer = "b"
	require.NoError(t, q.Validate())
	require.Equal(t, 1, q.AnswerIndex())
	text, ok := q.Option("b")
	require.True(t, ok)
	require.Equal(t, "2", text)
}

func TestEndToEndScenario(t *testing.T) {
	bank, _ := mustParse(
		t, fullHeader,
		[]string{"Q1", "one", "1", "a", "1", "", "", "", "A1159C", "CWF", ""},
		[]string{"a", "1"},
		[]string{"b", "2"},
		[]string{"c", "3"},
		[]string{"Q2", "two", "1", "b", "1", "", "", "", "", "CWF", ""},
		[]string{"a", "1"},
		[]string{"b", "2"},
		[]string{"c", "3"},
		[]string{"Q3", "three", "1", "c", "1", "", "", "", "A2009C", "CWF", ""},
		[]string{"a", "1"},
		[]string{"b", "2"},
		[]string{"c", "3"},
	)
	require.Len(t, bank.Questions, 3)

	shared := 0
	for _, q := range bank.Questions {
		require.Len(t, q.Options, 3)
		if q.Module == valid("A1159C") {
			shared++
		}
	}
	require.Equal(t, 2, shared)
	require.Equal(t, valid("A2009C"), bank.Questions[2].Module)
}
