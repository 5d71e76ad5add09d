package mysa

import (
	"alfred/internal/components/telemetry"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func qt(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func TestSplitQualificationType(t *testing.T) {
	testCases := []struct {
		fullName string
		expected sql.NullString
	}{
		{fullName: "A1159C - Main<br />CET (AY2023 Term 2)", expected: qt("CET (AY2023 Term 2)")},
		{fullName: "A1159C - Main<br/>CET (AY2023 Term 2)", expected: qt("CET (AY2023 Term 2)")},
		{fullName: "A1159C - Main<br>CET (AY2023 Term 2)", expected: qt("CET (AY2023 Term 2)")},
		{fullName: "A1159C - Main< BR  / >PET", expected: qt("PET")},
		{fullName: "A1159C - Main<br />", expected: qt("")},
		{fullName: "A1159C - Main", expected: sql.NullString{}},
		{fullName: "", expected: sql.NullString{}},
		{fullName: "a<br/>b<br/>c", expected: sql.NullString{}},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, SplitQualificationType(test.fullName), test.fullName)
	}
}

const filterFixture = `{
	"data": [
		{
			"qTypeFullName": "A1159C - Main<br />CET (AY2023 Term 2)",
			"assessments": [
				{
					"assessment": "CWF",
					"id": "3447c693",
					"moduleCode": "A1159C",
					"moduleId": "1c9fcaab",
					"isMakeUp": false,
					"permissions": ["View", "Edit"]
				},
				{
					"assessment": "CWF",
					"id": "9f1a2b3c",
					"moduleCode": "A1159C",
					"moduleId": "1c9fcaab",
					"isMakeUp": true,
					"permissions": ["Edit"]
				},
				{
					"assessment": "CW1",
					"id": "19fd8729",
					"moduleCode": "A1159C",
					"moduleId": "1c9fcaab",
					"isMakeUp": false,
					"permissions": ["View"]
				}
			]
		},
		{
			"qTypeFullName": "A1159C - Main<br/>PET (AY2023 Term 2)",
			"assessments": [
				{
					"assessment": "CWF",
					"id": "ea159962",
					"moduleCode": "A1159C",
					"moduleId": "1d3dbffd",
					"isMakeUp": false,
					"permissions": ["Edit"]
				}
			]
		},
		{
			"qTypeFullName": "A0001F - Foundation",
			"assessments": [
				{
					"assessment": "CA1",
					"id": "b4a602fe",
					"moduleCode": "A0001F",
					"moduleId": "233f1b7f",
					"isMakeUp": false,
					"permissions": ["Edit", "Delete"]
				}
			]
		}
	],
	"total": 3
}`

func loadFixture(t *testing.T) FilterResponse {
	t.Helper()
	var res FilterResponse
	require.NoError(t, json.Unmarshal([]byte(filterFixture), &res))
	return res
}

func TestResolveAssessments(t *testing.T) {
	res := loadFixture(t)
	rec := telemetry.NewRecorder()
	lookup := ResolveAssessments(res.Data, DefaultEditPermission, rec)

	expected := Lookup{
		{Module: "A1159C", Assessment: "CWF"}: {
			qt("CET (AY2023 Term 2)"): {ModuleID: "1c9fcaab", AssessmentID: "3447c693"},
			qt("PET (AY2023 Term 2)"): {ModuleID: "1d3dbffd", AssessmentID: "ea159962"},
		},
		{Module: "A1159C", Assessment: "CWF (Make-up)"}: {
			qt("CET (AY2023 Term 2)"): {ModuleID: "1c9fcaab", AssessmentID: "9f1a2b3c"},
		},
		{Module: "A0001F", Assessment: "CA1"}: {
			sql.NullString{}: {ModuleID: "233f1b7f", AssessmentID: "b4a602fe"},
		},
	}
	diff := cmp.Diff(expected, lookup)
	if diff != "" {
		t.Fatal(diff)
	}
	require.Empty(t, rec.Reports(telemetry.KindWarning, ""))
}

func TestResolveRequiresTelemetry(t *testing.T) {
	require.Panics(t, func() {
		ResolveAssessments(loadFixture(t).Data, DefaultEditPermission, nil)
	})
}

func TestResolvePermissionFiltering(t *testing.T) {
	lookup := ResolveAssessments(loadFixture(t).Data, DefaultEditPermission, telemetry.NewRecorder())
	_, ok := lookup[Key{Module: "A1159C", Assessment: "CW1"}]
	require.False(t, ok)

	// a different permission token changes what is kept
	viewable := ResolveAssessments(loadFixture(t).Data, "View", telemetry.NewRecorder())
	require.Len(t, viewable, 2)
	require.Contains(t, viewable, Key{Module: "A1159C", Assessment: "CW1"})
}

func TestResolveMakeUpKeys(t *testing.T) {
	groups := []QualificationGroup{{
		FullName: "A3079C - Main<br />CET",
		Assessments: []AssessmentRecord{
			{Assessment: "CWF", ID: "primary", ModuleCode: "A3079C", ModuleID: "m", Permissions: []string{"Edit"}},
			{Assessment: "CWF", ID: "makeup", ModuleCode: "A3079C", ModuleID: "m", IsMakeUp: true, Permissions: []string{"Edit"}},
		},
	}}
	lookup := ResolveAssessments(groups, DefaultEditPermission, telemetry.NewRecorder())
	require.Equal(t, []Key{
		{Module: "A3079C", Assessment: "CWF"},
		{Module: "A3079C", Assessment: "CWF (Make-up)"},
	}, lookup.Keys())
	require.Equal(t, "makeup", lookup[Key{Module: "A3079C", Assessment: "CWF (Make-up)"}][qt("CET")].AssessmentID)
}

func TestResolveIsIdempotent(t *testing.T) {
	res := loadFixture(t)
	first := ResolveAssessments(res.Data, DefaultEditPermission, telemetry.NewRecorder())
	second := ResolveAssessments(res.Data, DefaultEditPermission, telemetry.NewRecorder())
	require.Empty(t, cmp.Diff(first, second))
}

func TestResolveLastWriteWins(t *testing.T) {
	record := func(id string) AssessmentRecord {
		return AssessmentRecord{Assessment: "CWF", ID: id, ModuleCode: "A1", ModuleID: "m", Permissions: []string{"Edit"}}
	}
	groups := []QualificationGroup{
		{FullName: "A1<br/>CET", Assessments: []AssessmentRecord{record("first")}},
		{FullName: "A1<br />CET", Assessments: []AssessmentRecord{record("second")}},
	}
	rec := telemetry.NewRecorder()
	lookup := ResolveAssessments(groups, DefaultEditPermission, rec)
	require.Equal(t, "second", lookup[Key{Module: "A1", Assessment: "CWF"}][qt("CET")].AssessmentID)
	require.Len(t, rec.Reports(telemetry.KindWarning, report_resolve_duplicate), 1)
}

func TestLookupFind(t *testing.T) {
	lookup := ResolveAssessments(loadFixture(t).Data, DefaultEditPermission, telemetry.NewRecorder())

	ids, err := lookup.Find("A0001F", "CA1", sql.NullString{})
	require.NoError(t, err)
	require.Equal(t, AssessmentIDs{ModuleID: "233f1b7f", AssessmentID: "b4a602fe"}, ids)

	ids, err = lookup.Find("A1159C", "CWF (Make-up)", sql.NullString{})
	require.NoError(t, err)
	require.Equal(t, "9f1a2b3c", ids.AssessmentID)

	_, err = lookup.Find("A1159C", "CWF", sql.NullString{})
	require.ErrorIs(t, err, ErrAmbiguousAssessment)

	ids, err = lookup.Find("A1159C", "CWF", qt("PET (AY2023 Term 2)"))
	require.NoError(t, err)
	require.Equal(t, "ea159962", ids.AssessmentID)

	_, err = lookup.Find("A1159C", "CWF", qt("FT (AY2023 Term 2)"))
	require.ErrorIs(t, err, ErrQualificationTypeNotFound)

	_, err = lookup.Find("A1159C", "CW1", sql.NullString{})
	require.ErrorIs(t, err, ErrAssessmentNotFound)
	require.Contains(t, err.Error(), "did you mean")

	_, err = lookup.Find("A9999Z", "CWF", qt("CET (AY2023 Term 2)"))
	require.ErrorIs(t, err, ErrAssessmentNotFound)
}
