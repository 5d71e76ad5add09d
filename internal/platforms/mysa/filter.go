package mysa

import (
	"alfred/internal/components/assert"
	"alfred/internal/components/telemetry"
	"alfred/lib/textutil"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const report_resolve_duplicate = "resolve.duplicate"

// DefaultEditPermission is the permission an assessment must grant for questions
// to be added to it.
const DefaultEditPermission = "Edit"

const makeUpSuffix = " (Make-up)"

var (
	ErrAssessmentNotFound        = errors.New("assessment not found")
	ErrAmbiguousAssessment       = errors.New("assessment is offered under more than one qualification type")
	ErrQualificationTypeNotFound = errors.New("qualification type not found")
)

// FilterResponse is the body returned by the assessment filter endpoint.
type FilterResponse struct {
	Data  []QualificationGroup `json:"data"`
	Total int                  `json:"total"`
}

type QualificationGroup struct {
	// FullName looks like "A1159C - Main<br />CET (AY2023 Term 2)"
	FullName    string             `json:"qTypeFullName"`
	Assessments []AssessmentRecord `json:"assessments"`
}

type AssessmentRecord struct {
	Assessment  string   `json:"assessment"`
	ID          string   `json:"id"`
	ModuleCode  string   `json:"moduleCode"`
	ModuleID    string   `json:"moduleId"`
	IsMakeUp    bool     `json:"isMakeUp"`
	Permissions []string `json:"permissions"`
}

// Key identifies an assessment the way a question sheet refers to it.
type Key struct {
	Module     string
	Assessment string
}

func (k Key) String() string {
	return fmt.Sprintf("%s %s", k.Module, k.Assessment)
}

type AssessmentIDs struct {
	ModuleID     string
	AssessmentID string
}

// Lookup maps an assessment to its ids under every qualification type it is offered in.
// The unset qualification type is the key for groups whose name could not be split.
type Lookup map[Key]map[sql.NullString]AssessmentIDs

var lineBreakRegex = regexp.MustCompile(`(?i)<\s*br\s*/?\s*>`)

// SplitQualificationType extracts the qualification type out of a group's full name,
// the part after the line break. It is unset unless there is exactly one line break.
func SplitQualificationType(fullName string) sql.NullString {
	segments := lineBreakRegex.Split(fullName, -1)
	if len(segments) != 2 {
		return sql.NullString{}
	}
	return sql.NullString{String: segments[1], Valid: true}
}

func hasPermission(permissions []string, permission string) bool {
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// ResolveAssessments builds a fresh lookup table out of the assessment filter groups.
// Assessments without the edit permission are left out, make-up assessments are keyed
// as "<assessment> (Make-up)". If the same assessment and qualification type appear
// twice, the last one wins.
func ResolveAssessments(groups []QualificationGroup, editPermission string, tel telemetry.API) Lookup {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("mysa", tel)

	lookup := Lookup{}
	for _, group := range groups {
		qtype := SplitQualificationType(group.FullName)

		for _, record := range group.Assessments {
			if !hasPermission(record.Permissions, editPermission) {
				continue
			}
			name := record.Assessment
			if record.IsMakeUp {
				name += makeUpSuffix
			}
			key := Key{Module: record.ModuleCode, Assessment: name}
			ids := AssessmentIDs{ModuleID: record.ModuleID, AssessmentID: record.ID}

			entries, ok := lookup[key]
			if !ok {
				entries = map[sql.NullString]AssessmentIDs{}
				lookup[key] = entries
			}
			if previous, exists := entries[qtype]; exists && previous != ids {
				tel.ReportWarning(
					report_resolve_duplicate,
					key.String(),
					qtype.String,
					previous,
					ids,
				)
			}
			entries[qtype] = ids
		}
	}
	return lookup
}

// Find returns the ids of an assessment. When qtype is unset the assessment must be
// offered under exactly one qualification type.
func (l Lookup) Find(module, assessment string, qtype sql.NullString) (AssessmentIDs, error) {
	key := Key{Module: module, Assessment: assessment}
	entries := l[key]

	if !qtype.Valid {
		switch len(entries) {
		case 0:
			return AssessmentIDs{}, l.notFound(key)
		case 1:
			for _, ids := range entries {
				return ids, nil
			}
		}
		return AssessmentIDs{}, fmt.Errorf(
			"%s: %w, set the qualification type to one of: %s",
			key, ErrAmbiguousAssessment, strings.Join(qualificationTypes(entries), ", "),
		)
	}

	ids, ok := entries[qtype]
	if !ok {
		if len(entries) == 0 {
			return AssessmentIDs{}, l.notFound(key)
		}
		return AssessmentIDs{}, fmt.Errorf(
			"%s %q: %w, known qualification types: %s",
			key, qtype.String, ErrQualificationTypeNotFound, strings.Join(qualificationTypes(entries), ", "),
		)
	}
	return ids, nil
}

func (l Lookup) notFound(key Key) error {
	closest := textutil.Closest(key.String(), l.keyNames(), 3)
	if len(closest) == 0 {
		return fmt.Errorf("%s: %w", key, ErrAssessmentNotFound)
	}
	return fmt.Errorf("%s: %w (did you mean %s?)", key, ErrAssessmentNotFound, strings.Join(closest, ", "))
}

func (l Lookup) keyNames() []string {
	names := make([]string, 0, len(l))
	for _, k := range l.Keys() {
		names = append(names, k.String())
	}
	return names
}

// Keys returns every key sorted by module then assessment.
func (l Lookup) Keys() []Key {
	keys := make([]Key, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Module != keys[j].Module {
			return keys[i].Module < keys[j].Module
		}
		return keys[i].Assessment < keys[j].Assessment
	})
	return keys
}

func qualificationTypes(entries map[sql.NullString]AssessmentIDs) []string {
	var out []string
	for qtype := range entries {
		if !qtype.Valid {
			out = append(out, "<none>")
			continue
		}
		out = append(out, fmt.Sprintf("%q", qtype.String))
	}
	sort.Strings(out)
	return out
}
