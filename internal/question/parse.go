package question

import (
	"alfred/internal/components/assert"
	"alfred/internal/components/telemetry"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

const (
	report_parse_orphan_choice = "parse.orphan-choice"
	report_parse_number        = "parse.number"
)

// Column headers of the question sheet.
const (
	ColumnTitle             = "Title"
	ColumnQuestion          = "Question"
	ColumnScore             = "Score"
	ColumnAnswer            = "Ans"
	ColumnEstimatedTime     = "Est.time (min)"
	ColumnAdvanced          = "A marks"
	ColumnCompetent         = "C marks"
	ColumnProficient        = "P marks"
	ColumnAdvancedLegacy    = "A"
	ColumnCompetentLegacy   = "C"
	ColumnProficientLegacy  = "P"
	ColumnModule            = "Module Code"
	ColumnAssessment        = "Assessment Type"
	ColumnQualificationType = "Qualification Type"
)

var ErrMissingColumn = errors.New("missing column")

type rowKind int

const (
	rowNotQuestion rowKind = iota
	rowQuestion
	rowChoice
)

func (k rowKind) String() string {
	switch k {
	case rowQuestion:
		return "QUESTION"
	case rowChoice:
		return "CHOICE"
	default:
		return "NOT_QUESTION"
	}
}

// columns holds the index of every column the parser reads, -1 when the sheet does not have it.
type columns struct {
	title      int
	question   int
	score      int
	answer     int
	estTime    int
	advanced   int
	competent  int
	proficient int
	module     int
	assessment int
	qtype      int
}

func resolveColumns(t Table) (columns, error) {
	required := func(name string) (int, error) {
		i, ok := t.Column(name)
		if !ok {
			return -1, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
		return i, nil
	}
	optional := func(names ...string) int {
		for _, name := range names {
			if i, ok := t.Column(name); ok {
				return i
			}
		}
		return -1
	}

	var cols columns
	var err error
	if cols.title, err = required(ColumnTitle); err != nil {
		return cols, err
	}
	if cols.question, err = required(ColumnQuestion); err != nil {
		return cols, err
	}
	if cols.score, err = required(ColumnScore); err != nil {
		return cols, err
	}
	if cols.answer, err = required(ColumnAnswer); err != nil {
		return cols, err
	}
	cols.estTime = optional(ColumnEstimatedTime)
	cols.advanced = optional(ColumnAdvanced, ColumnAdvancedLegacy)
	cols.competent = optional(ColumnCompetent, ColumnCompetentLegacy)
	cols.proficient = optional(ColumnProficient, ColumnProficientLegacy)
	cols.module = optional(ColumnModule)
	cols.assessment = optional(ColumnAssessment)
	cols.qtype = optional(ColumnQualificationType)
	return cols, nil
}

func classify(row []string, cols columns) rowKind {
	if cell(row, cols.question) == "" {
		return rowNotQuestion
	}
	if cell(row, cols.score) == "" {
		return rowChoice
	}
	return rowQuestion
}

// sticky is a column whose blank cells take the last value a question row gave it.
type sticky struct {
	col  int
	last sql.NullString
}

func (s sticky) next(row []string) (sticky, sql.NullString) {
	if s.col < 0 {
		return s, sql.NullString{}
	}
	if v := cell(row, s.col); v != "" {
		s.last = sql.NullString{String: v, Valid: true}
	}
	return s, s.last
}

// parseState is the accumulator folded over the rows of a sheet.
type parseState struct {
	bank QuestionBank
	// index into bank.Questions, -1 when there is no question to attach options to
	current int

	module     sticky
	assessment sticky
	qtype      sticky
}

type parser struct {
	cols columns
	tel  telemetry.API
}

// Parse builds a question bank out of a sheet.
//
// A row with text in "Question" and a "Score" starts a question, a row with text in
// "Question" but no "Score" is an option of the current question (its "Title" is the
// option label) and a row without "Question" text ends the current question.
// Options that do not follow a question are dropped.
func Parse(t Table, tel telemetry.API) (QuestionBank, error) {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("question", tel)

	cols, err := resolveColumns(t)
	if err != nil {
		return QuestionBank{}, err
	}
	p := parser{cols: cols, tel: tel}

	state := parseState{
		current:    -1,
		module:     sticky{col: cols.module},
		assessment: sticky{col: cols.assessment},
		qtype:      sticky{col: cols.qtype},
	}
	for i, row := range t.Rows {
		// +2 for the header row and 1-based numbering, same as the sheet
		state = p.consume(state, i+2, row)
	}
	return state.bank, nil
}

func (p parser) consume(state parseState, line int, row []string) parseState {
	kind := classify(row, p.cols)
	p.tel.ReportDebug("row", line, kind.String())

	switch kind {
	case rowQuestion:
		q := Question{
			Title:                cell(row, p.cols.title),
			Content:              cell(row, p.cols.question),
			Score:                p.number(row, p.cols.score, line),
			Answer:               cell(row, p.cols.answer),
			EstimatedTimeMinutes: int(p.number(row, p.cols.estTime, line)),
			Competency: Competency{
				Advanced:   p.number(row, p.cols.advanced, line),
				Competent:  p.number(row, p.cols.competent, line),
				Proficient: p.number(row, p.cols.proficient, line),
			},
		}
		state.module, q.Module = state.module.next(row)
		state.assessment, q.Assessment = state.assessment.next(row)
		state.qtype, q.QualificationType = state.qtype.next(row)

		state.bank.Questions = append(state.bank.Questions, q)
		state.current = len(state.bank.Questions) - 1
	case rowChoice:
		if state.current < 0 {
			p.tel.ReportWarning(
				report_parse_orphan_choice,
				fmt.Errorf("row %d: option %q has no question before it", line, cell(row, p.cols.title)),
			)
			return state
		}
		state.bank.Questions[state.current].setOption(
			cell(row, p.cols.title),
			cell(row, p.cols.question),
		)
	default:
		state.current = -1
	}
	return state
}

// number reads a numeric cell, missing columns and blank or unreadable cells are 0.
func (p parser) number(row []string, col int, line int) float64 {
	text := cell(row, col)
	if text == "" {
		return 0
	}
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		p.tel.ReportWarning(report_parse_number, fmt.Errorf("row %d: %w", line, err))
		return 0
	}
	return n
}
