// Package question holds the in-memory question bank built from a spreadsheet.
package question

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrNoOptions         = errors.New("question has no options")
	ErrAnswerNotAnOption = errors.New("answer is not one of the options")
)

// Competency holds the per-level marks of a question, any subset of them may be nonzero.
type Competency struct {
	Advanced   float64
	Competent  float64
	Proficient float64
}

type Option struct {
	Label string
	Text  string
}

// Question is a single multiple choice question.
type Question struct {
	Title                string
	Content              string
	Score                float64
	EstimatedTimeMinutes int
	Competency           Competency
	Answer               string
	// Options are in the order their rows appeared in the sheet.
	Options []Option

	// Module, Assessment and QualificationType are unset when the sheet does not
	// have the column, or when no question row has given it a value yet.
	Module            sql.NullString
	Assessment        sql.NullString
	QualificationType sql.NullString
}

// Option returns the text of the option with the given label.
func (q Question) Option(label string) (string, bool) {
	for _, o := range q.Options {
		if o.Label == label {
			return o.Text, true
		}
	}
	return "", false
}

// AnswerIndex is the position of the answer within Options, -1 if the answer
// is not an option.
func (q Question) AnswerIndex() int {
	for i, o := range q.Options {
		if o.Label == q.Answer {
			return i
		}
	}
	return -1
}

// setOption stores an option, a repeated label keeps its position and takes the new text.
func (q *Question) setOption(label, text string) {
	for i, o := range q.Options {
		if o.Label == label {
			q.Options[i].Text = text
			return
		}
	}
	q.Options = append(q.Options, Option{Label: label, Text: text})
}

// Validate checks that the question can be submitted.
func (q Question) Validate() error {
	if len(q.Options) == 0 {
		return fmt.Errorf("%q: %w", q.Title, ErrNoOptions)
	}
	if q.AnswerIndex() < 0 {
		return fmt.Errorf("%q: answer %q: %w", q.Title, q.Answer, ErrAnswerNotAnOption)
	}
	return nil
}

// QuestionBank is the ordered collection of questions in a sheet.
type QuestionBank struct {
	Questions []Question
}
