package mysa

import (
	"alfred/internal/question"
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// Payload is the body of the create question request.
type Payload struct {
	Type             int      `json:"type"`
	Title            string   `json:"title"`
	Comment          string   `json:"comment"`
	TopicList        []string `json:"topicList"`
	Topics           []string `json:"topics"`
	LearningOutcomes string   `json:"learningOutcomes"`
	EstimatedTime    int      `json:"estimatedTime"`
	ProficiencyLevel string   `json:"proficiencyLevel"`
	HasDependency    bool     `json:"hasDependency"`
	Dependencies     []string `json:"dependencies"`
	UseTos           bool     `json:"useTos"`
	Score            int      `json:"score"`
	Materials        []string `json:"materials"`
	DisplayObj       *string  `json:"displayObj"`
	AssessmentID     string   `json:"assessmentId"`
	ModuleCode       string   `json:"moduleCode"`
	TosItemID        *string  `json:"tosItemId"`
	BankType         int      `json:"bankType"`
	QuestionGroups   []string `json:"questionGroups"`
	// Content and MarkingScheme are json documents encoded as strings.
	Content       string `json:"content"`
	MarkingScheme string `json:"markingScheme"`
	Status        int    `json:"status"`
}

type DifficultyScore struct {
	DisplayName string  `json:"displayName"`
	Score       float64 `json:"score"`
}

type ContentOption struct {
	Content string `json:"content"`
	ID      string `json:"id"`
}

type PayloadContent struct {
	AllowRandom      bool              `json:"allowRandom"`
	DifficultyScores []DifficultyScore `json:"difficultyScores"`
	DisplayStructure int               `json:"displayStructure"`
	Options          []ContentOption   `json:"options"`
	Question         string            `json:"question"`
}

type AnswerRef struct {
	ID string `json:"id"`
}

type MarkingScheme struct {
	ScoreType         int         `json:"scoreType"`
	CorrectAnswers    []AnswerRef `json:"correctAnswers"`
	MarkingSchemeText string      `json:"markingSchemeText"`
}

const spanDefaultStyle = `{&quot;fontFamily&quot;:&quot;Arial&quot;,&quot;fontSize&quot;:&quot;12pt&quot;}`

// RenderQuestion wraps the question stem in the span the MySA editor produces.
func RenderQuestion(text string) string {
	return fmt.Sprintf(
		`<span data-default-style="%s" style="font-family: Arial; font-size: 12pt;">%s</span>`,
		spanDefaultStyle, html.EscapeString(text),
	)
}

// RenderOption wraps an option in the span the MySA editor produces.
func RenderOption(text string) string {
	return fmt.Sprintf(
		`<span data-default-style="%s" style="font-family: Arial; font-size:12pt;">%s</span>`,
		spanDefaultStyle, html.EscapeString(text),
	)
}

func choiceID(index int) string {
	return fmt.Sprintf("choice_%d", index)
}

// competencies lists the nonzero competency levels, always in
// Advanced, Competent, Proficient order.
func competencies(c question.Competency) []DifficultyScore {
	var out []DifficultyScore
	if c.Advanced != 0 {
		out = append(out, DifficultyScore{DisplayName: "Advanced", Score: c.Advanced})
	}
	if c.Competent != 0 {
		out = append(out, DifficultyScore{DisplayName: "Competent", Score: c.Competent})
	}
	if c.Proficient != 0 {
		out = append(out, DifficultyScore{DisplayName: "Proficient", Score: c.Proficient})
	}
	return out
}

// NewPayload builds the create question request of a question for the given assessment.
func NewPayload(q question.Question, module string, ids AssessmentIDs) (Payload, error) {
	difficulty := competencies(q.Competency)
	levels := make([]string, len(difficulty))
	for i, d := range difficulty {
		levels[i] = d.DisplayName
	}

	content := PayloadContent{
		AllowRandom:      true,
		DifficultyScores: difficulty,
		DisplayStructure: 1,
		Options:          make([]ContentOption, len(q.Options)),
		Question:         RenderQuestion(q.Content),
	}
	if content.DifficultyScores == nil {
		content.DifficultyScores = []DifficultyScore{}
	}
	for i, option := range q.Options {
		content.Options[i] = ContentOption{
			Content: RenderOption(option.Text),
			ID:      choiceID(i),
		}
	}

	scheme := MarkingScheme{CorrectAnswers: []AnswerRef{}}
	if answer := q.AnswerIndex(); answer >= 0 {
		scheme.CorrectAnswers = append(scheme.CorrectAnswers, AnswerRef{ID: choiceID(answer)})
	}

	encodedContent, err := json.Marshal(content)
	if err != nil {
		return Payload{}, err
	}
	encodedScheme, err := json.Marshal(scheme)
	if err != nil {
		return Payload{}, err
	}

	return Payload{
		Title:            q.Title,
		Topics:           []string{},
		EstimatedTime:    q.EstimatedTimeMinutes,
		ProficiencyLevel: strings.Join(levels, ";"),
		Dependencies:     []string{},
		Score:            int(q.Score),
		Materials:        []string{},
		AssessmentID:     ids.AssessmentID,
		ModuleCode:       module,
		QuestionGroups:   []string{},
		Content:          string(encodedContent),
		MarkingScheme:    string(encodedScheme),
		Status:           1,
	}, nil
}
