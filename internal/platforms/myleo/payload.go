package myleo

import (
	"alfred/internal/question"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

type SelectedType struct {
	Name      string `json:"name"`
	Value     int    `json:"value"`
	IsChecked bool   `json:"isChecked"`
}

var multipleChoice = SelectedType{Name: "Multiple Choice", Value: 0, IsChecked: true}

type ChoiceItem struct {
	ID        string `json:"id"`
	Answer    string `json:"answer"`
	IsCorrect bool   `json:"isCorrect"`
}

type PayloadContent struct {
	ResponseIdentifier string       `json:"responseIdentifier"`
	ScoreType          string       `json:"scoreType"`
	Shuffle            bool         `json:"shuffle"`
	DisplayType        int          `json:"displayType"`
	ChoiceItems        []ChoiceItem `json:"choiceItems"`
}

// Payload is the form posted to create a question in the personal question bank.
type Payload struct {
	Title            string
	Question         string
	Score            int
	SelectedType     SelectedType
	Content          PayloadContent
	ModuleCode       string
	LessonCode       string
	ModuleName       string
	LessonName       string
	Hint             string
	Explanation      string
	AddToBoth        bool
	AddToPersonal    bool
	AddToModule      bool
	IsDuplicate      bool
	Disabled         bool
	BankType         int
	ProficiencyLevel int
}

// NewPayload builds the create question form of a question. Choices are
// numbered from choice_1 in sheet order.
func NewPayload(q question.Question) Payload {
	answer := q.AnswerIndex()
	content := PayloadContent{
		ResponseIdentifier: "Response",
		ScoreType:          "0",
		DisplayType:        1,
		ChoiceItems:        make([]ChoiceItem, len(q.Options)),
	}
	for i, option := range q.Options {
		content.ChoiceItems[i] = ChoiceItem{
			ID:        fmt.Sprintf("choice_%d", i+1),
			Answer:    option.Text,
			IsCorrect: i == answer,
		}
	}

	return Payload{
		Title:         q.Title,
		Question:      q.Content,
		Score:         int(q.Score),
		SelectedType:  multipleChoice,
		Content:       content,
		ModuleCode:    "-1",
		LessonCode:    "-1",
		ModuleName:    "None",
		LessonName:    "None",
		AddToPersonal: true,
		BankType:      1,
	}
}

// Form encodes the payload the way the question bank page submits it,
// nested objects are sent as json strings.
func (p Payload) Form() (url.Values, error) {
	selectedType, err := json.Marshal(p.SelectedType)
	if err != nil {
		return nil, err
	}
	content, err := json.Marshal(p.Content)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("title", p.Title)
	form.Set("type", "0")
	form.Set("selectedType", string(selectedType))
	form.Set("disabled", strconv.FormatBool(p.Disabled))
	form.Set("question", p.Question)
	form.Set("score", strconv.Itoa(p.Score))
	form.Set("moduleCode", p.ModuleCode)
	form.Set("lessonCode", p.LessonCode)
	form.Set("hint", p.Hint)
	form.Set("explanation", p.Explanation)
	form.Set("content", string(content))
	form.Set("addToBoth", strconv.FormatBool(p.AddToBoth))
	form.Set("addToPersonal", strconv.FormatBool(p.AddToPersonal))
	form.Set("addToModule", strconv.FormatBool(p.AddToModule))
	form.Set("isDuplicate", strconv.FormatBool(p.IsDuplicate))
	form.Set("bankType", strconv.Itoa(p.BankType))
	form.Set("proficiencyLevel", strconv.Itoa(p.ProficiencyLevel))
	form.Set("moduleName", p.ModuleName)
	form.Set("lessonName", p.LessonName)
	return form, nil
}
