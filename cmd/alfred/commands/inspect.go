package commands

import (
	"alfred/internal/question"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func readBank(cmd *cobra.Command, path string) (question.QuestionBank, error) {
	t, err := question.ReadFile(path)
	if err != nil {
		return question.QuestionBank{}, err
	}
	return question.Parse(t, getGlobals(cmd.Context()).tel)
}

func nullable(s sql.NullString) string {
	if !s.Valid {
		return "-"
	}
	return s.String
}

func truncate(s string, n int) string {
	runes := []rune(strings.Join(strings.Fields(s), " "))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "..."
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Parses a question sheet and prints the questions found.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bank, err := readBank(cmd, args[0])
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"#", "Title", "Question", "Score", "Options", "Answer", "Module", "Assessment", "Qualification type", "Problem"})
		invalid := 0
		for i, q := range bank.Questions {
			problem := ""
			if err := q.Validate(); err != nil {
				problem = err.Error()
				invalid++
			}
			labels := make([]string, len(q.Options))
			for j, option := range q.Options {
				labels[j] = option.Label
			}
			t.AppendRow(table.Row{
				i + 1,
				q.Title,
				truncate(q.Content, 40),
				q.Score,
				strings.Join(labels, ","),
				q.Answer,
				nullable(q.Module),
				nullable(q.Assessment),
				nullable(q.QualificationType),
				problem,
			})
		}
		t.AppendFooter(table.Row{"", fmt.Sprintf("%d questions", len(bank.Questions)), "", "", "", "", "", "", "", fmt.Sprintf("%d invalid", invalid)})
		t.Render()
		return nil
	},
}
