package commands

import (
	"alfred/internal/platforms/myleo"
	"alfred/internal/platforms/mysa"
	"alfred/internal/question"
	"alfred/internal/upload"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func init() {
	uploadCmd.AddCommand(uploadMyleoCmd)
	uploadCmd.AddCommand(uploadMysaCmd)
	rootCmd.AddCommand(uploadCmd)
}

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Uploads the questions of a sheet to a platform.",
}

// loadForUpload parses the sheet before anything is logged into, so a broken
// sheet fails fast.
func loadForUpload(cmd *cobra.Command, path string) (question.QuestionBank, error) {
	bank, err := readBank(cmd, path)
	if err != nil {
		return question.QuestionBank{}, err
	}
	if len(bank.Questions) == 0 {
		return question.QuestionBank{}, fmt.Errorf("%s: no questions found", path)
	}
	slog.Info("read questions", "file", path, "count", len(bank.Questions))
	return bank, nil
}

func printSummary(platform string, summary upload.Summary) {
	slog.Info(summary.String(), "platform", platform)

	t := newTable()
	t.AppendHeader(table.Row{"Platform", "Total", "Created", "Skipped", "Failed"})
	t.AppendRow(table.Row{platform, summary.Total, summary.Created, summary.Skipped, summary.Failed})
	t.Render()
}

var uploadMyleoCmd = &cobra.Command{
	Use:   "myleo <file>",
	Short: "Uploads questions to the MyLEO personal question bank.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		g := getGlobals(ctx)
		cfg := g.config.MyLEO

		bank, err := loadForUpload(cmd, args[0])
		if err != nil {
			return err
		}

		ctx, span := tracer.Start(ctx, "upload:myleo", trace.WithAttributes(
			attribute.Int("questions", len(bank.Questions)),
		))
		defer span.End()

		session, err := login(ctx, g, myleo.NewFlow(cfg.BaseUrl), func(username string) string {
			return myleo.NormalizeUsername(username, cfg.UsernameSuffix)
		})
		if err != nil {
			return err
		}
		httpClient, err := newHttpClient(g, "myleo", cfg.BaseUrl, cfg.RequestsPerSecond, session)
		if err != nil {
			return err
		}
		client := myleo.NewClient(httpClient, g.tel)

		loggedIn, err := client.LoggedIn(ctx)
		if err != nil {
			return err
		}
		if !loggedIn {
			return errors.New("myleo did not accept the browser session")
		}

		summary, err := myleo.NewUploader(client, g.tel).Run(ctx, bank)
		printSummary("MyLEO", summary)
		return err
	},
}

var uploadMysaCmd = &cobra.Command{
	Use:   "mysa <file>",
	Short: "Uploads questions to the MySA assessments named in the sheet.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		g := getGlobals(ctx)

		bank, err := loadForUpload(cmd, args[0])
		if err != nil {
			return err
		}

		ctx, span := tracer.Start(ctx, "upload:mysa", trace.WithAttributes(
			attribute.Int("questions", len(bank.Questions)),
		))
		defer span.End()

		client, lookup, err := mysaLookup(ctx, g)
		if err != nil {
			return err
		}
		slog.Info("resolved assessments", "count", len(lookup))

		summary, err := mysa.NewUploader(client, lookup, g.tel).Run(ctx, bank)
		printSummary("MySA", summary)
		return err
	},
}
