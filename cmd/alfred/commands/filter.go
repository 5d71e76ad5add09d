package commands

import (
	"alfred/internal/platforms/mysa"
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(filterCmd)
}

// mysaLookup logs into MySA and resolves every assessment the user can edit.
func mysaLookup(ctx context.Context, g *globals) (mysa.Client, mysa.Lookup, error) {
	cfg := g.config.MySA
	session, err := login(ctx, g, mysa.NewFlow(cfg.BaseUrl, cfg.LoginPath), nil)
	if err != nil {
		return mysa.Client{}, nil, err
	}
	httpClient, err := newHttpClient(g, "mysa", cfg.BaseUrl, cfg.RequestsPerSecond, session)
	if err != nil {
		return mysa.Client{}, nil, err
	}
	client := mysa.NewClient(httpClient, mysa.ClientOptions{
		PageLimit: cfg.PageLimit,
		MaxPages:  cfg.MaxPages,
	}, g.tel)

	groups, err := client.AssessmentFilter(ctx)
	if err != nil {
		return mysa.Client{}, nil, fmt.Errorf("fetch assessments: %w", err)
	}
	return client, mysa.ResolveAssessments(groups, cfg.EditPermission, g.tel), nil
}

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Lists the MySA assessments questions can be uploaded to.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g := getGlobals(cmd.Context())
		_, lookup, err := mysaLookup(cmd.Context(), g)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Module", "Assessment", "Qualification type", "Module ID", "Assessment ID"})
		rows := 0
		for _, key := range lookup.Keys() {
			entries := lookup[key]
			qtypes := make([]sql.NullString, 0, len(entries))
			for qtype := range entries {
				qtypes = append(qtypes, qtype)
			}
			sort.Slice(qtypes, func(i, j int) bool {
				if qtypes[i].Valid != qtypes[j].Valid {
					return !qtypes[i].Valid
				}
				return qtypes[i].String < qtypes[j].String
			})

			for _, qtype := range qtypes {
				ids := entries[qtype]
				t.AppendRow(table.Row{key.Module, key.Assessment, nullable(qtype), ids.ModuleID, ids.AssessmentID})
				rows++
			}
		}
		t.AppendFooter(table.Row{fmt.Sprintf("%d assessments", len(lookup)), "", fmt.Sprintf("%d entries", rows), "", ""})
		t.Render()
		return nil
	},
}
