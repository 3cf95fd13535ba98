package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/routegraph/pkg/pipeline"
)

// entriesCommand creates the entries command, which lists the public phone
// numbers of a domain without crawling their routing.
func (c *CLI) entriesCommand() *cobra.Command {
	var domain, token, apiURL string

	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List the phone numbers of a domain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			runner, err := c.newRunner(ctx, "none", 0)
			if err != nil {
				return err
			}
			defer runner.Close()

			entries, err := runner.ListEntries(ctx, pipeline.Options{
				Domain:  domain,
				Token:   c.token(token),
				APIURLs: c.apiURLs(apiURL),
				Logger:  loggerFromContext(ctx),
			})
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				printWarning("No phone numbers found in %s", domain)
				return nil
			}

			rows := make([][]string, 0, len(entries))
			routed := 0
			for _, ep := range entries {
				rows = append(rows, entryRow(ep))
				if ep.Destination != "" {
					routed++
				}
			}
			t := entryTable(rows).
				Headers("Number", "Destination", "Application").
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == table.HeaderRow {
						return listHeaderStyle
					}
					if entries[row].Destination == "" {
						return listDimStyle
					}
					return lipgloss.NewStyle()
				})

			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			printDetail("%d numbers, %d routed", len(entries), routed)
			printNextStep("Build one number", fmt.Sprintf("%s build --domain %s --entry <number>", appName, domain))
			return nil
		},
	}

	cmd.Flags().StringVar(&domain, "domain", "", "PBX domain (required)")
	cmd.Flags().StringVar(&token, "token", "", "API bearer token (default from API_TOKEN)")
	cmd.Flags().StringVar(&apiURL, "api-url", "", "upstream API hosts, comma-separated (default from API_URL)")
	_ = cmd.MarkFlagRequired("domain")

	return cmd
}
