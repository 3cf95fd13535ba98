package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/routegraph/pkg/pipeline"
)

// buildOpts holds the flags of the build command.
type buildOpts struct {
	domain   string
	token    string
	apiURL   string // comma-separated upstream hosts
	formats  string
	output   string // output file path (stdout if empty)
	entry    string
	pick     bool
	cacheURL string
	cacheTTL time.Duration
	detailed bool
	clusters bool
	rankDir  string
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the call routing graph of a domain",
		Long: `Build the call routing graph of a PBX domain.

Every public phone number of the domain is followed through users, answer
rules, auto attendants and call queues until the call ends.

Examples:
  routegraph build --domain acme                        # Cytoscape JSON on stdout
  routegraph build --domain acme -f json,svg -o acme    # acme.json and acme.svg
  routegraph build --domain acme --entry 15551230001    # one phone number
  routegraph build --domain acme --pick -f dot          # choose the number interactively`,
		Args: cobra.NoArgs,
		PreRun: func(cmd *cobra.Command, _ []string) {
			s := c.conf()
			if !cmd.Flags().Changed("cache") {
				opts.cacheURL = s.CacheURL
			}
			if !cmd.Flags().Changed("cache-ttl") {
				opts.cacheTTL = s.CacheTTL
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runBuild(cmd, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.domain, "domain", "", "PBX domain to crawl (required)")
	cmd.Flags().StringVar(&opts.token, "token", "", "API bearer token (default from API_TOKEN)")
	cmd.Flags().StringVar(&opts.apiURL, "api-url", "", "upstream API hosts, comma-separated (default from API_URL)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output formats: json, dot, svg (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&opts.entry, "entry", "", "build only this phone number")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose the phone number interactively")
	cmd.Flags().StringVar(&opts.cacheURL, "cache", "", `response cache: "" (file), "none", file://dir or redis://host`)
	cmd.Flags().DurationVar(&opts.cacheTTL, "cache-ttl", 0, "response cache lifetime")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include node details in DOT and SVG labels")
	cmd.Flags().BoolVar(&opts.clusters, "clusters", false, "group DOT and SVG nodes by parent")
	cmd.Flags().StringVar(&opts.rankDir, "rankdir", "LR", "DOT rank direction (LR, TB)")
	_ = cmd.MarkFlagRequired("domain")

	return cmd
}

func (c *CLI) runBuild(cmd *cobra.Command, opts *buildOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	formats := parseFormats(opts.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.cacheURL, opts.cacheTTL)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		Domain:     opts.domain,
		Token:      c.token(opts.token),
		APIURLs:    c.apiURLs(opts.apiURL),
		EntryPoint: opts.entry,
		Formats:    formats,
		Indent:     opts.output != "" || len(formats) > 1,
		Detailed:   opts.detailed,
		Clusters:   opts.clusters,
		RankDir:    opts.rankDir,
		Logger:     logger,
	}

	if opts.pick {
		number, err := c.pickEntry(ctx, runner, popts)
		if err != nil || number == "" {
			return err
		}
		popts.EntryPoint = number
	}

	toStdout := opts.output == "" && len(formats) == 1
	prog := newProgress(logger)

	var spinner *Spinner
	if !toStdout {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Building %s...", opts.domain))
		spinner.Start()
	}
	result, err := runner.Execute(ctx, popts)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built %s: %d elements, %d upstream calls",
		opts.domain, len(result.Graph.Elements), result.Calls.Total))

	if toStdout {
		_, err := cmd.OutOrStdout().Write(result.Artifacts[formats[0]])
		return err
	}

	st := result.Graph.Stats
	printSuccess("Built routing graph for %s", StyleHighlight.Render(opts.domain))
	printStats(st.Nodes, st.Edges, result.Calls.Total)
	if st.Failures > 0 {
		printWarning("%d lookups failed; affected branches are incomplete", st.Failures)
	}

	base := basePath(opts.output, opts.domain)
	for _, format := range formats {
		path := base + "." + format
		if len(formats) == 1 && opts.output != "" {
			path = opts.output
		}
		if err := writeArtifact(path, result.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

// pickEntry lists the domain's phone numbers and lets the user choose one.
// An empty number means the user quit without choosing.
func (c *CLI) pickEntry(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (string, error) {
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Listing phone numbers of %s...", opts.Domain))
	spinner.Start()
	entries, err := runner.ListEntries(ctx, opts)
	spinner.Stop()
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		printWarning("No phone numbers found in %s", opts.Domain)
		return "", nil
	}

	final, err := tea.NewProgram(NewEntryListModel(entries), tea.WithContext(ctx)).Run()
	if err != nil {
		return "", err
	}
	m, ok := final.(EntryListModel)
	if !ok || m.Selected == nil {
		printDetail("No selection made")
		return "", nil
	}
	return m.Selected.Number, nil
}

// basePath strips a known format extension from output, or derives the
// base from the domain when output is empty.
func basePath(output, domain string) string {
	if output == "" {
		return domain
	}
	ext := filepath.Ext(output)
	switch strings.TrimPrefix(ext, ".") {
	case pipeline.FormatJSON, pipeline.FormatDOT, pipeline.FormatSVG:
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
