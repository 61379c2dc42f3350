// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"mkelvis-cli/internal/gen"
	"mkelvis-cli/internal/issue"
	"mkelvis-cli/internal/opensearch"
	"mkelvis-cli/internal/option"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	opensearchOpts struct {
		numTabs       int
		noCompletions bool
		output        string
	}

	opensearchCmd = &cobra.Command{
		Use:   "opensearch <url>",
		Short: "Generate an elvis from an OpenSearch description",
		Long: `Generate an elvis from an OpenSearch description.

The URL may point at the description document itself or at any HTML page
that links to one via <link type="application/opensearchdescription+xml">.
Recognized template parameters (searchTerms, count, language, startIndex,
startPage, inputEncoding, outputEncoding) become elvis options; optional
unknown parameters are dropped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpensearch(cmd, args[0])
		},
	}
)

func init() {
	f := opensearchCmd.Flags()
	f.IntVar(&opensearchOpts.numTabs, "num-tabs", 0, "tabs after the elvis name in 'sr -elvi' output (default from config)")
	f.BoolVar(&opensearchOpts.noCompletions, "no-completions", false, "don't emit a shell completion hook")
	f.StringVarP(&opensearchOpts.output, "output", "o", "", "output path ('-' for stdout; default: elvis name in output_dir or cwd)")
}

func runOpensearch(cmd *cobra.Command, rawURL string) error {
	cfg := loadedConfig()

	client := opensearch.NewClient(nil, cfg.UserAgent, log.Default())
	desc, err := client.Fetch(cmd.Context(), rawURL)
	if err != nil {
		renderIssue(issue.OpenSearchFetchFailedId)
		return exitErr(opensearchExitCode(err), fmt.Errorf("fetch OpenSearch description: %w", err))
	}

	resultsURL, err := desc.ResultsURL()
	if err != nil {
		renderIssue(issue.OpenSearchUnsupportedId)
		return exitErr(ExitData, err)
	}

	in, err := desc.ToInput(resultsURL)
	if err != nil {
		renderIssue(issue.OpenSearchUnsupportedId)
		return exitErr(ExitData, err)
	}

	if opensearchOpts.numTabs > 0 {
		in.NumTabs = opensearchOpts.numTabs
	} else {
		in.NumTabs = cfg.NumTabs
	}
	in.EnableCompletions = cfg.EnableCompletions && !opensearchOpts.noCompletions

	log.Debug("description imported",
		"name", in.Name,
		"variables", len(in.Variables),
		"mappings", len(in.Mappings))

	graph, err := option.Build(in)
	if err != nil {
		return exitErr(ExitData, fmt.Errorf("build options for %q: %w", in.Name, err))
	}
	script, err := gen.Generate(graph)
	if err != nil {
		return exitErr(ExitData, fmt.Errorf("generate elvis %q: %w", in.Name, err))
	}

	return writeArtifact(resolveOutputPath(opensearchOpts.output, in.Name, cfg), script)
}

// opensearchExitCode separates unusable documents (data errors) from
// transport failures (service unavailable).
func opensearchExitCode(err error) int {
	switch {
	case errors.Is(err, opensearch.ErrInvalidDescription),
		errors.Is(err, opensearch.ErrNoDescriptionLink),
		errors.Is(err, opensearch.ErrNoResultsURL),
		errors.Is(err, opensearch.ErrUnsupportedTemplate):
		return ExitData
	default:
		return ExitUnavailable
	}
}
