// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"mkelvis-cli/internal/config"
	"mkelvis-cli/internal/directive"
	"mkelvis-cli/internal/gen"
	"mkelvis-cli/internal/issue"
	"mkelvis-cli/internal/option"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// genOptions collects the raw directive strings and elvis-level settings of
// one `mkelvis gen` invocation. Directive strings are kept unparsed here;
// buildGenInput turns them into typed records.
type genOptions struct {
	yesNos    []string
	enums     []string
	anythings []string
	lists     []string
	flags     []string
	members   []string // deprecated spelling of flags
	aliases   []string

	mappings     []string
	listMappings []string
	inlines      []string
	listInlines  []string
	collapses    []string
	metavars     []string
	describes    []string

	useResultsOption  bool
	useLanguageOption bool

	queryParameter string
	noAppendArgs   bool

	description   string
	insecure      bool
	numTabs       int
	noCompletions bool
	output        string
}

var (
	genOpts genOptions

	genCmd = &cobra.Command{
		Use:   "gen <name> <base_url> <search_url>",
		Short: "Compile option directives into an elvis",
		Long: `Compile option directives into an elvis.

The base URL is shown in the elvis description and opened when no search
terms are given. The search URL is what search terms are appended to. Both
may omit their scheme; https is assumed unless --insecure is given.

Directive fields are separated by ':' and list items by ','. There is no
escaping, so values may not contain either character.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(genOpts, args[0], args[1], args[2], loadedConfig())
		},
	}
)

func init() {
	f := genCmd.Flags()

	// Option-declaring directives. StringArray, not StringSlice: commas are
	// directive syntax and must reach the parser intact.
	f.StringArrayVarP(&genOpts.yesNos, "yes-no", "Y", nil, "declare a yes/no option (NAME:DEFAULT)")
	f.StringArrayVarP(&genOpts.enums, "enum", "E", nil, "declare an option restricted to a value set (NAME:DEFAULT:V1,V2,...)")
	f.StringArrayVarP(&genOpts.anythings, "anything", "A", nil, "declare an unchecked option (NAME:DEFAULT)")
	f.StringArrayVar(&genOpts.lists, "list", nil, "declare a repeatable list option (NAME:TYPE:DEF1,...[:VALUES])")
	f.StringArrayVarP(&genOpts.flags, "flag", "F", nil, "declare an alias to a value of another option (NAME:TARGET:VALUE)")
	f.StringArrayVarP(&genOpts.members, "member", "M", nil, "declare an alias to a value of another option (NAME:TARGET:VALUE)")
	f.StringArrayVar(&genOpts.aliases, "alias", nil, "declare an alias to another option (NAME:TARGET:TARGET_TYPE)")
	_ = f.MarkDeprecated("member", "use --flag instead")

	// Behavior directives.
	f.StringArrayVar(&genOpts.mappings, "map", nil, "map a variable to a URL parameter (VAR:PARAM[:URL_ENCODE])")
	f.StringArrayVar(&genOpts.listMappings, "list-map", nil, "map a list variable's values to repeated URL parameters (VAR:PARAM[:URL_ENCODE])")
	f.StringArrayVar(&genOpts.inlines, "inline", nil, "map a variable to a keyword in the search query (VAR:KEYWORD)")
	f.StringArrayVar(&genOpts.listInlines, "list-inline", nil, "map a list variable's values to repeated keywords (VAR:KEYWORD)")
	f.StringArrayVar(&genOpts.collapses, "collapse", nil, "rewrite groups of values to a single value (VAR:V1,V2,RESULT:...)")
	f.StringArrayVar(&genOpts.metavars, "metavar", nil, "override the metavar shown in help output (VAR:METAVAR)")
	f.StringArrayVar(&genOpts.describes, "describe", nil, "override the description shown in help output (VAR:DESCRIPTION)")

	f.BoolVar(&genOpts.useResultsOption, "use-results-option", false, "define a 'results' variable and option")
	f.BoolVar(&genOpts.useLanguageOption, "use-language-option", false, "define a 'language' variable and option")

	f.StringVarP(&genOpts.queryParameter, "query-parameter", "Q", "", "URL parameter carrying the search terms; needed with --map")
	f.BoolVar(&genOpts.noAppendArgs, "no-append-args", false, "don't append search terms to the URL")
	genCmd.MarkFlagsMutuallyExclusive("query-parameter", "no-append-args")

	f.StringVar(&genOpts.description, "description", "", "elvis description, excluding the domain name in parentheses")
	f.BoolVar(&genOpts.insecure, "insecure", false, "use 'http' instead of 'https'")
	f.IntVar(&genOpts.numTabs, "num-tabs", 0, "tabs after the elvis name in 'sr -elvi' output (default from config)")
	f.BoolVar(&genOpts.noCompletions, "no-completions", false, "don't emit a shell completion hook")
	f.StringVarP(&genOpts.output, "output", "o", "", "output path ('-' for stdout; default: elvis name in output_dir or cwd)")
}

func runGen(opts genOptions, name, baseURL, searchURL string, cfg *config.Config) error {
	in, err := buildGenInput(opts, name, baseURL, searchURL, cfg)
	if err != nil {
		renderIssue(issue.DirectiveSyntaxId)
		return exitErr(ExitUsage, err)
	}

	log.Debug("directives parsed",
		"variables", len(in.Variables),
		"flags", len(in.Flags),
		"aliases", len(in.Aliases))

	graph, err := option.Build(in)
	if err != nil {
		renderIssue(compileIssueId(err))
		return exitErr(ExitUsage, err)
	}

	script, err := gen.Generate(graph)
	if err != nil {
		return exitErr(ExitUsage, fmt.Errorf("generate elvis %q: %w", name, err))
	}

	return writeArtifact(resolveOutputPath(opts.output, name, cfg), script)
}

// buildGenInput parses every directive string into its typed record and
// assembles the builder input. The first malformed directive aborts.
func buildGenInput(opts genOptions, name, baseURL, searchURL string, cfg *config.Config) (option.Input, error) {
	in := option.Input{
		Name:        name,
		BaseURL:     baseURL,
		SearchURL:   searchURL,
		Description: opts.description,
		Scheme:      elvisScheme(opts.insecure, cfg),

		QueryParameter:    opts.queryParameter,
		AppendSearchArgs:  !opts.noAppendArgs,
		EnableCompletions: cfg.EnableCompletions && !opts.noCompletions,
		NumTabs:           opts.numTabs,

		UseResultsOption:  opts.useResultsOption,
		UseLanguageOption: opts.useLanguageOption,
	}
	if in.NumTabs == 0 {
		in.NumTabs = cfg.NumTabs
	}

	for _, arg := range opts.yesNos {
		d, err := directive.ParseBool(arg)
		if err != nil {
			return option.Input{}, err
		}
		in.Variables = append(in.Variables, d)
	}
	for _, arg := range opts.enums {
		d, err := directive.ParseEnum(arg)
		if err != nil {
			return option.Input{}, err
		}
		in.Variables = append(in.Variables, d)
	}
	for _, arg := range opts.anythings {
		d, err := directive.ParseAnything(arg)
		if err != nil {
			return option.Input{}, err
		}
		in.Variables = append(in.Variables, d)
	}
	for _, arg := range opts.lists {
		d, err := directive.ParseList(arg)
		if err != nil {
			return option.Input{}, err
		}
		in.Variables = append(in.Variables, d)
	}

	for _, arg := range append(append([]string{}, opts.flags...), opts.members...) {
		d, err := directive.ParseFlag(arg)
		if err != nil {
			return option.Input{}, err
		}
		in.Flags = append(in.Flags, d)
	}
	for _, arg := range opts.aliases {
		d, err := directive.ParseAlias(arg)
		if err != nil {
			return option.Input{}, err
		}
		in.Aliases = append(in.Aliases, d)
	}

	for _, arg := range opts.mappings {
		d, err := directive.ParseMapping(arg)
		if err != nil {
			return option.Input{}, err
		}
		in.Mappings = append(in.Mappings, d)
	}
	for _, arg := range opts.listMappings {
		d, err := directive.ParseMapping(arg)
		if err != nil {
			return option.Input{}, err
		}
		in.ListMappings = append(in.ListMappings, d)
	}
	for _, arg := range opts.inlines {
		d, err := directive.ParseInline(arg)
		if err != nil {
			return option.Input{}, err
		}
		in.Inlines = append(in.Inlines, d)
	}
	for _, arg := range opts.listInlines {
		d, err := directive.ParseInline(arg)
		if err != nil {
			return option.Input{}, err
		}
		in.ListInlines = append(in.ListInlines, d)
	}
	for _, arg := range opts.collapses {
		d, err := directive.ParseCollapse(arg)
		if err != nil {
			return option.Input{}, err
		}
		in.Collapses = append(in.Collapses, d)
	}
	for _, arg := range opts.metavars {
		d, err := directive.ParseMetavar(arg)
		if err != nil {
			return option.Input{}, err
		}
		in.Metavars = append(in.Metavars, d)
	}
	for _, arg := range opts.describes {
		d, err := directive.ParseDescribe(arg)
		if err != nil {
			return option.Input{}, err
		}
		in.Describes = append(in.Describes, d)
	}

	return in, nil
}

// elvisScheme resolves the scheme for URLs that do not carry their own.
func elvisScheme(insecure bool, cfg *config.Config) string {
	if insecure {
		return string(config.SchemeHTTP)
	}
	return string(cfg.DefaultScheme)
}

// compileIssueId picks the issue card matching a graph build failure.
func compileIssueId(err error) issue.Id {
	switch {
	case errors.Is(err, option.ErrMissingQueryParameter):
		return issue.MissingQueryParameterId
	case errors.Is(err, directive.ErrMalformed):
		return issue.DirectiveSyntaxId
	default:
		return issue.OptionConflictId
	}
}
