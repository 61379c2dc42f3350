// SPDX-License-Identifier: MPL-2.0

package gen

import (
	"bytes"
	"strings"
	"testing"

	"mkelvis-cli/internal/directive"
	"mkelvis-cli/internal/option"
)

func mustBuild(t *testing.T, in option.Input) *option.Graph {
	t.Helper()
	g, err := option.Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func minimalInput() option.Input {
	return option.Input{
		Name:             "example",
		BaseURL:          "example.com",
		SearchURL:        "example.com/search?q=",
		AppendSearchArgs: true,
		NumTabs:          1,
	}
}

// richInput exercises every section of the template at once.
func richInput() option.Input {
	in := minimalInput()
	in.SearchURL = "example.com/search?"
	in.QueryParameter = "q"
	in.EnableCompletions = true
	in.UseResultsOption = true
	in.Variables = []directive.VarDirective{
		directive.Bool{Name: "safe", Default: "yes"},
		directive.Enum{Name: "sort", Default: "rel", Values: []string{"rel", "date"}},
		directive.List{Name: "tags", Type: directive.ElemEnum, Defaults: []string{"a"}, Values: []string{"a", "b"}},
		directive.Anything{Name: "site", Default: ""},
	}
	in.Flags = []directive.Flag{{Name: "newest", Target: "sort", Value: "date"}}
	in.Aliases = []directive.Alias{{Name: "s", Target: "sort", TargetType: "enum"}}
	in.Mappings = []directive.Mapping{{Variable: "sort", Parameter: "order", URLEncode: true}}
	in.ListMappings = []directive.Mapping{{Variable: "tags", Parameter: "tag", URLEncode: true}}
	in.Inlines = []directive.Inline{{Variable: "site", Keyword: "site"}}
	in.Collapses = []directive.Collapse{{
		Variable: "sort",
		Branches: []directive.CollapseBranch{{Patterns: []string{"rel"}, Replacement: "relevance"}},
	}}
	return in
}

func TestGenerateMinimal(t *testing.T) {
	out, err := Generate(mustBuild(t, minimalInput()))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	s := string(out)
	if !strings.HasPrefix(s, "#!/bin/sh\n# elvis: example\t-- Search example (example.com)\n") {
		t.Errorf("header wrong:\n%s", s[:80])
	}
	for _, want := range []string{
		`w3_browse_url "https://example.com"`,
		`w3_browse_url "https://example.com/search?q=${escaped_args}"`,
		"w3_config\nw3_parse_args \"$@\"",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %q", want)
		}
	}
	// A graph with no options gets no parse or completion hooks.
	for _, absent := range []string{"w3_parse_option_hook", "w3_complete_hook_opt", "Local options:"} {
		if strings.Contains(s, absent) {
			t.Errorf("unexpected %q in minimal elvis", absent)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a, err := Generate(mustBuild(t, richInput()))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate(mustBuild(t, richInput()))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("two renders of the same graph differ")
	}
}

func TestGenerateSectionOrder(t *testing.T) {
	out, err := Generate(mustBuild(t, richInput()))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	s := string(out)
	sections := []string{
		"w3_usage_hook",
		"w3_config_hook",
		"_mkelvis_enter_list",
		"w3_parse_option_hook",
		"w3_complete_hook_opt",
		"w3_parse_args",
		"_mkelvis_ok=no",
		"_mkelvis_collapse_sort",
		"_mkelvis_params=",
		"w3_browse_url",
	}
	last := -1
	for _, sec := range sections {
		idx := strings.Index(s, sec)
		if idx < 0 {
			t.Fatalf("section %q missing", sec)
		}
		if idx < last {
			t.Errorf("section %q out of order", sec)
		}
		last = idx
	}
}

func TestGenerateParseArms(t *testing.T) {
	out, err := Generate(mustBuild(t, richInput()))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	s := string(out)
	for _, want := range []string{
		`-safe=*) setoptyn SURFRAW_example_safe "$optarg" ;;`,
		`-sort=*|-s=*) setopt SURFRAW_example_sort "$optarg" ;;`,
		`-tags=*|-add-tags=*) _mkelvis_addlist SURFRAW_example_tags "$optarg" ;;`,
		`-remove-tags=*) _mkelvis_removelist SURFRAW_example_tags "$optarg" ;;`,
		`-clear-tags) _mkelvis_clearlist SURFRAW_example_tags ;;`,
		`-newest) setopt SURFRAW_example_sort date ;;`,
		`-results=*) setopt SURFRAW_example_results "$optarg" ;;`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("missing parse arm %q", want)
		}
	}
}

func TestGenerateConfigDefaults(t *testing.T) {
	out, err := Generate(mustBuild(t, richInput()))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	s := string(out)
	for _, want := range []string{
		"defyn SURFRAW_example_safe yes",
		"def SURFRAW_example_sort rel",
		"def SURFRAW_example_tags a",
		"def SURFRAW_example_site ''",
		"def SURFRAW_example_results $SURFRAW_results",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("missing config line %q", want)
		}
	}
}

func TestGenerateURLAssembly(t *testing.T) {
	out, err := Generate(mustBuild(t, richInput()))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	s := string(out)

	first := `_mkelvis_params="order=$(w3_url_of_arg "$SURFRAW_example_sort")"`
	second := `_mkelvis_params="${_mkelvis_params}&tag=${_mkelvis_list_0}"`
	third := `_mkelvis_params="${_mkelvis_params}&q=${escaped_args}"`
	iFirst, iSecond, iThird := strings.Index(s, first), strings.Index(s, second), strings.Index(s, third)
	if iFirst < 0 || iSecond < 0 || iThird < 0 {
		t.Fatalf("missing URL fragments: %d %d %d", iFirst, iSecond, iThird)
	}
	if !(iFirst < iSecond && iSecond < iThird) {
		t.Error("fragments out of order: mappings, list mappings, query parameter")
	}
	if !strings.Contains(s, `w3_browse_url "https://example.com/search?${_mkelvis_params}"`) {
		t.Error("final dispatch does not use the assembled parameters")
	}
}

func TestGenerateListContextBalance(t *testing.T) {
	out, err := Generate(mustBuild(t, richInput()))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	enter, exit := 0, 0
	for _, line := range strings.Split(string(out), "\n") {
		switch strings.TrimSpace(line) {
		case "_mkelvis_enter_list":
			enter++
		case "_mkelvis_exit_list":
			exit++
		}
	}
	if enter == 0 {
		t.Fatal("no list context entries emitted")
	}
	if enter != exit {
		t.Errorf("unbalanced list context: %d enters, %d exits", enter, exit)
	}
}

func TestGenerateFlagValueQuoting(t *testing.T) {
	in := minimalInput()
	in.Variables = []directive.VarDirective{directive.Anything{Name: "phrase", Default: ""}}
	in.Flags = []directive.Flag{{Name: "greet", Target: "phrase", Value: "hello world"}}
	out, err := Generate(mustBuild(t, in))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(string(out), `-greet) setopt SURFRAW_example_phrase "hello world" ;;`) {
		t.Error("whitespace flag value not double-quoted")
	}
}

func TestGenerateListFlag(t *testing.T) {
	in := minimalInput()
	in.EnableCompletions = true
	in.Variables = []directive.VarDirective{
		directive.List{Name: "tags", Type: directive.ElemEnum, Values: []string{"html", "css", "js"}},
	}
	in.Flags = []directive.Flag{{Name: "webdev", Target: "tags", Value: "html,css"}}
	out, err := Generate(mustBuild(t, in))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	s := string(out)

	// A flag on a list target keeps list semantics: it adds or removes its
	// values instead of overwriting whatever the user accumulated.
	for _, want := range []string{
		`-add-webdev) _mkelvis_addlist SURFRAW_example_tags html; _mkelvis_addlist SURFRAW_example_tags css ;;`,
		`-remove-webdev) _mkelvis_removelist SURFRAW_example_tags html; _mkelvis_removelist SURFRAW_example_tags css ;;`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("missing parse arm %q", want)
		}
	}
	if strings.Contains(s, "-webdev) setopt") {
		t.Error("list flag emitted as an assignment")
	}

	// Usage shows both spellings and completion offers them.
	usage := s[strings.Index(s, "Local options:"):strings.Index(s, "w3_global_usage")]
	if !strings.Contains(usage, "-add-webdev") || !strings.Contains(usage, "-remove-webdev") {
		t.Errorf("usage lacks the add/remove flag forms:\n%s", usage)
	}
	if !strings.Contains(s, "-add-webdev -remove-webdev") {
		t.Error("completion words lack the add/remove flag forms")
	}
}

func TestGenerateUsageHelp(t *testing.T) {
	out, err := Generate(mustBuild(t, richInput()))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	s := string(out)

	// List options advertise their triplet of spellings.
	for _, want := range []string{"-add-tags=TAGS", "-clear-tags", "-remove-tags=TAGS"} {
		if !strings.Contains(s, want) {
			t.Errorf("usage lacks %q", want)
		}
	}

	// Enum values line up under the metavar of the header above them.
	head := "-sort=SORT, -s=SORT"
	pad := strings.Repeat(" ", strings.LastIndex(head, "=")+1)
	for _, v := range []string{"rel", "date"} {
		if !strings.Contains(s, "\n  "+pad+v+"\n") {
			t.Errorf("enum value %q not aligned under the metavar", v)
		}
	}
}

func TestGenerateCollapse(t *testing.T) {
	in := minimalInput()
	in.Variables = []directive.VarDirective{directive.Anything{Name: "sort", Default: ""}}
	in.Collapses = []directive.Collapse{{
		Variable: "sort",
		Branches: []directive.CollapseBranch{
			{Patterns: []string{"a*b", "c"}, Replacement: "X"},
			{Patterns: []string{"c"}, Replacement: "Y"},
		},
	}}
	out, err := Generate(mustBuild(t, in))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, `a\*b|c) printf '%s\n' "X" ;;`) {
		t.Error("glob metacharacters in collapse patterns not escaped")
	}
	// Branch order is declaration order, so the overlapping second branch
	// stays behind the first.
	if strings.Index(s, `"X"`) > strings.Index(s, `"Y"`) {
		t.Error("collapse branches reordered")
	}
	if !strings.Contains(s, `SURFRAW_example_sort=$(_mkelvis_collapse_sort "$SURFRAW_example_sort")`) {
		t.Error("collapse not applied to its variable")
	}
}

func TestGenerateListCollapseRebuilds(t *testing.T) {
	in := minimalInput()
	in.Variables = []directive.VarDirective{
		directive.List{Name: "tags", Type: directive.ElemAnything},
	}
	in.Collapses = []directive.Collapse{{
		Variable: "tags",
		Branches: []directive.CollapseBranch{{Patterns: []string{"old"}, Replacement: "new"}},
	}}
	out, err := Generate(mustBuild(t, in))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "_mkelvis_addlist _mkelvis_rebuilt") {
		t.Error("list collapse does not rebuild the list")
	}
	if !strings.Contains(s, "SURFRAW_example_tags=$_mkelvis_rebuilt") {
		t.Error("rebuilt list not assigned back")
	}
}

func TestGenerateInlines(t *testing.T) {
	in := minimalInput()
	in.Variables = []directive.VarDirective{
		directive.Anything{Name: "site", Default: ""},
		directive.List{Name: "tags", Type: directive.ElemAnything},
	}
	in.Inlines = []directive.Inline{{Variable: "site", Keyword: "site"}}
	in.ListInlines = []directive.Inline{{Variable: "tags", Keyword: "tag"}}
	out, err := Generate(mustBuild(t, in))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "_mkelvis_inline ()") {
		t.Error("inline helper not emitted")
	}
	if !strings.Contains(s, `w3_args="$w3_args $(_mkelvis_inline site "$SURFRAW_example_site")"`) {
		t.Error("scalar inline missing")
	}
	if !strings.Contains(s, `w3_args="$w3_args $(_mkelvis_inline tag "$_mkelvis_item")"`) {
		t.Error("list inline missing")
	}
}

func TestGenerateCompletionToggle(t *testing.T) {
	in := richInput()
	in.EnableCompletions = false
	out, err := Generate(mustBuild(t, in))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if strings.Contains(string(out), "w3_complete_hook_opt") {
		t.Error("completion hook emitted despite being disabled")
	}

	in.EnableCompletions = true
	out, err = Generate(mustBuild(t, in))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "w3_complete_hook_opt") {
		t.Fatal("completion hook missing")
	}
	if !strings.Contains(s, `-sort=*|-s=*) echo "rel date"`) {
		t.Error("enum completion arm missing")
	}
}

func TestGenerateEnumValidation(t *testing.T) {
	out, err := Generate(mustBuild(t, richInput()))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "for _mkelvis_value in rel date; do") {
		t.Error("scalar enum check missing")
	}
	if !strings.Contains(s, "for _mkelvis_item in $SURFRAW_example_tags; do") {
		t.Error("list enum check missing")
	}
	if !strings.Contains(s, `err "option 'sort' must be one of: rel, date`) {
		t.Error("enum violation message missing")
	}
}

func TestGenerateNumTabs(t *testing.T) {
	in := minimalInput()
	in.NumTabs = 3
	out, err := Generate(mustBuild(t, in))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(string(out), "# elvis: example\t\t\t-- ") {
		t.Error("banner does not carry three tabs")
	}
}

func TestGenerateNoAppendArgs(t *testing.T) {
	in := minimalInput()
	in.AppendSearchArgs = false
	in.SearchURL = "example.com/fixed"
	out, err := Generate(mustBuild(t, in))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	s := string(out)
	if strings.Contains(s, "escaped_args") {
		t.Error("search args still referenced with appending disabled")
	}
	if !strings.Contains(s, `w3_browse_url "https://example.com/fixed"`) {
		t.Error("fixed search URL dispatch missing")
	}
}
