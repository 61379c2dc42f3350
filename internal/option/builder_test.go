// SPDX-License-Identifier: MPL-2.0

package option

import (
	"errors"
	"testing"

	"mkelvis-cli/internal/directive"
)

// baseInput returns a minimal valid Input for one test to mutate.
func baseInput() Input {
	return Input{
		Name:             "example",
		BaseURL:          "example.com",
		SearchURL:        "example.com/search?q=",
		AppendSearchArgs: true,
		NumTabs:          1,
	}
}

func TestBuildMinimal(t *testing.T) {
	g, err := Build(baseInput())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.BaseURL != "https://example.com" {
		t.Errorf("base URL = %q, want https scheme prefixed", g.BaseURL)
	}
	if g.Description != "Search example (example.com)" {
		t.Errorf("description = %q", g.Description)
	}
	if g.AnyOptions() {
		t.Error("minimal graph should have no options")
	}
}

func TestBuildSchemeHandling(t *testing.T) {
	in := baseInput()
	in.BaseURL = "http://example.com"
	in.SearchURL = "example.com/search?q="
	g, err := Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.SearchURL != "http://example.com/search?q=" {
		t.Errorf("search URL should inherit the base scheme, got %q", g.SearchURL)
	}

	in.SearchURL = "https://example.com/search?q="
	_, err = Build(in)
	if !errors.Is(err, ErrSchemeMismatch) {
		t.Errorf("conflicting schemes: got %v, want ErrSchemeMismatch", err)
	}
}

func TestBuildRejectsBadElvisName(t *testing.T) {
	in := baseInput()
	in.Name = "no-dashes"
	if _, err := Build(in); !errors.Is(err, ErrInvalidElvisName) {
		t.Errorf("got %v, want ErrInvalidElvisName", err)
	}
}

func TestBuildBucketOrder(t *testing.T) {
	in := baseInput()
	// Declared deliberately out of bucket order.
	in.Variables = []directive.VarDirective{
		directive.Anything{Name: "query", Default: ""},
		directive.Bool{Name: "safe", Default: "yes"},
		directive.List{Name: "tags", Type: directive.ElemAnything},
		directive.Enum{Name: "sort", Default: "rel", Values: []string{"rel", "date"}},
	}
	in.UseResultsOption = true
	g, err := Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var names []string
	for _, o := range g.VariableOptions() {
		names = append(names, o.Name)
	}
	want := []string{"safe", "sort", "tags", "query", "results"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("bucket order = %v, want %v", names, want)
		}
	}
}

func TestBuildDuplicateNamespaces(t *testing.T) {
	in := baseInput()
	in.Variables = []directive.VarDirective{
		directive.Bool{Name: "safe", Default: "yes"},
		directive.Anything{Name: "safe", Default: ""},
	}
	var dup *DuplicateNameError
	_, err := Build(in)
	if !errors.As(err, &dup) || !dup.Variable {
		t.Fatalf("got %v, want variable DuplicateNameError", err)
	}

	// Same bare name across the two namespaces is fine.
	in = baseInput()
	in.Variables = []directive.VarDirective{
		directive.Enum{Name: "sort", Default: "rel", Values: []string{"rel", "date"}},
	}
	in.Flags = []directive.Flag{{Name: "sort", Target: "sort", Value: "date"}}
	if _, err := Build(in); err != nil {
		t.Fatalf("cross-namespace reuse rejected: %v", err)
	}

	// Flag and alias share one namespace.
	in.Aliases = []directive.Alias{{Name: "sort", Target: "sort", TargetType: "enum"}}
	if _, err := Build(in); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("flag/alias collision accepted: %v", err)
	}
}

func TestBuildForwardReference(t *testing.T) {
	in := baseInput()
	// The alias and flag come first in CLI order; variables are still
	// registered before resolution, so this must build.
	in.Aliases = []directive.Alias{{Name: "s", Target: "sort", TargetType: "enum"}}
	in.Flags = []directive.Flag{{Name: "newest", Target: "sort", Value: "date"}}
	in.Variables = []directive.VarDirective{
		directive.Enum{Name: "sort", Default: "rel", Values: []string{"rel", "date"}},
	}
	g, err := Build(in)
	if err != nil {
		t.Fatalf("forward reference rejected: %v", err)
	}
	if g.Aliases[0].TargetVar == nil || g.Aliases[0].TargetVar.Name != "sort" {
		t.Error("alias did not resolve to its variable")
	}
	if len(g.Enums[0].Flags) != 1 || len(g.Enums[0].Aliases) != 1 {
		t.Error("back references not attached to the target")
	}
}

func TestBuildUnresolvedReference(t *testing.T) {
	in := baseInput()
	in.Flags = []directive.Flag{{Name: "newest", Target: "sort", Value: "date"}}
	if _, err := Build(in); !errors.Is(err, ErrUnresolvedReference) {
		t.Errorf("got %v, want ErrUnresolvedReference", err)
	}

	in = baseInput()
	in.Mappings = []directive.Mapping{{Variable: "lang", Parameter: "hl", URLEncode: true}}
	in.QueryParameter = "q"
	if _, err := Build(in); !errors.Is(err, ErrUnresolvedReference) {
		t.Errorf("mapping: got %v, want ErrUnresolvedReference", err)
	}
}

func TestBuildAliasChain(t *testing.T) {
	in := baseInput()
	in.Variables = []directive.VarDirective{
		directive.Enum{Name: "sort", Default: "rel", Values: []string{"rel", "date"}},
	}
	in.Aliases = []directive.Alias{
		{Name: "s", Target: "sort", TargetType: "enum"},
		{Name: "x", Target: "s", TargetType: "flag"},
	}
	if _, err := Build(in); !errors.Is(err, ErrInvalidAliasChain) {
		t.Errorf("got %v, want ErrInvalidAliasChain", err)
	}
}

func TestBuildFlagValueValidation(t *testing.T) {
	tests := []struct {
		name string
		vars []directive.VarDirective
		flag directive.Flag
		ok   bool
	}{
		{
			"bool accepts yes",
			[]directive.VarDirective{directive.Bool{Name: "safe", Default: "no"}},
			directive.Flag{Name: "s", Target: "safe", Value: "yes"}, true,
		},
		{
			"bool rejects other words",
			[]directive.VarDirective{directive.Bool{Name: "safe", Default: "no"}},
			directive.Flag{Name: "s", Target: "safe", Value: "on"}, false,
		},
		{
			"enum flag value must be a member",
			[]directive.VarDirective{directive.Enum{Name: "sort", Default: "rel", Values: []string{"rel", "date"}}},
			directive.Flag{Name: "s", Target: "sort", Value: "votes"}, false,
		},
		{
			"anything accepts anything",
			[]directive.VarDirective{directive.Anything{Name: "q", Default: ""}},
			directive.Flag{Name: "s", Target: "q", Value: "x&y"}, true,
		},
		{
			"enum list flag values all members",
			[]directive.VarDirective{directive.List{Name: "tags", Type: directive.ElemEnum, Values: []string{"a", "b"}}},
			directive.Flag{Name: "ab", Target: "tags", Value: "a,b"}, true,
		},
		{
			"enum list flag rejects stray value",
			[]directive.VarDirective{directive.List{Name: "tags", Type: directive.ElemEnum, Values: []string{"a", "b"}}},
			directive.Flag{Name: "ab", Target: "tags", Value: "a,c"}, false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			in.Variables = tt.vars
			in.Flags = []directive.Flag{tt.flag}
			_, err := Build(in)
			if tt.ok && err != nil {
				t.Fatalf("Build: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidFlagValue) {
				t.Fatalf("got %v, want ErrInvalidFlagValue", err)
			}
		})
	}
}

func TestBuildResultsFlagRequiresInteger(t *testing.T) {
	in := baseInput()
	in.UseResultsOption = true
	in.Flags = []directive.Flag{{Name: "many", Target: "results", Value: "100"}}
	if _, err := Build(in); err != nil {
		t.Fatalf("integer flag rejected: %v", err)
	}
	in.Flags[0].Value = "lots"
	if _, err := Build(in); !errors.Is(err, ErrInvalidFlagValue) {
		t.Errorf("got %v, want ErrInvalidFlagValue", err)
	}
}

func TestBuildEnumDefaults(t *testing.T) {
	in := baseInput()
	in.Variables = []directive.VarDirective{
		directive.Enum{Name: "sort", Default: "votes", Values: []string{"rel", "date"}},
	}
	if _, err := Build(in); !errors.Is(err, ErrInvalidDefault) {
		t.Errorf("got %v, want ErrInvalidDefault", err)
	}

	in.Variables = []directive.VarDirective{
		directive.List{Name: "tags", Type: directive.ElemEnum, Defaults: []string{"a", "z"}, Values: []string{"a", "b"}},
	}
	if _, err := Build(in); !errors.Is(err, ErrInvalidDefault) {
		t.Errorf("list defaults: got %v, want ErrInvalidDefault", err)
	}
}

func TestBuildQueryParameterRule(t *testing.T) {
	in := baseInput()
	in.Variables = []directive.VarDirective{directive.Anything{Name: "lang", Default: "en"}}
	in.Mappings = []directive.Mapping{{Variable: "lang", Parameter: "hl", URLEncode: true}}

	if _, err := Build(in); !errors.Is(err, ErrMissingQueryParameter) {
		t.Errorf("got %v, want ErrMissingQueryParameter", err)
	}

	// Declaring the query parameter satisfies the rule.
	in.QueryParameter = "q"
	if _, err := Build(in); err != nil {
		t.Errorf("Build with query parameter: %v", err)
	}

	// So does explicitly opting out of appending search args.
	in.QueryParameter = ""
	in.AppendSearchArgs = false
	if _, err := Build(in); err != nil {
		t.Errorf("Build without appended args: %v", err)
	}
}

func TestBuildSpecialOptions(t *testing.T) {
	in := baseInput()
	in.UseResultsOption = true
	in.UseLanguageOption = true
	g, err := Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(g.Specials) != 2 {
		t.Fatalf("specials = %d, want 2", len(g.Specials))
	}
	if g.Specials[0].Default != "$SURFRAW_results" {
		t.Errorf("results default = %q", g.Specials[0].Default)
	}
	if g.Specials[1].Default != "${SURFRAW_lang:=en}" {
		t.Errorf("language default = %q", g.Specials[1].Default)
	}

	// A user variable may not shadow a requested special.
	in.Variables = []directive.VarDirective{directive.Anything{Name: "results", Default: ""}}
	if _, err := Build(in); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("got %v, want ErrDuplicateName", err)
	}
}

func TestBuildMetadataOverrides(t *testing.T) {
	in := baseInput()
	in.Variables = []directive.VarDirective{
		directive.Enum{Name: "sort", Default: "rel", Values: []string{"rel", "date"}},
	}
	in.Metavars = []directive.Metavar{{Variable: "sort", Metavar: "ORDER"}}
	in.Describes = []directive.Describe{{Variable: "sort", Description: "Sort order"}}
	g, err := Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.Enums[0].Metavar != "ORDER" || g.Enums[0].Description != "Sort order" {
		t.Errorf("overrides not applied: %+v", g.Enums[0])
	}
}

func TestVariableNamespacing(t *testing.T) {
	g := &Graph{Name: "example"}
	if got := g.Variable("sort"); got != "SURFRAW_example_sort" {
		t.Errorf("Variable = %q", got)
	}
}
