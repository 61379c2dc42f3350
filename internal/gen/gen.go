// SPDX-License-Identifier: MPL-2.0

// Package gen renders a validated option graph into a POSIX shell elvis.
// Rendering is deterministic: the same graph always produces byte-identical
// output. Every rendered artifact is parsed back with a POSIX shell parser
// before it is returned, so a generation bug surfaces as a compile error
// rather than as a broken script on disk.
package gen

import (
	"bytes"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"mvdan.cc/sh/v3/syntax"

	"mkelvis-cli/internal/escape"
	"mkelvis-cli/internal/option"
)

//go:embed elvis.sh.tmpl
var elvisTemplate string

var tmpl = template.Must(template.New("elvis").Parse(elvisTemplate))

type (
	scriptData struct {
		Name        string
		Tabs        string
		Description string
		BaseURL     string
		SearchURL   string

		UsageLines  []string
		ConfigLines []string
		HasLists    bool
		HasInlines  bool
		ParseArms   []parseArm
		Completion  *completionData

		EnumChecks     []enumCheck
		ListEnumChecks []enumCheck
		Collapses      []collapseData
		InlineCalls    []inlineCall
		ListJoins      []listJoin
		FragmentLines  []string
		AppendArgs     bool
	}

	parseArm struct {
		Pattern string
		Action  string
	}

	completionData struct {
		EnumArms []completionArm
		Words    string
	}

	completionArm struct {
		Pattern string
		Values  string
	}

	enumCheck struct {
		Variable      string
		OptName       string
		ValueWords    string
		ValuesDisplay string
	}

	collapseData struct {
		Name     string
		Variable string
		IsList   bool
		Branches []collapseBranch
	}

	collapseBranch struct {
		Pattern     string
		Replacement string
	}

	inlineCall struct {
		Keyword  string
		Variable string
		IsList   bool
	}

	listJoin struct {
		TempVar  string
		Variable string
		ItemExpr string
	}
)

// Generate renders g into a complete elvis script and verifies the result
// parses as POSIX shell.
func Generate(g *option.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newScriptData(g)); err != nil {
		return nil, fmt.Errorf("rendering elvis %q: %w", g.Name, err)
	}
	parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX))
	if _, err := parser.Parse(bytes.NewReader(buf.Bytes()), g.Name); err != nil {
		return nil, fmt.Errorf("generated elvis %q is not valid POSIX shell: %w", g.Name, err)
	}
	return buf.Bytes(), nil
}

func newScriptData(g *option.Graph) *scriptData {
	d := &scriptData{
		Name:        g.Name,
		Tabs:        strings.Repeat("\t", g.NumTabs),
		Description: g.Description,
		BaseURL:     g.BaseURL,
		SearchURL:   g.SearchURL,
		AppendArgs:  g.AppendSearchArgs,
	}

	d.UsageLines = usageLines(g)
	d.ConfigLines = configLines(g)
	d.ParseArms = parseArms(g)
	d.HasInlines = len(g.Inlines)+len(g.ListInlines) > 0
	d.HasLists = needsListHelpers(g)
	if g.EnableCompletions && g.AnyOptions() {
		d.Completion = completion(g)
	}

	for _, o := range g.Enums {
		d.EnumChecks = append(d.EnumChecks, newEnumCheck(g, o))
	}
	for _, o := range g.Lists {
		if o.IsEnumList() {
			d.ListEnumChecks = append(d.ListEnumChecks, newEnumCheck(g, o))
		}
	}

	for _, c := range g.Collapses {
		cd := collapseData{
			Name:     c.Target.Name,
			Variable: g.Variable(c.Target.Name),
			IsList:   c.Target.Kind == option.KindList,
		}
		for _, b := range c.Branches {
			pats := make([]string, len(b.Patterns))
			for i, p := range b.Patterns {
				pats[i] = escape.CasePattern(p)
			}
			cd.Branches = append(cd.Branches, collapseBranch{
				Pattern:     strings.Join(pats, "|"),
				Replacement: b.Replacement,
			})
		}
		d.Collapses = append(d.Collapses, cd)
	}

	for _, i := range g.Inlines {
		d.InlineCalls = append(d.InlineCalls, inlineCall{
			Keyword:  i.Keyword,
			Variable: g.Variable(i.Target.Name),
		})
	}
	for _, i := range g.ListInlines {
		d.InlineCalls = append(d.InlineCalls, inlineCall{
			Keyword:  i.Keyword,
			Variable: g.Variable(i.Target.Name),
			IsList:   true,
		})
	}

	d.ListJoins, d.FragmentLines = urlAssembly(g)
	return d
}

func needsListHelpers(g *option.Graph) bool {
	if g.HasLists() || len(g.ListMappings) > 0 || len(g.ListInlines) > 0 {
		return true
	}
	for _, c := range g.Collapses {
		if c.Target.Kind == option.KindList {
			return true
		}
	}
	return false
}

func newEnumCheck(g *option.Graph, o *option.VarOption) enumCheck {
	return enumCheck{
		Variable:      g.Variable(o.Name),
		OptName:       o.Name,
		ValueWords:    strings.Join(o.Values, " "),
		ValuesDisplay: strings.Join(o.Values, ", "),
	}
}

// optionNames returns an option's invocation names: the primary name first,
// then its aliases sorted.
func optionNames(name string, aliases []*option.AliasOption) []string {
	names := make([]string, 0, 1+len(aliases))
	for _, a := range aliases {
		names = append(names, a.Name)
	}
	sort.Strings(names)
	return append([]string{name}, names...)
}

// armPattern renders a case pattern for every name, e.g. "-s=*|-sort=*".
func armPattern(names []string, format string) string {
	pats := make([]string, len(names))
	for i, n := range names {
		pats[i] = fmt.Sprintf(format, n)
	}
	return strings.Join(pats, "|")
}

// word renders a literal as a shell word: bare when safe, double-quoted when
// it contains whitespace, '' when empty.
func word(s string) string {
	if s == "" {
		return "''"
	}
	return escape.ShellWord(s)
}

// optHeader renders one invocation-form line, e.g. "-add-tags=TAGS,
// -add-t=TAGS". An empty metavar renders bare names.
func optHeader(names []string, prefix, metavar string) string {
	forms := make([]string, len(names))
	for i, n := range names {
		forms[i] = "-" + prefix + n
		if metavar != "" {
			forms[i] += "=" + metavar
		}
	}
	return strings.Join(forms, ", ")
}

// enumValueLines indents values so they line up under the last metavar of
// head, one value per line.
func enumValueLines(head string, values []string) []string {
	pad := strings.Repeat(" ", strings.LastIndex(head, "=")+1)
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = pad + v
	}
	return out
}

func usageLines(g *option.Graph) []string {
	// An entry is one option: its invocation forms (list options get
	// add/clear/remove triplets), enum values aligned under the metavar, and
	// a description shown beside the first line only.
	type entry struct {
		heads []string
		desc  string
	}
	var entries []entry

	for _, o := range g.VariableOptions() {
		names := optionNames(o.Name, o.Aliases)
		var heads []string
		if o.Kind == option.KindList {
			heads = []string{
				optHeader(names, "add-", o.Metavar),
				optHeader(names, "clear-", ""),
				optHeader(names, "remove-", o.Metavar),
			}
		} else {
			heads = []string{optHeader(names, "", o.Metavar)}
		}
		if o.Kind == option.KindEnum || o.IsEnumList() {
			heads = append(heads, enumValueLines(heads[len(heads)-1], o.Values)...)
		}

		desc := o.Description
		switch {
		case o.Kind == option.KindList && len(o.Defaults) > 0:
			desc += " (default: " + strings.Join(o.Defaults, ",") + ")"
		case o.Kind != option.KindList && o.Default != "":
			desc += " (default: " + o.Default + ")"
		}
		entries = append(entries, entry{heads, desc})
	}

	for _, f := range g.Flags {
		names := optionNames(f.Name, f.Aliases)
		if f.Target.Kind == option.KindList {
			entries = append(entries, entry{
				heads: []string{
					optHeader(names, "add-", ""),
					optHeader(names, "remove-", ""),
				},
				desc: f.Description,
			})
		} else {
			entries = append(entries, entry{heads: []string{optHeader(names, "", "")}, desc: f.Description})
		}
	}

	width := 0
	for _, e := range entries {
		for _, h := range e.heads {
			if len(h) > width {
				width = len(h)
			}
		}
	}
	var lines []string
	for _, e := range entries {
		for i, h := range e.heads {
			if i == 0 {
				lines = append(lines, fmt.Sprintf("%-*s  %s", width, h, e.desc))
			} else {
				lines = append(lines, h)
			}
		}
	}
	return lines
}

func configLines(g *option.Graph) []string {
	var lines []string
	for _, o := range g.VariableOptions() {
		v := g.Variable(o.Name)
		switch o.Kind {
		case option.KindBool:
			lines = append(lines, fmt.Sprintf("defyn %s %s", v, o.Default))
		case option.KindList:
			lines = append(lines, fmt.Sprintf("def %s %s", v, word(strings.Join(o.Defaults, ","))))
		case option.KindSpecial:
			// Special defaults are runtime expansions and must not be quoted
			// away.
			lines = append(lines, fmt.Sprintf("def %s %s", v, o.Default))
		default:
			lines = append(lines, fmt.Sprintf("def %s %s", v, word(o.Default)))
		}
	}
	return lines
}

func parseArms(g *option.Graph) []parseArm {
	var arms []parseArm

	for _, o := range g.VariableOptions() {
		v := g.Variable(o.Name)
		names := optionNames(o.Name, o.Aliases)
		switch o.Kind {
		case option.KindBool:
			arms = append(arms, parseArm{
				Pattern: armPattern(names, "-%s=*"),
				Action:  fmt.Sprintf(`setoptyn %s "$optarg"`, v),
			})
		case option.KindList:
			var addPats []string
			for _, n := range names {
				addPats = append(addPats, "-"+n+"=*", "-add-"+n+"=*")
			}
			arms = append(arms,
				parseArm{strings.Join(addPats, "|"), fmt.Sprintf(`_mkelvis_addlist %s "$optarg"`, v)},
				parseArm{armPattern(names, "-remove-%s=*"), fmt.Sprintf(`_mkelvis_removelist %s "$optarg"`, v)},
				parseArm{armPattern(names, "-clear-%s"), "_mkelvis_clearlist " + v},
			)
		default:
			arms = append(arms, parseArm{
				Pattern: armPattern(names, "-%s=*"),
				Action:  fmt.Sprintf(`setopt %s "$optarg"`, v),
			})
		}
	}

	for _, f := range g.Flags {
		v := g.Variable(f.Target.Name)
		names := optionNames(f.Name, f.Aliases)
		switch f.Target.Kind {
		case option.KindBool:
			arms = append(arms, parseArm{armPattern(names, "-%s"), fmt.Sprintf("setoptyn %s %s", v, f.Value)})
		case option.KindList:
			// Flags on list targets keep list semantics: they add or remove
			// their values rather than overwrite the list.
			adds := make([]string, len(f.ListValues))
			removes := make([]string, len(f.ListValues))
			for i, val := range f.ListValues {
				adds[i] = fmt.Sprintf("_mkelvis_addlist %s %s", v, word(val))
				removes[i] = fmt.Sprintf("_mkelvis_removelist %s %s", v, word(val))
			}
			arms = append(arms,
				parseArm{armPattern(names, "-add-%s"), strings.Join(adds, "; ")},
				parseArm{armPattern(names, "-remove-%s"), strings.Join(removes, "; ")},
			)
		default:
			arms = append(arms, parseArm{armPattern(names, "-%s"), fmt.Sprintf("setopt %s %s", v, word(f.Value))})
		}
	}
	return arms
}

func completion(g *option.Graph) *completionData {
	c := &completionData{}
	var words []string

	for _, o := range g.VariableOptions() {
		names := optionNames(o.Name, o.Aliases)
		for _, n := range names {
			words = append(words, "-"+n+"=")
		}
		if o.Kind == option.KindList {
			words = append(words,
				"-add-"+o.Name+"=", "-remove-"+o.Name+"=", "-clear-"+o.Name)
		}

		switch {
		case o.Kind == option.KindBool:
			c.EnumArms = append(c.EnumArms, completionArm{armPattern(names, "-%s=*"), "yes no"})
		case o.Kind == option.KindEnum:
			c.EnumArms = append(c.EnumArms, completionArm{armPattern(names, "-%s=*"), strings.Join(o.Values, " ")})
		case o.IsEnumList():
			var pats []string
			for _, n := range names {
				pats = append(pats, "-"+n+"=*", "-add-"+n+"=*", "-remove-"+n+"=*")
			}
			c.EnumArms = append(c.EnumArms, completionArm{strings.Join(pats, "|"), strings.Join(o.Values, " ")})
		}
	}

	for _, f := range g.Flags {
		for _, n := range optionNames(f.Name, f.Aliases) {
			if f.Target.Kind == option.KindList {
				words = append(words, "-add-"+n, "-remove-"+n)
			} else {
				words = append(words, "-"+n)
			}
		}
	}

	c.Words = strings.Join(words, " ")
	return c
}

// urlAssembly plans the search URL construction: one pre-join loop per list
// mapping and one appended fragment per mapping, in declaration order, with
// the query parameter last.
func urlAssembly(g *option.Graph) ([]listJoin, []string) {
	var joins []listJoin
	var lines []string

	// Parameter keys are user-supplied directive text emitted verbatim into
	// the artifact; encode them here so the key side never needs the runtime
	// helper.
	appendFragment := func(param, expr string) {
		param = escape.URLEncode(param)
		if len(lines) == 0 {
			lines = append(lines, fmt.Sprintf(`_mkelvis_params="%s=%s"`, param, expr))
			return
		}
		lines = append(lines, fmt.Sprintf(`_mkelvis_params="${_mkelvis_params}&%s=%s"`, param, expr))
	}

	for _, m := range g.Mappings {
		v := g.Variable(m.Target.Name)
		if m.URLEncode {
			appendFragment(m.Parameter, fmt.Sprintf(`$(w3_url_of_arg "$%s")`, v))
		} else {
			appendFragment(m.Parameter, fmt.Sprintf("${%s}", v))
		}
	}

	for i, m := range g.ListMappings {
		j := listJoin{
			TempVar:  fmt.Sprintf("_mkelvis_list_%d", i),
			Variable: g.Variable(m.Target.Name),
			ItemExpr: "$_mkelvis_item",
		}
		if m.URLEncode {
			j.ItemExpr = `$(w3_url_of_arg "$_mkelvis_item")`
		}
		joins = append(joins, j)
		appendFragment(m.Parameter, fmt.Sprintf("${%s}", j.TempVar))
	}

	if g.AppendSearchArgs && g.QueryParameter != "" {
		appendFragment(g.QueryParameter, "${escaped_args}")
	}
	return joins, lines
}
