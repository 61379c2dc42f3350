// SPDX-License-Identifier: MPL-2.0

package option

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"mkelvis-cli/internal/directive"
)

// Input carries one compilation run's fully-parsed directives plus the
// elvis-level settings from the CLI. Declaration order is preserved in every
// slice; the builder relies on it for bucket-internal ordering and for
// first-match collapse semantics.
type Input struct {
	Name        string
	BaseURL     string
	SearchURL   string
	Description string
	// Scheme is used for URLs that do not carry their own ("https" unless
	// --insecure).
	Scheme string

	QueryParameter    string
	AppendSearchArgs  bool
	EnableCompletions bool
	NumTabs           int

	UseResultsOption  bool
	UseLanguageOption bool

	Variables []directive.VarDirective
	Flags     []directive.Flag
	Aliases   []directive.Alias

	Mappings     []directive.Mapping
	ListMappings []directive.Mapping
	Inlines      []directive.Inline
	ListInlines  []directive.Inline
	Collapses    []directive.Collapse
	Metavars     []directive.Metavar
	Describes    []directive.Describe
}

var (
	validElvisNameRE = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	urlSchemeRE      = regexp.MustCompile(`^([a-z][a-z0-9+.-]*)://`)
)

// builder carries the two keyed registries joined only at generation time:
// variable-creating options on one side, flags and aliases on the other.
// Bare names may repeat across the two, never within one.
type builder struct {
	graph *Graph

	vars    map[string]*VarOption
	nonvars map[string]Kind // flag and alias names
	flags   map[string]*FlagOption
}

// Build turns parsed directives into a validated Graph. It fails fast: the
// first violation found aborts the build, and no partial graph is ever
// returned. Variable-creating options are registered before any reference is
// resolved, so forward references (an alias declared before its target) are
// legal.
func Build(in Input) (*Graph, error) {
	if !validElvisNameRE.MatchString(in.Name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidElvisName, in.Name)
	}
	if in.NumTabs < 1 {
		return nil, fmt.Errorf("there must be at least one tab after the elvis name, got %d", in.NumTabs)
	}

	b := &builder{
		graph: &Graph{
			Name:              in.Name,
			QueryParameter:    in.QueryParameter,
			AppendSearchArgs:  in.AppendSearchArgs,
			EnableCompletions: in.EnableCompletions,
			NumTabs:           in.NumTabs,
		},
		vars:    make(map[string]*VarOption),
		nonvars: make(map[string]Kind),
		flags:   make(map[string]*FlagOption),
	}

	bare, err := b.resolveURLs(in)
	if err != nil {
		return nil, err
	}
	if in.Description == "" {
		b.graph.Description = fmt.Sprintf("Search %s (%s)", in.Name, bare)
	} else {
		b.graph.Description = fmt.Sprintf("%s (%s)", in.Description, bare)
	}

	if err := b.registerVariables(in); err != nil {
		return nil, err
	}
	if err := b.registerFlags(in.Flags); err != nil {
		return nil, err
	}
	if err := b.registerAliases(in.Aliases); err != nil {
		return nil, err
	}
	if err := b.applyMetadata(in); err != nil {
		return nil, err
	}
	if err := b.attachBehaviors(in); err != nil {
		return nil, err
	}

	if len(b.graph.Mappings)+len(b.graph.ListMappings) > 0 &&
		b.graph.QueryParameter == "" && b.graph.AppendSearchArgs {
		return nil, ErrMissingQueryParameter
	}

	return b.graph, nil
}

// resolveURLs normalizes the base and search URLs onto a single scheme and
// returns the scheme-less base URL for use in the description line.
func (b *builder) resolveURLs(in Input) (string, error) {
	baseScheme, baseRest := splitScheme(in.BaseURL)
	searchScheme, searchRest := splitScheme(in.SearchURL)
	if baseScheme != "" && searchScheme != "" && baseScheme != searchScheme {
		return "", &SchemeMismatchError{BaseScheme: baseScheme, SearchScheme: searchScheme}
	}

	scheme := in.Scheme
	if scheme == "" {
		scheme = "https"
	}
	if baseScheme != "" {
		scheme = baseScheme
	} else if searchScheme != "" {
		scheme = searchScheme
	}

	b.graph.BaseURL = scheme + "://" + baseRest
	b.graph.SearchURL = scheme + "://" + searchRest
	return baseRest, nil
}

func splitScheme(url string) (scheme, rest string) {
	m := urlSchemeRE.FindString(url)
	if m == "" {
		return "", url
	}
	return strings.TrimSuffix(m, "://"), url[len(m):]
}

// registerVariables is the first pass: every variable-creating option goes
// into the variable registry, duplicates rejected immediately.
func (b *builder) registerVariables(in Input) error {
	for _, d := range in.Variables {
		opt, err := newVarOption(d)
		if err != nil {
			return err
		}
		if err := b.addVariable(opt); err != nil {
			return err
		}
	}

	if in.UseResultsOption {
		if err := b.addVariable(&VarOption{
			Kind:        KindSpecial,
			Name:        "results",
			Default:     "$SURFRAW_results",
			Metavar:     "NUM",
			Description: "Number of search results returned",
		}); err != nil {
			return err
		}
	}
	if in.UseLanguageOption {
		// If SURFRAW_lang is empty or unset, assume English.
		if err := b.addVariable(&VarOption{
			Kind:        KindSpecial,
			Name:        "language",
			Default:     "${SURFRAW_lang:=en}",
			Metavar:     "ISOCODE",
			Description: "Two letter language code (resembles ISO country codes)",
		}); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) addVariable(opt *VarOption) error {
	if _, ok := b.vars[opt.Name]; ok {
		return &DuplicateNameError{Name: opt.Name, Variable: true}
	}
	b.vars[opt.Name] = opt
	switch opt.Kind {
	case KindBool:
		b.graph.Bools = append(b.graph.Bools, opt)
	case KindEnum:
		b.graph.Enums = append(b.graph.Enums, opt)
	case KindList:
		b.graph.Lists = append(b.graph.Lists, opt)
	case KindAnything:
		b.graph.Anythings = append(b.graph.Anythings, opt)
	case KindSpecial:
		b.graph.Specials = append(b.graph.Specials, opt)
	}
	return nil
}

// newVarOption lifts a parsed directive into the model, checking the
// variant-local invariants (enum defaults within values, enum list defaults
// a subset of values).
func newVarOption(d directive.VarDirective) (*VarOption, error) {
	switch d := d.(type) {
	case directive.Bool:
		return &VarOption{
			Kind:        KindBool,
			Name:        d.Name,
			Default:     d.Default,
			Metavar:     strings.ToUpper(d.Name),
			Description: fmt.Sprintf("A bool option for '%s'", d.Name),
		}, nil
	case directive.Enum:
		if !slices.Contains(d.Values, d.Default) {
			return nil, &InvalidDefaultError{Option: d.Name, Default: d.Default, Values: d.Values}
		}
		return &VarOption{
			Kind:        KindEnum,
			Name:        d.Name,
			Default:     d.Default,
			Values:      d.Values,
			Metavar:     strings.ToUpper(d.Name),
			Description: fmt.Sprintf("An enum option for '%s'", d.Name),
		}, nil
	case directive.Anything:
		return &VarOption{
			Kind:        KindAnything,
			Name:        d.Name,
			Default:     d.Default,
			Metavar:     strings.ToUpper(d.Name),
			Description: fmt.Sprintf("An unchecked option for '%s'", d.Name),
		}, nil
	case directive.List:
		if d.Type == directive.ElemEnum {
			for _, def := range d.Defaults {
				if !slices.Contains(d.Values, def) {
					return nil, &InvalidDefaultError{Option: d.Name, Default: def, Values: d.Values}
				}
			}
		}
		return &VarOption{
			Kind:        KindList,
			Name:        d.Name,
			ElemType:    d.Type,
			Defaults:    d.Defaults,
			Values:      d.Values,
			Metavar:     strings.ToUpper(d.Name),
			Description: fmt.Sprintf("A repeatable (cumulative) '%s' list option for '%s'", d.Type, d.Name),
		}, nil
	}
	return nil, fmt.Errorf("unknown variable directive %T", d)
}

// registerFlags is the second pass, part one: flags resolve against the
// variable registry and have their values checked against the target's
// variant.
func (b *builder) registerFlags(flags []directive.Flag) error {
	for _, f := range flags {
		target, ok := b.vars[f.Target]
		if !ok {
			return &UnresolvedReferenceError{
				Subject: fmt.Sprintf("flag option %q", f.Name),
				Target:  f.Target,
			}
		}
		opt := &FlagOption{Name: f.Name, Target: target, Value: f.Value}
		if err := checkFlagValue(opt); err != nil {
			return err
		}
		if target.Kind == KindList {
			opt.ListValues = strings.Split(f.Value, ",")
			opt.Description = fmt.Sprintf("An alias for the '%s' list option '%s' with the values '%s'",
				target.ElemType, target.Name, f.Value)
		} else {
			opt.Description = fmt.Sprintf("An alias for -%s=%s", target.Name, f.Value)
		}
		if err := b.addNonVariable(f.Name, KindFlag); err != nil {
			return err
		}
		b.flags[f.Name] = opt
		target.Flags = append(target.Flags, opt)
		b.graph.Flags = append(b.graph.Flags, opt)
	}
	return nil
}

// checkFlagValue validates a flag's literal against its resolved target.
// Anything targets (and the language special) accept everything.
func checkFlagValue(f *FlagOption) error {
	t := f.Target
	switch t.Kind {
	case KindBool:
		if f.Value != "yes" && f.Value != "no" {
			return &InvalidFlagValueError{Flag: f.Name, Reason: fmt.Sprintf("bool %q must be one of: no, yes", f.Value)}
		}
	case KindEnum:
		if !slices.Contains(t.Values, f.Value) {
			return &InvalidFlagValueError{
				Flag:   f.Name,
				Reason: fmt.Sprintf("%q is not within the values of enum '%s' (%s)", f.Value, t.Name, strings.Join(t.Values, ",")),
			}
		}
	case KindList:
		if t.ElemType != directive.ElemEnum {
			return nil
		}
		for _, v := range strings.Split(f.Value, ",") {
			if !slices.Contains(t.Values, v) {
				return &InvalidFlagValueError{
					Flag:   f.Name,
					Reason: fmt.Sprintf("%q is not within the values of enum list '%s' (%s)", v, t.Name, strings.Join(t.Values, ",")),
				}
			}
		}
	case KindSpecial:
		if t.Name == "results" {
			if _, err := strconv.Atoi(f.Value); err != nil {
				return &InvalidFlagValueError{Flag: f.Name, Reason: "value for the special 'results' option must be an integer"}
			}
		}
		// Too many ISO language codes to check the language option here.
	}
	return nil
}

// registerAliases is the second pass, part two. Alias targets live in either
// registry depending on the declared target type; a flag-typed alias whose
// name resolves only among other aliases is a rejected chain.
func (b *builder) registerAliases(aliases []directive.Alias) error {
	aliasNames := make(map[string]bool, len(aliases))
	for _, a := range aliases {
		aliasNames[a.Name] = true
	}

	for _, a := range aliases {
		opt := &AliasOption{Name: a.Name}
		if a.TargetType == "flag" {
			target, ok := b.flags[a.Target]
			if !ok {
				if aliasNames[a.Target] {
					return &InvalidAliasChainError{Alias: a.Name, Target: a.Target}
				}
				return &UnresolvedReferenceError{
					Subject: fmt.Sprintf("alias %q (target type flag)", a.Name),
					Target:  a.Target,
				}
			}
			opt.TargetFlag = target
			target.Aliases = append(target.Aliases, opt)
		} else {
			target, ok := b.vars[a.Target]
			if !ok || string(target.Kind) != a.TargetType {
				if aliasNames[a.Target] {
					return &InvalidAliasChainError{Alias: a.Name, Target: a.Target}
				}
				return &UnresolvedReferenceError{
					Subject: fmt.Sprintf("alias %q (target type %s)", a.Name, a.TargetType),
					Target:  a.Target,
				}
			}
			opt.TargetVar = target
			target.Aliases = append(target.Aliases, opt)
		}
		if err := b.addNonVariable(a.Name, KindAlias); err != nil {
			return err
		}
		b.graph.Aliases = append(b.graph.Aliases, opt)
	}
	return nil
}

func (b *builder) addNonVariable(name string, kind Kind) error {
	if _, ok := b.nonvars[name]; ok {
		return &DuplicateNameError{Name: name, Variable: false}
	}
	b.nonvars[name] = kind
	return nil
}

// applyMetadata is the third pass, part one: metavar and description
// overrides attach to variable options.
func (b *builder) applyMetadata(in Input) error {
	for _, m := range in.Metavars {
		opt, ok := b.vars[m.Variable]
		if !ok {
			return &UnresolvedReferenceError{
				Subject: fmt.Sprintf("metavar %q", m.Metavar),
				Target:  m.Variable,
			}
		}
		opt.Metavar = m.Metavar
	}
	for _, d := range in.Describes {
		opt, ok := b.vars[d.Variable]
		if !ok {
			return &UnresolvedReferenceError{
				Subject: "description",
				Target:  d.Variable,
			}
		}
		opt.Description = d.Description
	}
	return nil
}

// attachBehaviors is the third pass, part two: mappings, inlines, and
// collapses resolve their variable references. Collapse match patterns are
// not checked against enum value sets on purpose (see Collapse).
func (b *builder) attachBehaviors(in Input) error {
	resolve := func(subject, name string) (*VarOption, error) {
		opt, ok := b.vars[name]
		if !ok {
			return nil, &UnresolvedReferenceError{Subject: subject, Target: name}
		}
		return opt, nil
	}

	for _, m := range in.Mappings {
		target, err := resolve("URL parameter mapping", m.Variable)
		if err != nil {
			return err
		}
		b.graph.Mappings = append(b.graph.Mappings, &Mapping{Target: target, Parameter: m.Parameter, URLEncode: m.URLEncode})
	}
	for _, m := range in.ListMappings {
		target, err := resolve("list URL parameter mapping", m.Variable)
		if err != nil {
			return err
		}
		b.graph.ListMappings = append(b.graph.ListMappings, &Mapping{Target: target, Parameter: m.Parameter, URLEncode: m.URLEncode})
	}
	for _, i := range in.Inlines {
		target, err := resolve("inlining", i.Variable)
		if err != nil {
			return err
		}
		b.graph.Inlines = append(b.graph.Inlines, &Inline{Target: target, Keyword: i.Keyword})
	}
	for _, i := range in.ListInlines {
		target, err := resolve("list inlining", i.Variable)
		if err != nil {
			return err
		}
		b.graph.ListInlines = append(b.graph.ListInlines, &Inline{Target: target, Keyword: i.Keyword})
	}
	for _, c := range in.Collapses {
		target, err := resolve("collapse", c.Variable)
		if err != nil {
			return err
		}
		b.graph.Collapses = append(b.graph.Collapses, &Collapse{Target: target, Branches: c.Branches})
	}
	return nil
}
