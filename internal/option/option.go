// SPDX-License-Identifier: MPL-2.0

// Package option models the validated, cross-referenced option graph built
// from one compilation run's directives. The graph is built once by Build,
// is immutable afterwards, and is consumed exactly once by the generator.
package option

import (
	"errors"
	"fmt"
	"strings"

	"mkelvis-cli/internal/directive"
)

// Kind identifies an option variant. Variable-creating kinds produce a
// runtime variable in the generated elvis; flags and aliases do not.
type Kind string

const (
	KindBool     Kind = "bool"
	KindEnum     Kind = "enum"
	KindAnything Kind = "anything"
	KindSpecial  Kind = "special"
	KindList     Kind = "list"
	KindFlag     Kind = "flag"
	KindAlias    Kind = "alias"
)

// Sentinel errors for the compile-time taxonomy. Every typed error below
// wraps exactly one of these, so callers can classify with errors.Is().
var (
	// ErrDuplicateName is wrapped by DuplicateNameError.
	ErrDuplicateName = errors.New("duplicate name")
	// ErrUnresolvedReference is wrapped by UnresolvedReferenceError.
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrInvalidAliasChain is wrapped by InvalidAliasChainError.
	ErrInvalidAliasChain = errors.New("alias targets another alias")
	// ErrInvalidDefault is wrapped by InvalidDefaultError.
	ErrInvalidDefault = errors.New("invalid default value")
	// ErrInvalidFlagValue is wrapped by InvalidFlagValueError.
	ErrInvalidFlagValue = errors.New("invalid flag value")
	// ErrMissingQueryParameter is returned when mappings are declared but no
	// query parameter is available and search args would still be appended.
	ErrMissingQueryParameter = errors.New("mapping variables without a declared query parameter is forbidden")
	// ErrSchemeMismatch is wrapped by SchemeMismatchError.
	ErrSchemeMismatch = errors.New("the schemes of both URLs must be the same")
	// ErrInvalidElvisName is returned for elvis names that are not plain
	// alphanumeric words.
	ErrInvalidElvisName = errors.New("elvis names must be alphanumeric (similar to shell variables, digits allowed anywhere)")
)

type (
	// VarOption is a variable-creating option: bool, enum, anything, special,
	// or list. Exactly which fields are meaningful depends on Kind; the
	// builder guarantees consistency before a VarOption reaches the generator.
	VarOption struct {
		Kind        Kind
		Name        string
		Description string
		// Metavar is shown in local help; empty means none.
		Metavar string
		// Default is the scalar default (bool/enum/anything/special). For
		// specials it is a runtime expansion such as "$SURFRAW_results"
		// rather than a literal.
		Default string
		// Values is the allowed value set for enums and enum lists.
		Values []string
		// ElemType and Defaults are list-only.
		ElemType directive.ElemType
		Defaults []string

		// Flags and Aliases point back at this option, in declaration order.
		Flags   []*FlagOption
		Aliases []*AliasOption
	}

	// FlagOption is an alias-with-value: invoking it assigns (or, for list
	// targets, adds) a fixed value to its target variable.
	FlagOption struct {
		Name        string
		Target      *VarOption
		Value       string
		Description string
		// ListValues is Value comma-split when the target is a list.
		ListValues []string
		Aliases    []*AliasOption
	}

	// AliasOption is an alias-without-value. Exactly one of TargetVar and
	// TargetFlag is non-nil; alias chains are rejected during building.
	AliasOption struct {
		Name       string
		TargetVar  *VarOption
		TargetFlag *FlagOption
	}

	// Mapping binds a variable to a URL query parameter.
	Mapping struct {
		Target    *VarOption
		Parameter string
		URLEncode bool
	}

	// Inline binds a variable to a keyword token in the search query.
	Inline struct {
		Target  *VarOption
		Keyword string
	}

	// Collapse rewrites a variable through an ordered first-match table.
	// Match patterns are deliberately not checked against enum value sets:
	// the table operates on the raw value space, and permissive branches are
	// a documented escape hatch.
	Collapse struct {
		Target   *VarOption
		Branches []directive.CollapseBranch
	}

	// Graph is the complete, validated model for one elvis. Buckets hold
	// variable options partitioned by kind, preserving declaration order
	// within each bucket; generation always walks buckets in the fixed
	// bool, enum, list, anything, special order.
	Graph struct {
		Name        string
		Description string
		// BaseURL and SearchURL carry their scheme.
		BaseURL   string
		SearchURL string

		QueryParameter    string
		AppendSearchArgs  bool
		EnableCompletions bool
		NumTabs           int

		Bools     []*VarOption
		Enums     []*VarOption
		Lists     []*VarOption
		Anythings []*VarOption
		Specials  []*VarOption

		Flags   []*FlagOption
		Aliases []*AliasOption

		Mappings     []*Mapping
		ListMappings []*Mapping
		Inlines      []*Inline
		ListInlines  []*Inline
		Collapses    []*Collapse
	}
)

// VariableOptions returns every variable-creating option in the fixed bucket
// order (bool, enum, list, anything, special), declaration order within each
// bucket.
func (g *Graph) VariableOptions() []*VarOption {
	out := make([]*VarOption, 0,
		len(g.Bools)+len(g.Enums)+len(g.Lists)+len(g.Anythings)+len(g.Specials))
	out = append(out, g.Bools...)
	out = append(out, g.Enums...)
	out = append(out, g.Lists...)
	out = append(out, g.Anythings...)
	out = append(out, g.Specials...)
	return out
}

// AnyOptions reports whether any variable-creating option exists. Flags and
// aliases can only exist if this holds.
func (g *Graph) AnyOptions() bool {
	return len(g.Bools)+len(g.Enums)+len(g.Lists)+len(g.Anythings)+len(g.Specials) > 0
}

// HasLists reports whether the graph contains at least one list option,
// which decides whether the list-context runtime helpers are emitted.
func (g *Graph) HasLists() bool { return len(g.Lists) > 0 }

// Variable returns the namespaced runtime variable name for an option.
func (g *Graph) Variable(name string) string {
	return "SURFRAW_" + g.Name + "_" + name
}

// IsEnumList reports whether o is a list whose elements are enum-checked.
func (o *VarOption) IsEnumList() bool {
	return o.Kind == KindList && o.ElemType == directive.ElemEnum
}

// --- Typed errors ---

type (
	// DuplicateNameError reports a name collision within one of the two
	// namespaces (variable-creating options, or flags+aliases).
	DuplicateNameError struct {
		Name string
		// Variable is true for the variable namespace, false for the
		// flag/alias namespace.
		Variable bool
	}

	// UnresolvedReferenceError reports a flag, alias, mapping, inline, or
	// collapse whose target name is not in the registry.
	UnresolvedReferenceError struct {
		// Subject describes the referring entity, e.g. `flag option "f"`.
		Subject string
		Target  string
	}

	// InvalidAliasChainError reports an alias whose target resolves to
	// another alias.
	InvalidAliasChainError struct {
		Alias  string
		Target string
	}

	// InvalidDefaultError reports an enum (or enum list) default outside the
	// declared value set.
	InvalidDefaultError struct {
		Option  string
		Default string
		Values  []string
	}

	// InvalidFlagValueError reports a flag value inconsistent with its
	// resolved target's variant.
	InvalidFlagValueError struct {
		Flag   string
		Reason string
	}

	// SchemeMismatchError reports base and search URLs declaring different
	// explicit schemes.
	SchemeMismatchError struct {
		BaseScheme   string
		SearchScheme string
	}
)

func (e *DuplicateNameError) Error() string {
	if e.Variable {
		return fmt.Sprintf("the variable name %q is duplicated", e.Name)
	}
	return fmt.Sprintf("the non-variable-creating option name %q is duplicated", e.Name)
}

func (e *DuplicateNameError) Unwrap() error { return ErrDuplicateName }

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("%s does not target any existing option (target %q)", e.Subject, e.Target)
}

func (e *UnresolvedReferenceError) Unwrap() error { return ErrUnresolvedReference }

func (e *InvalidAliasChainError) Error() string {
	return fmt.Sprintf("alias %q targets the alias %q; aliases may not be chained", e.Alias, e.Target)
}

func (e *InvalidAliasChainError) Unwrap() error { return ErrInvalidAliasChain }

func (e *InvalidDefaultError) Error() string {
	return fmt.Sprintf("default value %q of %q must be within '%s'",
		e.Default, e.Option, strings.Join(e.Values, ","))
}

func (e *InvalidDefaultError) Unwrap() error { return ErrInvalidDefault }

func (e *InvalidFlagValueError) Error() string {
	return fmt.Sprintf("value of flag option %q is invalid: %s", e.Flag, e.Reason)
}

func (e *InvalidFlagValueError) Unwrap() error { return ErrInvalidFlagValue }

func (e *SchemeMismatchError) Error() string {
	return fmt.Sprintf("the schemes of both URLs must be the same (base %q, search %q)",
		e.BaseScheme, e.SearchScheme)
}

func (e *SchemeMismatchError) Unwrap() error { return ErrSchemeMismatch }
