// SPDX-License-Identifier: MPL-2.0

// Package directive parses the flat, colon-delimited directive strings given
// on the command line into typed records. Positional fields are separated by
// ':' and list items within a field by ','; neither delimiter can be escaped,
// which is a documented limitation of the grammar rather than something the
// splitter tries to work around.
//
// Parsing here is purely local: no directive knows about any other. Cross
// references (flag targets, mapping variables, and so on) are resolved later
// by the option graph builder.
package directive

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformed is the sentinel wrapped by every MalformedError, for
// errors.Is() checks across the whole taxonomy.
var ErrMalformed = errors.New("malformed directive")

// ElemType is the element type of a list directive.
type ElemType string

const (
	// ElemEnum restricts list elements to a declared value set.
	ElemEnum ElemType = "enum"
	// ElemAnything leaves list elements unchecked.
	ElemAnything ElemType = "anything"
)

type (
	// MalformedError reports a directive string that does not match its
	// type's grammar. Grammar carries the expected shape so the user can fix
	// the input without consulting the manual.
	MalformedError struct {
		Kind    string // directive type, e.g. "enum"
		Arg     string // the offending directive text
		Grammar string // expected grammar, e.g. "NAME:DEFAULT:V1,V2,..."
		Reason  string
	}

	// Bool declares a yes/no variable option.
	Bool struct {
		Name    string
		Default string // "yes" or "no"
	}

	// Enum declares a variable option restricted to a value set.
	Enum struct {
		Name    string
		Default string
		Values  []string
	}

	// Anything declares an unchecked variable option. The default may be
	// empty, which is semantically valid rather than "absent".
	Anything struct {
		Name    string
		Default string
	}

	// List declares a comma-separated, repeatable variable option. Values is
	// only meaningful when Type is ElemEnum.
	List struct {
		Name     string
		Type     ElemType
		Defaults []string
		Values   []string
	}

	// Flag declares an alias-with-value to a variable-creating option.
	Flag struct {
		Name   string
		Target string
		Value  string
	}

	// Alias declares an alias-without-value. TargetType disambiguates the
	// variable and flag namespaces, which may share a bare name.
	Alias struct {
		Name       string
		Target     string
		TargetType string
	}

	// Mapping places a variable's value into the URL as a query parameter.
	Mapping struct {
		Variable  string
		Parameter string
		URLEncode bool
	}

	// Inline places a variable's value into the search query as KEYWORD:value.
	Inline struct {
		Variable string
		Keyword  string
	}

	// CollapseBranch is one arm of a collapse case statement. The replacement
	// is a raw shell snippet run within double quotes.
	CollapseBranch struct {
		Patterns    []string
		Replacement string
	}

	// Collapse rewrites groups of values of a variable to a single value,
	// first declared branch winning.
	Collapse struct {
		Variable string
		Branches []CollapseBranch
	}

	// Metavar overrides the metavar shown for an option in help output.
	Metavar struct {
		Variable string
		Metavar  string // uppercased during parsing
	}

	// Describe overrides the description shown for an option in help output.
	Describe struct {
		Variable    string
		Description string
	}
)

// VarDirective is the closed set of directives that declare a runtime
// variable: Bool, Enum, Anything, and List. The option graph builder
// registers these in its first pass, in declaration order.
type VarDirective interface {
	isVarDirective()
}

func (Bool) isVarDirective()     {}
func (Enum) isVarDirective()     {}
func (Anything) isVarDirective() {}
func (List) isVarDirective()     {}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s directive %q requires %s: %s", e.Kind, e.Arg, e.Grammar, e.Reason)
}

// Unwrap makes errors.Is(err, ErrMalformed) hold for every MalformedError.
func (e *MalformedError) Unwrap() error { return ErrMalformed }

func malformed(kind, arg, grammar, format string, a ...any) error {
	return &MalformedError{Kind: kind, Arg: arg, Grammar: grammar, Reason: fmt.Sprintf(format, a...)}
}

// validNameRE is deliberately narrower than the shell allows: single
// lowercase words keep the SURFRAW_elvisname_varname convention readable.
var validNameRE = regexp.MustCompile(`^[a-z]+$`)

// validEnumValueRE restricts enum values. Surfraw itself would accept
// anything, but restricted values keep the generated case arms simple.
var validEnumValueRE = regexp.MustCompile(`^[a-z0-9][a-z0-9_+-]*$`)

var validMetavarRE = regexp.MustCompile(`^[a-z]+$`)

// forbiddenNames are option names claimed by surfraw itself; an elvis cannot
// override them.
var forbiddenNames = map[string]bool{
	"browser": true, "elvi": true, "g": true, "graphical": true,
	"h": true, "help": true, "lh": true, "p": true, "print": true,
	"o": true, "new": true, "ns": true, "newscreen": true,
	"t": true, "text": true, "q": true, "quote": true, "version": true,
	// In case options with hyphens are ever allowed:
	"bookmark-search-elvis": true, "custom-search": true,
	"escape-url-args": true, "local-help": true,
}

// ValidateName checks that name may be used for an option or variable.
func ValidateName(name string) error {
	if !validNameRE.MatchString(name) {
		return fmt.Errorf("name %q is not a valid elvis variable name (must match %s)", name, validNameRE)
	}
	if forbiddenNames[name] {
		return fmt.Errorf("option name %q is a surfraw global and cannot be overridden", name)
	}
	return nil
}

// ValidateEnumValue checks that value may appear in an enum value set.
func ValidateEnumValue(value string) error {
	if !validEnumValueRE.MatchString(value) {
		return fmt.Errorf("enum value %q must match %s", value, validEnumValueRE)
	}
	return nil
}

// parseYesNo maps the boolean words used throughout the directive grammar.
func parseYesNo(s string) (bool, error) {
	switch s {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	}
	return false, fmt.Errorf("bool %q must be one of: no, yes", s)
}

// splitList splits a comma-delimited field. The empty field is an empty
// list; interior empty items are preserved.
func splitList(field string) []string {
	if field == "" {
		return nil
	}
	return strings.Split(field, ",")
}

// fields splits a directive into exactly want colon-delimited fields, the
// last optional ones indicated by min < want.
func fields(kind, arg, grammar string, min, max int) ([]string, error) {
	parts := strings.Split(arg, ":")
	if len(parts) < min || len(parts) > max {
		return nil, malformed(kind, arg, grammar, "got %d colon-delimited fields, want %d to %d", len(parts), min, max)
	}
	return parts, nil
}

// ParseBool parses a --yes-no directive (NAME:DEFAULT).
func ParseBool(arg string) (Bool, error) {
	const grammar = "NAME:DEFAULT_YES_OR_NO"
	parts, err := fields("yes-no", arg, grammar, 2, 2)
	if err != nil {
		return Bool{}, err
	}
	if err := ValidateName(parts[0]); err != nil {
		return Bool{}, malformed("yes-no", arg, grammar, "%v", err)
	}
	if _, err := parseYesNo(parts[1]); err != nil {
		return Bool{}, malformed("yes-no", arg, grammar, "%v", err)
	}
	return Bool{Name: parts[0], Default: parts[1]}, nil
}

// ParseEnum parses an --enum directive (NAME:DEFAULT:V1,V2,...).
func ParseEnum(arg string) (Enum, error) {
	const grammar = "NAME:DEFAULT:V1,V2,..."
	parts, err := fields("enum", arg, grammar, 3, 3)
	if err != nil {
		return Enum{}, err
	}
	if err := ValidateName(parts[0]); err != nil {
		return Enum{}, malformed("enum", arg, grammar, "%v", err)
	}
	if err := ValidateEnumValue(parts[1]); err != nil {
		return Enum{}, malformed("enum", arg, grammar, "%v", err)
	}
	values := splitList(parts[2])
	for _, v := range values {
		if err := ValidateEnumValue(v); err != nil {
			return Enum{}, malformed("enum", arg, grammar, "%v", err)
		}
	}
	return Enum{Name: parts[0], Default: parts[1], Values: values}, nil
}

// ParseAnything parses an --anything directive (NAME:DEFAULT).
func ParseAnything(arg string) (Anything, error) {
	const grammar = "NAME:DEFAULT"
	parts, err := fields("anything", arg, grammar, 2, 2)
	if err != nil {
		return Anything{}, err
	}
	if err := ValidateName(parts[0]); err != nil {
		return Anything{}, malformed("anything", arg, grammar, "%v", err)
	}
	return Anything{Name: parts[0], Default: parts[1]}, nil
}

// ParseList parses a --list directive (NAME:TYPE:DEF1,...[:VALUES]).
func ParseList(arg string) (List, error) {
	const grammar = "NAME:TYPE:DEFAULT1,DEFAULT2,...[:VALID_VALUES_IF_ENUM]"
	parts, err := fields("list", arg, grammar, 3, 4)
	if err != nil {
		return List{}, err
	}
	if err := ValidateName(parts[0]); err != nil {
		return List{}, malformed("list", arg, grammar, "%v", err)
	}
	var typ ElemType
	switch parts[1] {
	case string(ElemEnum):
		typ = ElemEnum
	case string(ElemAnything):
		typ = ElemAnything
	default:
		return List{}, malformed("list", arg, grammar, "list type %q must be one of: anything, enum", parts[1])
	}
	l := List{Name: parts[0], Type: typ, Defaults: splitList(parts[2])}
	if len(parts) == 4 {
		l.Values = splitList(parts[3])
	}
	if typ == ElemEnum {
		if len(l.Values) == 0 {
			return List{}, malformed("list", arg, grammar, "enum lists must declare their valid values in the fourth field")
		}
		for _, v := range l.Values {
			if err := ValidateEnumValue(v); err != nil {
				return List{}, malformed("list", arg, grammar, "%v", err)
			}
		}
	}
	return l, nil
}

// ParseFlag parses a --flag directive (NAME:TARGET:VALUE). The value is not
// interpreted here; it is validated against the target's variant once the
// target resolves.
func ParseFlag(arg string) (Flag, error) {
	const grammar = "FLAG_NAME:FLAG_TARGET:VALUE"
	parts, err := fields("flag", arg, grammar, 3, 3)
	if err != nil {
		return Flag{}, err
	}
	if err := ValidateName(parts[0]); err != nil {
		return Flag{}, malformed("flag", arg, grammar, "%v", err)
	}
	if err := ValidateName(parts[1]); err != nil {
		return Flag{}, malformed("flag", arg, grammar, "%v", err)
	}
	return Flag{Name: parts[0], Target: parts[1], Value: parts[2]}, nil
}

// aliasTargetTypes are the typenames an alias may point at. "yes-no" is
// accepted for backward compatibility with older directive lists.
var aliasTargetTypes = map[string]string{
	"bool": "bool", "yes-no": "bool",
	"enum":     "enum",
	"anything": "anything",
	"special":  "special",
	"list":     "list",
	"flag":     "flag",
}

// ParseAlias parses an --alias directive (NAME:TARGET:TARGET_TYPE).
func ParseAlias(arg string) (Alias, error) {
	const grammar = "ALIAS_NAME:ALIAS_TARGET:ALIAS_TARGET_TYPE"
	parts, err := fields("alias", arg, grammar, 3, 3)
	if err != nil {
		return Alias{}, err
	}
	if err := ValidateName(parts[0]); err != nil {
		return Alias{}, malformed("alias", arg, grammar, "%v", err)
	}
	if err := ValidateName(parts[1]); err != nil {
		return Alias{}, malformed("alias", arg, grammar, "%v", err)
	}
	if parts[2] == "alias" {
		return Alias{}, malformed("alias", arg, grammar, "aliases may not target other aliases")
	}
	typ, ok := aliasTargetTypes[parts[2]]
	if !ok {
		return Alias{}, malformed("alias", arg, grammar, "alias target type %q must be one of: anything, bool, enum, flag, list, special", parts[2])
	}
	return Alias{Name: parts[0], Target: parts[1], TargetType: typ}, nil
}

// ParseMapping parses a --map or --list-map directive
// (VARIABLE:PARAMETER[:URL_ENCODE]). URL encoding defaults to yes, which is
// only worth switching off for already-encoded values.
func ParseMapping(arg string) (Mapping, error) {
	const grammar = "VARIABLE_NAME:PARAMETER[:URL_ENCODE]"
	parts, err := fields("map", arg, grammar, 2, 3)
	if err != nil {
		return Mapping{}, err
	}
	if err := ValidateName(parts[0]); err != nil {
		return Mapping{}, malformed("map", arg, grammar, "%v", err)
	}
	if parts[1] == "" {
		return Mapping{}, malformed("map", arg, grammar, "URL parameter must not be empty")
	}
	m := Mapping{Variable: parts[0], Parameter: parts[1], URLEncode: true}
	if len(parts) == 3 {
		enc, err := parseYesNo(parts[2])
		if err != nil {
			return Mapping{}, malformed("map", arg, grammar, "%v", err)
		}
		m.URLEncode = enc
	}
	return m, nil
}

// ParseInline parses an --inline or --list-inline directive (VARIABLE:KEYWORD).
func ParseInline(arg string) (Inline, error) {
	const grammar = "VARIABLE_NAME:KEYWORD"
	parts, err := fields("inline", arg, grammar, 2, 2)
	if err != nil {
		return Inline{}, err
	}
	if err := ValidateName(parts[0]); err != nil {
		return Inline{}, malformed("inline", arg, grammar, "%v", err)
	}
	if parts[1] == "" {
		return Inline{}, malformed("inline", arg, grammar, "keyword must not be empty")
	}
	return Inline{Variable: parts[0], Keyword: parts[1]}, nil
}

// ParseCollapse parses a --collapse directive
// (VARIABLE:V1,V2,RESULT:VA,VB,RESULT2:...). Branches are kept in
// declaration order; the first matching branch wins in the generated case
// statement, and overlapping branches are allowed on purpose.
func ParseCollapse(arg string) (Collapse, error) {
	const grammar = "VARIABLE_NAME:VAL1,VAL2,RESULT:VAL_A,VAL_B,RESULT_B:..."
	parts := strings.Split(arg, ":")
	if len(parts) < 2 {
		return Collapse{}, malformed("collapse", arg, grammar, "got %d colon-delimited fields, want at least 2", len(parts))
	}
	if err := ValidateName(parts[0]); err != nil {
		return Collapse{}, malformed("collapse", arg, grammar, "%v", err)
	}
	c := Collapse{Variable: parts[0]}
	for _, branch := range parts[1:] {
		items := splitList(branch)
		if len(items) < 2 {
			return Collapse{}, malformed("collapse", arg, grammar, "branch %q needs at least one match value and a result", branch)
		}
		c.Branches = append(c.Branches, CollapseBranch{
			Patterns:    items[:len(items)-1],
			Replacement: items[len(items)-1],
		})
	}
	return c, nil
}

// ParseMetavar parses a --metavar directive (VARIABLE:METAVAR).
func ParseMetavar(arg string) (Metavar, error) {
	const grammar = "VARIABLE_NAME:METAVAR"
	parts, err := fields("metavar", arg, grammar, 2, 2)
	if err != nil {
		return Metavar{}, err
	}
	if err := ValidateName(parts[0]); err != nil {
		return Metavar{}, malformed("metavar", arg, grammar, "%v", err)
	}
	if !validMetavarRE.MatchString(parts[1]) {
		return Metavar{}, malformed("metavar", arg, grammar, "metavar %q must match %s", parts[1], validMetavarRE)
	}
	return Metavar{Variable: parts[0], Metavar: strings.ToUpper(parts[1])}, nil
}

// ParseDescribe parses a --describe directive (VARIABLE:DESCRIPTION). The
// description is everything after the first colon, so it may itself contain
// colons.
func ParseDescribe(arg string) (Describe, error) {
	const grammar = "VARIABLE_NAME:DESCRIPTION"
	parts := strings.SplitN(arg, ":", 2)
	if len(parts) != 2 {
		return Describe{}, malformed("describe", arg, grammar, "got 1 colon-delimited field, want 2")
	}
	if err := ValidateName(parts[0]); err != nil {
		return Describe{}, malformed("describe", arg, grammar, "%v", err)
	}
	return Describe{Variable: parts[0], Description: parts[1]}, nil
}
