// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	DirectiveSyntaxId Id = iota + 1
	OptionConflictId
	MissingQueryParameterId
	OutputWriteFailedId
	OpenSearchFetchFailedId
	OpenSearchUnsupportedId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // links into our own documentation, when it exists for the issue
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	directiveSyntaxIssue = &Issue{
		id: DirectiveSyntaxId,
		mdMsg: `
# Malformed option directive!

One of the option directives on the command line does not match its grammar.
Directives use ':' between fields and ',' between list items, and neither
character can be escaped.

## Directive shapes:
~~~
--yes-no   NAME:DEFAULT
--enum     NAME:DEFAULT:V1,V2,...
--anything NAME:DEFAULT
--list     NAME:TYPE:DEF1,...[:VALUES]
--flag     NAME:TARGET:VALUE
--alias    NAME:TARGET:TARGET_TYPE
--map      VARIABLE:PARAMETER[:URL_ENCODE]
--collapse VARIABLE:V1,V2,RESULT:...
~~~

## Things you can try:
- Compare the failing directive against the shapes above
- Option and variable names must be single lowercase words
- Enum values must match [a-z0-9][a-z0-9_+-]*`,
	}

	optionConflictIssue = &Issue{
		id: OptionConflictId,
		mdMsg: `
# Inconsistent option set!

The directives parse individually but contradict each other as a whole.

## Common causes:
- Two variable options (or two flags/aliases) share a name
- A flag or alias targets an option that was never declared
- An alias targets another alias (chains are rejected)
- An enum default or flag value is outside the declared value set

## Things you can try:
- Flags and aliases may be declared before their targets, so check the
  *names*, not the order
- Remember variables and flags/aliases live in separate namespaces; an
  alias needs its target's type to pick the right one`,
	}

	missingQueryParameterIssue = &Issue{
		id: MissingQueryParameterId,
		mdMsg: `
# Mappings need a query parameter!

--map and --list-map place option values into the search URL, which requires
knowing where the search terms themselves go.

## Things you can try:
- Add the query parameter:
~~~
$ mkelvis gen example example.com 'example.com/search?' --query-parameter q --map lang:hl
~~~

- Or declare that search terms are never appended:
~~~
$ mkelvis gen example example.com 'example.com/search?' --no-append-args --map lang:hl
~~~`,
	}

	outputWriteFailedIssue = &Issue{
		id: OutputWriteFailedId,
		mdMsg: `
# Could not write the elvis!

The elvis compiled fine but could not be written to disk.

## Things you can try:
- Check that the output directory exists and is writable
- Pass an explicit location with --output
- Stream to stdout instead:
~~~
$ mkelvis gen example example.com 'example.com/search?q=' --output -
~~~`,
	}

	openSearchFetchFailedIssue = &Issue{
		id: OpenSearchFetchFailedId,
		mdMsg: `
# Could not fetch the OpenSearch description!

The description document (or the page that should link to one) could not be
retrieved.

## Things you can try:
- Check the URL and your network connection
- Point directly at the description XML instead of the HTML page
- Some sites block unknown clients; set a browser-like user agent:
~~~cue
user_agent: "Mozilla/5.0 (compatible)"
~~~`,
	}

	openSearchUnsupportedIssue = &Issue{
		id: OpenSearchUnsupportedId,
		mdMsg: `
# Unsupported OpenSearch description!

The description was fetched and parsed, but an elvis cannot drive this
engine.

## Common causes:
- No GET Url element with type="text/html"
- Template parameters outside the query string (path templates)
- A required template parameter mkelvis cannot supply, e.g. {sessionID}

## Things you can try:
- Check the description for an alternative results URL
- Write the elvis by hand with 'mkelvis gen' using the engine's plain
  search URL`,
		extLinks: []HttpLink{
			"https://github.com/dewitt/opensearch",
		},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the mkelvis configuration file.

## Configuration file locations:
- Linux: ~/.config/mkelvis/config.cue
- macOS: ~/Library/Application Support/mkelvis/config.cue
- Windows: %APPDATA%\mkelvis\config.cue

## Things you can try:
- Create a default configuration:
~~~
$ mkelvis config init
~~~

- Check the configuration syntax
- Remove the config file to use defaults

## Example configuration:
~~~cue
default_scheme: "https"
num_tabs: 1
enable_completions: true

ui: {
  verbose: false
}
~~~`,
	}

	issues = map[Id]*Issue{
		directiveSyntaxIssue.Id():       directiveSyntaxIssue,
		optionConflictIssue.Id():        optionConflictIssue,
		missingQueryParameterIssue.Id(): missingQueryParameterIssue,
		outputWriteFailedIssue.Id():     outputWriteFailedIssue,
		openSearchFetchFailedIssue.Id(): openSearchFetchFailedIssue,
		openSearchUnsupportedIssue.Id(): openSearchUnsupportedIssue,
		configLoadFailedIssue.Id():      configLoadFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
