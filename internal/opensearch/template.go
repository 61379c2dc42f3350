// SPDX-License-Identifier: MPL-2.0

package opensearch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"mkelvis-cli/internal/directive"
	"mkelvis-cli/internal/option"
)

// templateParamRE matches one {name}, {prefix:name}, or {name?} value in a
// query pair. Prefixed parameters come from extension namespaces and are
// treated like unknown core parameters.
var templateParamRE = regexp.MustCompile(`^\{(?:([A-Za-z][A-Za-z0-9]*):)?([A-Za-z][A-Za-z0-9]*)(\??)\}$`)

// ToInput converts a results URL template into compiler input. Recognized
// template parameters become options and URL parameter mappings; optional
// unknown parameters are dropped; required unknown parameters are fatal
// because the target engine demands a value the elvis cannot supply.
func (d *Description) ToInput(u *URL) (option.Input, error) {
	name, err := d.ElvisName()
	if err != nil {
		return option.Input{}, err
	}

	in := option.Input{
		Name:              name,
		Description:       d.longDescription(),
		AppendSearchArgs:  true,
		NumTabs:           1,
		EnableCompletions: true,
	}

	prefix, query, ok := strings.Cut(u.Template, "?")
	if !ok {
		query = ""
	}
	if strings.ContainsAny(prefix, "{}") {
		return option.Input{}, fmt.Errorf("%w: template parameters outside the query string (%s)", ErrUnsupportedTemplate, u.Template)
	}
	in.BaseURL = siteRoot(prefix)
	in.SearchURL = prefix + "?"

	var literals []string
	sawSearchTerms := false
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		m := templateParamRE.FindStringSubmatch(value)
		if m == nil {
			literals = append(literals, pair)
			continue
		}
		prefixed, param, optional := m[1] != "", m[2], m[3] == "?"
		if prefixed {
			if optional {
				continue
			}
			return option.Input{}, fmt.Errorf("%w: required extension parameter {%s:%s}", ErrUnsupportedTemplate, m[1], param)
		}

		switch {
		case strings.EqualFold(param, "searchTerms"):
			in.QueryParameter = key
			sawSearchTerms = true
		case strings.EqualFold(param, "count"):
			in.UseResultsOption = true
			in.Mappings = append(in.Mappings, directive.Mapping{Variable: "results", Parameter: key, URLEncode: true})
		case strings.EqualFold(param, "language"):
			in.UseLanguageOption = true
			in.Mappings = append(in.Mappings, directive.Mapping{Variable: "language", Parameter: key, URLEncode: true})
		case strings.EqualFold(param, "startIndex"):
			in.Variables = append(in.Variables, directive.Anything{
				Name:    "startindex",
				Default: strconv.Itoa(u.indexOffset()),
			})
			in.Mappings = append(in.Mappings, directive.Mapping{Variable: "startindex", Parameter: key, URLEncode: true})
		case strings.EqualFold(param, "startPage"):
			in.Variables = append(in.Variables, directive.Anything{
				Name:    "startpage",
				Default: strconv.Itoa(u.pageOffset()),
			})
			in.Mappings = append(in.Mappings, directive.Mapping{Variable: "startpage", Parameter: key, URLEncode: true})
		case strings.EqualFold(param, "inputEncoding"):
			in.Variables = append(in.Variables, directive.Anything{
				Name:    "inputencoding",
				Default: firstOr(d.InputEncodings, "UTF-8"),
			})
			in.Mappings = append(in.Mappings, directive.Mapping{Variable: "inputencoding", Parameter: key, URLEncode: true})
		case strings.EqualFold(param, "outputEncoding"):
			in.Variables = append(in.Variables, directive.Anything{
				Name:    "outputencoding",
				Default: firstOr(d.OutputEncodings, "UTF-8"),
			})
			in.Mappings = append(in.Mappings, directive.Mapping{Variable: "outputencoding", Parameter: key, URLEncode: true})
		default:
			if optional {
				continue
			}
			return option.Input{}, fmt.Errorf("%w: required parameter {%s}", ErrUnsupportedTemplate, param)
		}
	}

	if !sawSearchTerms {
		return option.Input{}, fmt.Errorf("%w: no {searchTerms} parameter", ErrUnsupportedTemplate)
	}
	if len(literals) > 0 {
		in.SearchURL += strings.Join(literals, "&") + "&"
	}
	return in, nil
}

func (d *Description) longDescription() string {
	if d.Description != "" {
		return d.Description
	}
	return d.LongName
}

// siteRoot cuts a URL down to scheme://host for use as the no-arguments
// landing page.
func siteRoot(url string) string {
	rest := url
	scheme := ""
	if i := strings.Index(url, "://"); i >= 0 {
		scheme, rest = url[:i+3], url[i+3:]
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return scheme + rest
}

func firstOr(values []string, fallback string) string {
	if len(values) > 0 {
		return values[0]
	}
	return fallback
}
