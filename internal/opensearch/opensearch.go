// SPDX-License-Identifier: MPL-2.0

// Package opensearch turns OpenSearch 1.1 description documents into elvis
// compiler input. Only the GET/text/html results surface of OpenSearch is
// supported; parameterized POST and suggestion URLs are out of scope.
package opensearch

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Namespace is the OpenSearch 1.1 XML namespace.
const Namespace = "http://a9.com/-/spec/opensearch/1.1/"

var (
	// ErrInvalidDescription is returned for documents that are well-formed XML
	// but are not usable OpenSearch descriptions.
	ErrInvalidDescription = errors.New("invalid OpenSearch description")
	// ErrNoResultsURL is returned when no GET text/html results URL exists.
	ErrNoResultsURL = errors.New("description has no HTML results URL template")
	// ErrUnsupportedTemplate is returned for URL templates the compiler
	// cannot express as an elvis.
	ErrUnsupportedTemplate = errors.New("unsupported URL template")
	// ErrNoDescriptionLink is returned when an HTML page does not advertise an
	// OpenSearch description document.
	ErrNoDescriptionLink = errors.New("page does not link to an OpenSearch description")
)

type (
	// Description is an OpenSearch 1.1 description document.
	Description struct {
		XMLName         xml.Name `xml:"OpenSearchDescription"`
		ShortName       string   `xml:"ShortName"`
		LongName        string   `xml:"LongName"`
		Description     string   `xml:"Description"`
		InputEncodings  []string `xml:"InputEncoding"`
		OutputEncodings []string `xml:"OutputEncoding"`
		Languages       []string `xml:"Language"`
		URLs            []URL    `xml:"Url"`
	}

	// URL is one Url element of a description.
	URL struct {
		Template    string `xml:"template,attr"`
		Type        string `xml:"type,attr"`
		Rel         string `xml:"rel,attr"`
		Method      string `xml:"method,attr"`
		IndexOffset *int   `xml:"indexOffset,attr"`
		PageOffset  *int   `xml:"pageOffset,attr"`
	}
)

// Parse decodes an OpenSearch description document.
func Parse(r io.Reader) (*Description, error) {
	var d Description
	if err := xml.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("parsing OpenSearch description: %w", err)
	}
	if d.ShortName == "" {
		return nil, fmt.Errorf("%w: missing ShortName", ErrInvalidDescription)
	}
	if len(d.URLs) == 0 {
		return nil, fmt.Errorf("%w: no Url elements", ErrInvalidDescription)
	}
	return &d, nil
}

// ResultsURL picks the Url element an elvis can drive: HTML results over GET.
func (d *Description) ResultsURL() (*URL, error) {
	for i := range d.URLs {
		u := &d.URLs[i]
		if u.Type != "text/html" {
			continue
		}
		if u.Rel != "" && u.Rel != "results" {
			continue
		}
		if u.Method != "" && !strings.EqualFold(u.Method, "get") {
			continue
		}
		return u, nil
	}
	return nil, ErrNoResultsURL
}

// indexOffset returns the template's first-result index, defaulting to 1 per
// the OpenSearch spec.
func (u *URL) indexOffset() int {
	if u.IndexOffset != nil {
		return *u.IndexOffset
	}
	return 1
}

func (u *URL) pageOffset() int {
	if u.PageOffset != nil {
		return *u.PageOffset
	}
	return 1
}

// ElvisName derives a usable elvis name from the ShortName: lowercased, with
// everything outside [a-z0-9] dropped.
func (d *Description) ElvisName() (string, error) {
	var b strings.Builder
	for _, r := range strings.ToLower(d.ShortName) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: ShortName %q has no usable characters", ErrInvalidDescription, d.ShortName)
	}
	return b.String(), nil
}
