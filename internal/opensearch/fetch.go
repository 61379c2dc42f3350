// SPDX-License-Identifier: MPL-2.0

package opensearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/net/html"
)

// descriptionMIME is the link type HTML pages use to advertise a description
// document.
const descriptionMIME = "application/opensearchdescription+xml"

// Client fetches OpenSearch descriptions over HTTP. The zero value is not
// usable; construct one with NewClient.
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     *log.Logger
}

// NewClient returns a client using httpClient (nil means http.DefaultClient)
// that sends userAgent on every request.
func NewClient(httpClient *http.Client, userAgent string, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{httpClient: httpClient, userAgent: userAgent, logger: logger}
}

// Fetch retrieves the OpenSearch description reachable from rawURL. The URL
// may point at the description document itself or at an HTML page that links
// to one; a page is followed through its link element.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Description, error) {
	body, contentType, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	if !strings.Contains(contentType, "html") {
		return Parse(body)
	}

	c.logger.Debug("got an HTML page, looking for a description link", "url", rawURL)
	href, err := findDescriptionLink(body, rawURL)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("following description link", "href", href)

	descBody, _, err := c.get(ctx, href)
	if err != nil {
		return nil, err
	}
	defer descBody.Close()
	return Parse(descBody)
}

func (c *Client) get(ctx context.Context, rawURL string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, "", fmt.Errorf("fetching %s: unexpected status %s", rawURL, resp.Status)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// findDescriptionLink scans an HTML document for the first
// <link type="application/opensearchdescription+xml" href=...> element and
// resolves its href against the page URL.
func findDescriptionLink(r io.Reader, pageURL string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parsing page URL %q: %w", pageURL, err)
	}

	tokenizer := html.NewTokenizer(r)
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if tokenizer.Err() == io.EOF {
				return "", fmt.Errorf("%w: %s", ErrNoDescriptionLink, pageURL)
			}
			return "", fmt.Errorf("scanning %s: %w", pageURL, tokenizer.Err())
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			if token.Data != "link" {
				continue
			}
			var typ, href string
			for _, attr := range token.Attr {
				switch attr.Key {
				case "type":
					typ = attr.Val
				case "href":
					href = attr.Val
				}
			}
			if typ != descriptionMIME || href == "" {
				continue
			}
			ref, err := url.Parse(href)
			if err != nil {
				return "", fmt.Errorf("parsing description link %q: %w", href, err)
			}
			return base.ResolveReference(ref).String(), nil
		}
	}
}
