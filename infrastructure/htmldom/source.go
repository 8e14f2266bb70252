// Package htmldom is a DOM source over static HTML: a saved page or a plain
// HTTP fetch. It lets extraction and locator checks run without a browser.
package htmldom

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"site_uitest/domain/entities"
	"site_uitest/domain/interfaces"
)

// Source answers DOMSource queries from a parsed document
type Source struct {
	doc *goquery.Document
	url string
}

// New - parses HTML from r; url identifies the document in results
func New(r io.Reader, url string) (*Source, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return &Source{doc: doc, url: url}, nil
}

// Open - parses a saved HTML file
func Open(path, url string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if url == "" {
		url = "file://" + path
	}
	return New(f, url)
}

// Fetch - downloads url with client and parses the response body. Content
// rendered by scripts is not seen.
func Fetch(ctx context.Context, client *http.Client, url string) (*Source, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", "site-uitest/1.0 (+selector extraction)")

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, &entities.NavigationError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, resp.StatusCode, &entities.NavigationError{URL: url, Status: resp.StatusCode}
	}
	src, err := New(resp.Body, resp.Request.URL.String())
	return src, resp.StatusCode, err
}

// Document - the parsed document, for direct goquery assertions
func (s *Source) Document() *goquery.Document {
	return s.doc
}

// URL - the document's URL
func (s *Source) URL() string {
	return s.url
}

// Elements - lists visible elements whose tag or role is in filter
func (s *Source) Elements(ctx context.Context, filter interfaces.ElementFilter) ([]entities.ElementCandidate, error) {
	parts := append([]string(nil), filter.Tags...)
	for _, role := range filter.Roles {
		parts = append(parts, entities.AttributeSelector("role", role))
	}
	if len(parts) == 0 {
		return nil, nil
	}

	var out []entities.ElementCandidate
	s.doc.Find(strings.Join(parts, ", ")).Each(func(_ int, sel *goquery.Selection) {
		if hidden(sel) {
			return
		}
		out = append(out, candidate(sel))
	})
	return out, ctx.Err()
}

// Count - number of elements the entry matches in the document
func (s *Source) Count(ctx context.Context, entry entities.SelectorEntry) (int, error) {
	nodes, err := s.match(entry)
	if err != nil {
		return 0, err
	}
	return len(nodes), ctx.Err()
}

// Text - text of the first element the entry matches
func (s *Source) Text(entry entities.SelectorEntry) (string, error) {
	nodes, err := s.match(entry)
	if err != nil {
		return "", err
	}
	if len(nodes) == 0 {
		return "", &entities.ElementNotReadyError{Name: entry.Name, Locator: entry.Locator}
	}
	return strings.Join(strings.Fields(goquery.NewDocumentFromNode(nodes[0]).Text()), " "), nil
}

func (s *Source) match(entry entities.SelectorEntry) ([]*html.Node, error) {
	root := s.doc.Nodes[0]
	if css, ok := entry.AsCSS(); ok {
		group, err := cascadia.ParseGroup(entities.CSSForMatching(css))
		if err != nil {
			return nil, fmt.Errorf("invalid css for %s: %w", entry.Name, err)
		}
		return cascadia.QueryAll(root, group), nil
	}
	if expr, ok := entry.AsXPath(); ok {
		nodes, err := htmlquery.QueryAll(root, expr)
		if err != nil {
			return nil, fmt.Errorf("invalid xpath for %s: %w", entry.Name, err)
		}
		return nodes, nil
	}
	return nil, fmt.Errorf("unsupported locator kind %q", entry.Kind)
}

func candidate(sel *goquery.Selection) entities.ElementCandidate {
	c := entities.ElementCandidate{
		Tag:        goquery.NodeName(sel),
		Attributes: make(map[string]string),
	}
	for _, a := range sel.Nodes[0].Attr {
		c.Attributes[a.Key] = a.Val
	}
	c.ID = c.Attributes["id"]
	c.Role = c.Attributes["role"]
	c.Classes = strings.Fields(c.Attributes["class"])

	text := strings.Join(strings.Fields(sel.Text()), " ")
	if text == "" {
		text = c.Attributes["value"]
	}
	if text == "" {
		text = c.Attributes["placeholder"]
	}
	c.Text, _ = entities.Truncate(text, entities.MaxCandidateText)
	return c
}

// hidden - elements the browser would not render, judged statically
func hidden(sel *goquery.Selection) bool {
	if sel.Closest("[hidden], [aria-hidden='true'], template, noscript").Length() > 0 {
		return true
	}
	if t, _ := sel.Attr("type"); strings.EqualFold(t, "hidden") {
		return true
	}
	style := strings.ReplaceAll(strings.ToLower(sel.AttrOr("style", "")), " ", "")
	return strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden")
}

var _ interfaces.DOMSource = (*Source)(nil)
