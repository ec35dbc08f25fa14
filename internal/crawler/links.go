package crawler

import (
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
)

// DefaultMaxLinks is the number of document links followed per page.
const DefaultMaxLinks = 50

// docxExt is matched against the path of each link, case-insensitively.
const docxExt = ".docx"

type options struct {
	maxLinks int
	sameHost bool
}

// Option configures link extraction.
type Option func(*options)

// WithMaxLinks limits the number of returned links. Zero or less
// returns every link.
func WithMaxLinks(n int) Option {
	return func(o *options) {
		o.maxLinks = n
	}
}

// WithSameHost keeps only links on the host of the page.
func WithSameHost(same bool) Option {
	return func(o *options) {
		o.sameHost = same
	}
}

// DocumentLinks parses the HTML page served at pageURL and returns the
// absolute URLs of linked DOCX documents in document order, without
// duplicates. Relative links are resolved against the <base> element if
// present, otherwise against pageURL. Only http and https links are
// returned.
func DocumentLinks(page io.Reader, pageURL string, opts ...Option) ([]string, error) {
	o := options{maxLinks: DefaultMaxLinks}
	for _, opt := range opts {
		opt(&o)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}

	doc, err := html.Parse(page)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	var (
		hrefs   []string
		baseSet bool
	)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "base":
				if b := resolve(base, getAttr(n, "href")); b != nil && !baseSet {
					base, baseSet = b, true
				}
			case "a":
				if href := getAttr(n, "href"); href != "" {
					hrefs = append(hrefs, href)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	seen := make(map[string]bool)
	links := make([]string, 0)
	for _, href := range hrefs {
		u := resolve(base, href)
		if u == nil || !isDocument(u) {
			continue
		}
		if o.sameHost && !strings.EqualFold(u.Host, base.Host) {
			continue
		}
		u.Fragment, u.RawFragment = "", ""
		link := u.String()
		if seen[link] {
			continue
		}
		seen[link] = true
		links = append(links, link)
		if o.maxLinks > 0 && len(links) == o.maxLinks {
			break
		}
	}
	return links, nil
}

// resolve returns href as an absolute http(s) URL, or nil.
func resolve(base *url.URL, href string) *url.URL {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return nil
	}
	u, err := url.Parse(href)
	if err != nil {
		return nil
	}
	u = base.ResolveReference(u)
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u
	default:
		return nil
	}
}

func isDocument(u *url.URL) bool {
	return strings.EqualFold(path.Ext(u.Path), docxExt)
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
