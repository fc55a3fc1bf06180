package crawler

import (
	"bytes"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// tokenPattern matches a maximal run of letters, digits and underscores.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// hiddenElements hold text that a browser does not render.
const hiddenElements = "script,style,noscript,template"

// Extraction is what the Extractor finds in one page.
type Extraction struct {
	// Title is the text of the first <title> element.
	Title string

	// Tokens are the words of the rendered text in document order.
	// A word appears once per occurrence.
	Tokens []string

	// Links are the absolute same-origin links, normalized and sorted.
	Links []string
}

// Extract parses content as HTML and returns its tokens and the links that
// share base's network location (host and port).
//
// Links are resolved against base, or against a <base href> element when
// the page declares one. Fragments are dropped during normalization, so a
// fragment-only link resolves to the page itself. Links with a scheme other
// than http or https never share the page's origin and are dropped.
func Extract(content []byte, base *url.URL) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	resolveBase := base
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if u, err := url.Parse(strings.TrimSpace(href)); err == nil {
			resolveBase = base.ResolveReference(u)
		}
	}

	result := &Extraction{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	doc.Find(hiddenElements).Remove()

	var text strings.Builder
	for _, n := range doc.Nodes {
		renderText(&text, n)
	}
	result.Tokens = Tokenize(text.String())

	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		link, ok := resolveLink(resolveBase, base.Host, href)
		if !ok {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		result.Links = append(result.Links, link)
	})
	sort.Strings(result.Links)

	return result, nil
}

// blockElements end a run of rendered text. Inline elements do not, so
// <b>Pass</b>word is one word.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"body": true, "br": true, "caption": true, "dd": true, "details": true,
	"div": true, "dl": true, "dt": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "head": true,
	"header": true, "hr": true, "html": true, "li": true, "main": true,
	"nav": true, "ol": true, "option": true, "p": true, "pre": true,
	"section": true, "summary": true, "table": true, "td": true,
	"th": true, "title": true, "tr": true, "ul": true,
}

// renderText writes the text of n to sb, with a newline at every block
// element boundary.
func renderText(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		sb.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderText(sb, c)
	}
	if block {
		sb.WriteByte('\n')
	}
}

// Tokenize splits plain text into words using the same rule as Extract.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(text, -1)
}

// resolveLink resolves href against base and reports whether the result is
// an http(s) URL on originHost.
func resolveLink(base *url.URL, originHost, href string) (string, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	if !strings.EqualFold(resolved.Host, originHost) {
		return "", false
	}

	return NormalizeURL(resolved), true
}

// NormalizeURL returns the canonical string form used for deduplication:
// the fragment is dropped, scheme and host are lower-cased, and an empty
// path becomes "/".
func NormalizeURL(u *url.URL) string {
	n := *u
	n.Fragment = ""
	n.RawFragment = ""
	n.Scheme = strings.ToLower(n.Scheme)
	n.Host = strings.ToLower(n.Host)
	if n.Path == "" {
		n.Path = "/"
		n.RawPath = ""
	}
	return n.String()
}

// ParseSeed parses a seed URL, defaulting to http:// when no scheme is
// given, and returns its normalized form.
func ParseSeed(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &url.Error{Op: "parse", URL: raw, Err: errUnsupportedScheme}
	}
	if u.Host == "" {
		return nil, &url.Error{Op: "parse", URL: raw, Err: errMissingHost}
	}

	normalized, err := url.Parse(NormalizeURL(u))
	if err != nil {
		return nil, err
	}
	return normalized, nil
}
