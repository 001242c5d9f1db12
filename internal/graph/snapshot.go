package graph

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	pdfx "github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
)

// EnrichTitles fills empty node titles from a local crawl snapshot
// directory whose layout mirrors URL paths. HTML pages contribute their
// <title>, PDFs their document-info title (or first text line). Nodes
// with no usable source fall back to a slug derived from the URL path.
// Enrichment is best-effort; unreadable files are skipped.
func EnrichTitles(g *Graph, dir string) {
	for i := range g.nodes {
		n := &g.nodes[i]
		if n.Title != "" {
			continue
		}
		if dir != "" {
			if title := titleFromSnapshot(dir, n.URL); title != "" {
				n.Title = title
				continue
			}
		}
		n.Title = slugTitle(n.URL)
	}
}

func titleFromSnapshot(dir, rawURL string) string {
	p := urlPath(rawURL)
	if strings.HasSuffix(strings.ToLower(p), ".pdf") {
		return pdfTitle(filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(p, "/"))))
	}
	candidates := []string{
		filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(p, "/"))+".html"),
		filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(p, "/")), "index.html"),
	}
	for _, c := range candidates {
		if title := htmlTitle(c); title != "" {
			return title
		}
	}
	return ""
}

func htmlTitle(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()
	node, err := html.Parse(f)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(findTitle(node))
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, "title") {
		var b strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
		return strings.Join(strings.Fields(b.String()), " ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func pdfTitle(path string) string {
	f, r, err := pdfx.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()
	if info := r.Trailer().Key("Info"); !info.IsNull() {
		if t := strings.TrimSpace(info.Key("Title").Text()); t != "" {
			return t
		}
	}
	if r.NumPage() < 1 {
		return ""
	}
	txt, err := r.Page(1).GetPlainText(nil)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(txt, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// slugTitle turns the last URL path segment into a readable label,
// e.g. /academics/clinical-placements -> "Clinical Placements".
func slugTitle(rawURL string) string {
	p := strings.Trim(urlPath(rawURL), "/")
	if p == "" {
		return rawURL
	}
	segments := strings.Split(p, "/")
	last := segments[len(segments)-1]
	last = strings.TrimSuffix(last, filepath.Ext(last))
	words := strings.FieldsFunc(last, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	if len(words) == 0 {
		return rawURL
	}
	return strings.Join(words, " ")
}

func urlPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return rawURL
	}
	return u.Path
}
