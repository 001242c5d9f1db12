// Package scaffold builds the persona-scoped context table handed to
// the prompt templates: a bounded slice of the site graph that a given
// user archetype would plausibly care about.
package scaffold

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/example/nav-agent/internal/graph"
	"github.com/example/nav-agent/internal/models"
)

// personaPrefixes maps each persona to the URL path prefixes of its
// corner of the site.
var personaPrefixes = map[models.Persona][]string{
	models.PersonaComputerScience: {
		"/academics/college/engineering/departments/computer-science",
		"/academics/majors-programs/computer-science",
		"/academics/college/engineering/resources",
	},
	models.PersonaNursing: {
		"/nurs",
		"/rcnp",
		"/academics/majors-programs/nursing",
	},
	models.PersonaKinesiology: {
		"/academics/college/communication-education/departments/kinesiology",
		"/academics/majors-programs/kinesiology",
	},
}

// globalSupportPrefixes are pages every persona gets a slice of:
// admissions, application, and cost/aid.
var globalSupportPrefixes = []string{"/admissions", "/apply", "/cost-aid"}

// Builder derives context tables from a graph snapshot. Limit caps the
// table size; SupportLimit caps the shared support-page tail.
type Builder struct {
	Graph        *graph.Graph
	Limit        int
	SupportLimit int
}

// Build returns the context table for persona. The result is
// deterministic for a given graph snapshot: persona pages in snapshot
// order, then up to SupportLimit support pages sorted by title, deduped
// by normalized path and truncated to Limit.
func (b *Builder) Build(persona models.Persona) (models.ContextTable, error) {
	prefixes, ok := personaPrefixes[persona]
	if !ok {
		return nil, fmt.Errorf("unknown persona %q", persona)
	}

	var table models.ContextTable
	for _, n := range b.Graph.Nodes() {
		if matchesPrefix(n.URL, prefixes) {
			table = append(table, entry(n))
		}
	}

	var support models.ContextTable
	for _, n := range b.Graph.Nodes() {
		if matchesPrefix(n.URL, globalSupportPrefixes) {
			support = append(support, entry(n))
		}
	}
	sort.SliceStable(support, func(i, j int) bool { return support[i].Title < support[j].Title })
	if len(support) > b.SupportLimit {
		support = support[:b.SupportLimit]
	}
	table = append(table, support...)

	seen := make(map[string]struct{}, len(table))
	deduped := make(models.ContextTable, 0, len(table))
	for _, e := range table {
		key := normalizePath(e.URL)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, e)
		if len(deduped) >= b.Limit {
			break
		}
	}
	return deduped, nil
}

// BuildAll returns the context table for every known persona, keyed by
// persona name.
func (b *Builder) BuildAll() (map[models.Persona]models.ContextTable, error) {
	out := make(map[models.Persona]models.ContextTable, len(personaPrefixes))
	for persona := range personaPrefixes {
		table, err := b.Build(persona)
		if err != nil {
			return nil, err
		}
		out[persona] = table
	}
	return out, nil
}

func entry(n graph.Node) models.ContextEntry {
	title := n.Title
	if title == "" {
		title = n.URL
	}
	return models.ContextEntry{Title: title, URL: n.URL}
}

func matchesPrefix(rawURL string, prefixes []string) bool {
	path := normalizePath(rawURL)
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, strings.TrimRight(prefix, "/")) {
			return true
		}
	}
	return false
}

func normalizePath(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}
	p = strings.TrimRight(strings.ToLower(p), "/")
	if p == "" {
		return "/"
	}
	return p
}
