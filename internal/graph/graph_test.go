package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"nodes": [
			{"url": "https://u.example/", "title": "Home", "links": ["https://u.example/nurs"]},
			{"url": "https://u.example/nurs", "title": "School of Nursing"}
		]
	}`), 0o644))

	g, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())

	n, ok := g.Node("https://u.example/nurs")
	require.True(t, ok)
	assert.Equal(t, "School of Nursing", n.Title)

	_, ok = g.Node("https://u.example/missing")
	assert.False(t, ok)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"nodes": []}`), 0o644))
	_, err = Load(empty)
	require.Error(t, err)
}

func TestNewDropsDuplicates(t *testing.T) {
	g := New([]Node{
		{URL: "https://u.example/a", Title: "First"},
		{URL: "https://u.example/a", Title: "Second"},
	})
	assert.Equal(t, 1, g.Len())
	n, _ := g.Node("https://u.example/a")
	assert.Equal(t, "First", n.Title)
}

func TestSlugTitle(t *testing.T) {
	assert.Equal(t, "Clinical Placements", slugTitle("https://u.example/nurs/clinical-placements"))
	assert.Equal(t, "Degree Roadmap", slugTitle("https://u.example/docs/degree_roadmap.pdf"))
	assert.Equal(t, "https://u.example/", slugTitle("https://u.example/"))
}

func TestEnrichTitlesFromHTMLSnapshot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nurs"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "nurs", "clinical-placements.html"),
		[]byte(`<html><head><title>  Clinical   Placement Requirements </title></head><body>x</body></html>`),
		0o644,
	))

	g := New([]Node{
		{URL: "https://u.example/nurs/clinical-placements"},
		{URL: "https://u.example/nurs/no-snapshot-file"},
		{URL: "https://u.example/nurs/already-titled", Title: "Keep Me"},
	})
	EnrichTitles(g, dir)

	n, _ := g.Node("https://u.example/nurs/clinical-placements")
	assert.Equal(t, "Clinical Placement Requirements", n.Title)

	// no snapshot file: falls back to the URL slug
	n, _ = g.Node("https://u.example/nurs/no-snapshot-file")
	assert.Equal(t, "No Snapshot File", n.Title)

	// existing titles are never overwritten
	n, _ = g.Node("https://u.example/nurs/already-titled")
	assert.Equal(t, "Keep Me", n.Title)
}

func TestEnrichTitlesIndexHTML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "rcnp"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "rcnp", "index.html"),
		[]byte(`<html><head><title>RN Completion Program</title></head></html>`),
		0o644,
	))

	g := New([]Node{{URL: "https://u.example/rcnp"}})
	EnrichTitles(g, dir)
	n, _ := g.Node("https://u.example/rcnp")
	assert.Equal(t, "RN Completion Program", n.Title)
}

func TestEnrichTitlesNoSnapshotDir(t *testing.T) {
	g := New([]Node{{URL: "https://u.example/cost-aid/tuition"}})
	EnrichTitles(g, "")
	n, _ := g.Node("https://u.example/cost-aid/tuition")
	assert.Equal(t, "Tuition", n.Title)
}
