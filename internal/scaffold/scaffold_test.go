package scaffold

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/nav-agent/internal/graph"
	"github.com/example/nav-agent/internal/models"
)

const site = "https://u.example"

func testGraph() *graph.Graph {
	nodes := []graph.Node{
		{URL: site + "/nurs/clinical-placements", Title: "Clinical Placements"},
		{URL: site + "/nurs", Title: "School of Nursing"},
		{URL: site + "/rcnp/overview", Title: "RN Completion Program"},
		{URL: site + "/academics/majors-programs/nursing", Title: "Nursing Major"},
		{URL: site + "/academics/majors-programs/computer-science", Title: "CS Major"},
		{URL: site + "/academics/college/engineering/departments/computer-science/faculty", Title: "CS Faculty"},
		{URL: site + "/academics/college/communication-education/departments/kinesiology", Title: "Kinesiology Dept"},
		{URL: site + "/admissions/visit", Title: "Visit Campus"},
		{URL: site + "/apply/freshman", Title: "Apply as Freshman"},
		{URL: site + "/cost-aid/tuition", Title: "Tuition and Fees"},
		{URL: site + "/athletics", Title: "Athletics"},
	}
	return graph.New(nodes)
}

func newBuilder() *Builder {
	return &Builder{Graph: testGraph(), Limit: 60, SupportLimit: 20}
}

func TestBuildNursing(t *testing.T) {
	table, err := newBuilder().Build(models.PersonaNursing)
	require.NoError(t, err)

	urls := make([]string, len(table))
	for i, e := range table {
		urls[i] = e.URL
	}
	assert.Contains(t, urls, site+"/nurs/clinical-placements")
	assert.Contains(t, urls, site+"/rcnp/overview")
	assert.Contains(t, urls, site+"/academics/majors-programs/nursing")
	// support pages come along for every persona
	assert.Contains(t, urls, site+"/admissions/visit")
	assert.Contains(t, urls, site+"/cost-aid/tuition")
	// out-of-scope pages do not
	assert.NotContains(t, urls, site+"/athletics")
	assert.NotContains(t, urls, site+"/academics/majors-programs/computer-science")
}

func TestBuildDeterministic(t *testing.T) {
	b := newBuilder()
	first, err := b.Build(models.PersonaComputerScience)
	require.NoError(t, err)
	second, err := b.Build(models.PersonaComputerScience)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildUnknownPersona(t *testing.T) {
	_, err := newBuilder().Build(models.Persona("astrology"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown persona")
}

func TestBuildRespectsLimit(t *testing.T) {
	nodes := make([]graph.Node, 0, 100)
	for i := 0; i < 100; i++ {
		nodes = append(nodes, graph.Node{
			URL:   fmt.Sprintf("%s/nurs/page-%03d", site, i),
			Title: fmt.Sprintf("Nursing Page %03d", i),
		})
	}
	b := &Builder{Graph: graph.New(nodes), Limit: 10, SupportLimit: 5}
	table, err := b.Build(models.PersonaNursing)
	require.NoError(t, err)
	assert.Len(t, table, 10)
}

func TestBuildDedupsByNormalizedPath(t *testing.T) {
	nodes := []graph.Node{
		{URL: site + "/nurs/clinical-placements", Title: "Clinical Placements"},
		{URL: site + "/nurs/clinical-placements/", Title: "Clinical Placements (trailing slash)"},
		{URL: site + "/NURS/Clinical-Placements", Title: "Clinical Placements (case)"},
	}
	b := &Builder{Graph: graph.New(nodes), Limit: 60, SupportLimit: 20}
	table, err := b.Build(models.PersonaNursing)
	require.NoError(t, err)
	assert.Len(t, table, 1)
}

func TestBuildSupportLimitSortedByTitle(t *testing.T) {
	nodes := []graph.Node{
		{URL: site + "/nurs", Title: "School of Nursing"},
		{URL: site + "/admissions/c", Title: "C Page"},
		{URL: site + "/admissions/a", Title: "A Page"},
		{URL: site + "/admissions/b", Title: "B Page"},
	}
	b := &Builder{Graph: graph.New(nodes), Limit: 60, SupportLimit: 2}
	table, err := b.Build(models.PersonaNursing)
	require.NoError(t, err)
	require.Len(t, table, 3)
	assert.Equal(t, "School of Nursing", table[0].Title)
	assert.Equal(t, "A Page", table[1].Title)
	assert.Equal(t, "B Page", table[2].Title)
}

func TestBuildAll(t *testing.T) {
	all, err := newBuilder().BuildAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	for persona, table := range all {
		assert.True(t, persona.Known())
		assert.NotEmpty(t, table, "persona %s has an empty table", persona)
	}
}
