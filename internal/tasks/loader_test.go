package tasks

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/nav-agent/internal/models"
)

func writeTasks(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeTasks(t, `[
		{"id": "t1", "persona": "nursing", "query": "find placements", "expected_url": "https://u.example/nurs/placements"},
		{"id": "t2", "persona": "computer_science", "query": "find advising", "expected_url": "https://u.example/cs/advising"}
	]`)
	list, err := Load(path)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "t1", list[0].ID)
	assert.Equal(t, models.PersonaNursing, list[0].Persona)
	// order is preserved
	assert.Equal(t, "t2", list[1].ID)
}

func TestLoadUnknownPersona(t *testing.T) {
	path := writeTasks(t, `[{"id": "t1", "persona": "astrology", "query": "q", "expected_url": "u"}]`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown persona")
}

func TestLoadMissingFields(t *testing.T) {
	path := writeTasks(t, `[{"id": "t1", "persona": "nursing", "query": "", "expected_url": "u"}]`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadEmptyOrInvalid(t *testing.T) {
	_, err := Load(writeTasks(t, `[]`))
	require.Error(t, err)

	_, err = Load(writeTasks(t, `{not json`))
	require.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
