// Package tasks loads the fixed task list the eval loop runs against.
package tasks

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/example/nav-agent/internal/models"
)

// Load reads an ordered JSON array of tasks and validates each record.
// A task with an unknown persona or missing fields fails the run before
// any model call happens.
func Load(path string) ([]models.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tasks file %s: %w", path, err)
	}
	var list []models.Task
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse tasks file %s: %w", path, err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("tasks file %s is empty", path)
	}
	for i, t := range list {
		if t.ID == "" || t.Query == "" || t.ExpectedURL == "" {
			return nil, fmt.Errorf("task %d is missing id, query or expected_url", i)
		}
		if !t.Persona.Known() {
			return nil, fmt.Errorf("task %s: unknown persona %q", t.ID, t.Persona)
		}
	}
	return list, nil
}
