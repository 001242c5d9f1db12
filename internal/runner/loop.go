package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/nav-agent/internal/models"
	"github.com/example/nav-agent/internal/prompts"
	"github.com/example/nav-agent/internal/providers/llm"
)

// Loop runs the controller for one or more cycles and self-tunes the
// planner prompt between cycles when a cycle underperforms.
type Loop struct {
	Controller *Controller
	Client     llm.Client
	Prompts    *prompts.Renderer
	Log        *zap.Logger

	// TuneThreshold is the success rate below which a prompt revision
	// is requested after a cycle.
	TuneThreshold float64
	// HistoryDir receives a copy of each revised prompt; empty disables
	// the copy (revision still applies in-process).
	HistoryDir string
}

// Run executes the task list for the given number of cycles under a
// single run id.
func (l *Loop) Run(ctx context.Context, cycles int, taskList []models.Task, scaffolding map[models.Persona]models.ContextTable) error {
	runID := uuid.NewString()
	l.Log.Info("run start",
		zap.String("run_id", runID),
		zap.Int("cycles", cycles),
		zap.Int("tasks", len(taskList)),
	)
	for cycle := 1; cycle <= cycles; cycle++ {
		res, err := l.Controller.RunCycle(ctx, runID, cycle, taskList, scaffolding)
		if err != nil {
			return fmt.Errorf("cycle %d: %w", cycle, err)
		}
		l.Log.Info("cycle complete",
			zap.Int("cycle", cycle),
			zap.Int("successes", res.Successes),
			zap.Int("tasks", res.Tasks),
			zap.Float64("total_cost_usd", res.TotalCost),
		)
		l.maybeTunePrompt(ctx, res)
	}
	return nil
}

// maybeTunePrompt asks the model for a revised planner prompt when the
// cycle's success rate fell below the threshold. Failures here are
// logged and ignored; tuning is never load-bearing.
func (l *Loop) maybeTunePrompt(ctx context.Context, res CycleResult) {
	tasks := res.Tasks
	if tasks < 1 {
		tasks = 1
	}
	rate := float64(res.Successes) / float64(tasks)
	if rate >= l.TuneThreshold {
		return
	}
	resp, err := l.Client.Complete(ctx, prompts.TunePrompt(l.Prompts.PlannerBody(), rate, res.TotalCost))
	if err != nil {
		l.Log.Warn("prompt tuning call failed", zap.Error(err))
		return
	}
	var payload struct {
		Prompt string `json:"prompt"`
	}
	if err := decodeObject(resp.Text, &payload); err != nil || strings.TrimSpace(payload.Prompt) == "" {
		l.Log.Warn("prompt tuning returned no usable prompt")
		return
	}
	l.Prompts.SetPlannerBody(payload.Prompt)
	l.Log.Info("planner prompt revised", zap.Float64("success_rate", rate))
	if l.HistoryDir == "" {
		return
	}
	if err := os.MkdirAll(l.HistoryDir, 0o755); err != nil {
		l.Log.Warn("create prompt history dir", zap.Error(err))
		return
	}
	path := filepath.Join(l.HistoryDir, fmt.Sprintf("main_agent_cycle_%d.md", time.Now().Unix()))
	if err := os.WriteFile(path, []byte(l.Prompts.PlannerBody()), 0o644); err != nil {
		l.Log.Warn("save revised prompt", zap.Error(err))
		return
	}
	l.Log.Info("revised prompt saved", zap.String("path", path))
}
