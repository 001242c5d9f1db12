package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/nav-agent/internal/ledger"
	"github.com/example/nav-agent/internal/models"
	"github.com/example/nav-agent/internal/pricing"
)

// LedgerWriter is the slice of the ledger store the controller needs.
type LedgerWriter interface {
	SavePrompt(ctx context.Context, body string) (int64, error)
	SaveScaffold(ctx context.Context, body string) (int64, error)
	LogTask(ctx context.Context, e ledger.Entry) error
}

// Controller drives the per-task state machine:
// PLANNING -> ATTEMPT -> CRITIQUE -> (RETRY -> ATTEMPT | DONE).
// Tasks run strictly one at a time; a failing task never aborts the
// batch.
type Controller struct {
	Planner  *Planner
	Subagent *SubagentRunner
	Critique *CritiqueRunner
	Ledger   LedgerWriter
	Pricing  *pricing.Table
	Log      *zap.Logger

	// Model names the active model for cost estimation when the
	// provider reports token counts but no cost.
	Model string
	// MaxAttempts caps subagent attempts per task. Reaching the cap on
	// a retry verdict ends the task as fail.
	MaxAttempts int
}

// CycleResult summarizes one pass over the task list.
type CycleResult struct {
	Tasks     int
	Successes int
	TotalCost float64
}

// RunCycle runs every task once and writes exactly one ledger row per
// task. The prompt and scaffolding bodies in force are stored
// content-addressed so later analysis can attribute outcomes to them.
func (c *Controller) RunCycle(ctx context.Context, runID string, cycle int, taskList []models.Task, scaffolding map[models.Persona]models.ContextTable) (CycleResult, error) {
	promptID, err := c.Ledger.SavePrompt(ctx, c.Planner.Prompts.PlannerBody())
	if err != nil {
		return CycleResult{}, fmt.Errorf("save prompt body: %w", err)
	}
	scaffoldBody, err := json.MarshalIndent(scaffolding, "", "  ")
	if err != nil {
		return CycleResult{}, err
	}
	scaffoldID, err := c.Ledger.SaveScaffold(ctx, string(scaffoldBody))
	if err != nil {
		return CycleResult{}, fmt.Errorf("save scaffold body: %w", err)
	}

	res := CycleResult{Tasks: len(taskList)}
	for _, task := range taskList {
		table, ok := scaffolding[task.Persona]
		if !ok {
			return res, fmt.Errorf("no scaffolding for persona %q", task.Persona)
		}
		c.Log.Info("task start",
			zap.Int("cycle", cycle),
			zap.String("task", task.ID),
			zap.String("persona", string(task.Persona)),
		)

		out := c.runTask(ctx, task, table)

		entry := c.buildEntry(runID, cycle, task, promptID, scaffoldID, out)
		if err := c.Ledger.LogTask(ctx, entry); err != nil {
			return res, fmt.Errorf("task %s: %w", task.ID, err)
		}
		if out.success {
			res.Successes++
		}
		res.TotalCost += out.subUsage.cost + out.critUsage.cost

		c.Log.Info("task done",
			zap.String("task", task.ID),
			zap.String("final", string(out.finalState)),
			zap.Bool("success", out.success),
			zap.Int("attempts", out.attempts),
			zap.Stringp("predicted_url", out.predictedURL),
			zap.Float64("cost_usd", out.subUsage.cost+out.critUsage.cost),
			zap.Duration("elapsed", out.elapsed),
		)
	}
	return res, nil
}

// taskOutcome is the controller's per-task working state, discarded
// once the ledger row is written.
type taskOutcome struct {
	finalState    models.FinalState
	success       bool
	attempts      int
	predictedURL  *string
	critiqueState models.VerdictState
	justification string
	subUsage      usageTotals
	critUsage     usageTotals
	rawSub        json.RawMessage
	rawCrit       json.RawMessage
	elapsed       time.Duration
}

func (c *Controller) runTask(ctx context.Context, task models.Task, table models.ContextTable) (out taskOutcome) {
	start := time.Now()
	out.finalState = models.FinalFail
	defer func() { out.elapsed = time.Since(start) }()

	// PLANNING. The brief is advisory, so a failed planning call
	// degrades to an empty brief instead of failing the task.
	brief, _, err := c.Planner.Plan(ctx, task, table)
	if err != nil {
		c.Log.Warn("planning call failed, continuing without brief",
			zap.String("task", task.ID), zap.Error(err))
	} else if brief.TaskBrief != "" {
		c.Log.Debug("planner brief", zap.String("task", task.ID), zap.String("brief", brief.TaskBrief))
	}

	hint := ""
	for attempt := 1; attempt <= c.MaxAttempts; attempt++ {
		out.attempts = attempt
		query := augmentQuery(task.Query, brief.TaskBrief, hint)

		// ATTEMPT
		answer, subResp, err := c.Subagent.Run(ctx, task.Persona, query, table)
		if subResp != nil {
			out.rawSub = subResp.Raw
			out.subUsage.add(c.Model, subResp.Usage, c.Pricing)
		}
		if err != nil {
			out.justification = err.Error()
			out.success = false
			return out
		}

		// CRITIQUE
		verdict, critResp, err := c.Critique.Run(ctx, task.Persona, query, task.ExpectedURL, answer)
		if critResp != nil {
			out.rawCrit = critResp.Raw
			out.critUsage.add(c.Model, critResp.Usage, c.Pricing)
		}
		if err != nil {
			out.justification = err.Error()
			out.success = false
			return out
		}

		out.critiqueState = verdict.State
		out.justification = verdict.Justification
		out.predictedURL = predictedURL(answer, verdict)

		switch verdict.State {
		case models.VerdictOK:
			out.finalState = models.FinalOK
		case models.VerdictRetry:
			if attempt < c.MaxAttempts {
				hint = verdict.Justification
				c.Log.Debug("retrying attempt",
					zap.String("task", task.ID),
					zap.Int("attempt", attempt),
					zap.String("hint", hint),
				)
				continue
			}
			// Retry budget exhausted.
			out.finalState = models.FinalFail
		case models.VerdictFail:
			out.finalState = models.FinalFail
		}
		break
	}

	out.success = derivedSuccess(task.ExpectedURL, out.predictedURL, out.critiqueState)
	return out
}

func (c *Controller) buildEntry(runID string, cycle int, task models.Task, promptID, scaffoldID int64, out taskOutcome) ledger.Entry {
	e := ledger.Entry{
		RunID:        runID,
		Cycle:        cycle,
		TaskID:       task.ID,
		Persona:      string(task.Persona),
		Success:      out.success,
		FinalState:   string(out.finalState),
		ExpectedURL:  task.ExpectedURL,
		PredictedURL: out.predictedURL,
		PromptID:     promptID,
		ScaffoldID:   scaffoldID,
		Attempts:     out.attempts,
		TotalCost:    out.subUsage.cost + out.critUsage.cost,
		WallTime:     out.elapsed,

		CritiqueState:         string(out.critiqueState),
		CritiqueJustification: out.justification,
		RawResponse:           out.rawSub,
		RawCritique:           out.rawCrit,
	}
	if out.subUsage.haveTokens {
		e.SubagentTokensIn, e.SubagentTokensOut = intPtr(out.subUsage.in), intPtr(out.subUsage.out)
	}
	if out.subUsage.haveTokens || out.subUsage.haveCost {
		e.SubagentCost = floatPtr(out.subUsage.cost)
	}
	if out.critUsage.haveTokens {
		e.CritiqueTokensIn, e.CritiqueTokensOut = intPtr(out.critUsage.in), intPtr(out.critUsage.out)
	}
	if out.critUsage.haveTokens || out.critUsage.haveCost {
		e.CritiqueCost = floatPtr(out.critUsage.cost)
	}
	return e
}

// usageTotals accumulates token counts and cost across the attempts of
// one task. When a call reports no cost of its own, the pricing table
// estimate for that call is used instead.
type usageTotals struct {
	in, out    int
	haveTokens bool
	cost       float64
	haveCost   bool
}

func (u *usageTotals) add(model string, usage models.Usage, table *pricing.Table) {
	callIn, callOut := 0, 0
	if usage.InputTokens != nil {
		callIn = *usage.InputTokens
		u.in += callIn
		u.haveTokens = true
	}
	if usage.OutputTokens != nil {
		callOut = *usage.OutputTokens
		u.out += callOut
		u.haveTokens = true
	}
	if usage.CostUSD != nil {
		u.cost += *usage.CostUSD
		u.haveCost = true
	} else if table != nil {
		u.cost += table.EstimateCost(model, callIn, callOut)
	}
}

// predictedURL prefers the critique's revised URL over the subagent's
// chosen one.
func predictedURL(answer models.SubagentAnswer, verdict models.CritiqueVerdict) *string {
	if verdict.RevisedURL != nil && *verdict.RevisedURL != "" {
		return verdict.RevisedURL
	}
	return answer.ChosenURL
}

// derivedSuccess grades the final URL against the expected one: the
// expected URL must be contained in the prediction, and a fail verdict
// always grades false regardless of URL.
func derivedSuccess(expectedURL string, predicted *string, state models.VerdictState) bool {
	if state == models.VerdictFail {
		return false
	}
	return predicted != nil && strings.Contains(*predicted, expectedURL)
}

func augmentQuery(query, brief, hint string) string {
	out := query
	if brief != "" {
		out = brief + "\n\nOriginal request: " + query
	}
	if hint != "" {
		out += "\n\nHint from previous attempt: " + hint
	}
	return out
}

func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }
