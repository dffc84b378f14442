// Package export runs checkpointed, resumable batch exports of every display
// group and assembles the final artifact.
package export

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/takak2166/notion2csv/internal/checkpoint"
	"github.com/takak2166/notion2csv/internal/groups"
	"github.com/takak2166/notion2csv/internal/logger"
	"github.com/takak2166/notion2csv/internal/models"
	"github.com/takak2166/notion2csv/internal/sheet"
	"github.com/takak2166/notion2csv/internal/source"
)

var (
	ErrInvalidMode     = errors.New("unknown export mode")
	ErrRunInProgress   = errors.New("an export is already running")
	ErrUnknownGroup    = errors.New("unknown group")
	errGroupNotIndexed = errors.New("group is no longer present in the database")
)

// GroupBuilder builds the rows of one display group
type GroupBuilder interface {
	BuildGroup(ctx context.Context, g models.DisplayGroup) ([]models.Row, error)
}

// Config describes the database being exported
type Config struct {
	DatabaseID    string
	PropertyName  string
	Groups        []models.DisplayGroup
	Retry         source.RetryPolicy
	MaxCellLength int
}

// Request is one invocation of the engine
type Request struct {
	Mode        models.ExportMode
	RetryFailed bool
	// MaxGroups and MaxDuration cap the work of this invocation; zero means
	// no cap. At least one group is processed per invocation.
	MaxGroups   int
	MaxDuration time.Duration
	OutputDir   string
}

// Result summarises an invocation
type Result struct {
	RunID        string
	Resumed      bool
	State        models.RunState
	Completed    []string
	Failed       map[string]string
	Pending      []string
	RowsWritten  int
	Retries      int
	ArtifactPath string
	// NeedsResume is set when a cap stopped the run with groups left to do.
	NeedsResume bool
}

// Engine drives batch exports
type Engine struct {
	store   *checkpoint.Store
	builder GroupBuilder
	cfg     Config
	now     func() time.Time
	running atomic.Bool
}

// New creates an Engine
func New(store *checkpoint.Store, builder GroupBuilder, cfg Config) *Engine {
	if cfg.MaxCellLength <= 0 {
		cfg.MaxCellLength = sheet.DefaultMaxCellLength
	}
	if cfg.Retry.Attempts <= 0 {
		cfg.Retry = source.DefaultRetryPolicy()
	}
	return &Engine{
		store:   store,
		builder: builder,
		cfg:     cfg,
		now:     time.Now,
	}
}

// SessionKey is the checkpoint session of mode
func (e *Engine) SessionKey(mode models.ExportMode) string {
	return checkpoint.SessionKey(e.cfg.DatabaseID, e.cfg.PropertyName, mode)
}

// Run starts a new run for req.Mode or resumes the active one, processes
// pending groups until done or a cap is hit, and assembles the artifact once
// every group has completed.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	if !req.Mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, req.Mode)
	}
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer e.running.Store(false)

	cp, resumed, err := e.open(ctx, req.Mode)
	if err != nil {
		return nil, err
	}

	if req.RetryFailed && len(cp.Failed) > 0 {
		logger.Info("Retrying failed groups", map[string]interface{}{
			"run_id": cp.RunID,
			"groups": len(cp.Failed),
		})
		cp.Failed = map[string]string{}
	}

	cp.State = models.StateRunning
	if err := e.store.Save(ctx, cp); err != nil {
		return nil, err
	}

	index := make(map[string]models.DisplayGroup, len(e.cfg.Groups))
	for _, g := range e.cfg.Groups {
		index[g.Name] = g
	}

	started := e.now()
	processed := 0
	capped := false
	for _, name := range cp.Pending() {
		if processed > 0 && e.capReached(req, processed, started) {
			capped = true
			break
		}

		if err := e.process(ctx, cp, name, index); err != nil {
			cp.State = models.StatePartial
			if saveErr := e.store.Save(context.WithoutCancel(ctx), cp); saveErr != nil {
				logger.Error("Failed to save checkpoint", saveErr, map[string]interface{}{"run_id": cp.RunID})
			}
			return nil, err
		}
		processed++
	}

	result := &Result{RunID: cp.RunID, Resumed: resumed}
	if cp.AllCompleted() {
		path, err := e.assemble(ctx, cp, req.OutputDir)
		if err != nil {
			cp.State = models.StatePartial
			if saveErr := e.store.Save(ctx, cp); saveErr != nil {
				logger.Error("Failed to save checkpoint", saveErr, map[string]interface{}{"run_id": cp.RunID})
			}
			return nil, err
		}
		result.ArtifactPath = path
		cp.State = models.StateComplete
	} else {
		cp.State = models.StatePartial
		result.NeedsResume = capped && len(cp.Pending()) > 0
	}
	if err := e.store.Save(ctx, cp); err != nil {
		return nil, err
	}

	if cp.State == models.StateComplete && req.Mode != models.ModeUnified {
		if err := e.store.Delete(ctx, cp.RunID); err != nil {
			return nil, err
		}
	}

	result.State = cp.State
	result.Completed = cp.Completed
	result.Failed = cp.Failed
	result.Pending = cp.Pending()
	result.RowsWritten = cp.RowsWritten
	result.Retries = cp.Retries

	logger.Info("Export run finished", map[string]interface{}{
		"run_id":    cp.RunID,
		"state":     string(cp.State),
		"completed": len(cp.Completed),
		"failed":    len(cp.Failed),
		"pending":   len(result.Pending),
		"artifact":  result.ArtifactPath,
	})
	return result, nil
}

// capReached reports whether this invocation has done its share of work.
// The first pending group is always attempted so every invocation makes
// progress.
func (e *Engine) capReached(req Request, processed int, started time.Time) bool {
	if req.MaxGroups > 0 && processed >= req.MaxGroups {
		return true
	}
	return req.MaxDuration > 0 && e.now().Sub(started) >= req.MaxDuration
}

// open resumes the active run of the session or creates a new one.
func (e *Engine) open(ctx context.Context, mode models.ExportMode) (*models.RunCheckpoint, bool, error) {
	key := e.SessionKey(mode)
	cp, err := e.store.FindActive(ctx, key)
	if err == nil {
		logger.Info("Resuming export run", map[string]interface{}{
			"run_id":    cp.RunID,
			"mode":      string(mode),
			"completed": len(cp.Completed),
			"failed":    len(cp.Failed),
			"pending":   len(cp.Pending()),
		})
		return cp, true, nil
	}
	if !errors.Is(err, checkpoint.ErrNotFound) {
		return nil, false, err
	}

	ordered := groups.Ascending(e.cfg.Groups)
	names := make([]string, 0, len(ordered))
	for _, g := range ordered {
		names = append(names, g.Name)
	}
	cp = &models.RunCheckpoint{
		SessionKey:   key,
		Mode:         mode,
		DatabaseID:   e.cfg.DatabaseID,
		PropertyName: e.cfg.PropertyName,
		State:        models.StateNotStarted,
		Groups:       names,
		Failed:       map[string]string{},
	}
	if err := e.store.Create(ctx, cp); err != nil {
		return nil, false, err
	}
	logger.Info("Starting export run", map[string]interface{}{
		"run_id": cp.RunID,
		"mode":   string(mode),
		"groups": len(names),
	})
	return cp, false, nil
}

// process builds one group and records the outcome in cp. Only context
// errors are returned; any other failure marks the group failed.
func (e *Engine) process(ctx context.Context, cp *models.RunCheckpoint, name string, index map[string]models.DisplayGroup) error {
	g, ok := index[name]
	if !ok {
		return e.fail(ctx, cp, name, errGroupNotIndexed)
	}

	logger.Info("Exporting group", map[string]interface{}{
		"run_id": cp.RunID,
		"group":  name,
		"pages":  g.Count,
	})

	start := e.now()
	rows, err := e.build(ctx, cp, g)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return e.fail(ctx, cp, name, err)
	}

	prev := *cp
	cp.Completed = append(slices.Clone(cp.Completed), name)
	cp.RowsWritten += len(rows)
	cp.RecordDuration(e.now().Sub(start))
	if err := e.store.CompleteGroup(ctx, cp, name, rows); err != nil {
		// The group's rows are not stored, so it must stay pending.
		cp.Completed, cp.RowsWritten, cp.DurationsMS = prev.Completed, prev.RowsWritten, prev.DurationsMS
		return fmt.Errorf("failed to store group %q: %w", name, err)
	}

	logger.Info("Group completed", map[string]interface{}{
		"run_id":   cp.RunID,
		"group":    name,
		"rows":     len(rows),
		"duration": e.now().Sub(start).Round(time.Millisecond).String(),
		"eta":      cp.ETA().Round(time.Second).String(),
		"pending":  len(cp.Pending()),
	})
	return nil
}

func (e *Engine) fail(ctx context.Context, cp *models.RunCheckpoint, name string, cause error) error {
	logger.Error("Group failed", cause, map[string]interface{}{
		"run_id": cp.RunID,
		"group":  name,
	})
	cp.Failed[name] = cause.Error()
	return e.store.Save(ctx, cp)
}

// build runs the builder under the group retry policy. Panics fail the
// group without further attempts.
func (e *Engine) build(ctx context.Context, cp *models.RunCheckpoint, g models.DisplayGroup) ([]models.Row, error) {
	var rows []models.Row
	op := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = backoff.Permanent(fmt.Errorf("panic while building group: %v", r))
			}
		}()
		rows, err = e.builder.BuildGroup(ctx, g)
		return err
	}
	err := source.Do(ctx, e.cfg.Retry, op, func(err error, wait time.Duration) {
		cp.Retries++
		logger.Warn("Retrying group", map[string]interface{}{
			"group": g.Name,
			"error": err.Error(),
			"wait":  wait.String(),
		})
	})
	return rows, err
}

// Group builds a single display group outside of any run.
func (e *Engine) Group(ctx context.Context, name string) (models.DisplayGroup, []models.Row, error) {
	g, ok := groups.Find(e.cfg.Groups, name)
	if !ok {
		return models.DisplayGroup{}, nil, fmt.Errorf("%w: %q", ErrUnknownGroup, name)
	}
	var retries models.RunCheckpoint
	rows, err := e.build(ctx, &retries, g)
	if err != nil {
		return g, nil, fmt.Errorf("failed to export group %q: %w", g.Name, err)
	}
	return g, rows, nil
}
