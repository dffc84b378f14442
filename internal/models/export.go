package models

import (
	"slices"
	"time"
)

// DisplayGroup is the externally visible unit of export: one display name,
// the number of pages seen with it and every name that may match those pages.
type DisplayGroup struct {
	Name      string   `json:"name"`
	Count     int      `json:"count"`
	Canonical []string `json:"canonical"`
}

// ContentKind records which section a row's content came from
type ContentKind string

const (
	KindNone   ContentKind = ""
	KindVideo  ContentKind = "video"
	KindLesson ContentKind = "lesson"
)

// Row is one exported page
type Row struct {
	PageID  string      `json:"page_id"`
	Group   string      `json:"group"`
	Title   string      `json:"title"`
	Section string      `json:"section"`
	Order   string      `json:"order"`
	Content string      `json:"content"`
	Kind    ContentKind `json:"kind"`
}

// ExportMode selects the final artifact of a batch run
type ExportMode string

const (
	ModeArchive  ExportMode = "archive"
	ModeUnified  ExportMode = "unified"
	ModeWorkbook ExportMode = "workbook"
)

// Valid reports whether m is a known mode
func (m ExportMode) Valid() bool {
	return m == ModeArchive || m == ModeUnified || m == ModeWorkbook
}

// RunState is the lifecycle state of a batch run
type RunState string

const (
	StateNotStarted RunState = "not_started"
	StateRunning    RunState = "running"
	StatePartial    RunState = "partial"
	StateComplete   RunState = "complete"
)

// Terminal reports whether a run in this state can no longer be resumed
func (s RunState) Terminal() bool { return s == StateComplete }

// DurationWindow is the number of recent group durations used for ETA.
const DurationWindow = 10

// RunCheckpoint is a self-describing snapshot of a batch run.
type RunCheckpoint struct {
	RunID        string            `json:"run_id"`
	SessionKey   string            `json:"session_key"`
	Mode         ExportMode        `json:"mode"`
	DatabaseID   string            `json:"database_id"`
	PropertyName string            `json:"property_name"`
	State        RunState          `json:"state"`
	Groups       []string          `json:"groups"`
	Completed    []string          `json:"completed"`
	Failed       map[string]string `json:"failed"`
	Retries      int               `json:"retries"`
	DurationsMS  []int64           `json:"durations_ms"`
	RowsWritten  int               `json:"rows_written"`
	RowStore     string            `json:"row_store"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// IsCompleted reports whether group finished successfully
func (c *RunCheckpoint) IsCompleted(group string) bool {
	return slices.Contains(c.Completed, group)
}

// IsFailed reports whether group exhausted its retries
func (c *RunCheckpoint) IsFailed(group string) bool {
	_, ok := c.Failed[group]
	return ok
}

// Pending returns the groups neither completed nor failed, in run order.
func (c *RunCheckpoint) Pending() []string {
	var out []string
	for _, g := range c.Groups {
		if !c.IsCompleted(g) && !c.IsFailed(g) {
			out = append(out, g)
		}
	}
	return out
}

// AllCompleted reports whether every group of the run has completed
func (c *RunCheckpoint) AllCompleted() bool {
	for _, g := range c.Groups {
		if !c.IsCompleted(g) {
			return false
		}
	}
	return true
}

// RecordDuration appends d to the rolling window, dropping the oldest entry
// once the window is full.
func (c *RunCheckpoint) RecordDuration(d time.Duration) {
	c.DurationsMS = append(c.DurationsMS, d.Milliseconds())
	if n := len(c.DurationsMS); n > DurationWindow {
		c.DurationsMS = slices.Clone(c.DurationsMS[n-DurationWindow:])
	}
}

// AverageDuration is the mean of the rolling window
func (c *RunCheckpoint) AverageDuration() time.Duration {
	if len(c.DurationsMS) == 0 {
		return 0
	}
	var sum int64
	for _, ms := range c.DurationsMS {
		sum += ms
	}
	return time.Duration(sum/int64(len(c.DurationsMS))) * time.Millisecond
}

// ETA estimates the time left for the pending groups.
func (c *RunCheckpoint) ETA() time.Duration {
	return c.AverageDuration() * time.Duration(len(c.Pending()))
}
