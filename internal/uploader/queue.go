// Package uploader implements the client half of the upload pipeline: a
// queue of per-file tasks submitted concurrently to the ingestion endpoint,
// with local validation, simulated progress and per-task terminal outcomes.
package uploader

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	progressDispatched = 10
	progressStep       = 20
	progressCeiling    = 90
	progressInterval   = 200 * time.Millisecond
)

// Options configures a Queue. Every field is optional.
type Options struct {
	// Endpoint is the ingestion URL uploads are posted to.
	Endpoint string
	// MaxFileSizeMB caps accepted file size; larger files fail locally
	// without a network call.
	MaxFileSizeMB int64
	// AcceptedTypes filters queued files: ".ext" suffixes, exact MIME
	// types, or "type/*" wildcards. Empty accepts everything.
	AcceptedTypes []string
	// Concurrency caps concurrent submissions; zero or negative means
	// full fan-out.
	Concurrency int
	// HTTPClient overrides the transport used for submissions.
	HTTPClient *http.Client
	// Logger receives per-task lifecycle events.
	Logger *slog.Logger
	// OnChange observes every task mutation with a snapshot copy.
	// Deliveries are serialized in mutation order; the callback must
	// return promptly and must not mutate the queue.
	OnChange func(Task)
}

// Summary aggregates terminal outcomes of one Start batch.
type Summary struct {
	Succeeded int
	Failed    int
}

// Total returns the number of submissions the summary covers.
func (s Summary) Total() int {
	return s.Succeeded + s.Failed
}

// Queue owns the upload tasks of one session and orchestrates their
// submission. All methods are safe for concurrent use.
type Queue struct {
	mu    sync.Mutex
	tasks []*Task
	index map[string]*Task

	// notifyMu is acquired before mu by every mutating method and held
	// through the OnChange delivery, so snapshots reach the observer in
	// mutation order.
	notifyMu sync.Mutex

	opts   Options
	client *http.Client
	log    *slog.Logger
}

// NewQueue constructs an empty queue with defaults applied.
func NewQueue(opts Options) *Queue {
	if opts.Endpoint == "" {
		opts.Endpoint = "/api/upload"
	}
	if opts.MaxFileSizeMB <= 0 {
		opts.MaxFileSizeMB = 10
	}

	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Queue{
		index:  make(map[string]*Task),
		opts:   opts,
		client: client,
		log:    log,
	}
}

// Add queues one pending task per payload in submission order and returns
// the new task ids. Files sharing a name are kept as separate tasks.
func (q *Queue) Add(payloads ...FilePayload) []string {
	q.notifyMu.Lock()
	defer q.notifyMu.Unlock()

	q.mu.Lock()
	ids := make([]string, 0, len(payloads))
	created := make([]Task, 0, len(payloads))
	for _, payload := range payloads {
		task := &Task{
			ID:        newTaskID(payload.Name),
			Payload:   payload,
			Status:    StatusPending,
			CreatedAt: time.Now(),
		}
		q.tasks = append(q.tasks, task)
		q.index[task.ID] = task
		ids = append(ids, task.ID)
		created = append(created, *task)
	}
	q.mu.Unlock()

	if q.opts.OnChange != nil {
		for _, snapshot := range created {
			q.opts.OnChange(snapshot)
		}
	}
	return ids
}

// Remove erases the task when it is pending or errored. Removing an
// unknown id, or a task that is uploading or already succeeded, is a no-op.
func (q *Queue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	task, ok := q.index[id]
	if !ok {
		return false
	}
	if task.Status != StatusPending && task.Status != StatusError {
		return false
	}

	delete(q.index, id)
	for i, t := range q.tasks {
		if t.ID == id {
			q.tasks = append(q.tasks[:i], q.tasks[i+1:]...)
			break
		}
	}
	return true
}

// Clear empties the queue unconditionally, in-flight tasks included. An
// outstanding submission keeps running; its completion becomes a no-op
// because the task id no longer resolves.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.tasks = nil
	q.index = make(map[string]*Task)
}

// Tasks returns a snapshot of the queue in submission order.
func (q *Queue) Tasks() []Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Task, len(q.tasks))
	for i, t := range q.tasks {
		out[i] = *t
	}
	return out
}

// Task returns a snapshot of one task by id.
func (q *Queue) Task(id string) (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	task, ok := q.index[id]
	if !ok {
		return Task{}, false
	}
	return *task, true
}

// Len returns the number of queued tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Start submits every task that is pending at the time of the call and
// blocks until all of them reach a terminal status. Submissions run
// independently: by default all are issued at once, Options.Concurrency
// caps the fan-out. Leaving pending doubles as the claim on a task, so
// concurrent Start calls partition the pending set: a task is never
// submitted twice, and its outcome lands in exactly one summary.
func (q *Queue) Start(ctx context.Context) Summary {
	q.mu.Lock()
	pending := make([]*Task, 0, len(q.tasks))
	for _, task := range q.tasks {
		if task.Status == StatusPending {
			pending = append(pending, task)
		}
	}
	q.mu.Unlock()

	if len(pending) == 0 {
		return Summary{}
	}

	var succeeded, failed atomic.Int64

	g := new(errgroup.Group)
	if q.opts.Concurrency > 0 {
		g.SetLimit(q.opts.Concurrency)
	}

	for _, task := range pending {
		id := task.ID
		payload := task.Payload
		g.Go(func() error {
			switch q.submit(ctx, id, payload) {
			case submitSucceeded:
				succeeded.Add(1)
			case submitFailed:
				failed.Add(1)
			}
			return nil
		})
	}

	_ = g.Wait()

	return Summary{
		Succeeded: int(succeeded.Load()),
		Failed:    int(failed.Load()),
	}
}

// Outcome of a single submission. A skipped submission lost its task
// before claiming it: another Start batch moved it out of pending first,
// or it was removed.
type submitOutcome int

const (
	submitSkipped submitOutcome = iota
	submitFailed
	submitSucceeded
)

// submit runs one task through validation, dispatch and terminal
// transition. The transition out of pending is the claim: losing it ends
// the submission before any network call, leaving the task to whichever
// batch won. A task removed or cleared after the claim still resolves;
// its terminal transition misses and only the summary records the outcome.
func (q *Queue) submit(ctx context.Context, id string, payload FilePayload) submitOutcome {
	if reason, ok := q.validate(payload); !ok {
		if !q.transition(id, StatusError, func(task *Task) {
			task.Progress = 0
			task.ErrorDetail = reason
		}) {
			return submitSkipped
		}
		q.log.WarnContext(ctx, "upload rejected locally",
			slog.String("task", id),
			slog.String("file", payload.Name),
			slog.String("reason", reason))
		return submitFailed
	}

	if !q.transition(id, StatusUploading, func(task *Task) {
		task.Progress = progressDispatched
	}) {
		return submitSkipped
	}

	stop := q.tickProgress(id)
	stored, err := q.send(ctx, payload)
	stop()

	if err != nil {
		q.log.WarnContext(ctx, "upload failed",
			slog.String("task", id),
			slog.String("file", payload.Name),
			slog.String("error", err.Error()))
		q.transition(id, StatusError, func(task *Task) {
			task.Progress = 0
			task.ErrorDetail = err.Error()
		})
		return submitFailed
	}

	q.log.InfoContext(ctx, "upload succeeded",
		slog.String("task", id),
		slog.String("file", payload.Name),
		slog.Int64("size", payload.Size))
	q.transition(id, StatusSuccess, func(task *Task) {
		task.Progress = 100
		task.Stored = stored
	})
	return submitSucceeded
}

// transition moves the task to next and applies fn under the same lock.
// Unknown ids and illegal transitions are ignored.
func (q *Queue) transition(id string, next Status, fn func(*Task)) bool {
	q.notifyMu.Lock()
	defer q.notifyMu.Unlock()

	q.mu.Lock()
	task, ok := q.index[id]
	if !ok || !task.Status.CanTransition(next) {
		q.mu.Unlock()
		return false
	}
	task.Status = next
	if fn != nil {
		fn(task)
	}
	snapshot := *task
	q.mu.Unlock()

	if q.opts.OnChange != nil {
		q.opts.OnChange(snapshot)
	}
	return true
}

// tickProgress advances the simulated progress indicator on a fixed
// interval. The returned stop function must be called once the submission
// resolves; a tick that fires after the task left uploading does nothing.
func (q *Queue) tickProgress(id string) func() {
	ticker := time.NewTicker(progressInterval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				q.advanceProgress(id)
			}
		}
	}()

	return func() { close(done) }
}

func (q *Queue) advanceProgress(id string) {
	q.notifyMu.Lock()
	defer q.notifyMu.Unlock()

	q.mu.Lock()
	task, ok := q.index[id]
	if !ok || task.Status != StatusUploading {
		q.mu.Unlock()
		return
	}

	next := task.Progress + progressStep
	if next > progressCeiling {
		next = progressCeiling
	}
	if next == task.Progress {
		q.mu.Unlock()
		return
	}
	task.Progress = next
	snapshot := *task
	q.mu.Unlock()

	if q.opts.OnChange != nil {
		q.opts.OnChange(snapshot)
	}
}

// validate applies the local size and type rules, returning a description
// of the violated rule when the payload is rejected.
func (q *Queue) validate(payload FilePayload) (string, bool) {
	if limit := q.opts.MaxFileSizeMB << 20; payload.Size > limit {
		return fmt.Sprintf("file size %d exceeds %dMB limit", payload.Size, q.opts.MaxFileSizeMB), false
	}
	if !q.typeAccepted(payload) {
		return fmt.Sprintf("file type %q is not accepted", payload.ContentType), false
	}
	return "", true
}

// typeAccepted matches the payload against the accepted-type patterns:
// ".ext" matches a filename suffix, "type/*" a MIME prefix, anything else
// the exact MIME type.
func (q *Queue) typeAccepted(payload FilePayload) bool {
	if len(q.opts.AcceptedTypes) == 0 {
		return true
	}

	name := strings.ToLower(payload.Name)
	contentType := strings.ToLower(payload.ContentType)

	for _, pattern := range q.opts.AcceptedTypes {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		switch {
		case pattern == "":
			continue
		case strings.HasPrefix(pattern, "."):
			if strings.HasSuffix(name, pattern) {
				return true
			}
		case strings.HasSuffix(pattern, "/*"):
			if strings.HasPrefix(contentType, strings.TrimSuffix(pattern, "*")) {
				return true
			}
		default:
			if contentType == pattern {
				return true
			}
		}
	}
	return false
}
