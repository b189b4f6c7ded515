package uploader

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/manisht21/file-sender/internal/ingest"
)

// Status is the lifecycle state of an upload task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusError
}

// CanTransition reports whether moving from s to next is legal. Pending
// tasks either start uploading or fail local validation; uploading tasks
// resolve to success or error; terminal states never change.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusUploading || next == StatusError
	case StatusUploading:
		return next == StatusSuccess || next == StatusError
	default:
		return false
	}
}

// FilePayload is the immutable file content captured when a file is queued.
type FilePayload struct {
	Name        string
	Size        int64
	ContentType string
	Data        []byte
}

// Task tracks one queued file through its upload lifecycle.
type Task struct {
	ID          string
	Payload     FilePayload
	Status      Status
	Progress    int
	ErrorDetail string
	Stored      *ingest.StoredFile
	CreatedAt   time.Time
}

// newTaskID builds an identifier that stays unique even when two queued
// files share a name.
func newTaskID(name string) string {
	return fmt.Sprintf("%s-%d-%s", name, time.Now().UnixMilli(), uuid.NewString()[:8])
}
