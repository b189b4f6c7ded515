package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"

	"github.com/manisht21/file-sender/internal/metrics"
	"github.com/manisht21/file-sender/internal/storage"
)

type objectStore interface {
	Put(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (string, error)
	PublicURL(name string) string
}

// Service validates incoming uploads and persists them to the object store.
type Service struct {
	store       objectStore
	maxFileSize int64
	log         *slog.Logger
	nameFunc    func(original string) string
}

// NewService constructs an ingestion service enforcing maxFileSize bytes.
func NewService(store objectStore, maxFileSize int64, log *slog.Logger) *Service {
	return &Service{
		store:       store,
		maxFileSize: maxFileSize,
		log:         log,
		nameFunc:    NewStorageName,
	}
}

// MaxFileSizeMB returns the configured size limit in whole megabytes.
func (s *Service) MaxFileSizeMB() int64 {
	return s.maxFileSize / (1 << 20)
}

// Ingest stores the uploaded file under a fresh storage name and describes
// the stored object. A storage name collision is retried once with a new
// name before the error is surfaced.
func (s *Service) Ingest(ctx context.Context, fileHeader *multipart.FileHeader) (StoredFile, error) {
	if fileHeader == nil {
		s.log.WarnContext(ctx, "upload rejected", slog.String("reason", "no file provided"))
		metrics.RecordUpload(metrics.OutcomeRejected, 0)
		return StoredFile{}, ErrNoFile
	}

	if fileHeader.Size > s.maxFileSize {
		s.log.WarnContext(ctx, "upload rejected",
			slog.String("file", fileHeader.Filename),
			slog.Int64("size", fileHeader.Size),
			slog.Int64("limit", s.maxFileSize),
			slog.String("reason", "size limit exceeded"))
		metrics.RecordUpload(metrics.OutcomeRejected, 0)
		return StoredFile{}, ErrFileTooLarge
	}

	contentType := detectContentType(fileHeader)

	put := func(name string) (string, error) {
		file, err := fileHeader.Open()
		if err != nil {
			return "", fmt.Errorf("open upload file: %w", err)
		}
		defer file.Close()

		return s.store.Put(ctx, name, file, fileHeader.Size, contentType)
	}

	name := s.nameFunc(fileHeader.Filename)
	path, err := put(name)
	if errors.Is(err, storage.ErrObjectExists) {
		s.log.WarnContext(ctx, "storage name collision, retrying",
			slog.String("file", fileHeader.Filename),
			slog.String("object", name))
		name = s.nameFunc(fileHeader.Filename)
		path, err = put(name)
	}
	if err != nil {
		s.log.ErrorContext(ctx, "store write failed",
			slog.String("file", fileHeader.Filename),
			slog.Int64("size", fileHeader.Size),
			slog.String("error", err.Error()))
		metrics.RecordUpload(metrics.OutcomeFailed, 0)
		return StoredFile{}, fmt.Errorf("store object: %w", err)
	}

	s.log.InfoContext(ctx, "file stored",
		slog.String("file", fileHeader.Filename),
		slog.Int64("size", fileHeader.Size),
		slog.String("type", contentType),
		slog.String("object", name))
	metrics.RecordUpload(metrics.OutcomeStored, fileHeader.Size)

	return StoredFile{
		Name: fileHeader.Filename,
		Size: fileHeader.Size,
		Type: contentType,
		Path: path,
		URL:  s.store.PublicURL(name),
	}, nil
}

func detectContentType(fileHeader *multipart.FileHeader) string {
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType != "" {
		return contentType
	}
	return "application/octet-stream"
}
