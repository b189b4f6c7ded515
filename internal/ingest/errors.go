package ingest

import "errors"

var (
	// ErrNoFile signals that the request carried no file part.
	ErrNoFile = errors.New("no file provided")
	// ErrFileTooLarge signals that the upload exceeds configured limits.
	ErrFileTooLarge = errors.New("file too large")
)
