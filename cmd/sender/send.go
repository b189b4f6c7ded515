package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/manisht21/file-sender/internal/uploader"
)

func runSend(ctx context.Context, cmd *cli.Command) error {
	log, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok {
		return errors.New("failed to get logger from context")
	}

	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return errors.New("nothing to upload, pass at least one file path")
	}

	payloads := make([]uploader.FilePayload, 0, len(paths))
	for _, path := range paths {
		payload, err := readPayload(path)
		if err != nil {
			return err
		}
		payloads = append(payloads, payload)
	}

	queue := uploader.NewQueue(uploader.Options{
		Endpoint:      cmd.String("endpoint"),
		MaxFileSizeMB: int64(cmd.Int("max-size-mb")),
		AcceptedTypes: cmd.StringSlice("accept"),
		Concurrency:   int(cmd.Int("concurrency")),
		Logger:        log,
	})
	queue.Add(payloads...)

	summary := queue.Start(ctx)

	for _, task := range queue.Tasks() {
		switch task.Status {
		case uploader.StatusSuccess:
			fmt.Printf("uploaded %s -> %s\n", task.Payload.Name, task.Stored.URL)
		case uploader.StatusError:
			fmt.Printf("failed   %s: %s\n", task.Payload.Name, task.ErrorDetail)
		}
	}

	log.Info("upload run finished",
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("failed", summary.Failed))

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", summary.Failed, summary.Total())
	}
	return nil
}

func readPayload(path string) (uploader.FilePayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return uploader.FilePayload{}, fmt.Errorf("read %q: %w", path, err)
	}

	return uploader.FilePayload{
		Name:        filepath.Base(path),
		Size:        int64(len(data)),
		ContentType: detectContentType(path, data),
		Data:        data,
	}, nil
}

// detectContentType prefers the extension mapping and falls back to
// sniffing the payload. Parameters like charset are stripped so accept
// filters match on the bare media type.
func detectContentType(path string, data []byte) string {
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	if mediaType, _, err := mime.ParseMediaType(ct); err == nil {
		return mediaType
	}
	return ct
}
