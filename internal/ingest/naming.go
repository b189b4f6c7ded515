package ingest

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	tokenLength   = 6
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// NewStorageName derives a collision-resistant object name from the original
// filename: "<epoch-millis>-<random-token>-<sanitized-name>". Two uploads of
// the same file always map to distinct names.
func NewStorageName(original string) string {
	return fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), randomToken(), SanitizeFilename(original))
}

// SanitizeFilename replaces every character outside [A-Za-z0-9._-] with an
// underscore so the result is safe as an object store key.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "upload"
	}
	return unsafeChars.ReplaceAllString(name, "_")
}

func randomToken() string {
	buf := make([]byte, tokenLength)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i, b := range buf {
		buf[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return string(buf)
}
