package ingest

// StoredFile describes a successfully persisted upload.
type StoredFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Response is the payload returned for a successful upload.
type Response struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	File    StoredFile `json:"file"`
}
