package storage

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

const defaultContentType = "application/octet-stream"

// ContentTypeDetector picks the content type stored with an uploaded blob.
type ContentTypeDetector struct{}

// NewContentTypeDetector creates a new content type detector
func NewContentTypeDetector() *ContentTypeDetector {
	return &ContentTypeDetector{}
}

// Detect prefers the client's Content-Type header, then the blob path
// extension, then sniffing the data.
func (d *ContentTypeDetector) Detect(header, path string, data []byte) string {
	if ct := d.FromHeader(header); ct != "" {
		return ct
	}
	if ct := d.FromPath(path); ct != "" {
		return ct
	}
	return d.FromData(data)
}

// FromHeader normalizes a Content-Type header, dropping parameters. Generic
// form and octet-stream types carry no information and are ignored.
func (d *ContentTypeDetector) FromHeader(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	switch mediaType {
	case defaultContentType, "application/x-www-form-urlencoded":
		return ""
	}
	return mediaType
}

// FromPath detects content type from the path extension.
func (d *ContentTypeDetector) FromPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case "":
		return ""
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain"
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".html", ".htm":
		return "text/html"
	case ".css":
		return "text/css"
	case ".js":
		return "application/javascript"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err == nil {
			return mediaType
		}
	}
	return ""
}

// FromData sniffs the first bytes of data.
func (d *ContentTypeDetector) FromData(data []byte) string {
	if len(data) == 0 {
		return defaultContentType
	}
	if data[0] == '{' || data[0] == '[' {
		return "application/json"
	}
	mediaType, _, err := mime.ParseMediaType(http.DetectContentType(data))
	if err != nil {
		return defaultContentType
	}
	return mediaType
}
