package utils

import (
	"encoding/base64"
	"errors"
	"mime"
	"strings"
)

// DataURI is a decoded "data:<mime>;base64,<data>" payload.
type DataURI struct {
	ContentType string
	Data        []byte
}

var ErrInvalidDataURI = errors.New("invalid base64 image")

func ParseDataURI(raw string) (*DataURI, error) {
	meta, data, ok := strings.Cut(raw, ",")
	if !ok || !strings.HasPrefix(meta, "data:") || !strings.HasSuffix(meta, ";base64") {
		return nil, ErrInvalidDataURI
	}
	contentType := strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrInvalidDataURI
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil || len(decoded) == 0 {
		return nil, ErrInvalidDataURI
	}
	return &DataURI{ContentType: contentType, Data: decoded}, nil
}

// Extension guesses a file extension, ".jpg" for JPEG.
func (d *DataURI) Extension() string {
	switch d.ContentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	}
	if exts, _ := mime.ExtensionsByType(d.ContentType); len(exts) > 0 {
		return exts[0]
	}
	if _, sub, ok := strings.Cut(d.ContentType, "/"); ok {
		return "." + sub
	}
	return ""
}
