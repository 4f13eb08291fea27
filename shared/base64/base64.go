package base64

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	dataPrefix   = "data:"
	base64Marker = ";base64,"
)

var ErrNotDataURI = errors.New("value is not a base64 data URI")

// GetContentType returns the media type of a data URI, or "" if malformed.
func GetContentType(file string) string {
	if !strings.HasPrefix(file, dataPrefix) {
		return ""
	}

	end := strings.Index(file, base64Marker)
	if end < len(dataPrefix) {
		return ""
	}

	return file[len(dataPrefix):end]
}

// Decode splits a data URI into its media type and decoded bytes.
func Decode(file string) (string, []byte, error) {
	contentType := GetContentType(file)
	if contentType == "" {
		return "", nil, ErrNotDataURI
	}

	encoded := file[strings.Index(file, base64Marker)+len(base64Marker):]

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URI: %w", err)
	}

	return contentType, data, nil
}
