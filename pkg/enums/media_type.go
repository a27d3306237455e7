package enums

import (
	"fmt"
	"strings"
)

// MediaType is the coarse kind of an uploaded file.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

var validMediaTypes = []MediaType{
	MediaTypeImage,
	MediaTypeVideo,
}

func (m MediaType) String() string {
	return string(m)
}

func (m MediaType) IsValid() bool {
	for _, candidate := range validMediaTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMediaType converts raw input into a MediaType.
func ParseMediaType(value string) (MediaType, error) {
	for _, candidate := range validMediaTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid media type %q", value)
}

// MediaTypeFromMIME maps a content type such as "image/png" to its MediaType.
func MediaTypeFromMIME(contentType string) (MediaType, bool) {
	major, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(contentType)), "/")
	switch major {
	case "image":
		return MediaTypeImage, true
	case "video":
		return MediaTypeVideo, true
	default:
		return "", false
	}
}
