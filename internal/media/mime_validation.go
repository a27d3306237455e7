package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode"

	"github.com/angelmondragon/moments-backend/pkg/enums"
	"github.com/gabriel-vasile/mimetype"
)

// sniffLen matches the mimetype default read limit.
const sniffLen = 3072

var errUnsupportedContent = errors.New("only image and video files are accepted")

type sniffedContent struct {
	ContentType string
	Extension   string
	Type        enums.MediaType
	Body        io.Reader
}

// sniffContent detects the content type from the leading bytes of r. The
// returned Body replays those bytes followed by the rest of r.
func sniffContent(r io.Reader) (*sniffedContent, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload header: %w", err)
	}
	head = head[:n]
	if len(head) == 0 {
		return nil, errUnsupportedContent
	}

	detected := mimetype.Detect(head)
	for m := detected; m != nil; m = m.Parent() {
		contentType := baseMediaType(m.String())
		if mediaType, ok := enums.MediaTypeFromMIME(contentType); ok {
			return &sniffedContent{
				ContentType: contentType,
				Extension:   detected.Extension(),
				Type:        mediaType,
				Body:        io.MultiReader(bytes.NewReader(head), r),
			}, nil
		}
	}
	return nil, errUnsupportedContent
}

func baseMediaType(value string) string {
	mediaType, _, _ := strings.Cut(value, ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func sanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if clean == "." || clean == "/" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}
