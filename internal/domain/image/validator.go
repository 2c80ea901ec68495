package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"gatepass-server-go/internal/platform/errors"
)

const (
	dataURLPrefix  = "data:image/"
	maxPhotoBytes  = 8 << 20 // decoded payload cap
	maxPhotoPixels = 4096 * 4096
)

var imageSignatures = map[string][]byte{
	"jpeg": {0xFF, 0xD8},
	"jpg":  {0xFF, 0xD8},
	"png":  {0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
	"gif":  {0x47, 0x49, 0x46, 0x38},
	"webp": {0x52, 0x49, 0x46, 0x46},
}

// Photo is a decoded visitor photo payload.
type Photo struct {
	Format string // declared format from the data URL, e.g. "jpeg"
	Data   []byte // decoded bytes
}

// ParseDataURL validates a "data:image/<fmt>;base64,<payload>" string and
// returns the decoded photo. The prefix convention is the first gate; the
// decoded bytes must additionally carry a known image signature and decode
// as an image of sane dimensions.
func ParseDataURL(payload string) (*Photo, error) {
	if payload == "" {
		return nil, errors.New(errors.KindDomain, "image.parse", "missing photo payload")
	}
	if !strings.HasPrefix(payload, dataURLPrefix) {
		return nil, errors.New(errors.KindDomain, "image.parse", "invalid image format")
	}

	rest := payload[len(dataURLPrefix):]
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return nil, errors.New(errors.KindDomain, "image.parse", "photo payload is not base64 encoded")
	}
	format := strings.ToLower(rest[:sep])
	encoded := rest[sep+len(";base64,"):]

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Wrap(errors.KindDomain, "image.parse", "failed to decode photo payload", err)
	}
	if len(raw) == 0 {
		return nil, errors.New(errors.KindDomain, "image.parse", "empty photo payload")
	}
	if int64(len(raw)) > maxPhotoBytes {
		return nil, errors.New(errors.KindDomain, "image.parse",
			fmt.Sprintf("photo exceeds size limit: %d bytes", len(raw)))
	}

	if !matchesSignature(raw, format) {
		return nil, errors.New(errors.KindDomain, "image.parse",
			fmt.Sprintf("payload does not match declared format %q", format))
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(errors.KindDomain, "image.parse", "payload is not a decodable image", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPhotoPixels {
		return nil, errors.New(errors.KindDomain, "image.parse",
			fmt.Sprintf("image too large: %dx%d", cfg.Width, cfg.Height))
	}

	return &Photo{Format: format, Data: raw}, nil
}

func matchesSignature(raw []byte, format string) bool {
	signature, ok := imageSignatures[format]
	if !ok {
		return false
	}
	if len(raw) < len(signature) {
		return false
	}
	return bytes.Equal(signature, raw[:len(signature)])
}
