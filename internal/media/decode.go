package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"net/http"
	"strings"
)

var formats = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// DecodeDataURL decodes a base64 "data:image/<type>;base64,<payload>" string.
func DecodeDataURL(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, "", &InputError{Err: ErrMissingFile}
	}
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, "", &InputError{Err: errors.New("`file` must be a base64 data URL")}
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, "", &InputError{Err: errors.New("`file` must be a base64 data URL")}
	}
	contentType := strings.ToLower(strings.TrimSuffix(meta, ";base64"))

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil {
		return nil, "", &InputError{Err: fmt.Errorf("`file` is not valid base64: %w", err)}
	}
	return data, contentType, nil
}

// inspect sniffs the payload, checks it against the allowed formats and
// reads the dimensions where a decoder is registered. The sniffed type wins;
// a declared image type that disagrees with it is rejected.
func inspect(data []byte, declared string) (contentType, ext string, width, height int, err error) {
	if len(data) == 0 {
		return "", "", 0, 0, &InputError{Err: ErrMissingFile}
	}
	if len(data) > MaxImageBytes {
		return "", "", 0, 0, &InputError{Err: fmt.Errorf("image exceeds %d bytes", MaxImageBytes)}
	}

	contentType = http.DetectContentType(data)
	ext, ok := formats[contentType]
	if !ok {
		return "", "", 0, 0, &InputError{Err: fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)}
	}
	if d := declaredType(declared); d != "" && d != contentType {
		return "", "", 0, 0, &InputError{Err: fmt.Errorf("%w: declared %s, got %s", ErrTypeMismatch, d, contentType)}
	}

	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		width, height = cfg.Width, cfg.Height
	}
	return contentType, ext, width, height, nil
}

// declaredType normalizes a client supplied content type. Generic binary
// types carry no claim and come back empty.
func declaredType(s string) string {
	mt, _, err := mime.ParseMediaType(s)
	if err != nil {
		return ""
	}
	switch mt {
	case "application/octet-stream", "binary/octet-stream":
		return ""
	case "image/jpg", "image/pjpeg":
		return "image/jpeg"
	}
	return mt
}
