package images

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var errEmptyData = errors.New("empty image data")

// decodeInline decodes a data URI or a bare base64 string.
func decodeInline(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		meta, payload, found := strings.Cut(rest, ",")
		if !found {
			return nil, errors.New("malformed data URI")
		}
		if strings.HasSuffix(meta, ";base64") {
			return decodeBase64(payload)
		}
		b, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("data URI payload: %w", err)
		}
		if b == "" {
			return nil, errEmptyData
		}
		return []byte(b), nil
	}
	return decodeBase64(s)
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil, errEmptyData
	}

	var lastErr error
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		b, err := enc.DecodeString(s)
		if err == nil {
			return b, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("base64: %w", lastErr)
}
