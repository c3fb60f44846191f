package models

import (
	"net/url"
	"strings"

	"github.com/dmitrijs2005/antiquary/internal/netx"
)

// ImageKind tells where the bytes of an image live.
type ImageKind string

const (
	ImageNone   ImageKind = ""
	ImageRemote ImageKind = "remote" // durable, network-addressable URL
	ImageInline ImageKind = "inline" // base64 or data URI
	ImageFile   ImageKind = "file"   // path on the device
)

// ImageRef is exactly one of: a remote URL, inline encoded bytes, a local
// file path, or nothing.
type ImageRef struct {
	Kind  ImageKind `json:"kind,omitempty"`
	Value string    `json:"value,omitempty"`
}

func RemoteImage(u string) ImageRef  { return ImageRef{Kind: ImageRemote, Value: u} }
func InlineImage(d string) ImageRef  { return ImageRef{Kind: ImageInline, Value: d} }
func FileImage(path string) ImageRef { return ImageRef{Kind: ImageFile, Value: path} }

// IsZero reports whether the reference points at nothing.
func (r ImageRef) IsZero() bool {
	return r.Kind == ImageNone || strings.TrimSpace(r.Value) == ""
}

// IsRemoteURL reports whether s is an http(s) URL with a host.
func IsRemoteURL(s string) bool {
	return netx.IsHTTPURL(s)
}

// ClassifyImage guesses the kind of a raw reference string as captured by the
// camera or returned by a collaborator.
func ClassifyImage(s string) ImageRef {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return ImageRef{}
	case IsRemoteURL(s):
		return RemoteImage(s)
	case strings.HasPrefix(s, "data:"):
		return InlineImage(s)
	case strings.HasPrefix(s, "file://"):
		if u, err := url.Parse(s); err == nil && u.Path != "" {
			return FileImage(u.Path)
		}
		return FileImage(strings.TrimPrefix(s, "file://"))
	case looksLikeBase64(s):
		// before the path check: base64 JPEG data starts with "/9j/"
		return InlineImage(s)
	case strings.HasPrefix(s, "/") || strings.HasPrefix(s, "./") || strings.HasPrefix(s, "../"):
		return FileImage(s)
	default:
		return FileImage(s)
	}
}

// looksLikeBase64 is a cheap heuristic: long, no path separators or spaces,
// base64 alphabet only.
func looksLikeBase64(s string) bool {
	if len(s) < 64 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '+', c == '/', c == '=', c == '-', c == '_':
		default:
			return false
		}
	}
	return !strings.Contains(s, ".")
}
