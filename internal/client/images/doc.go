// Package images turns image references captured on the device into durable
// public URLs.
//
// A remote URL is passed through untouched. Inline data (data URI or bare
// base64) and local files are decoded, checked to really be images, downscaled
// when larger than the configured bound, and uploaded to object storage under
// scans/<owner>/<random id>. Every failure yields an empty URL so callers can
// never persist a device-local reference by mistake.
package images
