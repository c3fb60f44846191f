package images

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/dmitrijs2005/antiquary/internal/client/models"
	"github.com/dmitrijs2005/antiquary/internal/common"
	"github.com/dmitrijs2005/antiquary/internal/logging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Uploader stores bytes under key and returns their public URL.
// objectstore.S3Store is the production implementation.
type Uploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

var errNoUploader = errors.New("object storage not configured")

type Materializer struct {
	store    Uploader
	maxDim   int
	log      logging.Logger
	readFile func(string) ([]byte, error)
	newID    func() string
}

type Option func(*Materializer)

// WithMaxDimension bounds the longest side of uploaded photos. 0 disables resizing.
func WithMaxDimension(px int) Option {
	return func(m *Materializer) { m.maxDim = px }
}

func WithLogger(l logging.Logger) Option {
	return func(m *Materializer) { m.log = l }
}

// NewMaterializer builds a Materializer. A nil store makes every upload fail,
// which downgrades local images to no image.
func NewMaterializer(store Uploader, opts ...Option) *Materializer {
	m := &Materializer{
		store:    store,
		log:      logging.NewNop(),
		readFile: os.ReadFile,
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Materialize returns a durable URL for ref, or "" if there is none.
// A non-nil error always wraps common.ErrImageMaterialization and is
// informational: the URL is "" in that case.
func (m *Materializer) Materialize(ctx context.Context, ownerID string, ref models.ImageRef) (string, error) {
	if ref.IsZero() {
		return "", nil
	}
	if ref.Kind == models.ImageRemote {
		if models.IsRemoteURL(ref.Value) {
			return ref.Value, nil
		}
		return "", m.fail(ctx, ownerID, ref, errors.New("not a network URL"))
	}

	u, err := m.upload(ctx, ownerID, ref)
	if err != nil {
		return "", m.fail(ctx, ownerID, ref, err)
	}
	return u, nil
}

func (m *Materializer) fail(ctx context.Context, ownerID string, ref models.ImageRef, err error) error {
	m.log.Warn(ctx, "image materialization failed", "owner_id", ownerID, "kind", string(ref.Kind), "err", err)
	return fmt.Errorf("%w: %w", common.ErrImageMaterialization, err)
}

func (m *Materializer) upload(ctx context.Context, ownerID string, ref models.ImageRef) (string, error) {
	if m.store == nil {
		return "", errNoUploader
	}
	if strings.TrimSpace(ownerID) == "" {
		return "", common.ErrNotAuthenticated
	}

	body, err := m.load(ref)
	if err != nil {
		return "", err
	}

	mt := mimetype.Detect(body)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("not an image: %s", mt.String())
	}
	contentType, ext := mt.String(), mt.Extension()

	if resized, ok := normalize(body, m.maxDim); ok {
		body, contentType, ext = resized, "image/jpeg", ".jpg"
	}

	key := fmt.Sprintf("scans/%s/%s%s", url.PathEscape(ownerID), m.newID(), ext)
	u, err := m.store.Upload(ctx, key, body, contentType)
	if err != nil {
		return "", err
	}
	if !models.IsRemoteURL(u) {
		return "", fmt.Errorf("object store returned non-URL %q", u)
	}
	return u, nil
}

func (m *Materializer) load(ref models.ImageRef) ([]byte, error) {
	switch ref.Kind {
	case models.ImageInline:
		return decodeInline(ref.Value)
	case models.ImageFile:
		path := ref.Value
		if u, err := url.Parse(path); err == nil && u.Scheme == "file" {
			path = u.Path
		}
		b, err := m.readFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if len(b) == 0 {
			return nil, errEmptyData
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported image kind %q", ref.Kind)
	}
}
