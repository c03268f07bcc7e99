package gcs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/config"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/enums"
	pkgerrors "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/errors"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/logger"
)

const (
	pingTimeout     = 5 * time.Second
	maxPictureBytes = 10 << 20
)

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// objectStore is the slice of the bucket API the client relies on.
type objectStore interface {
	Write(ctx context.Context, object, contentType string, data []byte) error
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, object string) error
	Attrs(ctx context.Context) error
	Close() error
}

// Client stores pictures under "<role>/<ownerRef>/<context>" in a single bucket.
type Client struct {
	store         objectStore
	bucket        string
	publicBaseURL string
	logg          *logger.Logger
}

func NewClient(ctx context.Context, cfg config.GCSConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	var opts []option.ClientOption
	if strings.TrimSpace(cfg.CredentialsJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}
	sc, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gcs client: %w", err)
	}

	client := newClient(&bucketStore{client: sc, bucket: sc.Bucket(cfg.BucketName)}, cfg, logg)
	if err := client.Ping(ctx); err != nil {
		_ = sc.Close()
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "gcs client initialized")
	}
	return client, nil
}

func newClient(store objectStore, cfg config.GCSConfig, logg *logger.Logger) *Client {
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		base = "https://storage.googleapis.com"
	}
	return &Client{
		store:         store,
		bucket:        cfg.BucketName,
		publicBaseURL: base,
		logg:          logg,
	}
}

// UploadPicture stores data at role/ownerRef/pictureKey and returns its public URL.
func (c *Client) UploadPicture(ctx context.Context, data []byte, role enums.Role, ownerRef, pictureKey string) (string, error) {
	if len(data) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "picture is empty")
	}
	if len(data) > maxPictureBytes {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "picture exceeds 10MB")
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported picture type %s", contentType))
	}
	if strings.TrimSpace(pictureKey) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "picture context is required")
	}

	object := objectPath(role, ownerRef, pictureKey)
	if err := c.store.Write(ctx, object, contentType, data); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload picture")
	}
	return c.PublicURL(object), nil
}

// Delete removes role/ownerRef/pictureKey. An empty pictureKey removes every
// object under the owner. Missing objects are ignored.
func (c *Client) Delete(ctx context.Context, role enums.Role, ownerRef, pictureKey string) error {
	if strings.TrimSpace(ownerRef) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner reference is required")
	}

	if pictureKey != "" {
		return c.deleteObject(ctx, objectPath(role, ownerRef, pictureKey))
	}

	objects, err := c.store.List(ctx, objectPath(role, ownerRef, "")+"/")
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list owner pictures")
	}
	for _, object := range objects {
		if err := c.deleteObject(ctx, object); err != nil {
			return err
		}
	}
	if c.logg != nil {
		c.logg.Info(c.logg.WithFields(ctx, map[string]any{"owner_ref": ownerRef, "objects": len(objects)}), "owner pictures deleted")
	}
	return nil
}

func (c *Client) deleteObject(ctx context.Context, object string) error {
	if err := c.store.Delete(ctx, object); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete picture")
	}
	return nil
}

// PublicURL returns the browser-reachable URL of an object.
func (c *Client) PublicURL(object string) string {
	segments := strings.Split(object, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/%s/%s", c.publicBaseURL, c.bucket, strings.Join(segments, "/"))
}

func (c *Client) DefaultBucket() string {
	if c == nil {
		return ""
	}
	return c.bucket
}

func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.store == nil {
		return errors.New("gcs client not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return c.store.Attrs(ctx)
}

func (c *Client) Close() error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Close()
}

func objectPath(role enums.Role, ownerRef, pictureKey string) string {
	if pictureKey == "" {
		return path.Join(role.String(), ownerRef)
	}
	return path.Join(role.String(), ownerRef, pictureKey)
}

type bucketStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

func (b *bucketStore) Write(ctx context.Context, object, contentType string, data []byte) error {
	w := b.bucket.Object(object).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=3600"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (b *bucketStore) List(ctx context.Context, prefix string) ([]string, error) {
	it := b.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	var names []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return names, nil
		}
		if err != nil {
			return nil, err
		}
		names = append(names, attrs.Name)
	}
}

func (b *bucketStore) Delete(ctx context.Context, object string) error {
	return b.bucket.Object(object).Delete(ctx)
}

func (b *bucketStore) Attrs(ctx context.Context) error {
	_, err := b.bucket.Attrs(ctx)
	return err
}

func (b *bucketStore) Close() error {
	return b.client.Close()
}
