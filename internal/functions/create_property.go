package functions

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/PrassV/Propo-Staging-sub004/internal/config"
	"github.com/PrassV/Propo-Staging-sub004/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidImage   = errors.New("invalid image")
	ErrImageTooLarge  = errors.New("image exceeds size limit")
)

// PropertyStore is the managed database as seen by the create function
type PropertyStore interface {
	InsertProperty(ctx context.Context, p *models.Property) error
	UpdatePropertyImages(ctx context.Context, id string, urls, paths []string) error
	DeleteProperty(ctx context.Context, id string) error
}

// ObjectStore is the managed object store bucket
type ObjectStore interface {
	Upload(ctx context.Context, path, contentType string, data []byte) error
	PublicURL(path string) string
	Remove(ctx context.Context, paths ...string) error
}

// Indexer receives successfully created properties
type Indexer interface {
	IndexProperty(property *models.Property) error
}

// ImageInput is one inline-encoded image of a create request
type ImageInput struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Base64 string `json:"base64"`
}

// CreatePropertyRequest is the function payload
type CreatePropertyRequest struct {
	PropertyData *models.Property `json:"propertyData"`
	Images       []ImageInput     `json:"images"`
}

// Result is the discriminated response body of the function
type Result struct {
	Success bool             `json:"success"`
	Data    *models.Property `json:"data,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// Succeeded builds a success result
func Succeeded(p *models.Property) Result {
	return Result{Success: true, Data: p}
}

// Failed builds a failure result from an error
func Failed(err error) Result {
	return Result{Success: false, Error: err.Error()}
}

type decodedImage struct {
	name        string
	contentType string
	data        []byte
}

// PropertyCreator creates a property row together with its images and
// compensates by hand when a later step fails. It is not transactional: a
// crash between steps leaves whatever was already written.
type PropertyCreator struct {
	store         PropertyStore
	objects       ObjectStore
	indexer       Indexer
	logger        *zap.SugaredLogger
	maxImageBytes int
	maxImages     int
}

// NewPropertyCreator creates a new creator. indexer may be nil.
func NewPropertyCreator(store PropertyStore, objects ObjectStore, indexer Indexer, cfg config.UploadConfig, logger *zap.SugaredLogger) *PropertyCreator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &PropertyCreator{
		store:         store,
		objects:       objects,
		indexer:       indexer,
		logger:        logger,
		maxImageBytes: cfg.GetMaxImageBytes(),
		maxImages:     cfg.MaxImages,
	}
}

// Create runs the whole sequence and returns the stored property
func (c *PropertyCreator) Create(ctx context.Context, req CreatePropertyRequest) (*models.Property, error) {
	if req.PropertyData == nil {
		return nil, fmt.Errorf("%w: propertyData is required", ErrInvalidRequest)
	}
	if c.maxImages > 0 && len(req.Images) > c.maxImages {
		return nil, fmt.Errorf("%w: at most %d images are allowed", ErrInvalidRequest, c.maxImages)
	}
	if err := req.PropertyData.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	// Every image is checked before anything remote is touched
	images := make([]decodedImage, 0, len(req.Images))
	for i, in := range req.Images {
		img, err := c.decodeImage(i, in)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	property := req.PropertyData
	property.ImageURLs = models.StringList{}
	property.ImagePaths = models.StringList{}
	property.Tenants = nil

	if err := c.store.InsertProperty(ctx, property); err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}
	c.logger.Infow("[CreateProperty] property inserted", "property_id", property.ID, "images", len(images))

	urls := make([]string, 0, len(images))
	paths := make([]string, 0, len(images))
	for i, img := range images {
		objectPath := ObjectPath(property.ID, img.name)
		if err := c.objects.Upload(ctx, objectPath, img.contentType, img.data); err != nil {
			c.rollback(ctx, property.ID, paths)
			return nil, fmt.Errorf("failed to upload image %d (%s): %w", i, img.name, err)
		}
		paths = append(paths, objectPath)
		urls = append(urls, c.objects.PublicURL(objectPath))
	}

	if len(images) > 0 {
		if err := c.store.UpdatePropertyImages(ctx, property.ID, urls, paths); err != nil {
			c.rollback(ctx, property.ID, paths)
			return nil, fmt.Errorf("failed to update property with images: %w", err)
		}
		property.ImageURLs = urls
		property.ImagePaths = paths
	}

	if c.indexer != nil {
		if err := c.indexer.IndexProperty(property); err != nil {
			c.logger.Warnw("[CreateProperty] failed to index property", "property_id", property.ID, "error", err)
		}
	}

	c.logger.Infow("[CreateProperty] property created", "property_id", property.ID, "images", len(urls))
	return property, nil
}

// Handle runs Create and folds the outcome into a Result
func (c *PropertyCreator) Handle(ctx context.Context, req CreatePropertyRequest) Result {
	property, err := c.Create(ctx, req)
	if err != nil {
		c.logger.Warnw("[CreateProperty] request failed", "error", err)
		return Failed(err)
	}
	return Succeeded(property)
}

// rollbackTimeout bounds compensation once it is detached from the request
const rollbackTimeout = 30 * time.Second

// rollback removes uploaded objects, then the property row. Failures are
// logged and otherwise ignored.
func (c *PropertyCreator) rollback(ctx context.Context, propertyID string, uploaded []string) {
	// the request context may already be cancelled
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	if len(uploaded) > 0 {
		if err := c.objects.Remove(ctx, uploaded...); err != nil {
			c.logger.Warnw("[Rollback] failed to remove uploaded images",
				"property_id", propertyID, "paths", uploaded, "error", err)
		}
	}
	if err := c.store.DeleteProperty(ctx, propertyID); err != nil {
		c.logger.Warnw("[Rollback] failed to delete property", "property_id", propertyID, "error", err)
		return
	}
	c.logger.Infow("[Rollback] property rolled back", "property_id", propertyID, "images_removed", len(uploaded))
}

func (c *PropertyCreator) decodeImage(index int, in ImageInput) (decodedImage, error) {
	name := in.Name
	if name == "" {
		name = fmt.Sprintf("image-%d", index+1)
	}

	payload, contentType := splitDataURL(in.Base64)
	payload = stripLineBreaks(payload)
	if in.Type != "" {
		contentType = in.Type
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Reject on the encoded length first so oversized payloads are not decoded
	if base64.StdEncoding.DecodedLen(len(payload)) > c.maxImageBytes+2 {
		return decodedImage{}, fmt.Errorf("%w: image %s is larger than %s", ErrImageTooLarge, name, formatBytes(c.maxImageBytes))
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return decodedImage{}, fmt.Errorf("%w: image %s is not valid base64", ErrInvalidImage, name)
	}
	if len(data) == 0 {
		return decodedImage{}, fmt.Errorf("%w: image %s is empty", ErrInvalidImage, name)
	}
	if len(data) > c.maxImageBytes {
		return decodedImage{}, fmt.Errorf("%w: image %s is larger than %s", ErrImageTooLarge, name, formatBytes(c.maxImageBytes))
	}

	return decodedImage{name: name, contentType: contentType, data: data}, nil
}

// stripLineBreaks drops CR/LF from wrapped (MIME-style) base64
func stripLineBreaks(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}

// splitDataURL strips a "data:<type>;base64," prefix and returns the type it named
func splitDataURL(s string) (payload, contentType string) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return s, ""
	}
	header, body, ok := strings.Cut(s, ",")
	if !ok {
		return s, ""
	}
	header = strings.TrimPrefix(header, "data:")
	contentType, _, _ = strings.Cut(header, ";")
	return body, contentType
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ObjectPath returns "<propertyID>/<uuid>-<sanitized name>"
func ObjectPath(propertyID, name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = unsafeNameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "image"
	}
	return fmt.Sprintf("%s/%s-%s", propertyID, uuid.NewString(), base)
}

func formatBytes(n int) string {
	if n%(1024*1024) == 0 {
		return fmt.Sprintf("%dMB", n/(1024*1024))
	}
	return fmt.Sprintf("%d bytes", n)
}
