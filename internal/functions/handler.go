package functions

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/PrassV/Propo-Staging-sub004/internal/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreatePropertyPath is the route of the create function
const CreatePropertyPath = "/functions/v1/create-property-with-images"

var ErrRateLimited = errors.New("rate limit exceeded, please try again later")

// Limiter admits or rejects a request from a client key
type Limiter interface {
	AllowRequest(clientKey string) bool
}

// Handler exposes PropertyCreator as an HTTP function endpoint
type Handler struct {
	creator      *PropertyCreator
	verifier     *auth.JWTVerifier
	authRequired bool
	limiter      Limiter
	maxBodyBytes int64
	logger       *zap.SugaredLogger
}

// NewHandler creates a new function handler. verifier and limiter may be nil.
func NewHandler(creator *PropertyCreator, verifier *auth.JWTVerifier, authRequired bool, limiter Limiter, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	// base64 inflates by 4/3; leave 1MB for the property fields
	maxBody := int64(creator.maxImageBytes)*4/3 + 1<<20
	if creator.maxImages > 0 {
		maxBody = int64(creator.maxImages)*int64(creator.maxImageBytes)*4/3 + 1<<20
	}
	return &Handler{
		creator:      creator,
		verifier:     verifier,
		authRequired: authRequired,
		limiter:      limiter,
		maxBodyBytes: maxBody,
		logger:       logger,
	}
}

// Register mounts the function and its preflight route
func (h *Handler) Register(r gin.IRoutes) {
	r.OPTIONS(CreatePropertyPath, h.Preflight)
	r.POST(CreatePropertyPath, h.CreatePropertyWithImages)
}

// setCORSHeaders applies the permissive headers every function response carries
func setCORSHeaders(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
	c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
}

// Preflight handles OPTIONS /functions/v1/create-property-with-images
func (h *Handler) Preflight(c *gin.Context) {
	setCORSHeaders(c)
	c.String(http.StatusOK, "ok")
}

// CreatePropertyWithImages handles POST /functions/v1/create-property-with-images
func (h *Handler) CreatePropertyWithImages(c *gin.Context) {
	setCORSHeaders(c)

	if h.limiter != nil && !h.limiter.AllowRequest(c.ClientIP()) {
		h.logger.Warnw("[CreateProperty] rate limit exceeded", "client", c.ClientIP())
		c.JSON(http.StatusTooManyRequests, Failed(ErrRateLimited))
		return
	}

	userID, err := h.verifier.Authenticate(c.Request, h.authRequired)
	if err != nil {
		c.JSON(http.StatusUnauthorized, Failed(err))
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)

	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusBadRequest, Failed(fmt.Errorf("%w: request body exceeds %d bytes", ErrImageTooLarge, maxErr.Limit)))
			return
		}
		c.JSON(http.StatusBadRequest, Failed(fmt.Errorf("%w: %v", ErrInvalidRequest, err)))
		return
	}

	if req.PropertyData != nil && req.PropertyData.OwnerID == "" {
		req.PropertyData.OwnerID = userID
	}

	result := h.creator.Handle(c.Request.Context(), req)
	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}
