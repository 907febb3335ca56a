// Package httpapi exposes the identity core over HTTP/JSON.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/certhub/internal/common"
	"github.com/dmitrijs2005/certhub/internal/logging"
	"github.com/dmitrijs2005/certhub/internal/server/models"
	"github.com/dmitrijs2005/certhub/internal/server/services"
	"github.com/gin-gonic/gin"
)

type ExistenceChecker interface {
	CheckUserExists(ctx context.Context, email, phone string) (*services.Resolution, error)
}

type Authenticator interface {
	Login(ctx context.Context, email, phone, password string) (*models.User, error)
}

type Registrar interface {
	Register(ctx context.Context, req services.RegisterRequest) (*models.User, error)
}

type Handler struct {
	resolver      ExistenceChecker
	authenticator Authenticator
	registrar     Registrar
	logger        logging.Logger
}

func NewHandler(resolver ExistenceChecker, authenticator Authenticator, registrar Registrar, logger logging.Logger) *Handler {
	return &Handler{
		resolver:      resolver,
		authenticator: authenticator,
		registrar:     registrar,
		logger:        logger.With("module", "http_handler"),
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.health)

	auth := r.Group("/auth")
	auth.POST("/check-user", h.checkUser)
	auth.POST("/login", h.login)
	auth.POST("/signup", h.signup)
}

type checkUserRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type checkUserResponse struct {
	Exists            bool                      `json:"exists"`
	HasEmail          *bool                     `json:"hasEmail,omitempty"`
	HasPhone          *bool                     `json:"hasPhone,omitempty"`
	Email             *string                   `json:"email,omitempty"`
	Phone             *string                   `json:"phone,omitempty"`
	PrimaryIdentifier *models.PrimaryIdentifier `json:"primaryIdentifier,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Address  string `json:"address"`
}

type userResponse struct {
	User *models.User `json:"user"`
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) checkUser(c *gin.Context) {
	var req checkUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res, err := h.resolver.CheckUserExists(c.Request.Context(), req.Email, req.Phone)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := checkUserResponse{Exists: res.Exists}
	if u := res.User; u != nil {
		hasEmail, hasPhone := u.HasEmail(), u.HasPhone()
		primary := u.PrimaryIdentifier
		resp.HasEmail = &hasEmail
		resp.HasPhone = &hasPhone
		resp.Email = u.Email
		resp.Phone = u.Phone
		resp.PrimaryIdentifier = &primary
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.authenticator.Login(c.Request.Context(), req.Email, req.Phone, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, userResponse{User: user})
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.registrar.Register(c.Request.Context(), services.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Address:  req.Address,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, userResponse{User: user})
}

// writeError maps service errors to status codes. Internal details are
// logged, never returned.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrorInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, common.ErrorDuplicateUser):
		c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
	default:
		h.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
