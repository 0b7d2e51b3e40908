package handlers

import (
	"errors"
	"net/http"

	"sikseb/internal/mockapi"
	"sikseb/internal/models"
	"sikseb/pkg/jwt"
	"sikseb/pkg/logger"
	"sikseb/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	store      *mockapi.Store
	jwtManager *jwt.JWTManager
	log        logrus.FieldLogger
}

func NewAuthHandler(store *mockapi.Store, jwtManager *jwt.JWTManager) *AuthHandler {
	return &AuthHandler{
		store:      store,
		jwtManager: jwtManager,
		log:        logger.GetLogger().WithField("component", "mockapi.auth"),
	}
}

// Login POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, "Email dan password harus diisi", map[string]string{
			"email":    "required",
			"password": "required",
		})
		return
	}

	user, err := h.store.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, mockapi.ErrUserInactive) || errors.Is(err, mockapi.ErrInvalidCredentials) {
			response.Unauthorized(c, err.Error())
			return
		}
		response.ServerError(c, "Login gagal")
		return
	}

	token, err := h.jwtManager.GenerateToken(string(user.ID), user.Email)
	if err != nil {
		h.log.WithError(err).Error("cannot sign token")
		response.ServerError(c, "Token tidak dapat dibuat")
		return
	}

	h.log.WithField("email", user.Email).Info("login")
	c.JSON(http.StatusOK, models.LoginResponse{
		User:    user,
		Token:   token,
		Message: "Login berhasil",
	})
}

// Me GET /api/user
func (h *AuthHandler) Me(c *gin.Context) {
	user := c.MustGet("user").(models.User)
	response.Entity(c, http.StatusOK, user, "")
}
