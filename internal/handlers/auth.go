package handlers

import (
	"errors"
	"net/http"
	"strings"

	"fleetcar/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	svc *services.AuthService
	log *zap.Logger
}

func NewAuthHandler(svc *services.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

type registerInput struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullName" binding:"omitempty,max=100"`
}

type loginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var in registerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		Error(c, http.StatusBadRequest, "invalid registration data: "+err.Error())
		return
	}
	in.Username = strings.TrimSpace(in.Username)

	bundle, err := h.svc.Register(in.Username, in.Password, in.FullName)
	if err != nil {
		var conflict *services.ConflictError
		if errors.As(err, &conflict) {
			Error(c, http.StatusConflict, conflict.Message)
			return
		}
		internalError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, bundle)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var in loginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		Error(c, http.StatusBadRequest, "invalid login data: "+err.Error())
		return
	}

	bundle, err := h.svc.Login(in.Username, in.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			Error(c, http.StatusUnauthorized, "invalid username or password")
			return
		}
		internalError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, bundle)
}
