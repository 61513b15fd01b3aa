package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/calctree-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "ValidationError", "Username and password are required")
		return
	}
	if req.Username == "" || req.Password == "" {
		RespondError(c, http.StatusBadRequest, "ValidationError", "Username and password are required")
		return
	}

	result, err := ah.authService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "ValidationError", "Username and password are required")
		return
	}
	if req.Username == "" || req.Password == "" {
		RespondError(c, http.StatusBadRequest, "ValidationError", "Username and password are required")
		return
	}

	result, err := ah.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
