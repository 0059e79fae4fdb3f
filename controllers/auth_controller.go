package controllers

import (
	"crypto/subtle"
	"net/http"

	"stablebank/config"
	"stablebank/utils"

	"github.com/gin-gonic/gin"
)

// AuthController контроллер для входа администратора
type AuthController struct {
	cfg *config.Config
}

func NewAuthController(cfg *config.Config) *AuthController {
	return &AuthController{cfg: cfg}
}

type adminLoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login выдает JWT для админских операций (смена статуса ипотеки)
func (ac *AuthController) Login(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	if ac.cfg.AdminLogin == "" || ac.cfg.AdminPassword == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Admin access is not configured"})
		return
	}

	loginOK := subtle.ConstantTimeCompare([]byte(req.Login), []byte(ac.cfg.AdminLogin)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(ac.cfg.AdminPassword)) == 1
	if !loginOK || !passOK {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateJWT(req.Login, "admin", ac.cfg.JWTSecret)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": gin.H{"token": token}})
}
