package controllers

import (
	"net/http"

	apperrors "storefront/errors"
	"storefront/models"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Sessions SessionOpener
}

func NewAuthController(sessions SessionOpener) *AuthController {
	return &AuthController{Sessions: sessions}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SignUpRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (ac *AuthController) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.WithMessage(apperrors.ErrValidation, "Email and password are required"), nil)
		return
	}

	sess, buf := openSession(c, ac.Sessions)
	user, err := sess.Auth.SignUp(c.Request.Context(), models.Registration{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondError(c, err, gin.H{"notifications": buf.Items()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user, "notifications": buf.Items()})
}

func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.WithMessage(apperrors.ErrValidation, "Email and password are required"), nil)
		return
	}

	sess, buf := openSession(c, ac.Sessions)
	user, err := sess.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, gin.H{"notifications": buf.Items()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "notifications": buf.Items()})
}

func (ac *AuthController) Logout(c *gin.Context) {
	sess, buf := openSession(c, ac.Sessions)
	sess.Auth.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Logged out", "notifications": buf.Items()})
}

// Me returns the session user; user is null when anonymous.
func (ac *AuthController) Me(c *gin.Context) {
	sess, _ := openSession(c, ac.Sessions)
	user := sess.Auth.CurrentUser()
	c.JSON(http.StatusOK, gin.H{"user": user, "authenticated": user != nil})
}
