package controllers

import (
	"net/http"
	"strconv"

	"cmticaret/middleware"
	"cmticaret/pkg/apierr"
	"cmticaret/services"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	auth *services.AuthService
}

func NewUserController(auth *services.AuthService) *UserController {
	return &UserController{auth: auth}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
}

func (uc *UserController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Geçersiz kayıt bilgileri"})
		return
	}

	result, aerr := uc.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Phone)
	if aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (uc *UserController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Geçersiz giriş bilgileri"})
		return
	}

	result, aerr := uc.auth.Login(c.Request.Context(), req.Email, req.Password)
	if aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (uc *UserController) Profile(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		fail(c, apierr.ErrUnauthorized)
		return
	}

	user, aerr := uc.auth.GetProfile(c.Request.Context(), userID)
	if aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers is admin-only, wired behind RequireAdmin.
func (uc *UserController) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	users, total, aerr := uc.auth.ListUsers(c.Request.Context(), page, limit)
	if aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": total})
}
