package controllers

import (
	"errors"
	"net/http"
	"time"

	"cmticaret/middleware"
	"cmticaret/models"
	"cmticaret/pkg/apierr"
	"cmticaret/repository"
	"cmticaret/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExtrasController covers the thin endpoints that need no service layer:
// newsletter subscriptions and product reviews go straight to the
// repositories.
type ExtrasController struct {
	newsletter repository.NewsletterRepository
	reviews    repository.ReviewRepository
	auth       *services.AuthService
}

func NewExtrasController(newsletter repository.NewsletterRepository, reviews repository.ReviewRepository, auth *services.AuthService) *ExtrasController {
	return &ExtrasController{newsletter: newsletter, reviews: reviews, auth: auth}
}

func (ec *ExtrasController) SubscribeNewsletter(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Geçersiz e-posta adresi"})
		return
	}

	if err := ec.newsletter.Subscribe(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "Bu e-posta adresi zaten abone"})
			return
		}
		fail(c, apierr.Internal("Abonelik kaydedilemedi", err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Bültene abone olundu"})
}

func (ec *ExtrasController) ListReviews(c *gin.Context) {
	reviews, err := ec.reviews.FindByProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, apierr.Internal("Yorumlar yüklenemedi", err))
		return
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	c.JSON(http.StatusOK, reviews)
}

type reviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

func (ec *ExtrasController) CreateReview(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		fail(c, apierr.ErrUnauthorized)
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Geçersiz yorum"})
		return
	}

	user, aerr := ec.auth.GetProfile(c.Request.Context(), userID)
	if aerr != nil {
		fail(c, aerr)
		return
	}

	review := &models.Review{
		ID:        uuid.NewString(),
		ProductID: c.Param("id"),
		UserID:    userID,
		UserName:  user.Name,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	}
	if err := ec.reviews.Create(c.Request.Context(), review); err != nil {
		fail(c, apierr.Internal("Yorum kaydedilemedi", err))
		return
	}
	c.JSON(http.StatusCreated, review)
}

// DeleteReview is admin moderation, wired behind RequireAdmin.
func (ec *ExtrasController) DeleteReview(c *gin.Context) {
	if err := ec.reviews.Delete(c.Request.Context(), c.Param("reviewId")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			fail(c, apierr.NotFound("Yorum bulunamadı"))
			return
		}
		fail(c, apierr.Internal("Yorum silinemedi", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Yorum silindi"})
}
