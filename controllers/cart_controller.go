package controllers

import (
	"net/http"

	"cmticaret/middleware"
	"cmticaret/models"
	"cmticaret/pkg/apierr"
	"cmticaret/services"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	carts   *services.CartService
	catalog *services.CatalogService
}

func NewCartController(carts *services.CartService, catalog *services.CatalogService) *CartController {
	return &CartController{carts: carts, catalog: catalog}
}

func (cc *CartController) Get(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		fail(c, apierr.ErrUnauthorized)
		return
	}

	cart, aerr := cc.carts.Get(c.Request.Context(), userID)
	if aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type cartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

// AddItem adds qty to an existing line or creates it; the product is read
// once here so the cart line carries a display snapshot.
func (cc *CartController) AddItem(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		fail(c, apierr.ErrUnauthorized)
		return
	}

	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Geçersiz sepet isteği"})
		return
	}

	product, aerr := cc.catalog.GetProduct(c.Request.Context(), req.ProductID)
	if aerr != nil {
		fail(c, aerr)
		return
	}

	snapshot := models.ProductSnapshot{Name: product.Name, Price: product.Price}
	if len(product.Images) > 0 {
		snapshot.Image = product.Images[0]
	}

	cart, aerr := cc.carts.AddItem(c.Request.Context(), userID, req.ProductID, req.Quantity, snapshot)
	if aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (cc *CartController) UpdateQuantity(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		fail(c, apierr.ErrUnauthorized)
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Geçersiz sepet isteği"})
		return
	}

	cart, aerr := cc.carts.UpdateQuantity(c.Request.Context(), userID, c.Param("productId"), req.Quantity)
	if aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (cc *CartController) RemoveItem(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		fail(c, apierr.ErrUnauthorized)
		return
	}

	cart, aerr := cc.carts.RemoveItem(c.Request.Context(), userID, c.Param("productId"))
	if aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (cc *CartController) Clear(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		fail(c, apierr.ErrUnauthorized)
		return
	}

	if aerr := cc.carts.Clear(c.Request.Context(), userID); aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sepet temizlendi"})
}
