package controllers

import (
	"net/http"
	"strconv"

	"cmticaret/middleware"
	"cmticaret/models"
	"cmticaret/pkg/apierr"
	"cmticaret/repository"
	"cmticaret/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type OrderController struct {
	checkout *services.CheckoutService
	orders   *services.OrderService
}

func NewOrderController(checkout *services.CheckoutService, orders *services.OrderService) *OrderController {
	return &OrderController{checkout: checkout, orders: orders}
}

type addressPayload struct {
	FullName string `json:"full_name" validate:"required"`
	Line     string `json:"line" validate:"required"`
	City     string `json:"city" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
}

func (a addressPayload) toModel() models.Address {
	return models.Address{FullName: a.FullName, Line: a.Line, City: a.City, Phone: a.Phone}
}

type checkoutRequest struct {
	ShippingAddress addressPayload  `json:"shipping_address" binding:"required"`
	BillingAddress  *addressPayload `json:"billing_address"`
	PaymentMethod   string          `json:"payment_method" binding:"required"`
}

var validate = validator.New()

// Checkout submits the cart. Card payments answer with a redirect URL to
// the hosted payment page; other methods answer with the created order.
func (oc *OrderController) Checkout(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		fail(c, apierr.ErrUnauthorized)
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Geçersiz sipariş isteği"})
		return
	}
	// Binding does not recurse into nested structs; the address fields
	// are checked explicitly.
	if err := validate.Struct(req.ShippingAddress); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Teslimat adresi eksik"})
		return
	}

	checkoutReq := &services.CheckoutRequest{
		ShippingAddress: req.ShippingAddress.toModel(),
		PaymentMethod:   req.PaymentMethod,
		IdempotencyKey:  c.GetHeader("Idempotency-Key"),
	}
	if req.BillingAddress != nil {
		billing := req.BillingAddress.toModel()
		checkoutReq.BillingAddress = &billing
	}

	result, aerr := oc.checkout.Submit(c.Request.Context(), userID, checkoutReq)
	if aerr != nil {
		fail(c, aerr)
		return
	}

	if result.PaymentPageURL != "" {
		c.JSON(http.StatusOK, gin.H{"payment_page_url": result.PaymentPageURL})
		return
	}
	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	c.JSON(status, result.Order)
}

// PaymentCallback is hit by the provider redirect after the buyer leaves
// the hosted payment page.
func (oc *OrderController) PaymentCallback(c *gin.Context) {
	token := c.PostForm("token")
	if token == "" {
		token = c.Query("token")
	}
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ödeme belirteci eksik"})
		return
	}

	order, aerr := oc.checkout.CompleteCardPayment(c.Request.Context(), token)
	if aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// List returns the caller's orders; admins see the full set with filters.
func (oc *OrderController) List(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		fail(c, apierr.ErrUnauthorized)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if middleware.IsAdmin(c) {
		resp, aerr := oc.orders.GetAllOrders(c.Request.Context(), repository.OrderFilter{
			UserID: c.Query("user"),
			Status: c.Query("status"),
			Page:   page,
			Limit:  limit,
		})
		if aerr != nil {
			fail(c, aerr)
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	resp, aerr := oc.orders.GetUserOrders(c.Request.Context(), userID, page, limit)
	if aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (oc *OrderController) Get(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		fail(c, apierr.ErrUnauthorized)
		return
	}

	order, aerr := oc.orders.GetOrder(c.Request.Context(), userID, middleware.IsAdmin(c), c.Param("id"))
	if aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateStatus is admin-only, wired behind RequireAdmin.
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Geçersiz durum isteği"})
		return
	}

	order, aerr := oc.orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusOK, order)
}
