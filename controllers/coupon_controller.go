package controllers

import (
	"net/http"
	"strconv"

	"cmticaret/services"

	"github.com/gin-gonic/gin"
)

type CouponController struct {
	coupons *services.CouponService
}

func NewCouponController(coupons *services.CouponService) *CouponController {
	return &CouponController{coupons: coupons}
}

func (cc *CouponController) Create(c *gin.Context) {
	var in services.CouponInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Geçersiz kupon bilgileri"})
		return
	}

	coupon, aerr := cc.coupons.Create(c.Request.Context(), in)
	if aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusCreated, coupon)
}

func (cc *CouponController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, aerr := cc.coupons.List(c.Request.Context(), page, limit)
	if aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (cc *CouponController) Deactivate(c *gin.Context) {
	if aerr := cc.coupons.Deactivate(c.Request.Context(), c.Param("code")); aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Kupon devre dışı bırakıldı"})
}

type validateCouponRequest struct {
	Code     string  `json:"code" binding:"required"`
	Subtotal float64 `json:"subtotal" binding:"required,gt=0"`
}

// Validate checks a coupon against a cart subtotal without consuming it.
func (cc *CouponController) Validate(c *gin.Context) {
	var req validateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Geçersiz kupon isteği"})
		return
	}

	coupon, discount, aerr := cc.coupons.Validate(c.Request.Context(), req.Code, req.Subtotal)
	if aerr != nil {
		fail(c, aerr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupon": coupon, "discount": discount})
}
