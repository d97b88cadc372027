package services

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"cmticaret/models"
	"cmticaret/pkg/apierr"
	"cmticaret/repository"

	"github.com/google/uuid"
)

// CouponInput carries the writable coupon fields.
type CouponInput struct {
	Code          string  `json:"code" binding:"required,min=3,max=32"`
	Type          string  `json:"type" binding:"required,oneof=percentage flat"`
	Value         float64 `json:"value" binding:"required,gt=0"`
	MinOrderValue float64 `json:"min_order_value" binding:"gte=0"`
	UsageLimit    int     `json:"usage_limit" binding:"gte=0"`
	ExpiresAt     string  `json:"expires_at" binding:"required"`
}

// CouponListResponse wraps a coupon page with paging metadata.
type CouponListResponse struct {
	Coupons []models.Coupon `json:"coupons"`
	Meta    MetaData        `json:"meta"`
}

type CouponService struct {
	coupons repository.CouponRepository
}

func NewCouponService(coupons repository.CouponRepository) *CouponService {
	return &CouponService{coupons: coupons}
}

func (s *CouponService) Create(ctx context.Context, in CouponInput) (*models.Coupon, *apierr.Error) {
	expiresAt, err := time.Parse(time.RFC3339, in.ExpiresAt)
	if err != nil {
		return nil, apierr.BadRequest("Geçersiz son kullanma tarihi")
	}
	if !expiresAt.After(time.Now()) {
		return nil, apierr.BadRequest("Son kullanma tarihi geçmişte olamaz")
	}
	if models.CouponType(in.Type) == models.CouponTypePercentage && in.Value > 100 {
		return nil, apierr.BadRequest("Yüzde indirimi 100'den büyük olamaz")
	}

	coupon := &models.Coupon{
		ID:            uuid.NewString(),
		Code:          strings.ToUpper(strings.TrimSpace(in.Code)),
		Type:          models.CouponType(in.Type),
		Value:         in.Value,
		MinOrderValue: in.MinOrderValue,
		UsageLimit:    in.UsageLimit,
		ExpiresAt:     expiresAt.UTC(),
		Active:        true,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.coupons.Create(ctx, coupon); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apierr.New(http.StatusConflict, "Bu kupon kodu zaten mevcut", nil)
		}
		return nil, apierr.Internal("Kupon oluşturulamadı", err)
	}
	return coupon, nil
}

// Validate checks a coupon against an order subtotal and returns the
// discount it grants. It does not consume the coupon.
func (s *CouponService) Validate(ctx context.Context, code string, subtotal float64) (*models.Coupon, float64, *apierr.Error) {
	coupon, err := s.coupons.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, 0, apierr.NotFound("Kupon bulunamadı veya aktif değil")
		}
		return nil, 0, apierr.Internal("Kupon doğrulanamadı", err)
	}

	if time.Now().After(coupon.ExpiresAt) {
		return nil, 0, apierr.BadRequest("Kuponun süresi dolmuş")
	}
	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return nil, 0, apierr.BadRequest("Kupon kullanım limiti dolmuş")
	}
	if subtotal < coupon.MinOrderValue {
		return nil, 0, apierr.BadRequest("Sepet tutarı kupon için yetersiz")
	}

	return coupon, Discount(coupon, subtotal), nil
}

// Redeem marks one use of the coupon after a successful order.
func (s *CouponService) Redeem(ctx context.Context, code string) error {
	return s.coupons.IncrementUsedCount(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

func (s *CouponService) Deactivate(ctx context.Context, code string) *apierr.Error {
	if err := s.coupons.Deactivate(ctx, strings.ToUpper(strings.TrimSpace(code))); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apierr.NotFound("Kupon bulunamadı")
		}
		return apierr.Internal("Kupon devre dışı bırakılamadı", err)
	}
	return nil
}

func (s *CouponService) List(ctx context.Context, page, limit int) (*CouponListResponse, *apierr.Error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	coupons, total, err := s.coupons.FindAll(ctx, page, limit)
	if err != nil {
		return nil, apierr.Internal("Kuponlar yüklenemedi", err)
	}
	if coupons == nil {
		coupons = []models.Coupon{}
	}
	return &CouponListResponse{
		Coupons: coupons,
		Meta: MetaData{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages(total, limit),
		},
	}, nil
}

// Discount computes the amount a coupon takes off a subtotal, rounded to
// kuruş and never exceeding the subtotal itself.
func Discount(coupon *models.Coupon, subtotal float64) float64 {
	var discount float64
	switch coupon.Type {
	case models.CouponTypePercentage:
		discount = subtotal * coupon.Value / 100
	case models.CouponTypeFlat:
		discount = coupon.Value
	}
	if discount > subtotal {
		discount = subtotal
	}
	return math.Round(discount*100) / 100
}
