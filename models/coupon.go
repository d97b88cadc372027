package models

import "time"

type CouponType string

const (
	CouponTypePercentage CouponType = "percentage"
	CouponTypeFlat       CouponType = "flat"
)

type Coupon struct {
	ID            string     `json:"id" bson:"_id"`
	Code          string     `json:"code" bson:"code"`
	Type          CouponType `json:"type" bson:"type"`
	Value         float64    `json:"value" bson:"value"`
	MinOrderValue float64    `json:"min_order_value" bson:"min_order_value"`
	UsageLimit    int        `json:"usage_limit" bson:"usage_limit"`
	UsedCount     int        `json:"used_count" bson:"used_count"`
	ExpiresAt     time.Time  `json:"expires_at" bson:"expires_at"`
	Active        bool       `json:"active" bson:"active"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
}
