package models

import "gorm.io/gorm"

const (
	PaymentStatusPaid     = "PAID"
	PaymentStatusRefunded = "REFUNDED"
)

// Payment records a completed Stripe checkout for a course.
type Payment struct {
	gorm.Model
	StripeEventID     string `json:"stripe_event_id" gorm:"size:255;uniqueIndex;not null"`
	CheckoutSessionID string `json:"checkout_session_id" gorm:"size:255;index"`
	PaymentIntentID   string `json:"payment_intent_id" gorm:"size:255;index"`
	UserID            uint   `json:"user_id" gorm:"index;not null"`
	CourseID          uint   `json:"course_id" gorm:"index;not null"`
	Amount            int64  `json:"amount"`
	Currency          string `json:"currency" gorm:"size:8"`
	Status            string `json:"status" gorm:"size:16;default:'PAID'"`
}
