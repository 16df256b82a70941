package models

import (
	"time"

	"gorm.io/gorm"
)

// Verification code lifecycle states.
const (
	CodeStatusIssued     = "ISSUED"
	CodeStatusConsumed   = "CONSUMED"
	CodeStatusSuperseded = "SUPERSEDED"
	CodeStatusExpired    = "EXPIRED"
	CodeStatusRevoked    = "REVOKED"
	// the email carrying the code could not be sent
	CodeStatusUndelivered = "UNDELIVERED"
)

// VerificationCode gates a sensitive action behind a code mailed to the user.
// The partial unique index keeps at most one ISSUED code per (user, reason, target).
type VerificationCode struct {
	gorm.Model
	UserID     uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_live_verification_code,where:status = 'ISSUED'"`
	Reason     string     `json:"reason" gorm:"size:64;not null;uniqueIndex:idx_live_verification_code,where:status = 'ISSUED'"`
	TargetID   uint       `json:"target_id" gorm:"not null;uniqueIndex:idx_live_verification_code,where:status = 'ISSUED'"`
	Status     string     `json:"status" gorm:"size:16;index;not null;default:'ISSUED'"`
	CodeHash   string     `json:"-" gorm:"size:100;not null"`
	Attempts   int        `json:"attempts" gorm:"default:0"`
	ExpiresAt  time.Time  `json:"expires_at" gorm:"index;not null"`
	ConsumedAt *time.Time `json:"consumed_at"`
}
