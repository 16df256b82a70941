package models

import (
	"time"

	"gorm.io/gorm"
)

// Stored role values. Anything else is treated as an "other" principal.
const (
	RoleInstructor = "INSTRUCTOR"
	RoleLearner    = "LEARNER"
)

type User struct {
	gorm.Model
	Name                string     `json:"name" gorm:"default:''"`
	Email               string     `json:"email" gorm:"unique;not null"`
	PendingEmail        string     `json:"-" gorm:"default:''"` // set while an email change awaits its code
	Role                string     `json:"role" gorm:"default:'LEARNER'"`
	Password            string     `json:"-" gorm:"not null"`
	ProfileImage        string     `json:"profile_image" gorm:"default:''"`
	ProfileImageID      string     `json:"-" gorm:"default:''"`
	IsEmailVerified     bool       `json:"is_email_verified" gorm:"default:false"`
	LastLogin           *time.Time `json:"last_login"`
	FailedLoginAttempts int        `json:"-" gorm:"default:0"`
	LastFailedLogin     *time.Time `json:"-"`
	BlockedUntil        *time.Time `json:"-"`
	IsDeleted           bool       `json:"-" gorm:"default:false"`
}
