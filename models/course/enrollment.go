package course

import "gorm.io/gorm"

const (
	EnrollmentSourceFree   = "FREE"
	EnrollmentSourceStripe = "STRIPE"
)

// Enrollment is the proof that a learner may access a course
type Enrollment struct {
	gorm.Model
	UserID    uint   `json:"user_id" gorm:"index;not null"`
	CourseID  uint   `json:"course_id" gorm:"index;not null"`
	Status    string `json:"status" gorm:"default:'ENROLLED'"` // ENROLLED, COMPLETED
	Source    string `json:"source" gorm:"size:16;default:'FREE'"`
	IsDeleted bool   `json:"-" gorm:"default:false"`
}
