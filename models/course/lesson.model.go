package course

import "gorm.io/gorm"

// Lesson belongs to one course; InstructorID mirrors the course owner at creation time.
type Lesson struct {
	gorm.Model
	CourseID      uint   `json:"course_id" gorm:"index;not null"`
	InstructorID  uint   `json:"instructor_id" gorm:"index;not null"`
	Title         string `json:"title"`
	Content       string `json:"content" gorm:"type:text"`
	CoverImageURL string `json:"cover_image_url"`
	CoverPublicID string `json:"cover_public_id"`
	OrderIndex    int    `json:"order_index" gorm:"default:0"`
	IsDeleted     bool   `json:"-" gorm:"default:false"`
}
