package course

import "gorm.io/gorm"

// Course represents a learning course owned by a single instructor
type Course struct {
	gorm.Model
	InstructorID uint   `json:"instructor_id" gorm:"index;not null"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Price        int64  `json:"price" gorm:"default:0"` // smallest currency unit; 0 means free
	Currency     string `json:"currency" gorm:"size:8;default:'usd'"`
	Status       string `json:"status" gorm:"default:'DRAFT'"` // DRAFT, ACTIVE, INACTIVE
	ThumbnailURL string `json:"thumbnail_url"`
	IsDeleted    bool   `json:"-" gorm:"default:false"`
}
