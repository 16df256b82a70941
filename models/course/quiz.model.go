package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Quiz groups questions inside a course
type Quiz struct {
	gorm.Model
	CourseID  uint   `json:"course_id" gorm:"index;not null"`
	Title     string `json:"title"`
	IsDeleted bool   `json:"-" gorm:"default:false"`
}

// Question is a multiple choice question; Options holds a JSON array of strings.
type Question struct {
	gorm.Model
	QuizID        uint           `json:"quiz_id" gorm:"index;not null"`
	QuestionText  string         `json:"question_text" gorm:"type:text"`
	Options       datatypes.JSON `json:"options"`
	CorrectOption *int           `json:"correct_option,omitempty"`
	Points        int            `json:"points" gorm:"default:1"`
	IsDeleted     bool           `json:"-" gorm:"default:false"`
}
