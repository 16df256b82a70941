package chat

import "gorm.io/gorm"

// ChatRoom is a discussion room attached to a course
type ChatRoom struct {
	gorm.Model
	CourseID  uint   `json:"course_id" gorm:"index;not null"`
	Name      string `json:"name"`
	IsDeleted bool   `json:"-" gorm:"default:false"`
}

// ChatMessage is a message posted in a room
type ChatMessage struct {
	gorm.Model
	RoomID    uint   `json:"room_id" gorm:"index;not null"`
	SenderID  uint   `json:"sender_id" gorm:"index;not null"`
	Body      string `json:"body" gorm:"type:text"`
	IsDeleted bool   `json:"-" gorm:"default:false"`
}
