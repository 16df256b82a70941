package chatController

import (
	"errors"

	"learnhub/apperrors"
	"learnhub/logger"
	"learnhub/middleware"
	"learnhub/models/chat"
	"learnhub/services/entitlement"
	"learnhub/validators"
	chatValidator "learnhub/validators/chat"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const recentMessages = 50

type Controller struct {
	db      *gorm.DB
	checker *entitlement.Checker
	log     *logger.Logger
}

func New(db *gorm.DB, checker *entitlement.Checker, log *logger.Logger) *Controller {
	return &Controller{db: db, checker: checker, log: log.With("controller", "chat")}
}

func (ctl *Controller) CreateRoom(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	reqData, ok := c.Locals("validatedRoom").(*chatValidator.CreateRoomRequest)
	if !ok {
		return apperrors.BadRequest("Invalid request data!")
	}

	if _, err := ctl.checker.CheckCourse(c.UserContext(), userID, reqData.CourseID, entitlement.RelationOwner); err != nil {
		return err
	}

	room := chat.ChatRoom{CourseID: reqData.CourseID, Name: reqData.Name}
	if err := ctl.db.WithContext(c.UserContext()).Create(&room).Error; err != nil {
		return apperrors.Internal("Failed to create chat room!", err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Chat room created successfully!", room)
}

// GetRoom returns the room and its most recent messages, oldest first.
func (ctl *Controller) GetRoom(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	roomID := validators.LocalID(c, "id")
	db := ctl.db.WithContext(c.UserContext())

	ref := entitlement.Ref{Kind: entitlement.KindChatRoom, ID: roomID}
	if _, err := ctl.checker.Check(c.UserContext(), userID, ref, entitlement.RelationMember); err != nil {
		return err
	}

	var room chat.ChatRoom
	if err := db.Where("id = ? AND is_deleted = ?", roomID, false).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Chat room not found!")
		}
		return apperrors.Internal("Failed to load chat room!", err)
	}

	var messages []chat.ChatMessage
	if err := db.Where("room_id = ? AND is_deleted = ?", roomID, false).
		Order("id DESC").
		Limit(recentMessages).
		Find(&messages).Error; err != nil {
		return apperrors.Internal("Failed to fetch messages!", err)
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Chat room fetched successfully!", fiber.Map{
		"room":     room,
		"messages": messages,
	})
}

func (ctl *Controller) PostMessage(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	reqData, ok := c.Locals("validatedMessage").(*chatValidator.PostMessageRequest)
	if !ok {
		return apperrors.BadRequest("Invalid request data!")
	}
	roomID := validators.LocalID(c, "id")

	ref := entitlement.Ref{Kind: entitlement.KindChatRoom, ID: roomID}
	if _, err := ctl.checker.Check(c.UserContext(), userID, ref, entitlement.RelationMember); err != nil {
		return err
	}

	msg := chat.ChatMessage{RoomID: roomID, SenderID: userID, Body: reqData.Body}
	if err := ctl.db.WithContext(c.UserContext()).Create(&msg).Error; err != nil {
		return apperrors.Internal("Failed to send message!", err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Message sent successfully!", msg)
}

// DeleteMessage lets members delete their own messages; the course owner may delete any.
func (ctl *Controller) DeleteMessage(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	messageID := validators.LocalID(c, "id")
	db := ctl.db.WithContext(c.UserContext())

	var msg chat.ChatMessage
	if err := db.Where("id = ? AND is_deleted = ?", messageID, false).First(&msg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Message not found!")
		}
		return apperrors.Internal("Failed to load message!", err)
	}

	ref := entitlement.Ref{Kind: entitlement.KindChatRoom, ID: msg.RoomID}
	grant, err := ctl.checker.Check(c.UserContext(), userID, ref, entitlement.RelationMember)
	if err != nil {
		return err
	}
	if msg.SenderID != userID && grant.Role != entitlement.RoleInstructor {
		return apperrors.NotAllowed("You can only delete your own messages!")
	}

	res := db.Model(&chat.ChatMessage{}).
		Where("id = ? AND is_deleted = ?", msg.ID, false).
		Update("is_deleted", true)
	if res.Error != nil {
		return apperrors.Internal("Failed to delete message!", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Message not found!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Message deleted successfully!", nil)
}
