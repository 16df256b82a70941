package chatRoutes

import (
	chatController "learnhub/controllers/chat"
	"learnhub/validators"
	chatValidators "learnhub/validators/chat"

	"github.com/gofiber/fiber/v2"
)

func SetupChatRoutes(app *fiber.App, ctl *chatController.Controller, auth fiber.Handler) {
	id := validators.ID("id")
	chatGroup := app.Group("/chat", auth)

	chatGroup.Post("/room", chatValidators.CreateRoom(), ctl.CreateRoom)
	chatGroup.Get("/room/:id", id, ctl.GetRoom)
	chatGroup.Post("/room/:id/message", id, chatValidators.PostMessage(), ctl.PostMessage)
	chatGroup.Delete("/message/:id", id, ctl.DeleteMessage)
}
