package router

import (
	"context"

	"medical_chat_service/internal/chat/app"
	"medical_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes register the chat REST surface and the websocket entry
func RegisterRoutes(r *fiber.App, rest *app.ChatRestHandler, ws *app.ChatWebsocketHandler) {
	r.Use(middlewares.JWTMiddleware())

	chat := r.Group("/chat")
	chat.Post("/rooms", rest.CreateRoom)
	chat.Get("/rooms", rest.ListRooms)
	chat.Get("/rooms/:roomId/messages", rest.ListMessages)
	chat.Post("/rooms/:roomId/messages", rest.SendMessage)
	chat.Put("/rooms/:roomId/read", rest.MarkRead)

	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		ws.HandleConnection(context.Background(), c)
	}))
}
