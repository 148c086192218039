package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/williamsclintwayne/whatsappClone-backend/internal/config"
	"github.com/williamsclintwayne/whatsappClone-backend/internal/database"
	postgresrepo "github.com/williamsclintwayne/whatsappClone-backend/internal/repository/postgres"
	"github.com/williamsclintwayne/whatsappClone-backend/internal/service"
	"github.com/williamsclintwayne/whatsappClone-backend/internal/transport/http/handlers"
	"github.com/williamsclintwayne/whatsappClone-backend/internal/transport/http/middleware"
	"github.com/williamsclintwayne/whatsappClone-backend/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	log.Println("Connected to database")

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	contactRepo := postgresrepo.NewContactRepo(pool)
	messageRepo := postgresrepo.NewMessageRepo(pool)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	userService := service.NewUserService(userRepo, contactRepo)
	messageService := service.NewMessageService(messageRepo, userRepo)
	conversationService := service.NewConversationService(messageRepo, userRepo)

	// Realtime gateway
	registry := ws.NewRegistry()
	hub := ws.NewHub(registry, messageService, userService)
	messageService.SetNotifier(ws.NewHubNotifier(hub))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	messageHandler := handlers.NewMessageHandler(messageService, conversationService)

	// Auth middleware
	auth := middleware.Auth(cfg.JWTSecret)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	// WebSocket (token auth via query param)
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, cfg.JWTSecret))

	// Protected - Users & contacts
	mux.Handle("GET /api/v1/users/me", auth(http.HandlerFunc(userHandler.Me)))
	mux.Handle("GET /api/v1/users/{id}", auth(http.HandlerFunc(userHandler.Get)))
	mux.Handle("PUT /api/v1/users/me/status", auth(http.HandlerFunc(userHandler.UpdateStatus)))
	mux.Handle("POST /api/v1/contacts", auth(http.HandlerFunc(userHandler.AddContact)))
	mux.Handle("GET /api/v1/contacts", auth(http.HandlerFunc(userHandler.ListContacts)))
	mux.Handle("DELETE /api/v1/contacts/{id}", auth(http.HandlerFunc(userHandler.RemoveContact)))

	// Protected - Messages
	mux.Handle("POST /api/v1/messages", auth(http.HandlerFunc(messageHandler.Create)))
	mux.Handle("GET /api/v1/messages/conversation/{peer}", auth(http.HandlerFunc(messageHandler.GetConversation)))
	mux.Handle("GET /api/v1/messages/conversations", auth(http.HandlerFunc(messageHandler.ListConversations)))
	mux.Handle("PUT /api/v1/messages/read/{senderId}", auth(http.HandlerFunc(messageHandler.MarkRead)))
	mux.Handle("GET /api/v1/messages/unread-count", auth(http.HandlerFunc(messageHandler.UnreadCount)))
	mux.Handle("POST /api/v1/messages/search/{peerId}", auth(http.HandlerFunc(messageHandler.Search)))
	mux.Handle("GET /api/v1/messages/{id}", auth(http.HandlerFunc(messageHandler.Get)))
	mux.Handle("PUT /api/v1/messages/{id}", auth(http.HandlerFunc(messageHandler.Edit)))
	mux.Handle("DELETE /api/v1/messages/{id}", auth(http.HandlerFunc(messageHandler.Delete)))
	mux.Handle("POST /api/v1/messages/{id}/forward", auth(http.HandlerFunc(messageHandler.Forward)))

	// Start server with CORS
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("Starting server on %s", addr)
	log.Fatal(http.ListenAndServe(addr, middleware.CORS(mux)))
}
