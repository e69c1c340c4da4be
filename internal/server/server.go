// Package server wires the application together: it builds the dependency
// graph (store → services → handlers), defines the routes, and runs the
// HTTP server with graceful shutdown.
//
// This is the composition root — the only place that knows concrete types.
// Handlers get services, services get repository interfaces, and nobody
// below this package imports the sqlite package.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/anonymous123-code/chatApp/internal/access"
	"github.com/anonymous123-code/chatApp/internal/auth"
	"github.com/anonymous123-code/chatApp/internal/handler"
	"github.com/anonymous123-code/chatApp/internal/middleware"
	sqliteRepo "github.com/anonymous123-code/chatApp/internal/repository/sqlite"
	"github.com/anonymous123-code/chatApp/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port      int
	DBPath    string // path to the SQLite database file (":memory:" for ephemeral)
	JWTSecret string // HMAC secret for access tokens, min 16 chars
}

// Server owns the router and the database connection; the connection is
// closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server and assembles the full dependency chain:
//
//	sqlite.DB → access.Authorizer
//	          → AuthService / ChatService / InviteService
//	          → AuthHandler / ChatHandler / InviteHandler
//	          → routes
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// ServeHTTP dispatches to the router, making *Server usable anywhere an
// http.Handler is, including httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupRoutes configures middleware, builds the services and handlers, and
// maps routes.
//
// ROUTE MAP:
//
//	POST   /api/users/register                        register
//	POST   /api/token                                 login → JWT
//	GET    /api/users/me                              own full profile
//	GET    /api/users/{username}                      profile (public subset)
//	POST   /api/chats                                 create chat
//	GET    /api/chats                                 my chats
//	DELETE /api/chats/{chatID}                        delete chat (cascade)
//	GET    /api/chats/{chatID}/members                members
//	DELETE /api/chats/{chatID}/members/{username}     kick member
//	GET    /api/chats/{chatID}/messages               messages
//	POST   /api/chats/{chatID}/messages               send message
//	PUT    /api/chats/{chatID}/messages/{messageID}   edit own message
//	DELETE /api/chats/{chatID}/messages/{messageID}   delete own message
//	POST   /api/chats/{chatID}/invite                 generate invite
//	GET    /api/chats/{chatID}/invites                list invites
//	POST   /api/invites/{code}                        redeem invite
//	DELETE /api/invites/{code}                        delete invite
//
// Everything except register and token requires authentication.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	authz := access.New(s.db, s.db)
	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	chatService := service.NewChatService(s.db, s.db, authz, s.logger)
	inviteService := service.NewInviteService(s.db, s.db, authz, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	chatHandler := handler.NewChatHandler(chatService, s.logger)
	inviteHandler := handler.NewInviteHandler(inviteService, s.logger)

	requireAuth := auth.RequireAuth(tokens, s.db)

	s.router.Route("/api", func(r chi.Router) {
		// Public: the only two routes reachable without a token.
		r.Post("/users/register", authHandler.HandleRegister)
		r.Post("/token", authHandler.HandleToken)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/users/me", authHandler.HandleMe)
			r.Get("/users/{username}", authHandler.HandleGetUser)

			r.Post("/chats", chatHandler.HandleCreate)
			r.Get("/chats", chatHandler.HandleList)
			r.Delete("/chats/{chatID}", chatHandler.HandleDelete)

			r.Get("/chats/{chatID}/members", chatHandler.HandleMembers)
			r.Delete("/chats/{chatID}/members/{username}", chatHandler.HandleKick)

			r.Get("/chats/{chatID}/messages", chatHandler.HandleMessages)
			r.Post("/chats/{chatID}/messages", chatHandler.HandleSend)
			r.Put("/chats/{chatID}/messages/{messageID}", chatHandler.HandleEditMessage)
			r.Delete("/chats/{chatID}/messages/{messageID}", chatHandler.HandleDeleteMessage)

			r.Post("/chats/{chatID}/invite", inviteHandler.HandleGenerate)
			r.Get("/chats/{chatID}/invites", inviteHandler.HandleList)
			r.Post("/invites/{code}", inviteHandler.HandleRedeem)
			r.Delete("/invites/{code}", inviteHandler.HandleDelete)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30s, and
// close the database (flushes the WAL, releases the file lock).
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
