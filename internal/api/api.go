// Package api provides the HTTP surface of the werewolf night judge.
//
// @title Werewolf Night Judge API
// @version 1.0
// @description Host-authoritative game-state engine for first-night werewolf games.
// @description Realtime play happens over the /ws endpoint; HTTP covers identity and room lifecycle.
//
// @host localhost:8080
// @BasePath /
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter 'Bearer {token}' to authorize
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/moxuan/werewolf-judge/internal/auth"
	"github.com/moxuan/werewolf-judge/internal/room"
	"github.com/moxuan/werewolf-judge/internal/store"
	"github.com/moxuan/werewolf-judge/internal/template"
	"github.com/moxuan/werewolf-judge/internal/types"
)

type contextKey string

const userIDKey contextKey = "user_id"

type Server struct {
	Router    *chi.Mux
	users     store.UserStore
	jwt       *auth.JWTManager
	roomMgr   *room.Manager
	templates *template.Registry
	logger    *zap.Logger
}

func NewServer(users store.UserStore, jwt *auth.JWTManager, roomMgr *room.Manager,
	templates *template.Registry, wsHandler http.Handler, logger *zap.Logger) *Server {

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware)

	s := &Server{
		Router:    r,
		users:     users,
		jwt:       jwt,
		roomMgr:   roomMgr,
		templates: templates,
		logger:    logger,
	}

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Post("/v1/auth/register", s.register)
	r.Post("/v1/auth/login", s.login)
	r.Post("/v1/auth/quick", s.quickLogin)

	r.Route("/v1/rooms", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/", s.createRoom)
		r.Get("/{room_code}/state", s.fetchState)
		r.Post("/{room_code}/end", s.endRoom)
	})
	r.Get("/v1/templates", s.listTemplates)

	r.Handle("/ws", wsHandler)
	return s
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := s.jwt.Parse(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userID(r *http.Request) string {
	uid, _ := r.Context().Value(userIDKey).(string)
	return uid
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// health godoc
// @Summary Health check endpoint
// @Tags System
// @Produce plain
// @Success 200 {string} string "ok"
// @Router /health [get]
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"password123"`
}

// AuthResponse represents the authentication response.
type AuthResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// register godoc
// @Summary Register a new user
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration details"
// @Success 200 {object} AuthResponse
// @Router /v1/auth/register [post]
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "hash error", http.StatusInternalServerError)
		return
	}
	u := store.User{ID: uuid.NewString(), Email: req.Email, PasswordHash: hash, CreatedAt: time.Now().UTC()}
	if err := s.users.CreateUser(r.Context(), u); err != nil {
		http.Error(w, "user exists or db error", http.StatusConflict)
		return
	}
	token, _ := s.jwt.Generate(u.ID)
	writeJSON(w, http.StatusOK, AuthResponse{Token: token, UserID: u.ID})
}

// login godoc
// @Summary User login
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Router /v1/auth/login [post]
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	u, err := s.users.FindUserByEmail(r.Context(), req.Email)
	if err != nil || u == nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if auth.CheckPassword(u.PasswordHash, req.Password) != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	token, _ := s.jwt.Generate(u.ID)
	writeJSON(w, http.StatusOK, AuthResponse{Token: token, UserID: u.ID})
}

// quickLogin godoc
// @Summary Anonymous login
// @Description Issues a stable participant id without registration.
// @Tags Authentication
// @Produce json
// @Success 200 {object} AuthResponse
// @Router /v1/auth/quick [post]
func (s *Server) quickLogin(w http.ResponseWriter, r *http.Request) {
	uid := uuid.NewString()
	token, err := s.jwt.Generate(uid)
	if err != nil {
		http.Error(w, "token error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Token: token, UserID: uid})
}

// CreateRoomRequest names the board for a new room.
type CreateRoomRequest struct {
	Template string `json:"template" example:"standard12"`
}

// CreateRoomResponse carries the allocated room code.
type CreateRoomResponse struct {
	RoomCode string `json:"room_code"`
}

// createRoom godoc
// @Summary Create a room
// @Description The caller becomes the room's host.
// @Tags Rooms
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateRoomRequest true "Board selection"
// @Success 200 {object} CreateRoomResponse
// @Router /v1/rooms [post]
func (s *Server) createRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	a, err := s.roomMgr.CreateRoom(r.Context(), userID(r), req.Template)
	if err != nil {
		status := http.StatusInternalServerError
		if types.Is(err, types.ErrBadRequest) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	s.logger.Info("room created",
		zap.String("room_code", a.Code), zap.String("host_uid", userID(r)))
	writeJSON(w, http.StatusOK, CreateRoomResponse{RoomCode: a.Code})
}

// fetchState godoc
// @Summary Fetch the public room state
// @Tags Rooms
// @Security BearerAuth
// @Produce json
// @Param room_code path string true "Room code"
// @Success 200 {object} engine.PublicView
// @Router /v1/rooms/{room_code}/state [get]
func (s *Server) fetchState(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "room_code")
	a, err := s.roomMgr.GetOrRecover(r.Context(), code)
	if err != nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, a.State())
}

// endRoom godoc
// @Summary Close a room
// @Tags Rooms
// @Security BearerAuth
// @Param room_code path string true "Room code"
// @Success 200 {string} string "ok"
// @Router /v1/rooms/{room_code}/end [post]
func (s *Server) endRoom(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "room_code")
	a, ok := s.roomMgr.Get(code)
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	resp := a.Dispatch(types.CommandEnvelope{
		CommandID: uuid.NewString(),
		RoomCode:  code,
		Type:      types.CmdEndRoom,
		ActorUID:  userID(r),
	})
	if resp.Err != nil {
		status := http.StatusInternalServerError
		if types.Is(resp.Err, types.ErrForbidden) {
			status = http.StatusForbidden
		}
		http.Error(w, resp.Err.Error(), status)
		return
	}
	w.Write([]byte("ok"))
}

// listTemplates godoc
// @Summary List available boards
// @Tags Rooms
// @Produce json
// @Success 200 {array} string
// @Router /v1/templates [get]
func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.templates.Names())
}
