package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/Domenick1991/travelbooking/internal/accessor"
	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/remote"
	"github.com/Domenick1991/travelbooking/internal/session"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
)

const (
	minUsernameLength = 2
	maxUsernameLength = 50
	minPasswordLength = 8
	maxPasswordLength = 100

	usernameTaken = "A user with that username already exists."
)

type SessionManager interface {
	Login(ctx context.Context, creds accessor.Credentials) (*session.Session, error)
	Logout(ctx context.Context, s *session.Session) error
	SetCookie(c *gin.Context, s *session.Session)
	ClearCookie(c *gin.Context)
}

type Registrar interface {
	Register(ctx context.Context, in accessor.Registration) (domain.User, error)
}

type SessionHandler struct {
	sessions SessionManager
	users    Registrar
	limit    []gin.HandlerFunc
}

// NewSessionHandler builds the login, logout and sign-up endpoints. limit
// runs in front of login and sign-up.
func NewSessionHandler(sessions SessionManager, users Registrar, limit ...gin.HandlerFunc) *SessionHandler {
	return &SessionHandler{sessions: sessions, users: users, limit: limit}
}

func (h *SessionHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.status)
	router.POST("/login", h.limited(h.login)...)
	router.POST("/register", h.limited(h.register)...)
	router.POST("/logout", h.logout)
}

func (h *SessionHandler) limited(handler gin.HandlerFunc) []gin.HandlerFunc {
	return append(append([]gin.HandlerFunc{}, h.limit...), handler)
}

func (h *SessionHandler) status(c *gin.Context) {
	_, ok := session.From(c)
	c.JSON(http.StatusOK, gin.H{"authenticated": ok})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *SessionHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if n := len([]rune(req.Username)); n < minUsernameLength || n > maxUsernameLength || req.Password == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": gin.H{"username": "Username and password are required"}})
		return
	}

	s, err := h.sessions.Login(c.Request.Context(), accessor.Credentials{Username: req.Username, Password: req.Password})
	if err != nil {
		if errors.Is(err, remote.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		respondError(c, err)
		return
	}
	h.sessions.SetCookie(c, s)
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "redirect": "/"})
}

func (h *SessionHandler) logout(c *gin.Context) {
	if s, ok := session.From(c); ok {
		if err := h.sessions.Logout(c.Request.Context(), s); err != nil {
			respondError(c, err)
			return
		}
	}
	h.sessions.ClearCookie(c)
	c.JSON(http.StatusOK, gin.H{"authenticated": false, "redirect": "/login"})
}

type registerRequest struct {
	Username        string      `json:"username"`
	Password        string      `json:"password"`
	ConfirmPassword string      `json:"confirm_password"`
	UserType        domain.Role `json:"user_type"`
}

func (r registerRequest) validate() map[string]string {
	fields := map[string]string{}
	if n := len([]rune(strings.TrimSpace(r.Username))); n < minUsernameLength || n > maxUsernameLength {
		fields["username"] = "Username must be between 2 and 50 characters"
	}
	if n := len(r.Password); n < minPasswordLength || n > maxPasswordLength {
		fields["password"] = "Password must be between 8 and 100 characters"
	}
	if r.Password != r.ConfirmPassword {
		fields["confirm_password"] = "Passwords don't match"
	}
	if r.UserType != domain.RoleTraveler && r.UserType != domain.RoleHost {
		fields["user_type"] = "Choose Traveler or Host"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// register signs up a Traveler or Host. Staff accounts are never created
// here.
func (h *SessionHandler) register(c *gin.Context) {
	req := registerRequest{UserType: domain.RoleTraveler}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if fields := req.validate(); fields != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": fields})
		return
	}

	user, err := h.users.Register(c.Request.Context(), accessor.Registration{
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
		UserType: req.UserType,
	})
	if err != nil {
		var se *remote.StatusError
		if errors.As(err, &se) && strings.Contains(se.Body, usernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "validation failed", "fields": gin.H{"username": "Username already exists"}})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "redirect": "/login"})
}
