package api

import (
	"context"
	"net/http"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/guard"
	"github.com/Domenick1991/travelbooking/internal/remote"
	"github.com/gin-gonic/gin"
)

type AccessChecker interface {
	Check(ctx context.Context, required domain.Role, wait bool) guard.Decision
}

type CurrentUser interface {
	MeResult(ctx context.Context, wait bool) remote.Result[domain.User]
}

type AccessHandler struct {
	guard AccessChecker
	users CurrentUser
}

func NewAccessHandler(g AccessChecker, users CurrentUser) *AccessHandler {
	return &AccessHandler{guard: g, users: users}
}

func (h *AccessHandler) Register(router *gin.RouterGroup) {
	router.GET("/me", h.me)
	router.GET("/access/:role", h.access)
	router.GET("/nav", h.nav)
}

// wait is false only for ?wait=false; pages polling the guard use it.
func wait(c *gin.Context) bool {
	return c.DefaultQuery("wait", "true") != "false"
}

func (h *AccessHandler) me(c *gin.Context) {
	c.JSON(http.StatusOK, h.users.MeResult(c.Request.Context(), wait(c)))
}

func (h *AccessHandler) access(c *gin.Context) {
	role, err := domain.ParseRole(c.Param("role"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.guard.Check(c.Request.Context(), role, wait(c)))
}

type navResponse struct {
	Authenticated bool             `json:"authenticated"`
	Role          domain.Role      `json:"role,omitempty"`
	Items         []domain.NavItem `json:"items"`
}

func (h *AccessHandler) nav(c *gin.Context) {
	result := h.users.MeResult(c.Request.Context(), true)
	if !result.IsSuccess() || result.Data.IsZero() {
		c.JSON(http.StatusOK, navResponse{Items: []domain.NavItem{}})
		return
	}
	role := result.Data.UserType
	c.JSON(http.StatusOK, navResponse{Authenticated: true, Role: role, Items: role.Navigation()})
}
