package account

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ccsfp/clinic-api/internal/handler"
	"github.com/ccsfp/clinic-api/internal/model"
	accountService "github.com/ccsfp/clinic-api/internal/service/account"
)

type Handler struct {
	svc *accountService.Service
}

func NewHandler(svc *accountService.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the public auth endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}

// RegisterAdminRoutes mounts the account-management endpoints.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.GET("", h.ListAll)
		users.GET("/pending", h.ListPending)
		users.POST("/approve", h.Approve)
		users.POST("/admin", h.CreateAdmin)
		users.DELETE("/:username", h.Delete)
		users.DELETE("", h.DeleteAll)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if _, err := h.svc.Register(c.Request.Context(), &req); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewMessageResponse("Registration successful. Please wait for approval."))
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) ListPending(c *gin.Context) {
	accounts, err := h.svc.ListPending(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(accounts))
}

func (h *Handler) ListAll(c *gin.Context) {
	accounts, err := h.svc.ListAll(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(accounts))
}

func (h *Handler) Approve(c *gin.Context) {
	var req model.ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.svc.Approve(c.Request.Context(), req.Username); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse("User approved successfully"))
}

func (h *Handler) CreateAdmin(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if _, err := h.svc.CreateAdmin(c.Request.Context(), &req); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewMessageResponse("Admin user created successfully"))
}

func (h *Handler) Delete(c *gin.Context) {
	username := c.Param("username")

	if err := h.svc.Delete(c.Request.Context(), username); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse(fmt.Sprintf("User '%s' deleted successfully", username)))
}

func (h *Handler) DeleteAll(c *gin.Context) {
	deleted, err := h.svc.DeleteAll(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse(fmt.Sprintf("Deleted %d admin users.", deleted)))
}
