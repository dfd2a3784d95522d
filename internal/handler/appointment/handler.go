package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ccsfp/clinic-api/internal/handler"
	"github.com/ccsfp/clinic-api/internal/model"
	"github.com/ccsfp/clinic-api/internal/service/scheduling"
)

type Handler struct {
	svc *scheduling.Service
}

func NewHandler(svc *scheduling.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the public booking endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	appointments := rg.Group("/appointments")
	{
		appointments.GET("", h.List)
		appointments.POST("", h.Create)
	}
}

// RegisterStaffRoutes mounts the endpoints acting on existing bookings.
func (h *Handler) RegisterStaffRoutes(rg *gin.RouterGroup) {
	appointments := rg.Group("/appointments")
	{
		appointments.PATCH("/:id/accept", h.Accept)
		appointments.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) List(c *gin.Context) {
	appointments, err := h.svc.List(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	id, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, &handler.Response{
		Status:  "success",
		Message: "Appointment created successfully.",
		Data:    gin.H{"id": id.String()},
	})
}

func (h *Handler) Accept(c *gin.Context) {
	if err := h.svc.Accept(c.Request.Context(), c.Param("id")); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse("Appointment accepted successfully"))
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse("Appointment deleted successfully"))
}
