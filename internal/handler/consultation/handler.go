package consultation

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ccsfp/clinic-api/internal/handler"
	"github.com/ccsfp/clinic-api/internal/model"
	consultationService "github.com/ccsfp/clinic-api/internal/service/consultation"
)

type Handler struct {
	svc *consultationService.Service
}

func NewHandler(svc *consultationService.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	consultations := rg.Group("/consultations")
	{
		consultations.GET("", h.List)
		consultations.POST("", h.Create)
		consultations.PUT("/:id", h.Replace)
		consultations.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) List(c *gin.Context) {
	consultations, err := h.svc.List(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(consultations))
}

func (h *Handler) Create(c *gin.Context) {
	var payload model.Consultation
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	id, err := h.svc.Create(c.Request.Context(), &payload)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, &handler.Response{
		Status:  "success",
		Message: "Consultation created successfully.",
		Data:    gin.H{"id": id.String()},
	})
}

func (h *Handler) Replace(c *gin.Context) {
	var payload model.Consultation
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.svc.Replace(c.Request.Context(), c.Param("id"), &payload); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse("Consultation updated successfully."))
}

func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse(fmt.Sprintf("Consultation with ID %s deleted successfully.", id)))
}
