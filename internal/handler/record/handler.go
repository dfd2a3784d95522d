package record

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ccsfp/clinic-api/internal/handler"
	"github.com/ccsfp/clinic-api/internal/model"
	"github.com/ccsfp/clinic-api/internal/service/visit"
)

type Handler struct {
	svc *visit.Service
}

func NewHandler(svc *visit.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	records := rg.Group("/records")
	{
		records.GET("", h.List)
		records.POST("", h.Create)
	}
}

func (h *Handler) List(c *gin.Context) {
	records, err := h.svc.List(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}

func (h *Handler) Create(c *gin.Context) {
	var rec model.VisitRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if _, err := h.svc.Create(c.Request.Context(), &rec); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewMessageResponse("Record saved"))
}
