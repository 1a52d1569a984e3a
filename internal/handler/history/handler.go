package history

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	historyService "github.com/clinicdesk/clinic-api/internal/service/history"
	"github.com/clinicdesk/clinic-api/pkg/httputil"
)

type Handler struct {
	history *historyService.Service
}

func NewHandler(history *historyService.Service) *Handler {
	return &Handler{history: history}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	rows := r.Group("/history")
	{
		rows.GET("", h.ListHistory)
		rows.GET("/:id", h.GetHistory)
	}
}

func (h *Handler) ListHistory(c *gin.Context) {
	rows, err := h.history.List(c.Request.Context())
	if err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.OK(c, rows)
}

func (h *Handler) GetHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.BadRequest(c, "invalid history ID")
		return
	}

	row, err := h.history.Get(c.Request.Context(), id)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.OK(c, row)
}
