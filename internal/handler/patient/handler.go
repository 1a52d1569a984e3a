package patient

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-api/internal/model"
	catalogService "github.com/clinicdesk/clinic-api/internal/service/catalog"
	historyService "github.com/clinicdesk/clinic-api/internal/service/history"
	"github.com/clinicdesk/clinic-api/pkg/httputil"
)

type Handler struct {
	catalog *catalogService.Service
	history *historyService.Service
}

func NewHandler(catalog *catalogService.Service, history *historyService.Service) *Handler {
	return &Handler{catalog: catalog, history: history}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.DeletePatient)
		patients.GET("/:id/history", h.PatientHistory)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	patient, err := h.catalog.CreatePatient(c.Request.Context(), &req)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.Created(c, patient)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.BadRequest(c, "invalid patient ID")
		return
	}

	patient, err := h.catalog.GetPatient(c.Request.Context(), id)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.OK(c, patient)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.BadRequest(c, "invalid patient ID")
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	patient, err := h.catalog.UpdatePatient(c.Request.Context(), id, &req)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.OK(c, patient)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.BadRequest(c, "invalid patient ID")
		return
	}

	if err := h.catalog.DeletePatient(c.Request.Context(), id); err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.OK(c, nil)
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.catalog.ListPatients(c.Request.Context())
	if err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.OK(c, patients)
}

func (h *Handler) PatientHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.BadRequest(c, "invalid patient ID")
		return
	}

	rows, err := h.history.ListForPatient(c.Request.Context(), id)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.OK(c, rows)
}
