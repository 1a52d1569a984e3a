package service

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-api/internal/model"
	catalogService "github.com/clinicdesk/clinic-api/internal/service/catalog"
	"github.com/clinicdesk/clinic-api/pkg/httputil"
)

type Handler struct {
	catalog *catalogService.Service
}

func NewHandler(catalog *catalogService.Service) *Handler {
	return &Handler{catalog: catalog}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	services := r.Group("/services")
	{
		services.POST("", h.CreateService)
		services.GET("", h.ListServices)
		services.GET("/:id", h.GetService)
		services.PUT("/:id", h.UpdateService)
		services.DELETE("/:id", h.DeleteService)
		services.GET("/:id/doctors", h.ServiceDoctors)
	}
}

func (h *Handler) CreateService(c *gin.Context) {
	var req model.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	service, err := h.catalog.CreateService(c.Request.Context(), &req)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.Created(c, service)
}

func (h *Handler) GetService(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.BadRequest(c, "invalid service ID")
		return
	}

	service, err := h.catalog.GetService(c.Request.Context(), id)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.OK(c, service)
}

func (h *Handler) UpdateService(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.BadRequest(c, "invalid service ID")
		return
	}

	var req model.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	service, err := h.catalog.UpdateService(c.Request.Context(), id, &req)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.OK(c, service)
}

func (h *Handler) DeleteService(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.BadRequest(c, "invalid service ID")
		return
	}

	if err := h.catalog.DeleteService(c.Request.Context(), id); err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.OK(c, nil)
}

func (h *Handler) ListServices(c *gin.Context) {
	services, err := h.catalog.ListServices(c.Request.Context())
	if err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.OK(c, services)
}

func (h *Handler) ServiceDoctors(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.BadRequest(c, "invalid service ID")
		return
	}

	doctors, err := h.catalog.DoctorsForService(c.Request.Context(), id)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.OK(c, doctors)
}
