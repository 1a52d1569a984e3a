package doctor

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-api/internal/model"
	catalogService "github.com/clinicdesk/clinic-api/internal/service/catalog"
	scheduleService "github.com/clinicdesk/clinic-api/internal/service/schedule"
	"github.com/clinicdesk/clinic-api/pkg/httputil"
)

type Handler struct {
	catalog  *catalogService.Service
	schedule *scheduleService.Service
}

func NewHandler(catalog *catalogService.Service, schedule *scheduleService.Service) *Handler {
	return &Handler{catalog: catalog, schedule: schedule}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.POST("", h.CreateDoctor)
		doctors.GET("", h.ListDoctors)
		doctors.GET("/:id", h.GetDoctor)
		doctors.PUT("/:id", h.UpdateDoctor)
		doctors.DELETE("/:id", h.DeleteDoctor)
		doctors.GET("/:id/schedule/:date", h.DoctorSchedule)
		doctors.POST("/:id/services/:serviceId", h.AttachService)
		doctors.DELETE("/:id/services/:serviceId", h.DetachService)
	}
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	var req model.CreateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	doctor, err := h.catalog.CreateDoctor(c.Request.Context(), &req)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.Created(c, doctor)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.BadRequest(c, "invalid doctor ID")
		return
	}

	doctor, err := h.catalog.GetDoctor(c.Request.Context(), id)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.OK(c, doctor)
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.BadRequest(c, "invalid doctor ID")
		return
	}

	var req model.UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	doctor, err := h.catalog.UpdateDoctor(c.Request.Context(), id, &req)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.OK(c, doctor)
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.BadRequest(c, "invalid doctor ID")
		return
	}

	if err := h.catalog.DeleteDoctor(c.Request.Context(), id); err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.OK(c, nil)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.catalog.ListDoctors(c.Request.Context())
	if err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.OK(c, doctors)
}

func (h *Handler) DoctorSchedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.BadRequest(c, "invalid doctor ID")
		return
	}

	date, err := model.ParseDate(c.Param("date"))
	if err != nil {
		httputil.BadRequest(c, "invalid date format, expected YYYY-MM-DD")
		return
	}

	bookings, err := h.schedule.DoctorSchedule(c.Request.Context(), id, date)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.OK(c, bookings)
}

func (h *Handler) AttachService(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.BadRequest(c, "invalid doctor ID")
		return
	}

	serviceID, err := uuid.Parse(c.Param("serviceId"))
	if err != nil {
		httputil.BadRequest(c, "invalid service ID")
		return
	}

	if err := h.catalog.AttachService(c.Request.Context(), doctorID, serviceID); err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.OK(c, nil)
}

func (h *Handler) DetachService(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.BadRequest(c, "invalid doctor ID")
		return
	}

	serviceID, err := uuid.Parse(c.Param("serviceId"))
	if err != nil {
		httputil.BadRequest(c, "invalid service ID")
		return
	}

	if err := h.catalog.DetachService(c.Request.Context(), doctorID, serviceID); err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.OK(c, nil)
}
