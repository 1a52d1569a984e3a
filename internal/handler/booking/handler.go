package booking

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-api/internal/model"
	bookingService "github.com/clinicdesk/clinic-api/internal/service/booking"
	scheduleService "github.com/clinicdesk/clinic-api/internal/service/schedule"
	"github.com/clinicdesk/clinic-api/pkg/httputil"
)

type Handler struct {
	bookings *bookingService.Service
	schedule *scheduleService.Service
}

func NewHandler(bookings *bookingService.Service, schedule *scheduleService.Service) *Handler {
	return &Handler{bookings: bookings, schedule: schedule}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("/by_date", h.BookingsByDate)
		bookings.GET("/:id", h.GetBooking)
		bookings.PUT("/:id", h.UpdateBooking)
		bookings.DELETE("/:id", h.DeleteBooking)
	}
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	booking, err := h.bookings.CreateBooking(c.Request.Context(), &req)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.Created(c, booking)
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.BadRequest(c, "invalid booking ID")
		return
	}

	detail, err := h.bookings.GetBookingDetail(c.Request.Context(), id)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.OK(c, detail)
}

func (h *Handler) UpdateBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.BadRequest(c, "invalid booking ID")
		return
	}

	var req model.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	booking, err := h.bookings.UpdateBooking(c.Request.Context(), id, &req)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.OK(c, booking)
}

func (h *Handler) DeleteBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.BadRequest(c, "invalid booking ID")
		return
	}

	if err := h.bookings.DeleteBooking(c.Request.Context(), id); err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.OK(c, nil)
}

func (h *Handler) BookingsByDate(c *gin.Context) {
	date, err := model.ParseDate(c.Query("date"))
	if err != nil {
		httputil.BadRequest(c, "invalid date format, expected YYYY-MM-DD")
		return
	}

	bookings, err := h.schedule.BookingsByDate(c.Request.Context(), date)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	httputil.OK(c, bookings)
}
