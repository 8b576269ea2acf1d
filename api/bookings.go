package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quantumair/qbooking/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	FlightID         int64  `json:"flight_id"`
	Row              string `json:"row"`
	Column           string `json:"column"`
	PassengerName    string `json:"passenger_name"`
	IdentityDocument string `json:"identity_document"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:reference/verify", h.verify)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conf, err := h.service.Book(c.Request.Context(), booking.BookInput{
		FlightID:         req.FlightID,
		Row:              req.Row,
		Column:           req.Column,
		PassengerName:    req.PassengerName,
		IdentityDocument: req.IdentityDocument,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, conf)
}

func (h *BookingHandler) verify(c *gin.Context) {
	result, err := h.service.Verify(c.Request.Context(), c.Param("reference"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
