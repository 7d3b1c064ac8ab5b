// controllers/reservation_controller.go
package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotel-reservations/middleware"
	"hotel-reservations/repositories"
	"hotel-reservations/services"
	"hotel-reservations/utils"
)

type CreateReservationRequest struct {
	CustomerID   uint   `json:"customer_id" binding:"required,gt=0"`
	RoomID       uint   `json:"room_id" binding:"required,gt=0"`
	CheckInDate  string `json:"check_in_date" binding:"required,isodate"`
	CheckOutDate string `json:"check_out_date" binding:"required,isodate"`
}

// UpdateReservationRequest leaves status unchecked here so an unknown value
// is reported as an invalid status rather than a generic validation error.
type UpdateReservationRequest struct {
	CustomerID   *uint   `json:"customer_id" binding:"omitempty,gt=0"`
	RoomID       *uint   `json:"room_id" binding:"omitempty,gt=0"`
	CheckOutDate *string `json:"check_out_date" binding:"omitempty,isodate"`
	Status       *string `json:"status"`
}

// derived fields that can only change as a consequence of other edits
var reservationLockedFields = []string{"customer_name", "room_number", "check_in_date", "total_amount"}

type ReservationController struct {
	ReservationSvc *services.ReservationService
	Log            *zap.Logger
}

func NewReservationController(svc *services.ReservationService, log *zap.Logger) *ReservationController {
	return &ReservationController{ReservationSvc: svc, Log: log}
}

// GetReservations handles GET /api/reservations
func (rc *ReservationController) GetReservations(c *gin.Context) {
	var f repositories.ReservationFilter
	for name, dst := range map[string]**time.Time{"check_in_date": &f.CheckInDate, "check_out_date": &f.CheckOutDate} {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			continue
		}
		d, err := utils.ParseDate(raw)
		if err != nil {
			badRequest(c, "%s: %v", name, err)
			return
		}
		*dst = &d
	}
	var ok bool
	if f.CustomerID, ok = parseUintQuery(c, "customer_id"); !ok {
		return
	}
	if f.RoomID, ok = parseUintQuery(c, "room_id"); !ok {
		return
	}

	reservations, err := rc.ReservationSvc.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	c.JSON(http.StatusOK, reservations)
}

// GetReservation handles GET /api/reservations/:id
func (rc *ReservationController) GetReservation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	res, err := rc.ReservationSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetReservationEvents handles GET /api/reservations/:id/events
func (rc *ReservationController) GetReservationEvents(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	events, err := rc.ReservationSvc.Events(c.Request.Context(), id)
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// CreateReservation handles POST /api/reservations
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	// both dates passed the isodate check
	checkIn, _ := utils.ParseDate(req.CheckInDate)
	checkOut, _ := utils.ParseDate(req.CheckOutDate)

	res, err := rc.ReservationSvc.Create(c.Request.Context(), services.CreateReservationInput{
		CustomerID:   req.CustomerID,
		RoomID:       req.RoomID,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		Actor:        middleware.CallerIdentity(c),
	})
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// UpdateReservation handles PUT /api/reservations/:id
func (rc *ReservationController) UpdateReservation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateReservationRequest
	raw, err := bindPartial(c, &req)
	if err != nil {
		respondBindError(c, err)
		return
	}

	in := services.UpdateReservationInput{
		CustomerID:   req.CustomerID,
		RoomID:       req.RoomID,
		Status:       req.Status,
		LockedFields: presentKeys(raw, reservationLockedFields...),
		Actor:        middleware.CallerIdentity(c),
	}
	if req.CheckOutDate != nil {
		d, _ := utils.ParseDate(*req.CheckOutDate)
		in.CheckOutDate = &d
	}

	res, err := rc.ReservationSvc.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DeleteReservation handles DELETE /api/reservations/:id
func (rc *ReservationController) DeleteReservation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	res, err := rc.ReservationSvc.Delete(c.Request.Context(), id, middleware.CallerIdentity(c))
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
