package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"hotel-reservations/repositories"
	"hotel-reservations/services"
)

type CreateRoomRequest struct {
	Number        int              `json:"number" binding:"required,gt=0"`
	Type          string           `json:"type" binding:"required,roomtype"`
	Description   string           `json:"description" binding:"required,max=500"`
	PricePerNight *decimal.Decimal `json:"price_per_night" binding:"required"`
}

type UpdateRoomRequest struct {
	Type          *string          `json:"type" binding:"omitempty,roomtype"`
	PricePerNight *decimal.Decimal `json:"price_per_night"`
}

// fields a client may not set on an existing room
var roomLockedFields = []string{"number", "description", "availability"}

type RoomController struct {
	RoomSvc *services.RoomService
	Log     *zap.Logger
}

func NewRoomController(svc *services.RoomService, log *zap.Logger) *RoomController {
	return &RoomController{RoomSvc: svc, Log: log}
}

// GetRooms handles GET /api/rooms
func (rc *RoomController) GetRooms(c *gin.Context) {
	f := repositories.RoomFilter{
		Type:        strings.TrimSpace(c.Query("type")),
		Description: c.Query("description"),
	}
	if raw := strings.TrimSpace(c.Query("availability")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "availability must be true or false")
			return
		}
		f.Availability = &v
	}
	for name, dst := range map[string]**decimal.Decimal{"min_price": &f.MinPrice, "max_price": &f.MaxPrice} {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			badRequest(c, "%s must be a number", name)
			return
		}
		*dst = &d
	}
	if raw := strings.TrimSpace(c.Query("number")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "number must be an integer")
			return
		}
		f.Number = &n
	}

	rooms, err := rc.RoomSvc.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// GetRoom handles GET /api/rooms/:id
func (rc *RoomController) GetRoom(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	room, err := rc.RoomSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// CreateRoom handles POST /api/rooms
func (rc *RoomController) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	room, err := rc.RoomSvc.Create(c.Request.Context(), services.CreateRoomInput{
		Number:        req.Number,
		Type:          req.Type,
		Description:   req.Description,
		PricePerNight: *req.PricePerNight,
	})
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

// UpdateRoom handles PUT /api/rooms/:id
func (rc *RoomController) UpdateRoom(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateRoomRequest
	raw, err := bindPartial(c, &req)
	if err != nil {
		respondBindError(c, err)
		return
	}
	room, err := rc.RoomSvc.Update(c.Request.Context(), id, services.UpdateRoomInput{
		Type:          req.Type,
		PricePerNight: req.PricePerNight,
		LockedFields:  presentKeys(raw, roomLockedFields...),
	})
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// DeleteRoom handles DELETE /api/rooms/:id
func (rc *RoomController) DeleteRoom(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	room, err := rc.RoomSvc.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	c.JSON(http.StatusOK, room)
}
