package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"hotel-reservations/services"
	"hotel-reservations/utils"
)

type errorKind struct {
	target error
	status int
	code   string
}

// errorKinds is checked in order; the first match wins.
var errorKinds = []errorKind{
	{services.ErrNotFound, http.StatusNotFound, "error.not_found"},
	{services.ErrImmutable, http.StatusConflict, "error.immutable"},
	{services.ErrRoomUnavailable, http.StatusConflict, "error.room_unavailable"},
	{services.ErrCapacityExceeded, http.StatusConflict, "error.capacity_exceeded"},
	{services.ErrConflict, http.StatusConflict, "error.conflict"},
	{services.ErrForbidden, http.StatusForbidden, "error.forbidden"},
	{services.ErrInvalidDateRange, http.StatusBadRequest, "error.invalid_date_range"},
	{services.ErrInvalidStatus, http.StatusBadRequest, "error.invalid_status"},
	{services.ErrNoOp, http.StatusBadRequest, "error.no_op"},
	{services.ErrInvalid, http.StatusBadRequest, "error.validation"},
	{services.ErrUnauthorized, http.StatusUnauthorized, "error.unauthorized"},
}

// respondError maps a service error onto the HTTP error envelope. Internal
// failures are logged and reported as a 500 without detail.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	if !services.IsClientError(err) {
		_ = c.Error(err)
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "internal server error")
		return
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			utils.JSONError(c, k.status, k.code, err.Error())
			return
		}
	}
	utils.JSONError(c, http.StatusBadRequest, "error.validation", err.Error())
}

func respondBindError(c *gin.Context, err error) {
	if details := utils.ValidationDetails(err); details != nil {
		utils.JSONValidationError(c, http.StatusBadRequest, "invalid request payload", details)
		return
	}
	utils.JSONError(c, http.StatusBadRequest, "error.validation", "invalid request payload: "+err.Error())
}

func badRequest(c *gin.Context, format string, args ...interface{}) {
	utils.JSONError(c, http.StatusBadRequest, "error.validation", fmt.Sprintf(format, args...))
}

// parseID reads the :id path parameter.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid id %q", c.Param("id"))
		return 0, false
	}
	return uint(id), true
}

func parseUintQuery(c *gin.Context, name string) (*uint, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		badRequest(c, "%s must be a positive integer", name)
		return nil, false
	}
	v := uint(n)
	return &v, true
}

// bindPartial decodes a partial update body into dst, validates it, and
// returns the raw keys so callers can tell which fields were sent.
func bindPartial(c *gin.Context, dst interface{}) (map[string]json.RawMessage, error) {
	body, err := c.GetRawData()
	if err != nil {
		return nil, err
	}
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return nil, err
	}
	if err := binding.Validator.ValidateStruct(dst); err != nil {
		return nil, err
	}
	return raw, nil
}

// presentKeys returns the keys of raw that appear in names, in names order.
func presentKeys(raw map[string]json.RawMessage, names ...string) []string {
	var out []string
	for _, n := range names {
		if _, ok := raw[n]; ok {
			out = append(out, n)
		}
	}
	return out
}
