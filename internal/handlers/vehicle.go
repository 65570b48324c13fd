package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"fleetcar/internal/middleware"
	"fleetcar/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VehicleHandler struct {
	svc *services.VehicleService
	log *zap.Logger
}

func NewVehicleHandler(svc *services.VehicleService, log *zap.Logger) *VehicleHandler {
	return &VehicleHandler{svc: svc, log: log}
}

// List handles GET /api/vehicles with search, status and brand filters,
// sorting and pagination.
func (h *VehicleHandler) List(c *gin.Context) {
	var q services.VehicleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		Error(c, http.StatusBadRequest, "invalid query parameters: "+err.Error())
		return
	}

	result, err := h.svc.List(q)
	if err != nil {
		internalError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get handles GET /api/vehicles/:id.
func (h *VehicleHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	v, err := h.svc.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			Error(c, http.StatusNotFound, "vehicle not found")
			return
		}
		internalError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// Create handles POST /api/vehicles (multipart form with optional image).
func (h *VehicleHandler) Create(c *gin.Context) {
	var in services.VehicleInput
	if err := c.ShouldBind(&in); err != nil {
		Error(c, http.StatusBadRequest, "invalid vehicle data: "+err.Error())
		return
	}

	actorID, actorName := actor(c)
	v, err := h.svc.Create(in, imageFile(c), actorID, actorName)
	if err != nil {
		h.mutationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// Update handles PUT /api/vehicles/:id (multipart form, partial).
func (h *VehicleHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var patch services.VehiclePatch
	if err := c.ShouldBind(&patch); err != nil {
		Error(c, http.StatusBadRequest, "invalid vehicle data: "+err.Error())
		return
	}

	actorID, actorName := actor(c)
	v, err := h.svc.Update(id, patch, imageFile(c), actorID, actorName)
	if err != nil {
		h.mutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// Delete handles DELETE /api/vehicles/:id.
func (h *VehicleHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	actorID, actorName := actor(c)
	if err := h.svc.Delete(id, actorID, actorName); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			Error(c, http.StatusNotFound, "vehicle not found")
			return
		}
		internalError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// mutationError maps service errors for create/update: both validation and
// plate conflicts surface as 400 with the underlying message.
func (h *VehicleHandler) mutationError(c *gin.Context, err error) {
	var conflict *services.ConflictError
	var invalid *services.ValidationError
	switch {
	case errors.Is(err, services.ErrNotFound):
		Error(c, http.StatusNotFound, "vehicle not found")
	case errors.As(err, &conflict):
		Error(c, http.StatusBadRequest, conflict.Message)
	case errors.As(err, &invalid):
		Error(c, http.StatusBadRequest, invalid.Message)
	default:
		internalError(c, h.log, err)
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		Error(c, http.StatusBadRequest, "invalid vehicle id")
		return 0, false
	}
	return uint(id), true
}

// imageFile returns the optional "image" part of a multipart request.
func imageFile(c *gin.Context) *multipart.FileHeader {
	file, err := c.FormFile("image")
	if err != nil {
		return nil
	}
	return file
}

func actor(c *gin.Context) (uint, string) {
	id, _ := c.Get(middleware.CtxUserID)
	name, _ := c.Get(middleware.CtxUsername)
	uid, _ := id.(uint)
	username, _ := name.(string)
	return uid, username
}
