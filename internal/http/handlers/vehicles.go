package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"rideshare/internal/domain/models"
	"rideshare/internal/http/middleware"
	"rideshare/internal/services"

	"github.com/gin-gonic/gin"
)

type vehicleRequest struct {
	UserID      *int64  `json:"user_id"`
	Model       *string `json:"model"`
	PlateNumber *string `json:"plate_number"`
	Color       *string `json:"color"`
	Capacity    *int    `json:"capacity"`
	ImageLink   *string `json:"s3_imagelink"`
	CreatedBy   *int64  `json:"created_by"`
}

type photoRequest struct {
	URL string `json:"url"`
}

func vehicleService(c *gin.Context) services.VehicleService {
	return services.VehicleService{RequestID: middleware.GetRequestID(c)}
}

// GET /api/vehicles?user_id=
func GetVehicles(c *gin.Context) {
	var userID *int64
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v <= 0 {
			respondError(c, http.StatusBadRequest, "invalid_user_id", "user_id must be a positive integer", nil)
			return
		}
		userID = &v
	}
	out, err := vehicleService(c).ListVehicles(c.Request.Context(), userID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/vehicles/:id
func GetVehicleByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := vehicleService(c).GetVehicle(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// POST /api/vehicles
func CreateVehicle(c *gin.Context) {
	var req vehicleRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	in := services.CreateVehicleInput{
		Model:       req.Model,
		PlateNumber: deref(req.PlateNumber),
		Color:       req.Color,
		Capacity:    req.Capacity,
		ImageLink:   req.ImageLink,
		CreatedBy:   req.CreatedBy,
	}
	if req.UserID != nil {
		in.UserID = *req.UserID
	}
	out, err := vehicleService(c).CreateVehicle(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// PUT /api/vehicles/:id
func UpdateVehicle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req vehicleRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	upd := models.VehicleUpdate{
		UserID:      req.UserID,
		Model:       req.Model,
		PlateNumber: req.PlateNumber,
		Color:       req.Color,
		Capacity:    req.Capacity,
	}
	if uid, ok := middleware.CurrentUserID(c); ok {
		upd.ModifiedBy = &uid
	}
	out, err := vehicleService(c).UpdateVehicle(c.Request.Context(), id, upd)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// DELETE /api/vehicles/:id
func DeleteVehicle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := vehicleService(c).DeleteVehicle(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// POST /api/vehicles/:id/photos records an already uploaded image URL.
func AddVehiclePhoto(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req photoRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	out, err := vehicleService(c).AddPhoto(c.Request.Context(), id, req.URL)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}
