package handlers

import (
	"net/http"
	"strconv"

	"rideshare/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// GetETA handles GET /api/misc/eta/:lat1/:lng1/:lat2/:lng2.
func GetETA(c *gin.Context) {
	var coords [4]float64
	for i, name := range []string{"lat1", "lng1", "lat2", "lng2"} {
		v, err := strconv.ParseFloat(c.Param(name), 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid_"+name, name+" must be a number", nil)
			return
		}
		coords[i] = v
	}

	svc := currentDeps().ETA
	svc.RequestID = middleware.GetRequestID(c)
	out, err := svc.Estimate(c.Request.Context(), coords[0], coords[1], coords[2], coords[3])
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
