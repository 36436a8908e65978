package controllers

import (
	"net/http"
	"strconv"

	"checkout-service/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminController struct {
	Reservations repository.ReservationRepository
	Logger       *zap.Logger
}

// ListReservations handles GET /admin/reservations with an optional status
// filter.
func (ac *AdminController) ListReservations(c *gin.Context) {
	status := c.Query("status")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	reservations, total, err := ac.Reservations.List(c.Request.Context(), status, page, limit)
	if err != nil {
		ac.Logger.Error("Reservation list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reservations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reservations": reservations,
		"total":        total,
		"page":         page,
		"limit":        limit,
	})
}
