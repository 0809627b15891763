package handlers

import (
	"net/http"
	"time"

	"villabook/internal/domain"
	"villabook/internal/domain/models"
	"villabook/internal/utils"

	"github.com/gin-gonic/gin"
)

// GET /api/availability?check_in=YYYY-MM-DD&check_out=YYYY-MM-DD
func (d Deps) CheckAvailability(c *gin.Context) {
	checkIn, err := utils.ParseDate(c.Query("check_in"))
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "check_in", Msg: "must be YYYY-MM-DD"})
		return
	}
	checkOut, err := utils.ParseDate(c.Query("check_out"))
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "check_out", Msg: "must be YYYY-MM-DD"})
		return
	}
	dr, err := models.NewDateRange(checkIn, checkOut)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	available, err := d.availabilityService().IsAvailable(dr, c.Query("exclude"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": available})
}

// GET /api/availability/calendar?month=YYYY-MM
func (d Deps) AvailabilityCalendar(c *gin.Context) {
	month, err := time.Parse("2006-01", c.Query("month"))
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "month", Msg: "must be YYYY-MM"})
		return
	}

	calendar, err := d.availabilityService().Calendar(c.Request.Context(), month.Year(), month.Month())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": c.Query("month"), "nights": calendar})
}
