package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/jeevamithra/internal/domain/rentals"
)

// ListMachines returns the filtered catalog.
func (h *Handler) ListMachines(c *gin.Context) {
	var filter rentals.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		abortWithError(c, badRequest(err))
		return
	}
	machines, err := h.rentalSvc.List(c.Request.Context(), filter)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"machines": machines})
}

// GetMachine returns one machine.
func (h *Handler) GetMachine(c *gin.Context) {
	m, err := h.rentalSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// BookMachine reserves a machine for the signed-in user.
func (h *Handler) BookMachine(c *gin.Context) {
	claims, ok := signedInUser(c)
	if !ok {
		return
	}
	var req rentals.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badRequest(err))
		return
	}
	req.MachineID = c.Param("id")
	booking, err := h.rentalSvc.Book(c.Request.Context(), claims.UserID, req)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// MyBookings lists the signed-in user's bookings.
func (h *Handler) MyBookings(c *gin.Context) {
	claims, ok := signedInUser(c)
	if !ok {
		return
	}
	bookings, err := h.rentalSvc.Bookings(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}
