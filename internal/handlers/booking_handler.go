package handlers

import (
	"github.com/gin-gonic/gin"

	"rentride/internal/middleware"
	"rentride/internal/services"
	"rentride/internal/utils"
	"rentride/internal/validators"
)

type BookingHandler struct {
	bookingService services.BookingService
}

func NewBookingHandler(bookingService services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateBooking books for the token's user. A user_id in the body is only
// honoured when it matches, or when the caller is an admin.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var request validators.BookingCreateRequest
	if !bindJSON(c, &request) {
		return
	}

	if request.UserID != "" {
		bodyUser, _ := validators.ParseObjectID(request.UserID)
		if bodyUser != userID && !middleware.IsAdmin(c) {
			utils.ForbiddenResponse(c)
			return
		}
		userID = bodyUser
	}

	vehicleID, _ := validators.ParseObjectID(request.VehicleID)
	start, end, err := parseDates(request.StartDate, request.EndDate)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	vehicle, err := h.bookingService.Create(c.Request.Context(), &services.CreateBookingRequest{
		VehicleID:  vehicleID,
		UserID:     userID,
		StartDate:  start,
		EndDate:    end,
		TotalPrice: request.TotalPrice,
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Booking created successfully", vehicle)
}

func (h *BookingHandler) ListVehicleBookings(c *gin.Context) {
	vehicleID, ok := pathObjectID(c, "vehicleId")
	if !ok {
		return
	}

	bookings, err := h.bookingService.ListByVehicle(c.Request.Context(), vehicleID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Bookings retrieved successfully", bookings)
}

func (h *BookingHandler) ListUserBookings(c *gin.Context) {
	userID, ok := pathObjectID(c, "userId")
	if !ok {
		return
	}
	if !selfOrAdmin(c, userID) {
		utils.ForbiddenResponse(c)
		return
	}

	bookings, err := h.bookingService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Bookings retrieved successfully", bookings)
}

func (h *BookingHandler) PaymentHistory(c *gin.Context) {
	userID, ok := pathObjectID(c, "userId")
	if !ok {
		return
	}
	if !selfOrAdmin(c, userID) {
		utils.ForbiddenResponse(c)
		return
	}

	history, err := h.bookingService.PaymentHistory(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment history retrieved successfully", history)
}

func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	vehicleID, ok := pathObjectID(c, "vehicleId")
	if !ok {
		return
	}
	bookingID, ok := pathObjectID(c, "bookingId")
	if !ok {
		return
	}

	var request validators.BookingUpdateRequest
	if !bindJSON(c, &request) {
		return
	}
	start, end, err := parseDates(request.StartDate, request.EndDate)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	current, err := h.bookingService.GetBooking(c.Request.Context(), vehicleID, bookingID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if !selfOrAdmin(c, current.UserID) {
		utils.ForbiddenResponse(c)
		return
	}

	booking, err := h.bookingService.Update(c.Request.Context(), vehicleID, bookingID, start, end)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking updated successfully", booking)
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	vehicleID, ok := pathObjectID(c, "vehicleId")
	if !ok {
		return
	}
	bookingID, ok := pathObjectID(c, "bookingId")
	if !ok {
		return
	}

	// An unknown booking falls through to Cancel, which treats it as done.
	current, err := h.bookingService.GetBooking(c.Request.Context(), vehicleID, bookingID)
	switch {
	case err == nil:
		if !selfOrAdmin(c, current.UserID) {
			utils.ForbiddenResponse(c)
			return
		}
	case !isNotFound(err):
		utils.HandleError(c, err)
		return
	}

	if err := h.bookingService.Cancel(c.Request.Context(), vehicleID, bookingID); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking cancelled successfully", nil)
}
