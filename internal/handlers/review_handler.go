package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"rentride/internal/services"
	"rentride/internal/utils"
	"rentride/internal/validators"
)

type ReviewHandler struct {
	reviewService services.ReviewService
}

func NewReviewHandler(reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var request validators.ReviewCreateRequest
	if !bindJSON(c, &request) {
		return
	}

	vehicleID, _ := validators.ParseObjectID(request.VehicleID)
	bookingID, _ := validators.ParseObjectID(request.BookingID)

	review, err := h.reviewService.Create(c.Request.Context(), userID, &services.CreateReviewRequest{
		VehicleID: vehicleID,
		BookingID: bookingID,
		Rating:    request.Rating,
		Comment:   request.Comment,
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Review submitted successfully", review)
}

// ListVehicleReviews returns every review unless ?approved=true is given.
func (h *ReviewHandler) ListVehicleReviews(c *gin.Context) {
	vehicleID, ok := pathObjectID(c, "vehicleId")
	if !ok {
		return
	}
	approvedOnly, _ := strconv.ParseBool(c.Query("approved"))

	reviews, err := h.reviewService.ListByVehicle(c.Request.Context(), vehicleID, approvedOnly)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Reviews retrieved successfully", reviews)
}

func (h *ReviewHandler) ListBookingReviews(c *gin.Context) {
	bookingID, ok := pathObjectID(c, "bookingId")
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListByBooking(c.Request.Context(), bookingID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Reviews retrieved successfully", reviews)
}

func (h *ReviewHandler) ApproveReview(c *gin.Context) {
	reviewID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	review, err := h.reviewService.Approve(c.Request.Context(), reviewID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Review approved", review)
}
