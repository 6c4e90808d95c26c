package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rentride/internal/middleware"
	"rentride/internal/utils"
	"rentride/internal/validators"
)

// bindJSON decodes and validates the request body, writing the error
// response itself when it returns false.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return false
	}
	if verrs := validators.ValidateStruct(dst); verrs != nil {
		utils.ValidationErrorResponse(c, verrs.Details())
		return false
	}
	return true
}

func pathObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := validators.ParseObjectID(c.Param(name))
	if err != nil {
		utils.ErrorResponseWithDetails(c, http.StatusBadRequest, "INVALID_INPUT", utils.MsgInvalidID, map[string]string{name: "Invalid ID format"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func currentUser(c *gin.Context) (primitive.ObjectID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, utils.MsgUnauthorized)
	}
	return userID, ok
}

// selfOrAdmin allows access to another user's resources only to admins.
func selfOrAdmin(c *gin.Context, owner primitive.ObjectID) bool {
	userID, ok := middleware.GetUserID(c)
	return ok && (userID == owner || middleware.IsAdmin(c))
}

func parseDates(startValue, endValue string) (start, end time.Time, err error) {
	if start, err = utils.ParseDate(startValue); err != nil {
		return
	}
	end, err = utils.ParseDate(endValue)
	return
}

func isNotFound(err error) bool {
	return errors.Is(err, utils.ErrNotFound)
}
