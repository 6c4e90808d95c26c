package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBookingCreateRequest(t *testing.T) {
	valid := BookingCreateRequest{
		VehicleID: primitive.NewObjectID().Hex(),
		StartDate: "2030-01-01",
		EndDate:   "2030-01-03T10:00:00Z",
	}
	assert.Empty(t, ValidateStruct(&valid))

	bad := valid
	bad.VehicleID = "not-an-id"
	bad.EndDate = "03/01/2030"
	errs := ValidateStruct(&bad)
	require.Len(t, errs, 2)

	details := errs.Details()
	assert.Contains(t, details, "vehicle_id")
	assert.Contains(t, details, "end_date")
}

func TestReviewCreateRequest(t *testing.T) {
	base := ReviewCreateRequest{
		VehicleID: primitive.NewObjectID().Hex(),
		BookingID: primitive.NewObjectID().Hex(),
		Rating:    5,
	}
	assert.Empty(t, ValidateStruct(&base))

	tests := []struct {
		name  string
		apply func(r *ReviewCreateRequest)
		field string
	}{
		{"rating too low", func(r *ReviewCreateRequest) { r.Rating = 0 }, "rating"},
		{"rating too high", func(r *ReviewCreateRequest) { r.Rating = 6 }, "rating"},
		{"comment too long", func(r *ReviewCreateRequest) { r.Comment = strings.Repeat("a", 501) }, "comment"},
		{"missing booking", func(r *ReviewCreateRequest) { r.BookingID = "" }, "booking_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.apply(&req)
			errs := ValidateStruct(&req)
			require.NotEmpty(t, errs)
			assert.Contains(t, errs.Details(), tt.field)
		})
	}

	req := base
	req.Comment = strings.Repeat("a", 500)
	assert.Empty(t, ValidateStruct(&req))
}

func TestRegisterRequestPassword(t *testing.T) {
	req := RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "password1"}
	assert.Empty(t, ValidateStruct(&req))

	req.Password = "onlyletters"
	errs := ValidateStruct(&req)
	require.Len(t, errs, 1)
	assert.Equal(t, "password_strength", errs[0].Tag)
}

func TestParseObjectID(t *testing.T) {
	id := primitive.NewObjectID()
	got, err := ParseObjectID(id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseObjectID("xyz")
	assert.ErrorIs(t, err, ErrInvalidObjectID)
}
