package validators

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128,password_strength"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VehicleCreateRequest struct {
	Make        string  `json:"make" validate:"required,max=50"`
	Model       string  `json:"model" validate:"required,max=50"`
	Year        int     `json:"year" validate:"required,gte=1950,lte=2100"`
	Type        string  `json:"type" validate:"required,max=30"`
	Location    string  `json:"location" validate:"required,max=100"`
	Description string  `json:"description" validate:"omitempty,max=2000"`
	PricePerDay float64 `json:"price_per_day" validate:"required,gt=0"`
}

type BookingCreateRequest struct {
	VehicleID  string  `json:"vehicle_id" validate:"required,object_id"`
	UserID     string  `json:"user_id" validate:"omitempty,object_id"`
	StartDate  string  `json:"start_date" validate:"required,booking_date"`
	EndDate    string  `json:"end_date" validate:"required,booking_date"`
	TotalPrice float64 `json:"total_price" validate:"gte=0"`
}

type BookingUpdateRequest struct {
	StartDate string `json:"start_date" validate:"required,booking_date"`
	EndDate   string `json:"end_date" validate:"required,booking_date"`
}

type CheckoutSessionRequest struct {
	VehicleID string `json:"vehicle_id" validate:"required,object_id"`
	StartDate string `json:"start_date" validate:"required,booking_date"`
	EndDate   string `json:"end_date" validate:"required,booking_date"`
}

type ReviewCreateRequest struct {
	VehicleID string `json:"vehicle_id" validate:"required,object_id"`
	BookingID string `json:"booking_id" validate:"required,object_id"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"omitempty,max=500"`
}
