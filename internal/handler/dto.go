package handler

import (
	"time"

	"parkride/internal/domain"
	"parkride/internal/repository"
)

// CoordinatesResponse is a point in decimal degrees.
type CoordinatesResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// VehicleTypeRateResponse is a vehicle type and its rate multiplier.
type VehicleTypeRateResponse struct {
	VehicleType      string  `json:"vehicleType"`
	HourlyMultiplier float64 `json:"hourlyMultiplier"`
}

// ReviewResponse is one user review.
type ReviewResponse struct {
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// OperatingHoursResponse is the opening window of one day.
type OperatingHoursResponse struct {
	Day      string `json:"day"`
	Open     string `json:"open"`
	Close    string `json:"close"`
	IsClosed bool   `json:"isClosed"`
}

// FacilityResponse is the HTTP representation of a facility.
type FacilityResponse struct {
	ID               string                    `json:"id"`
	Name             string                    `json:"name"`
	Address          string                    `json:"address"`
	City             string                    `json:"city"`
	State            string                    `json:"state"`
	ZipCode          string                    `json:"zipCode"`
	Coordinates      CoordinatesResponse       `json:"coordinates"`
	TotalSpots       int                       `json:"totalSpots"`
	AvailableSpots   int                       `json:"availableSpots"`
	HourlyRate       float64                   `json:"hourlyRate"`
	DailyRate        float64                   `json:"dailyRate"`
	Amenities        []string                  `json:"amenities"`
	VehicleTypeRates []VehicleTypeRateResponse `json:"vehicleTypeRates"`
	Rating           float64                   `json:"rating"`
	Reviews          []ReviewResponse          `json:"reviews"`
	OperatingHours   []OperatingHoursResponse  `json:"operatingHours"`
	Status           string                    `json:"status"`
	CreatedAt        time.Time                 `json:"createdAt"`
	UpdatedAt        time.Time                 `json:"updatedAt"`
}

// FacilityReviewsResponse is the facility summary returned after a review.
type FacilityReviewsResponse struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Rating  float64          `json:"rating"`
	Reviews []ReviewResponse `json:"reviews"`
}

// BookingResponse is the HTTP representation of a parking booking.
type BookingResponse struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"userId"`
	FacilityID          string     `json:"facilityId"`
	StartTime           time.Time  `json:"startTime"`
	EndTime             time.Time  `json:"endTime"`
	VehicleType         string     `json:"vehicleType"`
	VehicleLicensePlate string     `json:"vehicleLicensePlate"`
	Price               float64    `json:"price"`
	BookingStatus       string     `json:"bookingStatus"`
	PaymentStatus       string     `json:"paymentStatus"`
	PaymentMethod       string     `json:"paymentMethod"`
	BookingCode         string     `json:"bookingCode"`
	SpecialInstructions string     `json:"specialInstructions,omitempty"`
	CancellationReason  *string    `json:"cancellationReason,omitempty"`
	CancellationFee     *float64   `json:"cancellationFee,omitempty"`
	CancelledAt         *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// PaymentSummaryResponse is the payment excerpt returned with a new booking.
type PaymentSummaryResponse struct {
	ID            string  `json:"id"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
	TransactionID string  `json:"transactionId"`
}

// PaymentResponse is the HTTP representation of a payment.
type PaymentResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
	PaymentMethod string     `json:"paymentMethod"`
	Status        string     `json:"status"`
	BookingType   string     `json:"bookingType"`
	BookingID     string     `json:"bookingId"`
	TransactionID string     `json:"transactionId"`
	RefundAmount  *float64   `json:"refundAmount,omitempty"`
	RefundReason  *string    `json:"refundReason,omitempty"`
	RefundedAt    *time.Time `json:"refundedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// PaginationResponse describes the page of a listing.
type PaginationResponse struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// PageQuery is the pagination part of a listing query string.
type PageQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
	Page  int `form:"page" binding:"omitempty,min=1"`
}

func (q PageQuery) toPage() repository.Page {
	return repository.Page{Number: q.Page, Limit: q.Limit}
}

func toPagination(page repository.Page, total, pages int64) PaginationResponse {
	return PaginationResponse{Page: page.Number, Limit: page.Limit, Total: total, Pages: pages}
}

func toFacilityResponse(f *domain.Facility) FacilityResponse {
	resp := FacilityResponse{
		ID:               f.ID,
		Name:             f.Name,
		Address:          f.Address,
		City:             f.City,
		State:            f.State,
		ZipCode:          f.ZipCode,
		Coordinates:      CoordinatesResponse{Latitude: f.Coordinates.Latitude, Longitude: f.Coordinates.Longitude},
		TotalSpots:       f.TotalSpots,
		AvailableSpots:   f.AvailableSpots,
		HourlyRate:       f.HourlyRate,
		DailyRate:        f.DailyRate,
		Amenities:        f.Amenities,
		VehicleTypeRates: make([]VehicleTypeRateResponse, 0, len(f.VehicleTypeRates)),
		Rating:           f.Rating,
		Reviews:          toReviewResponses(f.Reviews),
		OperatingHours:   make([]OperatingHoursResponse, 0, len(f.OperatingHours)),
		Status:           string(f.Status),
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
	if resp.Amenities == nil {
		resp.Amenities = []string{}
	}
	for _, r := range f.VehicleTypeRates {
		resp.VehicleTypeRates = append(resp.VehicleTypeRates, VehicleTypeRateResponse{VehicleType: r.VehicleType, HourlyMultiplier: r.HourlyMultiplier})
	}
	for _, h := range f.OperatingHours {
		resp.OperatingHours = append(resp.OperatingHours, OperatingHoursResponse{Day: h.Day, Open: h.Open, Close: h.Close, IsClosed: h.IsClosed})
	}
	return resp
}

func toFacilityResponses(facilities []*domain.Facility) []FacilityResponse {
	out := make([]FacilityResponse, 0, len(facilities))
	for _, f := range facilities {
		out = append(out, toFacilityResponse(f))
	}
	return out
}

func toReviewResponses(reviews []domain.Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, ReviewResponse{UserID: r.UserID, Rating: r.Rating, Comment: r.Comment, CreatedAt: r.CreatedAt})
	}
	return out
}

func toBookingResponse(b *domain.ParkingBooking) BookingResponse {
	resp := BookingResponse{
		ID:                  b.ID,
		UserID:              b.UserID,
		FacilityID:          b.FacilityID,
		StartTime:           b.StartTime,
		EndTime:             b.EndTime,
		VehicleType:         b.VehicleType,
		VehicleLicensePlate: b.VehicleLicensePlate,
		Price:               b.Price,
		BookingStatus:       string(b.BookingStatus),
		PaymentStatus:       string(b.PaymentStatus),
		PaymentMethod:       string(b.PaymentMethod),
		BookingCode:         b.BookingCode,
		SpecialInstructions: b.SpecialInstructions,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}
	if c := b.Cancellation; c != nil {
		reason, fee, at := c.Reason, c.Fee, c.CancelledAt
		resp.CancellationReason = &reason
		resp.CancellationFee = &fee
		resp.CancelledAt = &at
	}
	return resp
}

func toBookingResponses(bookings []*domain.ParkingBooking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	return out
}

func toPaymentSummary(p *domain.Payment) PaymentSummaryResponse {
	return PaymentSummaryResponse{
		ID:            p.ID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Status:        string(p.Status),
		TransactionID: p.TransactionID,
	}
}

func toPaymentResponse(p *domain.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:            p.ID,
		UserID:        p.UserID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		PaymentMethod: string(p.PaymentMethod),
		Status:        string(p.Status),
		BookingType:   string(p.Booking.Type),
		BookingID:     p.Booking.ID,
		TransactionID: p.TransactionID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if r := p.Refund; r != nil {
		amount, reason, at := r.Amount, r.Reason, r.RefundedAt
		resp.RefundAmount = &amount
		resp.RefundReason = &reason
		resp.RefundedAt = &at
	}
	return resp
}

func toPaymentResponses(payments []*domain.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	return out
}
