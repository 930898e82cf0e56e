package mongodb

import (
	"time"

	"parkride/internal/domain"
)

type coordinatesDoc struct {
	Latitude  float64 `bson:"latitude"`
	Longitude float64 `bson:"longitude"`
}

type vehicleTypeRateDoc struct {
	VehicleType      string  `bson:"vehicleType"`
	HourlyMultiplier float64 `bson:"hourlyMultiplier"`
}

type reviewDoc struct {
	UserID    string    `bson:"userId"`
	Rating    int       `bson:"rating"`
	Comment   string    `bson:"comment"`
	CreatedAt time.Time `bson:"createdAt"`
}

type operatingHoursDoc struct {
	Day      string `bson:"day"`
	Open     string `bson:"open"`
	Close    string `bson:"close"`
	IsClosed bool   `bson:"isClosed"`
}

type facilityDoc struct {
	ID               string               `bson:"_id"`
	Name             string               `bson:"name"`
	Address          string               `bson:"address"`
	City             string               `bson:"city"`
	State            string               `bson:"state"`
	ZipCode          string               `bson:"zipCode"`
	Coordinates      coordinatesDoc       `bson:"coordinates"`
	TotalSpots       int                  `bson:"totalSpots"`
	AvailableSpots   int                  `bson:"availableSpots"`
	HourlyRate       float64              `bson:"hourlyRate"`
	DailyRate        float64              `bson:"dailyRate"`
	Amenities        []string             `bson:"amenities"`
	VehicleTypeRates []vehicleTypeRateDoc `bson:"vehicleTypeRates"`
	Rating           float64              `bson:"rating"`
	Reviews          []reviewDoc          `bson:"reviews"`
	OperatingHours   []operatingHoursDoc  `bson:"operatingHours"`
	Status           string               `bson:"status"`
	CreatedAt        time.Time            `bson:"createdAt"`
	UpdatedAt        time.Time            `bson:"updatedAt"`
}

type cancellationDoc struct {
	Reason      string    `bson:"reason"`
	Fee         float64   `bson:"fee"`
	CancelledAt time.Time `bson:"cancelledAt"`
}

type bookingDoc struct {
	ID                  string           `bson:"_id"`
	UserID              string           `bson:"userId"`
	FacilityID          string           `bson:"facilityId"`
	StartTime           time.Time        `bson:"startTime"`
	EndTime             time.Time        `bson:"endTime"`
	VehicleType         string           `bson:"vehicleType"`
	VehicleLicensePlate string           `bson:"vehicleLicensePlate"`
	Price               float64          `bson:"price"`
	BookingStatus       string           `bson:"bookingStatus"`
	PaymentStatus       string           `bson:"paymentStatus"`
	PaymentMethod       string           `bson:"paymentMethod"`
	BookingCode         string           `bson:"bookingCode"`
	SpecialInstructions string           `bson:"specialInstructions,omitempty"`
	Cancellation        *cancellationDoc `bson:"cancellationDetails,omitempty"`
	CreatedAt           time.Time        `bson:"createdAt"`
	UpdatedAt           time.Time        `bson:"updatedAt"`
}

type refundDoc struct {
	Amount     float64   `bson:"amount"`
	Reason     string    `bson:"reason"`
	RefundedAt time.Time `bson:"refundedAt"`
}

type paymentDoc struct {
	ID            string     `bson:"_id"`
	UserID        string     `bson:"userId"`
	Amount        float64    `bson:"amount"`
	Currency      string     `bson:"currency"`
	PaymentMethod string     `bson:"paymentMethod"`
	Status        string     `bson:"status"`
	BookingType   string     `bson:"bookingType"`
	BookingID     string     `bson:"bookingId"`
	TransactionID string     `bson:"transactionId"`
	Refund        *refundDoc `bson:"refundDetails,omitempty"`
	CreatedAt     time.Time  `bson:"createdAt"`
	UpdatedAt     time.Time  `bson:"updatedAt"`
}

func toFacilityDoc(f *domain.Facility) facilityDoc {
	doc := facilityDoc{
		ID:             f.ID,
		Name:           f.Name,
		Address:        f.Address,
		City:           f.City,
		State:          f.State,
		ZipCode:        f.ZipCode,
		Coordinates:    coordinatesDoc{Latitude: f.Coordinates.Latitude, Longitude: f.Coordinates.Longitude},
		TotalSpots:     f.TotalSpots,
		AvailableSpots: f.AvailableSpots,
		HourlyRate:     f.HourlyRate,
		DailyRate:      f.DailyRate,
		Amenities:      append([]string{}, f.Amenities...),
		Rating:         f.Rating,
		Reviews:        toReviewDocs(f.Reviews),
		Status:         string(f.Status),
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
	doc.VehicleTypeRates = make([]vehicleTypeRateDoc, 0, len(f.VehicleTypeRates))
	for _, r := range f.VehicleTypeRates {
		doc.VehicleTypeRates = append(doc.VehicleTypeRates, vehicleTypeRateDoc{VehicleType: r.VehicleType, HourlyMultiplier: r.HourlyMultiplier})
	}
	doc.OperatingHours = make([]operatingHoursDoc, 0, len(f.OperatingHours))
	for _, h := range f.OperatingHours {
		doc.OperatingHours = append(doc.OperatingHours, operatingHoursDoc{Day: h.Day, Open: h.Open, Close: h.Close, IsClosed: h.IsClosed})
	}
	return doc
}

func toReviewDocs(reviews []domain.Review) []reviewDoc {
	out := make([]reviewDoc, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, reviewDoc{UserID: r.UserID, Rating: r.Rating, Comment: r.Comment, CreatedAt: r.CreatedAt})
	}
	return out
}

func (d facilityDoc) toDomain() *domain.Facility {
	f := &domain.Facility{
		ID:             d.ID,
		Name:           d.Name,
		Address:        d.Address,
		City:           d.City,
		State:          d.State,
		ZipCode:        d.ZipCode,
		Coordinates:    domain.Coordinates{Latitude: d.Coordinates.Latitude, Longitude: d.Coordinates.Longitude},
		TotalSpots:     d.TotalSpots,
		AvailableSpots: d.AvailableSpots,
		HourlyRate:     d.HourlyRate,
		DailyRate:      d.DailyRate,
		Amenities:      d.Amenities,
		Rating:         d.Rating,
		Status:         domain.FacilityStatus(d.Status),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	for _, r := range d.VehicleTypeRates {
		f.VehicleTypeRates = append(f.VehicleTypeRates, domain.VehicleTypeRate{VehicleType: r.VehicleType, HourlyMultiplier: r.HourlyMultiplier})
	}
	for _, r := range d.Reviews {
		f.Reviews = append(f.Reviews, domain.Review{UserID: r.UserID, Rating: r.Rating, Comment: r.Comment, CreatedAt: r.CreatedAt})
	}
	for _, h := range d.OperatingHours {
		f.OperatingHours = append(f.OperatingHours, domain.OperatingHours{Day: h.Day, Open: h.Open, Close: h.Close, IsClosed: h.IsClosed})
	}
	return f
}

func toBookingDoc(b *domain.ParkingBooking) bookingDoc {
	doc := bookingDoc{
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
	if b.Cancellation != nil {
		doc.Cancellation = &cancellationDoc{Reason: b.Cancellation.Reason, Fee: b.Cancellation.Fee, CancelledAt: b.Cancellation.CancelledAt}
	}
	return doc
}

func (d bookingDoc) toDomain() *domain.ParkingBooking {
	b := &domain.ParkingBooking{
		ID:                  d.ID,
		UserID:              d.UserID,
		FacilityID:          d.FacilityID,
		StartTime:           d.StartTime,
		EndTime:             d.EndTime,
		VehicleType:         d.VehicleType,
		VehicleLicensePlate: d.VehicleLicensePlate,
		Price:               d.Price,
		BookingStatus:       domain.BookingStatus(d.BookingStatus),
		PaymentStatus:       domain.BookingPaymentStatus(d.PaymentStatus),
		PaymentMethod:       domain.PaymentMethod(d.PaymentMethod),
		BookingCode:         d.BookingCode,
		SpecialInstructions: d.SpecialInstructions,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
	if d.Cancellation != nil {
		b.Cancellation = &domain.Cancellation{Reason: d.Cancellation.Reason, Fee: d.Cancellation.Fee, CancelledAt: d.Cancellation.CancelledAt}
	}
	return b
}

func toPaymentDoc(p *domain.Payment) paymentDoc {
	doc := paymentDoc{
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
	if p.Refund != nil {
		doc.Refund = &refundDoc{Amount: p.Refund.Amount, Reason: p.Refund.Reason, RefundedAt: p.Refund.RefundedAt}
	}
	return doc
}

func (d paymentDoc) toDomain() (*domain.Payment, error) {
	ref, err := domain.ParseBookingRef(d.BookingType, d.BookingID)
	if err != nil {
		return nil, err
	}
	p := &domain.Payment{
		ID:            d.ID,
		UserID:        d.UserID,
		Amount:        d.Amount,
		Currency:      d.Currency,
		PaymentMethod: domain.PaymentMethod(d.PaymentMethod),
		Status:        domain.PaymentStatus(d.Status),
		Booking:       ref,
		TransactionID: d.TransactionID,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if d.Refund != nil {
		p.Refund = &domain.Refund{Amount: d.Refund.Amount, Reason: d.Refund.Reason, RefundedAt: d.Refund.RefundedAt}
	}
	return p, nil
}
