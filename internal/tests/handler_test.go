package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"parkride/internal/app"
	"parkride/internal/auth"
	"parkride/internal/domain"
	"parkride/internal/handler"
)

const testJWTSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, env *testEnv) *gin.Engine {
	t.Helper()
	return app.NewRouter(app.RouterDeps{
		FacilityHandler: handler.NewFacilityHandler(env.catalog, env.reviewSvc),
		BookingHandler:  handler.NewBookingHandler(env.bookingSvc),
		PaymentHandler:  handler.NewPaymentHandler(env.paymentSvc),
		UserHandler:     handler.NewUserHandler(env.bookingSvc, env.paymentSvc),
		JWTSecret:       testJWTSecret,
		Logger:          newTestLogger(),
	})
}

func bearer(t *testing.T, p domain.Principal) string {
	t.Helper()
	token, err := auth.CreateAccessToken(testJWTSecret, p.UserID, p.Role, time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return "Bearer " + token
}

func doRequest(t *testing.T, router http.Handler, method, path, authz string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode %q: %v", w.Body.String(), err)
	}
	return v
}

func createBookingBody(facilityID string) map[string]any {
	start := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)
	return map[string]any{
		"facilityId":          facilityID,
		"startTime":           start,
		"endTime":             start.Add(5 * time.Hour),
		"vehicleType":         "Sedan",
		"vehicleLicensePlate": "KA01AB1234",
		"paymentMethod":       "card",
	}
}

type createBookingResult struct {
	Booking handler.BookingResponse        `json:"booking"`
	Payment handler.PaymentSummaryResponse `json:"payment"`
}

func TestHTTP_Health(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, newTestEnv(t))
	w := doRequest(t, router, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestHTTP_BookingLifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.facilities.AddFacility(newTestFacility("fac-1", 10))
	router := newTestRouter(t, env)

	w := doRequest(t, router, http.MethodPost, "/api/parking/bookings", bearer(t, alice), createBookingBody("fac-1"))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := decode[createBookingResult](t, w)
	if !almostEqual(created.Booking.Price, 300) {
		t.Errorf("expected price 300, got %v", created.Booking.Price)
	}
	if created.Payment.Status != "pending" || created.Payment.Currency != testCurrency {
		t.Errorf("unexpected payment summary %+v", created.Payment)
	}

	bookingPath := "/api/parking/bookings/" + created.Booking.ID

	if w := doRequest(t, router, http.MethodGet, bookingPath, bearer(t, alice), nil); w.Code != http.StatusOK {
		t.Errorf("expected owner to read booking, got %d", w.Code)
	}
	if w := doRequest(t, router, http.MethodGet, bookingPath, bearer(t, bob), nil); w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for another user, got %d", w.Code)
	}

	w = doRequest(t, router, http.MethodPost, "/api/payments/"+created.Payment.ID+"/process", bearer(t, alice), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on process, got %d: %s", w.Code, w.Body.String())
	}
	w = doRequest(t, router, http.MethodPost, "/api/payments/"+created.Payment.ID+"/process", bearer(t, alice), nil)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 on second process, got %d", w.Code)
	}

	w = doRequest(t, router, http.MethodPut, bookingPath+"/cancel", bearer(t, alice), map[string]string{"cancellationReason": "flight moved"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on cancel, got %d: %s", w.Code, w.Body.String())
	}
	cancelled := decode[struct {
		Booking         handler.BookingResponse `json:"booking"`
		CancellationFee float64                 `json:"cancellationFee"`
		RefundAmount    float64                 `json:"refundAmount"`
	}](t, w)
	if cancelled.Booking.BookingStatus != "cancelled" {
		t.Errorf("expected cancelled, got %s", cancelled.Booking.BookingStatus)
	}
	if cancelled.CancellationFee != 0 || !almostEqual(cancelled.RefundAmount, 300) {
		t.Errorf("expected free cancellation, got fee=%v refund=%v", cancelled.CancellationFee, cancelled.RefundAmount)
	}
	if cancelled.Booking.CancellationReason == nil || *cancelled.Booking.CancellationReason != "flight moved" {
		t.Errorf("expected cancellation reason, got %v", cancelled.Booking.CancellationReason)
	}

	// Cancelling again is a business rule violation.
	w = doRequest(t, router, http.MethodPut, bookingPath+"/cancel", bearer(t, alice), nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 on second cancel, got %d", w.Code)
	}

	w = doRequest(t, router, http.MethodGet, "/api/users/payments?status=refunded", bearer(t, alice), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 listing payments, got %d", w.Code)
	}
	listed := decode[struct {
		Payments   []handler.PaymentResponse  `json:"payments"`
		Pagination handler.PaginationResponse `json:"pagination"`
	}](t, w)
	if len(listed.Payments) != 1 || listed.Payments[0].RefundAmount == nil {
		t.Errorf("expected one refunded payment, got %+v", listed.Payments)
	}
	if listed.Pagination.Total != 1 || listed.Pagination.Limit != 20 {
		t.Errorf("unexpected pagination %+v", listed.Pagination)
	}
}

func TestHTTP_CreateBooking_Errors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.facilities.AddFacility(newTestFacility("fac-1", 10))
	env.facilities.AddFacility(newTestFacility("fac-full", 0))
	router := newTestRouter(t, env)

	missingPlate := createBookingBody("fac-1")
	delete(missingPlate, "vehicleLicensePlate")

	badMethod := createBookingBody("fac-1")
	badMethod["paymentMethod"] = "barter"

	truck := createBookingBody("fac-1")
	truck["vehicleType"] = "Truck"

	reversed := createBookingBody("fac-1")
	reversed["endTime"], reversed["startTime"] = reversed["startTime"], reversed["endTime"]

	testCases := []struct {
		name     string
		authz    string
		body     any
		wantCode int
	}{
		{name: "no token", authz: "", body: createBookingBody("fac-1"), wantCode: http.StatusUnauthorized},
		{name: "bad token", authz: "Bearer not-a-jwt", body: createBookingBody("fac-1"), wantCode: http.StatusUnauthorized},
		{name: "missing plate", authz: bearer(t, alice), body: missingPlate, wantCode: http.StatusBadRequest},
		{name: "bad payment method", authz: bearer(t, alice), body: badMethod, wantCode: http.StatusBadRequest},
		{name: "unsupported vehicle", authz: bearer(t, alice), body: truck, wantCode: http.StatusBadRequest},
		{name: "reversed interval", authz: bearer(t, alice), body: reversed, wantCode: http.StatusBadRequest},
		{name: "full facility", authz: bearer(t, alice), body: createBookingBody("fac-full"), wantCode: http.StatusBadRequest},
		{name: "unknown facility", authz: bearer(t, alice), body: createBookingBody("fac-x"), wantCode: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodPost, "/api/parking/bookings", tc.authz, tc.body)
			if w.Code != tc.wantCode {
				t.Errorf("expected %d, got %d: %s", tc.wantCode, w.Code, w.Body.String())
			}
			resp := decode[handler.ErrorResponse](t, w)
			if resp.Error == "" {
				t.Error("expected an error message")
			}
		})
	}

	w := doRequest(t, router, http.MethodPost, "/api/parking/bookings", bearer(t, alice), missingPlate)
	resp := decode[handler.ErrorResponse](t, w)
	if len(resp.Details) != 1 || resp.Details[0] != "vehicleLicensePlate is required" {
		t.Errorf("unexpected validation details %v", resp.Details)
	}
}

func TestHTTP_FacilityEndpoints(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.facilities.AddFacility(newTestFacility("fac-1", 10))
	router := newTestRouter(t, env)

	w := doRequest(t, router, http.MethodGet, "/api/parking/facilities?city=bangalore&amenities=cctv,covered", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	listed := decode[struct {
		Facilities []handler.FacilityResponse `json:"facilities"`
	}](t, w)
	if len(listed.Facilities) != 1 {
		t.Errorf("expected one facility, got %d", len(listed.Facilities))
	}

	if w := doRequest(t, router, http.MethodGet, "/api/parking/facilities?status=demolished", "", nil); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", w.Code)
	}
	if w := doRequest(t, router, http.MethodGet, "/api/parking/facilities/fac-x", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}

	w = doRequest(t, router, http.MethodGet, "/api/parking/search?lng=77.5946", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without latitude, got %d", w.Code)
	}
	if resp := decode[handler.ErrorResponse](t, w); resp.Error != "latitude and longitude are required" {
		t.Errorf("unexpected error %q", resp.Error)
	}

	w = doRequest(t, router, http.MethodGet, "/api/parking/search?lat=12.9716&lng=77.5946&radius=3", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	found := decode[struct {
		Count int `json:"count"`
	}](t, w)
	if found.Count != 1 {
		t.Errorf("expected one nearby facility, got %d", found.Count)
	}

	review := map[string]any{"rating": 4, "comment": "clean"}
	if w := doRequest(t, router, http.MethodPost, "/api/parking/facilities/fac-1/reviews", bearer(t, alice), review); w.Code != http.StatusForbidden {
		t.Errorf("expected 403 without a completed stay, got %d", w.Code)
	}
	if w := doRequest(t, router, http.MethodPost, "/api/parking/facilities/fac-1/reviews", bearer(t, alice), map[string]any{"rating": 9}); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for rating out of range, got %d", w.Code)
	}

	addCompletedStay(env, "bk-done", alice, "fac-1")
	w = doRequest(t, router, http.MethodPost, "/api/parking/facilities/fac-1/reviews", bearer(t, alice), review)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	reviewed := decode[struct {
		Facility handler.FacilityReviewsResponse `json:"facility"`
	}](t, w)
	if reviewed.Facility.Rating != 4 || len(reviewed.Facility.Reviews) != 1 {
		t.Errorf("unexpected review response %+v", reviewed.Facility)
	}
}
