package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tripdaddy/internal/models/request_models"
	"tripdaddy/internal/models/response_models"
	"tripdaddy/pkg/utils"
)

type stubItinerary struct {
	previewErr  error
	trips       map[string]*response_models.TripResponse
	locked      bool
	removed     request_models.ActivitySlot
	regenerated *request_models.RegenerateRequest
}

func (s *stubItinerary) GeneratePreview(_ context.Context, prefs *request_models.UserPreferences) (*response_models.PreviewResponse, error) {
	if s.previewErr != nil {
		return nil, s.previewErr
	}
	return &response_models.PreviewResponse{ID: "0a1b2c3d4e", TotalDays: 5, PreviewDays: 2}, nil
}

func (s *stubItinerary) SaveEmail(_ context.Context, id, _ string) (*response_models.TripResponse, error) {
	return s.GetTrip(context.Background(), id)
}

func (s *stubItinerary) GetTrip(_ context.Context, id string) (*response_models.TripResponse, error) {
	trip, ok := s.trips[id]
	if !ok {
		return nil, utils.ErrTripNotFound
	}
	return trip, nil
}

func (s *stubItinerary) Unlock(_ context.Context, _ string) (*response_models.UnlockResponse, error) {
	return &response_models.UnlockResponse{Success: true}, nil
}

func (s *stubItinerary) RegenerateActivity(_ context.Context, req *request_models.RegenerateRequest) (*response_models.Activity, error) {
	s.regenerated = req
	return &response_models.Activity{Name: "Jim Thompson House"}, nil
}

func (s *stubItinerary) RemoveActivity(_ context.Context, id string, slot request_models.ActivitySlot) (*response_models.TripResponse, error) {
	s.removed = slot
	return s.GetTrip(context.Background(), id)
}

func (s *stubItinerary) ExportPDF(_ context.Context, _ string, w io.Writer) error {
	if s.locked {
		return utils.ErrTripLocked
	}
	_, err := w.Write([]byte("%PDF-1.3 test"))
	return err
}

type stubGeneration struct{}

func (stubGeneration) ValidateDestination(_ context.Context, destination string) response_models.DestinationValidation {
	name := strings.ToUpper(destination)
	return response_models.DestinationValidation{IsValid: true, FormattedName: &name}
}

func (stubGeneration) GetQuestions(context.Context, *request_models.UserPreferences) []response_models.SmartQuestion {
	return []response_models.SmartQuestion{{ID: "street_food", Title: "Street food tour?"}}
}

func (stubGeneration) GenerateDays(context.Context, *request_models.UserPreferences, int, int) *response_models.Itinerary {
	return nil
}

func (stubGeneration) GetAlternativeActivity(context.Context, *request_models.UserPreferences, response_models.Activity, request_models.ActivityContext, []string, string) *response_models.Activity {
	return nil
}

type stubPayments struct {
	verifyErr error
	signature string
}

func (s *stubPayments) CreateCheckout(_ context.Context, tripID string) (*response_models.CheckoutResponse, error) {
	return &response_models.CheckoutResponse{URL: "https://checkout.stripe.com/" + tripID}, nil
}

func (s *stubPayments) VerifyPayment(context.Context, string, string) (*response_models.UnlockResponse, error) {
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}
	return &response_models.UnlockResponse{Success: true, Message: "Already unlocked"}, nil
}

func (s *stubPayments) HandleWebhook(_ context.Context, _ []byte, signature string) error {
	s.signature = signature
	return nil
}

type testServer struct {
	engine    *gin.Engine
	itinerary *stubItinerary
	payments  *stubPayments
}

func newTestServer() *testServer {
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	ts := &testServer{
		itinerary: &stubItinerary{trips: map[string]*response_models.TripResponse{
			"0a1b2c3d4e": {Destination: "Bangkok, Thailand", TotalDays: 5},
		}},
		payments: &stubPayments{},
	}
	planner := NewPlannerController(stubGeneration{}, ts.itinerary, log)
	itinerary := NewItineraryController(ts.itinerary, log)
	payment := NewPaymentController(ts.payments, log)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/validate", planner.ValidateDestination)
	api.POST("/questions", planner.Questions)
	api.POST("/generate", planner.Generate)
	api.POST("/save-email", itinerary.SaveEmail)
	api.GET("/itinerary/:id", itinerary.GetItinerary)
	api.GET("/itinerary/:id/pdf", itinerary.ExportPDF)
	api.POST("/itinerary/:id/remove-activity", itinerary.RemoveActivity)
	api.POST("/regenerate", itinerary.Regenerate)
	api.POST("/verify-payment", payment.VerifyPayment)
	api.POST("/create-checkout-session", payment.CreateCheckoutSession)
	api.POST("/stripe/webhook", payment.StripeWebhook)
	ts.engine = r
	return ts
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("Response is not JSON: %v (%s)", err, w.Body.String())
	}
	return out
}

const validPrefs = `{"destination":"Bangkok, Thailand","startDate":"2025-11-10","endDate":"2025-11-14","tripType":"Couple","demographics":{"age":"30"}}`

func TestGenerateHandler(t *testing.T) {
	ts := newTestServer()

	w := ts.do(http.MethodPost, "/api/generate", validPrefs)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := decode(t, w)["data"].(map[string]any)
	if data["id"] != "0a1b2c3d4e" || data["previewDays"] != float64(2) {
		t.Errorf("Unexpected preview payload: %v", data)
	}

	if w := ts.do(http.MethodPost, "/api/generate", `{"destination":"Bangkok"}`); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing dates, got %d", w.Code)
	}

	badVibe := `{"destination":"Bangkok","startDate":"2025-11-10","endDate":"2025-11-14","vibe":"Wild","interests":["Culture","Skydiving"]}`
	w = ts.do(http.MethodPost, "/api/generate", badVibe)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for an unknown vibe, got %d", w.Code)
	}
	msg, _ := decode(t, w)["message"].(string)
	if !strings.Contains(msg, "vibe must be one of Extreme/Fun, Laid back/Chill, Both") || !strings.Contains(msg, "interests[1] must be one of") {
		t.Errorf("Expected field messages for vibe and interests, got %q", msg)
	}

	ts.itinerary.previewErr = utils.ErrGenerationFailed
	w = ts.do(http.MethodPost, "/api/generate", validPrefs)
	if w.Code != http.StatusInternalServerError || decode(t, w)["message"] != "Generation failed" {
		t.Errorf("Expected 500 Generation failed, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPlannerHandlers(t *testing.T) {
	ts := newTestServer()

	w := ts.do(http.MethodPost, "/api/validate", `{"destination":"paris"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if data := decode(t, w)["data"].(map[string]any); data["formattedName"] != "PARIS" {
		t.Errorf("Unexpected validation payload: %v", data)
	}

	w = ts.do(http.MethodPost, "/api/questions", validPrefs)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if data := decode(t, w)["data"].([]any); len(data) != 1 {
		t.Errorf("Expected one question, got %v", data)
	}

	bad := `{"destination":"Bangkok","startDate":"2025-11-14","endDate":"2025-11-10"}`
	if w := ts.do(http.MethodPost, "/api/questions", bad); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for reversed dates, got %d", w.Code)
	}
}

func TestItineraryHandlers(t *testing.T) {
	ts := newTestServer()

	if w := ts.do(http.MethodGet, "/api/itinerary/0a1b2c3d4e", ""); w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	w := ts.do(http.MethodGet, "/api/itinerary/missing", "")
	if w.Code != http.StatusNotFound || decode(t, w)["status"] != "error" {
		t.Errorf("Expected 404 error envelope, got %d: %s", w.Code, w.Body.String())
	}

	if w := ts.do(http.MethodPost, "/api/save-email", `{"id":"0a1b2c3d4e","email":"not-an-email"}`); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a bad email, got %d", w.Code)
	}
	if w := ts.do(http.MethodPost, "/api/save-email", `{"id":"0a1b2c3d4e","email":"ana@example.com"}`); w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	w = ts.do(http.MethodPost, "/api/itinerary/0a1b2c3d4e/remove-activity", `{"dayNumber":2,"period":"evening","index":1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ts.itinerary.removed != (request_models.ActivitySlot{DayNumber: 2, Period: "evening", Index: 1}) {
		t.Errorf("Unexpected slot: %+v", ts.itinerary.removed)
	}
	if w := ts.do(http.MethodPost, "/api/itinerary/0a1b2c3d4e/remove-activity", `{"dayNumber":2,"period":"night"}`); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an unknown period, got %d", w.Code)
	}

	w = ts.do(http.MethodPost, "/api/regenerate", `{"tripId":"0a1b2c3d4e","activity":{"name":"Grand Palace"},"customRequest":"something indoors"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if ts.itinerary.regenerated.CustomRequest != "something indoors" {
		t.Errorf("Custom request not forwarded: %+v", ts.itinerary.regenerated)
	}
}

func TestExportPDFHandler(t *testing.T) {
	ts := newTestServer()

	w := ts.do(http.MethodGet, "/api/itinerary/0a1b2c3d4e/pdf", "")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("Expected a PDF, got %d %q", w.Code, w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "tripdaddy-0a1b2c3d4e.pdf") {
		t.Errorf("Unexpected disposition %q", w.Header().Get("Content-Disposition"))
	}

	ts.itinerary.locked = true
	if w := ts.do(http.MethodGet, "/api/itinerary/0a1b2c3d4e/pdf", ""); w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for a locked trip, got %d", w.Code)
	}
}

func TestPaymentHandlers(t *testing.T) {
	ts := newTestServer()

	w := ts.do(http.MethodPost, "/api/create-checkout-session", `{"id":"0a1b2c3d4e"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if data := decode(t, w)["data"].(map[string]any); data["url"] != "https://checkout.stripe.com/0a1b2c3d4e" {
		t.Errorf("Unexpected checkout payload: %v", data)
	}

	w = ts.do(http.MethodPost, "/api/verify-payment", `{"tripId":"0a1b2c3d4e","sessionId":"cs_1"}`)
	if w.Code != http.StatusOK || decode(t, w)["message"] != "Already unlocked" {
		t.Errorf("Expected 200 Already unlocked, got %d: %s", w.Code, w.Body.String())
	}

	ts.payments.verifyErr = utils.ErrPaymentNotCompleted
	if w := ts.do(http.MethodPost, "/api/verify-payment", `{"tripId":"0a1b2c3d4e","sessionId":"cs_1"}`); w.Code != http.StatusPaymentRequired {
		t.Errorf("Expected 402, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", strings.NewReader(`{"id":"evt_1"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	w = httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK || ts.payments.signature != "t=1,v1=abc" {
		t.Errorf("Expected the signature to reach the service, got %d %q", w.Code, ts.payments.signature)
	}
}
