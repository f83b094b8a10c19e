package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/gatepass/gatepass/internal/badge"
	"github.com/gatepass/gatepass/internal/domain"
	"github.com/gatepass/gatepass/internal/interface/rest/middleware"
	"github.com/gatepass/gatepass/internal/service"
	"github.com/gatepass/gatepass/internal/usecase"
)

// --- mocks ---

type mockRecordRepo struct {
	records map[string]domain.AccreditationRecord
	seq     int
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{records: make(map[string]domain.AccreditationRecord)}
}

func (m *mockRecordRepo) Create(ctx context.Context, rec *domain.AccreditationRecord) error {
	m.records[rec.ID] = *rec
	return nil
}
func (m *mockRecordRepo) Get(ctx context.Context, id string) (domain.AccreditationRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return domain.AccreditationRecord{}, domain.NotFoundError{Resource: "accreditation"}
	}
	return rec, nil
}
func (m *mockRecordRepo) List(ctx context.Context, filter domain.RecordFilter) ([]domain.AccreditationRecord, error) {
	var out []domain.AccreditationRecord
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out, nil
}
func (m *mockRecordRepo) Update(ctx context.Context, rec *domain.AccreditationRecord) error {
	if _, ok := m.records[rec.ID]; !ok {
		return domain.NotFoundError{Resource: "accreditation"}
	}
	m.records[rec.ID] = *rec
	return nil
}
func (m *mockRecordRepo) Delete(ctx context.Context, id string) error {
	delete(m.records, id)
	return nil
}
func (m *mockRecordRepo) FindByReference(ctx context.Context, code string) (domain.AccreditationRecord, error) {
	for _, rec := range m.records {
		if rec.AccreditationID == code || rec.BadgeNumber == code || rec.ID == code {
			return rec, nil
		}
	}
	return domain.AccreditationRecord{}, domain.NotFoundError{Resource: "accreditation"}
}
func (m *mockRecordRepo) NextBadgeSequence(ctx context.Context, eventID, role string) (int, error) {
	m.seq++
	return m.seq, nil
}

type mockEventRepo struct {
	events map[string]domain.Event
}

func (m *mockEventRepo) Get(ctx context.Context, id string) (domain.Event, error) {
	ev, ok := m.events[id]
	if !ok {
		return domain.Event{}, domain.NotFoundError{Resource: "event"}
	}
	return ev, nil
}
func (m *mockEventRepo) List(ctx context.Context) ([]domain.Event, error) {
	var out []domain.Event
	for _, ev := range m.events {
		out = append(out, ev)
	}
	return out, nil
}
func (m *mockEventRepo) Create(ctx context.Context, ev *domain.Event) error {
	m.events[ev.ID] = *ev
	return nil
}
func (m *mockEventRepo) Update(ctx context.Context, ev *domain.Event) error {
	if _, ok := m.events[ev.ID]; !ok {
		return domain.NotFoundError{Resource: "event"}
	}
	m.events[ev.ID] = *ev
	return nil
}
func (m *mockEventRepo) Delete(ctx context.Context, id string) error {
	delete(m.events, id)
	return nil
}

type mockZoneRepo struct{}

func (m *mockZoneRepo) ListByEvent(ctx context.Context, eventID string) ([]domain.Zone, error) {
	return []domain.Zone{{ID: "z-1", EventID: eventID, Code: "A", Name: "Arena"}}, nil
}
func (m *mockZoneRepo) Create(ctx context.Context, z *domain.Zone) error { return nil }
func (m *mockZoneRepo) Update(ctx context.Context, z *domain.Zone) error { return nil }
func (m *mockZoneRepo) Delete(ctx context.Context, id string) error      { return nil }

type mockAuditRepo struct{}

func (m *mockAuditRepo) Append(ctx context.Context, entry domain.AuditEntry) error { return nil }

// --- fixture ---

const testSecret = "test-secret"

type testClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func testToken(t *testing.T) string {
	return testTokenWithRole(t, "admin")
}

func testTokenWithRole(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, testClaims{
		Role:             role,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "operator-1"},
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newTestServer(records *mockRecordRepo) *echo.Echo {
	events := &mockEventRepo{events: map[string]domain.Event{
		"ev-1": {ID: "ev-1", Name: "Nordic Open"},
	}}
	zones := &mockZoneRepo{}

	exporter := badge.NewExporter("https://accred.example.com", badge.NewInliner(), nil)
	accreditationUC := usecase.NewAccreditationUsecase(records, events, &mockAuditRepo{}, nil)
	exportUC := usecase.NewExportUsecase(records, events, zones, exporter)
	verifyUC := usecase.NewVerifyUsecase(records, nil)

	authMW := middleware.NewAuthMiddleware(service.NewAuthService(testSecret))

	e := echo.New()
	e.Use(authMW.IdentifyIdentity)
	h := NewHandler(accreditationUC, exportUC, verifyUC, events, zones, nil)
	h.RegisterRoutes(e, authMW)
	return e
}

func doJSON(e *echo.Echo, method, path, token string, payload any) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		json.NewEncoder(&body).Encode(payload) //nolint:errcheck
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)
	return res
}

// --- tests ---

func TestHandleRegister(t *testing.T) {
	records := newMockRecordRepo()
	e := newTestServer(records)

	res := doJSON(e, http.MethodPost, "/api/v1/registrations", "", map[string]string{
		"eventId":   "ev-1",
		"firstName": "Ann",
		"lastName":  "Svensson",
		"role":      "Athlete",
	})
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", res.Code, res.Body.String())
	}
	if len(records.records) != 1 {
		t.Fatalf("expected record to be created")
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	e := newTestServer(newMockRecordRepo())

	res := doJSON(e, http.MethodGet, "/api/v1/accreditations", "", nil)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", res.Code)
	}

	res = doJSON(e, http.MethodGet, "/api/v1/accreditations", testToken(t), nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", res.Code)
	}
}

func TestHandleApproveFlow(t *testing.T) {
	records := newMockRecordRepo()
	records.records["rec-1"] = domain.AccreditationRecord{
		ID: "rec-1", EventID: "ev-1", Role: "Athlete", Status: domain.StatusPending,
	}
	e := newTestServer(records)
	token := testToken(t)

	res := doJSON(e, http.MethodPost, "/api/v1/accreditations/rec-1/approve", token, map[string]string{"zoneCodes": "A,B"})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.Code, res.Body.String())
	}
	var rec domain.AccreditationRecord
	if err := json.Unmarshal(res.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if rec.Status != domain.StatusApproved || rec.BadgeNumber == "" {
		t.Fatalf("expected approved record with badge number, got %+v", rec)
	}

	// Rejected is terminal: approving again afterwards conflicts.
	res = doJSON(e, http.MethodPost, "/api/v1/accreditations/rec-1/reject", token, map[string]string{"remarks": "withdrawn"})
	if res.Code != http.StatusOK {
		t.Fatalf("expected reject 200 got %d", res.Code)
	}
	res = doJSON(e, http.MethodPost, "/api/v1/accreditations/rec-1/approve", token, map[string]string{"zoneCodes": "A"})
	if res.Code != http.StatusConflict {
		t.Fatalf("expected 409 for terminal record, got %d", res.Code)
	}
}

func TestHandleCardPDF(t *testing.T) {
	records := newMockRecordRepo()
	records.records["rec-1"] = domain.AccreditationRecord{
		ID: "rec-1", EventID: "ev-1", FirstName: "Ann", LastName: "Svensson",
		Role: "Athlete", Status: domain.StatusApproved, BadgeNumber: "ATH-001", ZoneCode: "A",
	}
	e := newTestServer(records)
	token := testToken(t)

	res := doJSON(e, http.MethodGet, "/api/v1/accreditations/rec-1/card.pdf?size=a6", token, nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.Code, res.Body.String())
	}
	if !bytes.HasPrefix(res.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected pdf payload")
	}
	if cd := res.Header().Get(echo.HeaderContentDisposition); !strings.HasPrefix(cd, "attachment;") {
		t.Fatalf("expected attachment disposition, got %q", cd)
	}

	res = doJSON(e, http.MethodGet, "/api/v1/accreditations/rec-1/card.pdf?disposition=inline", token, nil)
	if cd := res.Header().Get(echo.HeaderContentDisposition); !strings.HasPrefix(cd, "inline;") {
		t.Fatalf("expected inline disposition, got %q", cd)
	}
}

func TestHandleCardPDFUnapproved(t *testing.T) {
	records := newMockRecordRepo()
	records.records["rec-1"] = domain.AccreditationRecord{
		ID: "rec-1", EventID: "ev-1", Role: "Athlete", Status: domain.StatusPending,
	}
	e := newTestServer(records)

	res := doJSON(e, http.MethodGet, "/api/v1/accreditations/rec-1/card.pdf", testToken(t), nil)
	if res.Code != http.StatusConflict {
		t.Fatalf("expected 409 for unapproved record, got %d", res.Code)
	}
}

func TestHandleVerify(t *testing.T) {
	records := newMockRecordRepo()
	records.records["rec-1"] = domain.AccreditationRecord{
		ID: "rec-1", FirstName: "Ann", LastName: "Svensson",
		Status: domain.StatusApproved, BadgeNumber: "ATH-001",
	}
	e := newTestServer(records)

	// Public, no token required.
	res := doJSON(e, http.MethodGet, "/verify/ATH-001", "", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	var v usecase.Verification
	if err := json.Unmarshal(res.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if v.FullName != "Ann Svensson" {
		t.Fatalf("unexpected verification %+v", v)
	}

	res = doJSON(e, http.MethodGet, "/verify/NOPE", "", nil)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown code, got %d", res.Code)
	}
}

func TestHandleCardPNG(t *testing.T) {
	records := newMockRecordRepo()
	records.records["rec-1"] = domain.AccreditationRecord{
		ID: "rec-1", EventID: "ev-1", FirstName: "Ann", LastName: "Svensson",
		Role: "Athlete", Status: domain.StatusApproved, BadgeNumber: "ATH-001", ZoneCode: "A",
	}
	e := newTestServer(records)

	res := doJSON(e, http.MethodGet, "/api/v1/accreditations/rec-1/card.png?face=front&scale=2", testToken(t), nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.Code, res.Body.String())
	}
	if ct := res.Header().Get(echo.HeaderContentType); ct != "image/png" {
		t.Fatalf("expected image/png, got %q", ct)
	}
}

func TestHandleEventAndZoneRoutes(t *testing.T) {
	e := newTestServer(newMockRecordRepo())
	token := testToken(t)

	res := doJSON(e, http.MethodGet, "/api/v1/events", token, nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}

	res = doJSON(e, http.MethodPost, "/api/v1/events", token, map[string]string{"name": "Winter Games"})
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", res.Code, res.Body.String())
	}

	res = doJSON(e, http.MethodGet, "/api/v1/events/ev-1/zones", token, nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
}

func TestPermissionDeniedForSteward(t *testing.T) {
	records := newMockRecordRepo()
	records.records["rec-1"] = domain.AccreditationRecord{
		ID: "rec-1", EventID: "ev-1", Role: "Athlete", Status: domain.StatusPending,
	}
	e := newTestServer(records)
	token := testTokenWithRole(t, "steward")

	res := doJSON(e, http.MethodPost, "/api/v1/accreditations/rec-1/approve", token, map[string]string{"zoneCodes": "A"})
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for steward approve, got %d", res.Code)
	}

	res = doJSON(e, http.MethodPost, "/api/v1/events", token, map[string]string{"name": "Winter Games"})
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for steward event create, got %d", res.Code)
	}

	res = doJSON(e, http.MethodGet, "/api/v1/exports/list.pdf", token, nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 for steward export, got %d", res.Code)
	}
}

func TestHandleCardPDFWrapPNG(t *testing.T) {
	records := newMockRecordRepo()
	records.records["rec-1"] = domain.AccreditationRecord{
		ID: "rec-1", EventID: "ev-1", FirstName: "Ann", LastName: "Svensson",
		Role: "Athlete", Status: domain.StatusApproved, BadgeNumber: "ATH-001", ZoneCode: "A",
	}
	e := newTestServer(records)

	res := doJSON(e, http.MethodGet, "/api/v1/accreditations/rec-1/card.pdf?size=a6&wrap=png", testToken(t), nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.Code, res.Body.String())
	}
	if !bytes.HasPrefix(res.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("output is not a pdf")
	}
}
