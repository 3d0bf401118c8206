package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"ledgerbook/internal/analytics"
	"ledgerbook/internal/events"
	"ledgerbook/internal/middleware"
	"ledgerbook/internal/models"
	"ledgerbook/internal/pagination"
	"ledgerbook/internal/period"
	"ledgerbook/internal/services"
	"ledgerbook/internal/validator"
)

// --- mock services ---

type mockEntryService struct {
	createEntryFn func(ownerID string, in services.EntryInput) (*models.Entry, error)
	getEntryFn    func(ownerID, id string) (*models.Entry, error)
	listEntriesFn func(ownerID string, page pagination.PageRequest, filter services.EntryFilter) (*pagination.PageResponse[models.Entry], error)
	updateEntryFn func(ownerID, id string, patch services.EntryPatch) (*models.Entry, error)
	deleteEntryFn func(ownerID, id string) (*services.DeleteResult, error)
}

func (m *mockEntryService) CreateEntry(_ context.Context, ownerID string, in services.EntryInput) (*models.Entry, error) {
	if m.createEntryFn != nil {
		return m.createEntryFn(ownerID, in)
	}
	return &models.Entry{}, nil
}

func (m *mockEntryService) GetEntry(_ context.Context, ownerID, id string) (*models.Entry, error) {
	if m.getEntryFn != nil {
		return m.getEntryFn(ownerID, id)
	}
	return &models.Entry{}, nil
}

func (m *mockEntryService) ListEntries(_ context.Context, ownerID string, page pagination.PageRequest, filter services.EntryFilter) (*pagination.PageResponse[models.Entry], error) {
	if m.listEntriesFn != nil {
		return m.listEntriesFn(ownerID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Entry{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockEntryService) UpdateEntry(_ context.Context, ownerID, id string, patch services.EntryPatch) (*models.Entry, error) {
	if m.updateEntryFn != nil {
		return m.updateEntryFn(ownerID, id, patch)
	}
	return &models.Entry{}, nil
}

func (m *mockEntryService) DeleteEntry(_ context.Context, ownerID, id string) (*services.DeleteResult, error) {
	if m.deleteEntryFn != nil {
		return m.deleteEntryFn(ownerID, id)
	}
	return &services.DeleteResult{EntryID: id}, nil
}

var _ services.EntryServicer = (*mockEntryService)(nil)

type mockSettlementService struct {
	createSettlementFn  func(ownerID string, in services.SettlementInput) (*services.SettlementResult, error)
	reverseSettlementFn func(ownerID, id string) (*services.ReversalResult, error)
	getSettlementFn     func(ownerID, id string) (*models.Settlement, error)
	listSettlementsFn   func(ownerID, entryID string) ([]models.Settlement, error)
}

func (m *mockSettlementService) CreateSettlement(_ context.Context, ownerID string, in services.SettlementInput) (*services.SettlementResult, error) {
	if m.createSettlementFn != nil {
		return m.createSettlementFn(ownerID, in)
	}
	return &services.SettlementResult{Settlement: &models.Settlement{}, Entry: &models.Entry{}}, nil
}

func (m *mockSettlementService) ReverseSettlement(_ context.Context, ownerID, id string) (*services.ReversalResult, error) {
	if m.reverseSettlementFn != nil {
		return m.reverseSettlementFn(ownerID, id)
	}
	return &services.ReversalResult{Settlement: &models.Settlement{}}, nil
}

func (m *mockSettlementService) GetSettlement(_ context.Context, ownerID, id string) (*models.Settlement, error) {
	if m.getSettlementFn != nil {
		return m.getSettlementFn(ownerID, id)
	}
	return &models.Settlement{}, nil
}

func (m *mockSettlementService) ListSettlements(_ context.Context, ownerID, entryID string) ([]models.Settlement, error) {
	if m.listSettlementsFn != nil {
		return m.listSettlementsFn(ownerID, entryID)
	}
	return []models.Settlement{}, nil
}

var _ services.SettlementServicer = (*mockSettlementService)(nil)

type mockPartyService struct {
	createPartyFn     func(ownerID string, in services.PartyInput) (*models.Party, error)
	getPartyFn        func(ownerID, id string) (*models.Party, error)
	listPartiesFn     func(ownerID string) ([]models.Party, error)
	updatePartyFn     func(ownerID, id string, patch services.PartyPatch) (*models.Party, error)
	deletePartyFn     func(ownerID, id string) error
	pendingBalancesFn func(ownerID string) ([]analytics.PartyBalance, error)
}

func (m *mockPartyService) CreateParty(_ context.Context, ownerID string, in services.PartyInput) (*models.Party, error) {
	if m.createPartyFn != nil {
		return m.createPartyFn(ownerID, in)
	}
	return &models.Party{}, nil
}

func (m *mockPartyService) GetParty(_ context.Context, ownerID, id string) (*models.Party, error) {
	if m.getPartyFn != nil {
		return m.getPartyFn(ownerID, id)
	}
	return &models.Party{}, nil
}

func (m *mockPartyService) ListParties(_ context.Context, ownerID string) ([]models.Party, error) {
	if m.listPartiesFn != nil {
		return m.listPartiesFn(ownerID)
	}
	return []models.Party{}, nil
}

func (m *mockPartyService) UpdateParty(_ context.Context, ownerID, id string, patch services.PartyPatch) (*models.Party, error) {
	if m.updatePartyFn != nil {
		return m.updatePartyFn(ownerID, id, patch)
	}
	return &models.Party{}, nil
}

func (m *mockPartyService) DeleteParty(_ context.Context, ownerID, id string) error {
	if m.deletePartyFn != nil {
		return m.deletePartyFn(ownerID, id)
	}
	return nil
}

func (m *mockPartyService) PendingBalances(_ context.Context, ownerID string) ([]analytics.PartyBalance, error) {
	if m.pendingBalancesFn != nil {
		return m.pendingBalancesFn(ownerID)
	}
	return []analytics.PartyBalance{}, nil
}

var _ services.PartyServicer = (*mockPartyService)(nil)

type mockReportService struct {
	cashReportFn    func(ownerID string, r period.Range) (*services.CashReport, error)
	accrualReportFn func(ownerID string, r period.Range) (*services.AccrualReport, error)
	trendFn         func(ownerID string, r period.Range, g period.Granularity) ([]analytics.TrendPoint, error)
	exportFn        func(ownerID string, r period.Range) ([]byte, error)
}

func (m *mockReportService) CashReport(_ context.Context, ownerID string, r period.Range) (*services.CashReport, error) {
	if m.cashReportFn != nil {
		return m.cashReportFn(ownerID, r)
	}
	return &services.CashReport{}, nil
}

func (m *mockReportService) AccrualReport(_ context.Context, ownerID string, r period.Range) (*services.AccrualReport, error) {
	if m.accrualReportFn != nil {
		return m.accrualReportFn(ownerID, r)
	}
	return &services.AccrualReport{}, nil
}

func (m *mockReportService) Trend(_ context.Context, ownerID string, r period.Range, g period.Granularity) ([]analytics.TrendPoint, error) {
	if m.trendFn != nil {
		return m.trendFn(ownerID, r, g)
	}
	return []analytics.TrendPoint{}, nil
}

func (m *mockReportService) Export(_ context.Context, ownerID string, r period.Range) ([]byte, error) {
	if m.exportFn != nil {
		return m.exportFn(ownerID, r)
	}
	return []byte("PK"), nil
}

var _ services.ReportServicer = (*mockReportService)(nil)

type mockAlertService struct {
	listAlertsFn  func(ownerID string, page pagination.PageRequest, unreadOnly bool) (*pagination.PageResponse[models.Alert], error)
	markReadFn    func(ownerID, id string) error
	deleteAlertFn func(ownerID, id string) error
}

func (m *mockAlertService) Evaluate(context.Context, string, *models.Entry) ([]models.Alert, error) {
	return nil, nil
}

func (m *mockAlertService) ListAlerts(_ context.Context, ownerID string, page pagination.PageRequest, unreadOnly bool) (*pagination.PageResponse[models.Alert], error) {
	if m.listAlertsFn != nil {
		return m.listAlertsFn(ownerID, page, unreadOnly)
	}
	resp := pagination.NewPageResponse([]models.Alert{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockAlertService) MarkRead(_ context.Context, ownerID, id string) error {
	if m.markReadFn != nil {
		return m.markReadFn(ownerID, id)
	}
	return nil
}

func (m *mockAlertService) DeleteAlert(_ context.Context, ownerID, id string) error {
	if m.deleteAlertFn != nil {
		return m.deleteAlertFn(ownerID, id)
	}
	return nil
}

func (m *mockAlertService) Purge(context.Context) (int64, error) { return 0, nil }

func (m *mockAlertService) HandleEvent(context.Context, events.Event) error { return nil }

var _ services.AlertServicer = (*mockAlertService)(nil)

// --- test helpers ---

const (
	testOwner = "owner-1"
	entryID   = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b"
	partyID   = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a6c"
	otherID   = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a7d"
)

var testNow = time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func testClock() services.Clock {
	return services.Clock{Now: func() time.Time { return testNow }, Location: time.UTC}
}

func injectOwnerID(ownerID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.OwnerIDKey, ownerID)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func creditSale(amount, remaining string) *models.Entry {
	return &models.Entry{
		Base:            models.Base{ID: entryID},
		OwnerID:         testOwner,
		EntryType:       models.EntryTypeCredit,
		Category:        models.CategorySales,
		PaymentMethod:   models.PaymentMethodNone,
		Amount:          dec(amount),
		RemainingAmount: dec(remaining),
		EntryDate:       day("2024-05-01"),
		Version:         1,
	}
}
