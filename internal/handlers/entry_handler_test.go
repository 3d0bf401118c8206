package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "ledgerbook/internal/errors"
	"ledgerbook/internal/models"
	"ledgerbook/internal/pagination"
	"ledgerbook/internal/services"
)

func setupEntryRouter(handler *EntryHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectOwnerID(testOwner))
	auth.POST("/entries", handler.CreateEntry)
	auth.GET("/entries", handler.ListEntries)
	auth.GET("/entries/:id", handler.GetEntry)
	auth.PUT("/entries/:id", handler.UpdateEntry)
	auth.DELETE("/entries/:id", handler.DeleteEntry)
	r.GET("/anonymous/entries", handler.ListEntries)
	return r
}

func TestEntryHandler_CreateEntry(t *testing.T) {
	t.Run("returns 201 with money as two digit strings", func(t *testing.T) {
		var got services.EntryInput
		svc := &mockEntryService{
			createEntryFn: func(ownerID string, in services.EntryInput) (*models.Entry, error) {
				if ownerID != testOwner {
					t.Errorf("expected owner %q, got %q", testOwner, ownerID)
				}
				got = in
				return creditSale("1200", "1200"), nil
			},
		}
		r := setupEntryRouter(NewEntryHandler(svc, testClock()))

		rec := doRequest(r, "POST", "/entries",
			`{"entry_type":"Credit","category":"Sales","amount":"1200","entry_date":"2024-05-01","party_id":"`+partyID+`"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !got.Amount.Equal(dec("1200")) || !got.EntryDate.Equal(day("2024-05-01")) {
			t.Errorf("unexpected input passed to service: %+v", got)
		}
		if got.PartyID == nil || *got.PartyID != partyID {
			t.Error("expected party id to be forwarded")
		}
		entry := parseJSON(t, rec)["entry"].(map[string]interface{})
		if entry["amount"] != "1200.00" || entry["remaining_amount"] != "1200.00" {
			t.Errorf("expected fixed point strings, got %v / %v", entry["amount"], entry["remaining_amount"])
		}
		if entry["status"] != string(models.StatusOpen) {
			t.Errorf("expected open status, got %v", entry["status"])
		}
	})

	t.Run("rounds amount to two places", func(t *testing.T) {
		var got services.EntryInput
		svc := &mockEntryService{
			createEntryFn: func(_ string, in services.EntryInput) (*models.Entry, error) {
				got = in
				return &models.Entry{}, nil
			},
		}
		r := setupEntryRouter(NewEntryHandler(svc, testClock()))

		rec := doRequest(r, "POST", "/entries", `{"entry_type":"CashIn","category":"Sales","amount":"10.005"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !got.Amount.Equal(dec("10.01")) {
			t.Errorf("expected 10.01, got %s", got.Amount)
		}
		if !got.EntryDate.IsZero() {
			t.Error("expected an omitted date to be left for the service to default")
		}
	})

	bad := []struct {
		name string
		body string
	}{
		{"missing entry_type", `{"category":"Sales","amount":"10"}`},
		{"unknown entry_type", `{"entry_type":"Refund","category":"Sales","amount":"10"}`},
		{"unknown category", `{"entry_type":"CashIn","category":"Rent","amount":"10"}`},
		{"unknown payment method", `{"entry_type":"CashIn","category":"Sales","payment_method":"Card","amount":"10"}`},
		{"amount not a number", `{"entry_type":"CashIn","category":"Sales","amount":"ten"}`},
		{"bad date", `{"entry_type":"CashIn","category":"Sales","amount":"10","entry_date":"05/01/2024"}`},
		{"party id not a uuid", `{"entry_type":"Credit","category":"Sales","amount":"10","party_id":"42"}`},
	}
	for _, tc := range bad {
		t.Run("returns 400 on "+tc.name, func(t *testing.T) {
			r := setupEntryRouter(NewEntryHandler(&mockEntryService{}, testClock()))
			rec := doRequest(r, "POST", "/entries", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		})
	}

	t.Run("returns 429 when rate limited", func(t *testing.T) {
		svc := &mockEntryService{
			createEntryFn: func(string, services.EntryInput) (*models.Entry, error) {
				return nil, apperrors.ErrRateLimited
			},
		}
		r := setupEntryRouter(NewEntryHandler(svc, testClock()))
		rec := doRequest(r, "POST", "/entries", `{"entry_type":"CashIn","category":"Sales","amount":"10"}`)
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", rec.Code)
		}
	})
}

func TestEntryHandler_ListEntries(t *testing.T) {
	t.Run("parses filters", func(t *testing.T) {
		var gotFilter services.EntryFilter
		var gotPage pagination.PageRequest
		svc := &mockEntryService{
			listEntriesFn: func(_ string, page pagination.PageRequest, filter services.EntryFilter) (*pagination.PageResponse[models.Entry], error) {
				gotFilter, gotPage = filter, page
				resp := pagination.NewPageResponse([]models.Entry{*creditSale("50", "20")}, 2, 10, 11)
				return &resp, nil
			},
		}
		r := setupEntryRouter(NewEntryHandler(svc, testClock()))

		rec := doRequest(r, "GET", "/entries?page=2&page_size=10&period=this_month&entry_type=Credit&category=Sales&settled=false&party_id="+partyID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotPage.Page != 2 || gotPage.PageSize != 10 {
			t.Errorf("unexpected page %+v", gotPage)
		}
		if !gotFilter.Range.From.Equal(day("2024-05-01")) || !gotFilter.Range.To.Equal(day("2024-05-15")) {
			t.Errorf("unexpected range %s", gotFilter.Range)
		}
		if gotFilter.EntryType == nil || *gotFilter.EntryType != models.EntryTypeCredit {
			t.Error("expected entry type filter")
		}
		if gotFilter.Category == nil || *gotFilter.Category != models.CategorySales {
			t.Error("expected category filter")
		}
		if gotFilter.Settled == nil || *gotFilter.Settled {
			t.Error("expected settled=false filter")
		}
		if gotFilter.PartyID != partyID {
			t.Error("expected party filter")
		}

		result := parseJSON(t, rec)
		if result["total_items"].(float64) != 11 {
			t.Errorf("expected 11 total items, got %v", result["total_items"])
		}
		first := result["data"].([]interface{})[0].(map[string]interface{})
		if first["remaining_amount"] != "20.00" {
			t.Errorf("expected 20.00, got %v", first["remaining_amount"])
		}
	})

	t.Run("explicit dates", func(t *testing.T) {
		var gotFilter services.EntryFilter
		svc := &mockEntryService{
			listEntriesFn: func(_ string, _ pagination.PageRequest, filter services.EntryFilter) (*pagination.PageResponse[models.Entry], error) {
				gotFilter = filter
				resp := pagination.NewPageResponse([]models.Entry{}, 1, 20, 0)
				return &resp, nil
			},
		}
		r := setupEntryRouter(NewEntryHandler(svc, testClock()))

		rec := doRequest(r, "GET", "/entries?from=2024-04-01", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !gotFilter.Range.From.Equal(day("2024-04-01")) || !gotFilter.Range.To.IsZero() {
			t.Errorf("expected an open ended range, got %s", gotFilter.Range)
		}
	})

	bad := []string{
		"/entries?period=fortnight",
		"/entries?period=today&from=2024-01-01",
		"/entries?from=2024-05-10&to=2024-05-01",
		"/entries?entry_type=Refund",
		"/entries?category=Rent",
		"/entries?settled=maybe",
		"/entries?page_size=1000",
	}
	for _, path := range bad {
		t.Run("returns 400 on "+path, func(t *testing.T) {
			r := setupEntryRouter(NewEntryHandler(&mockEntryService{}, testClock()))
			rec := doRequest(r, "GET", path, "")
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}

	t.Run("returns 401 without owner", func(t *testing.T) {
		r := setupEntryRouter(NewEntryHandler(&mockEntryService{}, testClock()))
		rec := doRequest(r, "GET", "/anonymous/entries", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "UNAUTHORIZED")
	})
}

func TestEntryHandler_GetEntry(t *testing.T) {
	t.Run("returns 200", func(t *testing.T) {
		svc := &mockEntryService{
			getEntryFn: func(_, id string) (*models.Entry, error) {
				return creditSale("100", "0"), nil
			},
		}
		r := setupEntryRouter(NewEntryHandler(svc, testClock()))
		rec := doRequest(r, "GET", "/entries/"+entryID, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		entry := parseJSON(t, rec)["entry"].(map[string]interface{})
		if entry["status"] != string(models.StatusSettled) {
			t.Errorf("expected settled status, got %v", entry["status"])
		}
	})

	t.Run("returns 400 on malformed id", func(t *testing.T) {
		r := setupEntryRouter(NewEntryHandler(&mockEntryService{}, testClock()))
		rec := doRequest(r, "GET", "/entries/abc", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockEntryService{
			getEntryFn: func(string, string) (*models.Entry, error) {
				return nil, apperrors.ErrEntryNotFound
			},
		}
		r := setupEntryRouter(NewEntryHandler(svc, testClock()))
		rec := doRequest(r, "GET", "/entries/"+entryID, "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ENTRY_NOT_FOUND")
	})
}

func TestEntryHandler_UpdateEntry(t *testing.T) {
	t.Run("builds the patch", func(t *testing.T) {
		var got services.EntryPatch
		svc := &mockEntryService{
			updateEntryFn: func(_, _ string, patch services.EntryPatch) (*models.Entry, error) {
				got = patch
				return creditSale("1500", "1100"), nil
			},
		}
		r := setupEntryRouter(NewEntryHandler(svc, testClock()))

		rec := doRequest(r, "PUT", "/entries/"+entryID, `{"amount":"1500","notes":"revised","clear_party":true}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Amount == nil || !got.Amount.Equal(dec("1500")) {
			t.Error("expected amount in patch")
		}
		if got.Notes == nil || *got.Notes != "revised" {
			t.Error("expected notes in patch")
		}
		if !got.ClearParty || got.EntryType != nil || got.EntryDate != nil {
			t.Errorf("unexpected patch %+v", got)
		}
	})

	errs := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"derived entry", apperrors.ErrDerivedEntryImmutable, http.StatusBadRequest, "DERIVED_ENTRY_IMMUTABLE"},
		{"type change with settlements", apperrors.ErrEntryHasSettlements, http.StatusBadRequest, "ENTRY_HAS_SETTLEMENTS"},
		{"concurrent edit", apperrors.ErrConcurrentModification, http.StatusConflict, "CONCURRENT_MODIFICATION"},
	}
	for _, tc := range errs {
		t.Run("maps "+tc.name, func(t *testing.T) {
			svc := &mockEntryService{
				updateEntryFn: func(string, string, services.EntryPatch) (*models.Entry, error) {
					return nil, tc.err
				},
			}
			r := setupEntryRouter(NewEntryHandler(svc, testClock()))
			rec := doRequest(r, "PUT", "/entries/"+entryID, `{"entry_type":"Advance"}`)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), tc.code)
		})
	}

	t.Run("returns 400 on bad amount", func(t *testing.T) {
		r := setupEntryRouter(NewEntryHandler(&mockEntryService{}, testClock()))
		rec := doRequest(r, "PUT", "/entries/"+entryID, `{"amount":"lots"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestEntryHandler_DeleteEntry(t *testing.T) {
	svc := &mockEntryService{
		deleteEntryFn: func(_, id string) (*services.DeleteResult, error) {
			return &services.DeleteResult{EntryID: id, ActiveSettlements: 2, Warning: "2 settlements still reference this entry"}, nil
		},
	}
	r := setupEntryRouter(NewEntryHandler(svc, testClock()))

	rec := doRequest(r, "DELETE", "/entries/"+entryID, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	result := parseJSON(t, rec)
	if result["active_settlements"].(float64) != 2 || result["warning"] == "" {
		t.Errorf("expected the settlement warning, got %v", result)
	}
}
