package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budgetpilot/budgetpilot/internal/apperr"
	"github.com/budgetpilot/budgetpilot/internal/auth"
	"github.com/budgetpilot/budgetpilot/internal/domain"
	"github.com/budgetpilot/budgetpilot/internal/health"
	"github.com/budgetpilot/budgetpilot/internal/repository"
	"github.com/budgetpilot/budgetpilot/internal/scrape"
)

const testSecret = "api-test-secret"

type fakeRepo struct {
	records       map[int64]*domain.BudgetRecord
	notifications map[int64][]domain.Notification
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		records:       make(map[int64]*domain.BudgetRecord),
		notifications: make(map[int64][]domain.Notification),
	}
}

func (f *fakeRepo) GetBudgetData(_ context.Context, userID int64) (*domain.BudgetRecord, error) {
	return f.records[userID], nil
}

func (f *fakeRepo) SaveBudgetData(_ context.Context, userID int64, record *domain.BudgetRecord) error {
	f.records[userID] = record
	return nil
}

func (f *fakeRepo) GetUsersWithBudgetData(context.Context) ([]domain.StoredUser, error) {
	return nil, nil
}

func (f *fakeRepo) SaveNotification(_ context.Context, n *domain.Notification) error {
	n.ID = int64(len(f.notifications[n.UserID]) + 1)
	f.notifications[n.UserID] = append(f.notifications[n.UserID], *n)
	return nil
}

func (f *fakeRepo) ListNotifications(_ context.Context, userID int64) ([]domain.Notification, error) {
	return append([]domain.Notification{}, f.notifications[userID]...), nil
}

func (f *fakeRepo) MarkNotificationRead(_ context.Context, userID, notificationID int64) error {
	for i, n := range f.notifications[userID] {
		if n.ID == notificationID {
			f.notifications[userID][i].IsRead = true
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeMarket struct {
	snapshot *domain.MarketSnapshot
	lastReq  scrape.Params
}

func (f *fakeMarket) Snapshot(_ context.Context, p scrape.Params) *domain.MarketSnapshot {
	f.lastReq = p
	return f.snapshot
}

func testServer(t *testing.T, repo repository.BudgetRepository, market MarketProvider) *httptest.Server {
	t.Helper()

	srv := NewServer(repo, market, auth.NewVerifier(testSecret), health.NewChecker(nil), apperr.NewHandler(nil, false), nil)
	ts := httptest.NewServer(srv.Handler(nil))
	t.Cleanup(ts.Close)

	return ts
}

func bearerToken(t *testing.T, userID int64) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", userID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	return signed
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func TestMarketEndpoint(t *testing.T) {
	market := &fakeMarket{snapshot: &domain.MarketSnapshot{
		GasPrice:          38.50,
		GroceryMultiplier: 1.0,
		ProductSource:     domain.ProvenanceLive,
		GasSource:         domain.ProvenanceCached,
	}}
	ts := testServer(t, newFakeRepo(), market)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/market?country=CZ&city=Prague&lat=50.08&lon=14.43&items=milk,bread", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snapshot domain.MarketSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snapshot))
	assert.Equal(t, 38.50, snapshot.GasPrice)
	assert.Equal(t, domain.ProvenanceCached, snapshot.GasSource)

	assert.Equal(t, "CZ", market.lastReq.CountryCode)
	assert.Equal(t, "Prague", market.lastReq.City)
	assert.Equal(t, []string{"milk", "bread"}, market.lastReq.Items)
}

func TestMarketEndpoint_RequiresCountry(t *testing.T) {
	ts := testServer(t, newFakeRepo(), &fakeMarket{snapshot: &domain.MarketSnapshot{}})

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/market?city=Prague", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBudgetEndpoints_RequireAuth(t *testing.T) {
	ts := testServer(t, newFakeRepo(), &fakeMarket{snapshot: &domain.MarketSnapshot{}})

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/budget", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/budget", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSaveAndGetBudget(t *testing.T) {
	repo := newFakeRepo()
	market := &fakeMarket{snapshot: &domain.MarketSnapshot{
		GasPrice:          38.50,
		GroceryMultiplier: 1.0,
		TransportFare:     &domain.TransportFare{Monthly: 550},
	}}
	ts := testServer(t, repo, market)
	token := bearerToken(t, 7)

	profile := domain.UserProfile{
		CountryCode:   "CZ",
		City:          "Prague",
		Adults:        2,
		Rent:          15000,
		TransportMode: domain.TransportPublic,
		SavingsTarget: 60000,
		SavingsMonths: 6,
	}

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/budget", token, profile)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var saved domain.BudgetRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&saved))
	require.NotNil(t, saved.Estimates)
	assert.Equal(t, float64(550), saved.Estimates.Transport)
	assert.Equal(t, float64(14000), saved.Estimates.Groceries)
	assert.Equal(t, float64(10000), saved.Estimates.Savings)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/budget", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var loaded domain.BudgetRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&loaded))
	assert.Equal(t, saved.Estimates.Total, loaded.Estimates.Total)
	assert.Equal(t, "Kč", loaded.Profile.Currency)
}

func TestSaveBudget_InvalidProfileRejected(t *testing.T) {
	ts := testServer(t, newFakeRepo(), &fakeMarket{snapshot: &domain.MarketSnapshot{}})
	token := bearerToken(t, 7)

	profile := domain.UserProfile{CountryCode: "CZ", Adults: 0}
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/budget", token, profile)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestComputeBudget_PureEndpoint(t *testing.T) {
	market := &fakeMarket{snapshot: &domain.MarketSnapshot{}}
	ts := testServer(t, newFakeRepo(), market)
	token := bearerToken(t, 7)

	body := map[string]any{
		"profile": domain.UserProfile{
			CountryCode:   "US",
			Adults:        1,
			TransportMode: domain.TransportPublic,
			SavingsMonths: 1,
		},
		"snapshot": domain.MarketSnapshot{GasPrice: 3.50, GroceryMultiplier: 1.0},
	}

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/budget/compute", token, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var breakdown domain.BudgetBreakdown
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&breakdown))
	assert.Equal(t, float64(400), breakdown.Groceries)
	assert.Equal(t, float64(50), breakdown.Transport)

	// The pure endpoint never calls the aggregator.
	assert.Empty(t, market.lastReq.CountryCode)
}

func TestComputeBudget_SnapshotRequired(t *testing.T) {
	ts := testServer(t, newFakeRepo(), &fakeMarket{snapshot: &domain.MarketSnapshot{}})
	token := bearerToken(t, 7)

	body := map[string]any{"profile": domain.UserProfile{CountryCode: "US", Adults: 1, SavingsMonths: 1}}
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/budget/compute", token, body)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNotificationsFlow(t *testing.T) {
	repo := newFakeRepo()
	require.NoError(t, repo.SaveNotification(context.Background(), &domain.Notification{
		UserID:  7,
		Message: "costs shifted",
	}))

	ts := testServer(t, repo, &fakeMarket{snapshot: &domain.MarketSnapshot{}})
	token := bearerToken(t, 7)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/notifications", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var notifications []domain.Notification
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&notifications))
	require.Len(t, notifications, 1)
	assert.False(t, notifications[0].IsRead)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/notifications/mark-read", token, markReadRequest{ID: notifications[0].ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Marking read flips the flag but never removes the row.
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/notifications", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&notifications))
	require.Len(t, notifications, 1)
	assert.True(t, notifications[0].IsRead)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/notifications/mark-read", token, markReadRequest{ID: 999})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	ts := testServer(t, newFakeRepo(), &fakeMarket{snapshot: &domain.MarketSnapshot{}})

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
