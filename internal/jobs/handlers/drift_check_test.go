package handlers

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/budgetpilot/budgetpilot/internal/domain"
	"github.com/budgetpilot/budgetpilot/internal/jobs"
	"github.com/budgetpilot/budgetpilot/internal/scrape"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetBudgetData(ctx context.Context, userID int64) (*domain.BudgetRecord, error) {
	args := m.Called(ctx, userID)
	record, _ := args.Get(0).(*domain.BudgetRecord)
	return record, args.Error(1)
}

func (m *mockRepo) SaveBudgetData(ctx context.Context, userID int64, record *domain.BudgetRecord) error {
	args := m.Called(ctx, userID, record)
	return args.Error(0)
}

func (m *mockRepo) GetUsersWithBudgetData(ctx context.Context) ([]domain.StoredUser, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]domain.StoredUser)
	return users, args.Error(1)
}

func (m *mockRepo) SaveNotification(ctx context.Context, notification *domain.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *mockRepo) ListNotifications(ctx context.Context, userID int64) ([]domain.Notification, error) {
	args := m.Called(ctx, userID)
	notifications, _ := args.Get(0).([]domain.Notification)
	return notifications, args.Error(1)
}

func (m *mockRepo) MarkNotificationRead(ctx context.Context, userID, notificationID int64) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}

type stubMarket struct {
	snapshot *domain.MarketSnapshot
	calls    int
}

func (s *stubMarket) Snapshot(_ context.Context, _ scrape.Params) *domain.MarketSnapshot {
	s.calls++
	return s.snapshot
}

type recordingNotifier struct {
	chatIDs  []int64
	messages []string
}

func (r *recordingNotifier) SendDriftAlert(_ context.Context, chatID int64, message string) error {
	r.chatIDs = append(r.chatIDs, chatID)
	r.messages = append(r.messages, message)
	return nil
}

// storedUser builds a US household on public transport whose groceries are
// the only variable cost: 400 per month at multiplier 1.0.
func storedUser(userID, chatID int64, oldGroceries float64) domain.StoredUser {
	return domain.StoredUser{
		UserID:         userID,
		Email:          "user@example.com",
		TelegramChatID: chatID,
		Record: domain.BudgetRecord{
			Profile: domain.UserProfile{
				CountryCode:   "US",
				Currency:      "$",
				Adults:        1,
				TransportMode: domain.TransportPublic,
				SavingsMonths: 1,
			},
			Estimates: &domain.BudgetBreakdown{Groceries: oldGroceries},
		},
	}
}

func driftTask(t *testing.T) *asynq.Task {
	t.Helper()
	task, err := jobs.NewDriftCheckTask("test")
	require.NoError(t, err)
	return task
}

func TestDriftCheck_NotifiesWhenCostsDrift(t *testing.T) {
	repo := new(mockRepo)
	// Stored baseline 300; at multiplier 2.25 the groceries re-price to 900,
	// a drift of 600 past the 500 threshold.
	users := []domain.StoredUser{storedUser(7, 4242, 300)}
	repo.On("GetUsersWithBudgetData", mock.Anything).Return(users, nil)
	repo.On("SaveNotification", mock.Anything, mock.Anything).Return(nil)
	repo.On("SaveBudgetData", mock.Anything, int64(7), mock.Anything).Return(nil)

	market := &stubMarket{snapshot: &domain.MarketSnapshot{GasPrice: 3.50, GroceryMultiplier: 2.25}}
	notifier := &recordingNotifier{}

	handler := NewDriftCheckHandler(repo, market, notifier, 500, nil)
	require.NoError(t, handler.ProcessTask(context.Background(), driftTask(t)))

	repo.AssertNumberOfCalls(t, "SaveNotification", 1)
	saved := repo.Calls[1].Arguments.Get(1).(*domain.Notification)
	assert.Equal(t, int64(7), saved.UserID)
	assert.Equal(t, float64(600), saved.DiffAmount)
	assert.Contains(t, saved.Message, "600 $")

	require.Len(t, notifier.chatIDs, 1)
	assert.Equal(t, int64(4242), notifier.chatIDs[0])

	// The stored baseline moves to the new market level.
	record := repo.Calls[2].Arguments.Get(2).(*domain.BudgetRecord)
	require.NotNil(t, record.Estimates)
	assert.Equal(t, float64(900), record.Estimates.Groceries)
}

func TestDriftCheck_ThresholdIsStrict(t *testing.T) {
	repo := new(mockRepo)
	// Baseline 300 against a re-priced 800: exactly the threshold, no alert.
	users := []domain.StoredUser{storedUser(7, 4242, 300)}
	repo.On("GetUsersWithBudgetData", mock.Anything).Return(users, nil)

	market := &stubMarket{snapshot: &domain.MarketSnapshot{GasPrice: 3.50, GroceryMultiplier: 2.0}}
	notifier := &recordingNotifier{}

	handler := NewDriftCheckHandler(repo, market, notifier, 500, nil)
	require.NoError(t, handler.ProcessTask(context.Background(), driftTask(t)))

	repo.AssertNotCalled(t, "SaveNotification")
	repo.AssertNotCalled(t, "SaveBudgetData")
	assert.Empty(t, notifier.chatIDs)
}

func TestDriftCheck_SkipsUsersWithoutBaseline(t *testing.T) {
	repo := new(mockRepo)
	user := storedUser(7, 0, 0)
	user.Record.Estimates = nil
	repo.On("GetUsersWithBudgetData", mock.Anything).Return([]domain.StoredUser{user}, nil)

	market := &stubMarket{snapshot: &domain.MarketSnapshot{GasPrice: 3.50, GroceryMultiplier: 3.0}}

	handler := NewDriftCheckHandler(repo, market, &recordingNotifier{}, 500, nil)
	require.NoError(t, handler.ProcessTask(context.Background(), driftTask(t)))

	assert.Zero(t, market.calls)
	repo.AssertNotCalled(t, "SaveNotification")
}

func TestDriftCheck_UserFailureIsIsolated(t *testing.T) {
	repo := new(mockRepo)

	broken := storedUser(1, 0, 300)
	broken.Record.Profile.Adults = 0

	healthy := storedUser(2, 0, 300)

	repo.On("GetUsersWithBudgetData", mock.Anything).Return([]domain.StoredUser{broken, healthy}, nil)
	repo.On("SaveNotification", mock.Anything, mock.Anything).Return(nil)
	repo.On("SaveBudgetData", mock.Anything, int64(2), mock.Anything).Return(nil)

	market := &stubMarket{snapshot: &domain.MarketSnapshot{GasPrice: 3.50, GroceryMultiplier: 2.25}}
	notifier := &recordingNotifier{}

	handler := NewDriftCheckHandler(repo, market, notifier, 500, nil)
	require.NoError(t, handler.ProcessTask(context.Background(), driftTask(t)))

	// The invalid profile never reaches the market; the healthy one does.
	assert.Equal(t, 1, market.calls)
	repo.AssertNumberOfCalls(t, "SaveNotification", 1)
}

func TestDriftCheck_OverlappingRunSkipped(t *testing.T) {
	repo := new(mockRepo)
	handler := NewDriftCheckHandler(repo, &stubMarket{}, nil, 500, nil)
	handler.running.Store(true)

	require.NoError(t, handler.ProcessTask(context.Background(), driftTask(t)))

	repo.AssertNotCalled(t, "GetUsersWithBudgetData")
}
