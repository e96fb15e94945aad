package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ledfit-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- in-memory store ---

// memStore keeps one user and its notifications and enforces the same
// version check as the DynamoDB conditional write.
type memStore struct {
	mu            sync.Mutex
	user          domain.User
	notifications map[string]domain.Notification
	order         []string

	commitErrs []error // returned by the next CommitProgress calls, in order
	commits    int

	// gate, when set, holds every reader until gateN reads have happened.
	gate  chan struct{}
	gateN int
}

func newMemStore(u domain.User) *memStore {
	return &memStore{user: u, notifications: map[string]domain.Notification{}}
}

func (s *memStore) Get(_ context.Context, userID string) (*domain.User, error) {
	s.mu.Lock()
	if userID != s.user.UserID {
		s.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	u := s.user
	u.Achievements = append([]domain.Achievement(nil), s.user.Achievements...)
	gate := s.gate
	if gate != nil {
		s.gateN--
		if s.gateN == 0 {
			close(gate)
			s.gate = nil
		}
	}
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return &u, nil
}

func (s *memStore) CommitProgress(_ context.Context, userID string, expected int64, totals domain.Totals, achievements []domain.Achievement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.commitErrs) > 0 {
		err := s.commitErrs[0]
		s.commitErrs = s.commitErrs[1:]
		if err != nil {
			return err
		}
	}
	if s.user.Version != expected {
		return domain.ErrConflict
	}
	s.user.Totals = totals
	s.user.Achievements = append([]domain.Achievement(nil), achievements...)
	s.user.Version++
	s.commits++
	return nil
}

func (s *memStore) PutOnce(_ context.Context, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.notifications[n.NotificationID]; ok {
		*n = stored
		return nil
	}
	s.notifications[n.NotificationID] = *n
	s.order = append(s.order, n.NotificationID)
	return nil
}

func (s *memStore) created() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Notification, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.notifications[id])
	}
	return out
}

func caloriesUser(unlocked bool) domain.User {
	return domain.User{
		UserID: "u1",
		Achievements: []domain.Achievement{
			{Key: "100", Kind: domain.KindCheck, Title: "Burner", Content: "You burned 100 kcal", Unlocked: unlocked},
		},
	}
}

func newTestService(store *memStore, attempts int) Service {
	return NewService(ServiceDeps{UserRepo: store, NotificationRepo: store, MaxAttempts: attempts})
}

// --- scenarios ---

func TestUpdateMetrics_UnlocksAndNotifies(t *testing.T) {
	store := newMemStore(caloriesUser(false))
	totals, err := newTestService(store, 2).UpdateMetrics(context.Background(), "u1", domain.MetricsDelta{Calories: 150})

	require.NoError(t, err)
	assert.Equal(t, domain.Totals{CaloriesBurned: 150, SessionsCompleted: 1}, *totals)
	assert.True(t, store.user.Achievements[0].Unlocked)

	notifs := store.created()
	require.Len(t, notifs, 1)
	assert.Equal(t, "Burner", notifs[0].Title)
	assert.Equal(t, "You burned 100 kcal", notifs[0].Content)
	assert.Equal(t, domain.KindCheck, notifs[0].Kind)
	assert.Equal(t, "u1", notifs[0].UserID)
}

func TestUpdateMetrics_BelowThreshold(t *testing.T) {
	store := newMemStore(caloriesUser(false))
	_, err := newTestService(store, 2).UpdateMetrics(context.Background(), "u1", domain.MetricsDelta{Calories: 50})

	require.NoError(t, err)
	assert.False(t, store.user.Achievements[0].Unlocked)
	assert.Empty(t, store.created())
	assert.Equal(t, 1, store.commits)
}

func TestUpdateMetrics_AlreadyUnlocked(t *testing.T) {
	store := newMemStore(caloriesUser(true))
	svc := newTestService(store, 2)
	for i := 0; i < 3; i++ {
		_, err := svc.UpdateMetrics(context.Background(), "u1", domain.MetricsDelta{Time: 10, Calories: 500})
		require.NoError(t, err)
	}
	assert.Equal(t, caloriesUser(true).Achievements, store.user.Achievements)
	assert.Empty(t, store.created())
	assert.Equal(t, 3, store.user.Totals.SessionsCompleted)
}

func TestUpdateMetrics_NonNumericKeyDoesNotFail(t *testing.T) {
	u := caloriesUser(false)
	u.Achievements[0].Key = "abc"
	store := newMemStore(u)

	_, err := newTestService(store, 2).UpdateMetrics(context.Background(), "u1", domain.MetricsDelta{Calories: 1e6})

	require.NoError(t, err)
	assert.False(t, store.user.Achievements[0].Unlocked)
	assert.Empty(t, store.created())
}

func TestUpdateMetrics_ConcurrentSameUser(t *testing.T) {
	u := domain.User{
		UserID:       "u1",
		Achievements: []domain.Achievement{{Key: "100", Kind: domain.KindTime, Title: "Hundred"}},
	}
	store := newMemStore(u)
	// both requests read version 0 before either writes
	store.gate = make(chan struct{})
	store.gateN = 2
	svc := newTestService(store, 2)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.UpdateMetrics(context.Background(), "u1", domain.MetricsDelta{Time: 60})
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, 120.0, store.user.Totals.TimeTrained)
	assert.Equal(t, 2, store.user.Totals.SessionsCompleted)
	assert.True(t, store.user.Achievements[0].Unlocked)
	assert.Len(t, store.created(), 1)
}

func TestUpdateMetrics_RejectsNegativeDelta(t *testing.T) {
	us := &mockProfileStore{}
	svc := NewService(ServiceDeps{UserRepo: us, NotificationRepo: &mockNotificationWriter{}})

	_, err := svc.UpdateMetrics(context.Background(), "u1", domain.MetricsDelta{Time: -5})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	us.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestUpdateMetrics_UnknownUser(t *testing.T) {
	store := newMemStore(caloriesUser(false))
	_, err := newTestService(store, 2).UpdateMetrics(context.Background(), "nobody", domain.MetricsDelta{Time: 1})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, 0, store.commits)
}

func TestUpdateMetrics_ProfileWriteFailureThenRetryDoesNotDuplicate(t *testing.T) {
	store := newMemStore(caloriesUser(false))
	storeErr := errors.New("throughput exceeded")
	store.commitErrs = []error{storeErr}
	svc := newTestService(store, 2)

	_, err := svc.UpdateMetrics(context.Background(), "u1", domain.MetricsDelta{Calories: 150})
	require.Error(t, err)
	assert.True(t, errors.Is(err, storeErr))
	assert.False(t, store.user.Achievements[0].Unlocked)
	assert.Len(t, store.created(), 1) // phase 1 already happened

	_, err = svc.UpdateMetrics(context.Background(), "u1", domain.MetricsDelta{Calories: 150})
	require.NoError(t, err)
	assert.True(t, store.user.Achievements[0].Unlocked)
	assert.Len(t, store.created(), 1)
}

func TestUpdateMetrics_RetryPublishesStoredNotification(t *testing.T) {
	store := newMemStore(caloriesUser(false))
	store.commitErrs = []error{errors.New("throughput exceeded")}
	pub := &mockPublisher{}
	svc := NewService(ServiceDeps{UserRepo: store, NotificationRepo: store, Publisher: pub, MaxAttempts: 2})

	_, err := svc.UpdateMetrics(context.Background(), "u1", domain.MetricsDelta{Calories: 150})
	require.Error(t, err)
	pub.AssertNotCalled(t, "PublishUnlocked", mock.Anything, mock.Anything)

	firstWrite := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	stored := store.created()[0]
	stored.CreatedAt = firstWrite
	stored.Read = true
	store.mu.Lock()
	store.notifications[stored.NotificationID] = stored
	store.mu.Unlock()

	pub.On("PublishUnlocked", mock.Anything, mock.Anything).Return(nil)
	_, err = svc.UpdateMetrics(context.Background(), "u1", domain.MetricsDelta{Calories: 150})
	require.NoError(t, err)

	pub.AssertNumberOfCalls(t, "PublishUnlocked", 1)
	published := pub.Calls[0].Arguments.Get(1).(domain.Notification)
	assert.Equal(t, stored.NotificationID, published.NotificationID)
	assert.True(t, published.CreatedAt.Equal(firstWrite))
	assert.True(t, published.Read)
}

func TestUpdateMetrics_ConflictRetriedOnceThenSurfaced(t *testing.T) {
	store := newMemStore(caloriesUser(false))
	store.commitErrs = []error{domain.ErrConflict, domain.ErrConflict}

	_, err := newTestService(store, 2).UpdateMetrics(context.Background(), "u1", domain.MetricsDelta{Time: 1})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, 0, store.commits)
}

func TestUpdateMetrics_ConflictRetrySucceeds(t *testing.T) {
	store := newMemStore(caloriesUser(false))
	store.commitErrs = []error{domain.ErrConflict}

	totals, err := newTestService(store, 2).UpdateMetrics(context.Background(), "u1", domain.MetricsDelta{Time: 1})

	require.NoError(t, err)
	assert.Equal(t, 1, totals.SessionsCompleted)
	assert.Equal(t, 1, store.commits)
}

func TestUpdateMetrics_CancelledContext(t *testing.T) {
	store := newMemStore(caloriesUser(false))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestService(store, 2).UpdateMetrics(ctx, "u1", domain.MetricsDelta{Time: 1})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, store.commits)
}

// --- mocks for failure paths ---

type mockProfileStore struct{ mock.Mock }

func (m *mockProfileStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockProfileStore) CommitProgress(ctx context.Context, userID string, expected int64, totals domain.Totals, achievements []domain.Achievement) error {
	return m.Called(ctx, userID, expected, totals, achievements).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishUnlocked(ctx context.Context, n domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func TestUpdateMetrics_NotificationFailureSkipsProfileWrite(t *testing.T) {
	u := caloriesUser(false)
	us := &mockProfileStore{}
	us.On("Get", mock.Anything, "u1").Return(&u, nil)
	nw := &mockNotificationWriter{}
	nw.On("PutOnce", mock.Anything, mock.Anything).Return(errors.New("dynamo down"))

	svc := NewService(ServiceDeps{UserRepo: us, NotificationRepo: nw, MaxAttempts: 2})
	_, err := svc.UpdateMetrics(context.Background(), "u1", domain.MetricsDelta{Calories: 150})

	require.Error(t, err)
	us.AssertNotCalled(t, "CommitProgress", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateMetrics_PublishesAfterCommitAndIgnoresPublishErrors(t *testing.T) {
	store := newMemStore(caloriesUser(false))
	pub := &mockPublisher{}
	pub.On("PublishUnlocked", mock.Anything, mock.MatchedBy(func(n domain.Notification) bool {
		return n.Title == "Burner"
	})).Return(errors.New("sns throttled"))

	svc := NewService(ServiceDeps{UserRepo: store, NotificationRepo: store, Publisher: pub, MaxAttempts: 2})
	_, err := svc.UpdateMetrics(context.Background(), "u1", domain.MetricsDelta{Calories: 150})

	require.NoError(t, err)
	pub.AssertNumberOfCalls(t, "PublishUnlocked", 1)
}

// --- UpdateAchievements ---

func TestUpdateAchievements_UsesStoredTotals(t *testing.T) {
	u := caloriesUser(false)
	u.Totals = domain.Totals{CaloriesBurned: 120, SessionsCompleted: 4}
	store := newMemStore(u)

	got, err := newTestService(store, 2).UpdateAchievements(context.Background(), "u1")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Unlocked)
	assert.Equal(t, u.Totals, store.user.Totals)
	assert.Len(t, store.created(), 1)

	_, err = newTestService(store, 2).UpdateAchievements(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, store.created(), 1)
}

func TestUpdateAchievements_NoUnlockSkipsWrite(t *testing.T) {
	store := newMemStore(caloriesUser(false))
	got, err := newTestService(store, 2).UpdateAchievements(context.Background(), "u1")

	require.NoError(t, err)
	assert.False(t, got[0].Unlocked)
	assert.Equal(t, 0, store.commits)
}
