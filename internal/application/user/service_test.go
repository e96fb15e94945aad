package user

import (
	"context"
	"errors"
	"testing"

	"github.com/ledfit-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}
func (m *mockUserStore) AddFav(ctx context.Context, userID, workoutID string) error {
	return m.Called(ctx, userID, workoutID).Error(0)
}
func (m *mockUserStore) RemoveFav(ctx context.Context, userID string, index int, workoutID string) error {
	return m.Called(ctx, userID, index, workoutID).Error(0)
}

type mockWorkoutStore struct{ mock.Mock }

func (m *mockWorkoutStore) Get(ctx context.Context, workoutID string) (*domain.Workout, error) {
	args := m.Called(ctx, workoutID)
	if w, _ := args.Get(0).(*domain.Workout); w != nil {
		return w, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func newService(us *mockUserStore, ws *mockWorkoutStore) Service {
	return NewService(ServiceDeps{UserRepo: us, WorkoutRepo: ws})
}

func baseReq() domain.CreateUserRequest {
	return domain.CreateUserRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "password123",
	}
}

func ptr[T any](v T) *T { return &v }

// --- Register tests ---

func TestRegister_EmailConflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.User{UserID: "other"}, nil)

	_, err := newService(us, nil).Register(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	us.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRegister_LookupError(t *testing.T) {
	us := &mockUserStore{}
	storeErr := errors.New("dynamo error")
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, storeErr)

	_, err := newService(us, nil).Register(context.Background(), baseReq())
	assert.Equal(t, storeErr, err)
}

func TestRegister_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	u, err := newService(us, nil).Register(context.Background(), baseReq())

	require.NoError(t, err)
	assert.NotEmpty(t, u.UserID)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, domain.Totals{}, u.Totals)
	assert.Equal(t, int64(0), u.Version)
	assert.Equal(t, domain.DefaultAchievements(), u.Achievements)
	assert.Empty(t, u.Favs)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")))
	us.AssertExpectations(t)
}

func TestNewAccount_SeedsLockedAchievements(t *testing.T) {
	u, err := NewAccount("Bob", "bob@example.com", "hash")
	require.NoError(t, err)
	for _, a := range u.Achievements {
		assert.False(t, a.Unlocked)
	}
}

// --- Update tests ---

func TestUpdate_EmptyRequest_ReturnsExistingUser(t *testing.T) {
	us := &mockUserStore{}
	existing := &domain.User{UserID: "u1", Name: "Alice"}
	us.On("Get", mock.Anything, "u1").Return(existing, nil)

	u, err := newService(us, nil).Update(context.Background(), "u1", domain.UpdateProfileRequest{})

	require.NoError(t, err)
	assert.Equal(t, existing, u)
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_EmptyName(t *testing.T) {
	_, err := newService(&mockUserStore{}, nil).Update(context.Background(), "u1", domain.UpdateProfileRequest{Name: ptr("")})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestUpdate_EmailTakenByAnotherUser(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "bob@example.com").Return(&domain.User{UserID: "u2"}, nil)

	_, err := newService(us, nil).Update(context.Background(), "u1", domain.UpdateProfileRequest{Email: ptr("bob@example.com")})

	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestUpdate_SameEmailIsAllowed(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.User{UserID: "u1"}, nil)
	us.On("Update", mock.Anything, "u1", map[string]interface{}{"email": "alice@example.com", "name": "Al"}).Return(nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Name: "Al"}, nil)

	u, err := newService(us, nil).Update(context.Background(), "u1", domain.UpdateProfileRequest{
		Name:  ptr("Al"),
		Email: ptr("alice@example.com"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Al", u.Name)
	us.AssertExpectations(t)
}

// --- ChangePassword tests ---

func TestChangePassword_WrongCurrent(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.MinCost)
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", PasswordHash: string(hash)}, nil)

	err := newService(us, nil).ChangePassword(context.Background(), "u1", "wrong-password", "new-password")

	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangePassword_HappyPath(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.MinCost)
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", PasswordHash: string(hash)}, nil)
	us.On("Update", mock.Anything, "u1", mock.MatchedBy(func(u map[string]interface{}) bool {
		h, _ := u["password_hash"].(string)
		return bcrypt.CompareHashAndPassword([]byte(h), []byte("new-password")) == nil
	})).Return(nil)

	err := newService(us, nil).ChangePassword(context.Background(), "u1", "right-password", "new-password")

	require.NoError(t, err)
	us.AssertExpectations(t)
}

// --- Favs tests ---

func TestAddFav_UnknownWorkout(t *testing.T) {
	ws := &mockWorkoutStore{}
	ws.On("Get", mock.Anything, "w9").Return(nil, domain.ErrNotFound)
	us := &mockUserStore{}

	err := newService(us, ws).AddFav(context.Background(), "u1", "w9")

	assert.True(t, errors.Is(err, domain.ErrNotFound))
	us.AssertNotCalled(t, "AddFav", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddFav_AlreadyPresent(t *testing.T) {
	ws := &mockWorkoutStore{}
	ws.On("Get", mock.Anything, "w1").Return(&domain.Workout{WorkoutID: "w1"}, nil)
	us := &mockUserStore{}
	us.On("AddFav", mock.Anything, "u1", "w1").Return(domain.ErrConflict)

	err := newService(us, ws).AddFav(context.Background(), "u1", "w1")
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestRemoveFav_UsesCurrentIndex(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Favs: []string{"w1", "w2", "w3"}}, nil)
	us.On("RemoveFav", mock.Anything, "u1", 1, "w2").Return(nil)

	require.NoError(t, newService(us, nil).RemoveFav(context.Background(), "u1", "w2"))
	us.AssertExpectations(t)
}

func TestRemoveFav_NotAFavourite(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Favs: []string{"w1"}}, nil)

	err := newService(us, nil).RemoveFav(context.Background(), "u1", "w2")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestListFavs_SkipsRemovedWorkouts(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Favs: []string{"w1", "gone"}}, nil)
	ws := &mockWorkoutStore{}
	ws.On("Get", mock.Anything, "w1").Return(&domain.Workout{WorkoutID: "w1", Name: "Legs"}, nil)
	ws.On("Get", mock.Anything, "gone").Return(nil, domain.ErrNotFound)

	got, err := newService(us, ws).ListFavs(context.Background(), "u1")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Legs", got[0].Name)
}
