package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/campus-market-api/internal/domain"
	"github.com/rs/zerolog"
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
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}
func (m *mockUserStore) ClearRefreshToken(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockOTPSvc struct{ mock.Mock }

func (m *mockOTPSvc) Issue(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *mockOTPSvc) Verify(ctx context.Context, email, code string) error {
	return m.Called(ctx, email, code).Error(0)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) SignAccess(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}
func (m *mockTokens) SignRefresh(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}
func (m *mockTokens) VerifyRefresh(tokenStr string) (string, error) {
	args := m.Called(tokenStr)
	return args.String(0), args.Error(1)
}

// --- builder ---

func newService(us *mockUserStore, tk *mockTokens, ot *mockOTPSvc) Service {
	return NewService(ServiceDeps{
		UserRepo: us,
		Tokens:   tk,
		OTPSvc:   ot,
		Logger:   zerolog.Nop(),
	})
}

func hashPassword(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

// --- Register ---

func TestRegister_DuplicateEmail_Conflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@x.edu").Return(&domain.User{UserID: "u1"}, nil)

	svc := newService(us, nil, nil)
	_, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name: "Alice", Email: "alice@x.edu", Password: "secret1", College: "State",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	// No Put expectation registered; a second registration must not write.
	us.AssertExpectations(t)
}

func TestRegister_NormalizesEmail(t *testing.T) {
	us := &mockUserStore{}
	ot := &mockOTPSvc{}
	us.On("GetByEmail", mock.Anything, "alice@x.edu").Return(nil, domain.ErrNotFound)

	var created *domain.User
	us.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).Run(func(args mock.Arguments) {
		created = args.Get(1).(*domain.User)
	}).Return(nil)
	ot.On("Issue", mock.Anything, "alice@x.edu").Return(nil)

	svc := newService(us, nil, ot)
	safe, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name: "Alice", Email: "  Alice@X.edu ", Password: "secret1", College: "State",
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "alice@x.edu", created.Email)
	assert.False(t, created.EmailVerified)
	assert.NotEqual(t, "secret1", created.PasswordHash)
	assert.Equal(t, "alice@x.edu", safe.Email)
	ot.AssertExpectations(t)
}

func TestRegister_DispatchFailure_Reported(t *testing.T) {
	us := &mockUserStore{}
	ot := &mockOTPSvc{}
	us.On("GetByEmail", mock.Anything, "alice@x.edu").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.Anything).Return(nil)
	ot.On("Issue", mock.Anything, "alice@x.edu").Return(domain.ErrDispatch)

	svc := newService(us, nil, ot)
	_, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name: "Alice", Email: "alice@x.edu", Password: "secret1", College: "State",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDispatch))
	// The user record was written before dispatch and is not rolled back.
	us.AssertExpectations(t)
}

// --- Login ---

func TestLogin_UnknownUser(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "ghost@x.edu").Return(nil, domain.ErrNotFound)

	svc := newService(us, nil, nil)
	_, _, err := svc.Login(context.Background(), domain.LoginRequest{Email: "ghost@x.edu", Password: "pw"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_WrongPassword(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@x.edu").Return(&domain.User{
		UserID: "u1", PasswordHash: hashPassword(t, "right"), EmailVerified: true,
	}, nil)

	svc := newService(us, nil, nil)
	_, _, err := svc.Login(context.Background(), domain.LoginRequest{Email: "alice@x.edu", Password: "wrong"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_UnverifiedEmail_RejectedEvenWithCorrectPassword(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@x.edu").Return(&domain.User{
		UserID: "u1", PasswordHash: hashPassword(t, "secret1"), EmailVerified: false,
	}, nil)

	svc := newService(us, nil, nil)
	_, _, err := svc.Login(context.Background(), domain.LoginRequest{Email: "alice@x.edu", Password: "secret1"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_HappyPath_IssuesPairAndPersistsRefreshToken(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	us.On("GetByEmail", mock.Anything, "alice@x.edu").Return(&domain.User{
		UserID: "u1", Email: "alice@x.edu", PasswordHash: hashPassword(t, "secret1"), EmailVerified: true,
	}, nil)
	tk.On("SignAccess", "u1").Return("access-1", nil)
	tk.On("SignRefresh", "u1").Return("refresh-1", nil)
	us.On("Update", mock.Anything, "u1", map[string]interface{}{fieldRefreshToken: "refresh-1"}).Return(nil)

	svc := newService(us, tk, nil)
	safe, pair, err := svc.Login(context.Background(), domain.LoginRequest{Email: "alice@x.edu", Password: "secret1"})

	require.NoError(t, err)
	assert.Equal(t, "access-1", pair.AccessToken)
	assert.Equal(t, "refresh-1", pair.RefreshToken)
	assert.Equal(t, "alice@x.edu", safe.Email)
	us.AssertExpectations(t)
	tk.AssertExpectations(t)
}

// --- Refresh ---

func TestRefresh_BadSignature(t *testing.T) {
	tk := &mockTokens{}
	tk.On("VerifyRefresh", "bogus").Return("", domain.ErrUnauthorized)

	svc := newService(nil, tk, nil)
	_, err := svc.Refresh(context.Background(), "bogus")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestRefresh_SupersededToken_Rejected(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	tk.On("VerifyRefresh", "refresh-old").Return("u1", nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID: "u1", RefreshToken: "refresh-new", // a later login rotated it
	}, nil)

	svc := newService(us, tk, nil)
	_, err := svc.Refresh(context.Background(), "refresh-old")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestRefresh_HappyPath_RotatesToken(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	tk.On("VerifyRefresh", "refresh-1").Return("u1", nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", RefreshToken: "refresh-1"}, nil)
	tk.On("SignAccess", "u1").Return("access-2", nil)
	tk.On("SignRefresh", "u1").Return("refresh-2", nil)
	us.On("Update", mock.Anything, "u1", map[string]interface{}{fieldRefreshToken: "refresh-2"}).Return(nil)

	svc := newService(us, tk, nil)
	pair, err := svc.Refresh(context.Background(), "refresh-1")

	require.NoError(t, err)
	assert.Equal(t, "access-2", pair.AccessToken)
	assert.Equal(t, "refresh-2", pair.RefreshToken)
	us.AssertExpectations(t)
}

func TestRefresh_LoggedOutUser_Rejected(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	tk.On("VerifyRefresh", "refresh-1").Return("u1", nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", RefreshToken: ""}, nil)

	svc := newService(us, tk, nil)
	_, err := svc.Refresh(context.Background(), "refresh-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

// --- Logout ---

func TestLogout_ClearsStoredRefreshToken(t *testing.T) {
	us := &mockUserStore{}
	us.On("ClearRefreshToken", mock.Anything, "u1").Return(nil)

	svc := newService(us, nil, nil)
	require.NoError(t, svc.Logout(context.Background(), "u1"))
	us.AssertExpectations(t)
}

// --- ChangePassword ---

func TestChangePassword_WrongCurrent(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID: "u1", PasswordHash: hashPassword(t, "right"),
	}, nil)

	svc := newService(us, nil, nil)
	err := svc.ChangePassword(context.Background(), "u1", "wrong", "newpass1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestChangePassword_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID: "u1", PasswordHash: hashPassword(t, "oldpass1"),
	}, nil)
	us.On("Update", mock.Anything, "u1", mock.MatchedBy(func(m map[string]interface{}) bool {
		h, ok := m[fieldPasswordHash].(string)
		if !ok {
			return false
		}
		return bcrypt.CompareHashAndPassword([]byte(h), []byte("newpass1")) == nil
	})).Return(nil)

	svc := newService(us, nil, nil)
	require.NoError(t, svc.ChangePassword(context.Background(), "u1", "oldpass1", "newpass1"))
	us.AssertExpectations(t)
}

// --- full flow ---

func TestRegisterThenLogin_RequiresVerification(t *testing.T) {
	// Scenario: register → login blocked → verify → login issues tokens.
	us := &mockUserStore{}
	tk := &mockTokens{}
	ot := &mockOTPSvc{}

	var created *domain.User
	us.On("GetByEmail", mock.Anything, "alice@x.edu").Return(nil, domain.ErrNotFound).Once()
	us.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).Run(func(args mock.Arguments) {
		created = args.Get(1).(*domain.User)
	}).Return(nil)
	ot.On("Issue", mock.Anything, "alice@x.edu").Return(nil)

	svc := newService(us, tk, ot)
	_, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name: "Alice", Email: "alice@x.edu", Password: "secret1", College: "State",
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	// Unverified login fails.
	us.On("GetByEmail", mock.Anything, "alice@x.edu").Return(created, nil)
	_, _, err = svc.Login(context.Background(), domain.LoginRequest{Email: "alice@x.edu", Password: "secret1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	// After verification the same credentials log in.
	created.EmailVerified = true
	tk.On("SignAccess", created.UserID).Return("access-1", nil)
	tk.On("SignRefresh", created.UserID).Return("refresh-1", nil)
	us.On("Update", mock.Anything, created.UserID, mock.Anything).Return(nil)

	_, pair, err := svc.Login(context.Background(), domain.LoginRequest{Email: "alice@x.edu", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}
