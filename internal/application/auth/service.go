package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/campus-market-api/internal/application/otp"
	"github.com/campus-market-api/internal/domain"
	"github.com/campus-market-api/internal/pkg/id"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldPasswordHash = "password_hash"
	fieldRefreshToken = "refresh_token"
)

// TokenPair is one signed access/refresh token issuance.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type Service interface {
	// Register creates an unverified account and dispatches a verification
	// code. It never issues tokens; login requires a verified email.
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.SafeUser, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.SafeUser, TokenPair, error)
	Logout(ctx context.Context, userID string) error
	// Refresh rotates the refresh token: the presented token must exactly
	// match the one on file, and issuance overwrites it.
	Refresh(ctx context.Context, presentedToken string) (TokenPair, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	ClearRefreshToken(ctx context.Context, userID string) error
}

type tokenProvider interface {
	SignAccess(userID string) (string, error)
	SignRefresh(userID string) (string, error)
	VerifyRefresh(tokenStr string) (string, error)
}

type service struct {
	userRepo userStore
	tokens   tokenProvider
	otpSvc   otp.Service
	log      zerolog.Logger
}

type ServiceDeps struct {
	UserRepo userStore
	Tokens   tokenProvider
	OTPSvc   otp.Service
	Logger   zerolog.Logger
}

func NewService(deps ServiceDeps) Service {
	return &service{
		userRepo: deps.UserRepo,
		tokens:   deps.Tokens,
		otpSvc:   deps.OTPSvc,
		log:      deps.Logger,
	}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.SafeUser, error) {
	email := NormalizeEmail(req.Email)
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		College:      strings.TrimSpace(req.College),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Put(ctx, u); err != nil {
		return nil, err
	}
	// A dispatch failure is reported but the account is kept; the client
	// can request a new code via send-otp.
	if err := s.otpSvc.Issue(ctx, email); err != nil {
		return nil, err
	}
	return u.Sanitize(), nil
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.SafeUser, TokenPair, error) {
	// Existence first, then password, then verification state.
	u, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, TokenPair{}, fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
	}
	if !u.EmailVerified {
		return nil, TokenPair{}, fmt.Errorf("email not verified: %w", domain.ErrUnauthorized)
	}
	pair, err := s.issueTokenPair(ctx, u.UserID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u.Sanitize(), pair, nil
}

func (s *service) Logout(ctx context.Context, userID string) error {
	return s.userRepo.ClearRefreshToken(ctx, userID)
}

func (s *service) Refresh(ctx context.Context, presentedToken string) (TokenPair, error) {
	userID, err := s.tokens.VerifyRefresh(presentedToken)
	if err != nil {
		return TokenPair{}, fmt.Errorf("invalid refresh token: %w", domain.ErrUnauthorized)
	}
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("invalid refresh token: %w", domain.ErrUnauthorized)
	}
	// Exact match against the stored token rejects superseded tokens:
	// each issuance overwrites the previous one.
	if u.RefreshToken == "" || u.RefreshToken != presentedToken {
		return TokenPair{}, fmt.Errorf("refresh token superseded: %w", domain.ErrUnauthorized)
	}
	return s.issueTokenPair(ctx, userID)
}

func (s *service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrUnauthorized)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepo.Update(ctx, userID, map[string]interface{}{fieldPasswordHash: string(hash)})
}

// issueTokenPair signs a fresh pair and persists the refresh token onto the
// user record. Every call is a store write, not a pure function.
func (s *service) issueTokenPair(ctx context.Context, userID string) (TokenPair, error) {
	access, err := s.tokens.SignAccess(userID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.tokens.SignRefresh(userID)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.userRepo.Update(ctx, userID, map[string]interface{}{fieldRefreshToken: refresh}); err != nil {
		return TokenPair{}, fmt.Errorf("persist refresh token: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// NormalizeEmail lowercases and trims an address; emails are case-normalized
// everywhere they key a lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
