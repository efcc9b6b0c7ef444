package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/campus-market-api/internal/domain"
	"github.com/campus-market-api/internal/infrastructure/mail"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const codeLength = 6

type Service interface {
	// Issue generates a fresh code for email, replacing any prior unconsumed
	// one, and dispatches it. Only the latest issued code verifies.
	Issue(ctx context.Context, email string) error
	// Verify checks a submitted code and, on success, consumes it and marks
	// the user's email verified. A consumed code never verifies again.
	Verify(ctx context.Context, email, code string) error
}

type otpStore interface {
	Put(ctx context.Context, o *domain.EmailOTP) error
	Get(ctx context.Context, email string) (*domain.EmailOTP, error)
	Consume(ctx context.Context, email string) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type service struct {
	otpRepo  otpStore
	userRepo userStore
	mailer   mail.Mailer
	expiry   time.Duration
	log      zerolog.Logger
}

type ServiceDeps struct {
	OTPRepo  otpStore
	UserRepo userStore
	Mailer   mail.Mailer
	Expiry   time.Duration
	Logger   zerolog.Logger
}

func NewService(deps ServiceDeps) Service {
	return &service{
		otpRepo:  deps.OTPRepo,
		userRepo: deps.UserRepo,
		mailer:   deps.Mailer,
		expiry:   deps.Expiry,
		log:      deps.Logger,
	}
}

func (s *service) Issue(ctx context.Context, email string) error {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("no account for %s: %w", email, domain.ErrNotFound)
	}
	if u.EmailVerified {
		return fmt.Errorf("email already verified: %w", domain.ErrBadRequest)
	}

	code, err := generateCode()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	// PutItem on the email key replaces any prior record: last write wins,
	// so a reissued code invalidates the previous one.
	o := &domain.EmailOTP{
		Email:     email,
		CodeHash:  string(hash),
		ExpiresAt: time.Now().Add(s.expiry).Unix(),
	}
	if err := s.otpRepo.Put(ctx, o); err != nil {
		return err
	}

	body := fmt.Sprintf("Your Campus Market verification code is %s. It expires in %d minutes.",
		code, int(s.expiry.Minutes()))
	if err := s.mailer.Send(email, "Verify your email", body); err != nil {
		// The stored hash is deliberately kept: the caller can re-issue and
		// the record expires on its own either way.
		s.log.Warn().Str("email", email).Err(err).Msg("otp email dispatch failed")
		return fmt.Errorf("could not send verification email: %w", domain.ErrDispatch)
	}
	return nil
}

func (s *service) Verify(ctx context.Context, email, code string) error {
	o, err := s.otpRepo.Get(ctx, email)
	if err != nil {
		return fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	if time.Now().Unix() > o.ExpiresAt {
		return fmt.Errorf("otp expired: %w", domain.ErrExpired)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(o.CodeHash), []byte(code)); err != nil {
		return fmt.Errorf("invalid otp: %w", domain.ErrUnauthorized)
	}
	// Conditional delete: of two concurrent verifications only one consumes.
	if err := s.otpRepo.Consume(ctx, email); err != nil {
		return fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("no account for %s: %w", email, domain.ErrNotFound)
	}
	return s.userRepo.Update(ctx, u.UserID, map[string]interface{}{"email_verified": true})
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeLength, n.Int64()), nil
}
