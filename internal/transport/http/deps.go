package http

import (
	"github.com/campus-market-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/campus-market-api/internal/infrastructure/jwt"
	"github.com/campus-market-api/internal/infrastructure/mail"
	s3infra "github.com/campus-market-api/internal/infrastructure/s3"
	"github.com/rs/zerolog"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    *dynamo.UserRepo
	OTPRepo     *dynamo.OTPRepo
	ItemRepo    *dynamo.ItemRepo
	S3Store     *s3infra.Store
	Mailer      mail.Mailer
	JWTProvider *jwtinfra.Provider
	Logger      zerolog.Logger
}
