package domain

// EmailOTP stores a pending email verification code.
// PK: email. The raw code is never stored, only its bcrypt hash.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type EmailOTP struct {
	Email     string `json:"email" dynamodbav:"email"`
	CodeHash  string `json:"-" dynamodbav:"code_hash"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}

type SendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}
