package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"rideshare/internal/domain"
	"rideshare/internal/domain/models"
	"rideshare/internal/messaging"
	"rideshare/internal/repositories"
	"rideshare/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	ResetTypeEmail = "email"
	ResetTypePhone = "phone"

	otpTemplate = "password_reset_otp"
)

type AuthService struct {
	Users     UserService
	ResetRepo repositories.PasswordResetRepository
	Notifier  messaging.Notifier
	JWTSecret []byte
	TokenTTL  time.Duration
	OTPTTL    time.Duration
	// Now is overridable in tests.
	Now       func() time.Time
	RequestID string
}

type LoginResult struct {
	AccessToken string `json:"accessToken"`
}

// TokenClaims is the JWT payload: sub carries the user id.
type TokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type ResetPasswordInput struct {
	ResetType   string
	Email       *string
	PhoneNumber *string
}

type VerifyOTPInput struct {
	ResetType   string
	Email       *string
	PhoneNumber *string
	OTP         string
	NewPassword string
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s AuthService) users() UserService {
	u := s.Users
	if u.RequestID == "" {
		u.RequestID = s.RequestID
	}
	return u
}

func (s AuthService) resets() repositories.PasswordResetRepository {
	if s.ResetRepo.DB != nil {
		return s.ResetRepo
	}
	return repositories.PasswordResetRepository{DB: s.Users.users().DB}
}

func (s AuthService) notifier() messaging.Notifier {
	if s.Notifier != nil {
		return s.Notifier
	}
	return messaging.LogNotifier{}
}

// Register creates an account; the email must not be taken yet.
func (s AuthService) Register(ctx context.Context, in CreateUserInput) (models.User, error) {
	email, err := validateEmail(in.Email)
	if err != nil {
		return models.User{}, err
	}
	_, err = s.users().users().GetByEmail(ctx, email)
	switch {
	case err == nil:
		return models.User{}, domain.ConflictError{Resource: "user", Msg: "email already exists"}
	case !domain.IsNotFound(err):
		return models.User{}, domain.InternalError{Msg: "register failed", Err: err}
	}
	return s.users().CreateUser(ctx, in)
}

// Login checks credentials and issues a signed HS256 token.
func (s AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.users().users().GetByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if domain.IsNotFound(err) {
			return LoginResult{}, domain.UnauthorizedError{Msg: "invalid credentials", Err: domain.ErrInvalidCredential}
		}
		return LoginResult{}, domain.InternalError{Msg: "login failed", Err: err}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return LoginResult{}, domain.UnauthorizedError{Msg: "invalid credentials", Err: domain.ErrInvalidCredential}
	}

	token, err := s.IssueToken(u)
	if err != nil {
		return LoginResult{}, domain.InternalError{Msg: "token signing failed", Err: err}
	}
	utils.LogEvent(s.RequestID, "auth", "login", "ok", "user_id", u.ID)
	return LoginResult{AccessToken: token}, nil
}

func (s AuthService) IssueToken(u models.User) (string, error) {
	if len(s.JWTSecret) == 0 {
		return "", errors.New("jwt secret not configured")
	}
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := s.now()
	claims := TokenClaims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.JWTSecret)
}

// ParseToken validates signature and expiry and returns the caller identity.
func (s AuthService) ParseToken(raw string) (domain.RequestContext, error) {
	var claims TokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.JWTSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return domain.RequestContext{}, domain.UnauthorizedError{Msg: "invalid token", Err: err}
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return domain.RequestContext{}, domain.UnauthorizedError{Msg: "invalid token subject", Err: err}
	}
	return domain.RequestContext{UserID: domain.ID(id), Email: claims.Email}, nil
}

func (s AuthService) Profile(ctx context.Context, userID int64) (models.User, error) {
	return s.users().GetUser(ctx, userID)
}

// lookupResetUser resolves the account addressed by a reset request and the
// recipient the OTP goes to.
func (s AuthService) lookupResetUser(ctx context.Context, resetType string, email, phone *string) (models.User, messaging.Channel, string, error) {
	repo := s.users().users()
	switch strings.TrimSpace(resetType) {
	case ResetTypeEmail:
		e := utils.EmptyToNil(email)
		if e == nil {
			return models.User{}, "", "", domain.ValidationError{Field: "email", Msg: "required for email reset"}
		}
		u, err := repo.GetByEmail(ctx, utils.NormalizeEmail(*e))
		return u, messaging.ChannelEmail, u.Email, err
	case ResetTypePhone:
		p := utils.EmptyToNil(phone)
		if p == nil {
			return models.User{}, "", "", domain.ValidationError{Field: "phone_number", Msg: "required for phone reset"}
		}
		u, err := repo.GetByPhone(ctx, *p)
		return u, messaging.ChannelSMS, *p, err
	default:
		return models.User{}, "", "", domain.ValidationError{Field: "reset_type", Msg: "must be email or phone"}
	}
}

// RequestPasswordReset issues a fresh OTP and queues it for delivery. Unknown
// accounts get the same silent success as known ones.
func (s AuthService) RequestPasswordReset(ctx context.Context, in ResetPasswordInput) error {
	u, channel, recipient, err := s.lookupResetUser(ctx, in.ResetType, in.Email, in.PhoneNumber)
	if err != nil {
		if domain.IsNotFound(err) {
			utils.LogEvent(s.RequestID, "auth", "reset", "unknown account", "reset_type", in.ResetType)
			return nil
		}
		return wrapStoreError(err, "password reset failed")
	}

	prevHash := ""
	if prev, err := s.resets().Latest(ctx, u.ID, in.ResetType); err == nil {
		prevHash = prev.OTPHash
	} else if !domain.IsNotFound(err) {
		return domain.InternalError{Msg: "password reset failed", Err: err}
	}

	otp, err := GenerateOTP(prevHash)
	if err != nil {
		return domain.InternalError{Msg: "otp generation failed", Err: err}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(otp), bcrypt.DefaultCost)
	if err != nil {
		return domain.InternalError{Msg: "otp hashing failed", Err: err}
	}
	ttl := s.OTPTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	expiresAt := s.now().Add(ttl)
	if err := s.resets().Create(ctx, u.ID, in.ResetType, string(hash), expiresAt); err != nil {
		return domain.InternalError{Msg: "password reset failed", Err: err}
	}

	err = s.notifier().Notify(ctx, messaging.Notification{
		Channel:   channel,
		Recipient: recipient,
		Template:  otpTemplate,
		Data: map[string]string{
			"name":       u.Name,
			"otp":        otp,
			"expires_at": utils.FormatDateTime(expiresAt),
		},
		RequestID: s.RequestID,
	})
	if err != nil {
		return domain.InternalError{Msg: "could not queue otp", Err: err}
	}
	utils.LogEvent(s.RequestID, "auth", "reset", "otp issued", "user_id", u.ID, "reset_type", in.ResetType)
	return nil
}

// VerifyOTP consumes the latest OTP for the account and sets the new password.
func (s AuthService) VerifyOTP(ctx context.Context, in VerifyOTPInput) error {
	otp := strings.TrimSpace(in.OTP)
	if len(otp) != 6 {
		return domain.ValidationError{Field: "otp", Msg: "must be 6 digits"}
	}
	newHash, err := hashPassword(in.NewPassword)
	if err != nil {
		return err
	}

	invalid := domain.UnauthorizedError{Msg: "invalid or expired otp"}
	u, _, _, err := s.lookupResetUser(ctx, in.ResetType, in.Email, in.PhoneNumber)
	if err != nil {
		if domain.IsNotFound(err) {
			return invalid
		}
		return wrapStoreError(err, "verify otp failed")
	}
	reset, err := s.resets().Latest(ctx, u.ID, in.ResetType)
	if err != nil {
		if domain.IsNotFound(err) {
			return invalid
		}
		return domain.InternalError{Msg: "verify otp failed", Err: err}
	}
	if reset.UsedAt != nil || !s.now().Before(reset.ExpiresAt) {
		return invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(reset.OTPHash), []byte(otp)); err != nil {
		return invalid
	}

	ok, err := s.resets().MarkUsed(ctx, reset.ID)
	if err != nil {
		return domain.InternalError{Msg: "verify otp failed", Err: err}
	}
	if !ok {
		return invalid
	}
	if err := s.users().users().UpdatePassword(ctx, u.ID, newHash); err != nil {
		return domain.InternalError{Msg: "password update failed", Err: err}
	}
	utils.LogEvent(s.RequestID, "auth", "verify_otp", "password updated", "user_id", u.ID)
	return nil
}

// GenerateOTP returns a random 6-digit code that does not match previousHash.
func GenerateOTP(previousHash string) (string, error) {
	for {
		n, err := rand.Int(rand.Reader, big.NewInt(900000))
		if err != nil {
			return "", err
		}
		otp := fmt.Sprintf("%06d", n.Int64()+100000)
		if previousHash == "" || bcrypt.CompareHashAndPassword([]byte(previousHash), []byte(otp)) != nil {
			return otp, nil
		}
	}
}
