package services

import (
	"context"
	"database/sql"
	"net/mail"
	"strings"
	"time"

	intconfig "rideshare/internal/config"
	"rideshare/internal/domain"
	"rideshare/internal/domain/models"
	"rideshare/internal/repositories"
	"rideshare/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	DB        *sql.DB
	UserRepo  repositories.UserRepository
	RequestID string
}

type CreateUserInput struct {
	Name         string
	Email        string
	Password     string
	PhoneNumber  *string
	Dob          *string
	Status       *int
	VerifyStatus *int
	ReferrerCode *string
	Type         *int
	CreatedBy    *int64
}

type UpdateUserInput struct {
	Name         *string
	Email        *string
	PhoneNumber  *string
	Dob          *string
	Status       *int
	VerifyStatus *int
	ReferrerCode *string
	Type         *int
}

func (s UserService) users() repositories.UserRepository {
	if s.UserRepo.DB != nil {
		return s.UserRepo
	}
	if s.DB != nil {
		return repositories.UserRepository{DB: s.DB}
	}
	return repositories.UserRepository{DB: intconfig.DB}
}

func validateEmail(raw string) (string, error) {
	email := utils.NormalizeEmail(raw)
	if email == "" {
		return "", domain.ValidationError{Field: "email", Msg: "required"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", domain.ValidationError{Field: "email", Msg: "invalid address", Err: err}
	}
	return email, nil
}

func hashPassword(pw string) (string, error) {
	if strings.TrimSpace(pw) == "" {
		return "", domain.ValidationError{Field: "password", Msg: "required"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", domain.InternalError{Msg: "hash password failed", Err: err}
	}
	return string(hash), nil
}

func parseDob(raw *string) (*time.Time, error) {
	raw = utils.EmptyToNil(raw)
	if raw == nil {
		return nil, nil
	}
	t, err := utils.ParseDate(*raw)
	if err != nil {
		return nil, domain.ValidationError{Field: "dob", Msg: "must be YYYY-MM-DD", Err: err}
	}
	return &t, nil
}

// CreateUser stores a new account with a bcrypt password hash.
func (s UserService) CreateUser(ctx context.Context, in CreateUserInput) (models.User, error) {
	name := utils.NormalizeSpace(in.Name)
	if name == "" {
		return models.User{}, domain.ValidationError{Field: "name", Msg: "required"}
	}
	email, err := validateEmail(in.Email)
	if err != nil {
		return models.User{}, err
	}
	dob, err := parseDob(in.Dob)
	if err != nil {
		return models.User{}, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}

	id, err := s.users().Create(ctx, models.User{
		Name:         name,
		Email:        email,
		Password:     hash,
		PhoneNumber:  utils.EmptyToNil(in.PhoneNumber),
		Dob:          dob,
		Status:       in.Status,
		VerifyStatus: in.VerifyStatus,
		ReferrerCode: utils.EmptyToNil(in.ReferrerCode),
		Type:         in.Type,
		CreatedBy:    in.CreatedBy,
	})
	if err != nil {
		return models.User{}, wrapStoreError(err, "create user failed")
	}
	utils.LogEvent(s.RequestID, "users", "create", "ok", "user_id", id)
	return s.GetUser(ctx, id)
}

func (s UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	out, err := s.users().List(ctx)
	if err != nil {
		return nil, domain.InternalError{Msg: "list users failed", Err: err}
	}
	return out, nil
}

func (s UserService) GetUser(ctx context.Context, id int64) (models.User, error) {
	if id <= 0 {
		return models.User{}, domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	u, err := s.users().GetByID(ctx, id)
	if err != nil {
		return models.User{}, wrapStoreError(err, "get user failed")
	}
	return u, nil
}

func (s UserService) UpdateUser(ctx context.Context, id, actor int64, in UpdateUserInput) (models.User, error) {
	if _, err := s.GetUser(ctx, id); err != nil {
		return models.User{}, err
	}

	upd := models.UserUpdate{
		Status:       in.Status,
		VerifyStatus: in.VerifyStatus,
		Type:         in.Type,
		PhoneNumber:  utils.TrimPtr(in.PhoneNumber),
		ReferrerCode: utils.TrimPtr(in.ReferrerCode),
		ModifiedBy:   &actor,
	}
	if in.Name != nil {
		name := utils.NormalizeSpace(*in.Name)
		if name == "" {
			return models.User{}, domain.ValidationError{Field: "name", Msg: "must not be empty"}
		}
		upd.Name = &name
	}
	if in.Email != nil {
		email, err := validateEmail(*in.Email)
		if err != nil {
			return models.User{}, err
		}
		upd.Email = &email
	}
	dob, err := parseDob(in.Dob)
	if err != nil {
		return models.User{}, err
	}
	upd.Dob = dob

	if err := s.users().Update(ctx, id, upd); err != nil {
		return models.User{}, wrapStoreError(err, "update user failed")
	}
	utils.LogEvent(s.RequestID, "users", "update", "ok", "user_id", id)
	return s.GetUser(ctx, id)
}

func (s UserService) DeleteUser(ctx context.Context, id int64) error {
	ok, err := s.users().Delete(ctx, id)
	if err != nil {
		return domain.InternalError{Msg: "delete user failed", Err: err}
	}
	if !ok {
		return domain.NotFoundError{Resource: "user"}
	}
	utils.LogEvent(s.RequestID, "users", "delete", "ok", "user_id", id)
	return nil
}
