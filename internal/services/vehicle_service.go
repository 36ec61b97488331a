package services

import (
	"context"
	"database/sql"
	"net/url"
	"strings"

	intconfig "rideshare/internal/config"
	"rideshare/internal/domain"
	"rideshare/internal/domain/models"
	"rideshare/internal/repositories"
	"rideshare/internal/utils"
)

type VehicleService struct {
	DB          *sql.DB
	VehicleRepo repositories.VehicleRepository
	RequestID   string
}

type CreateVehicleInput struct {
	UserID      int64
	Model       *string
	PlateNumber string
	Color       *string
	Capacity    *int
	ImageLink   *string
	CreatedBy   *int64
}

func (s VehicleService) vehicles() repositories.VehicleRepository {
	if s.VehicleRepo.DB != nil {
		return s.VehicleRepo
	}
	if s.DB != nil {
		return repositories.VehicleRepository{DB: s.DB}
	}
	return repositories.VehicleRepository{DB: intconfig.DB}
}

func normalizePlate(raw string) string {
	return strings.ToUpper(utils.NormalizeSpace(raw))
}

func validImageURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", domain.ValidationError{Field: "url", Msg: "must be an http(s) URL", Err: err}
	}
	return raw, nil
}

func (s VehicleService) CreateVehicle(ctx context.Context, in CreateVehicleInput) (models.Vehicle, error) {
	if in.UserID <= 0 {
		return models.Vehicle{}, domain.ValidationError{Field: "user_id", Msg: "required"}
	}
	plate := normalizePlate(in.PlateNumber)
	if plate == "" {
		return models.Vehicle{}, domain.ValidationError{Field: "plate_number", Msg: "required"}
	}
	v := models.Vehicle{
		UserID:      in.UserID,
		Model:       utils.EmptyToNil(in.Model),
		PlateNumber: plate,
		Color:       utils.EmptyToNil(in.Color),
		CreatedBy:   in.UserID,
		ModifiedBy:  in.UserID,
	}
	if in.CreatedBy != nil {
		v.CreatedBy = *in.CreatedBy
	}
	if in.Capacity != nil {
		if *in.Capacity < 0 {
			return models.Vehicle{}, domain.ValidationError{Field: "capacity", Msg: "must not be negative"}
		}
		v.Capacity = *in.Capacity
	}
	if link := utils.EmptyToNil(in.ImageLink); link != nil {
		u, err := validImageURL(*link)
		if err != nil {
			return models.Vehicle{}, err
		}
		v.Images = []string{u}
	}

	id, err := s.vehicles().Create(ctx, v)
	if err != nil {
		return models.Vehicle{}, wrapStoreError(err, "create vehicle failed")
	}
	utils.LogEvent(s.RequestID, "vehicles", "create", "ok", "vehicle_id", id, "user_id", in.UserID)
	return s.GetVehicle(ctx, id)
}

// ListVehicles returns every vehicle, or only those owned by userID.
func (s VehicleService) ListVehicles(ctx context.Context, userID *int64) ([]models.Vehicle, error) {
	if userID != nil && *userID <= 0 {
		userID = nil
	}
	out, err := s.vehicles().List(ctx, userID)
	if err != nil {
		return nil, domain.InternalError{Msg: "list vehicles failed", Err: err}
	}
	return out, nil
}

func (s VehicleService) GetVehicle(ctx context.Context, id int64) (models.Vehicle, error) {
	if id <= 0 {
		return models.Vehicle{}, domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	v, err := s.vehicles().GetByID(ctx, id)
	if err != nil {
		return models.Vehicle{}, wrapStoreError(err, "get vehicle failed")
	}
	return v, nil
}

func (s VehicleService) UpdateVehicle(ctx context.Context, id int64, upd models.VehicleUpdate) (models.Vehicle, error) {
	if _, err := s.GetVehicle(ctx, id); err != nil {
		return models.Vehicle{}, err
	}
	if upd.PlateNumber != nil {
		p := normalizePlate(*upd.PlateNumber)
		if p == "" {
			return models.Vehicle{}, domain.ValidationError{Field: "plate_number", Msg: "must not be empty"}
		}
		upd.PlateNumber = &p
	}
	if upd.Capacity != nil && *upd.Capacity < 0 {
		return models.Vehicle{}, domain.ValidationError{Field: "capacity", Msg: "must not be negative"}
	}
	if upd.UserID != nil && *upd.UserID <= 0 {
		return models.Vehicle{}, domain.ValidationError{Field: "user_id", Msg: "invalid id"}
	}
	upd.Model = utils.TrimPtr(upd.Model)
	upd.Color = utils.TrimPtr(upd.Color)

	if err := s.vehicles().Update(ctx, id, upd); err != nil {
		return models.Vehicle{}, wrapStoreError(err, "update vehicle failed")
	}
	utils.LogEvent(s.RequestID, "vehicles", "update", "ok", "vehicle_id", id)
	return s.GetVehicle(ctx, id)
}

func (s VehicleService) DeleteVehicle(ctx context.Context, id int64) error {
	if _, err := s.GetVehicle(ctx, id); err != nil {
		return err
	}
	if _, err := s.vehicles().Delete(ctx, id); err != nil {
		return domain.InternalError{Msg: "delete vehicle failed", Err: err}
	}
	utils.LogEvent(s.RequestID, "vehicles", "delete", "ok", "vehicle_id", id)
	return nil
}

// AddPhoto appends an already uploaded image URL to the vehicle's gallery.
func (s VehicleService) AddPhoto(ctx context.Context, id int64, imageURL string) (models.Vehicle, error) {
	link, err := validImageURL(imageURL)
	if err != nil {
		return models.Vehicle{}, err
	}
	v, err := s.GetVehicle(ctx, id)
	if err != nil {
		return models.Vehicle{}, err
	}
	images := append(append([]string{}, v.Images...), link)
	if err := s.vehicles().SetImages(ctx, id, images); err != nil {
		return models.Vehicle{}, domain.InternalError{Msg: "add photo failed", Err: err}
	}
	utils.LogEvent(s.RequestID, "vehicles", "add_photo", "ok", "vehicle_id", id, "count", len(images))
	v.Images = images
	return v, nil
}
