package services

import (
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"strings"
	"time"

	"fleetcar/internal/database"
	"fleetcar/internal/models"
	"fleetcar/internal/storage"

	"gorm.io/gorm"
)

// VehicleQuery is the filter/sort/page request for the vehicle list.
type VehicleQuery struct {
	Search        string `form:"search"`
	Status        string `form:"status"`
	Brand         string `form:"brand"`
	Page          int    `form:"page,default=1" binding:"min=1"`
	PageSize      int    `form:"pageSize,default=10" binding:"min=1,max=100"`
	SortBy        string `form:"sortBy"`
	SortDirection string `form:"sortDirection"`
}

// PaginatedVehicles is one window of the filtered, sorted set plus the
// total match count.
type PaginatedVehicles struct {
	Items      []models.Vehicle `json:"items"`
	TotalCount int64            `json:"totalCount"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
}

// VehicleInput carries the multipart form for creation.
type VehicleInput struct {
	LicensePlate string   `form:"licensePlate" binding:"required,max=50"`
	Brand        string   `form:"brand" binding:"required,max=100"`
	Model        string   `form:"model" binding:"required,max=100"`
	Year         int      `form:"year" binding:"required,min=1900,max=2100"`
	Color        string   `form:"color" binding:"max=30"`
	VinNumber    string   `form:"vinNumber" binding:"max=50"`
	EngineType   string   `form:"engineType" binding:"max=30"`
	FuelType     string   `form:"fuelType" binding:"max=30"`
	Mileage      *float64 `form:"mileage" binding:"omitempty,min=0"`
	Status       string   `form:"status" binding:"omitempty,vehiclestatus"`
	Notes        string   `form:"notes" binding:"max=500"`
}

// VehiclePatch is the partial update payload: only non-nil fields
// overwrite stored values.
type VehiclePatch struct {
	LicensePlate *string  `form:"licensePlate" binding:"omitempty,max=50"`
	Brand        *string  `form:"brand" binding:"omitempty,max=100"`
	Model        *string  `form:"model" binding:"omitempty,max=100"`
	Year         *int     `form:"year" binding:"omitempty,min=1900,max=2100"`
	Color        *string  `form:"color" binding:"omitempty,max=30"`
	VinNumber    *string  `form:"vinNumber" binding:"omitempty,max=50"`
	EngineType   *string  `form:"engineType" binding:"omitempty,max=30"`
	FuelType     *string  `form:"fuelType" binding:"omitempty,max=30"`
	Mileage      *float64 `form:"mileage" binding:"omitempty,min=0"`
	Status       *string  `form:"status" binding:"omitempty,vehiclestatus"`
	Notes        *string  `form:"notes" binding:"omitempty,max=500"`
}

type VehicleService struct {
	images *storage.Store
}

func NewVehicleService(images *storage.Store) *VehicleService {
	return &VehicleService{images: images}
}

// sortColumns whitelists the sortable columns; anything else falls back to
// the primary key so unknown input still yields a stable order.
var sortColumns = map[string]string{
	"licenseplate": "license_plate",
	"brand":        "brand",
	"model":        "model",
	"year":         "year",
	"status":       "status",
	"createdat":    "created_at",
}

// List runs the query pipeline: search, then status and brand filters, then
// sort, then pagination. The total count is taken from the filtered set
// before the page window is applied.
func (s *VehicleService) List(q VehicleQuery) (*PaginatedVehicles, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 10
	}

	query := database.DB.Model(&models.Vehicle{})

	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(license_plate) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(model) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if status := strings.TrimSpace(q.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if brand := strings.TrimSpace(q.Brand); brand != "" {
		query = query.Where("brand = ?", brand)
	}

	column, ok := sortColumns[strings.ToLower(q.SortBy)]
	if !ok {
		column = "id"
	}
	direction := "asc"
	if q.SortDirection == "desc" {
		direction = "desc"
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count vehicles: %w", err)
	}

	var items []models.Vehicle
	if err := query.
		Order(column + " " + direction).
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	if items == nil {
		items = []models.Vehicle{}
	}

	return &PaginatedVehicles{
		Items:      items,
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(q.PageSize))),
	}, nil
}

func (s *VehicleService) Get(id uint) (*models.Vehicle, error) {
	var v models.Vehicle
	if err := database.DB.First(&v, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find vehicle: %w", err)
	}
	return &v, nil
}

// Create persists a new vehicle. A duplicate license plate is a
// ConflictError whether the pre-check or the unique index catches it.
func (s *VehicleService) Create(in VehicleInput, image *multipart.FileHeader, actorID uint, actorName string) (*models.Vehicle, error) {
	if taken, err := s.plateTaken(in.LicensePlate, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, &ConflictError{Message: fmt.Sprintf("license plate %q already exists", in.LicensePlate)}
	}

	v := models.Vehicle{
		LicensePlate: in.LicensePlate,
		Brand:        in.Brand,
		Model:        in.Model,
		Year:         in.Year,
		Color:        in.Color,
		VinNumber:    in.VinNumber,
		EngineType:   in.EngineType,
		FuelType:     in.FuelType,
		Status:       models.StatusAvailable,
		Notes:        in.Notes,
	}
	if in.Mileage != nil {
		v.Mileage = *in.Mileage
	}
	if in.Status != "" {
		v.Status = models.VehicleStatus(in.Status)
	}

	if image != nil {
		path, err := s.saveImage(image)
		if err != nil {
			return nil, err
		}
		v.ImagePath = path
	}

	if err := database.DB.Create(&v).Error; err != nil {
		s.images.Delete(v.ImagePath)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Message: fmt.Sprintf("license plate %q already exists", in.LicensePlate)}
		}
		return nil, fmt.Errorf("create vehicle: %w", err)
	}

	database.CreateAuditLog(actorID, actorName, "vehicle", v.ID, "create", "created vehicle "+v.LicensePlate)
	return &v, nil
}

// Update applies the patch field by field. The plate uniqueness check only
// runs when the incoming plate differs from the stored one, so a no-op
// update can never produce a false conflict. A new image replaces the old
// file on disk.
func (s *VehicleService) Update(id uint, patch VehiclePatch, image *multipart.FileHeader, actorID uint, actorName string) (*models.Vehicle, error) {
	v, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if patch.LicensePlate != nil && *patch.LicensePlate != v.LicensePlate {
		if taken, err := s.plateTaken(*patch.LicensePlate, v.ID); err != nil {
			return nil, err
		} else if taken {
			return nil, &ConflictError{Message: fmt.Sprintf("license plate %q already exists", *patch.LicensePlate)}
		}
		v.LicensePlate = *patch.LicensePlate
	}
	if patch.Brand != nil {
		v.Brand = *patch.Brand
	}
	if patch.Model != nil {
		v.Model = *patch.Model
	}
	if patch.Year != nil {
		v.Year = *patch.Year
	}
	if patch.Color != nil {
		v.Color = *patch.Color
	}
	if patch.VinNumber != nil {
		v.VinNumber = *patch.VinNumber
	}
	if patch.EngineType != nil {
		v.EngineType = *patch.EngineType
	}
	if patch.FuelType != nil {
		v.FuelType = *patch.FuelType
	}
	if patch.Mileage != nil {
		v.Mileage = *patch.Mileage
	}
	if patch.Status != nil {
		v.Status = models.VehicleStatus(*patch.Status)
	}
	if patch.Notes != nil {
		v.Notes = *patch.Notes
	}

	if image != nil {
		s.images.Delete(v.ImagePath)
		path, err := s.saveImage(image)
		if err != nil {
			return nil, err
		}
		v.ImagePath = path
	}

	now := time.Now().UTC()
	v.UpdatedAt = &now

	if err := database.DB.Save(v).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Message: fmt.Sprintf("license plate %q already exists", v.LicensePlate)}
		}
		return nil, fmt.Errorf("save vehicle: %w", err)
	}

	database.CreateAuditLog(actorID, actorName, "vehicle", v.ID, "update", "updated vehicle "+v.LicensePlate)
	return v, nil
}

// Delete removes the record and its image file. A missing id is
// ErrNotFound, so a second delete reports the same thing.
func (s *VehicleService) Delete(id uint, actorID uint, actorName string) error {
	v, err := s.Get(id)
	if err != nil {
		return err
	}

	if err := database.DB.Delete(&models.Vehicle{}, id).Error; err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}

	s.images.Delete(v.ImagePath)

	database.CreateAuditLog(actorID, actorName, "vehicle", id, "delete", "deleted vehicle "+v.LicensePlate)
	return nil
}

func (s *VehicleService) plateTaken(plate string, excludeID uint) (bool, error) {
	query := database.DB.Model(&models.Vehicle{}).Where("license_plate = ?", plate)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check license plate: %w", err)
	}
	return count > 0, nil
}

func (s *VehicleService) saveImage(image *multipart.FileHeader) (string, error) {
	path, err := s.images.Save(image)
	if err != nil {
		var invalid *storage.InvalidImageError
		if errors.As(err, &invalid) {
			return "", &ValidationError{Message: invalid.Error()}
		}
		return "", fmt.Errorf("save image: %w", err)
	}
	return path, nil
}
