package models

import "time"

type VehicleStatus string

const (
	StatusAvailable   VehicleStatus = "Available"
	StatusInUse       VehicleStatus = "InUse"
	StatusMaintenance VehicleStatus = "Maintenance"
	StatusRetired     VehicleStatus = "Retired"
)

// Valid reports whether s is one of the closed set of vehicle statuses.
func (s VehicleStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusInUse, StatusMaintenance, StatusRetired:
		return true
	}
	return false
}

type Vehicle struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	LicensePlate string        `gorm:"uniqueIndex;size:50;not null" json:"licensePlate"`
	Brand        string        `gorm:"size:100;not null" json:"brand"`
	Model        string        `gorm:"size:100;not null" json:"model"`
	Year         int           `gorm:"not null" json:"year"`
	Color        string        `gorm:"size:30" json:"color,omitempty"`
	VinNumber    string        `gorm:"size:50" json:"vinNumber,omitempty"`
	EngineType   string        `gorm:"size:30" json:"engineType,omitempty"`
	FuelType     string        `gorm:"size:30" json:"fuelType,omitempty"`
	Mileage      float64       `json:"mileage"`
	Status       VehicleStatus `gorm:"type:varchar(20);not null;default:'Available'" json:"status"`
	ImagePath    string        `gorm:"size:500" json:"imageUrl,omitempty"`
	Notes        string        `gorm:"size:500" json:"notes,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	// UpdatedAt stays nil until the first update; gorm must not manage it.
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updatedAt,omitempty"`
}
