package store

import "time"

// CountRecord is one counted vehicle
type CountRecord struct {
	ID        string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SessionID string `gorm:"type:varchar(36);not null;index" json:"session_id"`
	Category  string `gorm:"type:varchar(32);not null;index" json:"category"`
	// Time of the detection that completed the crossing
	DetectedAt time.Time `gorm:"not null;index" json:"detected_at"`
	CenterX    float64   `gorm:"not null" json:"center_x"`
	CenterY    float64   `gorm:"not null" json:"center_y"`
	Size       float64   `gorm:"not null" json:"size"`
	// Estimated image-plane velocity, px/s
	VelocityX float64 `gorm:"not null;default:0" json:"velocity_x"`
	VelocityY float64 `gorm:"not null;default:0" json:"velocity_y"`
	// Session running total including this vehicle
	Total uint64 `gorm:"not null" json:"total"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns table name for CountRecord
func (CountRecord) TableName() string {
	return "count_records"
}
