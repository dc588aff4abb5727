package models

import "time"

// Resume records an uploaded resume together with the job it was prepared for.
type Resume struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	JobRole        string    `gorm:"size:255;not null" json:"job_role"`
	JobDescription string    `gorm:"type:text;not null" json:"job_description"`
	FileName       string    `gorm:"size:255;not null" json:"file_name"`
	FileURL        string    `gorm:"size:512;not null" json:"file_url"`
	StorageKey     string    `gorm:"size:255" json:"-"`
	MimeType       string    `gorm:"size:128" json:"mime_type"`
	SizeBytes      int64     `json:"size_bytes"`
	Checksum       string    `gorm:"size:128" json:"checksum"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}
