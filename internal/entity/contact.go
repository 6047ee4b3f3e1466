package entity

import "time"

type Contact struct {
	OwnerId      string `gorm:"primaryKey;size:64"`
	Email        string
	SmtpHost     string
	SmtpPort     int
	SmtpUsername string
	SmtpPassword string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
