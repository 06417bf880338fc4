package entities

import "time"

type Credential struct {
	UID          string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex"`
	PasswordHash string
	CreatedAt    time.Time
}

type PasswordReset struct {
	Token     string `gorm:"primaryKey"`
	UID       string `gorm:"index"`
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Blob struct {
	Ref         string `gorm:"primaryKey"`
	Path        string `gorm:"uniqueIndex"`
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

type ArbitraryData struct {
	ID    string `gorm:"primaryKey"`
	Value []byte
}
