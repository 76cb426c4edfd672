package models

import "time"

type User struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Username      string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	FullName      string     `gorm:"size:100" json:"fullName"`
	PinHash       string     `gorm:"size:255;not null" json:"-"`
	IsAdmin       bool       `gorm:"not null;default:false" json:"isAdmin"`
	IsActive      bool       `gorm:"not null;default:true" json:"isActive"`
	LoginAttempts int        `gorm:"not null;default:0" json:"loginAttempts"`
	LockUntil     *time.Time `json:"lockUntil"`
	LastLoginAt   *time.Time `json:"lastLoginAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (User) TableName() string { return "Users" }

func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}
