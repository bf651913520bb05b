package domain

import (
	"errors"
	"time"
)

// User is the subset of the account model this service reads: role tier,
// optional service-center binding for technicians, and staff metadata.
type User struct {
	ID             int64      `json:"id" gorm:"primaryKey"`
	Name           string     `json:"name" gorm:"type:text;not null"`
	Surname        string     `json:"surname" gorm:"type:text;not null"`
	Username       string     `json:"username" gorm:"type:text;not null;uniqueIndex"`
	AccessLevel    int        `json:"access_level" gorm:"not null;default:1"`
	CenterID       *int64     `json:"center_id,omitempty" gorm:"column:center_id"`
	Specialization *string    `json:"specialization,omitempty" gorm:"type:text"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"not null"`
}

func (User) TableName() string { return "users" }

func (u *User) FullName() string {
	return u.Name + " " + u.Surname
}

var (
	ErrNotFound = errors.New("user_not_found")
)
