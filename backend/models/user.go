package models

import "gorm.io/gorm"

const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleStudent    = "student"
)

type User struct {
	gorm.Model
	Email        string `gorm:"unique;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	FullName     string `json:"full_name"`
	AvatarURL    string `json:"avatar_url"`
	Role         string `gorm:"default:student" json:"role"` // admin, instructor, student
}

func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleInstructor
}
