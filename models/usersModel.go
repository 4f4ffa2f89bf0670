package models

import (
	"time"

	"gorm.io/gorm"
)

// Role names seeded at startup.
const (
	RoleAdmin         = "Admin"
	RoleDoctor        = "Doctor"
	RoleRecepcionista = "Recepcionista"
)

// Role represents a user role
type Role struct {
	ID          int64     `gorm:"primaryKey;column:id" json:"id"`
	Name        string    `gorm:"size:50;not null;unique;index;column:name" json:"name"`
	Description string    `gorm:"type:text;column:description" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

func (Role) TableName() string {
	return "roles"
}

// SeedRoles inserts initial roles into the database
func SeedRoles(db *gorm.DB) error {
	initialRoles := []Role{
		{Name: RoleAdmin, Description: "Full access to the dashboard"},
		{Name: RoleDoctor, Description: "Clinical staff"},
		{Name: RoleRecepcionista, Description: "Handles calls and appointments"},
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, role := range initialRoles {
			if err := tx.FirstOrCreate(&role, Role{Name: role.Name}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// User represents an account that can sign in to the dashboard.
type User struct {
	ID        string    `gorm:"primaryKey;type:uuid;column:id" json:"id"`
	Email     string    `gorm:"size:255;not null;unique;index;column:email" json:"email"`
	Password  string    `gorm:"size:255;column:password" json:"-"`
	Provider  string    `gorm:"size:30;not null;default:email;column:provider" json:"provider"`
	RoleID    int64     `gorm:"index;column:role_id" json:"role_id"`
	Role      Role      `gorm:"foreignKey:RoleID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// Profile is the staff profile row created right after registration.
type Profile struct {
	ID        string    `gorm:"primaryKey;type:uuid;column:id" json:"id"`
	Nombre    string    `gorm:"column:nombre;not null" json:"nombre"`
	Apellidos string    `gorm:"column:apellidos;not null" json:"apellidos"`
	Email     string    `gorm:"column:email;not null" json:"email"`
	Telefono  string    `gorm:"column:telefono" json:"telefono"`
	Rol       string    `gorm:"column:rol" json:"rol"`
	Activo    bool      `gorm:"column:activo;not null;default:true" json:"activo"`
	CreatedAt time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

func (Profile) TableName() string {
	return "perfiles"
}

// Principal is the only part of a session the rest of the service sees.
type Principal struct {
	UserID    string `json:"id"`
	Email     string `json:"email"`
	SessionID string `json:"-"`
}
