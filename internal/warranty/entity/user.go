package entity

import (
	"time"
)

// Role caller role. The string tokens match the identity provider's role
// codes and are carried verbatim in JWT claims.
type Role string

const (
	RoleAdmin   Role = "admin_relm"
	RoleManager Role = "gerente_relm"
	RoleStore   Role = "loja"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStore:
		return true
	}
	return false
}

// User staff account.
//
// A RoleStore user is bound to exactly one store via StoreID; admin and
// manager accounts are organization-wide and leave it nil.
type User struct {
	ID      string  `json:"id" gorm:"primaryKey;size:32"`
	Name    string  `json:"name" gorm:"size:128;not null"`
	Email   string  `json:"email" gorm:"size:128;not null;uniqueIndex"`
	Role    Role    `json:"role" gorm:"size:32;not null"`
	StoreID *string `json:"store_id" gorm:"size:32;index"`
	Active  bool    `json:"active" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// associations
	Store *Store `json:"store,omitempty" gorm:"foreignKey:StoreID"`
}

func (User) TableName() string {
	return "users"
}
