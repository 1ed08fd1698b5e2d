package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList JSONB-backed string slice.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan StringList: %v", value)
	}
	return json.Unmarshal(bytes, l)
}

// Store partner store a claim may be linked to.
type Store struct {
	ID        string `json:"id" gorm:"primaryKey;size:32"`
	TradeName string `json:"trade_name" gorm:"size:128;not null;index"`
	LegalName string `json:"legal_name" gorm:"size:200;not null"`
	CNPJ      string `json:"cnpj" gorm:"size:18;uniqueIndex"`
	City      string `json:"city" gorm:"size:64"`
	State     string `json:"state" gorm:"size:2"`

	ContactName  string `json:"contact_name" gorm:"size:128"`
	ContactEmail string `json:"contact_email" gorm:"size:128"`

	// Aliases are alternative trade names matched during public intake.
	Aliases StringList `json:"aliases" gorm:"type:jsonb"`

	Active      bool `json:"active" gorm:"not null;default:true"`
	ClaimsCount int  `json:"claims_count" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Store) TableName() string {
	return "stores"
}
