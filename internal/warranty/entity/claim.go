package entity

import (
	"time"
)

// ClaimStatus workflow status of a claim. The string tokens are part of
// the client contract and must not be renamed.
type ClaimStatus string

const (
	StatusRecebido          ClaimStatus = "RECEBIDO"
	StatusEmAnalise         ClaimStatus = "EM_ANALISE"
	StatusAguardandoCliente ClaimStatus = "AGUARDANDO_CLIENTE"
	StatusAguardandoLoja    ClaimStatus = "AGUARDANDO_LOJA"
	StatusAprovado          ClaimStatus = "APROVADO"
	StatusReprovado         ClaimStatus = "REPROVADO"
	StatusFinalizado        ClaimStatus = "FINALIZADO"
	StatusCancelado         ClaimStatus = "CANCELADO"
)

// AllStatuses lists every workflow status in phase order.
var AllStatuses = []ClaimStatus{
	StatusRecebido,
	StatusEmAnalise,
	StatusAguardandoCliente,
	StatusAguardandoLoja,
	StatusAprovado,
	StatusReprovado,
	StatusFinalizado,
	StatusCancelado,
}

// Valid reports whether s is one of the enumerated status tokens.
func (s ClaimStatus) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions leave s under normal policy.
func (s ClaimStatus) Terminal() bool {
	return s == StatusFinalizado || s == StatusCancelado
}

// LinkStatus records how (or whether) the claim was matched to a store.
type LinkStatus string

const (
	LinkPendingReview  LinkStatus = "PENDING_REVIEW"
	LinkLinkedAuto     LinkStatus = "LINKED_AUTO"
	LinkLinkedManually LinkStatus = "LINKED_MANUALLY"
)

// Claim warranty claim entity.
//
// Status is mutated only through service.ClaimService.UpdateStatus; the
// customer contact fields are sensitive and masked for store-role callers.
type Claim struct {
	ID             string `json:"id" gorm:"primaryKey;size:32"`
	ProtocolNumber string `json:"protocol_number" gorm:"size:32;not null;uniqueIndex"`

	CustomerName  string `json:"customer_name" gorm:"size:128;not null"`
	CustomerPhone string `json:"customer_phone" gorm:"size:20;not null"`
	CustomerEmail string `json:"customer_email" gorm:"size:128"`

	ItemType           string     `json:"item_type" gorm:"size:32"`
	ProductDescription string     `json:"product_description" gorm:"type:text;not null"`
	SerialNumber       string     `json:"serial_number" gorm:"size:64"`
	InvoiceNumber      string     `json:"invoice_number" gorm:"size:64"`
	PurchaseDate       *time.Time `json:"purchase_date" gorm:"type:date"`

	PurchaseStoreName  string `json:"purchase_store_name" gorm:"size:128;not null"`
	PurchaseStoreCity  string `json:"purchase_store_city" gorm:"size:64"`
	PurchaseStoreState string `json:"purchase_store_state" gorm:"size:2"`

	StoreID    *string    `json:"store_id" gorm:"size:32;index"`
	LinkStatus LinkStatus `json:"link_status" gorm:"size:16;not null;default:PENDING_REVIEW"`

	Status ClaimStatus `json:"status" gorm:"size:32;not null;default:RECEBIDO;index"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	// associations
	Store  *Store       `json:"store,omitempty" gorm:"foreignKey:StoreID"`
	Events []ClaimEvent `json:"events,omitempty" gorm:"foreignKey:ClaimID"`
}

func (Claim) TableName() string {
	return "warranty_claims"
}

// Linked reports whether the claim has been resolved to a known store.
func (c *Claim) Linked() bool {
	return c.StoreID != nil && *c.StoreID != ""
}
