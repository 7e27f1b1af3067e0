package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RFP lifecycle states. Status only moves forward: a dispatched RFP never
// returns to draft.
const (
	RFPStatusDraft     = "draft"
	RFPStatusSent      = "sent"
	RFPStatusCompleted = "completed"
)

var rfpStatusRank = map[string]int{
	RFPStatusDraft:     0,
	RFPStatusSent:      1,
	RFPStatusCompleted: 2,
}

// ValidRFPStatus reports whether s is a known lifecycle state.
func ValidRFPStatus(s string) bool {
	_, ok := rfpStatusRank[s]
	return ok
}

// AllowedRFPTransition reports whether moving from -> to respects the
// monotonic draft -> sent -> completed order. Same-state updates are allowed.
func AllowedRFPTransition(from, to string) bool {
	fr, ok1 := rfpStatusRank[from]
	tr, ok2 := rfpStatusRank[to]
	return ok1 && ok2 && tr >= fr
}

type RFP struct {
	Id          string `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description"`

	// Budget is stored exactly as entered/extracted: a currency symbol
	// followed by the amount, e.g. "₹50000" or "$12000.50".
	Budget       string         `json:"budget"`
	Deadline     *time.Time     `json:"deadline"`
	Items        datatypes.JSON `json:"items" gorm:"type:jsonb"`
	PaymentTerms *string        `json:"payment_terms"`
	Warranty     *string        `json:"warranty"`
	Status       string         `json:"status" gorm:"type:VARCHAR(20);default:draft"`

	SentVendors []RFPVendor `json:"sent_vendors" gorm:"foreignKey:RFPId;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time   `json:"created_at"`
}

func (rfp *RFP) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	rfp.Id = uuid.NewString()
	if rfp.Status == "" {
		rfp.Status = RFPStatusDraft
	}
	return
}

// RFPItem is one itemized need inside an RFP. The slice is stored as jsonb
// in RFP.Items.
type RFPItem struct {
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	Specifications string `json:"specifications,omitempty"`
}

// RFPVendor records that an RFP was dispatched to a vendor. Rows are
// append-only; re-sending to the same vendor is a no-op (unique pair).
type RFPVendor struct {
	Id       uint      `json:"-" gorm:"primaryKey"`
	RFPId    string    `json:"-" gorm:"column:rfp_id;index:idx_rfp_vendors_pair,unique,priority:1"`
	VendorId string    `json:"vendor_id" gorm:"index:idx_rfp_vendors_pair,unique,priority:2"`
	SentAt   time.Time `json:"sent_at" gorm:"autoCreateTime"`
}

func (RFPVendor) TableName() string { return "rfp_vendors" }
