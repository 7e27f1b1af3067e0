package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Proposal is a vendor's reply to an RFP. At most one proposal exists per
// (RFP, vendor) pair; redelivered mail for an answered pair is discarded.
type Proposal struct {
	Id       string `json:"id" gorm:"primaryKey"`
	RFPId    string `json:"rfp_id" gorm:"column:rfp_id;not null;index:idx_proposals_rfp_vendor,unique,priority:1"`
	VendorId string `json:"vendor_id" gorm:"not null;index:idx_proposals_rfp_vendor,unique,priority:2"`
	Vendor   Vendor `json:"vendor" gorm:"foreignKey:VendorId;references:Id;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`

	// RawEmail keeps the inbound message body untouched; extracted fields
	// below come from the extraction collaborator and are never rewritten
	// by scoring.
	RawEmail   string         `json:"raw_email"`
	ParsedData datatypes.JSON `json:"parsed_data" gorm:"type:jsonb"`

	TotalPrice   *float64 `json:"total_price" gorm:"type:numeric(12,2)"`
	DeliveryTime *string  `json:"delivery_time"`
	Terms        *string  `json:"terms"`

	// Score and ScoreFactors are written together on every comparison run
	// and overwrite prior values.
	Score        *float64       `json:"score"`
	ScoreFactors datatypes.JSON `json:"score_factors" gorm:"type:jsonb"`
	AISummary    string         `json:"ai_summary"`

	Status     string    `json:"status" gorm:"type:VARCHAR(20);default:received"`
	ReceivedAt time.Time `json:"received_at" gorm:"autoCreateTime"`
}

func (proposal *Proposal) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	proposal.Id = uuid.NewString()
	if proposal.Status == "" {
		proposal.Status = "received"
	}
	return
}
