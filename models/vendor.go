package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Vendor struct {
	Id             string    `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name" gorm:"not null"`
	Email          string    `json:"email" gorm:"unique;not null"`
	Phone          string    `json:"phone"`
	Company        string    `json:"company"`
	Specialization string    `json:"specialization"`
	CreatedAt      time.Time `json:"created_at"`
}

func (vendor *Vendor) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	vendor.Id = uuid.NewString()
	return
}
