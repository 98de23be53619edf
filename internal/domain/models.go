// Package domain defines the persistence model for contact-form leads and the
// rules every submission must satisfy before it is stored. The types here are
// shared by the ingestion endpoint and the submission client, so both sides
// validate with exactly the same code.
package domain

import (
	"time"
)

// Values set server-side on every stored lead, regardless of client input.
const (
	SourceWebsite = "website"
	StatusNew     = "new"
)

// Lead represents one contact-form submission persisted in the leads table.
// A lead is written once and never updated or deleted by this service.
//
// Fields:
//   - ID: UUID primary key assigned on insert (char(36)).
//   - Name / Email / Message: required submitter fields (trimmed).
//   - Company / Phone / Service: optional fields, NULL when absent.
//   - Source: always "website".
//   - Status: always "new".
//   - CreatedAt: insert timestamp managed by GORM.
//
// Email carries a plain index. Deployments that want duplicate submissions
// rejected enable a unique index on top (see repo.AutoMigrate).
type Lead struct {
	ID        string    `json:"id"                gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name"              gorm:"type:varchar(255);not null"`
	Email     string    `json:"email"             gorm:"type:varchar(320);not null;index:idx_leads_email"`
	Message   string    `json:"message"           gorm:"type:text;not null"`
	Company   *string   `json:"company"           gorm:"type:varchar(255)"`
	Phone     *string   `json:"phone"             gorm:"type:varchar(64)"`
	Service   *string   `json:"service"           gorm:"type:varchar(128)"`
	Source    string    `json:"source"            gorm:"type:varchar(32);not null;default:'website'"`
	Status    string    `json:"status"            gorm:"type:varchar(32);not null;default:'new'"`
	CreatedAt time.Time `json:"created_at"        gorm:"autoCreateTime;index"`
}

// TableName returns the database table name for Lead.
func (Lead) TableName() string { return "leads" }

// NewLead builds an unsaved Lead from a normalized input. Optional fields that
// are empty become NULL, and source/status are pinned to their server-side
// constants.
func NewLead(in LeadInput) *Lead {
	return &Lead{
		Name:    in.Name,
		Email:   in.Email,
		Message: in.Message,
		Company: optional(in.Company),
		Phone:   optional(in.Phone),
		Service: optional(in.Service),
		Source:  SourceWebsite,
		Status:  StatusNew,
	}
}

// Deref returns the value of an optional column or "" when NULL.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
