package models

import "time"

type ThesisStatus string

const (
	ThesisStatusPending   ThesisStatus = "pending"
	ThesisStatusApproved  ThesisStatus = "approved"
	ThesisStatusRejected  ThesisStatus = "rejected"
	ThesisStatusPublished ThesisStatus = "published"
)

// CanTransitionTo enforces the linear review flow: pending may be approved or
// rejected, approved may be published. Everything else is final.
func (s ThesisStatus) CanTransitionTo(next ThesisStatus) bool {
	switch s {
	case ThesisStatusPending:
		return next == ThesisStatusApproved || next == ThesisStatusRejected
	case ThesisStatusApproved:
		return next == ThesisStatusPublished
	default:
		return false
	}
}

type Thesis struct {
	ID          string
	AuthorID    string
	Title       string
	Abstract    string
	Keywords    []string
	DocumentKey string
	Status      ThesisStatus
	ReviewedBy  *string
	ReviewNote  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
