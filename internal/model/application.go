package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ApplicationStatus mirrors the applications.status column.
//
// Valid status graph:
//
//	PENDING ──► REVIEWING ──► SHORTLISTED ──► INTERVIEWED ──► HIRED
//	    │            │              │               │
//	    └────────────┴──────────────┴───────────────┴──► REJECTED
//
// HIRED, REJECTED and WITHDRAWN are terminal. WITHDRAWN is reachable only
// through the applicant-driven withdraw operation, never through the
// employer review table.
type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "PENDING"
	ApplicationReviewing   ApplicationStatus = "REVIEWING"
	ApplicationShortlisted ApplicationStatus = "SHORTLISTED"
	ApplicationInterviewed ApplicationStatus = "INTERVIEWED"
	ApplicationHired       ApplicationStatus = "HIRED"
	ApplicationRejected    ApplicationStatus = "REJECTED"
	ApplicationWithdrawn   ApplicationStatus = "WITHDRAWN"
)

// applicationTransitions lists every allowed employer-driven (from → to) pair.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationPending:     {ApplicationReviewing, ApplicationRejected},
	ApplicationReviewing:   {ApplicationShortlisted, ApplicationRejected},
	ApplicationShortlisted: {ApplicationInterviewed, ApplicationRejected},
	ApplicationInterviewed: {ApplicationHired, ApplicationRejected},
	// HIRED, REJECTED and WITHDRAWN are terminal
}

// ParseApplicationStatus converts a raw string to an ApplicationStatus,
// returning an error for unknown values. Matching ignores case.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(strings.ToUpper(s))
	switch st {
	case ApplicationPending, ApplicationReviewing, ApplicationShortlisted,
		ApplicationInterviewed, ApplicationHired, ApplicationRejected, ApplicationWithdrawn:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// CanTransition returns true when an employer may move an application
// from → to.
func CanTransition(from, to ApplicationStatus) bool {
	for _, s := range applicationTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanWithdraw returns true while the applicant may still withdraw.
func CanWithdraw(s ApplicationStatus) bool {
	return s == ApplicationPending || s == ApplicationReviewing
}

// ScreeningAnnotation is attached by the external CV screening service
// after the application is created. It is carried but never interpreted.
type ScreeningAnnotation struct {
	ScreeningDecision string         `gorm:"type:text" json:"screening_decision,omitempty"`
	ScreeningScore    *float64       `json:"screening_score,omitempty"`
	MatchedPoints     pq.StringArray `gorm:"type:text[]" json:"matched_points,omitempty"`
	UnmatchedPoints   pq.StringArray `gorm:"type:text[]" json:"unmatched_points,omitempty"`
}

// Application represents a job application record
type Application struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	ApplicantID uuid.UUID `gorm:"type:uuid;not null;index" json:"applicant_id"`
	Applicant   User      `gorm:"foreignKey:ApplicantID;references:ID" json:"-"`

	// EmployerID is denormalized from the post's company owner at creation
	// time for fast employer-scoped queries.
	EmployerID uuid.UUID `gorm:"type:uuid;not null;index" json:"employer_id"`

	JobPostID uint    `gorm:"not null;index" json:"job_post_id"`
	JobPost   JobPost `gorm:"foreignKey:JobPostID;references:ID" json:"-"`

	ResumeID uint   `gorm:"not null" json:"resume_id"`
	Resume   Resume `gorm:"foreignKey:ResumeID;references:ID" json:"-"`

	Status      ApplicationStatus `gorm:"type:text;not null;default:'PENDING';index" json:"status"`
	CoverLetter string            `gorm:"type:text" json:"cover_letter,omitempty"`

	ScreeningAnnotation

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
