package model

import (
	"fmt"
	"time"
)

// JobPostStatus mirrors the job_posts.status column.
type JobPostStatus string

const (
	// JobPostPending is the initial status, waiting for admin moderation
	JobPostPending JobPostStatus = "PENDING"
	// JobPostActive means the post is approved and open for applications
	JobPostActive JobPostStatus = "ACTIVE"
	// JobPostClosed means the employer closed the post, it can be reopened before the deadline
	JobPostClosed JobPostStatus = "CLOSED"
	// JobPostSuspended means an admin pulled an active post
	JobPostSuspended JobPostStatus = "SUSPENDED"
	// JobPostRejected means moderation rejected the post, terminal
	JobPostRejected JobPostStatus = "REJECTED"
)

// ParseJobPostStatus converts a raw string to a JobPostStatus, returning an
// error for unknown values.
func ParseJobPostStatus(s string) (JobPostStatus, error) {
	st := JobPostStatus(s)
	switch st {
	case JobPostPending, JobPostActive, JobPostClosed, JobPostSuspended, JobPostRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown job post status %q", s)
}

// EditableJobPostInfo is the part of a job post the owning employer can edit
type EditableJobPostInfo struct {
	Title        string     `gorm:"type:text" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	Requirements string     `gorm:"type:text" json:"requirements"`
	Location     string     `gorm:"type:text" json:"location"`
	Salary       string     `gorm:"type:text" json:"salary"`
	Experience   string     `gorm:"type:text" json:"experience"`
	WorkingTime  string     `gorm:"type:text" json:"working_time"`
	HiringQuota  int        `json:"hiring_quota"`
	Deadline     *time.Time `gorm:"type:date" json:"deadline,omitempty"`
}

// JobPost is gorm model for store job post data in DB
type JobPost struct {
	ID        uint    `gorm:"primaryKey;autoIncrement;->" json:"id"`
	CompanyID uint    `gorm:"not null;index;<-:create" json:"company_id"`
	Company   Company `gorm:"foreignKey:CompanyID;references:ID" json:"company"`

	EditableJobPostInfo

	Status JobPostStatus `gorm:"type:text;not null;default:'PENDING';index" json:"status"`

	// AppliedCount tracks non-withdrawn applications. It is only ever
	// changed through atomic UPDATE expressions, never read-modify-write.
	AppliedCount int `gorm:"not null;default:0" json:"applied_count"`

	TypeID  *uint     `json:"type_id,omitempty"`
	Type    *JobType  `gorm:"foreignKey:TypeID;references:ID" json:"type,omitempty"`
	LevelID *uint     `json:"level_id,omitempty"`
	Level   *JobLevel `gorm:"foreignKey:LevelID;references:ID" json:"level,omitempty"`
	Skills  []Skill   `gorm:"many2many:job_post_skills" json:"skills"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeadlinePassed reports whether the application deadline is strictly
// before the given day. A missing deadline never expires.
func (j *JobPost) DeadlinePassed(today time.Time) bool {
	if j.Deadline == nil {
		return false
	}
	y, m, d := today.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return j.Deadline.Before(day)
}
