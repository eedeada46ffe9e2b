package workflow

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/whi-0404/TopCV-sub000/internal/authz"
	"github.com/whi-0404/TopCV-sub000/internal/database"
	"github.com/whi-0404/TopCV-sub000/internal/model"
	"github.com/whi-0404/TopCV-sub000/internal/utilities"
)

// JobPostWorkflow owns the job post publication state machine:
//
//	PENDING ──approve──► ACTIVE ──close──► CLOSED ──reopen──► ACTIVE
//	    │                   │
//	  reject             suspend
//	    ▼                   ▼
//	REJECTED            SUSPENDED
//
// Employer operations verify ownership through authz.Allow against an
// ownership projection read inside the same transaction. Admin operations
// check the role directly.
type JobPostWorkflow struct {
	DB *database.DBinstanceStruct
}

// NewJobPostWorkflow creates a new instance of JobPostWorkflow
func NewJobPostWorkflow(db *database.DBinstanceStruct) *JobPostWorkflow {
	return &JobPostWorkflow{DB: db}
}

// JobPostCreation is the payload for creating a job post.
type JobPostCreation struct {
	model.EditableJobPostInfo
	TypeID   *uint  `json:"type_id"`
	LevelID  *uint  `json:"level_id"`
	SkillIDs []uint `json:"skill_ids"`
}

// JobPostUpdate is the payload for editing a job post. Empty fields are
// left untouched.
type JobPostUpdate struct {
	model.EditableJobPostInfo
	TypeID   *uint  `json:"type_id"`
	LevelID  *uint  `json:"level_id"`
	SkillIDs []uint `json:"skill_ids"`
}

// lockPost loads a job post FOR UPDATE inside tx.
func lockPost(tx *gorm.DB, id uint) (*model.JobPost, error) {
	var post model.JobPost
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("job post %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// companyOwner reads the owning user id of a company inside tx. The
// projection is deliberately minimal so the ownership decision never
// depends on state loaded outside the transaction.
func companyOwner(tx *gorm.DB, companyID uint) (uuid.UUID, error) {
	var row struct{ UserID uuid.UUID }
	res := tx.Model(&model.Company{}).
		Select("user_id").
		Where("id = ?", companyID).
		Scan(&row)
	if res.Error != nil {
		return uuid.Nil, res.Error
	}
	if res.RowsAffected == 0 {
		return uuid.Nil, notFound("company %d not found", companyID)
	}
	return row.UserID, nil
}

// Create registers a new job post in PENDING for the principal's company.
func (w *JobPostWorkflow) Create(p authz.Principal, req JobPostCreation) (*model.JobPost, error) {
	if !authz.HasRole(p, model.RoleEmployer) {
		return nil, unauthorized("only employers can create job posts")
	}
	if req.Deadline != nil && req.Deadline.Before(todayUTC()) {
		return nil, badRequest("deadline must not be in the past")
	}

	var post model.JobPost
	err := w.DB.Transaction(func(tx *gorm.DB) error {
		var company model.Company
		if err := tx.Where("user_id = ?", p.UserID).First(&company).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return preconditionFailed("employer has no company profile")
			}
			return err
		}

		skills, err := resolveRefs(tx, req.TypeID, req.LevelID, req.SkillIDs)
		if err != nil {
			return err
		}

		post = model.JobPost{
			CompanyID:           company.ID,
			EditableJobPostInfo: req.EditableJobPostInfo,
			Status:              model.JobPostPending,
			AppliedCount:        0,
			TypeID:              req.TypeID,
			LevelID:             req.LevelID,
			Skills:              skills,
		}
		return tx.Create(&post).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// resolveRefs validates the referenced job type, level and skills exist.
func resolveRefs(tx *gorm.DB, typeID, levelID *uint, skillIDs []uint) ([]model.Skill, error) {
	if typeID != nil {
		var count int64
		if err := tx.Model(&model.JobType{}).Where("id = ?", *typeID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, badRequest("job type %d not found", *typeID)
		}
	}
	if levelID != nil {
		var count int64
		if err := tx.Model(&model.JobLevel{}).Where("id = ?", *levelID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, badRequest("job level %d not found", *levelID)
		}
	}
	var skills []model.Skill
	if len(skillIDs) > 0 {
		if err := tx.Where("id IN ?", skillIDs).Find(&skills).Error; err != nil {
			return nil, err
		}
		if len(skills) != len(skillIDs) {
			return nil, badRequest("one or more skills not found")
		}
	}
	return skills, nil
}

// Update edits a post's content. Allowed only in PENDING or ACTIVE; a
// successful update of an ACTIVE post resets it to PENDING because content
// changes require re-moderation.
func (w *JobPostWorkflow) Update(p authz.Principal, id uint, req JobPostUpdate) (*model.JobPost, error) {
	var post *model.JobPost
	err := w.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		post, err = lockPost(tx, id)
		if err != nil {
			return err
		}
		ownerID, err := companyOwner(tx, post.CompanyID)
		if err != nil {
			return err
		}
		if !authz.Allow(p, ownerID) {
			return unauthorized("job post %d belongs to another company", id)
		}
		if post.Status != model.JobPostPending && post.Status != model.JobPostActive {
			return preconditionFailed("job post in status %s cannot be updated", post.Status)
		}
		if req.Deadline != nil && req.Deadline.Before(todayUTC()) {
			return badRequest("deadline must not be in the past")
		}

		utilities.MergeNonEmpty(&post.EditableJobPostInfo, &req.EditableJobPostInfo)

		if req.TypeID != nil || req.LevelID != nil || req.SkillIDs != nil {
			skills, err := resolveRefs(tx, req.TypeID, req.LevelID, req.SkillIDs)
			if err != nil {
				return err
			}
			if req.TypeID != nil {
				post.TypeID = req.TypeID
			}
			if req.LevelID != nil {
				post.LevelID = req.LevelID
			}
			if req.SkillIDs != nil {
				if err := tx.Model(post).Association("Skills").Replace(skills); err != nil {
					return err
				}
			}
		}

		// Content changed on a live post: back to moderation.
		if post.Status == model.JobPostActive {
			post.Status = model.JobPostPending
		}

		return tx.Omit("Skills").Save(post).Error
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post. Blocked once applications exist, unless the post
// never left PENDING.
func (w *JobPostWorkflow) Delete(p authz.Principal, id uint) error {
	return w.DB.Transaction(func(tx *gorm.DB) error {
		post, err := lockPost(tx, id)
		if err != nil {
			return err
		}
		ownerID, err := companyOwner(tx, post.CompanyID)
		if err != nil {
			return err
		}
		if !authz.Allow(p, ownerID) {
			return unauthorized("job post %d belongs to another company", id)
		}
		if post.AppliedCount > 0 && post.Status != model.JobPostPending {
			return preconditionFailed("job post %d has applications and cannot be deleted", id)
		}
		// Withdrawn applications may still reference the post; remove them
		// first or the post delete trips the foreign key.
		if err := tx.Where("job_post_id = ?", post.ID).Delete(&model.Application{}).Error; err != nil {
			return err
		}
		return tx.Select(clause.Associations).Delete(post).Error
	})
}

// Close moves ACTIVE → CLOSED. Employer only.
func (w *JobPostWorkflow) Close(p authz.Principal, id uint) error {
	return w.ownerTransition(p, id, model.JobPostActive, model.JobPostClosed, nil)
}

// Reopen moves CLOSED → ACTIVE, only while the deadline has not passed.
func (w *JobPostWorkflow) Reopen(p authz.Principal, id uint) error {
	return w.ownerTransition(p, id, model.JobPostClosed, model.JobPostActive, func(post *model.JobPost) error {
		if post.DeadlinePassed(time.Now()) {
			return preconditionFailed("job post %d deadline has expired", id)
		}
		return nil
	})
}

// Approve moves PENDING → ACTIVE. Admin only.
func (w *JobPostWorkflow) Approve(p authz.Principal, id uint) error {
	return w.adminTransition(p, id, model.JobPostPending, model.JobPostActive)
}

// Reject moves PENDING → REJECTED. Admin only. REJECTED is terminal.
func (w *JobPostWorkflow) Reject(p authz.Principal, id uint) error {
	return w.adminTransition(p, id, model.JobPostPending, model.JobPostRejected)
}

// Suspend moves ACTIVE → SUSPENDED. Admin only.
func (w *JobPostWorkflow) Suspend(p authz.Principal, id uint) error {
	return w.adminTransition(p, id, model.JobPostActive, model.JobPostSuspended)
}

func (w *JobPostWorkflow) ownerTransition(p authz.Principal, id uint, from, to model.JobPostStatus, extra func(*model.JobPost) error) error {
	return w.DB.Transaction(func(tx *gorm.DB) error {
		post, err := lockPost(tx, id)
		if err != nil {
			return err
		}
		ownerID, err := companyOwner(tx, post.CompanyID)
		if err != nil {
			return err
		}
		if !authz.Allow(p, ownerID) {
			return unauthorized("job post %d belongs to another company", id)
		}
		if post.Status != from {
			return preconditionFailed("job post %d is %s, not %s", id, post.Status, from)
		}
		if extra != nil {
			if err := extra(post); err != nil {
				return err
			}
		}
		return tx.Model(post).Update("status", to).Error
	})
}

func (w *JobPostWorkflow) adminTransition(p authz.Principal, id uint, from, to model.JobPostStatus) error {
	if !authz.HasRole(p, model.RoleAdmin) {
		return unauthorized("only admins can moderate job posts")
	}
	return w.DB.Transaction(func(tx *gorm.DB) error {
		post, err := lockPost(tx, id)
		if err != nil {
			return err
		}
		if post.Status != from {
			return preconditionFailed("job post %d is %s, not %s", id, post.Status, from)
		}
		return tx.Model(post).Update("status", to).Error
	})
}

func todayUTC() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
