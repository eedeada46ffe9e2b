package workflow

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/whi-0404/TopCV-sub000/internal/authz"
	"github.com/whi-0404/TopCV-sub000/internal/database"
	"github.com/whi-0404/TopCV-sub000/internal/model"
)

// ApplicationWorkflow owns the application review state machine, the
// duplicate-application guard and the applied_count invariant.
//
// applied_count on a job post always equals the number of its
// non-withdrawn applications. Both sides of that equation change only
// inside the transactions below: creation pairs the insert with an atomic
// increment, withdrawal pairs the status flip with an atomic floored
// decrement. The database backs the duplicate guard with a partial unique
// index so concurrent applies cannot race past the existence check.
type ApplicationWorkflow struct {
	DB *database.DBinstanceStruct
}

// NewApplicationWorkflow creates a new instance of ApplicationWorkflow
func NewApplicationWorkflow(db *database.DBinstanceStruct) *ApplicationWorkflow {
	return &ApplicationWorkflow{DB: db}
}

// ApplyRequest is the payload for applying to a job post.
type ApplyRequest struct {
	JobID       uint   `json:"job_id" binding:"required"`
	ResumeID    uint   `json:"resume_id" binding:"required"`
	CoverLetter string `json:"cover_letter"`
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func incrementApplied(tx *gorm.DB, postID uint) error {
	return tx.Model(&model.JobPost{}).Where("id = ?", postID).
		UpdateColumn("applied_count", gorm.Expr("applied_count + 1")).Error
}

func decrementApplied(tx *gorm.DB, postID uint) error {
	return tx.Model(&model.JobPost{}).Where("id = ?", postID).
		UpdateColumn("applied_count", gorm.Expr("GREATEST(applied_count - 1, 0)")).Error
}

func lockApplication(tx *gorm.DB, id uint) (*model.Application, error) {
	var app model.Application
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("application %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// applicationOwner reads the owning employer of an application's post
// inside tx. The denormalized employer_id column is for listing queries
// only; authorization always re-reads ownership in the same transaction.
func applicationOwner(tx *gorm.DB, app *model.Application) (uuid.UUID, error) {
	var post model.JobPost
	if err := tx.Select("id", "company_id").Where("id = ?", app.JobPostID).First(&post).Error; err != nil {
		return uuid.Nil, err
	}
	return companyOwner(tx, post.CompanyID)
}

// Apply creates a PENDING application for the principal against a job
// post. The existence check, duplicate guard, résumé ownership check,
// insert and counter increment form one transaction; the post row is
// locked so concurrent applies serialize.
func (w *ApplicationWorkflow) Apply(p authz.Principal, req ApplyRequest) (*model.Application, error) {
	if !authz.HasRole(p, model.RoleApplicant) {
		return nil, unauthorized("only applicants can apply to job posts")
	}

	var app model.Application
	err := w.DB.Transaction(func(tx *gorm.DB) error {
		post, err := lockPost(tx, req.JobID)
		if err != nil {
			return err
		}
		if post.Status != model.JobPostActive {
			return preconditionFailed("job post %d is not active", req.JobID)
		}
		if post.DeadlinePassed(time.Now()) {
			return preconditionFailed("job post %d deadline has expired", req.JobID)
		}

		var existing int64
		err = tx.Model(&model.Application{}).
			Where("applicant_id = ? AND job_post_id = ? AND status <> ?",
				p.UserID, req.JobID, model.ApplicationWithdrawn).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return preconditionFailed("already applied to job post %d", req.JobID)
		}

		var ownsResume int64
		err = tx.Model(&model.Resume{}).
			Where("id = ? AND user_id = ?", req.ResumeID, p.UserID).
			Count(&ownsResume).Error
		if err != nil {
			return err
		}
		if ownsResume == 0 {
			return preconditionFailed("resume %d does not belong to applicant", req.ResumeID)
		}

		employerID, err := companyOwner(tx, post.CompanyID)
		if err != nil {
			return err
		}

		app = model.Application{
			ApplicantID: p.UserID,
			EmployerID:  employerID,
			JobPostID:   req.JobID,
			ResumeID:    req.ResumeID,
			Status:      model.ApplicationPending,
			CoverLetter: req.CoverLetter,
		}
		if err := tx.Create(&app).Error; err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) {
				switch pgErr.Code {
				case pgUniqueViolation:
					return preconditionFailed("already applied to job post %d", req.JobID)
				case pgForeignKeyViolation:
					return badRequest("invalid job post or resume reference")
				}
			}
			return err
		}

		return incrementApplied(tx, req.JobID)
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// Withdraw sets the principal's application to WITHDRAWN. Allowed only
// while the application is PENDING or REVIEWING; decrements the post's
// applied_count, floored at zero.
func (w *ApplicationWorkflow) Withdraw(p authz.Principal, id uint) error {
	return w.DB.Transaction(func(tx *gorm.DB) error {
		app, err := lockApplication(tx, id)
		if err != nil {
			return err
		}
		if !authz.Allow(p, app.ApplicantID) {
			return unauthorized("application %d belongs to another applicant", id)
		}
		if !model.CanWithdraw(app.Status) {
			return preconditionFailed("application %d in status %s cannot be withdrawn", id, app.Status)
		}
		if err := tx.Model(app).Update("status", model.ApplicationWithdrawn).Error; err != nil {
			return err
		}
		return decrementApplied(tx, app.JobPostID)
	})
}

// UpdateStatus moves an application along the employer review table. The
// counter never changes here; only creation and withdrawal touch it.
func (w *ApplicationWorkflow) UpdateStatus(p authz.Principal, id uint, rawStatus string) (*model.Application, error) {
	newStatus, err := model.ParseApplicationStatus(rawStatus)
	if err != nil {
		return nil, badRequest("invalid application status %q", rawStatus)
	}

	var app *model.Application
	err = w.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		app, err = lockApplication(tx, id)
		if err != nil {
			return err
		}
		ownerID, err := applicationOwner(tx, app)
		if err != nil {
			return err
		}
		if !authz.Allow(p, ownerID) {
			return unauthorized("application %d belongs to another employer", id)
		}
		if !model.CanTransition(app.Status, newStatus) {
			return invalidTransition("application %d cannot move from %s to %s", id, app.Status, newStatus)
		}
		app.Status = newStatus
		return tx.Model(app).Update("status", newStatus).Error
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// AttachScreening records the external screening verdict on an
// application. It runs in its own transaction, strictly after the apply
// path has committed; the annotation is carried, never interpreted.
func (w *ApplicationWorkflow) AttachScreening(id uint, ann model.ScreeningAnnotation) error {
	res := w.DB.Model(&model.Application{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"screening_decision": ann.ScreeningDecision,
			"screening_score":    ann.ScreeningScore,
			"matched_points":     ann.MatchedPoints,
			"unmatched_points":   ann.UnmatchedPoints,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("application %d not found", id)
	}
	return nil
}

// ListMine returns the principal's applications, newest first.
func (w *ApplicationWorkflow) ListMine(p authz.Principal, page, size int) (model.PageResponse[model.Application], error) {
	return w.listPage(page, size, "applicant_id = ?", p.UserID)
}

// ListReceived returns every application against the employer's posts,
// newest first. Uses the denormalized employer_id column.
func (w *ApplicationWorkflow) ListReceived(p authz.Principal, page, size int) (model.PageResponse[model.Application], error) {
	return w.listPage(page, size, "employer_id = ?", p.UserID)
}

// ListForJob returns applications against one post, employer only.
func (w *ApplicationWorkflow) ListForJob(p authz.Principal, jobID uint, page, size int) (model.PageResponse[model.Application], error) {
	var empty model.PageResponse[model.Application]

	var post model.JobPost
	if err := w.DB.Select("id", "company_id").Where("id = ?", jobID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return empty, notFound("job post %d not found", jobID)
		}
		return empty, err
	}
	ownerID, err := companyOwner(w.DB.DB, post.CompanyID)
	if err != nil {
		return empty, err
	}
	if !authz.Allow(p, ownerID) {
		return empty, unauthorized("job post %d belongs to another company", jobID)
	}

	return w.listPage(page, size, "job_post_id = ?", jobID)
}

func (w *ApplicationWorkflow) listPage(page, size int, cond string, args ...interface{}) (model.PageResponse[model.Application], error) {
	var empty model.PageResponse[model.Application]

	var total int64
	if err := w.DB.Model(&model.Application{}).Where(cond, args...).Count(&total).Error; err != nil {
		return empty, err
	}

	var apps []model.Application
	err := w.DB.Where(cond, args...).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Scopes(model.Paginate(page, size)).
		Find(&apps).Error
	if err != nil {
		return empty, err
	}
	return model.NewPageResponse(page, size, total, apps), nil
}
