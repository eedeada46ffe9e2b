package workflow

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/whi-0404/TopCV-sub000/internal/authz"
	"github.com/whi-0404/TopCV-sub000/internal/model"
)

// JobPostSearch holds the public browse filters. Every field is optional.
type JobPostSearch struct {
	Keyword    string `form:"keyword"`
	Location   string `form:"location"`
	TypeIDs    []uint `form:"type_ids"`
	LevelIDs   []uint `form:"level_ids"`
	CompanyIDs []uint `form:"company_ids"`
	SkillIDs   []uint `form:"skill_ids"`
}

// Search lists ACTIVE posts whose deadline has not passed. It is the only
// read surface that bypasses authorization.
func (w *JobPostWorkflow) Search(req JobPostSearch, page, size int) (model.PageResponse[model.JobPost], error) {
	base := func() *gorm.DB {
		q := w.DB.Model(&model.JobPost{}).
			Where("job_posts.status = ?", model.JobPostActive).
			Where("job_posts.deadline IS NULL OR job_posts.deadline >= CURRENT_DATE")

		if req.Keyword != "" {
			kw := "%" + req.Keyword + "%"
			q = q.Where("job_posts.title ILIKE ? OR job_posts.description ILIKE ? OR job_posts.requirements ILIKE ?", kw, kw, kw)
		}
		if req.Location != "" {
			q = q.Where("job_posts.location ILIKE ?", "%"+req.Location+"%")
		}
		if len(req.TypeIDs) > 0 {
			q = q.Where("job_posts.type_id IN ?", req.TypeIDs)
		}
		if len(req.LevelIDs) > 0 {
			q = q.Where("job_posts.level_id IN ?", req.LevelIDs)
		}
		if len(req.CompanyIDs) > 0 {
			q = q.Where("job_posts.company_id IN ?", req.CompanyIDs)
		}
		if len(req.SkillIDs) > 0 {
			q = q.Joins("JOIN job_post_skills ON job_post_skills.job_post_id = job_posts.id").
				Where("job_post_skills.skill_id IN ?", req.SkillIDs).
				Distinct("job_posts.*")
		}
		return q
	}

	var empty model.PageResponse[model.JobPost]

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return empty, err
	}

	var posts []model.JobPost
	err := base().
		Preload("Company").Preload("Type").Preload("Level").Preload("Skills").
		Order(clause.OrderByColumn{Column: clause.Column{Table: "job_posts", Name: "created_at"}, Desc: true}).
		Scopes(model.Paginate(page, size)).
		Find(&posts).Error
	if err != nil {
		return empty, err
	}
	return model.NewPageResponse(page, size, total, posts), nil
}

// Detail returns one post with its associations. Public.
func (w *JobPostWorkflow) Detail(id uint) (*model.JobPost, error) {
	var post model.JobPost
	err := w.DB.
		Preload("Company").Preload("Type").Preload("Level").Preload("Skills").
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

// Mine lists the principal's own posts in every status, newest first.
func (w *JobPostWorkflow) Mine(p authz.Principal, page, size int) (model.PageResponse[model.JobPost], error) {
	var empty model.PageResponse[model.JobPost]

	var company model.Company
	if err := w.DB.Where("user_id = ?", p.UserID).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return empty, preconditionFailed("employer has no company profile")
		}
		return empty, err
	}

	return w.companyPage(page, size, "company_id = ?", company.ID)
}

// ByCompany lists a company's ACTIVE posts. Public.
func (w *JobPostWorkflow) ByCompany(companyID uint, page, size int) (model.PageResponse[model.JobPost], error) {
	var empty model.PageResponse[model.JobPost]

	var count int64
	if err := w.DB.Model(&model.Company{}).Where("id = ?", companyID).Count(&count).Error; err != nil {
		return empty, err
	}
	if count == 0 {
		return empty, notFound("company %d not found", companyID)
	}

	return w.companyPage(page, size, "company_id = ? AND status = ?", companyID, model.JobPostActive)
}

// Pending lists posts awaiting moderation. Admin only.
func (w *JobPostWorkflow) Pending(p authz.Principal, page, size int) (model.PageResponse[model.JobPost], error) {
	if !authz.HasRole(p, model.RoleAdmin) {
		return model.PageResponse[model.JobPost]{}, unauthorized("only admins can list pending job posts")
	}
	return w.companyPage(page, size, "status = ?", model.JobPostPending)
}

func (w *JobPostWorkflow) companyPage(page, size int, cond string, args ...interface{}) (model.PageResponse[model.JobPost], error) {
	var empty model.PageResponse[model.JobPost]

	var total int64
	if err := w.DB.Model(&model.JobPost{}).Where(cond, args...).Count(&total).Error; err != nil {
		return empty, err
	}

	var posts []model.JobPost
	err := w.DB.Where(cond, args...).
		Preload("Company").Preload("Type").Preload("Level").Preload("Skills").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Scopes(model.Paginate(page, size)).
		Find(&posts).Error
	if err != nil {
		return empty, err
	}
	return model.NewPageResponse(page, size, total, posts), nil
}
