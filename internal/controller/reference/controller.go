// Package reference provides HTTP handlers for the job type, job level and
// skill catalogues. Reads are public, writes are admin only.
package reference

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/whi-0404/TopCV-sub000/internal/database"
	"github.com/whi-0404/TopCV-sub000/internal/model"
	"github.com/whi-0404/TopCV-sub000/internal/utilities"
)

const pgUniqueViolation = "23505"

// ReferenceController handles catalogue endpoints
type ReferenceController struct {
	DB *database.DBinstanceStruct
}

// NewReferenceController creates a new instance of ReferenceController
func NewReferenceController(db *database.DBinstanceStruct) *ReferenceController {
	return &ReferenceController{DB: db}
}

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

func list[T any](rc *ReferenceController, c *gin.Context) {
	var items []T
	if err := rc.DB.Order("name asc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

func create[T any](rc *ReferenceController, c *gin.Context, build func(string) T) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Name must be provided"})
		return
	}

	item := build(req.Name)
	if err := rc.DB.Create(&item).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error: fmt.Sprintf("%q already exists", req.Name),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, item)
}

func remove[T any](rc *ReferenceController, c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid id"})
		return
	}

	var item T
	result := rc.DB.Delete(&item, uint(id))
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Not found"})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Deleted"})
}

// GetJobTypes lists all job types.
// @Summary List job types
// @Tags Reference
// @Produce json
// @Success 200 {array} model.JobType
// @Router /job-types [get]
func (rc *ReferenceController) GetJobTypes(c *gin.Context) { list[model.JobType](rc, c) }

// CreateJobType adds a job type.
// @Summary Create a job type
// @Tags Reference
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param body body object true "Job type name"
// @Success 201 {object} model.JobType
// @Failure 400 {object} utilities.ErrorResponse "Missing or duplicate name"
// @Router /job-types [post]
func (rc *ReferenceController) CreateJobType(c *gin.Context) {
	create(rc, c, func(name string) model.JobType { return model.JobType{Name: name} })
}

// DeleteJobType removes a job type.
// @Summary Delete a job type
// @Tags Reference
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "Job type ID"
// @Success 200 {object} utilities.MessageResponse
// @Failure 404 {object} utilities.ErrorResponse "Not found"
// @Router /job-types/{id} [delete]
func (rc *ReferenceController) DeleteJobType(c *gin.Context) { remove[model.JobType](rc, c) }

// GetJobLevels lists all job levels.
// @Summary List job levels
// @Tags Reference
// @Produce json
// @Success 200 {array} model.JobLevel
// @Router /job-levels [get]
func (rc *ReferenceController) GetJobLevels(c *gin.Context) { list[model.JobLevel](rc, c) }

// CreateJobLevel adds a job level.
// @Summary Create a job level
// @Tags Reference
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param body body object true "Job level name"
// @Success 201 {object} model.JobLevel
// @Failure 400 {object} utilities.ErrorResponse "Missing or duplicate name"
// @Router /job-levels [post]
func (rc *ReferenceController) CreateJobLevel(c *gin.Context) {
	create(rc, c, func(name string) model.JobLevel { return model.JobLevel{Name: name} })
}

// DeleteJobLevel removes a job level.
// @Summary Delete a job level
// @Tags Reference
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "Job level ID"
// @Success 200 {object} utilities.MessageResponse
// @Failure 404 {object} utilities.ErrorResponse "Not found"
// @Router /job-levels/{id} [delete]
func (rc *ReferenceController) DeleteJobLevel(c *gin.Context) { remove[model.JobLevel](rc, c) }

// GetSkills lists all skills.
// @Summary List skills
// @Tags Reference
// @Produce json
// @Success 200 {array} model.Skill
// @Router /skills [get]
func (rc *ReferenceController) GetSkills(c *gin.Context) { list[model.Skill](rc, c) }

// CreateSkill adds a skill.
// @Summary Create a skill
// @Tags Reference
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param body body object true "Skill name"
// @Success 201 {object} model.Skill
// @Failure 400 {object} utilities.ErrorResponse "Missing or duplicate name"
// @Router /skills [post]
func (rc *ReferenceController) CreateSkill(c *gin.Context) {
	create(rc, c, func(name string) model.Skill { return model.Skill{Name: name} })
}

// DeleteSkill removes a skill.
// @Summary Delete a skill
// @Tags Reference
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "Skill ID"
// @Success 200 {object} utilities.MessageResponse
// @Failure 404 {object} utilities.ErrorResponse "Not found"
// @Router /skills/{id} [delete]
func (rc *ReferenceController) DeleteSkill(c *gin.Context) { remove[model.Skill](rc, c) }
