// Package jobpost provides HTTP handlers for job post related operations.
package jobpost

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/whi-0404/TopCV-sub000/internal/authz"
	"github.com/whi-0404/TopCV-sub000/internal/database"
	"github.com/whi-0404/TopCV-sub000/internal/utilities"
	"github.com/whi-0404/TopCV-sub000/internal/workflow"
)

// JobPostController handles job post related endpoints
type JobPostController struct {
	DB       *database.DBinstanceStruct
	Workflow *workflow.JobPostWorkflow
}

// NewJobPostController creates a new instance of JobPostController
func NewJobPostController(db *database.DBinstanceStruct) *JobPostController {
	return &JobPostController{
		DB:       db,
		Workflow: workflow.NewJobPostWorkflow(db),
	}
}

func respondError(c *gin.Context, err error) {
	if we := workflow.AsError(err); we != nil {
		c.JSON(we.HTTPStatus(), utilities.ErrorResponse{Error: we.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: err.Error()})
}

func principal(c *gin.Context) (authz.Principal, bool) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return authz.Principal{}, false
	}
	return authz.PrincipalFromUser(user), true
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	return page, size
}

// CreateJobPostHandler handles the creation of a new job post by an employer.
// @Summary Create job post based on given json structure
// @Description Only employers with a company profile have access to this endpoint
// @Tags Jobpost
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param Jobpost body workflow.JobPostCreation true "Input jobpost information"
// @Success 201 {object} model.JobPost "Successfully create job post"
// @Failure 400 {object} utilities.ErrorResponse "Invalid job post struct or bad references"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as employer"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /job-posts [post]
func (jc *JobPostController) CreateJobPostHandler(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req workflow.JobPostCreation
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	post, err := jc.Workflow.Create(p, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// EditJobPost allows an employer to update a job post they own. Editing an
// active post sends it back to moderation.
// @Summary Edit job post based on given json structure
// @Tags Jobpost
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired job post"
// @Param Jobpost body workflow.JobPostUpdate true "Input jobpost information"
// @Success 200 {object} model.JobPost "Successfully update job post"
// @Failure 400 {object} utilities.ErrorResponse "Invalid body or post not editable"
// @Failure 403 {object} utilities.ErrorResponse "Do not have permission to edit"
// @Failure 404 {object} utilities.ErrorResponse "Post not found"
// @Router /job-posts/{id} [patch]
func (jc *JobPostController) EditJobPost(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req workflow.JobPostUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to parse request body: %s", err.Error()),
		})
		return
	}

	post, err := jc.Workflow.Update(p, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeleteJobPost allows an employer to delete a job post they own.
// @Summary Delete given job post ID
// @Description Blocked once applications exist unless the post is still pending
// @Tags Jobpost
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired job post"
// @Success 200 {object} utilities.MessageResponse "Successfully delete job post"
// @Failure 400 {object} utilities.ErrorResponse "Post has applications"
// @Failure 403 {object} utilities.ErrorResponse "Do not have permission to delete this post"
// @Failure 404 {object} utilities.ErrorResponse "Post not found"
// @Router /job-posts/{id} [delete]
func (jc *JobPostController) DeleteJobPost(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := jc.Workflow.Delete(p, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Job post deleted"})
}

// lifecycle wires one PATCH action to its workflow transition.
func (jc *JobPostController) lifecycle(action func(authz.Principal, uint) error, done string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := action(p, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, utilities.MessageResponse{Message: done})
	}
}

// CloseJobPost moves an active post to closed. Employer only.
// @Summary Close an active job post
// @Tags Jobpost
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired job post"
// @Success 200 {object} utilities.MessageResponse
// @Router /job-posts/{id}/close [patch]
func (jc *JobPostController) CloseJobPost(c *gin.Context) {
	jc.lifecycle(jc.Workflow.Close, "Job post closed")(c)
}

// ReopenJobPost moves a closed post back to active while the deadline holds.
// @Summary Reopen a closed job post
// @Tags Jobpost
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired job post"
// @Success 200 {object} utilities.MessageResponse
// @Router /job-posts/{id}/reopen [patch]
func (jc *JobPostController) ReopenJobPost(c *gin.Context) {
	jc.lifecycle(jc.Workflow.Reopen, "Job post reopened")(c)
}

// ApproveJobPost activates a pending post. Admin only.
// @Summary Approve a pending job post
// @Tags Jobpost
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired job post"
// @Success 200 {object} utilities.MessageResponse
// @Router /job-posts/{id}/approve [patch]
func (jc *JobPostController) ApproveJobPost(c *gin.Context) {
	jc.lifecycle(jc.Workflow.Approve, "Job post approved")(c)
}

// RejectJobPost rejects a pending post. Admin only.
// @Summary Reject a pending job post
// @Tags Jobpost
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired job post"
// @Success 200 {object} utilities.MessageResponse
// @Router /job-posts/{id}/reject [patch]
func (jc *JobPostController) RejectJobPost(c *gin.Context) {
	jc.lifecycle(jc.Workflow.Reject, "Job post rejected")(c)
}

// SuspendJobPost pulls an active post. Admin only.
// @Summary Suspend an active job post
// @Tags Jobpost
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired job post"
// @Success 200 {object} utilities.MessageResponse
// @Router /job-posts/{id}/suspend [patch]
func (jc *JobPostController) SuspendJobPost(c *gin.Context) {
	jc.lifecycle(jc.Workflow.Suspend, "Job post suspended")(c)
}

// GetPosts fetches active, non-expired job posts that match the query.
// @Summary Get active job posts based on query
// @Description Public browse surface, every query param is optional
// @Tags Jobpost
// @Produce json
// @Param keyword query string false "Substring match over title, description and requirements"
// @Param location query string false "Substring match over location"
// @Param type_ids query []int false "Job type ids"
// @Param level_ids query []int false "Job level ids"
// @Param company_ids query []int false "Company ids"
// @Param skill_ids query []int false "Skill ids"
// @Param page query int false "1-indexed page"
// @Param size query int false "Page size, default 10"
// @Success 200 {object} model.PageResponse[model.JobPost]
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /job-posts [get]
func (jc *JobPostController) GetPosts(c *gin.Context) {
	var req workflow.JobPostSearch
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid query: %s", err.Error()),
		})
		return
	}
	page, size := pageParams(c)

	posts, err := jc.Workflow.Search(req, page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

// GetPostByID fetches a job post by its ID.
// @Summary Get job post by ID
// @Tags Jobpost
// @Produce json
// @Param id path integer true "ID of desired job post"
// @Success 200 {object} model.JobPost
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Router /job-posts/{id} [get]
func (jc *JobPostController) GetPostByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	post, err := jc.Workflow.Detail(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// GetMyPosts lists the employer's own posts in every status.
// @Summary Get my job posts
// @Tags Jobpost
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param page query int false "1-indexed page"
// @Param size query int false "Page size, default 10"
// @Success 200 {object} model.PageResponse[model.JobPost]
// @Router /job-posts/my [get]
func (jc *JobPostController) GetMyPosts(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	page, size := pageParams(c)

	posts, err := jc.Workflow.Mine(p, page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

// GetPendingPosts lists posts awaiting moderation. Admin only.
// @Summary Get pending job posts
// @Tags Jobpost
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param page query int false "1-indexed page"
// @Param size query int false "Page size, default 10"
// @Success 200 {object} model.PageResponse[model.JobPost]
// @Router /job-posts/pending [get]
func (jc *JobPostController) GetPendingPosts(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	page, size := pageParams(c)

	posts, err := jc.Workflow.Pending(p, page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

// GetPostsByCompany lists a company's active posts. Public.
// @Summary Get active job posts of one company
// @Tags Jobpost
// @Produce json
// @Param id path integer true "Company ID"
// @Param page query int false "1-indexed page"
// @Param size query int false "Page size, default 10"
// @Success 200 {object} model.PageResponse[model.JobPost]
// @Failure 404 {object} utilities.ErrorResponse "Company not found"
// @Router /companies/{id}/job-posts [get]
func (jc *JobPostController) GetPostsByCompany(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	page, size := pageParams(c)

	posts, err := jc.Workflow.ByCompany(id, page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}
