// Package application provides HTTP handlers for job application operations.
package application

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"github.com/whi-0404/TopCV-sub000/internal/authz"
	"github.com/whi-0404/TopCV-sub000/internal/database"
	"github.com/whi-0404/TopCV-sub000/internal/model"
	"github.com/whi-0404/TopCV-sub000/internal/screening"
	"github.com/whi-0404/TopCV-sub000/internal/utilities"
	"github.com/whi-0404/TopCV-sub000/internal/workflow"
)

// ApplicationController handles job application related endpoints
type ApplicationController struct {
	DB        *database.DBinstanceStruct
	Workflow  *workflow.ApplicationWorkflow
	Bulk      *workflow.BulkTransitionCoordinator
	Screening *screening.Client
}

// NewApplicationController creates a new instance of ApplicationController
// with the provided database connection. The screening client may be nil
// when the collaborator is not configured.
func NewApplicationController(db *database.DBinstanceStruct, sc *screening.Client) *ApplicationController {
	return &ApplicationController{
		DB:        db,
		Workflow:  workflow.NewApplicationWorkflow(db),
		Bulk:      workflow.NewBulkTransitionCoordinator(db),
		Screening: sc,
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

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
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

// ApplyHandler handles the creation of a new job application.
// @Summary Apply to an active job post
// @Description Only applicants can access this endpoint. One live application per post.
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param application body workflow.ApplyRequest true "Application information"
// @Success 201 {object} model.Application "Successfully apply to job post"
// @Failure 400 {object} utilities.ErrorResponse "Duplicate, expired deadline, post not active or resume not owned"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as applicant"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Router /applications [post]
func (ac *ApplicationController) ApplyHandler(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req workflow.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	app, err := ac.Workflow.Apply(p, req)
	if err != nil {
		respondError(c, err)
		return
	}

	// The apply transaction has committed; screening runs on its own and
	// lands in a separate transaction whenever it finishes.
	ac.dispatchScreening(app)

	c.JSON(http.StatusCreated, app)
}

func (ac *ApplicationController) dispatchScreening(app *model.Application) {
	if ac.Screening == nil {
		return
	}

	var post model.JobPost
	if err := ac.DB.Select("id", "title", "description", "requirements").
		Where("id = ?", app.JobPostID).First(&post).Error; err != nil {
		log.Printf("screening skipped for application %d: %v", app.ID, err)
		return
	}

	appID := app.ID
	req := screening.Request{
		ApplicationID:  appID,
		JobTitle:       post.Title,
		JobDescription: post.Description,
		Requirements:   post.Requirements,
		ResumeID:       app.ResumeID,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		verdict, err := ac.Screening.Screen(ctx, req)
		if err != nil {
			log.Printf("screening failed for application %d: %v", appID, err)
			return
		}
		ann := model.ScreeningAnnotation{
			ScreeningDecision: verdict.Decision,
			ScreeningScore:    verdict.Score,
			MatchedPoints:     pq.StringArray(verdict.MatchedPoints),
			UnmatchedPoints:   pq.StringArray(verdict.UnmatchedPoints),
		}
		if err := ac.Workflow.AttachScreening(appID, ann); err != nil {
			log.Printf("failed to attach screening for application %d: %v", appID, err)
		}
	}()
}

// WithdrawHandler withdraws the caller's application.
// @Summary Withdraw an application
// @Description Allowed while the application is pending or reviewing
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "Application ID"
// @Success 200 {object} utilities.MessageResponse
// @Failure 400 {object} utilities.ErrorResponse "Already withdrawn or past review"
// @Failure 403 {object} utilities.ErrorResponse "Not the owning applicant"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Router /applications/{id} [delete]
func (ac *ApplicationController) WithdrawHandler(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := ac.Workflow.Withdraw(p, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Application withdrawn"})
}

// UpdateStatusHandler moves one application along the review pipeline.
// @Summary Update application status
// @Description Only the employer owning the job post may review
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "Application ID"
// @Param status body object true "New status"
// @Success 200 {object} model.Application
// @Failure 400 {object} utilities.ErrorResponse "Unknown status or transition not allowed"
// @Failure 403 {object} utilities.ErrorResponse "Not the owning employer"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Router /applications/{id}/status [patch]
func (ac *ApplicationController) UpdateStatusHandler(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Status must be provided",
		})
		return
	}

	app, err := ac.Workflow.UpdateStatus(p, id, body.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// BulkUpdateStatusHandler applies one status to a batch of applications.
// @Summary Bulk update application status
// @Description Items the review table cannot move are reported as skipped
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param body body object true "Application ids and new status"
// @Success 200 {object} workflow.BulkResult
// @Failure 400 {object} utilities.ErrorResponse "Empty id list or unknown status"
// @Failure 403 {object} utilities.ErrorResponse "Batch contains another employer's application"
// @Failure 404 {object} utilities.ErrorResponse "Some applications not found"
// @Router /applications/bulk-status [patch]
func (ac *ApplicationController) BulkUpdateStatusHandler(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var body struct {
		ApplicationIDs []uint `json:"application_ids"`
		Status         string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Application ids and status must be provided",
		})
		return
	}

	result, err := ac.Bulk.BulkUpdateStatus(p, body.ApplicationIDs, body.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetMyApplications lists the caller's applications, newest first.
// @Summary Get my applications
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param page query int false "1-indexed page"
// @Param size query int false "Page size, default 10"
// @Success 200 {object} model.PageResponse[model.Application]
// @Router /applications/my [get]
func (ac *ApplicationController) GetMyApplications(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	page, size := pageParams(c)

	apps, err := ac.Workflow.ListMine(p, page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, apps)
}

// GetJobApplications lists applications against one of the employer's posts.
// @Summary Get applications for a job post
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param jobId path integer true "Job post ID"
// @Param page query int false "1-indexed page"
// @Param size query int false "Page size, default 10"
// @Success 200 {object} model.PageResponse[model.Application]
// @Failure 403 {object} utilities.ErrorResponse "Not the owning employer"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Router /applications/job/{jobId} [get]
func (ac *ApplicationController) GetJobApplications(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	jobID, ok := pathID(c, "jobId")
	if !ok {
		return
	}
	page, size := pageParams(c)

	apps, err := ac.Workflow.ListForJob(p, jobID, page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, apps)
}

// GetReceivedApplications lists every application against the employer's posts.
// @Summary Get all received applications
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param page query int false "1-indexed page"
// @Param size query int false "Page size, default 10"
// @Success 200 {object} model.PageResponse[model.Application]
// @Router /applications/received [get]
func (ac *ApplicationController) GetReceivedApplications(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	page, size := pageParams(c)

	apps, err := ac.Workflow.ListReceived(p, page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, apps)
}

// AttachScreeningHandler records a screening verdict on an application.
// @Summary Attach a screening verdict
// @Description Used by the screening collaborator; the verdict is stored verbatim
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "Application ID"
// @Param verdict body screening.Verdict true "Screening verdict"
// @Success 200 {object} utilities.MessageResponse
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Router /applications/{id}/screening [post]
func (ac *ApplicationController) AttachScreeningHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var verdict screening.Verdict
	if err := c.ShouldBindJSON(&verdict); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	ann := model.ScreeningAnnotation{
		ScreeningDecision: verdict.Decision,
		ScreeningScore:    verdict.Score,
		MatchedPoints:     pq.StringArray(verdict.MatchedPoints),
		UnmatchedPoints:   pq.StringArray(verdict.UnmatchedPoints),
	}
	if err := ac.Workflow.AttachScreening(id, ann); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Screening verdict recorded"})
}
