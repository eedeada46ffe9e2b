// Package resume provides HTTP handlers for résumé file operations.
package resume

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/whi-0404/TopCV-sub000/internal/database"
	"github.com/whi-0404/TopCV-sub000/internal/model"
	"github.com/whi-0404/TopCV-sub000/internal/storage"
	"github.com/whi-0404/TopCV-sub000/internal/utilities"
)

const resumeObjectPrefix = "resumes"

// ResumeController handles résumé related endpoints
type ResumeController struct {
	DB      *database.DBinstanceStruct
	Storage storage.Client
}

// NewResumeController creates a new instance of ResumeController. The
// storage client may be nil, in which case content is stored in the
// database.
func NewResumeController(db *database.DBinstanceStruct, st storage.Client) *ResumeController {
	return &ResumeController{DB: db, Storage: st}
}

// UploadResume stores a new résumé file for the logged in applicant.
// @Summary Upload a résumé
// @Description Only file that smaller than 10 MB with .pdf extension is permitted
// @Tags Resume
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param resume formData file true "Upload your resume file"
// @Success 201 {object} model.Resume "Successfully upload resume"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as applicant"
// @Failure 413 {object} utilities.ErrorResponse "File size is larger than 10 MB"
// @Failure 415 {object} utilities.ErrorResponse "File extension is not allowed"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /resumes [post]
func (rc *ResumeController) UploadResume(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	rawFile, err := c.FormFile("resume")
	var maxBytesError *http.MaxBytesError
	if errors.As(err, &maxBytesError) {
		c.JSON(http.StatusRequestEntityTooLarge, utilities.ErrorResponse{
			Error: err.Error(),
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve file: %s", err.Error()),
		})
		return
	}

	extension := strings.ToLower(filepath.Ext(rawFile.Filename))
	if extension != ".pdf" {
		c.JSON(http.StatusUnsupportedMediaType, utilities.ErrorResponse{
			Error: fmt.Sprintf("Unsupported file extension: %s", extension),
		})
		return
	}

	f, err := rawFile.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Cannot open file"})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("failed to close uploaded file: %v", err)
		}
	}()

	fileBytes, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Cannot read file"})
		return
	}

	resume := model.Resume{
		UserID:      user.ID,
		FileName:    rawFile.Filename,
		ContentType: "application/pdf",
	}

	if rc.Storage != nil {
		objectName := fmt.Sprintf("%s/%s%s", resumeObjectPrefix, uuid.NewString(), extension)
		if err := rc.Storage.UploadFile(c.Request.Context(), objectName, bytes.NewReader(fileBytes)); err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to store resume: %s", err.Error()),
			})
			return
		}
		resume.ObjectPath = &objectName
	} else {
		resume.Content = fileBytes
	}

	if err := rc.DB.Create(&resume).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save resume: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, resume)
}

// MyResumes lists the caller's résumés, newest first.
// @Summary Get my résumés
// @Tags Resume
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {array} model.Resume
// @Router /resumes/my [get]
func (rc *ResumeController) MyResumes(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var resumes []model.Resume
	if err := rc.DB.Where("user_id = ?", user.ID).
		Order("created_at desc").Find(&resumes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, resumes)
}

// DownloadResume streams a résumé file. Besides the owner, an employer may
// read a résumé that was submitted against one of their job posts.
// @Summary Retrieve downloadable résumé
// @Tags Resume
// @Produce octet-stream
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "Resume ID"
// @Success 200 {string} binary "Successfully retrieve file"
// @Failure 403 {object} utilities.ErrorResponse "Resume was not shared with the caller"
// @Failure 404 {object} utilities.ErrorResponse "Resume not found"
// @Router /resumes/{id} [get]
func (rc *ResumeController) DownloadResume(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid id"})
		return
	}

	var resume model.Resume
	if err := rc.DB.First(&resume, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Resume not found"})
		return
	}

	if !rc.mayRead(user, &resume) {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "Resume was not shared with you",
		})
		return
	}

	c.Writer.Header().Set("Content-Disposition", "attachment; filename="+resume.FileName)
	c.Writer.Header().Set("Content-Type", "application/octet-stream")

	if resume.ObjectPath != nil {
		if rc.Storage == nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: "Cloud storage is disabled while the requested file is stored remotely",
			})
			return
		}
		reader, size, err := rc.Storage.DownloadFile(c.Request.Context(), *resume.ObjectPath)
		if err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to download file from storage: %s", err.Error()),
			})
			return
		}
		defer func() {
			if err := reader.Close(); err != nil {
				log.Printf("failed to close storage reader: %v", err)
			}
		}()

		if size > 0 {
			c.Writer.Header().Set("Content-Length", fmt.Sprint(size))
		}
		if _, err := io.Copy(c.Writer, reader); err != nil {
			rc.handleWriterError(c)
		}
		return
	}

	c.Writer.Header().Set("Content-Length", fmt.Sprint(len(resume.Content)))
	if _, err := c.Writer.Write(resume.Content); err != nil {
		rc.handleWriterError(c)
	}
}

// mayRead reports whether user can see the résumé content. Employers get
// access once the résumé arrives on one of their posts.
func (rc *ResumeController) mayRead(user model.User, resume *model.Resume) bool {
	if user.ID == resume.UserID || user.Role == model.RoleAdmin {
		return true
	}
	if user.Role != model.RoleEmployer {
		return false
	}

	var count int64
	rc.DB.Model(&model.Application{}).
		Where("resume_id = ? AND employer_id = ?", resume.ID, user.ID).
		Count(&count)
	return count > 0
}

func (rc *ResumeController) handleWriterError(c *gin.Context) {
	if !c.Writer.Written() {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: "Failed to send file content",
		})
	} else {
		c.Abort()
	}
}
