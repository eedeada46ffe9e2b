// Package company provides HTTP handlers for company profiles.
package company

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

const logoObjectPrefix = "logos"

// CompanyController handles company profile endpoints
type CompanyController struct {
	DB      *database.DBinstanceStruct
	Storage storage.Client
}

// NewCompanyController creates a new instance of CompanyController
func NewCompanyController(db *database.DBinstanceStruct, st storage.Client) *CompanyController {
	return &CompanyController{DB: db, Storage: st}
}

// EditProfileRequest carries the editable company profile fields. Empty
// fields keep their current value.
type EditProfileRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Website     string `json:"website"`
	Address     string `json:"address"`
}

// GetCompany returns one company profile.
// @Summary Get a company profile
// @Tags Company
// @Produce json
// @Param id path integer true "Company ID"
// @Success 200 {object} model.Company
// @Failure 404 {object} utilities.ErrorResponse "Company not found"
// @Router /companies/{id} [get]
func (cc *CompanyController) GetCompany(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid id"})
		return
	}

	var company model.Company
	if err := cc.DB.First(&company, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Company not found"})
		return
	}

	c.JSON(http.StatusOK, company)
}

// MyCompany returns the caller's own company profile.
// @Summary Get my company profile
// @Tags Company
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} model.Company
// @Failure 404 {object} utilities.ErrorResponse "Caller has no company"
// @Router /companies/my [get]
func (cc *CompanyController) MyCompany(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var company model.Company
	if err := cc.DB.Where("user_id = ?", user.ID).First(&company).Error; err != nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Company not found"})
		return
	}

	c.JSON(http.StatusOK, company)
}

// EditProfile updates the caller's company profile.
// @Summary Edit my company profile
// @Description Empty fields are left untouched
// @Tags Company
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param profile body EditProfileRequest true "Profile fields to change"
// @Success 200 {object} model.Company
// @Failure 404 {object} utilities.ErrorResponse "Caller has no company"
// @Router /companies/my [patch]
func (cc *CompanyController) EditProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var req EditProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	var company model.Company
	if err := cc.DB.Where("user_id = ?", user.ID).First(&company).Error; err != nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Company not found"})
		return
	}

	utilities.MergeNonEmpty(&company, &req)

	if err := cc.DB.Save(&company).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update company: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, company)
}

// UploadLogo replaces the caller's company logo.
// @Summary Upload logo file for company
// @Description Only file that smaller than 10 MB with .jpg, .jpeg, or .png extension is permitted
// @Tags Company
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param logo formData file true "Upload your logo file"
// @Success 200 {object} model.Company "Successfully upload logo"
// @Failure 413 {object} utilities.ErrorResponse "File size is larger than 10 MB"
// @Failure 415 {object} utilities.ErrorResponse "File extension is not allowed"
// @Failure 500 {object} utilities.ErrorResponse "Database or storage error"
// @Router /companies/my/logo [post]
func (cc *CompanyController) UploadLogo(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var company model.Company
	if err := cc.DB.Where("user_id = ?", user.ID).First(&company).Error; err != nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Company not found"})
		return
	}

	rawFile, err := c.FormFile("logo")
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

	allowedExtensions := map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
	}
	extension := strings.ToLower(filepath.Ext(rawFile.Filename))
	if !allowedExtensions[extension] {
		c.JSON(http.StatusUnsupportedMediaType, utilities.ErrorResponse{
			Error: fmt.Sprintf("Unsupported file extension: %s", extension),
		})
		return
	}

	if cc.Storage == nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: "Cloud storage is not configured",
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

	objectName := fmt.Sprintf("%s/%s%s", logoObjectPrefix, uuid.NewString(), extension)
	if err := cc.Storage.UploadFile(c.Request.Context(), objectName, bytes.NewReader(fileBytes)); err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to store logo: %s", err.Error()),
		})
		return
	}

	company.LogoPath = objectName
	if err := cc.DB.Save(&company).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update company: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, company)
}

// DownloadLogo streams a company's logo.
// @Summary Retrieve a company logo
// @Tags Company
// @Produce octet-stream
// @Param id path integer true "Company ID"
// @Success 200 {string} binary "Logo content"
// @Failure 404 {object} utilities.ErrorResponse "Company or logo not found"
// @Router /companies/{id}/logo [get]
func (cc *CompanyController) DownloadLogo(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid id"})
		return
	}

	var company model.Company
	if err := cc.DB.First(&company, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Company not found"})
		return
	}
	if company.LogoPath == "" {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Company has no logo"})
		return
	}
	if cc.Storage == nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: "Cloud storage is not configured",
		})
		return
	}

	reader, size, err := cc.Storage.DownloadFile(c.Request.Context(), company.LogoPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to download logo: %s", err.Error()),
		})
		return
	}
	defer func() {
		if err := reader.Close(); err != nil {
			log.Printf("failed to close storage reader: %v", err)
		}
	}()

	c.Writer.Header().Set("Content-Type", "application/octet-stream")
	if size > 0 {
		c.Writer.Header().Set("Content-Length", fmt.Sprint(size))
	}
	if _, err := io.Copy(c.Writer, reader); err != nil && !c.Writer.Written() {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: "Failed to send file content",
		})
	}
}
