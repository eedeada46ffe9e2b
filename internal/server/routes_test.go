package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whi-0404/TopCV-sub000/internal/auth"
	"github.com/whi-0404/TopCV-sub000/internal/database"
	"github.com/whi-0404/TopCV-sub000/internal/testutil"
)

var (
	testDB     *database.DBinstanceStruct
	testRouter *gin.Engine
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("ALLOW_ORIGIN", "http://localhost:3000")
	os.Setenv("RATE_LIMIT_REQUESTS_PER_SECOND", "1000")

	teardown, db, err := database.GetTestDB()
	if err != nil {
		log.Fatalf("Failed to start test database: %v", err)
	}
	testDB = db

	s := &MyServer{DB: db}
	testRouter = s.RegisterRoutes().(*gin.Engine)

	code := m.Run()

	if err := teardown(context.Background()); err != nil {
		log.Printf("Failed to terminate test container: %v", err)
	}
	os.Exit(code)
}

func token(t *testing.T, username string) string {
	t.Helper()
	tok, err := auth.GetAccessToken(t, testDB, username, database.TestSeedPassword)
	require.NoError(t, err)
	return tok
}

func TestHelloWorldAndHealth(t *testing.T) {
	rec, resp := testutil.MakeJSONRequest(nil, "", testRouter, "/", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello World", resp["message"])

	rec, resp = testutil.MakeJSONRequest(nil, "", testRouter, "/health", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "up", resp["status"])
}

func TestRegisterAndLogin(t *testing.T) {
	rec, resp := testutil.MakeJSONRequest(gin.H{
		"username": "fresh_applicant",
		"password": "Password123",
		"role":     "applicant",
	}, "", testRouter, "/api/v1/auth/register", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code, "body: %v", resp)
	assert.NotEmpty(t, resp["access_token"])

	// Duplicate username is rejected.
	rec, _ = testutil.MakeJSONRequest(gin.H{
		"username": "fresh_applicant",
		"password": "Password123",
		"role":     "applicant",
	}, "", testRouter, "/api/v1/auth/register", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Employer registration needs a company name.
	rec, _ = testutil.MakeJSONRequest(gin.H{
		"username": "fresh_employer",
		"password": "Password123",
		"role":     "employer",
	}, "", testRouter, "/api/v1/auth/register", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp = testutil.MakeJSONRequest(gin.H{
		"username": "fresh_applicant",
		"password": "Password123",
	}, "", testRouter, "/api/v1/auth/login", http.MethodPost)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, resp["access_token"])

	rec, _ = testutil.MakeJSONRequest(gin.H{
		"username": "fresh_applicant",
		"password": "wrong-password",
	}, "", testRouter, "/api/v1/auth/login", http.MethodPost)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPublicBrowsing(t *testing.T) {
	rec, resp := testutil.MakeJSONRequest(nil, "", testRouter, "/api/v1/job-posts", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, resp["data"])

	endpoint := "/api/v1/job-posts/999999"
	rec, _ = testutil.MakeJSONRequest(nil, "", testRouter, endpoint, http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, "", testRouter, "/api/v1/skills", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthGuards(t *testing.T) {
	// No token at all: the bearer header cannot be parsed.
	rec, _ := testutil.MakeJSONRequest(gin.H{}, "", testRouter, "/api/v1/applications", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Wrong role: employers cannot apply.
	rec, _ = testutil.MakeJSONRequest(gin.H{}, token(t, "employer_1"), testRouter, "/api/v1/applications", http.MethodPost)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Wrong role: applicants cannot create job posts.
	rec, _ = testutil.MakeJSONRequest(gin.H{"title": "x"}, token(t, "applicant_1"), testRouter, "/api/v1/job-posts", http.MethodPost)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Wrong role: employers cannot moderate.
	rec, _ = testutil.MakeJSONRequest(gin.H{}, token(t, "employer_1"), testRouter, "/api/v1/job-posts/pending", http.MethodGet)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// TestHiringFlow drives a post and an application through the whole
// lifecycle over HTTP: create, moderate, apply, review, and the bulk path.
func TestHiringFlow(t *testing.T) {
	employerToken := token(t, "employer_1")
	applicantToken := token(t, "applicant_1")
	adminToken := token(t, "admin_user")

	// Employer drafts a post.
	rec, resp := testutil.MakeJSONRequest(gin.H{
		"title":        "Site Reliability Engineer",
		"description":  "Keep the lights on.",
		"hiring_quota": 1,
	}, employerToken, testRouter, "/api/v1/job-posts", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code, "body: %v", resp)
	require.Equal(t, "PENDING", resp["status"])
	postID := uint(resp["id"].(float64))
	postPath := "/api/v1/job-posts/" + itoa(postID)

	// Applying before approval fails.
	rec, _ = testutil.MakeJSONRequest(gin.H{
		"job_id":    postID,
		"resume_id": database.TestResume1.ID,
	}, applicantToken, testRouter, "/api/v1/applications", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Admin approves.
	rec, _ = testutil.MakeJSONRequest(nil, adminToken, testRouter, postPath+"/approve", http.MethodPatch)
	require.Equal(t, http.StatusOK, rec.Code)

	// Applicant applies.
	rec, resp = testutil.MakeJSONRequest(gin.H{
		"job_id":       postID,
		"resume_id":    database.TestResume1.ID,
		"cover_letter": "Hello!",
	}, applicantToken, testRouter, "/api/v1/applications", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code, "body: %v", resp)
	assert.Equal(t, "PENDING", resp["status"])
	appID := uint(resp["id"].(float64))
	appPath := "/api/v1/applications/" + itoa(appID)

	// Applying twice fails.
	rec, _ = testutil.MakeJSONRequest(gin.H{
		"job_id":    postID,
		"resume_id": database.TestResume1.ID,
	}, applicantToken, testRouter, "/api/v1/applications", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The wrong employer cannot review it.
	rec, _ = testutil.MakeJSONRequest(gin.H{"status": "REVIEWING"},
		token(t, "employer_2"), testRouter, appPath+"/status", http.MethodPatch)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The owner moves it along.
	rec, resp = testutil.MakeJSONRequest(gin.H{"status": "REVIEWING"},
		employerToken, testRouter, appPath+"/status", http.MethodPatch)
	require.Equal(t, http.StatusOK, rec.Code, "body: %v", resp)
	assert.Equal(t, "REVIEWING", resp["status"])

	// Illegal jump is a 400.
	rec, _ = testutil.MakeJSONRequest(gin.H{"status": "HIRED"},
		employerToken, testRouter, appPath+"/status", http.MethodPatch)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Bulk path reports the partial outcome.
	rec, resp = testutil.MakeJSONRequest(gin.H{
		"application_ids": []uint{appID},
		"status":          "SHORTLISTED",
	}, employerToken, testRouter, "/api/v1/applications/bulk-status", http.MethodPatch)
	require.Equal(t, http.StatusOK, rec.Code, "body: %v", resp)
	updated := resp["updated_ids"].([]interface{})
	require.Len(t, updated, 1)

	// Past review, the applicant cannot withdraw anymore.
	rec, _ = testutil.MakeJSONRequest(nil, applicantToken, testRouter, appPath, http.MethodDelete)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Listings see the application on both sides.
	rec, resp = testutil.MakeJSONRequest(nil, applicantToken, testRouter, "/api/v1/applications/my", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.GreaterOrEqual(t, resp["total_elements"].(float64), float64(1))

	rec, resp = testutil.MakeJSONRequest(nil, employerToken, testRouter,
		"/api/v1/applications/job/"+itoa(postID), http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), resp["total_elements"].(float64))
}

func TestReferenceAdminOnly(t *testing.T) {
	adminToken := token(t, "admin_user")

	rec, resp := testutil.MakeJSONRequest(gin.H{"name": "Rust"},
		adminToken, testRouter, "/api/v1/skills", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code, "body: %v", resp)

	// Duplicate names are rejected.
	rec, _ = testutil.MakeJSONRequest(gin.H{"name": "Rust"},
		adminToken, testRouter, "/api/v1/skills", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Non-admins cannot write the catalogue.
	rec, _ = testutil.MakeJSONRequest(gin.H{"name": "Scala"},
		token(t, "employer_1"), testRouter, "/api/v1/skills", http.MethodPost)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
