// Package server contain implementation of go-gin-server and each route handlers
package server

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/whi-0404/TopCV-sub000/internal/auth"
	"github.com/whi-0404/TopCV-sub000/internal/controller/application"
	"github.com/whi-0404/TopCV-sub000/internal/controller/company"
	"github.com/whi-0404/TopCV-sub000/internal/controller/jobpost"
	"github.com/whi-0404/TopCV-sub000/internal/controller/reference"
	"github.com/whi-0404/TopCV-sub000/internal/controller/resume"
	"github.com/whi-0404/TopCV-sub000/internal/middleware"
	"github.com/whi-0404/TopCV-sub000/internal/model"
)

// RegisterRoutes will register each http endpoint routes to bound Server instance
func (s *MyServer) RegisterRoutes() http.Handler {
	r := gin.Default()

	allowOrginsStr := os.Getenv("ALLOW_ORIGIN")
	allowOrgins := strings.Split(allowOrginsStr, ",")

	googleOauth := &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_AUTH_CLIENT"),
		ClientSecret: os.Getenv("GOOGLE_AUTH_SECRET"),
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint:    google.Endpoint,
		RedirectURL: os.Getenv("OAUTH_REDIRECT_URL"),
	}

	gAuth := auth.NewOauthLoginHandler(s.DB, googleOauth, "https://www.googleapis.com/oauth2/v2/userinfo")
	lAuth := auth.NewLocalAuthHandler(s.DB)
	jobPostCtrl := jobpost.NewJobPostController(s.DB)
	applicationCtrl := application.NewApplicationController(s.DB, s.Screening)
	resumeCtrl := resume.NewResumeController(s.DB, s.Storage)
	companyCtrl := company.NewCompanyController(s.DB, s.Storage)
	referenceCtrl := reference.NewReferenceController(s.DB)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrgins, // Add your frontend URL
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true, // Enable cookies/auth
	}))
	r.Use(middleware.EnvRateLimitMiddleware())

	r.GET("/", s.HelloWorldHandler)
	r.GET("/health", s.healthHandler)
	v1 := r.Group("/api/v1")
	{
		authRoute := v1.Group("/auth")
		{
			authRoute.POST("google", gAuth.GoogleLoginHandler)
			authRoute.POST("login", lAuth.LoginHandler)
			authRoute.POST("register", lAuth.RegisterHandler)
		}

		// Public browsing endpoints
		v1.GET("/job-posts", jobPostCtrl.GetPosts)
		v1.GET("/job-posts/:id", jobPostCtrl.GetPostByID)
		v1.GET("/companies/:id", companyCtrl.GetCompany)
		v1.GET("/companies/:id/logo", companyCtrl.DownloadLogo)
		v1.GET("/companies/:id/job-posts", jobPostCtrl.GetPostsByCompany)
		v1.GET("/job-types", referenceCtrl.GetJobTypes)
		v1.GET("/job-levels", referenceCtrl.GetJobLevels)
		v1.GET("/skills", referenceCtrl.GetSkills)

		needAuth := v1.Group("")
		{
			needAuth.Use(middleware.RequireAuth(s.DB))

			needAuth.GET("/resumes/:id", resumeCtrl.DownloadResume)

			applicantRoute := needAuth.Group("")
			{
				applicantRoute.Use(middleware.CheckRole(model.RoleApplicant))
				applicantRoute.POST("/applications", applicationCtrl.ApplyHandler)
				applicantRoute.DELETE("/applications/:id", applicationCtrl.WithdrawHandler)
				applicantRoute.GET("/applications/my", applicationCtrl.GetMyApplications)
				applicantRoute.POST("/resumes", middleware.SizeLimit(10<<20), resumeCtrl.UploadResume)
				applicantRoute.GET("/resumes/my", resumeCtrl.MyResumes)
			}

			employerRoute := needAuth.Group("")
			{
				employerRoute.Use(middleware.CheckRole(model.RoleEmployer))
				employerRoute.POST("/job-posts", jobPostCtrl.CreateJobPostHandler)
				employerRoute.PATCH("/job-posts/:id", jobPostCtrl.EditJobPost)
				employerRoute.DELETE("/job-posts/:id", jobPostCtrl.DeleteJobPost)
				employerRoute.PATCH("/job-posts/:id/close", jobPostCtrl.CloseJobPost)
				employerRoute.PATCH("/job-posts/:id/reopen", jobPostCtrl.ReopenJobPost)
				employerRoute.GET("/job-posts/my", jobPostCtrl.GetMyPosts)

				employerRoute.PATCH("/applications/bulk-status", applicationCtrl.BulkUpdateStatusHandler)
				employerRoute.PATCH("/applications/:id/status", applicationCtrl.UpdateStatusHandler)
				employerRoute.GET("/applications/job/:jobId", applicationCtrl.GetJobApplications)
				employerRoute.GET("/applications/received", applicationCtrl.GetReceivedApplications)

				employerRoute.GET("/companies/my", companyCtrl.MyCompany)
				employerRoute.PATCH("/companies/my", companyCtrl.EditProfile)
				employerRoute.POST("/companies/my/logo", middleware.SizeLimit(10<<20), companyCtrl.UploadLogo)
			}

			needAdmin := needAuth.Group("")
			{
				needAdmin.Use(middleware.CheckRole(model.RoleAdmin))
				needAdmin.PATCH("/job-posts/:id/approve", jobPostCtrl.ApproveJobPost)
				needAdmin.PATCH("/job-posts/:id/reject", jobPostCtrl.RejectJobPost)
				needAdmin.PATCH("/job-posts/:id/suspend", jobPostCtrl.SuspendJobPost)
				needAdmin.GET("/job-posts/pending", jobPostCtrl.GetPendingPosts)

				needAdmin.POST("/applications/:id/screening", applicationCtrl.AttachScreeningHandler)

				needAdmin.POST("/job-types", referenceCtrl.CreateJobType)
				needAdmin.DELETE("/job-types/:id", referenceCtrl.DeleteJobType)
				needAdmin.POST("/job-levels", referenceCtrl.CreateJobLevel)
				needAdmin.DELETE("/job-levels/:id", referenceCtrl.DeleteJobLevel)
				needAdmin.POST("/skills", referenceCtrl.CreateSkill)
				needAdmin.DELETE("/skills/:id", referenceCtrl.DeleteSkill)
			}
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// HelloWorldHandler handle request by return message "Hello World"
func (s *MyServer) HelloWorldHandler(c *gin.Context) {
	resp := make(map[string]string)
	resp["message"] = "Hello World"

	c.JSON(http.StatusOK, resp)
}

func (s *MyServer) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.DB.Health())
}
