package database

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	m "github.com/whi-0404/TopCV-sub000/internal/model"
	"github.com/whi-0404/TopCV-sub000/internal/utilities"
)

var testDBInstance *DBinstanceStruct
var teardown func(context.Context) error

// Exported test users & fixtures
var (
	TestAdminUser     m.User
	TestApplicant1    m.User
	TestApplicant2    m.User
	TestUserEmployer1 m.User
	TestUserEmployer2 m.User
	TestCompany1      m.Company
	TestCompany2      m.Company

	// Add exported plain password
	TestSeedPassword = "SeedPass123!"

	// Exported seeded résumés, one per applicant
	TestResume1 m.Resume
	TestResume2 m.Resume

	// Exported seeded job posts
	TestJobPostActive  m.JobPost // company 1, open for applications
	TestJobPostPending m.JobPost // company 1, waiting for moderation
	TestJobPostExpired m.JobPost // company 2, active but past its deadline
	TestJobPostClosed  m.JobPost // company 2, closed by the employer

	// Exported seeded catalogue rows
	TestJobTypeFullTime m.JobType
	TestJobLevelSenior  m.JobLevel
	TestSkillGo         m.Skill
	TestSkillSQL        m.Skill
)

// GetTestDB starts a PostgreSQL test container and returns a teardown function,
// the DB instance, and any error encountered during setup.
func GetTestDB() (func(context.Context) error, *DBinstanceStruct, error) {

	if testDBInstance != nil && teardown != nil {
		return teardown, testDBInstance, nil
	}

	// Database configuration
	var (
		dbName = "database"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:latest",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), nat.Port("5432/tcp"))
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	config := &DBConfig{
		useConstr: true,
		Constr:    fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbHost, dbPort.Port(), dbUser, dbPwd, dbName),
	}

	db, err := NewDBInstance(config)
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	if err := seedTestData(db); err != nil {
		_ = dbContainer.Terminate(context.Background())
		return nil, nil, err
	}

	testDBInstance = db
	teardown = dbContainer.Terminate

	return dbContainer.Terminate, db, nil
}

// seedTestData inserts sample applicants, employers with companies, résumés
// and job posts in every lifecycle state tests care about.
func seedTestData(db *DBinstanceStruct) error {
	var userCount int64
	if err := db.Model(&m.User{}).Count(&userCount).Error; err != nil {
		return err
	}

	// Ignore admin user that got create during NewDBInstance
	if userCount > 1 {
		return loadTestData(db)
	}

	userSpecs := []struct {
		username string
		email    string
		role     string
	}{
		{"applicant_1", "applicant1@example.com", m.RoleApplicant},
		{"applicant_2", "applicant2@example.com", m.RoleApplicant},
		{"employer_1", "employer1@example.com", m.RoleEmployer},
		{"employer_2", "employer2@example.com", m.RoleEmployer},
		{"admin_user", "admin@example.com", m.RoleAdmin},
	}

	// Pre-hash shared password for all seeded users
	hashedPwd, errHash := utilities.HashPassword(TestSeedPassword)
	if errHash != nil {
		return errHash
	}

	users := make([]m.User, 0, len(userSpecs))
	for _, s := range userSpecs {
		users = append(users, m.User{
			ID:       uuid.New(),
			Username: s.username,
			Email:    s.email,
			Role:     s.role,
			Password: hashedPwd,
		})
	}

	if err := db.Create(&users).Error; err != nil {
		return err
	}

	for _, u := range users {
		switch u.Username {
		case "applicant_1":
			TestApplicant1 = u
		case "applicant_2":
			TestApplicant2 = u
		case "employer_1":
			TestUserEmployer1 = u
		case "employer_2":
			TestUserEmployer2 = u
		case "admin_user":
			TestAdminUser = u
		}
	}

	companies := []m.Company{
		{
			UserID:      TestUserEmployer1.ID,
			Name:        "TechNova",
			Description: "Innovative platform solutions",
			Website:     "https://technova.example.com",
			Address:     "Hanoi",
		},
		{
			UserID:      TestUserEmployer2.ID,
			Name:        "DataForge",
			Description: "Data analytics consulting",
			Website:     "https://dataforge.example.com",
			Address:     "Ho Chi Minh City",
		},
	}
	if err := db.Create(&companies).Error; err != nil {
		return err
	}
	TestCompany1 = companies[0]
	TestCompany2 = companies[1]

	resumes := []m.Resume{
		{
			UserID:      TestApplicant1.ID,
			FileName:    "alice_cv.pdf",
			Content:     []byte("%PDF-1.4 seeded resume one"),
			ContentType: "application/pdf",
		},
		{
			UserID:      TestApplicant2.ID,
			FileName:    "bob_cv.pdf",
			Content:     []byte("%PDF-1.4 seeded resume two"),
			ContentType: "application/pdf",
		},
	}
	if err := db.Create(&resumes).Error; err != nil {
		return err
	}
	TestResume1 = resumes[0]
	TestResume2 = resumes[1]

	jobType := m.JobType{Name: "Full-time"}
	jobLevel := m.JobLevel{Name: "Senior"}
	skills := []m.Skill{{Name: "Go"}, {Name: "SQL"}}
	if err := db.Create(&jobType).Error; err != nil {
		return err
	}
	if err := db.Create(&jobLevel).Error; err != nil {
		return err
	}
	if err := db.Create(&skills).Error; err != nil {
		return err
	}
	TestJobTypeFullTime = jobType
	TestJobLevelSenior = jobLevel
	TestSkillGo = skills[0]
	TestSkillSQL = skills[1]

	futureDeadline := time.Now().AddDate(0, 1, 0)
	pastDeadline := time.Now().AddDate(0, 0, -7)

	jobPosts := []m.JobPost{
		{
			CompanyID: TestCompany1.ID,
			Status:    m.JobPostActive,
			TypeID:    &jobType.ID,
			LevelID:   &jobLevel.ID,
			EditableJobPostInfo: m.EditableJobPostInfo{
				Title:        "Backend Engineer",
				Description:  "Work on Go microservices and database layers.",
				Requirements: "Go basics; SQL familiarity",
				Location:     "Hanoi (Hybrid)",
				Salary:       "2000 USD",
				Experience:   "2 years",
				WorkingTime:  "Mon-Fri",
				HiringQuota:  3,
				Deadline:     &futureDeadline,
			},
		},
		{
			CompanyID: TestCompany1.ID,
			Status:    m.JobPostPending,
			EditableJobPostInfo: m.EditableJobPostInfo{
				Title:        "Frontend Developer",
				Description:  "Assist building component library in React.",
				Requirements: "JS/TS fundamentals",
				Location:     "Remote",
				Salary:       "1500 USD",
				HiringQuota:  2,
				Deadline:     &futureDeadline,
			},
		},
		{
			CompanyID: TestCompany2.ID,
			Status:    m.JobPostActive,
			EditableJobPostInfo: m.EditableJobPostInfo{
				Title:        "Data Analyst",
				Description:  "Support data cleansing and dashboard creation.",
				Requirements: "SQL; basic statistics",
				Location:     "Ho Chi Minh City (On-site)",
				Salary:       "1300 USD",
				HiringQuota:  1,
				Deadline:     &pastDeadline,
			},
		},
		{
			CompanyID: TestCompany2.ID,
			Status:    m.JobPostClosed,
			EditableJobPostInfo: m.EditableJobPostInfo{
				Title:        "DevOps Engineer",
				Description:  "Maintain CI pipelines and deployments.",
				Requirements: "Docker; Linux",
				Location:     "Ho Chi Minh City",
				Salary:       "1800 USD",
				HiringQuota:  1,
				Deadline:     &futureDeadline,
			},
		},
	}

	if err := db.Create(&jobPosts).Error; err != nil {
		return err
	}
	TestJobPostActive = jobPosts[0]
	TestJobPostPending = jobPosts[1]
	TestJobPostExpired = jobPosts[2]
	TestJobPostClosed = jobPosts[3]

	return nil
}

// loadTestData populates exported variables when records already exist.
func loadTestData(db *DBinstanceStruct) error {
	var users []m.User
	if err := db.Where("username IN ?", []string{
		"applicant_1", "applicant_2", "employer_1", "employer_2", "admin_user",
	}).Find(&users).Error; err != nil {
		return err
	}
	for _, u := range users {
		switch u.Username {
		case "applicant_1":
			TestApplicant1 = u
		case "applicant_2":
			TestApplicant2 = u
		case "employer_1":
			TestUserEmployer1 = u
		case "employer_2":
			TestUserEmployer2 = u
		case "admin_user":
			TestAdminUser = u
		}
	}

	_ = db.First(&TestCompany1, "user_id = ?", TestUserEmployer1.ID).Error
	_ = db.First(&TestCompany2, "user_id = ?", TestUserEmployer2.ID).Error
	_ = db.First(&TestResume1, "user_id = ?", TestApplicant1.ID).Error
	_ = db.First(&TestResume2, "user_id = ?", TestApplicant2.ID).Error
	_ = db.First(&TestJobTypeFullTime, "name = ?", "Full-time").Error
	_ = db.First(&TestJobLevelSenior, "name = ?", "Senior").Error
	_ = db.First(&TestSkillGo, "name = ?", "Go").Error
	_ = db.First(&TestSkillSQL, "name = ?", "SQL").Error

	var posts []m.JobPost
	if err := db.Order("id ASC").Limit(4).Find(&posts).Error; err == nil {
		if len(posts) > 0 {
			TestJobPostActive = posts[0]
		}
		if len(posts) > 1 {
			TestJobPostPending = posts[1]
		}
		if len(posts) > 2 {
			TestJobPostExpired = posts[2]
		}
		if len(posts) > 3 {
			TestJobPostClosed = posts[3]
		}
	}

	return nil
}
