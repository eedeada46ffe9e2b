package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whi-0404/TopCV-sub000/internal/database"
	"github.com/whi-0404/TopCV-sub000/internal/model"
)

func TestSearchReturnsOnlyLivePosts(t *testing.T) {
	wf := NewJobPostWorkflow(testDB)

	page, err := wf.Search(JobPostSearch{}, 1, 100)
	require.NoError(t, err)

	ids := map[uint]bool{}
	for _, post := range page.Data {
		assert.Equal(t, model.JobPostActive, post.Status)
		assert.False(t, post.DeadlinePassed(todayUTC()))
		ids[post.ID] = true
	}
	assert.False(t, ids[database.TestJobPostPending.ID], "pending posts are not browsable")
	assert.False(t, ids[database.TestJobPostClosed.ID], "closed posts are not browsable")
	assert.False(t, ids[database.TestJobPostExpired.ID], "expired posts are not browsable")
}

func TestSearchByKeywordAndLocation(t *testing.T) {
	wf := NewJobPostWorkflow(testDB)

	post := newActivePost(t, database.TestUserEmployer1, "Quantum Flux Analyst")

	page, err := wf.Search(JobPostSearch{Keyword: "quantum flux"}, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, post.ID, page.Data[0].ID)

	page, err = wf.Search(JobPostSearch{Keyword: "no such opening anywhere"}, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, int64(0), page.TotalElements)
}

func TestSearchBySkill(t *testing.T) {
	wf := NewJobPostWorkflow(testDB)

	post, err := wf.Create(principalFor(database.TestUserEmployer1), JobPostCreation{
		EditableJobPostInfo: model.EditableJobPostInfo{Title: "Skill Tagged Post"},
		SkillIDs:            []uint{database.TestSkillGo.ID},
	})
	require.NoError(t, err)
	require.NoError(t, wf.Approve(principalFor(database.TestAdminUser), post.ID))

	page, err := wf.Search(JobPostSearch{SkillIDs: []uint{database.TestSkillGo.ID}}, 1, 100)
	require.NoError(t, err)

	found := false
	for _, p := range page.Data {
		if p.ID == post.ID {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDetailPreloadsAssociations(t *testing.T) {
	wf := NewJobPostWorkflow(testDB)

	post, err := wf.Detail(database.TestJobPostActive.ID)
	require.NoError(t, err)
	assert.Equal(t, database.TestCompany1.Name, post.Company.Name)
	require.NotNil(t, post.Type)
	assert.Equal(t, database.TestJobTypeFullTime.Name, post.Type.Name)

	_, err = wf.Detail(999999)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestMineListsEveryStatus(t *testing.T) {
	wf := NewJobPostWorkflow(testDB)

	page, err := wf.Mine(principalFor(database.TestUserEmployer2), 1, 100)
	require.NoError(t, err)

	statuses := map[model.JobPostStatus]bool{}
	for _, post := range page.Data {
		assert.Equal(t, database.TestCompany2.ID, post.CompanyID)
		statuses[post.Status] = true
	}
	assert.True(t, statuses[model.JobPostClosed], "own listing includes closed posts")

	// Applicants have no company to list.
	_, err = wf.Mine(principalFor(database.TestApplicant1), 1, 10)
	assert.True(t, IsKind(err, KindPreconditionFailed))
}

func TestByCompanyShowsOnlyActive(t *testing.T) {
	wf := NewJobPostWorkflow(testDB)

	page, err := wf.ByCompany(database.TestCompany2.ID, 1, 100)
	require.NoError(t, err)
	for _, post := range page.Data {
		assert.Equal(t, model.JobPostActive, post.Status)
	}

	_, err = wf.ByCompany(999999, 1, 10)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestPendingQueueIsAdminOnly(t *testing.T) {
	wf := NewJobPostWorkflow(testDB)

	newPendingPost(t, database.TestUserEmployer1, "Moderation Queue Entry", nil)

	page, err := wf.Pending(principalFor(database.TestAdminUser), 1, 100)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, page.TotalElements, int64(1))
	for _, post := range page.Data {
		assert.Equal(t, model.JobPostPending, post.Status)
	}

	_, err = wf.Pending(principalFor(database.TestUserEmployer1), 1, 10)
	assert.True(t, IsKind(err, KindUnauthorized))
}

func TestSearchPagination(t *testing.T) {
	wf := NewJobPostWorkflow(testDB)

	page, err := wf.Search(JobPostSearch{}, 1, 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(page.Data), 2)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.PageSize)
	if page.TotalElements > 2 {
		assert.Greater(t, page.TotalPages, 1)
	}
}
