package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whi-0404/TopCV-sub000/internal/database"
	"github.com/whi-0404/TopCV-sub000/internal/model"
)

func TestCreateJobPostStartsPending(t *testing.T) {
	wf := NewJobPostWorkflow(testDB)

	post, err := wf.Create(principalFor(database.TestUserEmployer1), JobPostCreation{
		EditableJobPostInfo: model.EditableJobPostInfo{
			Title:       "Platform Engineer",
			Description: "Build internal tooling",
			HiringQuota: 2,
		},
		TypeID:   &database.TestJobTypeFullTime.ID,
		LevelID:  &database.TestJobLevelSenior.ID,
		SkillIDs: []uint{database.TestSkillGo.ID, database.TestSkillSQL.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, model.JobPostPending, post.Status)
	assert.Equal(t, 0, post.AppliedCount)
	assert.Equal(t, database.TestCompany1.ID, post.CompanyID)
	assert.Len(t, post.Skills, 2)
}

func TestCreateJobPostRequiresEmployer(t *testing.T) {
	wf := NewJobPostWorkflow(testDB)

	_, err := wf.Create(principalFor(database.TestApplicant1), JobPostCreation{
		EditableJobPostInfo: model.EditableJobPostInfo{Title: "nope"},
	})
	assert.True(t, IsKind(err, KindUnauthorized))

	_, err = wf.Create(principalFor(database.TestAdminUser), JobPostCreation{
		EditableJobPostInfo: model.EditableJobPostInfo{Title: "nope"},
	})
	assert.True(t, IsKind(err, KindUnauthorized), "admins do not own companies")
}

func TestCreateJobPostRejectsPastDeadline(t *testing.T) {
	wf := NewJobPostWorkflow(testDB)

	past := time.Now().AddDate(0, 0, -1)
	_, err := wf.Create(principalFor(database.TestUserEmployer1), JobPostCreation{
		EditableJobPostInfo: model.EditableJobPostInfo{Title: "late", Deadline: &past},
	})
	assert.True(t, IsKind(err, KindBadRequest))
}

func TestCreateJobPostUnknownReferences(t *testing.T) {
	wf := NewJobPostWorkflow(testDB)

	bogus := uint(999999)
	_, err := wf.Create(principalFor(database.TestUserEmployer1), JobPostCreation{
		EditableJobPostInfo: model.EditableJobPostInfo{Title: "bad type"},
		TypeID:              &bogus,
	})
	assert.True(t, IsKind(err, KindBadRequest))

	_, err = wf.Create(principalFor(database.TestUserEmployer1), JobPostCreation{
		EditableJobPostInfo: model.EditableJobPostInfo{Title: "bad skills"},
		SkillIDs:            []uint{bogus},
	})
	assert.True(t, IsKind(err, KindBadRequest))
}

func TestJobPostLifecycle(t *testing.T) {
	wf := NewJobPostWorkflow(testDB)
	owner := principalFor(database.TestUserEmployer1)
	admin := principalFor(database.TestAdminUser)

	post := newPendingPost(t, database.TestUserEmployer1, "Lifecycle Post", nil)

	// PENDING cannot be closed, only moderated.
	assert.True(t, IsKind(wf.Close(owner, post.ID), KindPreconditionFailed))

	require.NoError(t, wf.Approve(admin, post.ID))
	require.NoError(t, wf.Close(owner, post.ID))
	require.NoError(t, wf.Reopen(owner, post.ID))

	var loaded model.JobPost
	require.NoError(t, testDB.First(&loaded, post.ID).Error)
	assert.Equal(t, model.JobPostActive, loaded.Status)
}

func TestModerationRequiresAdmin(t *testing.T) {
	wf := NewJobPostWorkflow(testDB)
	owner := principalFor(database.TestUserEmployer1)

	post := newPendingPost(t, database.TestUserEmployer1, "Needs Moderation", nil)

	assert.True(t, IsKind(wf.Approve(owner, post.ID), KindUnauthorized))
	assert.True(t, IsKind(wf.Reject(owner, post.ID), KindUnauthorized))
	assert.True(t, IsKind(wf.Suspend(owner, post.ID), KindUnauthorized))
}

func TestRejectedPostIsTerminal(t *testing.T) {
	wf := NewJobPostWorkflow(testDB)
	admin := principalFor(database.TestAdminUser)

	post := newPendingPost(t, database.TestUserEmployer1, "Rejected Post", nil)
	require.NoError(t, wf.Reject(admin, post.ID))

	assert.True(t, IsKind(wf.Approve(admin, post.ID), KindPreconditionFailed))

	// Rejected content cannot be edited back into the queue.
	_, err := wf.Update(principalFor(database.TestUserEmployer1), post.ID, JobPostUpdate{
		EditableJobPostInfo: model.EditableJobPostInfo{Title: "try again"},
	})
	assert.True(t, IsKind(err, KindPreconditionFailed))
}

func TestSuspendActivePost(t *testing.T) {
	wf := NewJobPostWorkflow(testDB)
	admin := principalFor(database.TestAdminUser)

	post := newActivePost(t, database.TestUserEmployer1, "Suspend Target")
	require.NoError(t, wf.Suspend(admin, post.ID))

	var loaded model.JobPost
	require.NoError(t, testDB.First(&loaded, post.ID).Error)
	assert.Equal(t, model.JobPostSuspended, loaded.Status)

	// A suspended post accepts no applications.
	_, err := NewApplicationWorkflow(testDB).Apply(principalFor(database.TestApplicant1), ApplyRequest{
		JobID:    post.ID,
		ResumeID: database.TestResume1.ID,
	})
	assert.True(t, IsKind(err, KindPreconditionFailed))
}

func TestUpdateActivePostResetsToPending(t *testing.T) {
	wf := NewJobPostWorkflow(testDB)
	owner := principalFor(database.TestUserEmployer1)

	post := newActivePost(t, database.TestUserEmployer1, "Live Post")

	updated, err := wf.Update(owner, post.ID, JobPostUpdate{
		EditableJobPostInfo: model.EditableJobPostInfo{Title: "Live Post (revised)"},
	})
	require.NoError(t, err)

	assert.Equal(t, model.JobPostPending, updated.Status, "content change on a live post requires re-moderation")
	assert.Equal(t, "Live Post (revised)", updated.Title)
	assert.Equal(t, "test post", updated.Description, "untouched fields keep their value")
}

func TestUpdatePendingPostStaysPending(t *testing.T) {
	wf := NewJobPostWorkflow(testDB)

	post := newPendingPost(t, database.TestUserEmployer1, "Draft Post", nil)

	updated, err := wf.Update(principalFor(database.TestUserEmployer1), post.ID, JobPostUpdate{
		EditableJobPostInfo: model.EditableJobPostInfo{Location: "Da Nang"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.JobPostPending, updated.Status)
	assert.Equal(t, "Da Nang", updated.Location)
}

func TestUpdateForeignPost(t *testing.T) {
	wf := NewJobPostWorkflow(testDB)

	post := newPendingPost(t, database.TestUserEmployer1, "Company 1 Post", nil)

	_, err := wf.Update(principalFor(database.TestUserEmployer2), post.ID, JobPostUpdate{
		EditableJobPostInfo: model.EditableJobPostInfo{Title: "hijack"},
	})
	assert.True(t, IsKind(err, KindUnauthorized))

	assert.True(t, IsKind(
		wf.Delete(principalFor(database.TestUserEmployer2), post.ID), KindUnauthorized))
}

func TestReopenAfterDeadline(t *testing.T) {
	wf := NewJobPostWorkflow(testDB)
	owner := principalFor(database.TestUserEmployer1)

	post := newActivePost(t, database.TestUserEmployer1, "Soon Expired")
	require.NoError(t, wf.Close(owner, post.ID))

	// Expire the post under the closed state.
	past := time.Now().AddDate(0, 0, -2)
	require.NoError(t, testDB.Model(&model.JobPost{}).
		Where("id = ?", post.ID).
		UpdateColumn("deadline", past).Error)

	assert.True(t, IsKind(wf.Reopen(owner, post.ID), KindPreconditionFailed))
}

func TestDeleteBlockedByApplications(t *testing.T) {
	wf := NewJobPostWorkflow(testDB)
	owner := principalFor(database.TestUserEmployer1)

	post := newActivePost(t, database.TestUserEmployer1, "Popular Post")
	newApplication(t, database.TestApplicant1, database.TestResume1.ID, post.ID)

	assert.True(t, IsKind(wf.Delete(owner, post.ID), KindPreconditionFailed))

	// A draft that never went live deletes fine.
	draft := newPendingPost(t, database.TestUserEmployer1, "Doomed Draft", nil)
	require.NoError(t, wf.Delete(owner, draft.ID))
	assert.True(t, IsKind(wf.Delete(owner, draft.ID), KindNotFound))
}

func TestDeleteAfterEveryApplicationWithdrawn(t *testing.T) {
	wf := NewJobPostWorkflow(testDB)
	appWf := NewApplicationWorkflow(testDB)
	owner := principalFor(database.TestUserEmployer1)

	post := newActivePost(t, database.TestUserEmployer1, "Abandoned Post")
	app := newApplication(t, database.TestApplicant1, database.TestResume1.ID, post.ID)
	require.NoError(t, appWf.Withdraw(principalFor(database.TestApplicant1), app.ID))

	// With the counter back at zero the delete goes through, and it takes
	// the withdrawn application rows with it.
	require.NoError(t, wf.Delete(owner, post.ID))

	var count int64
	require.NoError(t, testDB.Model(&model.Application{}).Where("job_post_id = ?", post.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestLifecycleOnMissingPost(t *testing.T) {
	wf := NewJobPostWorkflow(testDB)
	admin := principalFor(database.TestAdminUser)

	assert.True(t, IsKind(wf.Approve(admin, 999999), KindNotFound))
	assert.True(t, IsKind(wf.Close(principalFor(database.TestUserEmployer1), 999999), KindNotFound))
}
