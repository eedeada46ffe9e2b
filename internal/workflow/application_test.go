package workflow

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whi-0404/TopCV-sub000/internal/database"
	"github.com/whi-0404/TopCV-sub000/internal/model"
)

func TestApplyHappyPath(t *testing.T) {
	post := newActivePost(t, database.TestUserEmployer1, "Apply Target")

	app, err := NewApplicationWorkflow(testDB).Apply(principalFor(database.TestApplicant1), ApplyRequest{
		JobID:       post.ID,
		ResumeID:    database.TestResume1.ID,
		CoverLetter: "I would love to join.",
	})
	require.NoError(t, err)

	assert.Equal(t, model.ApplicationPending, app.Status)
	assert.Equal(t, database.TestApplicant1.ID, app.ApplicantID)
	assert.Equal(t, database.TestUserEmployer1.ID, app.EmployerID)
	assert.Equal(t, 1, appliedCount(t, post.ID))
}

func TestApplyRequiresApplicantRole(t *testing.T) {
	post := newActivePost(t, database.TestUserEmployer1, "Role Gate")

	_, err := NewApplicationWorkflow(testDB).Apply(principalFor(database.TestUserEmployer2), ApplyRequest{
		JobID:    post.ID,
		ResumeID: database.TestResume1.ID,
	})
	assert.True(t, IsKind(err, KindUnauthorized))
}

func TestApplyToInactivePost(t *testing.T) {
	wf := NewApplicationWorkflow(testDB)

	pending := newPendingPost(t, database.TestUserEmployer1, "Still Draft", nil)
	_, err := wf.Apply(principalFor(database.TestApplicant1), ApplyRequest{
		JobID:    pending.ID,
		ResumeID: database.TestResume1.ID,
	})
	assert.True(t, IsKind(err, KindPreconditionFailed))

	_, err = wf.Apply(principalFor(database.TestApplicant1), ApplyRequest{
		JobID:    database.TestJobPostClosed.ID,
		ResumeID: database.TestResume1.ID,
	})
	assert.True(t, IsKind(err, KindPreconditionFailed))

	_, err = wf.Apply(principalFor(database.TestApplicant1), ApplyRequest{
		JobID:    999999,
		ResumeID: database.TestResume1.ID,
	})
	assert.True(t, IsKind(err, KindNotFound))
}

func TestApplyAfterDeadline(t *testing.T) {
	_, err := NewApplicationWorkflow(testDB).Apply(principalFor(database.TestApplicant1), ApplyRequest{
		JobID:    database.TestJobPostExpired.ID,
		ResumeID: database.TestResume1.ID,
	})
	assert.True(t, IsKind(err, KindPreconditionFailed))
	assert.Equal(t, 0, appliedCount(t, database.TestJobPostExpired.ID))
}

func TestApplyDuplicate(t *testing.T) {
	wf := NewApplicationWorkflow(testDB)
	post := newActivePost(t, database.TestUserEmployer1, "One Shot")

	newApplication(t, database.TestApplicant1, database.TestResume1.ID, post.ID)

	_, err := wf.Apply(principalFor(database.TestApplicant1), ApplyRequest{
		JobID:    post.ID,
		ResumeID: database.TestResume1.ID,
	})
	assert.True(t, IsKind(err, KindPreconditionFailed))
	assert.Equal(t, 1, appliedCount(t, post.ID), "failed apply must not touch the counter")

	// A different applicant is unaffected.
	newApplication(t, database.TestApplicant2, database.TestResume2.ID, post.ID)
	assert.Equal(t, 2, appliedCount(t, post.ID))
}

func TestApplyWithForeignResume(t *testing.T) {
	post := newActivePost(t, database.TestUserEmployer1, "Resume Check")

	_, err := NewApplicationWorkflow(testDB).Apply(principalFor(database.TestApplicant2), ApplyRequest{
		JobID:    post.ID,
		ResumeID: database.TestResume1.ID,
	})
	assert.True(t, IsKind(err, KindPreconditionFailed))
	assert.Equal(t, 0, appliedCount(t, post.ID))
}

func TestWithdrawDecrementsCounter(t *testing.T) {
	wf := NewApplicationWorkflow(testDB)
	post := newActivePost(t, database.TestUserEmployer1, "Withdraw Target")

	app := newApplication(t, database.TestApplicant1, database.TestResume1.ID, post.ID)
	require.Equal(t, 1, appliedCount(t, post.ID))

	require.NoError(t, wf.Withdraw(principalFor(database.TestApplicant1), app.ID))
	assert.Equal(t, 0, appliedCount(t, post.ID))

	// Withdrawing twice is rejected, the counter stays put.
	err := wf.Withdraw(principalFor(database.TestApplicant1), app.ID)
	assert.True(t, IsKind(err, KindPreconditionFailed))
	assert.Equal(t, 0, appliedCount(t, post.ID))

	// A withdrawn application does not block re-applying.
	reapplied := newApplication(t, database.TestApplicant1, database.TestResume1.ID, post.ID)
	assert.NotEqual(t, app.ID, reapplied.ID)
	assert.Equal(t, 1, appliedCount(t, post.ID))
}

func TestWithdrawForeignApplication(t *testing.T) {
	post := newActivePost(t, database.TestUserEmployer1, "Withdraw Guard")
	app := newApplication(t, database.TestApplicant1, database.TestResume1.ID, post.ID)

	err := NewApplicationWorkflow(testDB).Withdraw(principalFor(database.TestApplicant2), app.ID)
	assert.True(t, IsKind(err, KindUnauthorized))

	err = NewApplicationWorkflow(testDB).Withdraw(principalFor(database.TestApplicant1), 999999)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestWithdrawAfterShortlisting(t *testing.T) {
	wf := NewApplicationWorkflow(testDB)
	post := newActivePost(t, database.TestUserEmployer1, "Locked In")
	app := newApplication(t, database.TestApplicant1, database.TestResume1.ID, post.ID)

	owner := principalFor(database.TestUserEmployer1)
	_, err := wf.UpdateStatus(owner, app.ID, "REVIEWING")
	require.NoError(t, err)
	_, err = wf.UpdateStatus(owner, app.ID, "SHORTLISTED")
	require.NoError(t, err)

	err = wf.Withdraw(principalFor(database.TestApplicant1), app.ID)
	assert.True(t, IsKind(err, KindPreconditionFailed))
	assert.Equal(t, 1, appliedCount(t, post.ID))
}

func TestReviewPipeline(t *testing.T) {
	wf := NewApplicationWorkflow(testDB)
	post := newActivePost(t, database.TestUserEmployer1, "Full Pipeline")
	app := newApplication(t, database.TestApplicant1, database.TestResume1.ID, post.ID)

	owner := principalFor(database.TestUserEmployer1)
	for _, next := range []string{"REVIEWING", "SHORTLISTED", "INTERVIEWED", "HIRED"} {
		updated, err := wf.UpdateStatus(owner, app.ID, next)
		require.NoError(t, err)
		assert.Equal(t, model.ApplicationStatus(next), updated.Status)
	}

	// HIRED is terminal.
	_, err := wf.UpdateStatus(owner, app.ID, "REJECTED")
	assert.True(t, IsKind(err, KindInvalidTransition))

	// Review never changes the counter.
	assert.Equal(t, 1, appliedCount(t, post.ID))
}

func TestReviewRejectsIllegalMoves(t *testing.T) {
	wf := NewApplicationWorkflow(testDB)
	post := newActivePost(t, database.TestUserEmployer1, "Strict Pipeline")
	app := newApplication(t, database.TestApplicant1, database.TestResume1.ID, post.ID)

	owner := principalFor(database.TestUserEmployer1)

	// No stage skipping.
	_, err := wf.UpdateStatus(owner, app.ID, "HIRED")
	assert.True(t, IsKind(err, KindInvalidTransition))

	// Employers cannot withdraw on the applicant's behalf.
	_, err = wf.UpdateStatus(owner, app.ID, "WITHDRAWN")
	assert.True(t, IsKind(err, KindInvalidTransition))

	// Unknown statuses are rejected before any lookup.
	_, err = wf.UpdateStatus(owner, app.ID, "APPROVED")
	assert.True(t, IsKind(err, KindBadRequest))

	// Status matching ignores case.
	updated, err := wf.UpdateStatus(owner, app.ID, "reviewing")
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationReviewing, updated.Status)
}

func TestReviewForeignApplication(t *testing.T) {
	wf := NewApplicationWorkflow(testDB)
	post := newActivePost(t, database.TestUserEmployer1, "Employer Scope")
	app := newApplication(t, database.TestApplicant1, database.TestResume1.ID, post.ID)

	_, err := wf.UpdateStatus(principalFor(database.TestUserEmployer2), app.ID, "REVIEWING")
	assert.True(t, IsKind(err, KindUnauthorized))

	// Applicants never drive the review table either.
	_, err = wf.UpdateStatus(principalFor(database.TestApplicant1), app.ID, "REVIEWING")
	assert.True(t, IsKind(err, KindUnauthorized))
}

func TestAttachScreening(t *testing.T) {
	wf := NewApplicationWorkflow(testDB)
	post := newActivePost(t, database.TestUserEmployer1, "Screened Post")
	app := newApplication(t, database.TestApplicant1, database.TestResume1.ID, post.ID)

	score := 0.82
	require.NoError(t, wf.AttachScreening(app.ID, model.ScreeningAnnotation{
		ScreeningDecision: "PASS",
		ScreeningScore:    &score,
		MatchedPoints:     pq.StringArray{"Go", "SQL"},
		UnmatchedPoints:   pq.StringArray{"Kubernetes"},
	}))

	var loaded model.Application
	require.NoError(t, testDB.First(&loaded, app.ID).Error)
	assert.Equal(t, "PASS", loaded.ScreeningDecision)
	require.NotNil(t, loaded.ScreeningScore)
	assert.InDelta(t, 0.82, *loaded.ScreeningScore, 1e-9)
	assert.Equal(t, []string{"Go", "SQL"}, []string(loaded.MatchedPoints))
	assert.Equal(t, model.ApplicationPending, loaded.Status, "screening never moves the status")

	err := wf.AttachScreening(999999, model.ScreeningAnnotation{ScreeningDecision: "PASS"})
	assert.True(t, IsKind(err, KindNotFound))
}

func TestListMineAndReceived(t *testing.T) {
	wf := NewApplicationWorkflow(testDB)
	post := newActivePost(t, database.TestUserEmployer2, "Listing Post")
	app := newApplication(t, database.TestApplicant2, database.TestResume2.ID, post.ID)

	mine, err := wf.ListMine(principalFor(database.TestApplicant2), 1, 50)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, mine.TotalElements, int64(1))
	found := false
	for _, a := range mine.Data {
		assert.Equal(t, database.TestApplicant2.ID, a.ApplicantID)
		if a.ID == app.ID {
			found = true
		}
	}
	assert.True(t, found)

	received, err := wf.ListReceived(principalFor(database.TestUserEmployer2), 1, 50)
	require.NoError(t, err)
	found = false
	for _, a := range received.Data {
		assert.Equal(t, database.TestUserEmployer2.ID, a.EmployerID)
		if a.ID == app.ID {
			found = true
		}
	}
	assert.True(t, found)
}

func TestListForJobOwnership(t *testing.T) {
	wf := NewApplicationWorkflow(testDB)
	post := newActivePost(t, database.TestUserEmployer1, "Per Job Listing")
	app := newApplication(t, database.TestApplicant1, database.TestResume1.ID, post.ID)

	page, err := wf.ListForJob(principalFor(database.TestUserEmployer1), post.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, app.ID, page.Data[0].ID)
	assert.Equal(t, int64(1), page.TotalElements)

	_, err = wf.ListForJob(principalFor(database.TestUserEmployer2), post.ID, 1, 10)
	assert.True(t, IsKind(err, KindUnauthorized))

	_, err = wf.ListForJob(principalFor(database.TestUserEmployer1), 999999, 1, 10)
	assert.True(t, IsKind(err, KindNotFound))
}
