package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redib-coa-backend/internal/domain"
)

func TestSubmitFeasibilityDecision(t *testing.T) {
	ctx := context.Background()

	t.Run("single infeasible verdict rejects immediately", func(t *testing.T) {
		f := newWorkflowFixture()
		svc := NewFeasibilityService(f.repos, f.store, f.authz, f.email)

		app, err := svc.SubmitDecision(ctx, f.coordA.ID, f.app.ID, f.nodeA.ID, false, "magnet downtime all quarter")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRejectedFeasibility, app.Status)

		stored, err := f.repos.Applications.GetByID(ctx, f.app.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRejectedFeasibility, stored.Status)

		assert.Equal(t, 1, f.email.count("FeasibilityRejected"))
		assert.Len(t, f.store.byEvent(domain.EventFeasibilityRejected), 1)
	})

	t.Run("first feasible verdict keeps the application waiting", func(t *testing.T) {
		f := newWorkflowFixture()
		svc := NewFeasibilityService(f.repos, f.store, f.authz, f.email)

		app, err := svc.SubmitDecision(ctx, f.coordA.ID, f.app.ID, f.nodeA.ID, true, "slots available")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusUnderFeasibilityReview, app.Status)
		assert.Equal(t, 0, f.email.count("FeasibilityApproved"))
	})

	t.Run("last feasible verdict promotes to pending evaluation", func(t *testing.T) {
		f := newWorkflowFixture()
		svc := NewFeasibilityService(f.repos, f.store, f.authz, f.email)

		_, err := svc.SubmitDecision(ctx, f.coordA.ID, f.app.ID, f.nodeA.ID, true, "")
		require.NoError(t, err)
		app, err := svc.SubmitDecision(ctx, f.coordB.ID, f.app.ID, f.nodeB.ID, true, "")
		require.NoError(t, err)

		assert.Equal(t, domain.StatusPendingEvaluation, app.Status)
		assert.Equal(t, 1, f.email.count("FeasibilityApproved"))
	})

	t.Run("decision is write-once per node", func(t *testing.T) {
		f := newWorkflowFixture()
		svc := NewFeasibilityService(f.repos, f.store, f.authz, f.email)

		_, err := svc.SubmitDecision(ctx, f.coordA.ID, f.app.ID, f.nodeA.ID, true, "")
		require.NoError(t, err)

		_, err = svc.SubmitDecision(ctx, f.coordA.ID, f.app.ID, f.nodeA.ID, false, "changed my mind")
		assert.ErrorIs(t, err, domain.ErrAlreadyDecided)
	})

	t.Run("coordinator of another node is refused", func(t *testing.T) {
		f := newWorkflowFixture()
		svc := NewFeasibilityService(f.repos, f.store, f.authz, f.email)

		_, err := svc.SubmitDecision(ctx, f.coordB.ID, f.app.ID, f.nodeA.ID, true, "")
		assert.ErrorIs(t, err, domain.ErrPermission)
	})

	t.Run("rejected application accepts no further verdicts", func(t *testing.T) {
		f := newWorkflowFixture()
		svc := NewFeasibilityService(f.repos, f.store, f.authz, f.email)

		_, err := svc.SubmitDecision(ctx, f.coordA.ID, f.app.ID, f.nodeA.ID, false, "no capacity")
		require.NoError(t, err)

		_, err = svc.SubmitDecision(ctx, f.coordB.ID, f.app.ID, f.nodeB.ID, true, "")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestListFeasibilityForApplication(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture()
	svc := NewFeasibilityService(f.repos, f.store, f.authz, f.email)

	t.Run("coordinator sees every review", func(t *testing.T) {
		reviews, err := svc.ListForApplication(ctx, f.coordinator.ID, f.app.ID)
		require.NoError(t, err)
		assert.Len(t, reviews, 2)
	})

	t.Run("involved node coordinator sees the reviews", func(t *testing.T) {
		reviews, err := svc.ListForApplication(ctx, f.coordA.ID, f.app.ID)
		require.NoError(t, err)
		assert.Len(t, reviews, 2)
	})

	t.Run("applicant is refused", func(t *testing.T) {
		_, err := svc.ListForApplication(ctx, f.applicant.ID, f.app.ID)
		assert.ErrorIs(t, err, domain.ErrPermission)
	})
}
