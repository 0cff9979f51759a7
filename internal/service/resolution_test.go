package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redib-coa-backend/internal/domain"
)

const acceptanceWindow = 10

func resolutionFixture() (*workflowFixture, ResolutionService) {
	f := newWorkflowFixture()
	f.setStatus(domain.StatusEvaluated)
	f.store.addResolution(f.app.ID, f.nodeA.ID)
	f.store.addResolution(f.app.ID, f.nodeB.ID)
	svc := NewResolutionService(f.repos, f.store, f.authz, f.email, acceptanceWindow)
	return f, svc
}

func TestSubmitNodeResolution(t *testing.T) {
	ctx := context.Background()

	t.Run("first decision leaves the application evaluated", func(t *testing.T) {
		f, svc := resolutionFixture()
		app, err := svc.SubmitNodeResolution(ctx, f.coordA.ID, f.app.ID, f.nodeA.ID, domain.NodeDecisionAccept, "", nil)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusEvaluated, app.Status)
		assert.Equal(t, domain.ResolutionUnset, app.Resolution)
	})

	t.Run("all accept grants the hours and sets the deadline", func(t *testing.T) {
		f, svc := resolutionFixture()
		_, err := svc.SubmitNodeResolution(ctx, f.coordA.ID, f.app.ID, f.nodeA.ID, domain.NodeDecisionAccept, "", map[int32]float64{f.equipA.ID: 30})
		require.NoError(t, err)
		app, err := svc.SubmitNodeResolution(ctx, f.coordB.ID, f.app.ID, f.nodeB.ID, domain.NodeDecisionAccept, "", nil)
		require.NoError(t, err)

		assert.Equal(t, domain.StatusAccepted, app.Status)
		assert.Equal(t, domain.ResolutionAccepted, app.Resolution)
		require.NotNil(t, app.AcceptanceDeadline)
		expected := time.Now().AddDate(0, 0, acceptanceWindow)
		assert.WithinDuration(t, expected, *app.AcceptanceDeadline, time.Minute)

		reqA, err := f.repos.AccessRequests.GetByID(ctx, f.reqA.ID)
		require.NoError(t, err)
		require.NotNil(t, reqA.HoursApproved)
		assert.Equal(t, 30.0, *reqA.HoursApproved)

		// Missing map entry defaults to the requested hours.
		reqB, err := f.repos.AccessRequests.GetByID(ctx, f.reqB.ID)
		require.NoError(t, err)
		require.NotNil(t, reqB.HoursApproved)
		assert.Equal(t, f.reqB.HoursRequested, *reqB.HoursApproved)

		assert.Equal(t, 1, f.email.count("ResolutionAccepted"))
	})

	t.Run("one reject rejects the whole application", func(t *testing.T) {
		f, svc := resolutionFixture()
		_, err := svc.SubmitNodeResolution(ctx, f.coordA.ID, f.app.ID, f.nodeA.ID, domain.NodeDecisionAccept, "", nil)
		require.NoError(t, err)
		app, err := svc.SubmitNodeResolution(ctx, f.coordB.ID, f.app.ID, f.nodeB.ID, domain.NodeDecisionReject, "no beam time", nil)
		require.NoError(t, err)

		assert.Equal(t, domain.StatusRejected, app.Status)
		assert.Equal(t, domain.ResolutionRejected, app.Resolution)
		assert.Nil(t, app.AcceptanceDeadline)
		assert.Equal(t, "[Beta]: no beam time", app.ResolutionComments)
		assert.Equal(t, 1, f.email.count("ResolutionRejected"))
	})

	t.Run("waitlist beats accept", func(t *testing.T) {
		f, svc := resolutionFixture()
		_, err := svc.SubmitNodeResolution(ctx, f.coordA.ID, f.app.ID, f.nodeA.ID, domain.NodeDecisionWaitlist, "queue is full", nil)
		require.NoError(t, err)
		app, err := svc.SubmitNodeResolution(ctx, f.coordB.ID, f.app.ID, f.nodeB.ID, domain.NodeDecisionAccept, "", nil)
		require.NoError(t, err)

		assert.Equal(t, domain.StatusPending, app.Status)
		assert.Equal(t, domain.ResolutionPending, app.Resolution)
		assert.Equal(t, 1, f.email.count("ResolutionPending"))
	})

	t.Run("competitive funding blocks a reject", func(t *testing.T) {
		f, svc := resolutionFixture()
		f.store.apps[f.app.ID].HasCompetitiveFunding = true

		_, err := svc.SubmitNodeResolution(ctx, f.coordA.ID, f.app.ID, f.nodeA.ID, domain.NodeDecisionReject, "", nil)
		assert.ErrorIs(t, err, domain.ErrCompetitiveFunding)
	})

	t.Run("approved hours above the request are refused", func(t *testing.T) {
		f, svc := resolutionFixture()
		_, err := svc.SubmitNodeResolution(ctx, f.coordA.ID, f.app.ID, f.nodeA.ID, domain.NodeDecisionAccept, "", map[int32]float64{f.equipA.ID: 100})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("negative approved hours are refused, zero is a valid grant", func(t *testing.T) {
		f, svc := resolutionFixture()
		_, err := svc.SubmitNodeResolution(ctx, f.coordA.ID, f.app.ID, f.nodeA.ID, domain.NodeDecisionAccept, "", map[int32]float64{f.equipA.ID: -1})
		assert.ErrorIs(t, err, domain.ErrValidation)

		f, svc = resolutionFixture()
		_, err = svc.SubmitNodeResolution(ctx, f.coordA.ID, f.app.ID, f.nodeA.ID, domain.NodeDecisionAccept, "", map[int32]float64{f.equipA.ID: 0})
		require.NoError(t, err)
		reqA, err := f.repos.AccessRequests.GetByID(ctx, f.reqA.ID)
		require.NoError(t, err)
		require.NotNil(t, reqA.HoursApproved)
		assert.Equal(t, 0.0, *reqA.HoursApproved)
	})

	t.Run("hours for equipment outside the node are refused", func(t *testing.T) {
		f, svc := resolutionFixture()
		_, err := svc.SubmitNodeResolution(ctx, f.coordA.ID, f.app.ID, f.nodeA.ID, domain.NodeDecisionAccept, "",
			map[int32]float64{f.equipA.ID: 20, 9999: 5})
		assert.ErrorIs(t, err, domain.ErrValidation)

		// Equipment belonging to the other node is just as foreign.
		f, svc = resolutionFixture()
		_, err = svc.SubmitNodeResolution(ctx, f.coordA.ID, f.app.ID, f.nodeA.ID, domain.NodeDecisionAccept, "",
			map[int32]float64{f.equipB.ID: 5})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("waitlist records the node's hour allocation", func(t *testing.T) {
		f, svc := resolutionFixture()
		_, err := svc.SubmitNodeResolution(ctx, f.coordA.ID, f.app.ID, f.nodeA.ID, domain.NodeDecisionWaitlist, "queue is full", map[int32]float64{f.equipA.ID: 25})
		require.NoError(t, err)

		reqA, err := f.repos.AccessRequests.GetByID(ctx, f.reqA.ID)
		require.NoError(t, err)
		require.NotNil(t, reqA.HoursApproved)
		assert.Equal(t, 25.0, *reqA.HoursApproved)
	})

	t.Run("decision is write-once per node", func(t *testing.T) {
		f, svc := resolutionFixture()
		_, err := svc.SubmitNodeResolution(ctx, f.coordA.ID, f.app.ID, f.nodeA.ID, domain.NodeDecisionAccept, "", nil)
		require.NoError(t, err)

		_, err = svc.SubmitNodeResolution(ctx, f.coordA.ID, f.app.ID, f.nodeA.ID, domain.NodeDecisionReject, "", nil)
		assert.ErrorIs(t, err, domain.ErrAlreadyDecided)
	})

	t.Run("unknown decision is refused", func(t *testing.T) {
		f, svc := resolutionFixture()
		_, err := svc.SubmitNodeResolution(ctx, f.coordA.ID, f.app.ID, f.nodeA.ID, domain.NodeDecision("defer"), "", nil)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("coordinator of another node is refused", func(t *testing.T) {
		f, svc := resolutionFixture()
		_, err := svc.SubmitNodeResolution(ctx, f.coordB.ID, f.app.ID, f.nodeA.ID, domain.NodeDecisionAccept, "", nil)
		assert.ErrorIs(t, err, domain.ErrPermission)
	})
}

func TestResolvePending(t *testing.T) {
	ctx := context.Background()

	pendingFixture := func() (*workflowFixture, ResolutionService) {
		f, svc := resolutionFixture()
		f.setStatus(domain.StatusPending)
		f.store.apps[f.app.ID].Resolution = domain.ResolutionPending
		return f, svc
	}

	t.Run("promotes a waitlisted application", func(t *testing.T) {
		f, svc := pendingFixture()
		app, err := svc.ResolvePending(ctx, f.coordinator.ID, f.app.ID, true, "capacity freed up")
		require.NoError(t, err)

		assert.Equal(t, domain.StatusAccepted, app.Status)
		assert.Equal(t, domain.ResolutionAccepted, app.Resolution)
		require.NotNil(t, app.AcceptanceDeadline)
		assert.Equal(t, "capacity freed up", app.ResolutionComments)
	})

	t.Run("promotion keeps the hours and comments recorded at waitlist time", func(t *testing.T) {
		f, svc := resolutionFixture()
		_, err := svc.SubmitNodeResolution(ctx, f.coordA.ID, f.app.ID, f.nodeA.ID, domain.NodeDecisionWaitlist, "queue is full", map[int32]float64{f.equipA.ID: 25})
		require.NoError(t, err)
		_, err = svc.SubmitNodeResolution(ctx, f.coordB.ID, f.app.ID, f.nodeB.ID, domain.NodeDecisionAccept, "", nil)
		require.NoError(t, err)

		app, err := svc.ResolvePending(ctx, f.coordinator.ID, f.app.ID, true, "capacity freed up")
		require.NoError(t, err)

		assert.Equal(t, domain.StatusAccepted, app.Status)
		assert.Equal(t, "[Alpha]: queue is full\ncapacity freed up", app.ResolutionComments)

		reqA, err := f.repos.AccessRequests.GetByID(ctx, f.reqA.ID)
		require.NoError(t, err)
		require.NotNil(t, reqA.HoursApproved)
		assert.Equal(t, 25.0, *reqA.HoursApproved)
	})

	t.Run("rejects a waitlisted application", func(t *testing.T) {
		f, svc := pendingFixture()
		app, err := svc.ResolvePending(ctx, f.coordinator.ID, f.app.ID, false, "call closed")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRejected, app.Status)
	})

	t.Run("competitive funding blocks a rejection", func(t *testing.T) {
		f, svc := pendingFixture()
		f.store.apps[f.app.ID].HasCompetitiveFunding = true

		_, err := svc.ResolvePending(ctx, f.coordinator.ID, f.app.ID, false, "")
		assert.ErrorIs(t, err, domain.ErrCompetitiveFunding)
	})

	t.Run("only waitlisted applications qualify", func(t *testing.T) {
		f, svc := resolutionFixture()
		_, err := svc.ResolvePending(ctx, f.coordinator.ID, f.app.ID, true, "")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("node coordinator is refused", func(t *testing.T) {
		f, svc := pendingFixture()
		_, err := svc.ResolvePending(ctx, f.coordA.ID, f.app.ID, true, "")
		assert.ErrorIs(t, err, domain.ErrPermission)
	})
}
