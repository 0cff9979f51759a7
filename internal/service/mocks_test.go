package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"redib-coa-backend/internal/domain"
	"redib-coa-backend/internal/repository"
)

// memStore is an in-memory stand-in for the postgres store. It mirrors the
// write-once guards of the SQL layer so services see the same error
// behavior.
type memStore struct {
	mu sync.Mutex

	apps        map[int32]*domain.Application
	requests    map[int32]*domain.AccessRequest
	feasibility map[int32]*domain.FeasibilityReview
	evaluations map[int32]*domain.Evaluation
	resolutions map[int32]*domain.NodeResolution
	nodes       map[int32]*domain.Node
	equipment   map[int32]*domain.Equipment
	calls       map[int32]*domain.Call
	users       map[int32]*domain.User
	roles       []domain.UserRole
	notes       []domain.Notification
	pubs        map[int32]*domain.Publication

	nextID int32
}

func newMemStore() *memStore {
	return &memStore{
		apps:        map[int32]*domain.Application{},
		requests:    map[int32]*domain.AccessRequest{},
		feasibility: map[int32]*domain.FeasibilityReview{},
		evaluations: map[int32]*domain.Evaluation{},
		resolutions: map[int32]*domain.NodeResolution{},
		nodes:       map[int32]*domain.Node{},
		equipment:   map[int32]*domain.Equipment{},
		calls:       map[int32]*domain.Call{},
		users:       map[int32]*domain.User{},
		pubs:        map[int32]*domain.Publication{},
	}
}

func (s *memStore) id() int32 {
	s.nextID++
	return s.nextID
}

func (s *memStore) repos() *repository.Repos {
	return &repository.Repos{
		Applications:    &memApplications{s},
		AccessRequests:  &memAccessRequests{s},
		Feasibility:     &memFeasibility{s},
		Evaluations:     &memEvaluations{s},
		NodeResolutions: &memResolutions{s},
		Nodes:           &memNodes{s},
		Equipment:       &memEquipment{s},
		Calls:           &memCalls{s},
		Users:           &memUsers{s},
		Notifications:   &memNotifications{s},
		Publications:    &memPublications{s},
	}
}

// RunInTx implements repository.TxManager without transactional semantics;
// the guards still apply.
func (s *memStore) RunInTx(_ context.Context, fn func(r *repository.Repos) error) error {
	return fn(s.repos())
}

// Seed helpers.

func (s *memStore) addUser(name, email, entity string, roles ...domain.UserRole) *domain.User {
	u := &domain.User{ID: s.id(), Name: name, Email: email, Entity: entity, IsActive: true}
	s.users[u.ID] = u
	for _, r := range roles {
		r.UserID = u.ID
		r.IsActive = true
		s.roles = append(s.roles, r)
	}
	return u
}

func (s *memStore) addNode(name string) *domain.Node {
	n := &domain.Node{ID: s.id(), Name: name, Code: strings.ToUpper(name), IsActive: true}
	s.nodes[n.ID] = n
	return n
}

func (s *memStore) addEquipment(nodeID int32, name string) *domain.Equipment {
	e := &domain.Equipment{ID: s.id(), NodeID: nodeID, Name: name, Category: domain.EquipmentMRI, IsActive: true}
	s.equipment[e.ID] = e
	return e
}

func (s *memStore) addCall(code string, open bool) *domain.Call {
	now := time.Now()
	c := &domain.Call{
		ID:              s.id(),
		Code:            code,
		Title:           code,
		Status:          domain.CallStatusPublished,
		SubmissionStart: now.Add(-24 * time.Hour),
		SubmissionEnd:   now.Add(24 * time.Hour),
	}
	if !open {
		c.Status = domain.CallStatusClosed
	}
	s.calls[c.ID] = c
	return c
}

func (s *memStore) addApplication(app domain.Application) *domain.Application {
	app.ID = s.id()
	s.apps[app.ID] = &app
	return &app
}

func (s *memStore) addRequest(appID, equipmentID, nodeID int32, hours float64) *domain.AccessRequest {
	ar := &domain.AccessRequest{ID: s.id(), ApplicationID: appID, EquipmentID: equipmentID, NodeID: nodeID, HoursRequested: hours}
	s.requests[ar.ID] = ar
	return ar
}

func (s *memStore) addFeasibility(appID, nodeID int32) *domain.FeasibilityReview {
	fr := &domain.FeasibilityReview{ID: s.id(), ApplicationID: appID, NodeID: nodeID, CreatedOn: time.Now()}
	s.feasibility[fr.ID] = fr
	return fr
}

func (s *memStore) addResolution(appID, nodeID int32) *domain.NodeResolution {
	nr := &domain.NodeResolution{ID: s.id(), ApplicationID: appID, NodeID: nodeID}
	s.resolutions[nr.ID] = nr
	return nr
}

func (s *memStore) addEvaluation(appID, evaluatorID int32) *domain.Evaluation {
	ev := &domain.Evaluation{ID: s.id(), ApplicationID: appID, EvaluatorID: evaluatorID, AssignedAt: time.Now()}
	s.evaluations[ev.ID] = ev
	return ev
}

// Applications

type memApplications struct{ s *memStore }

func (m *memApplications) Create(_ context.Context, app *domain.Application) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	app.ID = m.s.id()
	app.CreatedOn = time.Now()
	cp := *app
	m.s.apps[app.ID] = &cp
	return nil
}

func (m *memApplications) GetByID(_ context.Context, id int32) (*domain.Application, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	app, ok := m.s.apps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *app
	return &cp, nil
}

func (m *memApplications) GetByCode(_ context.Context, code string) (*domain.Application, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, app := range m.s.apps {
		if app.Code == code {
			cp := *app
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memApplications) Update(_ context.Context, app *domain.Application) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.apps[app.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *app
	cp.UpdatedOn = time.Now()
	m.s.apps[app.ID] = &cp
	return nil
}

func (m *memApplications) list(filter func(*domain.Application) bool) []domain.Application {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []domain.Application
	for _, app := range m.s.apps {
		if filter(app) {
			out = append(out, *app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memApplications) ListByApplicant(_ context.Context, applicantID int32) ([]domain.Application, error) {
	return m.list(func(a *domain.Application) bool { return a.ApplicantID == applicantID }), nil
}

func (m *memApplications) ListByStatus(_ context.Context, status domain.ApplicationStatus) ([]domain.Application, error) {
	return m.list(func(a *domain.Application) bool { return a.Status == status }), nil
}

func (m *memApplications) ListByCallAndStatus(_ context.Context, callID int32, status domain.ApplicationStatus) ([]domain.Application, error) {
	return m.list(func(a *domain.Application) bool { return a.CallID == callID && a.Status == status }), nil
}

func (m *memApplications) CountSubmittedForCall(_ context.Context, callID int32) (int32, error) {
	apps := m.list(func(a *domain.Application) bool { return a.CallID == callID && a.SubmittedAt != nil })
	return int32(len(apps)), nil
}

func (m *memApplications) ListExpirable(_ context.Context, now time.Time) ([]domain.Application, error) {
	return m.list(func(a *domain.Application) bool {
		return a.Status == domain.StatusAccepted && a.AcceptedByApplicant == nil &&
			a.AcceptanceDeadline != nil && a.AcceptanceDeadline.Before(now)
	}), nil
}

func (m *memApplications) ListForAcceptanceReminder(_ context.Context, from, to time.Time) ([]domain.Application, error) {
	return m.list(func(a *domain.Application) bool {
		return a.Status == domain.StatusAccepted && a.AcceptedByApplicant == nil &&
			a.AcceptanceDeadline != nil && a.AcceptanceDeadline.After(from) && !a.AcceptanceDeadline.After(to)
	}), nil
}

// Access requests

type memAccessRequests struct{ s *memStore }

func (m *memAccessRequests) Create(_ context.Context, ar *domain.AccessRequest) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	ar.ID = m.s.id()
	if ar.NodeID == 0 {
		if e, ok := m.s.equipment[ar.EquipmentID]; ok {
			ar.NodeID = e.NodeID
		}
	}
	cp := *ar
	m.s.requests[ar.ID] = &cp
	return nil
}

func (m *memAccessRequests) GetByID(_ context.Context, id int32) (*domain.AccessRequest, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	ar, ok := m.s.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *ar
	return &cp, nil
}

func (m *memAccessRequests) Delete(_ context.Context, id int32) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.requests, id)
	return nil
}

func (m *memAccessRequests) list(filter func(*domain.AccessRequest) bool) []domain.AccessRequest {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []domain.AccessRequest
	for _, ar := range m.s.requests {
		if filter(ar) {
			out = append(out, *ar)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memAccessRequests) ListByApplication(_ context.Context, applicationID int32) ([]domain.AccessRequest, error) {
	return m.list(func(ar *domain.AccessRequest) bool { return ar.ApplicationID == applicationID }), nil
}

func (m *memAccessRequests) ListByApplicationAndNode(_ context.Context, applicationID, nodeID int32) ([]domain.AccessRequest, error) {
	return m.list(func(ar *domain.AccessRequest) bool {
		return ar.ApplicationID == applicationID && ar.NodeID == nodeID
	}), nil
}

func (m *memAccessRequests) InvolvedNodeIDs(_ context.Context, applicationID int32) ([]int32, error) {
	seen := map[int32]bool{}
	var out []int32
	for _, ar := range m.list(func(ar *domain.AccessRequest) bool { return ar.ApplicationID == applicationID }) {
		if !seen[ar.NodeID] {
			seen[ar.NodeID] = true
			out = append(out, ar.NodeID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (m *memAccessRequests) SetApprovedHours(_ context.Context, applicationID, equipmentID int32, hours float64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, ar := range m.s.requests {
		if ar.ApplicationID == applicationID && ar.EquipmentID == equipmentID {
			h := hours
			ar.HoursApproved = &h
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memAccessRequests) ReleaseApprovedHours(_ context.Context, applicationID int32) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, ar := range m.s.requests {
		if ar.ApplicationID == applicationID {
			ar.HoursApproved = nil
		}
	}
	return nil
}

func (m *memAccessRequests) MarkCompleted(_ context.Context, id, completedBy int32, actualHours float64, at time.Time) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	ar, ok := m.s.requests[id]
	if !ok {
		return domain.ErrNotFound
	}
	if ar.CompletedAt != nil {
		return domain.ErrAlreadyCompleted
	}
	t := at
	ar.CompletedAt = &t
	ar.CompletedBy = &completedBy
	ar.ActualHours = &actualHours
	return nil
}

func (m *memAccessRequests) CountIncomplete(_ context.Context, applicationID int32) (int32, error) {
	open := m.list(func(ar *domain.AccessRequest) bool {
		return ar.ApplicationID == applicationID && ar.CompletedAt == nil
	})
	return int32(len(open)), nil
}

// Feasibility

type memFeasibility struct{ s *memStore }

func (m *memFeasibility) Create(_ context.Context, fr *domain.FeasibilityReview) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	fr.ID = m.s.id()
	fr.CreatedOn = time.Now()
	cp := *fr
	m.s.feasibility[fr.ID] = &cp
	return nil
}

func (m *memFeasibility) GetByApplicationAndNode(_ context.Context, applicationID, nodeID int32) (*domain.FeasibilityReview, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, fr := range m.s.feasibility {
		if fr.ApplicationID == applicationID && fr.NodeID == nodeID {
			cp := *fr
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memFeasibility) ListByApplication(_ context.Context, applicationID int32) ([]domain.FeasibilityReview, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []domain.FeasibilityReview
	for _, fr := range m.s.feasibility {
		if fr.ApplicationID == applicationID {
			out = append(out, *fr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memFeasibility) RecordDecision(_ context.Context, fr *domain.FeasibilityReview) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stored, ok := m.s.feasibility[fr.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.IsFeasible != nil {
		return domain.ErrAlreadyDecided
	}
	cp := *fr
	m.s.feasibility[fr.ID] = &cp
	return nil
}

func (m *memFeasibility) ListPendingOlderThan(_ context.Context, cutoff time.Time) ([]domain.FeasibilityReview, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []domain.FeasibilityReview
	for _, fr := range m.s.feasibility {
		app := m.s.apps[fr.ApplicationID]
		if fr.IsFeasible == nil && app != nil && app.Status == domain.StatusUnderFeasibilityReview &&
			app.SubmittedAt != nil && !app.SubmittedAt.After(cutoff) {
			out = append(out, *fr)
		}
	}
	return out, nil
}

// Evaluations

type memEvaluations struct{ s *memStore }

func (m *memEvaluations) Create(_ context.Context, ev *domain.Evaluation) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	ev.ID = m.s.id()
	ev.AssignedAt = time.Now()
	cp := *ev
	m.s.evaluations[ev.ID] = &cp
	return nil
}

func (m *memEvaluations) GetByID(_ context.Context, id int32) (*domain.Evaluation, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	ev, ok := m.s.evaluations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *ev
	return &cp, nil
}

func (m *memEvaluations) ListByApplication(_ context.Context, applicationID int32) ([]domain.Evaluation, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []domain.Evaluation
	for _, ev := range m.s.evaluations {
		if ev.ApplicationID == applicationID {
			out = append(out, *ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memEvaluations) ListPendingByEvaluator(_ context.Context, evaluatorID int32) ([]domain.Evaluation, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []domain.Evaluation
	for _, ev := range m.s.evaluations {
		if ev.EvaluatorID == evaluatorID && ev.CompletedAt == nil {
			out = append(out, *ev)
		}
	}
	return out, nil
}

func (m *memEvaluations) Complete(_ context.Context, ev *domain.Evaluation) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stored, ok := m.s.evaluations[ev.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.CompletedAt != nil {
		return domain.ErrAlreadyCompleted
	}
	cp := *ev
	m.s.evaluations[ev.ID] = &cp
	return nil
}

func (m *memEvaluations) Delete(_ context.Context, id int32) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.evaluations, id)
	return nil
}

// Node resolutions

type memResolutions struct{ s *memStore }

func (m *memResolutions) Create(_ context.Context, nr *domain.NodeResolution) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	nr.ID = m.s.id()
	nr.CreatedOn = time.Now()
	cp := *nr
	m.s.resolutions[nr.ID] = &cp
	return nil
}

func (m *memResolutions) GetByApplicationAndNode(_ context.Context, applicationID, nodeID int32) (*domain.NodeResolution, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, nr := range m.s.resolutions {
		if nr.ApplicationID == applicationID && nr.NodeID == nodeID {
			cp := *nr
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memResolutions) ListByApplication(_ context.Context, applicationID int32) ([]domain.NodeResolution, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []domain.NodeResolution
	for _, nr := range m.s.resolutions {
		if nr.ApplicationID == applicationID {
			out = append(out, *nr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memResolutions) RecordDecision(_ context.Context, nr *domain.NodeResolution) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stored, ok := m.s.resolutions[nr.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Decision != domain.NodeDecisionUnset {
		return domain.ErrAlreadyDecided
	}
	cp := *nr
	m.s.resolutions[nr.ID] = &cp
	return nil
}

// Nodes and equipment

type memNodes struct{ s *memStore }

func (m *memNodes) GetByID(_ context.Context, id int32) (*domain.Node, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	n, ok := m.s.nodes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *memNodes) List(_ context.Context) ([]domain.Node, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []domain.Node
	for _, n := range m.s.nodes {
		out = append(out, *n)
	}
	return out, nil
}

func (m *memNodes) ListCoordinators(_ context.Context, nodeID int32) ([]domain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []domain.User
	for _, r := range m.s.roles {
		if r.Role == domain.RoleNodeCoordinator && r.IsActive && r.NodeID != nil && *r.NodeID == nodeID {
			if u, ok := m.s.users[r.UserID]; ok {
				out = append(out, *u)
			}
		}
	}
	return out, nil
}

type memEquipment struct{ s *memStore }

func (m *memEquipment) GetByID(_ context.Context, id int32) (*domain.Equipment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	e, ok := m.s.equipment[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memEquipment) ListByNode(_ context.Context, nodeID int32) ([]domain.Equipment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []domain.Equipment
	for _, e := range m.s.equipment {
		if e.NodeID == nodeID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *memEquipment) ListActive(_ context.Context) ([]domain.Equipment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []domain.Equipment
	for _, e := range m.s.equipment {
		if e.IsActive {
			out = append(out, *e)
		}
	}
	return out, nil
}

// Calls

type memCalls struct{ s *memStore }

func (m *memCalls) GetByID(_ context.Context, id int32) (*domain.Call, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.calls[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCalls) GetByCode(_ context.Context, code string) (*domain.Call, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, c := range m.s.calls {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memCalls) List(_ context.Context) ([]domain.Call, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []domain.Call
	for _, c := range m.s.calls {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memCalls) Update(_ context.Context, call *domain.Call) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.calls[call.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *call
	m.s.calls[call.ID] = &cp
	return nil
}

// Users

type memUsers struct{ s *memStore }

func (m *memUsers) Create(_ context.Context, user *domain.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	user.ID = m.s.id()
	cp := *user
	m.s.users[user.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id int32) (*domain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u, ok := m.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUsers) Update(_ context.Context, user *domain.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *user
	m.s.users[user.ID] = &cp
	return nil
}

func (m *memUsers) HasActiveRole(_ context.Context, userID int32, role domain.Role, nodeID *int32) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, r := range m.s.roles {
		if r.UserID != userID || r.Role != role || !r.IsActive {
			continue
		}
		if nodeID == nil || (r.NodeID != nil && *r.NodeID == *nodeID) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) ListRoles(_ context.Context, userID int32) ([]domain.UserRole, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []domain.UserRole
	for _, r := range m.s.roles {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memUsers) ListEvaluators(_ context.Context) ([]domain.User, []domain.UserRole, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var users []domain.User
	var roles []domain.UserRole
	for _, r := range m.s.roles {
		if r.Role == domain.RoleEvaluator && r.IsActive {
			if u, ok := m.s.users[r.UserID]; ok {
				users = append(users, *u)
				roles = append(roles, r)
			}
		}
	}
	return users, roles, nil
}

func (m *memUsers) ListCoordinators(_ context.Context) ([]domain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []domain.User
	for _, r := range m.s.roles {
		if r.Role == domain.RoleCoordinator && r.IsActive {
			if u, ok := m.s.users[r.UserID]; ok {
				out = append(out, *u)
			}
		}
	}
	return out, nil
}

// Notifications

type memNotifications struct{ s *memStore }

func (m *memNotifications) Create(_ context.Context, note *domain.Notification) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, n := range m.s.notes {
		if n.DedupKey == note.DedupKey {
			return nil
		}
	}
	note.ID = m.s.id()
	note.CreatedOn = time.Now()
	m.s.notes = append(m.s.notes, *note)
	return nil
}

func (m *memNotifications) List(_ context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var all []domain.Notification
	for _, n := range m.s.notes {
		if n.UserID == userID {
			all = append(all, n)
		}
	}
	total := int32(len(all))
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *memNotifications) MarkAsRead(_ context.Context, id, userID int32) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i := range m.s.notes {
		if m.s.notes[i].ID == id && m.s.notes[i].UserID == userID {
			m.s.notes[i].IsRead = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *memStore) byEvent(event domain.EventKind) []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Notification
	for _, n := range s.notes {
		if n.Event == event {
			out = append(out, n)
		}
	}
	return out
}

// Publications

type memPublications struct{ s *memStore }

func (m *memPublications) Create(_ context.Context, pub *domain.Publication) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	pub.ID = m.s.id()
	pub.ReportedAt = time.Now()
	cp := *pub
	m.s.pubs[pub.ID] = &cp
	return nil
}

func (m *memPublications) GetByID(_ context.Context, id int32) (*domain.Publication, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.pubs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPublications) Update(_ context.Context, pub *domain.Publication) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.pubs[pub.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *pub
	m.s.pubs[pub.ID] = &cp
	return nil
}

func (m *memPublications) ListByApplication(_ context.Context, applicationID int32) ([]domain.Publication, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []domain.Publication
	for _, p := range m.s.pubs {
		if p.ApplicationID == applicationID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memPublications) ListByReporter(_ context.Context, reporterID int32) ([]domain.Publication, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []domain.Publication
	for _, p := range m.s.pubs {
		if p.ReportedBy == reporterID {
			out = append(out, *p)
		}
	}
	return out, nil
}

// stubEmail records every send as "Method:recipient".
type stubEmail struct {
	mu    sync.Mutex
	sends []string
}

func (e *stubEmail) record(method, to string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sends = append(e.sends, fmt.Sprintf("%s:%s", method, to))
	return nil
}

func (e *stubEmail) count(method string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, s := range e.sends {
		if strings.HasPrefix(s, method+":") {
			n++
		}
	}
	return n
}

func (e *stubEmail) SendApplicationReceived(_ context.Context, email, _, _ string) error {
	return e.record("ApplicationReceived", email)
}
func (e *stubEmail) SendFeasibilityRequest(_ context.Context, email, _, _, _ string) error {
	return e.record("FeasibilityRequest", email)
}
func (e *stubEmail) SendFeasibilityReminder(_ context.Context, email, _, _, _ string) error {
	return e.record("FeasibilityReminder", email)
}
func (e *stubEmail) SendFeasibilityRejected(_ context.Context, email, _, _ string, _ []string) error {
	return e.record("FeasibilityRejected", email)
}
func (e *stubEmail) SendFeasibilityApproved(_ context.Context, email, _, _ string) error {
	return e.record("FeasibilityApproved", email)
}
func (e *stubEmail) SendEvaluationAssigned(_ context.Context, email, _, _ string) error {
	return e.record("EvaluationAssigned", email)
}
func (e *stubEmail) SendEvaluationComplete(_ context.Context, email, _, _ string, _ float64) error {
	return e.record("EvaluationComplete", email)
}
func (e *stubEmail) SendResolutionAccepted(_ context.Context, email, _, _ string, _ int, _ []string) error {
	return e.record("ResolutionAccepted", email)
}
func (e *stubEmail) SendResolutionPending(_ context.Context, email, _, _ string, _ []string) error {
	return e.record("ResolutionPending", email)
}
func (e *stubEmail) SendResolutionRejected(_ context.Context, email, _, _ string, _ []string) error {
	return e.record("ResolutionRejected", email)
}
func (e *stubEmail) SendAcceptanceReminder(_ context.Context, email, _, _ string, _ int) error {
	return e.record("AcceptanceReminder", email)
}
func (e *stubEmail) SendAcceptanceExpired(_ context.Context, email, _, _ string) error {
	return e.record("AcceptanceExpired", email)
}
func (e *stubEmail) SendHandoffConfirmed(_ context.Context, email, _, _, _, _ string) error {
	return e.record("HandoffConfirmed", email)
}
func (e *stubEmail) SendApplicantDeclined(_ context.Context, email, _, _, _ string) error {
	return e.record("ApplicantDeclined", email)
}
func (e *stubEmail) SendAccessCompleted(_ context.Context, email, _, _, _ string) error {
	return e.record("AccessCompleted", email)
}
