package service

import (
	"time"

	"redib-coa-backend/internal/domain"
	"redib-coa-backend/internal/repository"
)

// workflowFixture is a two-node application sitting in feasibility review,
// the most common starting point for workflow tests.
type workflowFixture struct {
	store *memStore
	repos *repository.Repos
	authz Authorizer
	email *stubEmail

	applicant   *domain.User
	coordA      *domain.User
	coordB      *domain.User
	coordinator *domain.User

	nodeA *domain.Node
	nodeB *domain.Node

	equipA *domain.Equipment
	equipB *domain.Equipment

	app  *domain.Application
	reqA *domain.AccessRequest
	reqB *domain.AccessRequest
	frA  *domain.FeasibilityReview
	frB  *domain.FeasibilityReview
}

func newWorkflowFixture() *workflowFixture {
	s := newMemStore()
	f := &workflowFixture{store: s}

	f.nodeA = s.addNode("Alpha")
	f.nodeB = s.addNode("Beta")
	f.equipA = s.addEquipment(f.nodeA.ID, "MRI 3T")
	f.equipB = s.addEquipment(f.nodeB.ID, "PET-CT")

	f.applicant = s.addUser("Ana Ruiz", "ana@uni.example", "University of Granada",
		domain.UserRole{Role: domain.RoleApplicant})
	f.coordA = s.addUser("Coord Alpha", "coord-a@redib.example", "Alpha Center",
		domain.UserRole{Role: domain.RoleNodeCoordinator, NodeID: &f.nodeA.ID})
	f.coordB = s.addUser("Coord Beta", "coord-b@redib.example", "Beta Center",
		domain.UserRole{Role: domain.RoleNodeCoordinator, NodeID: &f.nodeB.ID})
	f.coordinator = s.addUser("Program Coordinator", "coordinator@redib.example", "ReDIB",
		domain.UserRole{Role: domain.RoleCoordinator})

	call := s.addCall("2026-1", true)
	submitted := time.Now().Add(-48 * time.Hour)
	f.app = s.addApplication(domain.Application{
		CallID:              call.ID,
		ApplicantID:         f.applicant.ID,
		Code:                "2026-1-APP-001",
		Status:              domain.StatusUnderFeasibilityReview,
		ApplicantName:       f.applicant.Name,
		ApplicantEmail:      f.applicant.Email,
		ApplicantEntity:     f.applicant.Entity,
		ProjectTitle:        "Tracer kinetics in small animal models",
		SpecializationArea:  "preclinical imaging",
		ScientificRelevance: "relevant",
		MethodologyDesc:     "methodology",
		DataConsent:         true,
		SubmittedAt:         &submitted,
	})
	f.reqA = s.addRequest(f.app.ID, f.equipA.ID, f.nodeA.ID, 40)
	f.reqB = s.addRequest(f.app.ID, f.equipB.ID, f.nodeB.ID, 20)
	f.frA = s.addFeasibility(f.app.ID, f.nodeA.ID)
	f.frB = s.addFeasibility(f.app.ID, f.nodeB.ID)

	f.repos = s.repos()
	f.authz = NewAuthorizer(f.repos.Users)
	f.email = &stubEmail{}
	return f
}

// setStatus places the stored application at a stage directly so a test can
// start mid-workflow.
func (f *workflowFixture) setStatus(status domain.ApplicationStatus) {
	f.store.apps[f.app.ID].Status = status
	f.app.Status = status
}
