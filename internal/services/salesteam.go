package services

import (
	"context"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/errs"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/models"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/store"
	console "github.com/arashioz/man-haghighi-mono-repo-sub001/internal/utils/logger"
)

// SalesTeamService owns the salesperson membership state machine
// (unassigned -> active -> revoked) and the workshop access grant workflow.
// Membership and grant rows are never deleted; revocation flips the state.
type SalesTeamService struct {
	sales store.SalesStore
	log   *console.Logger
}

func NewSalesTeamService(sales store.SalesStore) *SalesTeamService {
	return &SalesTeamService{
		sales: sales,
		log:   console.New("sales_team_service"),
	}
}

// AssignMember puts a salesperson on a team. A salesperson can hold at most
// one active membership across all teams; a second assignment anywhere,
// including the same team, conflicts until the first is revoked.
func (s *SalesTeamService) AssignMember(ctx context.Context, teamID, salesPersonID string) (*models.SalesTeamMember, error) {
	team, err := s.sales.TeamByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	manager, err := s.sales.UserByID(ctx, team.ManagerID)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.BadRequest("team manager is invalid")
		}
		return nil, err
	}
	if manager.Role != models.UserRoleSalesManager || !manager.IsActive {
		return nil, errs.BadRequest("team manager is invalid")
	}

	salesPerson, err := s.sales.UserByID(ctx, salesPersonID)
	if err != nil {
		return nil, err
	}
	if salesPerson.Role != models.UserRoleSalesPerson || !salesPerson.IsActive {
		return nil, errs.BadRequest("user is not an active salesperson")
	}

	member := &models.SalesTeamMember{
		TeamID:        teamID,
		SalesPersonID: salesPersonID,
		State:         models.GrantStateActive,
	}
	if err := s.sales.CreateMembershipExclusive(ctx, member); err != nil {
		return nil, err
	}

	s.log.Success("Assigned salesperson %s to team %s", salesPersonID, teamID)
	return member, nil
}

// UnassignMember revokes the active membership for the exact (team,
// salesperson) pair. The row survives with state REVOKED for history.
func (s *SalesTeamService) UnassignMember(ctx context.Context, teamID, salesPersonID string) (*models.SalesTeamMember, error) {
	member, err := s.sales.ActiveMembership(ctx, teamID, salesPersonID)
	if err != nil {
		return nil, err
	}

	member.State = models.GrantStateRevoked
	if err := s.sales.SaveMembership(ctx, member); err != nil {
		return nil, err
	}

	s.log.Info("Revoked membership of salesperson %s in team %s", salesPersonID, teamID)
	return member, nil
}

// AvailableSalesPersons lists active salespersons not currently on any team,
// computed from row state on every call.
func (s *SalesTeamService) AvailableSalesPersons(ctx context.Context) ([]models.User, error) {
	return s.sales.AvailableSalesPersons(ctx)
}

// GrantWorkshopAccess is an idempotent upsert: absent row is created, a
// revoked row is flipped back to ACTIVE with a refreshed GrantedBy. The row
// count per (salesperson, workshop) pair never grows past one.
func (s *SalesTeamService) GrantWorkshopAccess(ctx context.Context, grantedBy, workshopID, salesPersonID string) (*models.SalesPersonWorkshopAccess, error) {
	workshop, err := s.sales.WorkshopByID(ctx, workshopID)
	if err != nil {
		return nil, err
	}
	if !workshop.Active {
		return nil, errs.BadRequest("workshop is not active")
	}

	salesPerson, err := s.sales.UserByID(ctx, salesPersonID)
	if err != nil {
		return nil, err
	}
	if salesPerson.Role != models.UserRoleSalesPerson || !salesPerson.IsActive {
		return nil, errs.BadRequest("user is not an active salesperson")
	}

	access, err := s.sales.WorkshopAccess(ctx, salesPersonID, workshopID)
	if err != nil {
		if !errs.IsNotFound(err) {
			return nil, err
		}
		access = &models.SalesPersonWorkshopAccess{
			SalesPersonID: salesPersonID,
			WorkshopID:    workshopID,
			State:         models.GrantStateActive,
			GrantedBy:     grantedBy,
		}
		if err := s.sales.CreateWorkshopAccess(ctx, access); err != nil {
			return nil, err
		}
		return access, nil
	}

	access.State = models.GrantStateActive
	access.GrantedBy = grantedBy
	access.IsDeleted = false
	if err := s.sales.SaveWorkshopAccess(ctx, access); err != nil {
		return nil, err
	}
	return access, nil
}

// RevokeWorkshopAccess requires an existing grant row and flips it to
// REVOKED. A later re-grant reuses the same row.
func (s *SalesTeamService) RevokeWorkshopAccess(ctx context.Context, workshopID, salesPersonID string) (*models.SalesPersonWorkshopAccess, error) {
	access, err := s.sales.WorkshopAccess(ctx, salesPersonID, workshopID)
	if err != nil {
		return nil, err
	}

	access.State = models.GrantStateRevoked
	if err := s.sales.SaveWorkshopAccess(ctx, access); err != nil {
		return nil, err
	}
	return access, nil
}

// AccessibleWorkshops lists active workshops where an ACTIVE grant row
// exists for the salesperson, straight from current row states.
func (s *SalesTeamService) AccessibleWorkshops(ctx context.Context, salesPersonID string) ([]models.Workshop, error) {
	return s.sales.ActiveWorkshopsForSalesPerson(ctx, salesPersonID)
}
