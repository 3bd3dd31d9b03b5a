package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/errs"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/models"
)

func newSalesFixture(t *testing.T) (*memStore, *SalesTeamService, *models.User, *models.SalesTeam) {
	t.Helper()
	mem := newMemStore()
	svc := NewSalesTeamService(mem)
	manager := mem.addUser(models.UserRoleSalesManager, true)
	team := mem.addTeam(manager.ID)
	return mem, svc, manager, team
}

func TestAssignMember(t *testing.T) {
	ctx := context.Background()
	mem, svc, _, team := newSalesFixture(t)
	salesPerson := mem.addUser(models.UserRoleSalesPerson, true)

	member, err := svc.AssignMember(ctx, team.ID, salesPerson.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GrantStateActive, member.State)
	assert.Equal(t, team.ID, member.TeamID)
}

func TestAssignMemberConflictsAcrossTeams(t *testing.T) {
	ctx := context.Background()
	mem, svc, manager, team1 := newSalesFixture(t)
	team2 := mem.addTeam(manager.ID)
	salesPerson := mem.addUser(models.UserRoleSalesPerson, true)

	_, err := svc.AssignMember(ctx, team1.ID, salesPerson.ID)
	require.NoError(t, err)

	_, err = svc.AssignMember(ctx, team2.ID, salesPerson.ID)
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))

	// Same team counts too; the one-active-membership rule is global.
	_, err = svc.AssignMember(ctx, team1.ID, salesPerson.ID)
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))

	// After revoking the first membership the assignment goes through.
	_, err = svc.UnassignMember(ctx, team1.ID, salesPerson.ID)
	require.NoError(t, err)

	_, err = svc.AssignMember(ctx, team2.ID, salesPerson.ID)
	require.NoError(t, err)
}

func TestAssignMemberRejectsWrongRole(t *testing.T) {
	ctx := context.Background()
	mem, svc, _, team := newSalesFixture(t)
	plainUser := mem.addUser(models.UserRoleUser, true)

	_, err := svc.AssignMember(ctx, team.ID, plainUser.ID)
	require.Error(t, err)

	var taxErr *errs.Error
	require.ErrorAs(t, err, &taxErr)
	assert.Equal(t, errs.KindBadRequest, taxErr.Kind)
}

func TestAssignMemberRejectsInactiveSalesPerson(t *testing.T) {
	ctx := context.Background()
	mem, svc, _, team := newSalesFixture(t)
	inactive := mem.addUser(models.UserRoleSalesPerson, false)

	_, err := svc.AssignMember(ctx, team.ID, inactive.ID)
	require.Error(t, err)

	var taxErr *errs.Error
	require.ErrorAs(t, err, &taxErr)
	assert.Equal(t, errs.KindBadRequest, taxErr.Kind)
}

func TestAssignMemberRejectsInvalidManager(t *testing.T) {
	ctx := context.Background()
	mem, svc, _, _ := newSalesFixture(t)
	// A team whose manager is a plain user is invalid.
	notManager := mem.addUser(models.UserRoleUser, true)
	badTeam := mem.addTeam(notManager.ID)
	salesPerson := mem.addUser(models.UserRoleSalesPerson, true)

	_, err := svc.AssignMember(ctx, badTeam.ID, salesPerson.ID)
	require.Error(t, err)

	var taxErr *errs.Error
	require.ErrorAs(t, err, &taxErr)
	assert.Equal(t, errs.KindBadRequest, taxErr.Kind)
}

func TestUnassignMemberWithoutActiveRow(t *testing.T) {
	ctx := context.Background()
	mem, svc, _, team := newSalesFixture(t)
	salesPerson := mem.addUser(models.UserRoleSalesPerson, true)

	_, err := svc.UnassignMember(ctx, team.ID, salesPerson.ID)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestUnassignKeepsRowForHistory(t *testing.T) {
	ctx := context.Background()
	mem, svc, _, team := newSalesFixture(t)
	salesPerson := mem.addUser(models.UserRoleSalesPerson, true)

	_, err := svc.AssignMember(ctx, team.ID, salesPerson.ID)
	require.NoError(t, err)

	member, err := svc.UnassignMember(ctx, team.ID, salesPerson.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GrantStateRevoked, member.State)
	require.Len(t, mem.members, 1, "revocation flips state, never deletes the row")
}

func TestAvailableSalesPersonsTracksRowState(t *testing.T) {
	ctx := context.Background()
	mem, svc, _, team := newSalesFixture(t)
	free := mem.addUser(models.UserRoleSalesPerson, true)
	assigned := mem.addUser(models.UserRoleSalesPerson, true)

	_, err := svc.AssignMember(ctx, team.ID, assigned.ID)
	require.NoError(t, err)

	available, err := svc.AvailableSalesPersons(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, free.ID, available[0].ID)

	// Revoking the membership makes the salesperson available again.
	_, err = svc.UnassignMember(ctx, team.ID, assigned.ID)
	require.NoError(t, err)

	available, err = svc.AvailableSalesPersons(ctx)
	require.NoError(t, err)
	assert.Len(t, available, 2)
}

func TestWorkshopAccessGrantRevokeRegrantReusesRow(t *testing.T) {
	ctx := context.Background()
	mem, svc, manager, _ := newSalesFixture(t)
	workshop := mem.addWorkshop(manager.ID, true)
	salesPerson := mem.addUser(models.UserRoleSalesPerson, true)

	granted, err := svc.GrantWorkshopAccess(ctx, manager.ID, workshop.ID, salesPerson.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GrantStateActive, granted.State)
	firstRowID := granted.ID

	revoked, err := svc.RevokeWorkshopAccess(ctx, workshop.ID, salesPerson.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GrantStateRevoked, revoked.State)

	regranted, err := svc.GrantWorkshopAccess(ctx, manager.ID, workshop.ID, salesPerson.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GrantStateActive, regranted.State)
	assert.Equal(t, firstRowID, regranted.ID, "re-grant must reuse the original row")
	assert.Len(t, mem.wsAccess, 1)
}

func TestGrantWorkshopAccessMissingWorkshop(t *testing.T) {
	ctx := context.Background()
	mem, svc, manager, _ := newSalesFixture(t)
	salesPerson := mem.addUser(models.UserRoleSalesPerson, true)

	_, err := svc.GrantWorkshopAccess(ctx, manager.ID, "no-such-workshop", salesPerson.ID)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestRevokeWorkshopAccessRequiresRow(t *testing.T) {
	ctx := context.Background()
	mem, svc, manager, _ := newSalesFixture(t)
	workshop := mem.addWorkshop(manager.ID, true)
	salesPerson := mem.addUser(models.UserRoleSalesPerson, true)

	_, err := svc.RevokeWorkshopAccess(ctx, workshop.ID, salesPerson.ID)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestAccessibleWorkshopsFollowsGrantState(t *testing.T) {
	ctx := context.Background()
	mem, svc, manager, _ := newSalesFixture(t)
	workshop := mem.addWorkshop(manager.ID, true)
	inactive := mem.addWorkshop(manager.ID, false)
	salesPerson := mem.addUser(models.UserRoleSalesPerson, true)

	_, err := svc.GrantWorkshopAccess(ctx, manager.ID, workshop.ID, salesPerson.ID)
	require.NoError(t, err)

	// Inactive workshop never appears even though a grant could exist.
	_, err = svc.GrantWorkshopAccess(ctx, manager.ID, inactive.ID, salesPerson.ID)
	require.Error(t, err)

	workshops, err := svc.AccessibleWorkshops(ctx, salesPerson.ID)
	require.NoError(t, err)
	require.Len(t, workshops, 1)
	assert.Equal(t, workshop.ID, workshops[0].ID)

	_, err = svc.RevokeWorkshopAccess(ctx, workshop.ID, salesPerson.ID)
	require.NoError(t, err)

	workshops, err = svc.AccessibleWorkshops(ctx, salesPerson.ID)
	require.NoError(t, err)
	assert.Empty(t, workshops)
}
