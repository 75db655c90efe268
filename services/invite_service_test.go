package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtpulse/badminton-system/models"
)

func newTestInviteService(inviteRepo *fakeInviteRepo, circleRepo *fakeCircleRepo, membershipRepo *fakeMembershipRepo) InviteService {
	return NewInviteService(nil, inviteRepo, circleRepo, membershipRepo, testLogger())
}

func TestCreateInvite(t *testing.T) {
	inviteRepo := newFakeInviteRepo()
	membershipRepo := newFakeMembershipRepo()
	membershipRepo.add(models.CircleMembership{
		CircleID: 1, UserID: 5, Role: models.RoleMember, Status: models.MembershipActive,
		Permissions: models.MemberPermissions{CanInvite: true},
	})
	svc := newTestInviteService(inviteRepo, newFakeCircleRepo(), membershipRepo)

	invite, err := svc.CreateInvite(context.Background(), 1, 5)
	require.NoError(t, err)

	assert.Equal(t, 1, invite.CircleID)
	assert.Equal(t, 5, invite.CreatedBy)
	// 16 random bytes, hex encoded.
	assert.Len(t, invite.Token, 32)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), invite.ExpiresAt, time.Minute)
	assert.Len(t, inviteRepo.invites, 1)
}

func TestCreateInviteByOwnerWithoutExplicitPermission(t *testing.T) {
	membershipRepo := newFakeMembershipRepo()
	membershipRepo.add(models.CircleMembership{CircleID: 1, UserID: 1, Role: models.RoleOwner, Status: models.MembershipActive})
	svc := newTestInviteService(newFakeInviteRepo(), newFakeCircleRepo(), membershipRepo)

	_, err := svc.CreateInvite(context.Background(), 1, 1)
	assert.NoError(t, err)
}

func TestCreateInviteForbidden(t *testing.T) {
	membershipRepo := newFakeMembershipRepo()
	membershipRepo.add(models.CircleMembership{CircleID: 1, UserID: 5, Role: models.RoleMember, Status: models.MembershipActive})
	svc := newTestInviteService(newFakeInviteRepo(), newFakeCircleRepo(), membershipRepo)
	ctx := context.Background()

	_, err := svc.CreateInvite(ctx, 1, 5)
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	// Non-members cannot mint invites at all.
	_, err = svc.CreateInvite(ctx, 1, 99)
	assert.ErrorIs(t, err, ErrOwnerActionRequired)
}

func TestAcceptInviteGuards(t *testing.T) {
	inviteRepo := newFakeInviteRepo()
	circleRepo := newFakeCircleRepo()
	circleRepo.add(models.Circle{ID: 1, Name: "Club", Privacy: models.PrivacyInviteOnly, MemberCount: 2, MaxMembers: 2})
	membershipRepo := newFakeMembershipRepo()
	membershipRepo.add(models.CircleMembership{CircleID: 1, UserID: 7, Status: models.MembershipActive})
	svc := newTestInviteService(inviteRepo, circleRepo, membershipRepo)
	ctx := context.Background()

	_, err := svc.AcceptInvite(ctx, "unknown-token", 5)
	assert.ErrorIs(t, err, ErrInviteNotFound)

	expired := &models.CircleInvite{CircleID: 1, Token: "expired", CreatedBy: 1, ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, inviteRepo.Create(ctx, expired))
	_, err = svc.AcceptInvite(ctx, "expired", 5)
	assert.ErrorIs(t, err, ErrInviteExpired)

	valid := &models.CircleInvite{CircleID: 1, Token: "valid", CreatedBy: 1, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, inviteRepo.Create(ctx, valid))

	// The circle is at capacity.
	_, err = svc.AcceptInvite(ctx, "valid", 5)
	assert.ErrorIs(t, err, ErrCircleFull)

	// Existing members cannot accept again.
	circleRepo.circles[1].MaxMembers = 10
	_, err = svc.AcceptInvite(ctx, "valid", 7)
	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestDeleteExpiredDelegates(t *testing.T) {
	svc := newTestInviteService(newFakeInviteRepo(), newFakeCircleRepo(), newFakeMembershipRepo())

	removed, err := svc.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)
}
