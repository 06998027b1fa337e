package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reshetovitsme/chat-guard/internal/modules/member/domain"
	"github.com/reshetovitsme/chat-guard/internal/modules/member/repository"
	msgdomain "github.com/reshetovitsme/chat-guard/internal/modules/message/domain"
	policydomain "github.com/reshetovitsme/chat-guard/internal/modules/policy/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const botID = int64(999)

type fakeLookup struct {
	standings map[int64]*domain.Standing
}

func (f *fakeLookup) GetStanding(_ context.Context, _, userID int64) (*domain.Standing, error) {
	s, ok := f.standings[userID]
	if !ok {
		return nil, errors.New("lookup failed")
	}
	return s, nil
}

func (f *fakeLookup) BotID() int64 { return botID }

func newService(t *testing.T, standings map[int64]*domain.Standing) *Service {
	store, err := repository.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	return New(store, &fakeLookup{standings: standings}, 24*time.Hour)
}

func TestResolveRole(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)
	svc := newService(t, map[int64]*domain.Standing{
		1: {Status: domain.StatusCreator},
		2: {Status: domain.StatusAdministrator},
		3: {Status: domain.StatusRestricted},
		4: {Status: domain.StatusMember},
		5: {Status: domain.StatusMember},
		6: {Status: domain.StatusLeft},
	})
	require.NoError(t, svc.RecordJoin(ctx, -1, 4, "fresh", now.Add(-time.Hour)))
	require.NoError(t, svc.RecordJoin(ctx, -1, 5, "old", now.Add(-48*time.Hour)))

	tests := []struct {
		userID int64
		want   msgdomain.Role
	}{
		{1, msgdomain.RoleOwner},
		{2, msgdomain.RoleAdmin},
		{3, msgdomain.RoleRestricted},
		{4, msgdomain.RoleNew},
		{5, msgdomain.RoleMember},
		{6, msgdomain.RoleUnknown},
		{7, msgdomain.RoleUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, svc.ResolveRole(ctx, -1, tt.userID, now), "user %d", tt.userID)
	}

	require.NoError(t, svc.RecordLeave(ctx, -1, 4))
	assert.Equal(t, msgdomain.RoleMember, svc.ResolveRole(ctx, -1, 4, now))
}

func TestLoadCapabilities(t *testing.T) {
	tests := []struct {
		name     string
		standing *domain.Standing
		want     policydomain.Capabilities
	}{
		{"creator", &domain.Standing{Status: domain.StatusCreator}, policydomain.Capabilities{Delete: true, Restrict: true, Send: true}},
		{"admin flags", &domain.Standing{Status: domain.StatusAdministrator, CanDeleteMessages: true}, policydomain.Capabilities{Delete: true, Send: true}},
		{"member", &domain.Standing{Status: domain.StatusMember}, policydomain.Capabilities{Send: true}},
		{"restricted muted", &domain.Standing{Status: domain.StatusRestricted}, policydomain.Capabilities{}},
		{"restricted can send", &domain.Standing{Status: domain.StatusRestricted, CanSendMessages: true}, policydomain.Capabilities{Send: true}},
		{"kicked", &domain.Standing{Status: domain.StatusKicked}, policydomain.Capabilities{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t, map[int64]*domain.Standing{botID: tt.standing})
			caps, err := svc.LoadCapabilities(context.Background(), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *caps)
		})
	}
}

func TestLoadCapabilitiesLookupFailure(t *testing.T) {
	svc := newService(t, nil)
	_, err := svc.LoadCapabilities(context.Background(), -1)
	assert.Error(t, err)
}
