package schedule

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/crewsched/backend/internal/models"
)

func TestEligibleCrew_TeamScoped(t *testing.T) {
	ann := crewMember("Ann")
	bob := crewMember("Bob")
	cal := crewMember("Cal")

	teamID := uuid.New()
	roster := &fakeRoster{rosters: map[uuid.UUID][]models.TeamMember{
		teamID: {
			{ID: uuid.New(), TeamID: teamID, UserID: ann.UserID},
			{ID: uuid.New(), TeamID: teamID, UserID: bob.UserID},
			{ID: uuid.New(), TeamID: teamID, UserID: uuid.New()}, // no directory record
		},
	}}
	dir := &fakeDirectory{members: []models.OrgMember{ann, bob, cal}}
	r := NewResolver(roster, dir)

	got, err := r.EligibleCrew(context.Background(), &teamID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, ann.UserID, got[0].UserID)
	require.Equal(t, bob.UserID, got[1].UserID)
}

func TestEligibleCrew_NoTeamFallsBackToCrewRole(t *testing.T) {
	ann := crewMember("Ann")
	admin := models.OrgMember{ID: uuid.New(), UserID: uuid.New(), Role: "admin", DisplayName: "Boss"}
	dir := &fakeDirectory{members: []models.OrgMember{ann, admin}}
	r := NewResolver(&fakeRoster{}, dir)

	got, err := r.EligibleCrew(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, ann.UserID, got[0].UserID)
}

func TestEligibleCrew_EmptyRoster(t *testing.T) {
	teamID := uuid.New()
	dir := &fakeDirectory{members: []models.OrgMember{crewMember("Ann")}}
	r := NewResolver(&fakeRoster{rosters: map[uuid.UUID][]models.TeamMember{}}, dir)

	got, err := r.EligibleCrew(context.Background(), &teamID)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestIntersectSelection(t *testing.T) {
	ann := crewMember("Ann")
	bob := crewMember("Bob")
	outsider := uuid.New()

	eligible := []models.OrgMember{ann, bob}
	selected := []uuid.UUID{bob.UserID, outsider, ann.UserID, bob.UserID}

	got := IntersectSelection(selected, eligible)
	require.Equal(t, []uuid.UUID{bob.UserID, ann.UserID}, got)
}

func TestIntersectSelection_NoEligible(t *testing.T) {
	got := IntersectSelection([]uuid.UUID{uuid.New()}, nil)
	require.Empty(t, got)
}
