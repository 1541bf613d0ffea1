package schedule

import (
	"context"

	"github.com/google/uuid"

	"github.com/crewsched/backend/internal/models"
)

// Resolver computes the crew roster eligible for event assignment.
//
// An event's assignable crew is derived from its team: with a team set,
// eligible assignees are exactly that team's current roster; with no team,
// eligibility falls back to org members carrying the crew role.
type Resolver struct {
	roster  RosterStore
	members MemberDirectory
}

// NewResolver creates a crew resolver.
func NewResolver(roster RosterStore, members MemberDirectory) *Resolver {
	return &Resolver{roster: roster, members: members}
}

// EligibleCrew returns the ordered list of members eligible for assignment
// under the given team scope. Roster entries whose user has no org member
// record are silently excluded.
func (r *Resolver) EligibleCrew(ctx context.Context, teamID *uuid.UUID) ([]models.OrgMember, error) {
	if teamID == nil {
		return r.members.List(ctx, models.MemberRoleCrew)
	}
	roster, err := r.roster.ListMembers(ctx, *teamID)
	if err != nil {
		return nil, err
	}
	if len(roster) == 0 {
		return nil, nil
	}
	userIDs := make([]uuid.UUID, 0, len(roster))
	for _, tm := range roster {
		userIDs = append(userIDs, tm.UserID)
	}
	return r.members.ListByUserIDs(ctx, userIDs)
}

// IntersectSelection keeps only the selected user ids that appear in the
// eligible set, preserving order and dropping duplicates. Used when a form's
// team changes so stale picks vanish without confirmation, and again at save
// time.
func IntersectSelection(selected []uuid.UUID, eligible []models.OrgMember) []uuid.UUID {
	allowed := make(map[uuid.UUID]struct{}, len(eligible))
	for _, m := range eligible {
		allowed[m.UserID] = struct{}{}
	}
	seen := make(map[uuid.UUID]struct{}, len(selected))
	var out []uuid.UUID
	for _, id := range selected {
		if _, ok := allowed[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
