package schedule

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/crewsched/backend/internal/models"
)

// Reconciler replaces the full assignment set for an event on every save.
type Reconciler struct {
	assignments AssignmentStore
}

// NewReconciler creates an assignment reconciler.
func NewReconciler(assignments AssignmentStore) *Reconciler {
	return &Reconciler{assignments: assignments}
}

// Replace swaps the event's assignments for the desired user set. Duplicates
// in desiredUserIDs collapse. An empty set deletes without inserting.
//
// Failure of the delete step aborts before any insert. Failure of the insert
// step after a successful delete leaves the event with zero assignees and
// surfaces the error to the caller; the delete is not rolled back.
func (r *Reconciler) Replace(ctx context.Context, eventID uuid.UUID, desiredUserIDs []uuid.UUID) ([]models.EventAssignment, error) {
	if err := r.assignments.DeleteByEvent(ctx, eventID); err != nil {
		return nil, fmt.Errorf("clear assignments: %w", err)
	}

	unique := dedupe(desiredUserIDs)
	if len(unique) == 0 {
		return nil, nil
	}

	rows, err := r.assignments.InsertBatch(ctx, eventID, unique)
	if err != nil {
		return nil, fmt.Errorf("insert assignments (event left unassigned): %w", err)
	}
	return rows, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	var out []uuid.UUID
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
