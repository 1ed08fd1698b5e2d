package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Murilo2811/relm-care-plus/internal/warranty/entity"
	"github.com/Murilo2811/relm-care-plus/internal/warranty/testutil"
)

func TestFindEventsByClaimStableOrderOnEqualTimestamps(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewClaimRepository(db)
	ctx := context.Background()

	claim := testutil.SeedClaim(t, db, entity.StatusRecebido, nil)

	// two events sharing one timestamp must still come back in a fixed
	// order, tie-broken by id
	at := time.Now().Truncate(time.Second)
	for _, id := range []string{"event-b", "event-a", "event-c"} {
		err := repo.AppendEvent(ctx, &entity.ClaimEvent{
			ID:        id,
			ClaimID:   claim.ID,
			EventType: entity.EventComment,
			Comment:   "comentário " + id,
			ActorID:   "actor-1",
			CreatedAt: at,
		})
		if err != nil {
			t.Fatalf("AppendEvent %s failed: %v", id, err)
		}
	}

	events, err := repo.FindEventsByClaim(ctx, claim.ID)
	if err != nil {
		t.Fatalf("FindEventsByClaim failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}
	for i, want := range []string{"event-a", "event-b", "event-c"} {
		if events[i].ID != want {
			t.Errorf("Position %d: got %s, want %s", i, events[i].ID, want)
		}
	}
}
