package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/mirrorwell/mirrorwell-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:               uuid.New(),
		Email:            email,
		Password:         "pw",
		FirstName:        "A",
		LastName:         "B",
		SubscriptionTier: "free",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedJourney(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *types.Journey {
	tb.Helper()
	j := &types.Journey{
		ID:           uuid.New(),
		UserID:       userID,
		CurrentPhase: "foundation",
	}
	if err := tx.WithContext(ctx).Create(j).Error; err != nil {
		tb.Fatalf("seed journey: %v", err)
	}
	return j
}

func SeedConversation(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, mirror string) *types.Conversation {
	tb.Helper()
	c := &types.Conversation{
		ID:                     uuid.New(),
		UserID:                 userID,
		Mirror:                 mirror,
		Language:               "en",
		JourneyPhaseAtCreation: "foundation",
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed conversation: %v", err)
	}
	return c
}

func SeedSessionLadder(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, mirror string) []*types.UserSession {
	tb.Helper()
	out := make([]*types.UserSession, 0, 7)
	for n := 1; n <= 7; n++ {
		status := types.SessionLocked
		if n == 1 {
			status = types.SessionAvailable
		}
		s := &types.UserSession{
			ID:            uuid.New(),
			UserID:        userID,
			Mirror:        mirror,
			SessionNumber: n,
			Status:        status,
		}
		if err := tx.WithContext(ctx).Create(s).Error; err != nil {
			tb.Fatalf("seed session: %v", err)
		}
		out = append(out, s)
	}
	return out
}
