package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	types "github.com/mirrorwell/mirrorwell-backend/internal/domain"
	"github.com/mirrorwell/mirrorwell-backend/internal/mirrors"
	"github.com/mirrorwell/mirrorwell-backend/internal/platform/apierr"
)

func TestApplyTierChangeReflectsInAccess(t *testing.T) {
	users := newFakeUserRepo()
	user := &types.User{ID: uuid.New(), Email: "tier@example.com", SubscriptionTier: "free"}
	users.rows[user.ID] = user

	svc := NewUserService(nil, testLogger(t), users)
	dbc := authedCtx(user.ID)

	if mirrors.CanAccessMirror(mirrors.NormalizeTier(user.SubscriptionTier), "pulse") {
		t.Fatalf("free tier should not reach pulse before upgrade")
	}

	updated, err := svc.ApplyTierChange(dbc, user.ID, "explorer")
	if err != nil {
		t.Fatalf("ApplyTierChange: %v", err)
	}
	if updated.SubscriptionTier != "explorer" {
		t.Fatalf("tier = %q, want explorer", updated.SubscriptionTier)
	}
	if !mirrors.CanAccessMirror(mirrors.NormalizeTier(users.rows[user.ID].SubscriptionTier), "pulse") {
		t.Fatalf("explorer tier should reach pulse after upgrade")
	}

	// Unknown tiers from the webhook normalize to free rather than erroring.
	if _, err := svc.ApplyTierChange(dbc, user.ID, "platinum"); err != nil {
		t.Fatalf("ApplyTierChange(platinum): %v", err)
	}
	if got := users.rows[user.ID].SubscriptionTier; got != "free" {
		t.Fatalf("tier = %q, want free", got)
	}
}

func TestApplyTierChangeUnknownUser(t *testing.T) {
	svc := NewUserService(nil, testLogger(t), newFakeUserRepo())

	_, err := svc.ApplyTierChange(authedCtx(uuid.New()), uuid.New(), "voyager")
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Code != "user_not_found" {
		t.Fatalf("err = %v, want user_not_found", err)
	}
}

func TestUpdateLanguage(t *testing.T) {
	users := newFakeUserRepo()
	user := &types.User{ID: uuid.New(), Email: "lang@example.com", SubscriptionTier: "free", LanguagePreference: "en"}
	users.rows[user.ID] = user

	svc := NewUserService(nil, testLogger(t), users)
	dbc := authedCtx(user.ID)

	if err := svc.UpdateLanguage(dbc, "es"); err != nil {
		t.Fatalf("UpdateLanguage(es): %v", err)
	}
	if got := users.rows[user.ID].LanguagePreference; got != "es" {
		t.Fatalf("language = %q, want es", got)
	}

	err := svc.UpdateLanguage(dbc, "fr")
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Code != "invalid_request" {
		t.Fatalf("err = %v, want invalid_request", err)
	}
}
