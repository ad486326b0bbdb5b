package services

import (
	"context"
	"errors"
	"testing"

	"copool/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSetUserRole(t *testing.T) {
	users := newMemUserRepo()
	svc := NewUserService(users, newMemCreditRepo(), testLogger())
	ctx := context.Background()

	userID := users.addUser("asha")

	if err := svc.SetUserRole(ctx, userID, models.UserRoleAdmin); err != nil {
		t.Fatalf("SetUserRole: %v", err)
	}
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if user.Role != models.UserRoleAdmin {
		t.Errorf("role = %q, want admin", user.Role)
	}

	if err := svc.SetUserRole(ctx, userID, models.UserRole("superuser")); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unknown role: err = %v, want ErrInvalidInput", err)
	}
	if err := svc.SetUserRole(ctx, primitive.NewObjectID(), models.UserRoleUser); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user: err = %v, want ErrNotFound", err)
	}
}

func TestAdjustCarbonCredits(t *testing.T) {
	users := newMemUserRepo()
	credits := newMemCreditRepo()
	svc := NewUserService(users, credits, testLogger())
	ctx := context.Background()

	userID := users.addUser("asha")

	if err := svc.AdjustCarbonCredits(ctx, userID, 10, "promo"); err != nil {
		t.Fatalf("AdjustCarbonCredits: %v", err)
	}
	if err := svc.AdjustCarbonCredits(ctx, userID, -4, ""); err != nil {
		t.Fatalf("AdjustCarbonCredits negative: %v", err)
	}

	user, err := users.GetByID(ctx, userID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if user.CarbonCredits != 6 {
		t.Errorf("balance = %d, want 6", user.CarbonCredits)
	}

	entries, err := svc.ListCarbonCredits(ctx, userID)
	if err != nil {
		t.Fatalf("ListCarbonCredits: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ledger entries = %d, want 2", len(entries))
	}
	if entries[0].Reason != "manual adjustment" {
		t.Errorf("default reason = %q", entries[0].Reason)
	}

	if err := svc.AdjustCarbonCredits(ctx, userID, 0, "noop"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero delta: err = %v, want ErrInvalidInput", err)
	}
}
