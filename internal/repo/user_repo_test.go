package repo

import (
	"context"
	"errors"
	"testing"
)

func TestUsers_CreateAndLookup(t *testing.T) {
	db := newLeadRepoDB(t)
	ctx := context.Background()

	u, err := CreateUser(ctx, db, "Asha", "  Asha@Example.com ", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Email != "asha@example.com" || u.Role != "agent" {
		t.Fatalf("unexpected user: %+v", u)
	}

	byEmail, err := GetUserByEmail(ctx, db, "ASHA@example.com")
	if err != nil || byEmail.ID != u.ID {
		t.Fatalf("GetUserByEmail = %+v, %v", byEmail, err)
	}
	byID, err := GetUserByID(ctx, db, u.ID)
	if err != nil || byID.Email != u.Email {
		t.Fatalf("GetUserByID = %+v, %v", byID, err)
	}

	if _, err := CreateUser(ctx, db, "Other", "asha@example.com", "hash"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if _, err := GetUserByID(ctx, db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
