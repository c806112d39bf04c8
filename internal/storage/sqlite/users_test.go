package sqlite

import (
	"context"
	"errors"
	"testing"

	"sitecms/internal/storage"
)

func TestStoreImplementsInterface(t *testing.T) {
	t.Parallel()
	var _ storage.Store = (*Store)(nil)
}

func TestNewStore(t *testing.T) {
	t.Parallel()
	store, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer store.Close()

	if store == nil {
		t.Fatal("Store is nil")
	}
}

func TestUserCRUD(t *testing.T) {
	t.Parallel()
	store := setupTestStore(t)

	ctx := context.Background()

	t.Run("create and get user", func(t *testing.T) {
		username := "testuser"
		hash := gen60CharString()

		user, err := store.CreateUser(ctx, username, hash, "user")
		if err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		if user.Username != username {
			t.Errorf("want %s, got %s", username, user.Username)
		}
		if user.Role != "user" {
			t.Errorf("want role user, got %s", user.Role)
		}

		foundByUsername, err := store.GetUserByUsername(ctx, username)
		if err != nil {
			t.Fatalf("failed to get user by username: %v", err)
		}
		if foundByUsername.ID != user.ID {
			t.Errorf("ID mismatch: want %d, got %d", user.ID, foundByUsername.ID)
		}

		foundByID, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("failed to get user by id: %v", err)
		}
		if foundByID.ID != user.ID {
			t.Errorf("ID mismatch: want %d, got %d", user.ID, foundByID.ID)
		}
	})

	t.Run("duplicate username is rejected", func(t *testing.T) {
		if _, err := store.CreateUser(ctx, "twice", gen60CharString(), "user"); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
		_, err := store.CreateUser(ctx, "twice", gen60CharString(), "user")
		if !errors.Is(err, storage.ErrUniqueViolation) {
			t.Errorf("expected ErrUniqueViolation, got: %v", err)
		}
	})

	t.Run("invalid role is rejected", func(t *testing.T) {
		_, err := store.CreateUser(ctx, "badrole", gen60CharString(), "superuser")
		if !errors.Is(err, storage.ErrCheckViolation) {
			t.Errorf("expected ErrCheckViolation, got: %v", err)
		}
	})

	t.Run("missing user yields ErrNotFound", func(t *testing.T) {
		_, err := store.GetUserByID(ctx, 99999)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})
}

func TestCountAdmins(t *testing.T) {
	t.Parallel()
	store := setupTestStore(t)

	ctx := context.Background()

	count, err := store.CountAdmins(ctx)
	if err != nil {
		t.Fatalf("failed to count admins: %v", err)
	}
	if count != 0 {
		t.Errorf("want 0 admins in fresh database, got %d", count)
	}

	if _, err := store.CreateUser(ctx, "plain", gen60CharString(), "user"); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if _, err := store.CreateUser(ctx, "boss", gen60CharString(), "admin"); err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}

	count, err = store.CountAdmins(ctx)
	if err != nil {
		t.Fatalf("failed to count admins: %v", err)
	}
	if count != 1 {
		t.Errorf("want 1 admin, got %d", count)
	}
}
