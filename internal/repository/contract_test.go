package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Dias221467/Friend_Manager/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runUserRepositoryContract exercises behaviour every UserRepository must share.
func runUserRepositoryContract(t *testing.T, repo UserRepository) {
	ctx := context.Background()

	alice := &models.User{Email: "Alice@Example.com", Name: "Alice Liddell", IsActive: true}
	require.NoError(t, repo.Create(ctx, alice))
	require.NotEmpty(t, alice.ID)
	assert.Equal(t, "alice@example.com", alice.Email)
	assert.False(t, alice.CreatedAt.IsZero())

	bob := &models.User{Email: "bob@example.com", Name: "Bob Alison", IsActive: true}
	require.NoError(t, repo.Create(ctx, bob))
	carol := &models.User{Email: "carol@example.com", Name: "Carol 100%_real", IsActive: true}
	require.NoError(t, repo.Create(ctx, carol))

	t.Run("duplicate email ignoring case", func(t *testing.T) {
		err := repo.Create(ctx, &models.User{Email: "ALICE@example.com", Name: "Other"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, "Bob Alison", got.Name)

		_, err = repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("get by email ignores case", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "ALICE@EXAMPLE.COM")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)

		_, err = repo.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("get by ids", func(t *testing.T) {
		users, err := repo.GetByIDs(ctx, []string{alice.ID, carol.ID, "missing"})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{alice.ID, carol.ID}, userIDs(users))

		users, err = repo.GetByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("search by name substring", func(t *testing.T) {
		users, total, err := repo.SearchByName(ctx, "ALI", models.NewPagination(1, 10))
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.ElementsMatch(t, []string{alice.ID, bob.ID}, userIDs(users))
	})

	t.Run("search by name treats wildcards literally", func(t *testing.T) {
		users, total, err := repo.SearchByName(ctx, "%_", models.NewPagination(1, 10))
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, []string{carol.ID}, userIDs(users))
	})

	t.Run("search by email is exact", func(t *testing.T) {
		users, total, err := repo.SearchByEmail(ctx, "Bob@Example.com", models.NewPagination(1, 10))
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, []string{bob.ID}, userIDs(users))

		users, total, err = repo.SearchByEmail(ctx, "bob@example", models.NewPagination(1, 10))
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, users)
	})

	t.Run("list paginates", func(t *testing.T) {
		first, total, err := repo.List(ctx, models.NewPagination(1, 2))
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, first, 2)

		second, _, err := repo.List(ctx, models.NewPagination(2, 2))
		require.NoError(t, err)
		assert.Len(t, second, 1)
		assert.NotContains(t, userIDs(first), second[0].ID)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		users, total, err := repo.List(ctx, models.NewPagination(math.MaxInt, 10))
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Empty(t, users)

		users, total, err = repo.SearchByName(ctx, "", models.NewPagination(math.MaxInt, models.MaxPageSize))
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Empty(t, users)
	})
}

// runFriendRequestRepositoryContract exercises the store guarantees the
// friend request state machine relies on.
func runFriendRequestRepositoryContract(t *testing.T, repo FriendRequestRepository) {
	ctx := context.Background()

	t.Run("create assigns id, status and timestamp", func(t *testing.T) {
		req := &models.FriendRequest{FromUserID: "u1", ToUserID: "u2", Status: models.StatusAccepted}
		require.NoError(t, repo.Create(ctx, req))
		assert.NotEmpty(t, req.ID)
		assert.Equal(t, models.StatusPending, req.Status)
		assert.False(t, req.CreatedAt.IsZero())

		got, err := repo.GetByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, "u1", got.FromUserID)
		assert.Equal(t, "u2", got.ToUserID)
		assert.Equal(t, models.StatusPending, got.Status)
	})

	t.Run("ordered pair is unique", func(t *testing.T) {
		err := repo.Create(ctx, &models.FriendRequest{FromUserID: "u1", ToUserID: "u2"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("reverse pair is independent", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, &models.FriendRequest{FromUserID: "u2", ToUserID: "u1"}))
	})

	t.Run("self request refused", func(t *testing.T) {
		err := repo.Create(ctx, &models.FriendRequest{FromUserID: "u3", ToUserID: "u3"})
		assert.ErrorIs(t, err, ErrSelfRequest)
	})

	t.Run("find by ordered pair", func(t *testing.T) {
		got, err := repo.Find(ctx, "u1", "u2")
		require.NoError(t, err)
		assert.Equal(t, "u1", got.FromUserID)

		_, err = repo.Find(ctx, "u1", "u9")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("conditional update succeeds once", func(t *testing.T) {
		req, err := repo.Find(ctx, "u1", "u2")
		require.NoError(t, err)

		require.NoError(t, repo.UpdateStatusIfPending(ctx, req.ID, models.StatusAccepted))
		assert.ErrorIs(t, repo.UpdateStatusIfPending(ctx, req.ID, models.StatusRejected), ErrConflict)

		got, err := repo.GetByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusAccepted, got.Status)

		assert.ErrorIs(t, repo.UpdateStatusIfPending(ctx, "missing", models.StatusAccepted), ErrConflict)
	})

	t.Run("pending and accepted listings", func(t *testing.T) {
		pending, err := repo.ListPending(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "u2", pending[0].FromUserID)

		pending, err = repo.ListPending(ctx, "u2")
		require.NoError(t, err)
		assert.Empty(t, pending)

		outgoing, err := repo.ListAccepted(ctx, "u1", Outgoing)
		require.NoError(t, err)
		require.Len(t, outgoing, 1)
		assert.Equal(t, "u2", outgoing[0].ToUserID)

		incoming, err := repo.ListAccepted(ctx, "u2", Incoming)
		require.NoError(t, err)
		require.Len(t, incoming, 1)
		assert.Equal(t, "u1", incoming[0].FromUserID)

		incoming, err = repo.ListAccepted(ctx, "u1", Incoming)
		require.NoError(t, err)
		assert.Empty(t, incoming)
	})

	t.Run("concurrent creates of one pair", func(t *testing.T) {
		const workers = 8
		var created, duplicates int32
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := repo.Create(ctx, &models.FriendRequest{FromUserID: "race-a", ToUserID: "race-b"})
				switch {
				case err == nil:
					atomic.AddInt32(&created, 1)
				case errors.Is(err, ErrDuplicate):
					atomic.AddInt32(&duplicates, 1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), created)
		assert.Equal(t, int32(workers-1), duplicates)
	})

	t.Run("concurrent resolves of one request", func(t *testing.T) {
		req, err := repo.Find(ctx, "race-a", "race-b")
		require.NoError(t, err)

		const workers = 8
		var won int32
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			status := models.StatusAccepted
			if i%2 == 0 {
				status = models.StatusRejected
			}
			go func(status models.FriendRequestStatus) {
				defer wg.Done()
				if err := repo.UpdateStatusIfPending(ctx, req.ID, status); err == nil {
					atomic.AddInt32(&won, 1)
				} else if !errors.Is(err, ErrConflict) {
					t.Errorf("unexpected error: %v", err)
				}
			}(status)
		}
		wg.Wait()
		assert.Equal(t, int32(1), won)
	})
}

func userIDs(users []models.User) []string {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

func uniqueName() string {
	return fmt.Sprintf("friend_manager_test_%d", testCounter.Add(1))
}

var testCounter atomic.Int64
