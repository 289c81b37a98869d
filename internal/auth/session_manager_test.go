package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/vidtube/backend/internal/models"
)

var errStoreDown = errors.New("store down")

type fakeCredentialStore struct {
	mu       sync.Mutex
	users    map[string]models.User
	storeErr error
}

func newFakeCredentialStore(users ...models.User) *fakeCredentialStore {
	store := &fakeCredentialStore{users: make(map[string]models.User)}
	for _, user := range users {
		store.users[user.ID] = user
	}
	return store
}

func (f *fakeCredentialStore) FindByID(_ context.Context, id string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return models.User{}, errors.New("not found")
	}
	return user, nil
}

func (f *fakeCredentialStore) StoreRefreshToken(_ context.Context, userID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return f.storeErr
	}
	user := f.users[userID]
	user.RefreshToken = token
	f.users[userID] = user
	return nil
}

func (f *fakeCredentialStore) SwapRefreshToken(_ context.Context, userID, current, next string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok || user.RefreshToken != current {
		return ErrTokenReused
	}
	user.RefreshToken = next
	f.users[userID] = user
	return nil
}

func (f *fakeCredentialStore) ClearRefreshToken(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := f.users[userID]
	user.RefreshToken = ""
	f.users[userID] = user
	return nil
}

func (f *fakeCredentialStore) stored(userID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[userID].RefreshToken
}

func activeUser() models.User {
	return models.User{ID: "user-1", Username: "alice", Email: "alice@example.com", IsActive: true}
}

func TestManagerIssuePersistsRefreshToken(t *testing.T) {
	store := newFakeCredentialStore(activeUser())
	manager := NewManager(newTestTokenService(), store, store)

	tokens, err := manager.Issue(context.Background(), activeUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected non-empty tokens: %+v", tokens)
	}
	if got := store.stored("user-1"); got != tokens.RefreshToken {
		t.Fatalf("expected stored refresh token to equal issued one")
	}

	identity, err := manager.Authenticate(tokens.AccessToken)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if identity.UserID != "user-1" || identity.Username != "alice" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestManagerIssueReturnsNothingWhenStoreFails(t *testing.T) {
	store := newFakeCredentialStore(activeUser())
	store.storeErr = errStoreDown
	manager := NewManager(newTestTokenService(), store, store)

	tokens, err := manager.Issue(context.Background(), activeUser())
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}
	if tokens != (models.SessionTokens{}) {
		t.Fatalf("expected zero tokens on failure, got %+v", tokens)
	}
}

func TestManagerRefreshRotatesAndRejectsReuse(t *testing.T) {
	store := newFakeCredentialStore(activeUser())
	manager := NewManager(newTestTokenService(), store, store)
	ctx := context.Background()

	original, err := manager.Issue(ctx, activeUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rotated, user, err := manager.Refresh(ctx, original.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.RefreshToken == original.RefreshToken {
		t.Fatal("expected new refresh token")
	}
	if user.RefreshToken != rotated.RefreshToken || store.stored("user-1") != rotated.RefreshToken {
		t.Fatal("expected rotated token to be stored")
	}

	if _, _, err := manager.Refresh(ctx, original.RefreshToken); !errors.Is(err, ErrTokenReused) {
		t.Fatalf("expected ErrTokenReused on reuse, got %v", err)
	}
}

func TestManagerRefreshFailures(t *testing.T) {
	inactive := activeUser()
	inactive.IsActive = false
	store := newFakeCredentialStore(inactive)
	manager := NewManager(newTestTokenService(), store, store)
	ctx := context.Background()

	if _, _, err := manager.Refresh(ctx, ""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for empty token, got %v", err)
	}

	tokens, err := manager.Issue(ctx, inactive)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, _, err := manager.Refresh(ctx, tokens.RefreshToken); !errors.Is(err, ErrInactiveUser) {
		t.Fatalf("expected ErrInactiveUser, got %v", err)
	}

	if err := manager.Revoke(ctx, inactive.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, _, err := manager.Refresh(ctx, tokens.RefreshToken); !errors.Is(err, ErrTokenReused) {
		t.Fatalf("expected ErrTokenReused after revoke, got %v", err)
	}
}

func TestManagerConcurrentRefreshSingleWinner(t *testing.T) {
	store := newFakeCredentialStore(activeUser())
	manager := NewManager(newTestTokenService(), store, store)
	ctx := context.Background()

	tokens, err := manager.Issue(ctx, activeUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := manager.Refresh(ctx, tokens.RefreshToken); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one successful refresh, got %d", successes)
	}
}
