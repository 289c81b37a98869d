package guard

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/backend/internal/apierrors"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

func loaderFor(tweets map[string]models.Tweet) Loader[models.Tweet] {
	return func(_ context.Context, id string) (models.Tweet, error) {
		tweet, ok := tweets[id]
		if !ok {
			return models.Tweet{}, repositories.ErrNotFound
		}
		return tweet, nil
	}
}

func TestMutate(t *testing.T) {
	tweetID := uuid.NewString()
	tweets := map[string]models.Tweet{
		tweetID: {ID: tweetID, OwnerID: "owner", Content: "hello"},
	}

	cases := []struct {
		name       string
		id         string
		actor      string
		wantStatus int
		wantCalled bool
	}{
		{name: "malformed id", id: "not-a-uuid", actor: "owner", wantStatus: http.StatusBadRequest},
		{name: "missing", id: uuid.NewString(), actor: "owner", wantStatus: http.StatusNotFound},
		{name: "not owner", id: tweetID, actor: "intruder", wantStatus: http.StatusForbidden},
		{name: "anonymous", id: tweetID, actor: "", wantStatus: http.StatusForbidden},
		{name: "owner", id: tweetID, actor: "owner", wantStatus: http.StatusOK, wantCalled: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			updated, err := Mutate(context.Background(), "tweet", tc.id, tc.actor, loaderFor(tweets),
				func(_ context.Context, current models.Tweet) (models.Tweet, error) {
					called = true
					current.Content = "updated"
					return current, nil
				})

			assert.Equal(t, tc.wantStatus, statusOf(err))
			assert.Equal(t, tc.wantCalled, called)
			if tc.wantCalled {
				assert.Equal(t, "updated", updated.Content)
			}
		})
	}
}

func TestMutateMapsMutatorErrors(t *testing.T) {
	tweetID := uuid.NewString()
	tweets := map[string]models.Tweet{tweetID: {ID: tweetID, OwnerID: "owner"}}

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"vanished", repositories.ErrNotFound, http.StatusNotFound},
		{"conflict", repositories.ErrConflict, http.StatusConflict},
		{"api error", apierrors.Invalid("content is required"), http.StatusBadRequest},
		{"infrastructure", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Mutate(context.Background(), "tweet", tweetID, "owner", loaderFor(tweets),
				func(context.Context, models.Tweet) (models.Tweet, error) {
					return models.Tweet{}, tc.err
				})
			require.Error(t, err)
			assert.Equal(t, tc.want, statusOf(err))
		})
	}
}

func statusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return apierrors.As(err).Status
}
