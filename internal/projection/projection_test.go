package projection

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/backend/internal/models"
)

type fakeSource struct {
	users       map[string]models.User
	likes       map[models.SubjectType]map[string][]string
	subscribers map[string][]string
	err         error
}

func (f fakeSource) Profiles(_ context.Context, ids []string) (map[string]models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]models.User)
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			out[id] = user
		}
	}
	return out, nil
}

func (f fakeSource) Likers(_ context.Context, subject models.SubjectType, ids []string) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, id := range ids {
		out[id] = f.likes[subject][id]
	}
	return out, nil
}

func (f fakeSource) Subscribers(_ context.Context, ids []string) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, id := range ids {
		out[id] = f.subscribers[id]
	}
	return out, nil
}

func testSource() fakeSource {
	return fakeSource{
		users: map[string]models.User{
			"alice": {ID: "alice", Username: "alice", FullName: "Alice", Avatar: models.Asset{URL: "https://cdn/alice.png", ID: "a1"}},
			"bob":   {ID: "bob", Username: "bob", FullName: "Bob"},
		},
		likes: map[models.SubjectType]map[string][]string{
			models.SubjectTweet: {"t1": {"bob", "carol"}},
			models.SubjectVideo: {"v1": {"alice"}},
		},
		subscribers: map[string][]string{"alice": {"bob"}},
	}
}

func TestTweetsProjection(t *testing.T) {
	assembler := NewAssembler(testSource())
	tweets := []models.Tweet{
		{ID: "t1", OwnerID: "alice", Content: "first", CreatedAt: time.Now()},
		{ID: "t2", OwnerID: "bob", Content: "second"},
	}

	views, err := assembler.Tweets(context.Background(), "bob", tweets)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, "alice", views[0].Owner.Username)
	assert.Equal(t, "https://cdn/alice.png", views[0].Owner.AvatarURL)
	assert.EqualValues(t, 2, views[0].LikeCount)
	assert.True(t, views[0].IsLiked)

	assert.EqualValues(t, 0, views[1].LikeCount)
	assert.False(t, views[1].IsLiked)
}

func TestAnonymousViewerIsNeverMember(t *testing.T) {
	source := testSource()
	source.likes[models.SubjectTweet]["t1"] = []string{""}
	views, err := NewAssembler(source).Tweets(context.Background(), "", []models.Tweet{{ID: "t1", OwnerID: "alice"}})
	require.NoError(t, err)
	assert.False(t, views[0].IsLiked)
}

func TestVideoDetailProjection(t *testing.T) {
	assembler := NewAssembler(testSource())
	video := models.Video{ID: "v1", OwnerID: "alice", Title: "demo", VideoFile: models.Asset{URL: "https://cdn/v1.mp4"}, Views: 7, IsPublic: true}

	detail, err := assembler.VideoDetail(context.Background(), "bob", video)
	require.NoError(t, err)

	assert.Equal(t, "https://cdn/v1.mp4", detail.VideoURL)
	assert.EqualValues(t, 1, detail.LikeCount)
	assert.False(t, detail.IsLiked)
	assert.EqualValues(t, 1, detail.Owner.SubscriberCount)
	assert.True(t, detail.Owner.IsSubscribed)

	detail, err = assembler.VideoDetail(context.Background(), "alice", video)
	require.NoError(t, err)
	assert.True(t, detail.IsLiked)
	assert.False(t, detail.Owner.IsSubscribed)
}

func TestPlaylistDetailHidesPrivateVideos(t *testing.T) {
	assembler := NewAssembler(testSource())
	playlist := models.Playlist{ID: "p1", OwnerID: "alice", Name: "mix", VideoIDs: []string{"v2", "v1", "gone"}}
	videos := map[string]models.Video{
		"v1": {ID: "v1", OwnerID: "alice", Views: 3, IsPublic: true},
		"v2": {ID: "v2", OwnerID: "bob", Views: 5, IsPublic: false},
	}

	detail, err := assembler.PlaylistDetail(context.Background(), "alice", playlist, videos)
	require.NoError(t, err)
	require.Len(t, detail.Videos, 1)
	assert.Equal(t, "v1", detail.Videos[0].ID)
	assert.EqualValues(t, 1, detail.TotalVideos)
	assert.EqualValues(t, 3, detail.TotalViews)

	detail, err = assembler.PlaylistDetail(context.Background(), "bob", playlist, videos)
	require.NoError(t, err)
	require.Len(t, detail.Videos, 2)
	assert.Equal(t, "v2", detail.Videos[0].ID)
	assert.EqualValues(t, 8, detail.TotalViews)
	assert.Equal(t, "alice", detail.Owner.ID)
}

func TestSourceErrorsPropagate(t *testing.T) {
	source := testSource()
	source.err = errors.New("boom")
	_, err := NewAssembler(source).VideoCards(context.Background(), []models.Video{{ID: "v1", OwnerID: "alice"}})
	require.Error(t, err)
}

func TestNewPage(t *testing.T) {
	cases := []struct {
		name      string
		items     []int
		page      int
		limit     int
		total     int64
		wantItems []int
		wantNext  bool
		wantPages int
	}{
		{name: "first page", items: []int{1, 2}, page: 1, limit: 2, total: 3, wantItems: []int{1, 2}, wantNext: true, wantPages: 2},
		{name: "last page", items: []int{3}, page: 2, limit: 2, total: 3, wantItems: []int{3}, wantPages: 2},
		{name: "out of range", page: 100, limit: 10, total: 3, wantItems: []int{}, wantPages: 1},
		{name: "defaults", items: []int{1, 2, 3}, total: 3, wantItems: []int{1, 2, 3}, wantPages: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page := NewPage(tc.items, NormalizePage(tc.page, tc.limit), tc.total)
			assert.Equal(t, tc.wantItems, page.Items)
			assert.NotNil(t, page.Items)
			assert.Equal(t, tc.total, page.Total)
			assert.Equal(t, tc.wantNext, page.HasNextPage)
			assert.Equal(t, tc.wantPages, page.TotalPages)
		})
	}
}

func TestOffsetSaturatesForHugePages(t *testing.T) {
	req := NormalizePage(math.MaxInt, MaxLimit)
	assert.Equal(t, math.MaxInt, req.Offset())

	req = NormalizePage(math.MaxInt/DefaultLimit+1, 0)
	assert.GreaterOrEqual(t, req.Offset(), 0)

	assert.Equal(t, 0, NormalizePage(-5, 10).Offset())
}

func TestNormalizePageCapsLimit(t *testing.T) {
	req := NormalizePage(3, 1000)
	assert.Equal(t, MaxLimit, req.Limit)
	assert.Equal(t, 2*MaxLimit, req.Offset())
}
