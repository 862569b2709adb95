package service

import (
	"context"
	"fmt"
	"testing"

	"pre-exam/internal/model"
	"pre-exam/internal/testdb"
	"pre-exam/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_AnnotatesStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	viewer := testdb.CreateUser(t, f.orm, "viewer", "Viewer")
	friend := testdb.CreateUser(t, f.orm, "sam_friend", "Sam")
	sent := testdb.CreateUser(t, f.orm, "sam_sent", "")
	received := testdb.CreateUser(t, f.orm, "sam_received", "")
	stranger := testdb.CreateUser(t, f.orm, "stranger", "SAMANTHA")
	testdb.CreateUser(t, f.orm, "nobody", "Nobody")

	_, err := f.friends.SendRequest(ctx, viewer.ID, friend.ID)
	require.NoError(t, err)
	_, err = f.friends.AcceptRequest(ctx, friend.ID, viewer.ID)
	require.NoError(t, err)
	_, err = f.friends.SendRequest(ctx, viewer.ID, sent.ID)
	require.NoError(t, err)
	_, err = f.friends.SendRequest(ctx, received.ID, viewer.ID)
	require.NoError(t, err)

	hits, err := f.social.Search(ctx, viewer.ID, "sam", 0)
	require.NoError(t, err)
	require.Len(t, hits, 4)

	got := map[uint]model.FriendView{}
	for _, h := range hits {
		got[h.ID] = h.Status
	}
	assert.Equal(t, model.ViewFriends, got[friend.ID])
	assert.Equal(t, model.ViewSent, got[sent.ID])
	assert.Equal(t, model.ViewReceived, got[received.ID])
	assert.Equal(t, model.ViewNone, got[stranger.ID])

	// 存储顺序
	assert.Equal(t, friend.ID, hits[0].ID)
	assert.Equal(t, stranger.ID, hits[3].ID)
}

func TestSearch_ExcludesViewerAndDisabled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	viewer := testdb.CreateUser(t, f.orm, "kim", "")
	gone := testdb.CreateUser(t, f.orm, "kimberly", "")
	require.NoError(t, f.orm.Model(gone).Update("status", model.UserStatusDisabled).Error)
	other := testdb.CreateUser(t, f.orm, "kimmo", "")

	hits, err := f.social.Search(ctx, viewer.ID, "KIM", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, other.ID, hits[0].ID)
}

func TestSearch_Limits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	viewer := testdb.CreateUser(t, f.orm, "viewer", "")
	for i := 0; i < MaxSearchLimit+5; i++ {
		testdb.CreateUser(t, f.orm, fmt.Sprintf("user%02d", i), "")
	}

	hits, err := f.social.Search(ctx, viewer.ID, "user", 3)
	require.NoError(t, err)
	assert.Len(t, hits, 3)

	hits, err = f.social.Search(ctx, viewer.ID, "user", 0)
	require.NoError(t, err)
	assert.Len(t, hits, DefaultSearchLimit)

	hits, err = f.social.Search(ctx, viewer.ID, "user", 1000)
	require.NoError(t, err)
	assert.Len(t, hits, MaxSearchLimit)

	_, err = f.social.Search(ctx, viewer.ID, "   ", 5)
	assert.True(t, isKind(err, apperr.KindInvalidArgument), "%v", err)
}

func TestListPending_NewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	target := testdb.CreateUser(t, f.orm, "target", "")
	first := testdb.CreateUser(t, f.orm, "first", "")
	second := testdb.CreateUser(t, f.orm, "second", "")

	_, err := f.friends.SendRequest(ctx, first.ID, target.ID)
	require.NoError(t, err)
	_, err = f.friends.SendRequest(ctx, second.ID, target.ID)
	require.NoError(t, err)
	_, err = f.friends.SendRequest(ctx, target.ID, testdb.CreateUser(t, f.orm, "outgoing", "").ID)
	require.NoError(t, err)

	pending, err := f.social.ListPending(ctx, target.ID)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, second.ID, pending[0].ID)
	assert.Equal(t, first.ID, pending[1].ID)

	sent, err := f.social.ListSent(ctx, target.ID)
	require.NoError(t, err)
	assert.Len(t, sent, 1)
}
