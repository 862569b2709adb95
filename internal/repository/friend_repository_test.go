package repository

import (
	"context"
	"sync"
	"testing"

	"pre-exam/internal/model"
	"pre-exam/internal/testdb"
	"pre-exam/pkg/apperr"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendRepository_CreateRejectsEitherDirection(t *testing.T) {
	orm := testdb.Open(t)
	repo := NewFriendRepository(orm)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.FriendRelation{RequesterID: 1, TargetID: 2, Status: model.RelationPending}))

	err := repo.Create(ctx, &model.FriendRelation{RequesterID: 1, TargetID: 2, Status: model.RelationPending})
	assert.True(t, errors.Is(err, apperr.ErrAlreadyExists), "repeat: %v", err)

	err = repo.Create(ctx, &model.FriendRelation{RequesterID: 2, TargetID: 1, Status: model.RelationPending})
	assert.True(t, errors.Is(err, apperr.ErrAlreadyExists), "reverse: %v", err)
}

func TestFriendRepository_ConcurrentCreateSingleWinner(t *testing.T) {
	orm := testdb.Open(t)
	repo := NewFriendRepository(orm)
	ctx := context.Background()

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		dupes   int
		unknown []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rel := &model.FriendRelation{RequesterID: 10, TargetID: 20, Status: model.RelationPending}
			if i%2 == 1 {
				rel.RequesterID, rel.TargetID = 20, 10
			}
			err := repo.Create(ctx, rel)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, apperr.ErrAlreadyExists):
				dupes++
			default:
				unknown = append(unknown, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Empty(t, unknown)
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, dupes)
}

func TestFriendRepository_FindBetweenIsSymmetric(t *testing.T) {
	orm := testdb.Open(t)
	repo := NewFriendRepository(orm)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.FriendRelation{RequesterID: 5, TargetID: 3, Status: model.RelationPending}))

	a, err := repo.FindBetween(ctx, 5, 3)
	require.NoError(t, err)
	b, err := repo.FindBetween(ctx, 3, 5)
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, uint(5), b.RequesterID)

	_, err = repo.FindBetween(ctx, 3, 4)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestFriendRepository_AcceptRequiresPendingInDirection(t *testing.T) {
	orm := testdb.Open(t)
	repo := NewFriendRepository(orm)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.FriendRelation{RequesterID: 1, TargetID: 2, Status: model.RelationPending}))

	// 发起方不能接受自己的请求
	updated, err := repo.Accept(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, updated)

	updated, err = repo.Accept(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, updated)

	// 已接受后不再更新
	updated, err = repo.Accept(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, updated)

	rel, err := repo.FindBetween(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, model.RelationAccepted, rel.Status)
}

func TestFriendRepository_DeleteBetween(t *testing.T) {
	orm := testdb.Open(t)
	repo := NewFriendRepository(orm)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.FriendRelation{RequesterID: 1, TargetID: 2, Status: model.RelationPending}))

	n, err := repo.DeleteBetween(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteBetween(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// 删除后可以重新建立
	assert.NoError(t, repo.Create(ctx, &model.FriendRelation{RequesterID: 1, TargetID: 2, Status: model.RelationPending}))
}

func TestFriendRepository_Lists(t *testing.T) {
	orm := testdb.Open(t)
	repo := NewFriendRepository(orm)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.FriendRelation{RequesterID: 2, TargetID: 1, Status: model.RelationPending}))
	require.NoError(t, repo.Create(ctx, &model.FriendRelation{RequesterID: 3, TargetID: 1, Status: model.RelationPending}))
	require.NoError(t, repo.Create(ctx, &model.FriendRelation{RequesterID: 1, TargetID: 4, Status: model.RelationPending}))
	require.NoError(t, repo.Create(ctx, &model.FriendRelation{RequesterID: 1, TargetID: 5, Status: model.RelationAccepted}))
	require.NoError(t, repo.Create(ctx, &model.FriendRelation{RequesterID: 6, TargetID: 1, Status: model.RelationAccepted}))

	received, err := repo.ListPendingReceived(ctx, 1)
	require.NoError(t, err)
	if assert.Len(t, received, 2) {
		assert.Equal(t, uint(3), received[0].RequesterID)
		assert.Equal(t, uint(2), received[1].RequesterID)
	}

	sent, err := repo.ListPendingSent(ctx, 1)
	require.NoError(t, err)
	if assert.Len(t, sent, 1) {
		assert.Equal(t, uint(4), sent[0].TargetID)
	}

	friends, err := repo.ListAccepted(ctx, 1)
	require.NoError(t, err)
	var others []uint
	for _, rel := range friends {
		others = append(others, rel.Other(1))
	}
	assert.ElementsMatch(t, []uint{5, 6}, others)

	among, err := repo.FindForUserAmong(ctx, 1, []uint{2, 4, 5, 9})
	require.NoError(t, err)
	assert.Len(t, among, 3)
	assert.Equal(t, model.ViewReceived, among[2].ViewOf(1))
	assert.Equal(t, model.ViewSent, among[4].ViewOf(1))
	assert.Equal(t, model.ViewFriends, among[5].ViewOf(1))
	assert.Nil(t, among[9])
}
