package repository

import (
	"context"
	"testing"

	"github.com/famcoord/famcoord/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberRepo_CreateAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteMemberRepo(db)
	ctx := context.Background()

	m := testutil.NewTestMember("Emma", testutil.WithAge(8), testutil.WithColor("#ff8800"))
	require.NoError(t, repo.Create(ctx, m))

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Name, got.Name)
	require.NotNil(t, got.Age)
	assert.Equal(t, 8, *got.Age)
	assert.Equal(t, "#ff8800", got.Color)
	assert.True(t, m.CreatedAt.Equal(got.CreatedAt))
}

func TestMemberRepo_GetByNameIgnoresCase(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteMemberRepo(db)
	ctx := context.Background()

	m := testutil.NewTestMember("Emma")
	require.NoError(t, repo.Create(ctx, m))

	got, err := repo.GetByName(ctx, " emma ")
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.Nil(t, got.Age)

	_, err = repo.GetByName(ctx, "Zoe")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemberRepo_RejectsDuplicateName(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteMemberRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.NewTestMember("Emma")))
	assert.Error(t, repo.Create(ctx, testutil.NewTestMember("EMMA")))
}

func TestMemberRepo_ListAndDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteMemberRepo(db)
	ctx := context.Background()

	empty, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	emma := testutil.NewTestMember("Emma")
	liam := testutil.NewTestMember("Liam")
	require.NoError(t, repo.Create(ctx, emma))
	require.NoError(t, repo.Create(ctx, liam))

	members, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	require.NoError(t, repo.Delete(ctx, emma.ID))
	_, err = repo.GetByID(ctx, emma.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, emma.ID), ErrNotFound)
}
