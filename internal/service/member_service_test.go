package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/famcoord/famcoord/internal/domain"
	"github.com/famcoord/famcoord/internal/repository"
	"github.com/famcoord/famcoord/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberService_AddAssignsIDAndRejectsDuplicates(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := NewMemberService(repository.NewSQLiteMemberRepo(database))
	ctx := context.Background()

	age := 8
	m := &domain.Member{Name: "  Emma ", Age: &age}
	require.NoError(t, svc.Add(ctx, m))
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "Emma", m.Name)
	assert.False(t, m.CreatedAt.IsZero())

	err := svc.Add(ctx, &domain.Member{Name: "emma"})
	assert.ErrorIs(t, err, ErrMemberExists)

	assert.ErrorIs(t, svc.Add(ctx, &domain.Member{Name: " "}), ErrMemberNameRequired)

	negative := -1
	assert.Error(t, svc.Add(ctx, &domain.Member{Name: "Liam", Age: &negative}))
}

func TestMemberService_RemoveByIDOrName(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := NewMemberService(repository.NewSQLiteMemberRepo(database))
	ctx := context.Background()

	emma := &domain.Member{Name: "Emma"}
	liam := &domain.Member{Name: "Liam"}
	require.NoError(t, svc.Add(ctx, emma))
	require.NoError(t, svc.Add(ctx, liam))

	removed, err := svc.Remove(ctx, "EMMA")
	require.NoError(t, err)
	assert.Equal(t, emma.ID, removed.ID)

	removed, err = svc.Remove(ctx, liam.ID)
	require.NoError(t, err)
	assert.Equal(t, "Liam", removed.Name)

	_, err = svc.Remove(ctx, "Zoe")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	members, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestActivityService_Remove(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteActivityRepo(database)
	obs := &recordingObserver{}
	svc := NewActivityService(repo, obs)
	ctx := context.Background()

	a := testutil.NewTestActivity("", "Dentist")
	require.NoError(t, repo.Create(ctx, a))

	got, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dentist", got.Title)

	require.NoError(t, svc.Remove(ctx, a.ID))
	assert.ErrorIs(t, svc.Remove(ctx, a.ID), repository.ErrNotFound)

	require.Len(t, obs.events, 2)
	assert.True(t, obs.events[0].Success)
	assert.False(t, obs.events[1].Success)
	assert.Equal(t, a.ID, obs.events[1].Fields["activity_id"])
}

func TestLogUseCaseObserver_WritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(slog.New(slog.NewTextHandler(&buf, nil)))

	database := testutil.NewTestDB(t)
	svc := NewMemberService(repository.NewSQLiteMemberRepo(database), obs)
	require.NoError(t, svc.Add(context.Background(), &domain.Member{Name: "Emma"}))

	out := buf.String()
	assert.Contains(t, out, "msg=service_use_case")
	assert.Contains(t, out, "use_case=member.add")
	assert.Contains(t, out, "success=true")
}

func TestNewLogUseCaseObserver_NilLoggerIsNoop(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, NewLogUseCaseObserver(nil))
}

func TestLogUseCaseObserver_RejectionsLogAtWarn(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(slog.New(slog.NewTextHandler(&buf, nil)))
	svc := NewMemberService(repository.NewSQLiteMemberRepo(testutil.NewTestDB(t)), obs)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, &domain.Member{Name: "Emma"}))
	buf.Reset()
	require.ErrorIs(t, svc.Add(ctx, &domain.Member{Name: "emma"}), ErrMemberExists)

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "success=false")
}

func TestObservers_FanOut(t *testing.T) {
	a, b := &recordingObserver{}, &recordingObserver{}
	svc := NewMemberService(repository.NewSQLiteMemberRepo(testutil.NewTestDB(t)), nil, a, b)

	_, err := svc.Remove(context.Background(), "Nobody")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
	assert.True(t, a.events[0].Rejected)
	assert.Equal(t, "member.remove", b.events[0].Name)
}
