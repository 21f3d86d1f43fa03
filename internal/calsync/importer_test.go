package calsync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/famcoord/famcoord/internal/domain"
	"github.com/famcoord/famcoord/internal/repository"
	"github.com/famcoord/famcoord/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	events   []Event
	err      error
	from, to time.Time
}

func (f *fakeSource) Events(_ context.Context, from, to time.Time) ([]Event, error) {
	f.from, f.to = from, to
	return f.events, f.err
}

var importNow = time.Date(2025, 10, 24, 9, 0, 0, 0, time.UTC)

type importFixture struct {
	importer   *Importer
	source     *fakeSource
	activities *repository.SQLiteActivityRepo
	emma       *domain.Member
}

func newImportFixture(t *testing.T, events []Event) *importFixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	members := repository.NewSQLiteMemberRepo(database)
	emma := testutil.NewTestMember("Emma")
	require.NoError(t, members.Create(context.Background(), emma))

	src := &fakeSource{events: events}
	im := NewImporter(src, members, testutil.NewTestUoW(database), time.UTC, nil)
	im.now = func() time.Time { return importNow }
	return &importFixture{
		importer:   im,
		source:     src,
		activities: repository.NewSQLiteActivityRepo(database),
		emma:       emma,
	}
}

func sampleEvents() []Event {
	return []Event{
		{ID: "ev1", Title: "Emma soccer pickup", Location: "Field 3", Description: "bring water", Start: time.Date(2025, 10, 25, 15, 30, 0, 0, time.UTC)},
		{ID: "ev2", Title: "Team standup", Start: time.Date(2025, 10, 27, 9, 0, 0, 0, time.UTC)},
		{ID: "ev3", Title: "Emma birthday", Start: time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC), AllDay: true},
	}
}

func TestImporter_Import(t *testing.T) {
	f := newImportFixture(t, sampleEvents())
	ctx := context.Background()

	res, err := f.importer.Import(ctx, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, res.Duplicates)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, importNow.AddDate(0, 0, DefaultWindowDays), f.source.to)

	stored, err := f.activities.GetByCalendarEventID(ctx, "ev1")
	require.NoError(t, err)
	assert.Equal(t, f.emma.ID, stored.MemberID)
	assert.Equal(t, "2025-10-25", stored.Date)
	assert.Equal(t, "15:30", stored.Time)
	assert.Equal(t, domain.TypePickUp, stored.Type)
	assert.Equal(t, domain.AssigneeMom, stored.Assignee)
	assert.Equal(t, domain.CategoryPhysical, stored.Category)
	assert.Equal(t, "Field 3", stored.Location)
	assert.Equal(t, "bring water", stored.Notes)
	assert.Equal(t, ImportedBy, stored.CreatedBy)

	party, err := f.activities.GetByCalendarEventID(ctx, "ev3")
	require.NoError(t, err)
	assert.Equal(t, "12:00", party.Time, "all-day events land at noon")
	assert.Equal(t, domain.CategorySocial, party.Category)
}

func TestImporter_SecondRunCountsDuplicates(t *testing.T) {
	f := newImportFixture(t, sampleEvents())
	ctx := context.Background()

	_, err := f.importer.Import(ctx, ImportOptions{Days: 7})
	require.NoError(t, err)
	res, err := f.importer.Import(ctx, ImportOptions{Days: 7})
	require.NoError(t, err)

	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 2, res.Duplicates)
	assert.Equal(t, 1, res.Skipped)

	all, err := f.activities.List(ctx, repository.ActivityFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestImporter_DryRunWritesNothing(t *testing.T) {
	f := newImportFixture(t, sampleEvents())
	ctx := context.Background()

	res, err := f.importer.Import(ctx, ImportOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Len(t, res.Activities, 2)

	all, err := f.activities.List(ctx, repository.ActivityFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestImporter_SourceError(t *testing.T) {
	f := newImportFixture(t, nil)
	f.source.err = errors.New("quota exceeded")

	_, err := f.importer.Import(context.Background(), ImportOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestImporter_FailedWriteRollsBack(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	members := repository.NewSQLiteMemberRepo(database)
	require.NoError(t, members.Create(ctx, testutil.NewTestMember("Emma")))

	unit := &testutil.FailOnNthExecUoW{DB: database, FailOn: 2, Match: "INSERT INTO activities", Err: errors.New("disk full")}
	im := NewImporter(&fakeSource{events: sampleEvents()}, members, unit, time.UTC, nil)

	_, err := im.Import(ctx, ImportOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	all, err := repository.NewSQLiteActivityRepo(database).List(ctx, repository.ActivityFilter{})
	require.NoError(t, err)
	assert.Empty(t, all, "first insert rolled back with the second")
}

func TestImporter_DryRunThroughFailingUoWStillRollsBack(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	members := repository.NewSQLiteMemberRepo(database)
	require.NoError(t, members.Create(ctx, testutil.NewTestMember("Emma")))

	unit := &testutil.FailOnNthExecUoW{DB: database, FailOn: 99, Match: "INSERT INTO activities"}
	im := NewImporter(&fakeSource{events: sampleEvents()}, members, unit, time.UTC, nil)

	res, err := im.Import(ctx, ImportOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)

	all, err := repository.NewSQLiteActivityRepo(database).List(ctx, repository.ActivityFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}
