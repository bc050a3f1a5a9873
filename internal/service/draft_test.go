package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/catalog"
	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
	"github.com/pkordes/trip-planner/backend/internal/service"
)

// ---- test doubles ----------------------------------------------------------

// mockDraftRepo is a hand-written test double for repo.DraftRepo.
// Set only the function fields your test needs.
type mockDraftRepo struct {
	create          func(ctx context.Context, d domain.Draft) (domain.Draft, error)
	getByID         func(ctx context.Context, id uuid.UUID) (domain.Draft, error)
	update          func(ctx context.Context, id uuid.UUID, fn func(domain.Draft) (domain.Draft, error)) (domain.Draft, error)
	delete          func(ctx context.Context, id uuid.UUID) error
	deleteIdleSince func(ctx context.Context, cutoff time.Time) (int, error)
}

func (m *mockDraftRepo) Create(ctx context.Context, d domain.Draft) (domain.Draft, error) {
	return m.create(ctx, d)
}
func (m *mockDraftRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Draft, error) {
	return m.getByID(ctx, id)
}
func (m *mockDraftRepo) Update(ctx context.Context, id uuid.UUID, fn func(domain.Draft) (domain.Draft, error)) (domain.Draft, error) {
	return m.update(ctx, id, fn)
}
func (m *mockDraftRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockDraftRepo) DeleteIdleSince(ctx context.Context, cutoff time.Time) (int, error) {
	return m.deleteIdleSince(ctx, cutoff)
}
func (m *mockDraftRepo) Count(context.Context) (int, error) { return 0, nil }

// compile-time check: mockDraftRepo must satisfy repo.DraftRepo.
var _ repo.DraftRepo = (*mockDraftRepo)(nil)

// recordedEvent is one call captured by fakeEvents.
type recordedEvent struct {
	event string
	draft domain.Draft
}

type fakeEvents struct {
	got []recordedEvent
	err error
}

func (f *fakeEvents) PublishDraft(event string, d domain.Draft) error {
	f.got = append(f.got, recordedEvent{event: event, draft: d})
	return f.err
}

func (f *fakeEvents) names() []string {
	out := make([]string, len(f.got))
	for i, e := range f.got {
		out[i] = e.event
	}
	return out
}

// fakeMetrics counts observed operations by op and error presence.
type fakeMetrics struct {
	ops     map[string]int
	failed  map[string]int
	active  int
	expired int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{ops: map[string]int{}, failed: map[string]int{}}
}

func (m *fakeMetrics) ObserveDraftOp(op string, err error) {
	m.ops[op]++
	if err != nil {
		m.failed[op]++
	}
}
func (m *fakeMetrics) SetActiveDrafts(n int)  { m.active = n }
func (m *fakeMetrics) DraftsExpiredAdd(n int) { m.expired += n }

// ---- helpers ---------------------------------------------------------------

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	svc     *service.DraftService
	clock   *clock
	events  *fakeEvents
	metrics *fakeMetrics
}

// newFixture wires a DraftService to an in-memory repo, the embedded catalog,
// and a clock set to 2024-01-01 10:00 UTC.
func newFixture(t *testing.T, mode domain.CascadeMode) fixture {
	t.Helper()
	cat, err := repo.ParseCatalogYAML(catalog.Presets)
	require.NoError(t, err)

	f := fixture{
		clock:   &clock{t: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
		events:  &fakeEvents{},
		metrics: newFakeMetrics(),
	}
	f.svc = service.NewDraftService(repo.NewDraftRepo(), cat, service.DraftOptions{
		Cascade: mode,
		Now:     f.clock.Now,
		Events:  f.events,
		Metrics: f.metrics,
	})
	return f
}

func dates(start, end time.Time) domain.StopPatch {
	r := domain.DateRange{Start: start, End: end}
	return domain.StopPatch{Dates: &r}
}

// ---- Create / Get / Discard -------------------------------------------------

func TestDraftService_Create(t *testing.T) {
	f := newFixture(t, domain.CascadeNext)

	d, err := f.svc.Create(context.Background())

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, d.ID)
	require.Equal(t, 1, d.Itinerary.Len())
	assert.Equal(t, domain.NewDateRange(day(2024, 1, 1), day(2024, 1, 1)), d.Itinerary.Stops[0].Dates)
	assert.Equal(t, []string{"created"}, f.events.names())
	assert.Equal(t, 1, f.metrics.active)
}

// TestDraftService_Create_TodayFollowsLocation checks that "today" is taken
// in the configured time zone, not UTC.
func TestDraftService_Create_TodayFollowsLocation(t *testing.T) {
	cat, err := repo.ParseCatalogYAML(catalog.Presets)
	require.NoError(t, err)
	tokyo := time.FixedZone("JST", 9*60*60)
	svc := service.NewDraftService(repo.NewDraftRepo(), cat, service.DraftOptions{
		Location: tokyo,
		Now:      func() time.Time { return time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC) },
	})

	d, err := svc.Create(context.Background())

	require.NoError(t, err)
	assert.Equal(t, day(2024, 1, 2), d.Itinerary.Stops[0].Dates.Start)
}

func TestDraftService_Create_RepoError(t *testing.T) {
	boom := errors.New("boom")
	svc := service.NewDraftService(&mockDraftRepo{
		create: func(context.Context, domain.Draft) (domain.Draft, error) { return domain.Draft{}, boom },
	}, nil, service.DraftOptions{})

	_, err := svc.Create(context.Background())

	assert.ErrorIs(t, err, boom)
}

func TestDraftService_GetByID_NotFound(t *testing.T) {
	f := newFixture(t, domain.CascadeNext)

	_, err := f.svc.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDraftService_Discard(t *testing.T) {
	f := newFixture(t, domain.CascadeNext)
	ctx := context.Background()
	d, err := f.svc.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, f.svc.Discard(ctx, d.ID))

	_, err = f.svc.GetByID(ctx, d.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.Discard(ctx, d.ID), domain.ErrNotFound)
	assert.Equal(t, []string{"created", "discarded"}, f.events.names())
	assert.Equal(t, 0, f.metrics.active)
}

// ---- Editing ----------------------------------------------------------------

// TestDraftService_Scenario runs the reference editing session through the
// service, with today pinned to 2024-01-01.
func TestDraftService_Scenario(t *testing.T) {
	f := newFixture(t, domain.CascadeNext)
	ctx := context.Background()
	d, err := f.svc.Create(ctx)
	require.NoError(t, err)

	d, err = f.svc.UpdateStop(ctx, d.ID, 1, dates(day(2024, 1, 1), day(2024, 1, 5)))
	require.NoError(t, err)

	d, err = f.svc.AppendStop(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, 2, d.Itinerary.Len())
	assert.Equal(t, domain.NewDateRange(day(2024, 1, 5), day(2024, 1, 5)), d.Itinerary.Stops[1].Dates)

	d, err = f.svc.UpdateStop(ctx, d.ID, 2, dates(time.Time{}, day(2024, 1, 10)))
	require.NoError(t, err)
	assert.Equal(t, domain.NewDateRange(day(2024, 1, 5), day(2024, 1, 10)), d.Itinerary.Stops[1].Dates)

	d, err = f.svc.RemoveStop(ctx, d.ID, 1)
	require.NoError(t, err)
	require.Equal(t, 1, d.Itinerary.Len())
	assert.Equal(t, 2, d.Itinerary.Stops[0].ID)

	assert.Equal(t, []string{"created", "stop_updated", "stop_appended", "stop_updated", "stop_removed"}, f.events.names())
}

func TestDraftService_AppendStop_EndDateRequired(t *testing.T) {
	f := newFixture(t, domain.CascadeNext)
	ctx := context.Background()
	d, err := f.svc.Create(ctx)
	require.NoError(t, err)

	_, err = f.svc.AppendStop(ctx, d.ID)

	require.ErrorIs(t, err, domain.ErrEndDateRequired)
	got, err := f.svc.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d, got, "a rejected append must not touch the draft")
	assert.Equal(t, 1, f.metrics.failed["append_stop"])
}

func TestDraftService_UpdateStop_PastStartDate(t *testing.T) {
	f := newFixture(t, domain.CascadeNext)
	ctx := context.Background()
	d, err := f.svc.Create(ctx)
	require.NoError(t, err)

	_, err = f.svc.UpdateStop(ctx, d.ID, 1, dates(day(2023, 12, 31), day(2024, 1, 3)))

	assert.ErrorIs(t, err, domain.ErrPastStartDate)
}

func TestDraftService_UpdateStop_Destination(t *testing.T) {
	f := newFixture(t, domain.CascadeNext)
	ctx := context.Background()
	d, err := f.svc.Create(ctx)
	require.NoError(t, err)
	f.clock.t = f.clock.t.Add(time.Minute)

	dest := "Bangkok"
	d, err = f.svc.UpdateStop(ctx, d.ID, 1, domain.StopPatch{Destination: &dest})

	require.NoError(t, err)
	assert.Equal(t, "Bangkok", d.Itinerary.Stops[0].Destination)
	assert.Equal(t, f.clock.t, d.UpdatedAt)
	assert.True(t, d.UpdatedAt.After(d.CreatedAt))
}

func TestDraftService_UpdateStop_UnknownStop(t *testing.T) {
	f := newFixture(t, domain.CascadeNext)
	ctx := context.Background()
	d, err := f.svc.Create(ctx)
	require.NoError(t, err)

	dest := "Paris"
	_, err = f.svc.UpdateStop(ctx, d.ID, 3, domain.StopPatch{Destination: &dest})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDraftService_UpdateStop_CascadeFull(t *testing.T) {
	f := newFixture(t, domain.CascadeFull)
	ctx := context.Background()
	d, err := f.svc.Create(ctx)
	require.NoError(t, err)

	d, err = f.svc.UpdateStop(ctx, d.ID, 1, dates(day(2024, 1, 1), day(2024, 1, 3)))
	require.NoError(t, err)
	for end := 5; end <= 7; end += 2 {
		d, err = f.svc.AppendStop(ctx, d.ID)
		require.NoError(t, err)
		d, err = f.svc.UpdateStop(ctx, d.ID, d.Itinerary.Last().ID, dates(time.Time{}, day(2024, 1, end)))
		require.NoError(t, err)
	}

	d, err = f.svc.UpdateStop(ctx, d.ID, 1, dates(day(2024, 1, 1), day(2024, 1, 4)))

	require.NoError(t, err)
	assert.True(t, d.Itinerary.Chained())
	assert.Equal(t, domain.NewDateRange(day(2024, 1, 4), day(2024, 1, 5)), d.Itinerary.Stops[1].Dates)
	assert.Equal(t, domain.NewDateRange(day(2024, 1, 5), day(2024, 1, 7)), d.Itinerary.Stops[2].Dates)
}

func TestDraftService_RemoveStop_LastStop(t *testing.T) {
	f := newFixture(t, domain.CascadeNext)
	ctx := context.Background()
	d, err := f.svc.Create(ctx)
	require.NoError(t, err)

	_, err = f.svc.RemoveStop(ctx, d.ID, 1)

	assert.ErrorIs(t, err, domain.ErrLastStop)
	got, err := f.svc.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Itinerary.Len())
}

func TestDraftService_PublishFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t, domain.CascadeNext)
	f.events.err = errors.New("nats down")

	_, err := f.svc.Create(context.Background())

	assert.NoError(t, err)
}

// ---- Picker / calendar ------------------------------------------------------

func TestDraftService_Picker(t *testing.T) {
	f := newFixture(t, domain.CascadeNext)
	ctx := context.Background()
	d, err := f.svc.Create(ctx)
	require.NoError(t, err)

	d, err = f.svc.OpenPicker(ctx, d.ID, 1)
	require.NoError(t, err)
	assert.True(t, d.Picker.IsOpen(1))

	_, err = f.svc.OpenPicker(ctx, d.ID, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	d, err = f.svc.ClosePicker(ctx, d.ID)
	require.NoError(t, err)
	_, open := d.Picker.OpenStop()
	assert.False(t, open)

	_, err = f.svc.ClosePicker(ctx, d.ID)
	assert.NoError(t, err, "closing twice is fine")
}

func TestDraftService_Calendar(t *testing.T) {
	f := newFixture(t, domain.CascadeNext)
	ctx := context.Background()
	d, err := f.svc.Create(ctx)
	require.NoError(t, err)
	d, err = f.svc.UpdateStop(ctx, d.ID, 1, dates(day(2024, 1, 2), day(2024, 1, 6)))
	require.NoError(t, err)
	d, err = f.svc.AppendStop(ctx, d.ID)
	require.NoError(t, err)

	first, err := f.svc.Calendar(ctx, d.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 1, 1), first.MinDate)

	second, err := f.svc.Calendar(ctx, d.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 1, 6), second.MinDate)
	assert.True(t, second.StartLocked)

	_, err = f.svc.Calendar(ctx, d.ID, 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Activities -------------------------------------------------------------

func TestDraftService_Activities(t *testing.T) {
	f := newFixture(t, domain.CascadeNext)
	ctx := context.Background()
	d, err := f.svc.Create(ctx)
	require.NoError(t, err)

	d, err = f.svc.SelectActivity(ctx, d.ID, "food-dining")
	require.NoError(t, err)
	assert.Equal(t, []string{"food-dining"}, d.Activities)

	_, err = f.svc.SelectActivity(ctx, d.ID, "skydiving")
	assert.ErrorIs(t, err, domain.ErrValidation)

	d, err = f.svc.DeselectActivity(ctx, d.ID, "food-dining")
	require.NoError(t, err)
	assert.Empty(t, d.Activities)

	_, err = f.svc.DeselectActivity(ctx, d.ID, "food-dining")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Expiry -----------------------------------------------------------------

func TestDraftService_SweepExpired(t *testing.T) {
	f := newFixture(t, domain.CascadeNext)
	ctx := context.Background()
	stale, err := f.svc.Create(ctx)
	require.NoError(t, err)

	f.clock.t = f.clock.t.Add(90 * time.Minute)
	fresh, err := f.svc.Create(ctx)
	require.NoError(t, err)

	n, err := f.svc.SweepExpired(ctx, time.Hour)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, f.metrics.expired)
	assert.Equal(t, 1, f.metrics.active)
	_, err = f.svc.GetByID(ctx, stale.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.GetByID(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestDraftService_SweepExpired_RepoError(t *testing.T) {
	boom := errors.New("boom")
	svc := service.NewDraftService(&mockDraftRepo{
		deleteIdleSince: func(context.Context, time.Time) (int, error) { return 0, boom },
	}, nil, service.DraftOptions{})

	_, err := svc.SweepExpired(context.Background(), time.Hour)

	assert.ErrorIs(t, err, boom)
}

func TestDraftService_RunSweeper_StopsOnCancel(t *testing.T) {
	calls := make(chan time.Time, 1)
	svc := service.NewDraftService(&mockDraftRepo{
		deleteIdleSince: func(_ context.Context, cutoff time.Time) (int, error) {
			select {
			case calls <- cutoff:
			default:
			}
			return 0, nil
		},
	}, nil, service.DraftOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.RunSweeper(ctx, time.Hour, 5*time.Millisecond)
		close(done)
	}()

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper never ran")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
