package show

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showalert/internal/core/apperror"
	"showalert/internal/core/id"
	"showalert/internal/domain"
	"showalert/internal/domain/domaintest"
)

type adminFixture struct {
	svc       *AdminService
	repo      *memShowRepo
	artists   *memAssoc[id.ID, domain.Link]
	genres    *memAssoc[id.ID, domain.Link]
	ticketing *memAssoc[TicketingKey, TicketingTime]
	search    *memAssoc[string, SearchRow]
	events    *recordingPublisher
	cache     *memCache
}

func newAdminFixture() *adminFixture {
	f := &adminFixture{
		repo:      newMemShowRepo(),
		artists:   newLinkStore(),
		genres:    newLinkStore(),
		ticketing: newTicketingStore(),
		search:    newSearchStore(),
		events:    &recordingPublisher{},
		cache:     newMemCache(),
	}
	f.svc = NewAdminService(AdminServiceConfig{
		Repo: f.repo,
		Stores: Stores{
			Artists:   f.artists,
			Genres:    f.genres,
			Ticketing: f.ticketing,
			Search:    f.search,
		},
		TxManager: domaintest.PassThroughTx{},
		Events:    f.events,
		Cache:     f.cache,
	})
	return f
}

var ticketOpen = time.Date(2026, 6, 1, 20, 0, 0, 0, time.UTC)

func sampleInput(artists, genres []id.ID) Input {
	return Input{
		Info: Info{
			Title:           "IU  Concert 2026",
			Content:         "HEREH world tour",
			StartDate:       time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			EndDate:         time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
			Location:        "KSPO Dome",
			Image:           "iu.png",
			LastTicketingAt: ticketOpen.Add(24 * time.Hour),
			SeatPrices:      SeatPrices{"VIP": decimal.RequireFromString("165000"), "R": decimal.RequireFromString("154000")},
			TicketingSites:  TicketingSites{"melon": "https://ticket.melon.com/1"},
		},
		ArtistIDs: artists,
		GenreIDs:  genres,
		TicketingTimes: []TicketingKey{
			{Type: TicketingPre, At: ticketOpen},
			{Type: TicketingNormal, At: ticketOpen.Add(24 * time.Hour)},
		},
	}
}

func TestAdminCreate_StoresAssociationsAndRecordsEvent(t *testing.T) {
	f := newAdminFixture()
	a1, g1 := id.New(), id.New()

	sh, err := f.svc.Create(context.Background(), sampleInput([]id.ID{a1}, []id.ID{g1}))
	require.NoError(t, err)

	assert.Equal(t, 1, sh.Version)
	assert.Zero(t, sh.ViewCount)
	assert.Equal(t, []id.ID{a1}, f.artists.active(sh.ID))
	assert.Equal(t, []id.ID{g1}, f.genres.active(sh.ID))
	assert.Equal(t, []string{"iuconcert2026"}, f.search.active(sh.ID))
	assert.Len(t, f.ticketing.active(sh.ID), 2)

	events := f.events.ofType(EventRegistered)
	require.Len(t, events, 1)
	assert.Equal(t, sh.ID, events[0].AggregateID)
	assert.Equal(t, RelationPayload{ShowID: sh.ID, ArtistIDs: []id.ID{a1}, GenreIDs: []id.ID{g1}}, events[0].Payload)
}

func TestAdminCreate_InvalidInputStoresNothing(t *testing.T) {
	f := newAdminFixture()
	in := sampleInput(nil, nil)
	in.EndDate = in.StartDate.AddDate(0, 0, -1)

	_, err := f.svc.Create(context.Background(), in)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Empty(t, f.repo.shows)
	assert.Empty(t, f.events.events)
}

func TestAdminUpdate_ReplacesArtistsAndPublishesAdded(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	a1, a2, a3, g1 := id.New(), id.New(), id.New(), id.New()

	sh, err := f.svc.Create(ctx, sampleInput([]id.ID{a1, a2}, []id.ID{g1}))
	require.NoError(t, err)

	in := sampleInput([]id.ID{a2, a3}, []id.ID{g1})
	in.Title = "IU Encore"
	updated, err := f.svc.Update(ctx, sh.ID, sh.Version, in)
	require.NoError(t, err)

	assert.Equal(t, sh.Version+1, updated.Version)
	assert.ElementsMatch(t, []id.ID{a2, a3}, f.artists.active(sh.ID))
	assert.Equal(t, 3, f.artists.total(), "A1 is soft-deleted, not removed")
	assert.Equal(t, []string{"iuencore"}, f.search.active(sh.ID))
	assert.Equal(t, 2, f.search.total())

	events := f.events.ofType(EventUpdated)
	require.Len(t, events, 1)
	assert.Equal(t, RelationPayload{ShowID: sh.ID, ArtistIDs: []id.ID{a3}, GenreIDs: []id.ID{}}, events[0].Payload)
	assert.Contains(t, f.cache.invalidated, sh.ID)
}

func TestAdminUpdate_NoNewLinksNoEvent(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	a1, a2 := id.New(), id.New()

	sh, err := f.svc.Create(ctx, sampleInput([]id.ID{a1, a2}, nil))
	require.NoError(t, err)

	// removal only
	sh, err = f.svc.Update(ctx, sh.ID, sh.Version, sampleInput([]id.ID{a1}, nil))
	require.NoError(t, err)
	// identical input, ticketing times given in another zone
	in := sampleInput([]id.ID{a1}, nil)
	for i := range in.TicketingTimes {
		in.TicketingTimes[i].At = in.TicketingTimes[i].At.In(time.FixedZone("PST", -8*3600))
	}
	_, err = f.svc.Update(ctx, sh.ID, sh.Version, in)
	require.NoError(t, err)

	assert.Empty(t, f.events.ofType(EventUpdated))
	assert.Equal(t, 2, f.ticketing.total(), "ticketing times compare by value")
}

func TestAdminUpdate_StaleVersion(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	sh, err := f.svc.Create(ctx, sampleInput(nil, nil))
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, sh.ID, sh.Version, sampleInput(nil, nil))
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, sh.ID, sh.Version, sampleInput([]id.ID{id.New()}, nil))
	require.Error(t, err)
	assert.True(t, apperror.IsConcurrentModification(err))
	assert.Empty(t, f.artists.active(sh.ID))

	_, err = f.svc.Update(ctx, sh.ID, 0, sampleInput(nil, nil))
	assert.True(t, apperror.IsValidation(err))
}

func TestAdminUpdate_ConcurrentWritersExactlyOneWins(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	sh, err := f.svc.Create(ctx, sampleInput(nil, nil))
	require.NoError(t, err)

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	start := make(chan struct{})
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.svc.Update(ctx, sh.ID, sh.Version, sampleInput(nil, nil))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case apperror.IsConcurrentModification(err):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, writers-1, conflicts)
	stored, err := f.repo.GetByID(ctx, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, sh.Version+1, stored.Version)
}

func TestAdminDelete_CascadesOwnedAssociations(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	a1, g1 := id.New(), id.New()

	doomed, err := f.svc.Create(ctx, sampleInput([]id.ID{a1}, []id.ID{g1}))
	require.NoError(t, err)
	kept, err := f.svc.Create(ctx, sampleInput([]id.ID{a1}, []id.ID{g1}))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, doomed.ID))

	assert.Empty(t, f.artists.active(doomed.ID))
	assert.Empty(t, f.genres.active(doomed.ID))
	assert.Empty(t, f.ticketing.active(doomed.ID))
	assert.Empty(t, f.search.active(doomed.ID))

	assert.Equal(t, []id.ID{a1}, f.artists.active(kept.ID))
	assert.Len(t, f.ticketing.active(kept.ID), 2)

	history, err := f.repo.GetByIDWithHistory(ctx, doomed.ID)
	require.NoError(t, err)
	assert.True(t, history.DeletionMark)
	assert.Contains(t, f.cache.invalidated, doomed.ID)

	err = f.svc.Delete(ctx, doomed.ID)
	assert.True(t, apperror.IsNotFound(err))

	_, err = f.svc.Update(ctx, doomed.ID, history.Version, sampleInput(nil, nil))
	assert.True(t, apperror.IsNotFound(err))
}

func TestNormalizeSearchName(t *testing.T) {
	cases := map[string]string{
		"IU  Concert":       "iuconcert",
		" Seoul\tJazz\nFes": "seouljazzfes",
		"아이유 콘서트":           "아이유콘서트",
		"":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeSearchName(in), "input %q", in)
	}
}
