package genre

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showalert/internal/core/apperror"
	"showalert/internal/core/id"
	"showalert/internal/domain/domaintest"
)

func TestService_DeleteCascadesLinks(t *testing.T) {
	store := domaintest.NewMemStore[*Genre]("genre")
	artistGenre := &domaintest.LinkTable{}
	showGenre := &domaintest.LinkTable{}
	cache := &domaintest.Evictions{}
	svc := NewService(store, domaintest.PassThroughTx{}, Links{
		Artists: artistGenre.Right(),
		Shows:   showGenre.Right(),
	}, cache)
	ctx := context.Background()

	rock, jazz := New("Rock"), New("Jazz")
	require.NoError(t, svc.Create(ctx, rock))
	require.NoError(t, svc.Create(ctx, jazz))

	artist, show := id.New(), id.New()
	artistGenre.Add(artist, rock.ID)
	artistGenre.Add(artist, jazz.ID)
	showGenre.Add(show, rock.ID)

	require.NoError(t, svc.Delete(ctx, rock.ID))

	assert.True(t, store.IsDeleted(rock.ID))
	assert.Equal(t, []id.ID{jazz.ID}, artistGenre.ActiveRight(artist))
	assert.Empty(t, showGenre.ActiveRight(show))
	assert.Empty(t, artistGenre.ActiveLeft(rock.ID))

	// the show and the artist are only unlinked
	assert.Equal(t, 2, artistGenre.Len())
	assert.Equal(t, []id.ID{show}, cache.IDs())

	showGenre.Add(show, jazz.ID)
	jazz.Name = "Modern Jazz"
	require.NoError(t, svc.Update(ctx, jazz))
	assert.Equal(t, []id.ID{show, show}, cache.IDs())
}

func TestService_ListActive(t *testing.T) {
	store := domaintest.NewMemStore[*Genre]("genre")
	svc := NewService(store, domaintest.PassThroughTx{}, Links{
		Artists: (&domaintest.LinkTable{}).Right(),
		Shows:   (&domaintest.LinkTable{}).Right(),
	}, nil)
	ctx := context.Background()

	for _, name := range []string{"Rock", "Jazz", "Indie"} {
		require.NoError(t, svc.Create(ctx, New(name)))
	}
	all, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	require.NoError(t, svc.Delete(ctx, all[0].ID))
	live, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, live, 2)
}

func TestService_CreateRejectsBlankName(t *testing.T) {
	svc := NewService(domaintest.NewMemStore[*Genre]("genre"), domaintest.PassThroughTx{}, Links{
		Artists: (&domaintest.LinkTable{}).Right(),
		Shows:   (&domaintest.LinkTable{}).Right(),
	}, nil)

	err := svc.Create(context.Background(), New("   "))
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}
