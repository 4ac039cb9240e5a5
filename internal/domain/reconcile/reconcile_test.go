package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showalert/internal/core/id"
)

type link struct {
	ID      id.ID
	Owner   id.ID
	Related string
	Deleted bool
}

// memStore keeps every row ever written, deleted ones included.
type memStore struct {
	rows      []*link
	insertErr error
}

func (s *memStore) ListActive(_ context.Context, owner id.ID) ([]*link, error) {
	var out []*link
	for _, r := range s.rows {
		if r.Owner == owner && !r.Deleted {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) Key(r *link) string { return r.Related }

func (s *memStore) Insert(_ context.Context, owner id.ID, keys []string) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	for _, k := range keys {
		s.rows = append(s.rows, &link{ID: id.New(), Owner: owner, Related: k})
	}
	return nil
}

func (s *memStore) SoftDelete(_ context.Context, rows []*link) error {
	for _, r := range rows {
		r.Deleted = true
	}
	return nil
}

func (s *memStore) active(owner id.ID) []string {
	var out []string
	for _, r := range s.rows {
		if r.Owner == owner && !r.Deleted {
			out = append(out, r.Related)
		}
	}
	return out
}

func (s *memStore) seed(owner id.ID, related ...string) {
	for _, k := range related {
		s.rows = append(s.rows, &link{ID: id.New(), Owner: owner, Related: k})
	}
}

func TestCompute(t *testing.T) {
	row := func(k string) *link { return &link{ID: id.New(), Related: k} }
	key := func(r *link) string { return r.Related }

	a1, a2, a2dup := row("A1"), row("A2"), row("A2")

	cases := []struct {
		name       string
		desired    []string
		current    []*link
		wantAdd    []string
		wantRemove []*link
	}{
		{"replace one", []string{"A2", "A3"}, []*link{a1, a2}, []string{"A3"}, []*link{a1}},
		{"already satisfied", []string{"A1", "A2"}, []*link{a2, a1}, nil, nil},
		{"empty desired removes all", nil, []*link{a1, a2}, nil, []*link{a1, a2}},
		{"empty current adds all", []string{"A1", "A2"}, nil, []string{"A1", "A2"}, nil},
		{"duplicate desired collapses", []string{"A3", "A3", "A1"}, []*link{a1}, []string{"A3"}, nil},
		{"duplicate active row is healed", []string{"A2"}, []*link{a2, a2dup}, nil, []*link{a2dup}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Compute(tc.desired, tc.current, key)
			assert.Equal(t, tc.wantAdd, d.ToAdd)
			assert.Equal(t, tc.wantRemove, d.ToRemove)
			assert.Equal(t, tc.wantAdd == nil && tc.wantRemove == nil, d.Empty())
		})
	}
}

func TestReconcile_ReplacesAndKeepsHistory(t *testing.T) {
	ctx := context.Background()
	owner := id.New()
	other := id.New()
	s := &memStore{}
	s.seed(owner, "A1", "A2")
	s.seed(other, "A1")

	d, err := Reconcile[string, *link](ctx, s, owner, []string{"A2", "A3"})
	require.NoError(t, err)

	assert.Equal(t, []string{"A3"}, d.ToAdd)
	require.Len(t, d.ToRemove, 1)
	assert.Equal(t, "A1", d.ToRemove[0].Related)

	assert.ElementsMatch(t, []string{"A2", "A3"}, s.active(owner))
	assert.Equal(t, []string{"A1"}, s.active(other), "other owners are untouched")
	// A1 is soft-deleted, never removed
	assert.Len(t, s.rows, 4)
	assert.True(t, s.rows[0].Deleted)
}

func TestReconcile_Idempotent(t *testing.T) {
	ctx := context.Background()
	owner := id.New()
	s := &memStore{}
	s.seed(owner, "G1")

	desired := []string{"G1", "G2", "G3"}
	_, err := Reconcile[string, *link](ctx, s, owner, desired)
	require.NoError(t, err)
	rowsAfterFirst := len(s.rows)

	d, err := Reconcile[string, *link](ctx, s, owner, desired)
	require.NoError(t, err)
	assert.True(t, d.Empty())
	assert.Len(t, s.rows, rowsAfterFirst)
	assert.ElementsMatch(t, desired, s.active(owner))
}

func TestReconcile_ReAddAfterRemoveCreatesFreshRow(t *testing.T) {
	ctx := context.Background()
	owner := id.New()
	s := &memStore{}
	s.seed(owner, "A1")

	_, err := Reconcile[string, *link](ctx, s, owner, nil)
	require.NoError(t, err)
	d, err := Reconcile[string, *link](ctx, s, owner, []string{"A1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"A1"}, d.ToAdd)
	assert.Equal(t, []string{"A1"}, s.active(owner))
	assert.Len(t, s.rows, 2)
}

func TestCascade(t *testing.T) {
	ctx := context.Background()
	owner := id.New()
	s := &memStore{}
	s.seed(owner, "A1", "A2", "A3")

	d, err := Cascade[string, *link](ctx, s, owner)
	require.NoError(t, err)
	assert.Len(t, d.ToRemove, 3)
	assert.Empty(t, d.ToAdd)
	assert.Empty(t, s.active(owner))

	d, err = Cascade[string, *link](ctx, s, owner)
	require.NoError(t, err)
	assert.True(t, d.Empty())
}

func TestReconcile_InsertError(t *testing.T) {
	boom := errors.New("boom")
	s := &memStore{insertErr: boom}

	_, err := Reconcile[string, *link](context.Background(), s, id.New(), []string{"A1"})
	assert.ErrorIs(t, err, boom)
}

type timeKey struct {
	Type string
	At   time.Time
}

func TestCompute_StructuralKeys(t *testing.T) {
	at := time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)
	type slot struct {
		ID  id.ID
		Key timeKey
	}
	current := []slot{
		{ID: id.New(), Key: timeKey{"PRE", at}},
		{ID: id.New(), Key: timeKey{"NORMAL", at.Add(time.Hour)}},
	}
	desired := []timeKey{{"PRE", at}, {"NORMAL", at.Add(2 * time.Hour)}}

	d := Compute(desired, current, func(s slot) timeKey { return s.Key })
	assert.Equal(t, []timeKey{{"NORMAL", at.Add(2 * time.Hour)}}, d.ToAdd)
	require.Len(t, d.ToRemove, 1)
	assert.Equal(t, current[1].ID, d.ToRemove[0].ID)
}

func TestAll_StopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	owner := id.New()
	ok := &memStore{}
	failing := &memStore{insertErr: errors.New("down")}
	var calls []string

	var artists Delta[string, *link]
	err := All(ctx, owner,
		Bind[string, *link]("artists", ok, []string{"A1"}, &artists),
		StepFunc(func(context.Context, id.ID) error { calls = append(calls, "custom"); return nil }),
		Bind[string, *link]("genres", failing, []string{"G1"}, nil),
		StepFunc(func(context.Context, id.ID) error { calls = append(calls, "never"); return nil }),
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reconcile genres")
	assert.Equal(t, []string{"A1"}, artists.ToAdd)
	assert.Equal(t, []string{"custom"}, calls)
	assert.Equal(t, fmt.Sprint([]string{"A1"}), fmt.Sprint(ok.active(owner)))
}
