package entity

import (
	"context"
	"time"

	"showalert/internal/core/id"
)

// Validatable is implemented by entities that check their own invariants
// without touching storage.
type Validatable interface {
	Validate(ctx context.Context) error
}

// SoftDeletable is the capability shared by every row that is never
// physically removed.
type SoftDeletable interface {
	GetID() id.ID
	IsDeleted() bool
	MarkDeleted()
}

// Versioned is implemented by aggregates guarded by optimistic locking.
type Versioned interface {
	GetVersion() int
	SetVersion(v int)
}

// BaseEntity carries identity, the soft-delete mark and the optimistic
// lock version. Aggregates embed it instead of inheriting behavior.
type BaseEntity struct {
	ID id.ID `db:"id" json:"id"`

	// DeletionMark hides the row from every non-history query.
	DeletionMark bool `db:"deletion_mark" json:"deletionMark"`

	// Version is bumped by exactly one per successful update.
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseEntity creates a BaseEntity with a fresh ID at version 1.
func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		ID:        id.New(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (b *BaseEntity) GetID() id.ID     { return b.ID }
func (b *BaseEntity) IsDeleted() bool  { return b.DeletionMark }
func (b *BaseEntity) GetVersion() int  { return b.Version }
func (b *BaseEntity) SetVersion(v int) { b.Version = v }

// Touch refreshes UpdatedAt. The version is advanced by the repository
// when the compare-and-swap succeeds.
func (b *BaseEntity) Touch() {
	b.UpdatedAt = time.Now().UTC()
}

// MarkDeleted sets the deletion mark.
func (b *BaseEntity) MarkDeleted() {
	b.DeletionMark = true
}

// Undelete clears the deletion mark.
func (b *BaseEntity) Undelete() {
	b.DeletionMark = false
}

// BaseLink is the shape of an association row: an identity of its own, the
// owner it belongs to, and a soft-delete mark. Links carry no version, they
// are only ever inserted or soft-deleted.
type BaseLink struct {
	ID           id.ID     `db:"id" json:"id"`
	OwnerID      id.ID     `db:"owner_id" json:"ownerId"`
	DeletionMark bool      `db:"deletion_mark" json:"deletionMark"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// NewBaseLink creates a live link row for owner.
func NewBaseLink(owner id.ID) BaseLink {
	return BaseLink{
		ID:        id.New(),
		OwnerID:   owner,
		CreatedAt: time.Now().UTC(),
	}
}

func (l *BaseLink) GetID() id.ID    { return l.ID }
func (l *BaseLink) IsDeleted() bool { return l.DeletionMark }
func (l *BaseLink) MarkDeleted()    { l.DeletionMark = true }
