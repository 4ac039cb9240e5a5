// Package catalog_repo provides PostgreSQL implementations of the soft-delete
// aggregate repositories: shows, artists and genres.
package catalog_repo

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"showalert/internal/core/apperror"
	"showalert/internal/core/entity"
	"showalert/internal/core/id"
	"showalert/internal/domain"
	"showalert/internal/domain/pagination"
	"showalert/internal/infrastructure/storage/postgres"
)

// Columns never written by Update: identity, lock, creation time and the
// soft-delete mark (changed only through SetDeletionMark).
var immutableCols = []string{"id", "version", "created_at", "deletion_mark"}

// BaseRepo provides common CRUD operations for soft-deletable aggregates.
// Embed this in specific repositories.
type BaseRepo[T any] struct {
	db         postgres.QuerierProvider
	tableName  string
	selectCols []string
	readOnly   map[string]bool
	allowed    postgres.Columns
	newFn      func() T
}

// NewBaseRepo creates a new base repository. readOnlyCols are excluded from
// Update in addition to the identity and lock columns.
func NewBaseRepo[T any](
	db postgres.QuerierProvider,
	tableName string,
	selectCols []string,
	newFn func() T,
	readOnlyCols ...string,
) *BaseRepo[T] {
	ro := make(map[string]bool, len(immutableCols)+len(readOnlyCols))
	for _, c := range immutableCols {
		ro[c] = true
	}
	for _, c := range readOnlyCols {
		ro[c] = true
	}
	return &BaseRepo[T]{
		db:         db,
		tableName:  tableName,
		selectCols: selectCols,
		readOnly:   ro,
		allowed:    postgres.NewColumns(selectCols...).With("id"),
		newFn:      newFn,
	}
}

// Table returns the table name.
func (r *BaseRepo[T]) Table() string { return r.tableName }

func (r *BaseRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.db.GetQuerier(ctx)
}

// writableData keeps only known columns of e.
func (r *BaseRepo[T]) writableData(e T, skip map[string]bool) (map[string]any, error) {
	data := postgres.StructToMap(e)
	if len(data) == 0 {
		return nil, fmt.Errorf("no db tags found in entity")
	}
	filtered := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if skip[col] {
			continue
		}
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}
	return filtered, nil
}

func (r *BaseRepo[T]) createQuery(e T) (squirrel.InsertBuilder, error) {
	data, err := r.writableData(e, nil)
	if err != nil {
		return squirrel.InsertBuilder{}, err
	}
	return postgres.Builder().Insert(r.tableName).SetMap(data), nil
}

// Create inserts a new entity using its "db" tags.
func (r *BaseRepo[T]) Create(ctx context.Context, e T) error {
	q, err := r.createQuery(e)
	if err != nil {
		return err
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.TranslateError(err, "insert", r.tableName)
	}
	return nil
}

func (r *BaseRepo[T]) updateQuery(e T) (squirrel.UpdateBuilder, id.ID, int, error) {
	v, ok := any(e).(entity.Versioned)
	if !ok {
		return squirrel.UpdateBuilder{}, id.Nil(), 0, fmt.Errorf("%s: entity is not versioned", r.tableName)
	}
	sd, ok := any(e).(entity.SoftDeletable)
	if !ok {
		return squirrel.UpdateBuilder{}, id.Nil(), 0, fmt.Errorf("%s: entity has no id", r.tableName)
	}
	data, err := r.writableData(e, r.readOnly)
	if err != nil {
		return squirrel.UpdateBuilder{}, id.Nil(), 0, err
	}

	entityID := sd.GetID()
	version := v.GetVersion()
	q := postgres.Builder().
		Update(r.tableName).
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entityID}).
		Where(squirrel.Eq{"version": version}). // optimistic lock: expect current version
		Where(squirrel.Eq{"deletion_mark": false})
	return q, entityID, version, nil
}

// Update modifies an existing entity with optimistic locking and advances
// the entity's version on success.
func (r *BaseRepo[T]) Update(ctx context.Context, e T) error {
	q, entityID, version, err := r.updateQuery(e)
	if err != nil {
		return err
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.TranslateError(err, "update", r.tableName)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(r.tableName, entityID.String())
	}

	any(e).(entity.Versioned).SetVersion(version + 1)
	return nil
}

// baseSelect creates a SELECT builder.
func (r *BaseRepo[T]) baseSelect() squirrel.SelectBuilder {
	return postgres.Builder().
		Select(r.selectCols...).
		From(r.tableName)
}

func (r *BaseRepo[T]) getQuery(entityID id.ID, withHistory bool) squirrel.SelectBuilder {
	q := r.baseSelect().Where(squirrel.Eq{"id": entityID})
	if !withHistory {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	return q.Limit(1)
}

// GetByID retrieves a live entity by ID.
func (r *BaseRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	return r.FindOne(ctx, r.getQuery(entityID, false), entityID.String())
}

// GetByIDWithHistory retrieves an entity by ID even when soft-deleted.
func (r *BaseRepo[T]) GetByIDWithHistory(ctx context.Context, entityID id.ID) (T, error) {
	return r.FindOne(ctx, r.getQuery(entityID, true), entityID.String())
}

// FindOne executes a SELECT query and returns a single entity.
func (r *BaseRepo[T]) FindOne(ctx context.Context, q squirrel.SelectBuilder, key string) (T, error) {
	e := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return e, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.querier(ctx), e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return e, apperror.NewNotFound(r.tableName, key)
		}
		return e, fmt.Errorf("get %s: %w", r.tableName, err)
	}
	return e, nil
}

func (r *BaseRepo[T]) listQueries(f domain.ListFilter) (list, count squirrel.SelectBuilder, err error) {
	q := r.baseSelect()

	if !f.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if f.Search != "" && r.allowed["name"] {
		q = q.Where(squirrel.ILike{"name": "%" + f.Search + "%"})
	}
	if len(f.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": f.IDs})
	}
	q, err = postgres.ApplyFilters(q, f.AdvancedFilters, r.allowed)
	if err != nil {
		return q, q, err
	}

	count = postgres.Builder().Select("COUNT(*)").FromSelect(q, "sub")

	orderBy, err := r.parseOrderBy(f.OrderBy)
	if err != nil {
		return q, count, err
	}
	q = q.OrderBy(orderBy, "id ASC")

	// Limit 0 means every matching row.
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return q, count, nil
}

// List retrieves entities with filtering and offset pagination.
func (r *BaseRepo[T]) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{
		Items:  []T{},
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	q, countQ, err := r.listQueries(f)
	if err != nil {
		return result, err
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	querier := r.querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count %s: %w", r.tableName, err)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	return result, nil
}

// Exists reports whether a live entity with entityID exists.
func (r *BaseRepo[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	q := postgres.Builder().
		Select("1").
		From(r.tableName).
		Where(squirrel.Eq{"id": entityID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists int
	err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&exists)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return true, nil
}

func (r *BaseRepo[T]) setDeletionMarkQuery(entityID id.ID, marked bool) squirrel.UpdateBuilder {
	return postgres.Builder().
		Update(r.tableName).
		Set("deletion_mark", marked).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": entityID}).
		Where(squirrel.Eq{"deletion_mark": !marked})
}

// SetDeletionMark sets or clears the deletion mark. Rows are never
// physically removed.
func (r *BaseRepo[T]) SetDeletionMark(ctx context.Context, entityID id.ID, marked bool) error {
	sql, args, err := r.setDeletionMarkQuery(entityID, marked).ToSql()
	if err != nil {
		return fmt.Errorf("build set deletion mark: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("execute set deletion mark: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.tableName, entityID.String())
	}
	return nil
}

// ResolveCursor implements pagination.Source for orderings over the
// repository's own columns. Soft-deleted rows are stale.
func (r *BaseRepo[T]) ResolveCursor(ctx context.Context, o pagination.Ordering, cursorID id.ID) (pagination.Key, error) {
	if !r.allowed[o.Primary] {
		return pagination.Key{}, fmt.Errorf("%s: cannot order by %q", r.tableName, o.Primary)
	}
	q := postgres.Builder().
		Select(o.Primary).
		From(r.tableName).
		Where(squirrel.Eq{"id": cursorID}).
		Where(squirrel.Eq{"deletion_mark": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return pagination.Key{}, fmt.Errorf("build query: %w", err)
	}

	var value any
	err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&value)
	if err == pgx.ErrNoRows {
		return pagination.Key{}, apperror.NewNotFound(r.tableName, cursorID.String())
	}
	if err != nil {
		return pagination.Key{}, fmt.Errorf("resolve cursor: %w", err)
	}
	return pagination.Key{ID: cursorID, Value: value}, nil
}

func (r *BaseRepo[T]) fetchQuery(pq pagination.Query) (squirrel.SelectBuilder, error) {
	return postgres.ApplyPageQuery(r.baseSelect(), pq, r.allowed)
}

// Fetch implements pagination.Source.
func (r *BaseRepo[T]) Fetch(ctx context.Context, pq pagination.Query) ([]T, error) {
	q, err := r.fetchQuery(pq)
	if err != nil {
		return nil, err
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := []T{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("fetch %s page: %w", r.tableName, err)
	}
	return items, nil
}

func (r *BaseRepo[T]) parseOrderBy(orderBy string) (string, error) {
	if orderBy == "" {
		if r.allowed["name"] {
			return "name ASC", nil
		}
		return "created_at ASC", nil
	}

	// Support "-field" for DESC.
	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	field = strings.TrimSpace(field)
	if field == "" || !r.allowed[field] {
		return "", apperror.NewValidation("invalid orderBy").
			WithDetail("orderBy", orderBy).
			WithDetail("allowed", r.sortedColumns())
	}
	return field + " " + direction, nil
}

func (r *BaseRepo[T]) sortedColumns() []string {
	cols := make([]string, 0, len(r.allowed))
	for c := range r.allowed {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}
