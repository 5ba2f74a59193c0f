package repository

import (
	"context"
	"fmt"
	"time"

	"foodgram/internal/apperr"
	"foodgram/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// RelationRepository stores one kind of owner→target pair. T is the
// target id type: int64 for recipes, string for users.
type RelationRepository[T comparable] interface {
	Kind() models.RelationKind
	// Add inserts the pair. The unique pair index decides races: the loser
	// gets apperr.ErrAlreadyExists.
	Add(ctx context.Context, ownerID string, targetID T) (time.Time, error)
	// Remove deletes the pair or fails with apperr.ErrRelationNotFound.
	Remove(ctx context.Context, ownerID string, targetID T) error
	Exists(ctx context.Context, ownerID string, targetID T) (bool, error)
	// Targets returns which of targetIDs are related to ownerID.
	Targets(ctx context.Context, ownerID string, targetIDs []T) ([]T, error)
	// List returns every target of ownerID, newest first.
	List(ctx context.Context, ownerID string, limit, offset int) ([]T, int64, error)
}

type relationRepository[T comparable] struct {
	db         *gorm.DB
	kind       models.RelationKind
	violations violations
}

func NewRelationRepository[T comparable](db *gorm.DB, kind models.RelationKind) RelationRepository[T] {
	v := violations{
		duplicate: apperr.ErrAlreadyExists.WithMessage("%s already exists", kind.Name),
		foreignKey: apperr.ErrNotFound.WithField(kind.TargetColumn).
			WithMessage("%s target not found", kind.Name),
	}
	v.malformed = v.foreignKey
	if kind.ForbidSelf {
		v.check = apperr.ErrSelfReferenceForbidden
	}
	return &relationRepository[T]{db: db, kind: kind, violations: v}
}

func (r *relationRepository[T]) Kind() models.RelationKind {
	return r.kind
}

func (r *relationRepository[T]) Add(ctx context.Context, ownerID string, targetID T) (time.Time, error) {
	now := time.Now().UTC()
	row := map[string]any{
		r.kind.OwnerColumn:  ownerID,
		r.kind.TargetColumn: targetID,
		"created_at":        now,
	}
	if err := r.db.WithContext(ctx).Table(r.kind.Table).Create(row).Error; err != nil {
		return time.Time{}, fmt.Errorf("add %s: %w", r.kind.Name, translate(err, r.violations))
	}
	return now, nil
}

func (r *relationRepository[T]) Remove(ctx context.Context, ownerID string, targetID T) error {
	result := r.db.WithContext(ctx).
		Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND %s = ?",
			r.kind.Table, r.kind.OwnerColumn, r.kind.TargetColumn), ownerID, targetID)

	if result.Error != nil {
		return fmt.Errorf("remove %s: %w", r.kind.Name, translate(result.Error, violations{
			malformed: apperr.ErrRelationNotFound.WithMessage("%s does not exist", r.kind.Name),
		}))
	}
	if result.RowsAffected == 0 {
		return apperr.ErrRelationNotFound.WithMessage("%s does not exist", r.kind.Name)
	}
	return nil
}

func (r *relationRepository[T]) Exists(ctx context.Context, ownerID string, targetID T) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Table(r.kind.Table).
		Where(r.kind.OwnerColumn+" = ? AND "+r.kind.TargetColumn+" = ?", ownerID, targetID).
		Count(&count).Error; err != nil {
		if isMalformed(err) {
			return false, nil
		}
		return false, fmt.Errorf("check %s: %w", r.kind.Name, err)
	}
	return count > 0, nil
}

func (r *relationRepository[T]) Targets(ctx context.Context, ownerID string, targetIDs []T) ([]T, error) {
	out := []T{}
	if len(targetIDs) == 0 {
		return out, nil
	}
	if err := r.db.WithContext(ctx).
		Table(r.kind.Table).
		Where(r.kind.OwnerColumn+" = ? AND "+r.kind.TargetColumn+" IN ?", ownerID, targetIDs).
		Pluck(r.kind.TargetColumn, &out).Error; err != nil {
		return nil, fmt.Errorf("list %s targets: %w", r.kind.Name, err)
	}
	return out, nil
}

func (r *relationRepository[T]) List(ctx context.Context, ownerID string, limit, offset int) ([]T, int64, error) {
	q := r.db.WithContext(ctx).
		Table(r.kind.Table).
		Where(r.kind.OwnerColumn+" = ?", ownerID).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.kind.Name, err)
	}

	out := []T{}
	page := q.Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		page = page.Limit(limit).Offset(offset)
	}
	if err := page.Pluck(r.kind.TargetColumn, &out).Error; err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.kind.Name, err)
	}
	return out, total, nil
}
