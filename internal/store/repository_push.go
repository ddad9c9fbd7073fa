package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/models"
)

type pushRepository struct {
	*DB
	logger *logger.Logger
}

func NewPushRepository(db *DB, logger *logger.Logger) PushRepository {
	return &pushRepository{DB: db, logger: logger}
}

// GetPermission returns [models.PermissionDefault] until a decision is stored.
func (p *pushRepository) GetPermission(ctx context.Context) (models.PushPermission, error) {
	query, args, err := buildGetPermissionQuery()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var state string
	err = p.QueryRowContext(ctx, query, args...).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PermissionDefault, nil
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "pushRepository.GetPermission").Msg("failed to read permission")
		return "", fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return models.PushPermission(state), nil
}

func (p *pushRepository) SetPermission(ctx context.Context, permission models.PushPermission) error {
	query, args, err := buildSetPermissionQuery(permission)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if _, err = p.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "pushRepository.SetPermission").Msg("failed to store permission")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (p *pushRepository) GetSubscription(ctx context.Context) (models.LocalPushSubscription, error) {
	query, args, err := buildGetSubscriptionQuery()
	if err != nil {
		return models.LocalPushSubscription{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var (
		sub       models.LocalPushSubscription
		createdAt int64
	)
	err = p.QueryRowContext(ctx, query, args...).Scan(
		&sub.Endpoint,
		&sub.Keys.P256dh,
		&sub.Keys.Auth,
		&sub.PrivateKey,
		&sub.AuthSecret,
		&sub.ApplicationServerKey,
		&createdAt,
		&sub.Persisted,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.LocalPushSubscription{}, ErrSubscriptionNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "pushRepository.GetSubscription").Msg("failed to read subscription")
		return models.LocalPushSubscription{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	sub.CreatedAt = fromUnixNano(createdAt)
	return sub, nil
}

func (p *pushRepository) SaveSubscription(ctx context.Context, sub models.LocalPushSubscription) error {
	query, args, err := buildSaveSubscriptionQuery(sub)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if _, err = p.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "pushRepository.SaveSubscription").Msg("failed to save subscription")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (p *pushRepository) DeleteSubscription(ctx context.Context) error {
	query, args, err := buildDeleteSubscriptionQuery()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if _, err = p.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "pushRepository.DeleteSubscription").Msg("failed to delete subscription")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}
