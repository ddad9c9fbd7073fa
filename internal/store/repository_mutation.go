package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/models"
)

type mutationRepository struct {
	*DB
	logger *logger.Logger
}

func NewMutationRepository(db *DB, logger *logger.Logger) MutationRepository {
	return &mutationRepository{
		DB:     db,
		logger: logger,
	}
}

// Snapshot reads the version stamp and the ordered queue inside one read
// transaction so both belong to the same state.
func (m *mutationRepository) Snapshot(ctx context.Context) (QueueSnapshot, error) {
	var snapshot QueueSnapshot

	err := m.inTx(ctx, func(tx *sql.Tx) error {
		query, args, err := buildQueueVersionQuery()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}
		if err = tx.QueryRowContext(ctx, query, args...).Scan(&snapshot.Version); err != nil {
			return fmt.Errorf("%w: %w", ErrScanningRow, err)
		}

		query, args, err = buildSelectMutationsQuery()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
		}
		defer rows.Close()

		snapshot.Items = make([]models.QueuedMutation, 0)
		for rows.Next() {
			item, err := scanMutation(rows)
			if err != nil {
				return err
			}
			snapshot.Items = append(snapshot.Items, item)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "mutationRepository.Snapshot").Msg("failed to read queue snapshot")
		return QueueSnapshot{}, err
	}

	return snapshot, nil
}

// Commit applies ops atomically if the queue is still at version.
func (m *mutationRepository) Commit(ctx context.Context, version int64, ops QueueOps) error {
	err := m.inTx(ctx, func(tx *sql.Tx) error {
		query, args, err := buildBumpQueueVersionQuery(version)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		if n == 0 {
			return ErrVersionConflict
		}

		for _, item := range ops.Insert {
			if err := execBuilt(ctx, tx, func() (string, []any, error) { return buildInsertMutationQuery(item) }); err != nil {
				return err
			}
		}

		for id, retries := range ops.Retries {
			query, args, err := buildUpdateRetriesQuery(id, retries)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
			}
			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
			}
			if n, err := res.RowsAffected(); err == nil && n == 0 {
				return fmt.Errorf("%w: %s", ErrMutationNotFound, id)
			}
		}

		deleteIDs := append([]string(nil), ops.Delete...)
		for _, failed := range ops.Fail {
			if err := execBuilt(ctx, tx, func() (string, []any, error) { return buildInsertFailedQuery(failed) }); err != nil {
				return err
			}
			deleteIDs = append(deleteIDs, failed.ID)
		}

		if len(deleteIDs) > 0 {
			if err := execBuilt(ctx, tx, func() (string, []any, error) { return buildDeleteMutationsQuery(deleteIDs) }); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Debug().Err(err).
			Str("func", "mutationRepository.Commit").
			Int64("version", version).
			Msg("queue commit failed")
		return err
	}

	return nil
}

func (m *mutationRepository) Count(ctx context.Context) (int, error) {
	query, args, err := buildCountMutationsQuery()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var count int
	if err = m.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "mutationRepository.Count").Msg("failed to count queue entries")
		return 0, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return count, nil
}

// Failed returns the dropped-mutation history, newest first. A zero limit
// returns everything.
func (m *mutationRepository) Failed(ctx context.Context, limit uint64) ([]models.FailedMutation, error) {
	query, args, err := buildSelectFailedQuery(limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := m.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "mutationRepository.Failed").Msg("failed to query failed mutations")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	result := make([]models.FailedMutation, 0)
	for rows.Next() {
		var (
			f                    models.FailedMutation
			headers              string
			createdAt, droppedAt int64
		)
		if err := rows.Scan(&f.ID, &f.Endpoint, &f.Method, &f.Body, &headers, &createdAt, &f.Retries, &f.LastError, &droppedAt); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		if err := decodeJSONColumn(headers, &f.Headers); err != nil {
			return nil, err
		}
		f.CreatedAt = fromUnixNano(createdAt)
		f.DroppedAt = fromUnixNano(droppedAt)
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return result, nil
}

func scanMutation(rows *sql.Rows) (models.QueuedMutation, error) {
	var (
		item      models.QueuedMutation
		headers   string
		createdAt int64
	)
	if err := rows.Scan(&item.Seq, &item.ID, &item.Endpoint, &item.Method, &item.Body, &headers, &createdAt, &item.Retries); err != nil {
		return models.QueuedMutation{}, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	if err := decodeJSONColumn(headers, &item.Headers); err != nil {
		return models.QueuedMutation{}, err
	}
	item.CreatedAt = fromUnixNano(createdAt)
	return item, nil
}

func execBuilt(ctx context.Context, tx *sql.Tx, build func() (string, []any, error)) error {
	query, args, err := build()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}
