package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MKhiriev/go-fit-offline/internal/logger"
	"github.com/MKhiriev/go-fit-offline/models"
)

type cacheRepository struct {
	*DB
	logger *logger.Logger
	now    func() time.Time
}

func NewCacheRepository(db *DB, logger *logger.Logger) CacheRepository {
	return &cacheRepository{
		DB:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (c *cacheRepository) Open(ctx context.Context, name string) error {
	query, args, err := buildEnsureCacheQuery(name, c.now())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if _, err = c.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "cacheRepository.Open").Str("cache", name).Msg("failed to open cache")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (c *cacheRepository) Names(ctx context.Context) ([]string, error) {
	query, args, err := buildCacheNamesQuery()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return c.queryStrings(ctx, "cacheRepository.Names", query, args...)
}

func (c *cacheRepository) Delete(ctx context.Context, name string) (bool, error) {
	var deleted bool
	err := c.inTx(ctx, func(tx *sql.Tx) error {
		query, args, err := buildDeleteCacheEntriesQuery(name)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}

		query, args, err = buildDeleteCacheNameQuery(name)
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
		deleted = n > 0
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "cacheRepository.Delete").Str("cache", name).Msg("failed to delete cache")
		return false, err
	}
	return deleted, nil
}

func (c *cacheRepository) Match(ctx context.Context, name, url string) (models.CachedResponse, error) {
	query, args, err := buildMatchQuery(name, url)
	if err != nil {
		return models.CachedResponse{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var (
		resp     models.CachedResponse
		header   string
		storedAt int64
	)
	err = c.QueryRowContext(ctx, query, args...).Scan(&resp.URL, &resp.Status, &header, &resp.Body, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CachedResponse{}, ErrCacheMiss
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "cacheRepository.Match").Str("cache", name).Str("url", url).Msg("failed to match cache entry")
		return models.CachedResponse{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	resp.Header = http.Header{}
	if err = decodeJSONColumn(header, &resp.Header); err != nil {
		return models.CachedResponse{}, err
	}
	resp.StoredAt = fromUnixNano(storedAt)
	return resp, nil
}

func (c *cacheRepository) Put(ctx context.Context, name string, resp models.CachedResponse) error {
	if resp.StoredAt.IsZero() {
		resp.StoredAt = c.now()
	}

	err := c.inTx(ctx, func(tx *sql.Tx) error {
		query, args, err := buildEnsureCacheQuery(name, c.now())
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}

		query, args, err = buildPutCacheEntryQuery(name, resp)
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "cacheRepository.Put").Str("cache", name).Str("url", resp.URL).Msg("failed to store cache entry")
		return err
	}
	return nil
}

func (c *cacheRepository) Keys(ctx context.Context, name string) ([]string, error) {
	query, args, err := buildCacheKeysQuery(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return c.queryStrings(ctx, "cacheRepository.Keys", query, args...)
}

func (c *cacheRepository) queryStrings(ctx context.Context, fn, query string, args ...any) ([]string, error) {
	rows, err := c.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", fn).Msg("failed to execute query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	result := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return result, nil
}
