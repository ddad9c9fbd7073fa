package store

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-fit-offline/models"
)

// qb builds SQLite statements with "?" placeholders.
var qb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

const (
	tableCacheNames      = "cache_names"
	tableCacheEntries    = "cache_entries"
	tableMutationQueue   = "mutation_queue"
	tableQueueMeta       = "queue_meta"
	tableFailedMutations = "failed_mutations"
	tableSession         = "session"
	tablePushPermission  = "push_permission"
	tablePushSub         = "push_subscription"

	// singletonID is the primary key of single-row tables.
	singletonID = 1
)

var (
	cacheEntryColumns = []string{"url", "status", "header", "body", "stored_at"}
	mutationColumns   = []string{"seq", "id", "endpoint", "method", "body", "headers", "created_at", "retries"}
	failedColumns     = []string{"id", "endpoint", "method", "body", "headers", "created_at", "retries", "last_error", "dropped_at"}
	pushSubColumns    = []string{"endpoint", "p256dh", "auth", "private_key", "auth_secret", "application_server_key", "created_at", "persisted"}
)

// ── cache ───────────────────────────────────────────────────────────────────

func buildEnsureCacheQuery(name string, now time.Time) (string, []any, error) {
	return qb.Insert(tableCacheNames).
		Options("OR IGNORE").
		Columns("name", "created_at").
		Values(name, now.UnixNano()).
		ToSql()
}

func buildCacheNamesQuery() (string, []any, error) {
	return qb.Select("name").
		From(tableCacheNames).
		OrderBy("created_at", "name").
		ToSql()
}

func buildDeleteCacheEntriesQuery(name string) (string, []any, error) {
	return qb.Delete(tableCacheEntries).Where(sq.Eq{"cache_name": name}).ToSql()
}

func buildDeleteCacheNameQuery(name string) (string, []any, error) {
	return qb.Delete(tableCacheNames).Where(sq.Eq{"name": name}).ToSql()
}

func buildMatchQuery(name, url string) (string, []any, error) {
	return qb.Select(cacheEntryColumns...).
		From(tableCacheEntries).
		Where(sq.Eq{"cache_name": name, "url": url}).
		ToSql()
}

func buildPutCacheEntryQuery(name string, resp models.CachedResponse) (string, []any, error) {
	header, err := encodeJSONColumn(resp.Header)
	if err != nil {
		return "", nil, err
	}
	return qb.Insert(tableCacheEntries).
		Options("OR REPLACE").
		Columns(append([]string{"cache_name"}, cacheEntryColumns...)...).
		Values(name, resp.URL, resp.Status, header, resp.Body, resp.StoredAt.UnixNano()).
		ToSql()
}

func buildCacheKeysQuery(name string) (string, []any, error) {
	return qb.Select("url").
		From(tableCacheEntries).
		Where(sq.Eq{"cache_name": name}).
		OrderBy("stored_at", "url").
		ToSql()
}

// ── mutation queue ──────────────────────────────────────────────────────────

func buildQueueVersionQuery() (string, []any, error) {
	return qb.Select("version").From(tableQueueMeta).Where(sq.Eq{"id": singletonID}).ToSql()
}

// buildBumpQueueVersionQuery advances the version stamp only if it still
// equals expected. Zero affected rows means a concurrent writer won.
func buildBumpQueueVersionQuery(expected int64) (string, []any, error) {
	return qb.Update(tableQueueMeta).
		Set("version", expected+1).
		Where(sq.Eq{"id": singletonID, "version": expected}).
		ToSql()
}

func buildSelectMutationsQuery() (string, []any, error) {
	return qb.Select(mutationColumns...).
		From(tableMutationQueue).
		OrderBy("created_at ASC", "seq ASC").
		ToSql()
}

func buildCountMutationsQuery() (string, []any, error) {
	return qb.Select("COUNT(*)").From(tableMutationQueue).ToSql()
}

func buildInsertMutationQuery(m models.QueuedMutation) (string, []any, error) {
	headers, err := encodeJSONColumn(m.Headers)
	if err != nil {
		return "", nil, err
	}
	return qb.Insert(tableMutationQueue).
		Columns("id", "endpoint", "method", "body", "headers", "created_at", "retries").
		Values(m.ID, m.Endpoint, m.Method, m.Body, headers, m.CreatedAt.UnixNano(), m.Retries).
		ToSql()
}

func buildDeleteMutationsQuery(ids []string) (string, []any, error) {
	return qb.Delete(tableMutationQueue).Where(sq.Eq{"id": ids}).ToSql()
}

func buildUpdateRetriesQuery(id string, retries int) (string, []any, error) {
	return qb.Update(tableMutationQueue).
		Set("retries", retries).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func buildInsertFailedQuery(f models.FailedMutation) (string, []any, error) {
	headers, err := encodeJSONColumn(f.Headers)
	if err != nil {
		return "", nil, err
	}
	return qb.Insert(tableFailedMutations).
		Options("OR REPLACE").
		Columns(failedColumns...).
		Values(f.ID, f.Endpoint, f.Method, f.Body, headers, f.CreatedAt.UnixNano(), f.Retries, f.LastError, f.DroppedAt.UnixNano()).
		ToSql()
}

func buildSelectFailedQuery(limit uint64) (string, []any, error) {
	query := qb.Select(failedColumns...).
		From(tableFailedMutations).
		OrderBy("dropped_at DESC", "id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	return query.ToSql()
}

// ── session & push ──────────────────────────────────────────────────────────

func buildSaveSessionQuery(s models.Session) (string, []any, error) {
	var expiresAt any
	if s.ExpiresAt != nil {
		expiresAt = s.ExpiresAt.UnixNano()
	}
	return qb.Insert(tableSession).
		Options("OR REPLACE").
		Columns("id", "token", "expires_at", "updated_at").
		Values(singletonID, s.Token, expiresAt, s.UpdatedAt.UnixNano()).
		ToSql()
}

func buildGetSessionQuery() (string, []any, error) {
	return qb.Select("token", "expires_at", "updated_at").From(tableSession).Where(sq.Eq{"id": singletonID}).ToSql()
}

func buildClearSessionQuery() (string, []any, error) {
	return qb.Delete(tableSession).Where(sq.Eq{"id": singletonID}).ToSql()
}

func buildSetPermissionQuery(p models.PushPermission) (string, []any, error) {
	return qb.Insert(tablePushPermission).
		Options("OR REPLACE").
		Columns("id", "state").
		Values(singletonID, string(p)).
		ToSql()
}

func buildGetPermissionQuery() (string, []any, error) {
	return qb.Select("state").From(tablePushPermission).Where(sq.Eq{"id": singletonID}).ToSql()
}

func buildSaveSubscriptionQuery(s models.LocalPushSubscription) (string, []any, error) {
	return qb.Insert(tablePushSub).
		Options("OR REPLACE").
		Columns(append([]string{"id"}, pushSubColumns...)...).
		Values(singletonID, s.Endpoint, s.Keys.P256dh, s.Keys.Auth, s.PrivateKey, s.AuthSecret, s.ApplicationServerKey, s.CreatedAt.UnixNano(), s.Persisted).
		ToSql()
}

func buildGetSubscriptionQuery() (string, []any, error) {
	return qb.Select(pushSubColumns...).From(tablePushSub).Where(sq.Eq{"id": singletonID}).ToSql()
}

func buildDeleteSubscriptionQuery() (string, []any, error) {
	return qb.Delete(tablePushSub).Where(sq.Eq{"id": singletonID}).ToSql()
}

// ── helpers ─────────────────────────────────────────────────────────────────

func encodeJSONColumn(v any) (string, error) {
	switch val := v.(type) {
	case http.Header:
		if val == nil {
			return "{}", nil
		}
	case map[string]string:
		if val == nil {
			return "{}", nil
		}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return string(raw), nil
}

func decodeJSONColumn(raw string, dst any) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("%w: %w", ErrDecodingColumn, err)
	}
	return nil
}

func fromUnixNano(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}
