package repositories

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gatewarden/gatewarden/internal/core/domain/ratelimit"
	"github.com/gatewarden/gatewarden/internal/infrastructure/db"
)

// WindowRepository persists fixed counting windows in PostgreSQL. The
// check-and-increment path runs inside one transaction with the live
// row locked, so concurrent requests for the same key serialize on the
// row instead of double-creating or double-counting.
type WindowRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewWindowRepository(database *db.Database, logger *logrus.Logger) *WindowRepository {
	return &WindowRepository{
		db:     database,
		logger: logger,
	}
}

// CheckAndIncrement prunes expired windows for the key, bumps (or
// creates) the live window, and reports whether the key's summed count
// now exceeds the limit.
func (r *WindowRepository) CheckAndIncrement(ctx context.Context, key ratelimit.WindowKey, limit int, window time.Duration, now time.Time) (bool, int, error) {
	cutoff := now.Add(-window)

	tx, err := r.db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback()

	// FOR UPDATE takes no lock when the key has no live row yet, so two
	// concurrent first requests would both insert. Serialize the
	// get-or-create on a per-key advisory lock held until commit.
	_, err = tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`,
		key.String(),
	)
	if err != nil {
		return false, 0, err
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM rate_windows
		WHERE ip_address = $1
		  AND principal_id IS NOT DISTINCT FROM $2
		  AND endpoint = $3
		  AND window_start < $4`,
		key.IPAddress, key.PrincipalID, key.Endpoint, cutoff,
	)
	if err != nil {
		return false, 0, err
	}

	var id uuid.UUID
	err = tx.QueryRowxContext(ctx, `
		SELECT id FROM rate_windows
		WHERE ip_address = $1
		  AND principal_id IS NOT DISTINCT FROM $2
		  AND endpoint = $3
		  AND window_start >= $4
		ORDER BY window_start
		LIMIT 1
		FOR UPDATE`,
		key.IPAddress, key.PrincipalID, key.Endpoint, cutoff,
	).Scan(&id)

	switch err {
	case nil:
		_, err = tx.ExecContext(ctx, `
			UPDATE rate_windows
			SET request_count = request_count + 1, updated_at = $2
			WHERE id = $1`,
			id, now,
		)
		if err != nil {
			return false, 0, err
		}
	case sql.ErrNoRows:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO rate_windows (
				id, ip_address, principal_id, endpoint,
				request_count, window_start, created_at, updated_at
			) VALUES ($1, $2, $3, $4, 1, $5, $5, $5)`,
			uuid.New(), key.IPAddress, key.PrincipalID, key.Endpoint, now,
		)
		if err != nil {
			return false, 0, err
		}
	default:
		return false, 0, err
	}

	var total int
	err = tx.QueryRowxContext(ctx, `
		SELECT COALESCE(SUM(request_count), 0) FROM rate_windows
		WHERE ip_address = $1
		  AND principal_id IS NOT DISTINCT FROM $2
		  AND endpoint = $3
		  AND window_start >= $4`,
		key.IPAddress, key.PrincipalID, key.Endpoint, cutoff,
	).Scan(&total)
	if err != nil {
		return false, 0, err
	}

	if err := tx.Commit(); err != nil {
		return false, 0, err
	}

	return total > limit, total, nil
}

// CountRecentWindows counts windows the IP opened since the given time
// across all endpoints.
func (r *WindowRepository) CountRecentWindows(ctx context.Context, ip string, since time.Time) (int, error) {
	var count int
	err := r.db.DB.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM rate_windows
		WHERE ip_address = $1 AND window_start >= $2`,
		ip, since,
	)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Reset deletes all windows for the key.
func (r *WindowRepository) Reset(ctx context.Context, key ratelimit.WindowKey) (int64, error) {
	result, err := r.db.DB.ExecContext(ctx, `
		DELETE FROM rate_windows
		WHERE ip_address = $1
		  AND principal_id IS NOT DISTINCT FROM $2
		  AND endpoint = $3`,
		key.IPAddress, key.PrincipalID, key.Endpoint,
	)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"ip": key.IPAddress, "endpoint": key.Endpoint}).WithError(err).Error("db: failed to reset rate windows")
		}
		return 0, err
	}
	return result.RowsAffected()
}

// Purge deletes windows started before the cutoff.
func (r *WindowRepository) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM rate_windows WHERE window_start < $1`, olderThan)
	if err != nil {
		if r.logger != nil {
			r.logger.WithError(err).Error("db: failed to purge rate windows")
		}
		return 0, err
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if deleted > 0 && r.logger != nil {
		r.logger.WithFields(logrus.Fields{"deleted": deleted, "older_than": olderThan}).Info("db: purged stale rate windows")
	}
	return deleted, nil
}

// List retrieves windows matching the filter.
func (r *WindowRepository) List(ctx context.Context, filter *ratelimit.WindowFilter) ([]*ratelimit.RateWindow, error) {
	query, args := r.buildListQuery(filter, false)
	var windows []*ratelimit.RateWindow
	if err := r.db.DB.SelectContext(ctx, &windows, query, args...); err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"query": query}).WithError(err).Error("db: failed to execute window list query")
		}
		return nil, err
	}
	return windows, nil
}

// Count returns the total number of windows matching the filter.
func (r *WindowRepository) Count(ctx context.Context, filter *ratelimit.WindowFilter) (int, error) {
	query, args := r.buildListQuery(filter, true)
	var count int
	if err := r.db.DB.GetContext(ctx, &count, query, args...); err != nil {
		return 0, err
	}
	return count, nil
}

// Stats aggregates window state for the filter.
func (r *WindowRepository) Stats(ctx context.Context, filter *ratelimit.WindowFilter) (*ratelimit.WindowStats, error) {
	query := `
		SELECT
			COALESCE(SUM(request_count), 0) AS total_requests,
			COUNT(DISTINCT ip_address) AS unique_ips,
			COUNT(DISTINCT principal_id) AS unique_principals,
			COUNT(DISTINCT endpoint) AS unique_endpoints
		FROM rate_windows`

	conditions, args := windowFilterConditions(filter)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	stats := &ratelimit.WindowStats{}
	err := r.db.DB.QueryRowxContext(ctx, query, args...).Scan(
		&stats.TotalRequests,
		&stats.UniqueIPs,
		&stats.UniquePrincipals,
		&stats.UniqueEndpoints,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *WindowRepository) buildListQuery(filter *ratelimit.WindowFilter, isCount bool) (string, []interface{}) {
	var selectClause string
	if isCount {
		selectClause = "SELECT COUNT(*)"
	} else {
		selectClause = `SELECT
			id, ip_address, principal_id, endpoint,
			request_count, window_start, created_at, updated_at`
	}

	query := selectClause + " FROM rate_windows"
	conditions, args := windowFilterConditions(filter)
	argIndex := len(args) + 1

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	if !isCount {
		query += " ORDER BY window_start DESC"

		if filter != nil {
			if filter.Limit > 0 {
				query += " LIMIT $" + strconv.Itoa(argIndex)
				args = append(args, filter.Limit)
				argIndex++
			}

			if filter.Offset > 0 {
				query += " OFFSET $" + strconv.Itoa(argIndex)
				args = append(args, filter.Offset)
				argIndex++
			}
		}
	}

	return query, args
}

func windowFilterConditions(filter *ratelimit.WindowFilter) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter == nil {
		return conditions, args
	}

	if filter.IPAddress != nil {
		conditions = append(conditions, "ip_address = $"+strconv.Itoa(argIndex))
		args = append(args, *filter.IPAddress)
		argIndex++
	}

	if filter.PrincipalID != nil {
		conditions = append(conditions, "principal_id = $"+strconv.Itoa(argIndex))
		args = append(args, *filter.PrincipalID)
		argIndex++
	}

	if filter.Endpoint != nil {
		conditions = append(conditions, "endpoint = $"+strconv.Itoa(argIndex))
		args = append(args, *filter.Endpoint)
		argIndex++
	}

	if filter.Since != nil {
		conditions = append(conditions, "window_start >= $"+strconv.Itoa(argIndex))
		args = append(args, *filter.Since)
		argIndex++
	}

	return conditions, args
}
