package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gatewarden/gatewarden/internal/core/domain/access"
	"github.com/gatewarden/gatewarden/internal/infrastructure/db"
)

// ListRepository persists blacklist and whitelist entries in
// PostgreSQL. Expiry is lazy: every lookup first flips any lapsed
// active rows inactive, so no sweeper process is needed. Uniqueness on
// (ip, principal, target_type) is enforced with a row lock inside the
// upsert transaction because the key's nullable columns rule out a
// plain unique constraint.
type ListRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewListRepository(database *db.Database, logger *logrus.Logger) *ListRepository {
	return &ListRepository{
		db:     database,
		logger: logger,
	}
}

const blacklistColumns = `
	id, ip_address, principal_id, target_type, reason, description,
	is_permanent, expires_at, violation_count, last_violation,
	created_by, is_active, created_at, updated_at`

const whitelistColumns = `
	id, ip_address, principal_id, target_type, reason, description,
	is_permanent, expires_at, bypass_rate_limits, custom_rate_multiplier,
	usage_count, last_used, created_by, is_active, created_at, updated_at`

// expireStale deactivates lapsed temporary entries in the given table.
func (r *ListRepository) expireStale(ctx context.Context, table string, now time.Time) error {
	result, err := r.db.DB.ExecContext(ctx, `
		UPDATE `+table+`
		SET is_active = false, updated_at = $1
		WHERE is_active = true
		  AND is_permanent = false
		  AND expires_at IS NOT NULL
		  AND expires_at < $1`,
		now,
	)
	if err != nil {
		return err
	}
	if expired, _ := result.RowsAffected(); expired > 0 && r.logger != nil {
		r.logger.WithFields(logrus.Fields{"table": table, "expired": expired}).Info("db: deactivated expired list entries")
	}
	return nil
}

// FindBlacklist returns the active entry matching the identity, IP
// matches before principal matches, or nil when none matches.
func (r *ListRepository) FindBlacklist(ctx context.Context, ip string, principal *uuid.UUID, now time.Time) (*access.BlacklistEntry, error) {
	if err := r.expireStale(ctx, "blacklist_entries", now); err != nil {
		return nil, err
	}

	if ip != "" {
		entry := &access.BlacklistEntry{}
		err := r.db.DB.GetContext(ctx, entry, `
			SELECT `+blacklistColumns+`
			FROM blacklist_entries
			WHERE is_active = true
			  AND ip_address = $1
			  AND target_type IN ('ip', 'both')
			  AND (is_permanent = true OR expires_at IS NULL OR expires_at >= $2)
			ORDER BY created_at
			LIMIT 1`,
			ip, now,
		)
		if err == nil {
			return entry, nil
		}
		if err != sql.ErrNoRows {
			return nil, err
		}
	}

	if principal != nil {
		entry := &access.BlacklistEntry{}
		err := r.db.DB.GetContext(ctx, entry, `
			SELECT `+blacklistColumns+`
			FROM blacklist_entries
			WHERE is_active = true
			  AND principal_id = $1
			  AND target_type IN ('user', 'both')
			  AND (is_permanent = true OR expires_at IS NULL OR expires_at >= $2)
			ORDER BY created_at
			LIMIT 1`,
			principal, now,
		)
		if err == nil {
			return entry, nil
		}
		if err != sql.ErrNoRows {
			return nil, err
		}
	}

	return nil, nil
}

// FindWhitelist returns the active entry matching the identity and, on
// a hit, records the usage as part of the lookup.
func (r *ListRepository) FindWhitelist(ctx context.Context, ip string, principal *uuid.UUID, now time.Time) (*access.WhitelistEntry, error) {
	if err := r.expireStale(ctx, "whitelist_entries", now); err != nil {
		return nil, err
	}

	entry, err := r.findWhitelistEntry(ctx, ip, principal, now)
	if err != nil || entry == nil {
		return entry, err
	}

	_, err = r.db.DB.ExecContext(ctx, `
		UPDATE whitelist_entries
		SET usage_count = usage_count + 1, last_used = $2, updated_at = $2
		WHERE id = $1`,
		entry.ID, now,
	)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"id": entry.ID}).WithError(err).Warn("db: failed to record whitelist usage")
		}
		return nil, err
	}
	entry.UsageCount++
	used := now
	entry.LastUsed = &used
	return entry, nil
}

func (r *ListRepository) findWhitelistEntry(ctx context.Context, ip string, principal *uuid.UUID, now time.Time) (*access.WhitelistEntry, error) {
	if ip != "" {
		entry := &access.WhitelistEntry{}
		err := r.db.DB.GetContext(ctx, entry, `
			SELECT `+whitelistColumns+`
			FROM whitelist_entries
			WHERE is_active = true
			  AND ip_address = $1
			  AND target_type IN ('ip', 'both')
			  AND (is_permanent = true OR expires_at IS NULL OR expires_at >= $2)
			ORDER BY created_at
			LIMIT 1`,
			ip, now,
		)
		if err == nil {
			return entry, nil
		}
		if err != sql.ErrNoRows {
			return nil, err
		}
	}

	if principal != nil {
		entry := &access.WhitelistEntry{}
		err := r.db.DB.GetContext(ctx, entry, `
			SELECT `+whitelistColumns+`
			FROM whitelist_entries
			WHERE is_active = true
			  AND principal_id = $1
			  AND target_type IN ('user', 'both')
			  AND (is_permanent = true OR expires_at IS NULL OR expires_at >= $2)
			ORDER BY created_at
			LIMIT 1`,
			principal, now,
		)
		if err == nil {
			return entry, nil
		}
		if err != sql.ErrNoRows {
			return nil, err
		}
	}

	return nil, nil
}

// UpsertBlacklist creates the entry or, when one exists for the same
// (ip, principal, target_type), bumps its violation count, refreshes
// the expiry and reactivates it.
func (r *ListRepository) UpsertBlacklist(ctx context.Context, req *access.UpsertBlacklistRequest, now time.Time) (*access.BlacklistEntry, error) {
	ipPtr := nilIfEmpty(req.IPAddress)
	targetType := access.TargetTypeFor(req.IPAddress, req.PrincipalID)
	isPermanent := req.Duration == nil
	var expiresAt *time.Time
	if req.Duration != nil {
		t := now.Add(*req.Duration)
		expiresAt = &t
	}
	descPtr := nilIfEmpty(req.Description)

	tx, err := r.db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var id uuid.UUID
	err = tx.QueryRowxContext(ctx, `
		SELECT id FROM blacklist_entries
		WHERE ip_address IS NOT DISTINCT FROM $1
		  AND principal_id IS NOT DISTINCT FROM $2
		  AND target_type = $3
		FOR UPDATE`,
		ipPtr, req.PrincipalID, targetType,
	).Scan(&id)

	entry := &access.BlacklistEntry{}
	switch err {
	case nil:
		err = tx.QueryRowxContext(ctx, `
			UPDATE blacklist_entries
			SET reason = $2,
			    description = COALESCE($3, description),
			    is_permanent = $4,
			    expires_at = $5,
			    violation_count = violation_count + 1,
			    last_violation = $6,
			    created_by = $7,
			    is_active = true,
			    updated_at = $6
			WHERE id = $1
			RETURNING `+blacklistColumns,
			id, req.Reason, descPtr, isPermanent, expiresAt, now, req.CreatedBy,
		).StructScan(entry)
	case sql.ErrNoRows:
		err = tx.QueryRowxContext(ctx, `
			INSERT INTO blacklist_entries (
				id, ip_address, principal_id, target_type, reason, description,
				is_permanent, expires_at, violation_count, last_violation,
				created_by, is_active, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, $9, $10, true, $9, $9)
			RETURNING `+blacklistColumns,
			uuid.New(), ipPtr, req.PrincipalID, targetType, req.Reason, descPtr,
			isPermanent, expiresAt, now, req.CreatedBy,
		).StructScan(entry)
	default:
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return entry, nil
}

// UpsertWhitelist creates the entry or updates its bypass flag,
// multiplier and expiry, reactivating the row.
func (r *ListRepository) UpsertWhitelist(ctx context.Context, req *access.UpsertWhitelistRequest, now time.Time) (*access.WhitelistEntry, error) {
	ipPtr := nilIfEmpty(req.IPAddress)
	targetType := access.TargetTypeFor(req.IPAddress, req.PrincipalID)
	isPermanent := req.Duration == nil
	var expiresAt *time.Time
	if req.Duration != nil {
		t := now.Add(*req.Duration)
		expiresAt = &t
	}
	descPtr := nilIfEmpty(req.Description)

	tx, err := r.db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var id uuid.UUID
	err = tx.QueryRowxContext(ctx, `
		SELECT id FROM whitelist_entries
		WHERE ip_address IS NOT DISTINCT FROM $1
		  AND principal_id IS NOT DISTINCT FROM $2
		  AND target_type = $3
		FOR UPDATE`,
		ipPtr, req.PrincipalID, targetType,
	).Scan(&id)

	entry := &access.WhitelistEntry{}
	switch err {
	case nil:
		err = tx.QueryRowxContext(ctx, `
			UPDATE whitelist_entries
			SET reason = $2,
			    description = COALESCE($3, description),
			    is_permanent = $4,
			    expires_at = $5,
			    bypass_rate_limits = $6,
			    custom_rate_multiplier = $7,
			    created_by = $8,
			    is_active = true,
			    updated_at = $9
			WHERE id = $1
			RETURNING `+whitelistColumns,
			id, req.Reason, descPtr, isPermanent, expiresAt, req.Bypass(), req.Multiplier(), req.CreatedBy, now,
		).StructScan(entry)
	case sql.ErrNoRows:
		err = tx.QueryRowxContext(ctx, `
			INSERT INTO whitelist_entries (
				id, ip_address, principal_id, target_type, reason, description,
				is_permanent, expires_at, bypass_rate_limits, custom_rate_multiplier,
				usage_count, created_by, is_active, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, $11, true, $12, $12)
			RETURNING `+whitelistColumns,
			uuid.New(), ipPtr, req.PrincipalID, targetType, req.Reason, descPtr,
			isPermanent, expiresAt, req.Bypass(), req.Multiplier(), req.CreatedBy, now,
		).StructScan(entry)
	default:
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return entry, nil
}

// Deactivate marks entries inactive on both lists. Provided fields
// narrow the match: with both ip and principal given only entries
// carrying both are touched, not every entry matching either.
func (r *ListRepository) Deactivate(ctx context.Context, ip string, principal *uuid.UUID) (int64, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if ip != "" {
		conditions = append(conditions, "ip_address = $"+strconv.Itoa(argIndex))
		args = append(args, ip)
		argIndex++
	}
	if principal != nil {
		conditions = append(conditions, "principal_id = $"+strconv.Itoa(argIndex))
		args = append(args, *principal)
		argIndex++
	}

	if len(conditions) == 0 {
		return 0, fmt.Errorf("%w: either ip or principal is required", access.ErrValidation)
	}
	where := " WHERE is_active = true AND " + strings.Join(conditions, " AND ")

	var total int64
	for _, table := range []string{"blacklist_entries", "whitelist_entries"} {
		result, err := r.db.DB.ExecContext(ctx, "UPDATE "+table+" SET is_active = false, updated_at = NOW()"+where, args...)
		if err != nil {
			return total, err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return total, err
		}
		total += affected
	}
	return total, nil
}

// ListBlacklist retrieves blacklist entries matching the filter.
func (r *ListRepository) ListBlacklist(ctx context.Context, filter *access.BlacklistFilter) ([]*access.BlacklistEntry, error) {
	query, args := r.buildBlacklistQuery(filter, false)
	var entries []*access.BlacklistEntry
	if err := r.db.DB.SelectContext(ctx, &entries, query, args...); err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"query": query}).WithError(err).Error("db: failed to execute blacklist list query")
		}
		return nil, err
	}
	return entries, nil
}

// CountBlacklist returns the number of blacklist entries matching the filter.
func (r *ListRepository) CountBlacklist(ctx context.Context, filter *access.BlacklistFilter) (int, error) {
	query, args := r.buildBlacklistQuery(filter, true)
	var count int
	if err := r.db.DB.GetContext(ctx, &count, query, args...); err != nil {
		return 0, err
	}
	return count, nil
}

// BlacklistStats aggregates blacklist state for the filter.
func (r *ListRepository) BlacklistStats(ctx context.Context, filter *access.BlacklistFilter, now time.Time) (*access.BlacklistStats, error) {
	conditions, args := blacklistConditions(filter, 2)
	args = append([]interface{}{now}, args...)

	query := `
		SELECT
			COUNT(*) AS total_entries,
			COUNT(*) FILTER (WHERE is_active) AS active_entries,
			COUNT(*) FILTER (WHERE is_permanent) AS permanent_entries,
			COUNT(*) FILTER (WHERE NOT is_permanent) AS temporary_entries,
			COUNT(*) FILTER (WHERE is_active AND NOT is_permanent AND expires_at < $1) AS expired_active,
			COUNT(DISTINCT ip_address) AS unique_ips,
			COUNT(DISTINCT principal_id) AS unique_principals
		FROM blacklist_entries`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	stats := &access.BlacklistStats{
		ByType:   make(map[access.TargetType]int),
		ByReason: make(map[access.BlacklistReason]int),
	}
	err := r.db.DB.QueryRowxContext(ctx, query, args...).Scan(
		&stats.TotalEntries,
		&stats.ActiveEntries,
		&stats.PermanentEntries,
		&stats.TemporaryEntries,
		&stats.ExpiredActive,
		&stats.UniqueIPs,
		&stats.UniquePrincipals,
	)
	if err != nil {
		return nil, err
	}

	groupConditions, groupArgs := blacklistConditions(filter, 1)
	groupWhere := ""
	if len(groupConditions) > 0 {
		groupWhere = " WHERE " + strings.Join(groupConditions, " AND ")
	}

	if err := r.groupCounts(ctx, "blacklist_entries", "target_type", groupWhere, groupArgs, func(value string, count int) {
		stats.ByType[access.TargetType(value)] = count
	}); err != nil {
		return nil, err
	}
	if err := r.groupCounts(ctx, "blacklist_entries", "reason", groupWhere, groupArgs, func(value string, count int) {
		stats.ByReason[access.BlacklistReason(value)] = count
	}); err != nil {
		return nil, err
	}

	return stats, nil
}

// ListWhitelist retrieves whitelist entries matching the filter.
func (r *ListRepository) ListWhitelist(ctx context.Context, filter *access.WhitelistFilter) ([]*access.WhitelistEntry, error) {
	query, args := r.buildWhitelistQuery(filter, false)
	var entries []*access.WhitelistEntry
	if err := r.db.DB.SelectContext(ctx, &entries, query, args...); err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"query": query}).WithError(err).Error("db: failed to execute whitelist list query")
		}
		return nil, err
	}
	return entries, nil
}

// CountWhitelist returns the number of whitelist entries matching the filter.
func (r *ListRepository) CountWhitelist(ctx context.Context, filter *access.WhitelistFilter) (int, error) {
	query, args := r.buildWhitelistQuery(filter, true)
	var count int
	if err := r.db.DB.GetContext(ctx, &count, query, args...); err != nil {
		return 0, err
	}
	return count, nil
}

// WhitelistStats aggregates whitelist state for the filter.
func (r *ListRepository) WhitelistStats(ctx context.Context, filter *access.WhitelistFilter, now time.Time) (*access.WhitelistStats, error) {
	conditions, args := whitelistConditions(filter, 2)
	args = append([]interface{}{now}, args...)

	query := `
		SELECT
			COUNT(*) AS total_entries,
			COUNT(*) FILTER (WHERE is_active) AS active_entries,
			COUNT(*) FILTER (WHERE is_permanent) AS permanent_entries,
			COUNT(*) FILTER (WHERE NOT is_permanent) AS temporary_entries,
			COUNT(*) FILTER (WHERE is_active AND NOT is_permanent AND expires_at < $1) AS expired_active,
			COUNT(*) FILTER (WHERE bypass_rate_limits) AS bypass_enabled,
			COUNT(*) FILTER (WHERE NOT bypass_rate_limits) AS bypass_disabled,
			COUNT(DISTINCT ip_address) AS unique_ips,
			COUNT(DISTINCT principal_id) AS unique_principals,
			COALESCE(SUM(usage_count), 0) AS total_usage
		FROM whitelist_entries`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	stats := &access.WhitelistStats{
		ByType:   make(map[access.TargetType]int),
		ByReason: make(map[access.WhitelistReason]int),
	}
	err := r.db.DB.QueryRowxContext(ctx, query, args...).Scan(
		&stats.TotalEntries,
		&stats.ActiveEntries,
		&stats.PermanentEntries,
		&stats.TemporaryEntries,
		&stats.ExpiredActive,
		&stats.BypassEnabled,
		&stats.BypassDisabled,
		&stats.UniqueIPs,
		&stats.UniquePrincipals,
		&stats.TotalUsage,
	)
	if err != nil {
		return nil, err
	}

	groupConditions, groupArgs := whitelistConditions(filter, 1)
	groupWhere := ""
	if len(groupConditions) > 0 {
		groupWhere = " WHERE " + strings.Join(groupConditions, " AND ")
	}

	if err := r.groupCounts(ctx, "whitelist_entries", "target_type", groupWhere, groupArgs, func(value string, count int) {
		stats.ByType[access.TargetType(value)] = count
	}); err != nil {
		return nil, err
	}
	if err := r.groupCounts(ctx, "whitelist_entries", "reason", groupWhere, groupArgs, func(value string, count int) {
		stats.ByReason[access.WhitelistReason(value)] = count
	}); err != nil {
		return nil, err
	}

	return stats, nil
}

// groupCounts runs a GROUP BY count over one column and feeds each
// (value, count) pair to collect.
func (r *ListRepository) groupCounts(ctx context.Context, table, column, where string, args []interface{}, collect func(value string, count int)) error {
	rows, err := r.db.DB.QueryContext(ctx, "SELECT "+column+", COUNT(*) FROM "+table+where+" GROUP BY "+column, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var value string
		var count int
		if err := rows.Scan(&value, &count); err != nil {
			return err
		}
		collect(value, count)
	}
	return rows.Err()
}

func (r *ListRepository) buildBlacklistQuery(filter *access.BlacklistFilter, isCount bool) (string, []interface{}) {
	var selectClause string
	if isCount {
		selectClause = "SELECT COUNT(*)"
	} else {
		selectClause = "SELECT " + blacklistColumns
	}

	query := selectClause + " FROM blacklist_entries"
	conditions, args := blacklistConditions(filter, 1)
	argIndex := len(args) + 1

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	if !isCount {
		query += " ORDER BY created_at DESC"

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

func (r *ListRepository) buildWhitelistQuery(filter *access.WhitelistFilter, isCount bool) (string, []interface{}) {
	var selectClause string
	if isCount {
		selectClause = "SELECT COUNT(*)"
	} else {
		selectClause = "SELECT " + whitelistColumns
	}

	query := selectClause + " FROM whitelist_entries"
	conditions, args := whitelistConditions(filter, 1)
	argIndex := len(args) + 1

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	if !isCount {
		query += " ORDER BY created_at DESC"

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

func blacklistConditions(filter *access.BlacklistFilter, startIndex int) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}
	argIndex := startIndex

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

	if filter.TargetType != nil {
		conditions = append(conditions, "target_type = $"+strconv.Itoa(argIndex))
		args = append(args, string(*filter.TargetType))
		argIndex++
	}

	if filter.Reason != nil {
		conditions = append(conditions, "reason = $"+strconv.Itoa(argIndex))
		args = append(args, string(*filter.Reason))
		argIndex++
	}

	if filter.IsActive != nil {
		conditions = append(conditions, "is_active = $"+strconv.Itoa(argIndex))
		args = append(args, *filter.IsActive)
		argIndex++
	}

	if filter.IsPermanent != nil {
		conditions = append(conditions, "is_permanent = $"+strconv.Itoa(argIndex))
		args = append(args, *filter.IsPermanent)
		argIndex++
	}

	if filter.CreatedBy != nil {
		conditions = append(conditions, "created_by = $"+strconv.Itoa(argIndex))
		args = append(args, *filter.CreatedBy)
		argIndex++
	}

	return conditions, args
}

func whitelistConditions(filter *access.WhitelistFilter, startIndex int) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}
	argIndex := startIndex

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

	if filter.TargetType != nil {
		conditions = append(conditions, "target_type = $"+strconv.Itoa(argIndex))
		args = append(args, string(*filter.TargetType))
		argIndex++
	}

	if filter.Reason != nil {
		conditions = append(conditions, "reason = $"+strconv.Itoa(argIndex))
		args = append(args, string(*filter.Reason))
		argIndex++
	}

	if filter.IsActive != nil {
		conditions = append(conditions, "is_active = $"+strconv.Itoa(argIndex))
		args = append(args, *filter.IsActive)
		argIndex++
	}

	if filter.IsPermanent != nil {
		conditions = append(conditions, "is_permanent = $"+strconv.Itoa(argIndex))
		args = append(args, *filter.IsPermanent)
		argIndex++
	}

	if filter.BypassRateLimits != nil {
		conditions = append(conditions, "bypass_rate_limits = $"+strconv.Itoa(argIndex))
		args = append(args, *filter.BypassRateLimits)
		argIndex++
	}

	if filter.CreatedBy != nil {
		conditions = append(conditions, "created_by = $"+strconv.Itoa(argIndex))
		args = append(args, *filter.CreatedBy)
		argIndex++
	}

	return conditions, args
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
