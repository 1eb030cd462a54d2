package repositories

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gatewarden/gatewarden/internal/core/domain/audit"
	"github.com/gatewarden/gatewarden/internal/core/ports"
	"github.com/gatewarden/gatewarden/internal/infrastructure/db"
)

type eventRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewEventRepository creates a new instance of EventRepository
func NewEventRepository(database *db.Database, logger *logrus.Logger) ports.EventRepository {
	return &eventRepository{
		db:     database,
		logger: logger,
	}
}

// Create inserts a new decision event into the database
func (r *eventRepository) Create(ctx context.Context, event *audit.DecisionEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	query := `
		INSERT INTO decision_events (
			id, ip_address, principal_id, endpoint, kind, detail, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)`

	_, err := r.db.DB.ExecContext(ctx, query,
		event.ID,
		event.IPAddress,
		event.PrincipalID,
		event.Endpoint,
		event.Kind,
		event.Detail,
		event.CreatedAt,
	)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"ip": event.IPAddress, "endpoint": event.Endpoint, "kind": event.Kind}).WithError(err).Error("db: failed to insert decision event")
		}
		return err
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"ip": event.IPAddress, "endpoint": event.Endpoint, "kind": event.Kind}).Debug("db: decision event inserted")
	}
	return nil
}

// List retrieves decision events based on the provided filter
func (r *eventRepository) List(ctx context.Context, filter *audit.EventFilter) ([]*audit.DecisionEvent, error) {
	query, args := r.buildListQuery(filter, false)
	var events []*audit.DecisionEvent
	if err := r.db.DB.SelectContext(ctx, &events, query, args...); err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"query": query}).WithError(err).Error("db: failed to execute event list query")
		}
		return nil, err
	}
	return events, nil
}

// Count returns the total number of decision events matching the filter
func (r *eventRepository) Count(ctx context.Context, filter *audit.EventFilter) (int, error) {
	query, args := r.buildListQuery(filter, true)

	var count int
	err := r.db.DB.GetContext(ctx, &count, query, args...)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"query": query}).WithError(err).Error("db: failed to execute event count query")
		}
		return 0, err
	}
	return count, nil
}

// buildListQuery constructs the SQL query and arguments for listing/counting events
func (r *eventRepository) buildListQuery(filter *audit.EventFilter, isCount bool) (string, []interface{}) {
	var selectClause string
	if isCount {
		selectClause = "SELECT COUNT(*)"
	} else {
		selectClause = `SELECT
			id, ip_address, principal_id, endpoint, kind, detail, created_at`
	}

	query := selectClause + " FROM decision_events"
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter != nil {
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

		if filter.Kind != nil {
			conditions = append(conditions, "kind = $"+strconv.Itoa(argIndex))
			args = append(args, string(*filter.Kind))
			argIndex++
		}

		if filter.Since != nil {
			conditions = append(conditions, "created_at >= $"+strconv.Itoa(argIndex))
			args = append(args, *filter.Since)
			argIndex++
		}

		if filter.Until != nil {
			conditions = append(conditions, "created_at <= $"+strconv.Itoa(argIndex))
			args = append(args, *filter.Until)
			argIndex++
		}
	}

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
