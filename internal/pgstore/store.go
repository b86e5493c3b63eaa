// Package pgstore reads the mirrored Trello board directly from the Supabase Postgres database.
package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"notary-dash/internal/board"
	"notary-dash/internal/eventlog"
)

const (
	eventsQuery = `SELECT id, card_id, action_type, occurred_at, from_list_id, from_list_name, to_list_id, to_list_name
		FROM trello_events
		WHERE occurred_at <= $1 AND card_id IS NOT NULL
		ORDER BY occurred_at ASC, id ASC
		OFFSET $2 LIMIT $3`

	listsQuery = `SELECT id, name, pos, closed, trello_id FROM trello_lists ORDER BY pos ASC`

	currentQuery = `SELECT dashboard_current()`
)

// Open connects to Postgres through the pgx driver.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Store implements the event, list, detail and current-state sources over SQL.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// FetchEventPage implements eventlog.Source.
func (s *Store) FetchEventPage(ctx context.Context, to time.Time, offset, limit int) ([]eventlog.CardEvent, error) {
	rows, err := s.db.QueryContext(ctx, eventsQuery, to.UTC(), offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []eventlog.CardEvent
	for rows.Next() {
		var (
			e                                                  eventlog.CardEvent
			cardID, fromListID, fromListName, toListID, toName sql.NullString
		)
		if err := rows.Scan(&e.ID, &cardID, &e.ActionType, &e.OccurredAt, &fromListID, &fromListName, &toListID, &toName); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.CardID = cardID.String
		e.FromListID = fromListID.String
		e.FromListName = fromListName.String
		e.ToListID = toListID.String
		e.ToListName = toName.String
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return events, nil
}

// FetchLists implements board.ListSource.
func (s *Store) FetchLists(ctx context.Context) ([]board.ListMeta, error) {
	rows, err := s.db.QueryContext(ctx, listsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query lists: %w", err)
	}
	defer rows.Close()

	var lists []board.ListMeta
	for rows.Next() {
		var (
			l      board.ListMeta
			pos    sql.NullFloat64
			closed sql.NullBool
			alias  sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.Name, &pos, &closed, &alias); err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		l.Position = pos.Float64
		l.Closed = closed.Bool
		l.ExternalAlias = alias.String
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lists: %w", err)
	}
	return lists, nil
}

// detailsQuery builds the lookup for a column set and id count.
func detailsQuery(cols board.ColumnSet, n int) string {
	placeholders := make([]string, n)
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("SELECT %s FROM cards WHERE id IN (%s)",
		strings.Join(cols.Columns(), ", "), strings.Join(placeholders, ", "))
}

// FetchDetails implements board.DetailSource.
func (s *Store) FetchDetails(ctx context.Context, ids []string, cols board.ColumnSet) ([]board.CardDetail, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, detailsQuery(cols, len(ids)), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query card details (%s): %w", cols, err)
	}
	defer rows.Close()

	var details []board.CardDetail
	for rows.Next() {
		var (
			d                               board.CardDetail
			actType, assignee, currentList  sql.NullString
			value                           sql.NullFloat64
			closed                          sql.NullBool
			createdListID, createdListAlias sql.NullString
		)
		dest := []any{&d.ID, &actType, &value, &assignee, &currentList, &closed}
		if cols == board.ColumnsRich {
			dest = append(dest, &createdListID, &createdListAlias)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan card detail: %w", err)
		}
		d.ActType = actType.String
		d.AssigneeName = assignee.String
		d.CurrentListID = currentList.String
		if value.Valid {
			v := value.Float64
			d.ActValue = &v
		}
		if closed.Valid {
			c := closed.Bool
			d.IsClosed = &c
		}
		d.CreatedListID = createdListID.String
		d.CreatedListAlias = createdListAlias.String
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read card details: %w", err)
	}
	return details, nil
}

// FetchCurrent implements board.CurrentSource.
func (s *Store) FetchCurrent(ctx context.Context) (json.RawMessage, error) {
	var raw []byte
	if err := s.db.QueryRowContext(ctx, currentQuery).Scan(&raw); err != nil {
		return nil, fmt.Errorf("failed to load current views: %w", err)
	}
	return json.RawMessage(raw), nil
}
