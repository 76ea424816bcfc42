package trace

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Exchange is one recorded command and its outcome. DoneAt is zero when no
// outcome was ever recorded, which usually means the process died while the
// reply was pending.
type Exchange struct {
	Session string    `json:"session"`
	ReqID   uint64    `json:"req_id"`
	Method  string    `json:"method"`
	Params  string    `json:"params,omitempty"`
	Result  string    `json:"result,omitempty"`
	Fault   string    `json:"fault,omitempty"`
	SentAt  time.Time `json:"sent_at"`
	DoneAt  time.Time `json:"done_at,omitempty"`
}

// SessionSummary aggregates one connection's recorded exchanges.
type SessionSummary struct {
	Session   string    `json:"session"`
	Exchanges int       `json:"exchanges"`
	Faults    int       `json:"faults"`
	StartedAt time.Time `json:"started_at"`
	LastAt    time.Time `json:"last_at"`
}

// Sessions lists recorded sessions, most recent first.
func (l *Log) Sessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT session,
		       COUNT(*),
		       SUM(CASE WHEN fault IS NOT NULL AND fault != '' THEN 1 ELSE 0 END),
		       MIN(sent_at),
		       MAX(sent_at)
		FROM exchanges
		GROUP BY session
		ORDER BY MIN(sent_at) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var summaries []SessionSummary
	for rows.Next() {
		var s SessionSummary
		var started, last string
		if err := rows.Scan(&s.Session, &s.Exchanges, &s.Faults, &started, &last); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if s.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if s.LastAt, err = parseTime(last); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return summaries, nil
}

// Exchanges returns every recorded exchange for a session in send order.
func (l *Log) Exchanges(ctx context.Context, session string) ([]Exchange, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT session, req_id, method, params, result, fault, sent_at, done_at
		FROM exchanges
		WHERE session = ?
		ORDER BY req_id
	`, session)
	if err != nil {
		return nil, fmt.Errorf("list exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []Exchange
	for rows.Next() {
		var e Exchange
		var reqID int64
		var params, result, fault, doneAt sql.NullString
		var sentAt string
		if err := rows.Scan(&e.Session, &reqID, &e.Method, &params, &result, &fault, &sentAt, &doneAt); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		e.ReqID = uint64(reqID)
		e.Params = params.String
		e.Result = result.String
		e.Fault = fault.String
		if e.SentAt, err = parseTime(sentAt); err != nil {
			return nil, err
		}
		if doneAt.Valid {
			if e.DoneAt, err = parseTime(doneAt.String); err != nil {
				return nil, err
			}
		}
		exchanges = append(exchanges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list exchanges: %w", err)
	}
	return exchanges, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse recorded time %q: %w", s, err)
	}
	return t, nil
}
