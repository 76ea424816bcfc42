package trace

import "time"

// RecordSend inserts the outbound half of an exchange. Called from the
// connection's send path, so failures are logged rather than returned; a
// lost trace row must never fail the exchange itself.
//
// ON CONFLICT DO NOTHING keeps duplicate (session, req_id) writes
// idempotent.
func (l *Log) RecordSend(session string, id uint64, method string, params []byte) {
	_, err := l.db.Exec(`
		INSERT INTO exchanges (session, req_id, method, params, sent_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		session,
		int64(id),
		method,
		string(params),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		l.logger.Warn("trace: record send failed",
			"session", session, "id", id, "error", err)
	}
}

// RecordResult completes an exchange in place. fault is empty when the
// exchange reached the host and came back; otherwise it describes the
// transport-level failure.
func (l *Log) RecordResult(session string, id uint64, result []byte, fault string) {
	_, err := l.db.Exec(`
		UPDATE exchanges
		SET result = ?, fault = ?, done_at = ?
		WHERE session = ? AND req_id = ?
	`,
		string(result),
		fault,
		time.Now().UTC().Format(time.RFC3339Nano),
		session,
		int64(id),
	)
	if err != nil {
		l.logger.Warn("trace: record result failed",
			"session", session, "id", id, "error", err)
	}
}
