package results

import (
	"context"
	"database/sql"
	"time"
)

// Result is one finished run of a game session.
type Result struct {
	GameID     string    `json:"gameId"`
	Run        int       `json:"run"`
	Date       string    `json:"date"` // YYYY-MM-DD, UTC
	Mode       string    `json:"mode"`
	Score      int       `json:"score"`
	Mistakes   int       `json:"mistakes"`
	Levels     int       `json:"levels"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Store records finished games. Rows are written once and never read back
// into a session.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Record inserts r. A second result for the same game id and run is ignored.
func (s *Store) Record(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO results(game_id, run, date, mode, score, mistakes, levels, finished_at)
		VALUES(?,?,?,?,?,?,?,?)`,
		r.GameID, r.Run, r.Date, r.Mode, r.Score, r.Mistakes, r.Levels, r.FinishedAt.UTC().UnixNano(),
	)
	return err
}

// Leaderboard returns the best results of a day: highest score, then fewest
// mistakes, then earliest finish. limit defaults to 20.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT game_id, run, date, mode, score, mistakes, levels, finished_at
		FROM results
		WHERE date=?
		ORDER BY score DESC, mistakes ASC, finished_at ASC
		LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Result, 0, limit)
	for rows.Next() {
		var (
			r  Result
			ns int64
		)
		if err := rows.Scan(&r.GameID, &r.Run, &r.Date, &r.Mode, &r.Score, &r.Mistakes, &r.Levels, &ns); err != nil {
			return nil, err
		}
		r.FinishedAt = time.Unix(0, ns).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}
