package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/scoreboard/models"
)

var ErrNotificationNotFound = errors.New("elimination notification not found")

// RankFunc assigns elimination orders to the pending notifications and
// returns the ones it changed.
type RankFunc func(aliveCount int, pending []*models.EliminationNotification) []*models.EliminationNotification

type NotificationRepository interface {
	// UpsertOnStatusChange inserts the notification or, when one exists for
	// the same team and round, updates it only if the status differs. It
	// reports whether a row was written.
	UpsertOnStatusChange(ctx context.Context, n *models.EliminationNotification) (bool, error)
	// Upsert always writes the snapshot but keeps the displayed flag.
	Upsert(ctx context.Context, n *models.EliminationNotification) error
	GetByTeamAndRound(ctx context.Context, teamID, roundNumber int) (*models.EliminationNotification, error)
	// RankEliminated locks unranked eliminated notifications and stores the
	// orders produced by rank. Returns how many were ranked.
	RankEliminated(ctx context.Context, rank RankFunc) (int, error)
	MarkDisplayed(ctx context.Context, teamID, roundNumber int) (*models.EliminationNotification, error)
	MarkDisplayedByID(ctx context.Context, id int) (*models.EliminationNotification, error)
	ListPending(ctx context.Context, roundNumber *int) ([]*models.EliminationNotification, error)
	ListAll(ctx context.Context, roundNumber *int) ([]*models.EliminationNotification, error)
	ResetRound(ctx context.Context, roundNumber int) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type postgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

const notificationColumns = `n.id, n.team_id, n.team_name, n.round_number, n.status, n.displayed, n.elimination_order, n.ranked, n.kill_count, n.position, n.created_at, n.updated_at`

func (r *postgresNotificationRepository) UpsertOnStatusChange(ctx context.Context, n *models.EliminationNotification) (bool, error) {
	query := `
		INSERT INTO elimination_notifications AS n (team_id, team_name, round_number, status, kill_count, position)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT ON CONSTRAINT elimination_notifications_team_round_key DO UPDATE SET
			team_name = EXCLUDED.team_name,
			status = EXCLUDED.status,
			kill_count = EXCLUDED.kill_count,
			position = EXCLUDED.position,
			elimination_order = CASE WHEN EXCLUDED.status = 'alive' THEN 0 ELSE n.elimination_order END,
			ranked = CASE WHEN EXCLUDED.status = 'alive' THEN FALSE ELSE n.ranked END,
			updated_at = clock_timestamp()
		WHERE n.status <> EXCLUDED.status
		RETURNING ` + notificationColumns

	stored, err := r.scanNotification(r.db.QueryRowContext(ctx, query,
		n.TeamID, n.TeamName, n.RoundNumber, n.Status, n.KillCount, n.Position,
	))
	if errors.Is(err, ErrNotificationNotFound) {
		// Conflict with an unchanged status: the WHERE clause filtered the update.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to upsert notification for team %d round %d: %w", n.TeamID, n.RoundNumber, err)
	}
	*n = *stored
	return true, nil
}

func (r *postgresNotificationRepository) Upsert(ctx context.Context, n *models.EliminationNotification) error {
	query := `
		INSERT INTO elimination_notifications AS n (team_id, team_name, round_number, status, kill_count, position)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT ON CONSTRAINT elimination_notifications_team_round_key DO UPDATE SET
			team_name = EXCLUDED.team_name,
			status = EXCLUDED.status,
			kill_count = EXCLUDED.kill_count,
			position = EXCLUDED.position,
			elimination_order = CASE WHEN EXCLUDED.status = 'alive' THEN 0 ELSE n.elimination_order END,
			ranked = CASE WHEN EXCLUDED.status = 'alive' THEN FALSE ELSE n.ranked END,
			updated_at = clock_timestamp()
		RETURNING ` + notificationColumns

	stored, err := r.scanNotification(r.db.QueryRowContext(ctx, query,
		n.TeamID, n.TeamName, n.RoundNumber, n.Status, n.KillCount, n.Position,
	))
	if err != nil {
		return fmt.Errorf("failed to track notification for team %d round %d: %w", n.TeamID, n.RoundNumber, err)
	}
	*n = *stored
	return nil
}

func (r *postgresNotificationRepository) GetByTeamAndRound(ctx context.Context, teamID, roundNumber int) (*models.EliminationNotification, error) {
	query := `SELECT ` + notificationColumns + `, COALESCE(t.logo_url, '')
		FROM elimination_notifications n
		LEFT JOIN teams t ON t.id = n.team_id
		WHERE n.team_id = $1 AND n.round_number = $2`
	return r.scanNotificationWithLogo(r.db.QueryRowContext(ctx, query, teamID, roundNumber))
}

func (r *postgresNotificationRepository) RankEliminated(ctx context.Context, rank RankFunc) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin ranking: %w", err)
	}
	defer rollback(tx)

	pendingQuery := `SELECT ` + notificationColumns + `
		FROM elimination_notifications n
		WHERE n.status = 'eliminated' AND NOT n.ranked
		ORDER BY n.created_at ASC, n.id ASC
		FOR UPDATE`
	pending, err := r.queryNotifications(ctx, tx, pendingQuery, false)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	var alive int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM elimination_notifications WHERE status = 'alive'`).Scan(&alive); err != nil {
		return 0, fmt.Errorf("failed to count alive notifications: %w", err)
	}

	ranked := rank(alive, pending)
	for _, n := range ranked {
		_, err := tx.ExecContext(ctx,
			`UPDATE elimination_notifications SET elimination_order = $1, ranked = TRUE, updated_at = clock_timestamp() WHERE id = $2`,
			n.EliminationOrder, n.ID,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to store elimination order of notification %d: %w", n.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit ranking: %w", err)
	}
	return len(ranked), nil
}

func (r *postgresNotificationRepository) MarkDisplayed(ctx context.Context, teamID, roundNumber int) (*models.EliminationNotification, error) {
	query := `UPDATE elimination_notifications AS n
		SET displayed = TRUE, updated_at = clock_timestamp()
		WHERE n.team_id = $1 AND n.round_number = $2
		RETURNING ` + notificationColumns
	return r.scanNotification(r.db.QueryRowContext(ctx, query, teamID, roundNumber))
}

func (r *postgresNotificationRepository) MarkDisplayedByID(ctx context.Context, id int) (*models.EliminationNotification, error) {
	query := `UPDATE elimination_notifications AS n
		SET displayed = TRUE, updated_at = clock_timestamp()
		WHERE n.id = $1
		RETURNING ` + notificationColumns
	return r.scanNotification(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresNotificationRepository) ListPending(ctx context.Context, roundNumber *int) ([]*models.EliminationNotification, error) {
	query := `SELECT ` + notificationColumns + `, COALESCE(t.logo_url, '')
		FROM elimination_notifications n
		LEFT JOIN teams t ON t.id = n.team_id
		WHERE n.status = 'eliminated' AND n.displayed = FALSE
		AND ($1::INTEGER IS NULL OR n.round_number = $1)
		ORDER BY n.created_at ASC, n.id ASC`
	return r.queryNotifications(ctx, r.db, query, true, nullableInt(roundNumber))
}

func (r *postgresNotificationRepository) ListAll(ctx context.Context, roundNumber *int) ([]*models.EliminationNotification, error) {
	query := `SELECT ` + notificationColumns + `, COALESCE(t.logo_url, '')
		FROM elimination_notifications n
		LEFT JOIN teams t ON t.id = n.team_id
		WHERE ($1::INTEGER IS NULL OR n.round_number = $1)
		ORDER BY n.round_number ASC, n.created_at ASC, n.id ASC`
	return r.queryNotifications(ctx, r.db, query, true, nullableInt(roundNumber))
}

func (r *postgresNotificationRepository) ResetRound(ctx context.Context, roundNumber int) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE elimination_notifications
		SET displayed = FALSE, status = 'alive', elimination_order = 0, ranked = FALSE, updated_at = clock_timestamp()
		WHERE round_number = $1`,
		roundNumber,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reset round %d notifications: %w", roundNumber, err)
	}
	return checkAffectedRows(result, nil)
}

func (r *postgresNotificationRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM elimination_notifications`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications: %w", err)
	}
	return checkAffectedRows(result, nil)
}

func (r *postgresNotificationRepository) queryNotifications(ctx context.Context, exec SQLExecutor, query string, withLogo bool, args ...interface{}) ([]*models.EliminationNotification, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]*models.EliminationNotification, 0)
	for rows.Next() {
		var n *models.EliminationNotification
		if withLogo {
			n, err = r.scanNotificationWithLogo(rows)
		} else {
			n, err = r.scanNotification(rows)
		}
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *postgresNotificationRepository) scanNotification(row rowScanner) (*models.EliminationNotification, error) {
	var n models.EliminationNotification
	err := row.Scan(notificationDest(&n)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to scan notification: %w", err)
	}
	return &n, nil
}

func (r *postgresNotificationRepository) scanNotificationWithLogo(row rowScanner) (*models.EliminationNotification, error) {
	var n models.EliminationNotification
	err := row.Scan(append(notificationDest(&n), &n.TeamLogo)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to scan notification: %w", err)
	}
	return &n, nil
}

func notificationDest(n *models.EliminationNotification) []interface{} {
	return []interface{}{
		&n.ID,
		&n.TeamID,
		&n.TeamName,
		&n.RoundNumber,
		&n.Status,
		&n.Displayed,
		&n.EliminationOrder,
		&n.Ranked,
		&n.KillCount,
		&n.Position,
		&n.CreatedAt,
		&n.UpdatedAt,
	}
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
