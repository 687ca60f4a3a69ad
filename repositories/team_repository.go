package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/scoreboard/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound        = errors.New("team not found")
	ErrTeamSlotConflict    = errors.New("team slot conflict")
	ErrTeamNameConflict    = errors.New("team name conflict")
	ErrTeamVersionConflict = errors.New("team was modified concurrently")
)

// TeamMutation changes a loaded team document in place. Returning an error
// aborts the update and nothing is written.
type TeamMutation func(team *models.Team) error

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	GetBySlot(ctx context.Context, slot int) (*models.Team, error)
	ListBySlots(ctx context.Context, slots []int) ([]*models.Team, error)
	ListByIDs(ctx context.Context, ids []int) ([]*models.Team, error)
	// List returns every team ordered by total points, highest first.
	List(ctx context.Context) ([]*models.Team, error)
	// Update loads the team under a row lock, applies mutate and stores the
	// result with a bumped version. Writers to one team are serialised.
	Update(ctx context.Context, id int, mutate TeamMutation) (*models.Team, error)
	Delete(ctx context.Context, id int) (*models.Team, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

const teamColumns = `id, name, slot, logo_key, logo_url, current_round, total_points, is_eliminated, rounds, version, created_at, updated_at`

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	if team.Rounds == nil {
		team.Rounds = []models.Round{}
	}
	rounds, err := marshalJSONB(team.Rounds)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO teams (name, slot, logo_key, logo_url, current_round, total_points, is_eliminated, rounds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, version, created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		team.Name,
		team.Slot,
		team.LogoKey,
		team.LogoURL,
		team.CurrentRound,
		team.TotalPoints,
		team.IsEliminated,
		rounds,
	).Scan(&team.ID, &team.Version, &team.CreatedAt, &team.UpdatedAt)

	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			switch constraint {
			case "teams_slot_key":
				return ErrTeamSlotConflict
			case "teams_name_key":
				return ErrTeamNameConflict
			}
		}
		return fmt.Errorf("failed to insert team: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	return r.scanTeam(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresTeamRepository) GetBySlot(ctx context.Context, slot int) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE slot = $1`
	return r.scanTeam(r.db.QueryRowContext(ctx, query, slot))
}

func (r *postgresTeamRepository) ListBySlots(ctx context.Context, slots []int) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE slot = ANY($1) ORDER BY slot ASC`
	return r.listTeams(ctx, query, pq.Array(slots))
}

func (r *postgresTeamRepository) ListByIDs(ctx context.Context, ids []int) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = ANY($1) ORDER BY slot ASC`
	return r.listTeams(ctx, query, pq.Array(ids))
}

func (r *postgresTeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams ORDER BY total_points DESC, slot ASC`
	return r.listTeams(ctx, query)
}

func (r *postgresTeamRepository) Update(ctx context.Context, id int, mutate TeamMutation) (*models.Team, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin team update: %w", err)
	}
	defer rollback(tx)

	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1 FOR UPDATE`
	team, err := r.scanTeam(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if err := mutate(team); err != nil {
		return nil, err
	}

	if team.Rounds == nil {
		team.Rounds = []models.Round{}
	}
	rounds, err := marshalJSONB(team.Rounds)
	if err != nil {
		return nil, err
	}

	update := `
		UPDATE teams SET
			current_round = $1,
			total_points = $2,
			is_eliminated = $3,
			rounds = $4,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $5 AND version = $6
		RETURNING version, updated_at`

	err = tx.QueryRowContext(ctx, update,
		team.CurrentRound,
		team.TotalPoints,
		team.IsEliminated,
		rounds,
		team.ID,
		team.Version,
	).Scan(&team.Version, &team.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamVersionConflict
		}
		return nil, fmt.Errorf("failed to store team %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit team %d: %w", id, err)
	}
	return team, nil
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) (*models.Team, error) {
	query := `DELETE FROM teams WHERE id = $1 RETURNING ` + teamColumns
	return r.scanTeam(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresTeamRepository) listTeams(ctx context.Context, query string, args ...interface{}) ([]*models.Team, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		team, err := r.scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *postgresTeamRepository) scanTeam(row rowScanner) (*models.Team, error) {
	var team models.Team
	var logoKey sql.NullString
	var rounds []byte

	err := row.Scan(
		&team.ID,
		&team.Name,
		&team.Slot,
		&logoKey,
		&team.LogoURL,
		&team.CurrentRound,
		&team.TotalPoints,
		&team.IsEliminated,
		&rounds,
		&team.Version,
		&team.CreatedAt,
		&team.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team: %w", err)
	}

	if logoKey.Valid {
		team.LogoKey = &logoKey.String
	}
	team.Rounds = []models.Round{}
	if len(rounds) > 0 {
		if err := json.Unmarshal(rounds, &team.Rounds); err != nil {
			return nil, fmt.Errorf("failed to decode rounds of team %d: %w", team.ID, err)
		}
	}
	for i := range team.Rounds {
		if team.Rounds[i].EliminatedPlayers == nil {
			team.Rounds[i].EliminatedPlayers = []int{}
		}
	}
	return &team, nil
}
