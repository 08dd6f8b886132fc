package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/keirin-edge/internal/database"
	"github.com/yourusername/keirin-edge/internal/models"
)

// PostgresRaceRepository implements RaceRepository for PostgreSQL
type PostgresRaceRepository struct {
	db *database.DB
}

// NewPostgresRaceRepository creates a new race repository
func NewPostgresRaceRepository(db *database.DB) RaceRepository {
	return &PostgresRaceRepository{db: db}
}

const raceColumns = `
	place, date, race_number, tier, region, straight_length, banking_angle,
	track_length, line_composition, long_shots
`

// GetByDate retrieves every race card for one day, riders included
func (r *PostgresRaceRepository) GetByDate(ctx context.Context, date string) ([]*models.Race, error) {
	query := `SELECT ` + raceColumns + ` FROM races WHERE date = $1 ORDER BY place, race_number`

	rows, err := r.db.GetPool().Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query races: %w", err)
	}
	defer rows.Close()

	races, err := scanRaces(rows)
	if err != nil {
		return nil, err
	}
	return r.attachRiders(ctx, races)
}

// GetByPlaceAndDate retrieves one venue's race cards for a day
func (r *PostgresRaceRepository) GetByPlaceAndDate(ctx context.Context, place, date string) ([]*models.Race, error) {
	query := `SELECT ` + raceColumns + ` FROM races WHERE place = $1 AND date = $2 ORDER BY race_number`

	rows, err := r.db.GetPool().Query(ctx, query, place, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query races: %w", err)
	}
	defer rows.Close()

	races, err := scanRaces(rows)
	if err != nil {
		return nil, err
	}
	return r.attachRiders(ctx, races)
}

// Save upserts a race card and its rider rows
func (r *PostgresRaceRepository) Save(ctx context.Context, race *models.Race) error {
	return r.db.WithTransaction(ctx, func(txCtx context.Context) error {
		query := `
			INSERT INTO races (` + raceColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (place, date, race_number) DO UPDATE SET
				tier = EXCLUDED.tier,
				region = EXCLUDED.region,
				straight_length = EXCLUDED.straight_length,
				banking_angle = EXCLUDED.banking_angle,
				track_length = EXCLUDED.track_length,
				line_composition = EXCLUDED.line_composition,
				long_shots = EXCLUDED.long_shots
		`
		_, err := r.db.GetPool().Exec(ctx, query,
			race.Place, race.Date, race.Number, race.Tier, race.Region,
			race.StraightLength, race.BankingAngle, race.TrackLength,
			race.LineComposition, race.LongShots,
		)
		if err != nil {
			return fmt.Errorf("failed to save race: %w", err)
		}

		for i := range race.Riders {
			if err := r.saveRider(ctx, race, &race.Riders[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresRaceRepository) saveRider(ctx context.Context, race *models.Race, rider *models.Rider) error {
	query := `
		INSERT INTO riders (
			place, date, race_number, car_number, name, base_score, tactics,
			home_region, tier, escape_count, chase_jump_count, closer_count,
			marker_count, back_count
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (place, date, race_number, car_number) DO UPDATE SET
			name = EXCLUDED.name,
			base_score = EXCLUDED.base_score,
			tactics = EXCLUDED.tactics,
			home_region = EXCLUDED.home_region,
			tier = EXCLUDED.tier,
			escape_count = EXCLUDED.escape_count,
			chase_jump_count = EXCLUDED.chase_jump_count,
			closer_count = EXCLUDED.closer_count,
			marker_count = EXCLUDED.marker_count,
			back_count = EXCLUDED.back_count
	`
	tactics := make([]string, 0, len(rider.Tactics))
	for _, t := range rider.Tactics {
		tactics = append(tactics, string(t))
	}
	_, err := r.db.GetPool().Exec(ctx, query,
		race.Place, race.Date, race.Number, rider.CarNumber, rider.Name,
		rider.BaseScore, tactics, rider.HomeRegion, rider.Tier,
		rider.EscapeCount, rider.ChaseJumpCount, rider.CloserCount,
		rider.MarkerCount, rider.BackCount,
	)
	if err != nil {
		return fmt.Errorf("failed to save rider %d: %w", rider.CarNumber, err)
	}
	return nil
}

func scanRaces(rows pgx.Rows) ([]*models.Race, error) {
	var races []*models.Race
	for rows.Next() {
		race := &models.Race{}
		err := rows.Scan(
			&race.Place, &race.Date, &race.Number, &race.Tier, &race.Region,
			&race.StraightLength, &race.BankingAngle, &race.TrackLength,
			&race.LineComposition, &race.LongShots,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan race: %w", err)
		}
		races = append(races, race)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read races: %w", err)
	}
	return races, nil
}

// attachRiders loads the rider rows for every race in one query per race
func (r *PostgresRaceRepository) attachRiders(ctx context.Context, races []*models.Race) ([]*models.Race, error) {
	query := `
		SELECT car_number, name, base_score, tactics, home_region, tier,
		       escape_count, chase_jump_count, closer_count, marker_count, back_count
		FROM riders
		WHERE place = $1 AND date = $2 AND race_number = $3
		ORDER BY car_number
	`
	for _, race := range races {
		rows, err := r.db.GetPool().Query(ctx, query, race.Place, race.Date, race.Number)
		if err != nil {
			return nil, fmt.Errorf("failed to query riders: %w", err)
		}
		race.Riders, err = scanRiders(rows)
		rows.Close()
		if err != nil {
			return nil, err
		}
		race.ComputeTopTacticFlags()
	}
	return races, nil
}

func scanRiders(rows pgx.Rows) ([]models.Rider, error) {
	var riders []models.Rider
	for rows.Next() {
		var rider models.Rider
		var tactics []string
		err := rows.Scan(
			&rider.CarNumber, &rider.Name, &rider.BaseScore, &tactics,
			&rider.HomeRegion, &rider.Tier, &rider.EscapeCount,
			&rider.ChaseJumpCount, &rider.CloserCount, &rider.MarkerCount,
			&rider.BackCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rider: %w", err)
		}
		for _, t := range tactics {
			rider.Tactics = append(rider.Tactics, models.Tactic(t))
		}
		riders = append(riders, rider)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read riders: %w", err)
	}
	return riders, nil
}
