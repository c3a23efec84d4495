package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	cfg "github.com/mealforge/mealforge/config"
	errorspkg "github.com/mealforge/mealforge/errors"
	"github.com/mealforge/mealforge/recipe"
)

// PostgresStore implements RecipeStore using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DefaultPostgresConfig returns default PostgreSQL configuration
func DefaultPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		DBName:   "mealforge",
		SSLMode:  "disable",
	}
}

// NewPostgresStore creates a new PostgreSQL-based recipe store
func NewPostgresStore(config *PostgresConfig) (*PostgresStore, error) {
	if config == nil {
		config = DefaultPostgresConfig()
	}
	if err := cfg.ValidatePostgresConfig(config.Host, config.Port, config.User,
		config.Password, config.DBName, config.SSLMode); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	store := &PostgresStore{db: db}

	if err := store.createTable(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return store, nil
}

// createTable creates the recipes table if it doesn't exist
func (s *PostgresStore) createTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS recipes (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		metadata JSONB,
		ingredients JSONB,
		instructions JSONB,
		nutrition JSONB,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_recipes_created_at ON recipes(created_at);
	`

	_, err := s.db.ExecContext(ctx, query)
	return err
}

// SaveRecipe persists a recipe, assigning a generated ID when it has none
func (s *PostgresStore) SaveRecipe(ctx context.Context, r *recipe.Recipe) error {
	if r == nil {
		return fmt.Errorf("recipe cannot be nil")
	}

	metadata, err := json.Marshal(r.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	ingredients, err := json.Marshal(r.Ingredients)
	if err != nil {
		return fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	instructions, err := json.Marshal(r.Instructions)
	if err != nil {
		return fmt.Errorf("failed to marshal instructions: %w", err)
	}
	var nutrition []byte
	if r.Nutrition != nil {
		if nutrition, err = json.Marshal(r.Nutrition); err != nil {
			return fmt.Errorf("failed to marshal nutrition: %w", err)
		}
	}

	if r.ID == 0 {
		query := `
		INSERT INTO recipes (name, description, metadata, ingredients, instructions, nutrition, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
		err = s.db.QueryRowContext(ctx, query,
			r.Name, r.Description, metadata, ingredients, instructions, nutrition, r.CreatedAt,
		).Scan(&r.ID)
	} else {
		query := `
		INSERT INTO recipes (id, name, description, metadata, ingredients, instructions, nutrition, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			metadata = EXCLUDED.metadata,
			ingredients = EXCLUDED.ingredients,
			instructions = EXCLUDED.instructions,
			nutrition = EXCLUDED.nutrition`
		_, err = s.db.ExecContext(ctx, query,
			r.ID, r.Name, r.Description, metadata, ingredients, instructions, nutrition, r.CreatedAt)
	}
	if err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}
	return nil
}

// GetRecipe retrieves a recipe by ID
func (s *PostgresStore) GetRecipe(ctx context.Context, id int64) (*recipe.Recipe, error) {
	query := `
	SELECT id, name, description, metadata, ingredients, instructions, nutrition, created_at
	FROM recipes WHERE id = $1`

	r, err := scanRecipe(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recipe %d: %w", id, errorspkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return r, nil
}

// ListRecipes returns the most recent recipes, newest first
func (s *PostgresStore) ListRecipes(ctx context.Context, limit int) ([]*recipe.Recipe, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
	SELECT id, name, description, metadata, ingredients, instructions, nutrition, created_at
	FROM recipes ORDER BY created_at DESC, id DESC LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var out []*recipe.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRecipe removes a recipe by ID
func (s *PostgresStore) DeleteRecipe(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("recipe %d: %w", id, errorspkg.ErrNotFound)
	}
	return nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (*recipe.Recipe, error) {
	var (
		r            recipe.Recipe
		metadata     []byte
		ingredients  []byte
		instructions []byte
		nutrition    []byte
	)
	if err := row.Scan(&r.ID, &r.Name, &r.Description, &metadata, &ingredients,
		&instructions, &nutrition, &r.CreatedAt); err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &r.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	if len(ingredients) > 0 {
		if err := json.Unmarshal(ingredients, &r.Ingredients); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ingredients: %w", err)
		}
	}
	if len(instructions) > 0 {
		if err := json.Unmarshal(instructions, &r.Instructions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal instructions: %w", err)
		}
	}
	if len(nutrition) > 0 {
		if err := json.Unmarshal(nutrition, &r.Nutrition); err != nil {
			return nil, fmt.Errorf("failed to unmarshal nutrition: %w", err)
		}
	}
	return &r, nil
}
