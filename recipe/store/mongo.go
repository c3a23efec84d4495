package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	cfg "github.com/mealforge/mealforge/config"
	errorspkg "github.com/mealforge/mealforge/errors"
	"github.com/mealforge/mealforge/recipe"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements RecipeStore using MongoDB
type MongoStore struct {
	client     *mongo.Client
	db         *mongo.Database
	collection *mongo.Collection
}

// MongoConfig holds MongoDB connection configuration
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// DefaultMongoConfig returns default MongoDB configuration
func DefaultMongoConfig() *MongoConfig {
	return &MongoConfig{
		URI:        "mongodb://localhost:27017",
		Database:   "mealforge",
		Collection: "recipes",
	}
}

// mongoRecipe is the internal representation for MongoDB
type mongoRecipe struct {
	ID           int64                `bson:"_id"`
	Name         string               `bson:"name"`
	Description  string               `bson:"description,omitempty"`
	Metadata     recipe.Metadata      `bson:"metadata"`
	Ingredients  []recipe.Ingredient  `bson:"ingredients"`
	Instructions []recipe.Instruction `bson:"instructions"`
	Nutrition    *recipe.Nutrition    `bson:"nutrition,omitempty"`
	CreatedAt    time.Time            `bson:"created_at"`
}

// NewMongoStore creates a new MongoDB-based recipe store
func NewMongoStore(config *MongoConfig) (*MongoStore, error) {
	if config == nil {
		config = DefaultMongoConfig()
	}
	if err := cfg.ValidateMongoDBConfig(config.URI, config.Database, config.Collection); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(config.Database)
	return &MongoStore{
		client:     client,
		db:         db,
		collection: db.Collection(config.Collection),
	}, nil
}

// SaveRecipe upserts a recipe by ID. A recipe without an ID gets a
// time-based one.
func (s *MongoStore) SaveRecipe(ctx context.Context, r *recipe.Recipe) error {
	if r == nil {
		return fmt.Errorf("recipe cannot be nil")
	}
	if r.ID == 0 {
		r.ID = time.Now().UnixNano()
	}

	doc := mongoRecipe{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		Metadata:     r.Metadata,
		Ingredients:  r.Ingredients,
		Instructions: r.Instructions,
		Nutrition:    r.Nutrition,
		CreatedAt:    r.CreatedAt,
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": r.ID}, doc, opts); err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}
	return nil
}

// GetRecipe retrieves a recipe by ID
func (s *MongoStore) GetRecipe(ctx context.Context, id int64) (*recipe.Recipe, error) {
	var doc mongoRecipe
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("recipe %d: %w", id, errorspkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return doc.toRecipe(), nil
}

// ListRecipes returns the most recent recipes, newest first
func (s *MongoStore) ListRecipes(ctx context.Context, limit int) ([]*recipe.Recipe, error) {
	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*recipe.Recipe
	for cursor.Next(ctx) {
		var doc mongoRecipe
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode recipe: %w", err)
		}
		out = append(out, doc.toRecipe())
	}
	return out, cursor.Err()
}

// DeleteRecipe removes a recipe by ID
func (s *MongoStore) DeleteRecipe(ctx context.Context, id int64) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("recipe %d: %w", id, errorspkg.ErrNotFound)
	}
	return nil
}

// Close disconnects from MongoDB
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (d *mongoRecipe) toRecipe() *recipe.Recipe {
	return &recipe.Recipe{
		ID:           d.ID,
		Name:         d.Name,
		Description:  d.Description,
		Metadata:     d.Metadata,
		Ingredients:  d.Ingredients,
		Instructions: d.Instructions,
		Nutrition:    d.Nutrition,
		CreatedAt:    d.CreatedAt,
	}
}
