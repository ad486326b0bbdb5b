package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Migration struct {
	Version     int
	Description string
	Up          func(*mongo.Database) error
	Down        func(*mongo.Database) error
}

type Migrator struct {
	db         *mongo.Database
	migrations []Migration
}

func NewMigrator(db *mongo.Database) *Migrator {
	return &Migrator{
		db:         db,
		migrations: getMigrations(),
	}
}

func (m *Migrator) Up() error {
	if err := m.createMigrationsCollection(); err != nil {
		return err
	}

	currentVersion, err := m.getCurrentVersion()
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if migration.Version > currentVersion {
			log.Printf("Running migration %d: %s", migration.Version, migration.Description)

			if err := migration.Up(m.db); err != nil {
				return fmt.Errorf("migration %d failed: %w", migration.Version, err)
			}

			if err := m.updateVersion(migration.Version); err != nil {
				return fmt.Errorf("failed to update migration version: %w", err)
			}
		}
	}

	return nil
}

func (m *Migrator) createMigrationsCollection() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collections, err := m.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return err
	}

	for _, name := range collections {
		if name == "migrations" {
			return nil
		}
	}

	return m.db.CreateCollection(ctx, "migrations")
}

func (m *Migrator) getCurrentVersion() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var result struct {
		Version int `bson:"version"`
	}

	err := m.db.Collection("migrations").FindOne(ctx, bson.D{}).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, nil
		}
		return 0, err
	}

	return result.Version, nil
}

func (m *Migrator) updateVersion(version int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := m.db.Collection("migrations").ReplaceOne(
		ctx,
		bson.D{},
		bson.D{{Key: "version", Value: version}, {Key: "updated_at", Value: time.Now()}},
		options.Replace().SetUpsert(true),
	)

	return err
}

func getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create users collection with indexes",
			Up:          createUsersIndexes,
			Down: func(db *mongo.Database) error {
				return db.Collection("users").Drop(context.Background())
			},
		},
		{
			Version:     2,
			Description: "Create corridors and assignments with indexes",
			Up:          createCorridorIndexes,
			Down: func(db *mongo.Database) error {
				if err := db.Collection("corridors").Drop(context.Background()); err != nil {
					return err
				}
				return db.Collection("user_corridors").Drop(context.Background())
			},
		},
		{
			Version:     3,
			Description: "Create vehicles collection with indexes",
			Up:          createVehiclesIndexes,
			Down: func(db *mongo.Database) error {
				return db.Collection("vehicles").Drop(context.Background())
			},
		},
		{
			Version:     4,
			Description: "Create rides collection with indexes",
			Up:          createRidesIndexes,
			Down: func(db *mongo.Database) error {
				return db.Collection("rides").Drop(context.Background())
			},
		},
		{
			Version:     5,
			Description: "Create payments collection with unique ride/rider index",
			Up:          createPaymentsIndexes,
			Down: func(db *mongo.Database) error {
				return db.Collection("payments").Drop(context.Background())
			},
		},
		{
			Version:     6,
			Description: "Create messages collection with unique ride/seq index",
			Up:          createMessagesIndexes,
			Down: func(db *mongo.Database) error {
				return db.Collection("messages").Drop(context.Background())
			},
		},
	}
}

func createUsersIndexes(db *mongo.Database) error {
	ctx := context.Background()
	_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}

func createCorridorIndexes(db *mongo.Database) error {
	ctx := context.Background()
	_, err := db.Collection("corridors").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "city_id", Value: 1}, {Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("user_corridors").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "corridor_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}

func createVehiclesIndexes(db *mongo.Database) error {
	ctx := context.Background()
	_, err := db.Collection("vehicles").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{
			Keys:    bson.D{{Key: "vehicle_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}

func createRidesIndexes(db *mongo.Database) error {
	ctx := context.Background()
	_, err := db.Collection("rides").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "corridor_id", Value: 1}, {Key: "ride_date", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "giver_id", Value: 1}}},
		{Keys: bson.D{{Key: "reservations.rider_id", Value: 1}}},
	})
	return err
}

func createPaymentsIndexes(db *mongo.Database) error {
	ctx := context.Background()
	_, err := db.Collection("payments").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			// Partial so a voided record kept for audit does not block the
			// rider from opening a fresh one after rejoining.
			Keys: bson.D{{Key: "ride_id", Value: 1}, {Key: "rider_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"voided": false}),
		},
		{Keys: bson.D{{Key: "ride_id", Value: 1}, {Key: "voided", Value: 1}}},
	})
	return err
}

func createMessagesIndexes(db *mongo.Database) error {
	ctx := context.Background()
	_, err := db.Collection("messages").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ride_id", Value: 1}, {Key: "seq", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}
