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
	err := m.createMigrationsCollection()
	if err != nil {
		return err
	}

	currentVersion, err := m.getCurrentVersion()
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if migration.Version > currentVersion {
			log.Printf("Running migration %d: %s", migration.Version, migration.Description)

			err := migration.Up(m.db)
			if err != nil {
				return fmt.Errorf("migration %d failed: %w", migration.Version, err)
			}

			err = m.updateVersion(migration.Version)
			if err != nil {
				return fmt.Errorf("failed to update migration version: %w", err)
			}

			log.Printf("Migration %d completed successfully", migration.Version)
		}
	}

	return nil
}

func (m *Migrator) Down(targetVersion int) error {
	currentVersion, err := m.getCurrentVersion()
	if err != nil {
		return err
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		migration := m.migrations[i]
		if migration.Version <= currentVersion && migration.Version > targetVersion {
			log.Printf("Reverting migration %d: %s", migration.Version, migration.Description)

			err := migration.Down(m.db)
			if err != nil {
				return fmt.Errorf("migration %d rollback failed: %w", migration.Version, err)
			}

			previousVersion := targetVersion
			if i > 0 {
				previousVersion = m.migrations[i-1].Version
			}

			err = m.updateVersion(previousVersion)
			if err != nil {
				return fmt.Errorf("failed to update migration version: %w", err)
			}

			log.Printf("Migration %d reverted successfully", migration.Version)
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
			Description: "Create accounts indexes",
			Up:          createAccountsIndexes,
			Down: func(db *mongo.Database) error {
				return db.Collection("accounts").Drop(context.Background())
			},
		},
		{
			Version:     2,
			Description: "Create ledger indexes",
			Up:          createLedgerIndexes,
			Down: func(db *mongo.Database) error {
				return db.Collection("ledger_entries").Drop(context.Background())
			},
		},
		{
			Version:     3,
			Description: "Create referral edge indexes",
			Up:          createReferralIndexes,
			Down: func(db *mongo.Database) error {
				return db.Collection("referral_edges").Drop(context.Background())
			},
		},
		{
			Version:     4,
			Description: "Create tier indexes and seed tier catalog",
			Up:          createTierCollections,
			Down: func(db *mongo.Database) error {
				ctx := context.Background()
				if err := db.Collection("tier_assignments").Drop(ctx); err != nil {
					return err
				}
				return db.Collection("tiers").Drop(ctx)
			},
		},
		{
			Version:     5,
			Description: "Create achievement indexes and seed achievement catalog",
			Up:          createAchievementCollections,
			Down: func(db *mongo.Database) error {
				ctx := context.Background()
				if err := db.Collection("achievement_unlocks").Drop(ctx); err != nil {
					return err
				}
				return db.Collection("achievements").Drop(ctx)
			},
		},
		{
			Version:     6,
			Description: "Create reward indexes and seed reward catalog",
			Up:          createRewardCollections,
			Down: func(db *mongo.Database) error {
				ctx := context.Background()
				if err := db.Collection("reward_grants").Drop(ctx); err != nil {
					return err
				}
				return db.Collection("rewards").Drop(ctx)
			},
		},
		{
			Version:     7,
			Description: "Create analytics and notification indexes",
			Up:          createAnalyticsAndNotificationIndexes,
			Down: func(db *mongo.Database) error {
				ctx := context.Background()
				if err := db.Collection("notifications").Drop(ctx); err != nil {
					return err
				}
				return db.Collection("restaurant_analytics").Drop(ctx)
			},
		},
	}
}

func createAccountsIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "referral_code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Leaderboard reads.
			Keys: bson.D{{Key: "points", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, err := db.Collection("accounts").Indexes().CreateMany(ctx, indexes)
	return err
}

func createLedgerIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "reason", Value: 1}},
		},
	}

	_, err := db.Collection("ledger_entries").Indexes().CreateMany(ctx, indexes)
	return err
}

func createReferralIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			// At most one edge per ordered pair; referral replays hit this.
			Keys:    bson.D{{Key: "account_id", Value: 1}, {Key: "peer_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "peer_id", Value: 1}, {Key: "is_referred", Value: 1}},
		},
	}

	_, err := db.Collection("referral_edges").Indexes().CreateMany(ctx, indexes)
	return err
}

func createTierCollections(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tierIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "min_referrals", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := db.Collection("tiers").Indexes().CreateMany(ctx, tierIndexes); err != nil {
		return err
	}

	assignmentIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "account_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := db.Collection("tier_assignments").Indexes().CreateMany(ctx, assignmentIndexes); err != nil {
		return err
	}

	return seedTiers(ctx, db)
}

func createAchievementCollections(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	achievementIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "is_active", Value: 1}},
		},
	}
	if _, err := db.Collection("achievements").Indexes().CreateMany(ctx, achievementIndexes); err != nil {
		return err
	}

	unlockIndexes := []mongo.IndexModel{
		{
			// Write-once unlocks.
			Keys:    bson.D{{Key: "account_id", Value: 1}, {Key: "achievement_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := db.Collection("achievement_unlocks").Indexes().CreateMany(ctx, unlockIndexes); err != nil {
		return err
	}

	return seedAchievements(ctx, db)
}

func createRewardCollections(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rewardIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "is_active", Value: 1}},
		},
	}
	if _, err := db.Collection("rewards").Indexes().CreateMany(ctx, rewardIndexes); err != nil {
		return err
	}

	grantIndexes := []mongo.IndexModel{
		{
			// One grant per account and reward.
			Keys:    bson.D{{Key: "account_id", Value: 1}, {Key: "reward_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := db.Collection("reward_grants").Indexes().CreateMany(ctx, grantIndexes); err != nil {
		return err
	}

	return seedRewards(ctx, db)
}

func createAnalyticsAndNotificationIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	analyticsIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "restaurant_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := db.Collection("restaurant_analytics").Indexes().CreateMany(ctx, analyticsIndexes); err != nil {
		return err
	}

	notificationIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
	_, err := db.Collection("notifications").Indexes().CreateMany(ctx, notificationIndexes)
	return err
}

func seedTiers(ctx context.Context, db *mongo.Database) error {
	tiers := []interface{}{
		bson.M{"name": "Iniciante", "min_referrals": int64(0), "color": "#8B4513", "icon": "star_border",
			"benefits": []string{"Acesso básico ao app", "Pontos por indicações"}, "created_at": time.Now()},
		bson.M{"name": "Bronze", "min_referrals": int64(3), "color": "#CD7F32", "icon": "star",
			"benefits": []string{"Desconto de 5% em restaurantes", "Pontos bônus por reviews"}, "created_at": time.Now()},
		bson.M{"name": "Prata", "min_referrals": int64(8), "color": "#C0C0C0", "icon": "star_half",
			"benefits": []string{"Desconto de 10% em restaurantes", "Acesso a listas premium", "Pontos bônus por indicações"}, "created_at": time.Now()},
		bson.M{"name": "Ouro", "min_referrals": int64(15), "color": "#FFD700", "icon": "star",
			"benefits": []string{"Desconto de 15% em restaurantes", "Listas ilimitadas", "Recompensas exclusivas"}, "created_at": time.Now()},
		bson.M{"name": "Diamante", "min_referrals": int64(30), "color": "#B9F2FF", "icon": "diamond",
			"benefits": []string{"Desconto de 20% em restaurantes", "Suporte prioritário", "Eventos exclusivos", "Recompensas VIP"}, "created_at": time.Now()},
	}
	return seedCollection(ctx, db, "tiers", tiers)
}

func seedAchievements(ctx context.Context, db *mongo.Database) error {
	achievements := []interface{}{
		bson.M{"name": "Primeira Indicação", "description": "Indique seu primeiro amigo", "icon": "person_add",
			"points_reward": int64(50), "condition_type": "referrals", "condition_value": int64(1), "is_active": true, "created_at": time.Now()},
		bson.M{"name": "Indicador Popular", "description": "Indique 5 amigos", "icon": "group_add",
			"points_reward": int64(200), "condition_type": "referrals", "condition_value": int64(5), "is_active": true, "created_at": time.Now()},
		bson.M{"name": "Influenciador", "description": "Indique 10 amigos", "icon": "trending_up",
			"points_reward": int64(500), "condition_type": "referrals", "condition_value": int64(10), "is_active": true, "created_at": time.Now()},
		bson.M{"name": "Primeira Avaliação", "description": "Faça sua primeira avaliação", "icon": "rate_review",
			"points_reward": int64(25), "condition_type": "reviews", "condition_value": int64(1), "is_active": true, "created_at": time.Now()},
		bson.M{"name": "Crítico", "description": "Faça 10 avaliações", "icon": "star",
			"points_reward": int64(100), "condition_type": "reviews", "condition_value": int64(10), "is_active": true, "created_at": time.Now()},
		bson.M{"name": "Colecionador de Pontos", "description": "Acumule 1000 pontos", "icon": "emoji_events",
			"points_reward": int64(100), "condition_type": "points", "condition_value": int64(1000), "is_active": true, "created_at": time.Now()},
		bson.M{"name": "Mestre dos Pontos", "description": "Acumule 5000 pontos", "icon": "military_tech",
			"points_reward": int64(500), "condition_type": "points", "condition_value": int64(5000), "is_active": true, "created_at": time.Now()},
	}
	return seedCollection(ctx, db, "achievements", achievements)
}

func seedRewards(ctx context.Context, db *mongo.Database) error {
	rewards := []interface{}{
		bson.M{"name": "Desconto 5%", "description": "Desconto de 5% em qualquer restaurante",
			"points_cost": int64(100), "reward_type": "discount", "is_active": true, "created_at": time.Now()},
		bson.M{"name": "Desconto 10%", "description": "Desconto de 10% em qualquer restaurante",
			"points_cost": int64(250), "reward_type": "discount", "is_active": true, "created_at": time.Now()},
		bson.M{"name": "Desconto 15%", "description": "Desconto de 15% em qualquer restaurante",
			"points_cost": int64(500), "reward_type": "discount", "is_active": true, "created_at": time.Now()},
		bson.M{"name": "Item Grátis", "description": "Um item grátis em restaurantes parceiros",
			"points_cost": int64(300), "reward_type": "free_item", "is_active": true, "created_at": time.Now()},
		bson.M{"name": "Lista Premium", "description": "Crie listas privadas ilimitadas",
			"points_cost": int64(200), "reward_type": "premium_feature", "is_active": true, "created_at": time.Now()},
		bson.M{"name": "Badge Especial", "description": "Badge exclusivo no seu perfil",
			"points_cost": int64(150), "reward_type": "badge", "is_active": true, "created_at": time.Now()},
	}
	return seedCollection(ctx, db, "rewards", rewards)
}

// seedCollection inserts catalog rows only when the collection is empty, so
// re-running migrations on a live database never duplicates the catalog.
func seedCollection(ctx context.Context, db *mongo.Database, name string, docs []interface{}) error {
	count, err := db.Collection(name).CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	_, err = db.Collection(name).InsertMany(ctx, docs)
	return err
}
