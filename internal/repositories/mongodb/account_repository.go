package mongodb

import (
	"context"
	"fmt"
	"time"

	"forkly/internal/models"
	"forkly/internal/repositories/interfaces"
	"forkly/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type accountRepository struct {
	collection *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) interfaces.AccountRepository {
	return &accountRepository{
		collection: db.Collection("accounts"),
	}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	account.ID = primitive.NewObjectID()
	account.CreatedAt = time.Now()
	account.UpdatedAt = time.Now()

	if account.ReferralCode == "" {
		account.ReferralCode = utils.GenerateReferralCode()
	}
	if account.Role == "" {
		account.Role = models.AccountRoleUser
	}

	_, err := r.collection.InsertOne(ctx, account)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	var account models.Account
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&account)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &account, nil
}

func (r *accountRepository) GetByReferralCode(ctx context.Context, code string) (*models.Account, error) {
	var account models.Account
	err := r.collection.FindOne(ctx, bson.M{"referral_code": code}).Decode(&account)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by referral code: %w", err)
	}

	return &account, nil
}

// ApplyPointsDelta makes the check-then-write a single atomic step: for a
// debit the filter requires the balance to cover the amount, so two
// concurrent debits can never drive the balance negative.
func (r *accountRepository) ApplyPointsDelta(ctx context.Context, id primitive.ObjectID, delta int64) error {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["points"] = bson.M{"$gte": -delta}
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{
		"$inc": bson.M{"points": delta},
		"$set": bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("failed to apply points delta: %w", err)
	}

	if result.MatchedCount == 0 {
		if delta < 0 {
			// Distinguish a missing account from an uncovered debit.
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return getErr
			}
			return utils.ErrInsufficientBalance
		}
		return utils.ErrAccountNotFound
	}

	return nil
}

func (r *accountRepository) IncrementReviewCount(ctx context.Context, id primitive.ObjectID) (int64, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var account models.Account
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"review_count": 1},
			"$set": bson.M{"updated_at": time.Now()},
		},
		opts,
	).Decode(&account)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, utils.ErrAccountNotFound
		}
		return 0, fmt.Errorf("failed to increment review count: %w", err)
	}

	return account.ReviewCount, nil
}

func (r *accountRepository) TopByPoints(ctx context.Context, limit int) ([]*models.Account, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "points", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get top accounts: %w", err)
	}
	defer cursor.Close(ctx)

	var accounts []*models.Account
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, fmt.Errorf("failed to decode accounts: %w", err)
	}

	return accounts, nil
}
