// Package mongo implements ports.Store on MongoDB, one collection per entity.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"finsmart/internal/core"
	"finsmart/internal/ports"
)

type Store struct {
	client        *mongo.Client
	users         *mongo.Collection
	categories    *mongo.Collection
	transactions  *mongo.Collection
	budgets       *mongo.Collection
	bills         *mongo.Collection
	subscriptions *mongo.Collection
	goals         *mongo.Collection
}

var _ ports.Store = (*Store)(nil)

// New connects to uri, ensures indexes and seeds the default categories.
func New(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{
		client:        client,
		users:         db.Collection("users"),
		categories:    db.Collection("categories"),
		transactions:  db.Collection("transactions"),
		budgets:       db.Collection("budgets"),
		bills:         db.Collection("bills"),
		subscriptions: db.Collection("subscriptions"),
		goals:         db.Collection("goals"),
	}
	if err := s.bootstrap(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	slog.InfoContext(ctx, "Connected to MongoDB", "database", dbName)
	return s, nil
}

func (s *Store) bootstrap(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "usernameKey", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	for _, coll := range []*mongo.Collection{s.transactions, s.budgets, s.bills, s.subscriptions, s.goals} {
		if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}}}); err != nil {
			return fmt.Errorf("create %s index: %w", coll.Name(), err)
		}
	}

	for i, c := range core.DefaultCategories() {
		doc := categoryDoc{ID: c.ID, Name: c.Name, Color: c.Color, Icon: c.Icon, Order: i}
		_, err := s.categories.ReplaceOne(ctx, bson.M{"_id": c.ID}, doc, options.Replace().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.ID, err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

type document[T any] interface {
	toCore() (T, error)
}

func findMany[D document[T], T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	for cursor.Next(ctx) {
		var d D
		if err := cursor.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
		}
		v, err := d.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, cursor.Err()
}

func findByID[D document[T], T any](ctx context.Context, coll *mongo.Collection, id string) (T, error) {
	var d D
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		var zero T
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, ports.ErrNotFound
		}
		return zero, fmt.Errorf("find %s: %w", coll.Name(), err)
	}
	return d.toCore()
}

func insert(ctx context.Context, coll *mongo.Collection, doc any) error {
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert into %s: %w", coll.Name(), err)
	}
	return nil
}

func replaceByID(ctx context.Context, coll *mongo.Collection, id string, doc any) error {
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return fmt.Errorf("replace in %s: %w", coll.Name(), err)
	}
	if res.MatchedCount == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id string) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func byUser(userID string) bson.M { return bson.M{"userId": userID} }

// Users

func (s *Store) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	u.ID = uuid.NewString()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if _, err := s.users.InsertOne(ctx, fromUser(u, strings.ToLower(u.Username))); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return core.User{}, ports.ErrConflict
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (core.User, error) {
	return findByID[userDoc, core.User](ctx, s.users, id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	var d userDoc
	err := s.users.FindOne(ctx, bson.M{"usernameKey": strings.ToLower(username)}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return core.User{}, ports.ErrNotFound
		}
		return core.User{}, fmt.Errorf("find user: %w", err)
	}
	return d.toCore()
}

func (s *Store) ListUserIDs(ctx context.Context) ([]string, error) {
	users, err := findMany[userDoc, core.User](ctx, s.users, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	return findMany[categoryDoc, core.Category](ctx, s.categories, bson.M{}, options.Find().SetSort(bson.D{{Key: "order", Value: 1}}))
}

// Transactions

func (s *Store) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	return findMany[transactionDoc, core.Transaction](ctx, s.transactions, byUser(userID))
}

func (s *Store) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	return findByID[transactionDoc, core.Transaction](ctx, s.transactions, id)
}

func (s *Store) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = uuid.NewString()
	return t, insert(ctx, s.transactions, fromTransaction(t))
}

func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	return replaceByID(ctx, s.transactions, t.ID, fromTransaction(t))
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	return deleteByID(ctx, s.transactions, id)
}

// Budgets

func (s *Store) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	return findMany[budgetDoc, core.Budget](ctx, s.budgets, byUser(userID))
}

func (s *Store) GetBudget(ctx context.Context, id string) (core.Budget, error) {
	return findByID[budgetDoc, core.Budget](ctx, s.budgets, id)
}

func (s *Store) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	b.ID = uuid.NewString()
	return b, insert(ctx, s.budgets, fromBudget(b))
}

func (s *Store) UpdateBudget(ctx context.Context, b core.Budget) error {
	return replaceByID(ctx, s.budgets, b.ID, fromBudget(b))
}

func (s *Store) DeleteBudget(ctx context.Context, id string) error {
	return deleteByID(ctx, s.budgets, id)
}

// Bills

func (s *Store) ListBills(ctx context.Context, userID string) ([]core.Bill, error) {
	return findMany[billDoc, core.Bill](ctx, s.bills, byUser(userID))
}

func (s *Store) GetBill(ctx context.Context, id string) (core.Bill, error) {
	return findByID[billDoc, core.Bill](ctx, s.bills, id)
}

func (s *Store) CreateBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	b.ID = uuid.NewString()
	return b, insert(ctx, s.bills, fromBill(b))
}

func (s *Store) UpdateBill(ctx context.Context, b core.Bill) error {
	return replaceByID(ctx, s.bills, b.ID, fromBill(b))
}

func (s *Store) DeleteBill(ctx context.Context, id string) error {
	return deleteByID(ctx, s.bills, id)
}

// Subscriptions

func (s *Store) ListSubscriptions(ctx context.Context, userID string) ([]core.Subscription, error) {
	return findMany[subscriptionDoc, core.Subscription](ctx, s.subscriptions, byUser(userID))
}

func (s *Store) GetSubscription(ctx context.Context, id string) (core.Subscription, error) {
	return findByID[subscriptionDoc, core.Subscription](ctx, s.subscriptions, id)
}

func (s *Store) CreateSubscription(ctx context.Context, sub core.Subscription) (core.Subscription, error) {
	sub.ID = uuid.NewString()
	return sub, insert(ctx, s.subscriptions, fromSubscription(sub))
}

func (s *Store) UpdateSubscription(ctx context.Context, sub core.Subscription) error {
	return replaceByID(ctx, s.subscriptions, sub.ID, fromSubscription(sub))
}

func (s *Store) DeleteSubscription(ctx context.Context, id string) error {
	return deleteByID(ctx, s.subscriptions, id)
}

// Goals

func (s *Store) ListGoals(ctx context.Context, userID string) ([]core.Goal, error) {
	return findMany[goalDoc, core.Goal](ctx, s.goals, byUser(userID))
}

func (s *Store) GetGoal(ctx context.Context, id string) (core.Goal, error) {
	return findByID[goalDoc, core.Goal](ctx, s.goals, id)
}

func (s *Store) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	g.ID = uuid.NewString()
	return g, insert(ctx, s.goals, fromGoal(g))
}

func (s *Store) UpdateGoal(ctx context.Context, g core.Goal) error {
	return replaceByID(ctx, s.goals, g.ID, fromGoal(g))
}

func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	return deleteByID(ctx, s.goals, id)
}
