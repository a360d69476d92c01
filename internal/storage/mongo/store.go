package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gastos/internal/core"
	"gastos/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ExpensesCollection holds one document per expense.
const ExpensesCollection = "expenses"

// expenseDoc is the stored shape. Day carries the calendar date used by
// range queries; SpentAt keeps the original offset, which BSON dates drop.
type expenseDoc struct {
	ID          string    `bson:"_id"`
	OwnerID     string    `bson:"owner_id"`
	Day         string    `bson:"day"`
	SpentAt     string    `bson:"spent_at"`
	Category    string    `bson:"category"`
	SubCategory string    `bson:"sub_category,omitempty"`
	AmountCents int64     `bson:"amount_cents"`
	Title       string    `bson:"title,omitempty"`
	Description string    `bson:"description,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

type Store struct {
	coll    Collection
	closeFn func(context.Context) error
	pingFn  func(context.Context) error
}

var (
	_ storage.ExpenseStore = (*Store)(nil)
	_ storage.Pinger       = (*Store)(nil)
)

// New wraps an expenses collection. closeFn, when set, runs on Close.
func New(coll Collection, closeFn func(context.Context) error) *Store {
	return &Store{coll: coll, closeFn: closeFn}
}

// Open connects to uri and returns a store over database's expenses
// collection.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := Connect(ctx, uri)
	if err != nil {
		return nil, err
	}
	coll := client.Database(database).Collection(ExpensesCollection)
	if err := EnsureIndexes(ctx, coll); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	s := New(coll, client.Disconnect)
	s.pingFn = func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
	return s, nil
}

func toDoc(e core.Expense) expenseDoc {
	return expenseDoc{
		ID:          e.ID,
		OwnerID:     e.OwnerID,
		Day:         e.Day().String(),
		SpentAt:     e.Date.Format(time.RFC3339Nano),
		Category:    string(e.Category),
		SubCategory: string(e.SubCategory),
		AmountCents: e.Amount.Cents,
		Title:       e.Title,
		Description: e.Description,
		CreatedAt:   e.CreatedAt.UTC(),
		UpdatedAt:   e.UpdatedAt.UTC(),
	}
}

func (d expenseDoc) expense() (core.Expense, error) {
	spentAt, err := time.Parse(time.RFC3339Nano, d.SpentAt)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s spent_at: %w", d.ID, err)
	}
	return core.Expense{
		ID:          d.ID,
		OwnerID:     d.OwnerID,
		Date:        spentAt,
		Category:    core.Category(d.Category),
		SubCategory: core.SubCategory(d.SubCategory),
		Amount:      core.Money{Cents: d.AmountCents},
		Title:       d.Title,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

func ownedBy(ownerID, id string) bson.M {
	return bson.M{"_id": id, "owner_id": ownerID}
}

func bsonIndex() bson.D {
	return bson.D{{Key: "owner_id", Value: 1}, {Key: "day", Value: -1}}
}

func (s *Store) FetchExpensesInRange(ctx context.Context, ownerID string, p core.Period) ([]core.Expense, error) {
	filter := bson.M{
		"owner_id": ownerID,
		"day":      bson.M{"$gte": p.Start.String(), "$lte": p.End.String()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "day", Value: -1}, {Key: "created_at", Value: -1}})
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find expenses %s: %w", p, err)
	}
	defer cur.Close(ctx)

	var docs []expenseDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode expenses: %w", err)
	}
	out := make([]core.Expense, 0, len(docs))
	for _, d := range docs {
		e, err := d.expense()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) GetExpense(ctx context.Context, ownerID, id string) (core.Expense, error) {
	var d expenseDoc
	if err := s.coll.FindOne(ctx, ownedBy(ownerID, id)).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return core.Expense{}, storage.ErrNotFound
		}
		return core.Expense{}, fmt.Errorf("find expense %s: %w", id, err)
	}
	return d.expense()
}

func (s *Store) CreateExpense(ctx context.Context, e core.Expense) (string, error) {
	if e.ID == "" {
		return "", errors.New("create expense: empty id")
	}
	if _, err := s.coll.InsertOne(ctx, toDoc(e)); err != nil {
		return "", fmt.Errorf("insert expense: %w", err)
	}
	return e.ID, nil
}

func (s *Store) UpdateExpense(ctx context.Context, ownerID, id string, patch core.ExpensePatch, at time.Time) (core.Expense, error) {
	current, err := s.GetExpense(ctx, ownerID, id)
	if err != nil {
		return core.Expense{}, err
	}
	updated := patch.Apply(current)
	if err := updated.Validate(); err != nil {
		return core.Expense{}, err
	}
	updated.UpdatedAt = at

	res, err := s.coll.ReplaceOne(ctx, ownedBy(ownerID, id), toDoc(updated))
	if err != nil {
		return core.Expense{}, fmt.Errorf("replace expense %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return core.Expense{}, storage.ErrNotFound
	}
	return updated, nil
}

func (s *Store) DeleteExpense(ctx context.Context, ownerID, id string) error {
	res, err := s.coll.DeleteOne(ctx, ownedBy(ownerID, id))
	if err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) Close() error {
	if s.closeFn == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.closeFn(ctx)
}

// Ping reports whether the server is reachable. Stores built with New
// always report ready.
func (s *Store) Ping(ctx context.Context) error {
	if s.pingFn == nil {
		return nil
	}
	return s.pingFn(ctx)
}
