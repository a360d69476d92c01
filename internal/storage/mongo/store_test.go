package mongo

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"gastos/internal/core"
	"gastos/internal/storage"
	"gastos/internal/storage/storagetest"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// fakeCollection understands the filter shapes Store sends.
type fakeCollection struct {
	mu   sync.Mutex
	docs map[string]expenseDoc

	findErr error
}

func newFakeCollection() *fakeCollection {
	return &fakeCollection{docs: map[string]expenseDoc{}}
}

func (f *fakeCollection) matches(d expenseDoc, filter interface{}) bool {
	m, ok := filter.(bson.M)
	if !ok {
		return false
	}
	for key, want := range m {
		switch key {
		case "_id":
			if d.ID != want {
				return false
			}
		case "owner_id":
			if d.OwnerID != want {
				return false
			}
		case "day":
			r := want.(bson.M)
			if d.Day < r["$gte"].(string) || d.Day > r["$lte"].(string) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func (f *fakeCollection) InsertOne(_ context.Context, document interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := document.(expenseDoc)
	if _, ok := f.docs[d.ID]; ok {
		return nil, errors.New("duplicate key")
	}
	f.docs[d.ID] = d
	return &mongo.InsertOneResult{InsertedID: d.ID}, nil
}

func (f *fakeCollection) FindOne(_ context.Context, filter interface{}, _ ...*options.FindOneOptions) *mongo.SingleResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.docs {
		if f.matches(d, filter) {
			return mongo.NewSingleResultFromDocument(d, nil, nil)
		}
	}
	return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
}

func (f *fakeCollection) Find(_ context.Context, filter interface{}, _ ...*options.FindOptions) (*mongo.Cursor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	var hits []expenseDoc
	for _, d := range f.docs {
		if f.matches(d, filter) {
			hits = append(hits, d)
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Day != hits[j].Day {
			return hits[i].Day > hits[j].Day
		}
		return hits[i].CreatedAt.After(hits[j].CreatedAt)
	})
	docs := make([]interface{}, 0, len(hits))
	for _, d := range hits {
		docs = append(docs, d)
	}
	return mongo.NewCursorFromDocuments(docs, nil, nil)
}

func (f *fakeCollection) ReplaceOne(_ context.Context, filter interface{}, replacement interface{}, _ ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, d := range f.docs {
		if f.matches(d, filter) {
			f.docs[id] = replacement.(expenseDoc)
			return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
		}
	}
	return &mongo.UpdateResult{}, nil
}

func (f *fakeCollection) DeleteOne(_ context.Context, filter interface{}, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, d := range f.docs {
		if f.matches(d, filter) {
			delete(f.docs, id)
			return &mongo.DeleteResult{DeletedCount: 1}, nil
		}
	}
	return &mongo.DeleteResult{}, nil
}

func TestMongoStoreContract(t *testing.T) {
	storagetest.Run(t, func(*testing.T) storage.ExpenseStore {
		return New(newFakeCollection(), nil)
	})
}

func TestDocumentKeepsDayAndOffset(t *testing.T) {
	art := time.FixedZone("ART", -3*3600)
	e := core.Expense{
		ID:       "e1",
		OwnerID:  "ana",
		Date:     time.Date(2024, 3, 5, 23, 30, 0, 0, art),
		Category: core.Food,
		Amount:   core.Money{Cents: 100},
	}
	d := toDoc(e)
	require.Equal(t, "2024-03-05", d.Day)
	require.Equal(t, "2024-03-05T23:30:00-03:00", d.SpentAt)

	back, err := d.expense()
	require.NoError(t, err)
	require.True(t, e.Date.Equal(back.Date))
	require.Equal(t, "2024-03-05", back.Day().String())

	d.SpentAt = "yesterday"
	_, err = d.expense()
	require.Error(t, err)
}

func TestFetchSurfacesDriverErrors(t *testing.T) {
	coll := newFakeCollection()
	coll.findErr = errors.New("server selection timeout")
	s := New(coll, nil)

	_, err := s.FetchExpensesInRange(context.Background(), "ana", core.DayPeriod(core.NewDate(2024, time.March, 5)))
	require.ErrorIs(t, err, coll.findErr)
}

func TestCloseRunsCloseFn(t *testing.T) {
	called := false
	s := New(newFakeCollection(), func(context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, s.Close())
	require.True(t, called)
}
