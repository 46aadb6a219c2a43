package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/go-finance-tracker/internal/domain/entity"
	"github.com/oksasatya/go-finance-tracker/internal/domain/repository"
)

// transactionDocument carries both kinds' field names; only the pair that
// belongs to the collection's kind is ever set.
type transactionDocument struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	UserID             primitive.ObjectID `bson:"userId"`
	Amount             float64            `bson:"amount"`
	DateSpent          *time.Time         `bson:"dateSpent,omitempty"`
	DateEarned         *time.Time         `bson:"dateEarned,omitempty"`
	Description        string             `bson:"description,omitempty"`
	Category           string             `bson:"category"`
	Merchant           string             `bson:"merchant,omitempty"`
	Source             string             `bson:"source,omitempty"`
	IsRecurring        bool               `bson:"isRecurring"`
	RecurringFrequency string             `bson:"recurringFrequency,omitempty"`
	StartDate          *time.Time         `bson:"startDate,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt"`
}

func toDocument(kind entity.Kind, t *entity.Transaction, owner primitive.ObjectID) transactionDocument {
	d := transactionDocument{
		UserID:             owner,
		Amount:             t.Amount,
		Description:        t.Description,
		Category:           t.Category,
		IsRecurring:        t.IsRecurring,
		RecurringFrequency: t.RecurringFrequency,
		StartDate:          t.StartDate,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
	date := t.Date
	if kind.DateField == entity.IncomeKind.DateField {
		d.DateEarned = &date
		d.Source = t.Counterparty
	} else {
		d.DateSpent = &date
		d.Merchant = t.Counterparty
	}
	return d
}

func (d *transactionDocument) toEntity(kind entity.Kind) entity.Transaction {
	t := entity.Transaction{
		ID:                 d.ID.Hex(),
		OwnerID:            d.UserID.Hex(),
		Amount:             d.Amount,
		Description:        d.Description,
		Category:           d.Category,
		IsRecurring:        d.IsRecurring,
		RecurringFrequency: d.RecurringFrequency,
		StartDate:          d.StartDate,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
	if kind.DateField == entity.IncomeKind.DateField {
		t.Counterparty = d.Source
		if d.DateEarned != nil {
			t.Date = *d.DateEarned
		}
	} else {
		t.Counterparty = d.Merchant
		if d.DateSpent != nil {
			t.Date = *d.DateSpent
		}
	}
	return t
}

// TransactionRepository stores one kind of transaction in its own collection.
type TransactionRepository struct {
	col  *mongo.Collection
	kind entity.Kind
}

func NewTransactionRepository(db *mongo.Database, kind entity.Kind) *TransactionRepository {
	return &TransactionRepository{col: db.Collection(kind.Collection), kind: kind}
}

// EnsureIndexes creates the owner/date index used by listing and summaries.
func (r *TransactionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: r.kind.DateField, Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("%s owner index: %w", r.kind.Collection, err)
	}
	return nil
}

func ownerOID(ownerID string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid owner id %q: %w", ownerID, err)
	}
	return oid, nil
}

func (r *TransactionRepository) Create(ctx context.Context, t *entity.Transaction) error {
	owner, err := ownerOID(t.OwnerID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, toDocument(r.kind, t, owner))
	if err != nil {
		return fmt.Errorf("mongo insert %s: %w", r.kind.Name, err)
	}
	t.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	var doc transactionDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	t := doc.toEntity(r.kind)
	return &t, nil
}

func (r *TransactionRepository) find(ctx context.Context, filter bson.M) ([]entity.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: r.kind.DateField, Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []transactionDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]entity.Transaction, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toEntity(r.kind))
	}
	return out, nil
}

func (r *TransactionRepository) ListByOwner(ctx context.Context, ownerID string) ([]entity.Transaction, error) {
	owner, err := ownerOID(ownerID)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, bson.M{"userId": owner})
}

func (r *TransactionRepository) ListRecurring(ctx context.Context, ownerID string) ([]entity.Transaction, error) {
	owner, err := ownerOID(ownerID)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, bson.M{"userId": owner, "isRecurring": true})
}

// Update replaces the stored document, so fields the entity no longer
// carries (recurringFrequency, startDate) are dropped.
func (r *TransactionRepository) Update(ctx context.Context, t *entity.Transaction) error {
	oid, err := primitive.ObjectIDFromHex(t.ID)
	if err != nil {
		return repository.ErrNotFound
	}
	owner, err := ownerOID(t.OwnerID)
	if err != nil {
		return err
	}
	t.UpdatedAt = time.Now().UTC()
	doc := toDocument(r.kind, t, owner)
	doc.ID = oid
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": oid, "userId": owner}, doc)
	if err != nil {
		return fmt.Errorf("mongo replace %s: %w", r.kind.Name, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongo delete %s: %w", r.kind.Name, err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TransactionRepository) Summarize(ctx context.Context, ownerID string, from, to time.Time) (entity.Summary, error) {
	owner, err := ownerOID(ownerID)
	if err != nil {
		return entity.Summary{}, err
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"userId":         owner,
			r.kind.DateField: bson.M{"$gte": from, "$lte": to},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":         nil,
			"totalAmount": bson.M{"$sum": "$amount"},
			"count":       bson.M{"$sum": 1},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return entity.Summary{}, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		TotalAmount float64 `bson:"totalAmount"`
		Count       int64   `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return entity.Summary{}, err
	}
	if len(rows) == 0 {
		return entity.Summary{}, nil
	}
	return entity.Summary{TotalAmount: rows[0].TotalAmount, Count: rows[0].Count}, nil
}

var _ repository.TransactionRepository = (*TransactionRepository)(nil)
