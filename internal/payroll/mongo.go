package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dayflow/internal/store"
)

// slipDoc is the BSON form of Slip; money is stored as Decimal128.
type slipDoc struct {
	ID            string               `bson:"_id"`
	Owner         string               `bson:"owner"`
	Month         string               `bson:"month"`
	Year          int                  `bson:"year"`
	BasicSalary   primitive.Decimal128 `bson:"basicSalary"`
	Allowances    primitive.Decimal128 `bson:"allowances"`
	Deductions    primitive.Decimal128 `bson:"deductions"`
	NetSalary     primitive.Decimal128 `bson:"netSalary"`
	WorkingDays   int                  `bson:"workingDays"`
	PresentDays   int                  `bson:"presentDays"`
	Status        string               `bson:"status"`
	PaymentDate   *time.Time           `bson:"paymentDate,omitempty"`
	GeneratedDate time.Time            `bson:"generatedDate"`
	CreatedAt     time.Time            `bson:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(d.String())
}

func toDoc(s Slip) (slipDoc, error) {
	doc := slipDoc{
		ID: s.ID, Owner: s.Owner, Month: s.Month, Year: s.Year,
		WorkingDays: s.WorkingDays, PresentDays: s.PresentDays, Status: s.Status,
		PaymentDate: s.PaymentDate, GeneratedDate: s.GeneratedDate, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
	}
	var err error
	if doc.BasicSalary, err = toDecimal128(s.BasicSalary); err != nil {
		return slipDoc{}, fmt.Errorf("basicSalary: %w", err)
	}
	if doc.Allowances, err = toDecimal128(s.Allowances); err != nil {
		return slipDoc{}, fmt.Errorf("allowances: %w", err)
	}
	if doc.Deductions, err = toDecimal128(s.Deductions); err != nil {
		return slipDoc{}, fmt.Errorf("deductions: %w", err)
	}
	if doc.NetSalary, err = toDecimal128(s.NetSalary); err != nil {
		return slipDoc{}, fmt.Errorf("netSalary: %w", err)
	}
	return doc, nil
}

func (d slipDoc) slip() (Slip, error) {
	s := Slip{
		ID: d.ID, Owner: d.Owner, Month: d.Month, Year: d.Year,
		WorkingDays: d.WorkingDays, PresentDays: d.PresentDays, Status: d.Status,
		PaymentDate: d.PaymentDate, GeneratedDate: d.GeneratedDate, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}
	var err error
	if s.BasicSalary, err = fromDecimal128(d.BasicSalary); err != nil {
		return Slip{}, err
	}
	if s.Allowances, err = fromDecimal128(d.Allowances); err != nil {
		return Slip{}, err
	}
	if s.Deductions, err = fromDecimal128(d.Deductions); err != nil {
		return Slip{}, err
	}
	if s.NetSalary, err = fromDecimal128(d.NetSalary); err != nil {
		return Slip{}, err
	}
	return s, nil
}

// MongoStore persists slips in the "payrolls" collection.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection("payrolls")}
}

func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "month", Value: 1}, {Key: "year", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("owner_period_unique"),
	})
	return err
}

func (s *MongoStore) Insert(ctx context.Context, slip Slip) (Slip, error) {
	doc, err := toDoc(slip)
	if err != nil {
		return Slip{}, err
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if store.IsDuplicateKey(err) {
			return Slip{}, ErrDuplicate
		}
		return Slip{}, err
	}
	return slip, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (Slip, error) {
	var doc slipDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Slip{}, ErrNotFound
	}
	if err != nil {
		return Slip{}, err
	}
	return doc.slip()
}

func (s *MongoStore) ListByOwner(ctx context.Context, owner string) ([]Slip, error) {
	cur, err := s.coll.Find(ctx, bson.M{"owner": owner},
		options.Find().SetSort(bson.D{{Key: "year", Value: -1}, {Key: "month", Value: -1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []slipDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]Slip, 0, len(docs))
	for _, d := range docs {
		slip, err := d.slip()
		if err != nil {
			return nil, err
		}
		out = append(out, slip)
	}
	return out, nil
}
