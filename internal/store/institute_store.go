// Package store is the document-store gateway. Every collection is tenant
// partitioned: documents carry an institute field and all queries filter on
// it. The store is authoritative; the in-memory cache layered above it is a
// read-through, write-invalidate shadow.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ridemap/admin-server/internal/models"
)

// ErrNotFound is returned for lookups that match no document.
var ErrNotFound = errors.New("document not found")

// Gateway is the CRUD surface against the document store.
type Gateway interface {
	Departments(ctx context.Context, institute string) ([]string, error)
	Busses(ctx context.Context, institute string) ([]string, error)
	AddDepartment(ctx context.Context, institute, name string) error
	RemoveDepartment(ctx context.Context, institute, name string) error
	AddBus(ctx context.Context, institute, busNo string) error
	RemoveBus(ctx context.Context, institute, busNo string) error

	Admins(ctx context.Context, institute string) ([]models.AdminRecord, error)
	AdminByID(ctx context.Context, institute, uid string) (*models.AdminRecord, error)
	TouchAdminLogin(ctx context.Context, institute, uid string, at time.Time) error

	Users(ctx context.Context, institute string) ([]models.UserRecord, error)
	UsersByBus(ctx context.Context, institute, busNo string) ([]models.UserRecord, error)
	UserByEnrollNo(ctx context.Context, institute, enrollNo string) (*models.UserRecord, error)
	SetUserBus(ctx context.Context, institute, uid, busNo string) error
	CountUsersByBus(ctx context.Context, institute, busNo string) (int64, error)
	CountUsersByGender(ctx context.Context, institute, gender string) (int64, error)
	CountUsers(ctx context.Context, institute string) (int64, error)

	ReportedUsers(ctx context.Context, institute string) ([]models.ReportedUser, error)
	UpsertReportedUser(ctx context.Context, report models.ReportedUser) error
}

// MongoGateway implements Gateway on MongoDB.
type MongoGateway struct {
	institutes *mongo.Collection
	admins     *mongo.Collection
	users      *mongo.Collection
	unknown    *mongo.Collection
}

func NewMongoGateway(database *mongo.Database) *MongoGateway {
	return &MongoGateway{
		institutes: database.Collection("institutes"),
		admins:     database.Collection("admins"),
		users:      database.Collection("users"),
		unknown:    database.Collection("unknown_users"),
	}
}

// instituteDoc is the per-institute root document holding the reference
// lists the admin forms use as dropdown options.
type instituteDoc struct {
	ID          string   `bson:"_id"`
	Departments []string `bson:"departments"`
	Busses      []string `bson:"busses"`
}

func (g *MongoGateway) rootDoc(ctx context.Context, institute string) (*instituteDoc, error) {
	var doc instituteDoc
	err := g.institutes.FindOne(ctx, bson.M{"_id": institute}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("institute %q: %w", institute, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch institute %q: %w", institute, err)
	}
	return &doc, nil
}

func (g *MongoGateway) Departments(ctx context.Context, institute string) ([]string, error) {
	doc, err := g.rootDoc(ctx, institute)
	if err != nil {
		return nil, err
	}
	return doc.Departments, nil
}

func (g *MongoGateway) Busses(ctx context.Context, institute string) ([]string, error) {
	doc, err := g.rootDoc(ctx, institute)
	if err != nil {
		return nil, err
	}
	return doc.Busses, nil
}

// appendToList uses $addToSet so repeated adds of the same value stay a
// no-op, matching the idempotent-union contract of the reference lists.
func (g *MongoGateway) appendToList(ctx context.Context, institute, field, value string) error {
	result, err := g.institutes.UpdateOne(ctx,
		bson.M{"_id": institute},
		bson.M{"$addToSet": bson.M{field: value}},
	)
	if err != nil {
		return fmt.Errorf("append %s to %q: %w", field, institute, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("institute %q: %w", institute, ErrNotFound)
	}
	return nil
}

func (g *MongoGateway) removeFromList(ctx context.Context, institute, field, value string) error {
	result, err := g.institutes.UpdateOne(ctx,
		bson.M{"_id": institute},
		bson.M{"$pull": bson.M{field: value}},
	)
	if err != nil {
		return fmt.Errorf("remove %s from %q: %w", field, institute, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("institute %q: %w", institute, ErrNotFound)
	}
	return nil
}

func (g *MongoGateway) AddDepartment(ctx context.Context, institute, name string) error {
	return g.appendToList(ctx, institute, "departments", name)
}

func (g *MongoGateway) RemoveDepartment(ctx context.Context, institute, name string) error {
	return g.removeFromList(ctx, institute, "departments", name)
}

func (g *MongoGateway) AddBus(ctx context.Context, institute, busNo string) error {
	return g.appendToList(ctx, institute, "busses", busNo)
}

func (g *MongoGateway) RemoveBus(ctx context.Context, institute, busNo string) error {
	return g.removeFromList(ctx, institute, "busses", busNo)
}

// Admins lists an institute's admins, excluding soft-deleted records.
func (g *MongoGateway) Admins(ctx context.Context, institute string) ([]models.AdminRecord, error) {
	cursor, err := g.admins.Find(ctx, bson.M{
		"institute": institute,
		"isHided":   bson.M{"$ne": true},
	})
	if err != nil {
		return nil, fmt.Errorf("list admins for %q: %w", institute, err)
	}
	defer cursor.Close(ctx)

	var admins []models.AdminRecord
	if err := cursor.All(ctx, &admins); err != nil {
		return nil, fmt.Errorf("decode admins for %q: %w", institute, err)
	}
	return admins, nil
}

func (g *MongoGateway) AdminByID(ctx context.Context, institute, uid string) (*models.AdminRecord, error) {
	var admin models.AdminRecord
	err := g.admins.FindOne(ctx, bson.M{"_id": uid, "institute": institute}).Decode(&admin)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("admin %q: %w", uid, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch admin %q: %w", uid, err)
	}
	return &admin, nil
}

func (g *MongoGateway) TouchAdminLogin(ctx context.Context, institute, uid string, at time.Time) error {
	_, err := g.admins.UpdateOne(ctx,
		bson.M{"_id": uid, "institute": institute},
		bson.M{"$set": bson.M{"lastLoginAt": at}},
	)
	if err != nil {
		return fmt.Errorf("touch lastLoginAt for %q: %w", uid, err)
	}
	return nil
}

func (g *MongoGateway) findUsers(ctx context.Context, filter bson.M) ([]models.UserRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := g.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.UserRecord
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (g *MongoGateway) Users(ctx context.Context, institute string) ([]models.UserRecord, error) {
	return g.findUsers(ctx, bson.M{"institute": institute})
}

func (g *MongoGateway) UsersByBus(ctx context.Context, institute, busNo string) ([]models.UserRecord, error) {
	return g.findUsers(ctx, bson.M{"institute": institute, "busNo": busNo})
}

// UserByEnrollNo is an equality lookup; enrollNo is unique per institute.
func (g *MongoGateway) UserByEnrollNo(ctx context.Context, institute, enrollNo string) (*models.UserRecord, error) {
	var user models.UserRecord
	err := g.users.FindOne(ctx, bson.M{"institute": institute, "enrollNo": enrollNo}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("enrollNo %q: %w", enrollNo, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch user by enrollNo %q: %w", enrollNo, err)
	}
	return &user, nil
}

func (g *MongoGateway) SetUserBus(ctx context.Context, institute, uid, busNo string) error {
	result, err := g.users.UpdateOne(ctx,
		bson.M{"_id": uid, "institute": institute},
		bson.M{"$set": bson.M{"busNo": busNo}},
	)
	if err != nil {
		return fmt.Errorf("set busNo for %q: %w", uid, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user %q: %w", uid, ErrNotFound)
	}
	return nil
}

func (g *MongoGateway) CountUsersByBus(ctx context.Context, institute, busNo string) (int64, error) {
	count, err := g.users.CountDocuments(ctx, bson.M{"institute": institute, "busNo": busNo})
	if err != nil {
		return 0, fmt.Errorf("count users on %q: %w", busNo, err)
	}
	return count, nil
}

func (g *MongoGateway) CountUsersByGender(ctx context.Context, institute, gender string) (int64, error) {
	count, err := g.users.CountDocuments(ctx, bson.M{"institute": institute, "gender": gender})
	if err != nil {
		return 0, fmt.Errorf("count %s users: %w", gender, err)
	}
	return count, nil
}

func (g *MongoGateway) CountUsers(ctx context.Context, institute string) (int64, error) {
	count, err := g.users.CountDocuments(ctx, bson.M{"institute": institute})
	if err != nil {
		return 0, fmt.Errorf("count users for %q: %w", institute, err)
	}
	return count, nil
}

// ReportedUsers lists reports newest first.
func (g *MongoGateway) ReportedUsers(ctx context.Context, institute string) ([]models.ReportedUser, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := g.unknown.Find(ctx, bson.M{"institute": institute}, opts)
	if err != nil {
		return nil, fmt.Errorf("list reports for %q: %w", institute, err)
	}
	defer cursor.Close(ctx)

	var reports []models.ReportedUser
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("decode reports for %q: %w", institute, err)
	}
	return reports, nil
}

// UpsertReportedUser writes a report keyed deterministically by
// (institute, enrollNo), so concurrent reports of the same enrollment number
// collapse into one document instead of racing query-then-insert.
func (g *MongoGateway) UpsertReportedUser(ctx context.Context, report models.ReportedUser) error {
	opts := options.Replace().SetUpsert(true)
	_, err := g.unknown.ReplaceOne(ctx, bson.M{"_id": report.ID}, report, opts)
	if err != nil {
		return fmt.Errorf("upsert report %q: %w", report.EnrollNo, err)
	}
	return nil
}
