package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pls-platform/dashboard/internal/core/domain"
)

const auditCollection = "login_events"

type MongoAuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *MongoAuditRepository {
	return &MongoAuditRepository{coll: db.Collection(auditCollection)}
}

type mongoLoginEvent struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Kind       string             `bson:"kind"`
	Username   string             `bson:"username"`
	Role       string             `bson:"role,omitempty"`
	Reason     string             `bson:"reason,omitempty"`
	RemoteAddr string             `bson:"remote_addr,omitempty"`
	UserAgent  string             `bson:"user_agent,omitempty"`
	RequestID  string             `bson:"request_id,omitempty"`
	OccurredAt time.Time          `bson:"occurred_at"`
}

// EnsureIndexes creates the lookup index used when reviewing a user's history.
func (r *MongoAuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}, {Key: "occurred_at", Value: -1}},
		Options: options.Index().SetName("username_occurred_at"),
	})
	if err != nil {
		return fmt.Errorf("create audit index: %w", err)
	}
	return nil
}

func (r *MongoAuditRepository) Insert(ctx context.Context, ev domain.LoginEvent) error {
	doc := mongoLoginEvent{
		Kind:       string(ev.Kind),
		Username:   ev.Username,
		Role:       string(ev.Role),
		Reason:     string(ev.Reason),
		RemoteAddr: ev.RemoteAddr,
		UserAgent:  ev.UserAgent,
		RequestID:  ev.RequestID,
		OccurredAt: ev.OccurredAt.UTC(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert login event: %w", err)
	}
	return nil
}

// RecentByUsername returns the newest events for username, newest first.
func (r *MongoAuditRepository) RecentByUsername(ctx context.Context, username string, limit int64) ([]domain.LoginEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: -1}}).SetLimit(limit)
	cur, err := r.coll.Find(ctx, bson.M{"username": username}, opts)
	if err != nil {
		return nil, fmt.Errorf("find login events: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoLoginEvent
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode login events: %w", err)
	}

	out := make([]domain.LoginEvent, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.LoginEvent{
			Kind:       domain.LoginEventKind(d.Kind),
			Username:   d.Username,
			Role:       domain.Role(d.Role),
			Reason:     domain.AuthReason(d.Reason),
			RemoteAddr: d.RemoteAddr,
			UserAgent:  d.UserAgent,
			RequestID:  d.RequestID,
			OccurredAt: d.OccurredAt.UTC(),
		})
	}
	return out, nil
}
