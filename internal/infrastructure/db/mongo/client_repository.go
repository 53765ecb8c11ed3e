package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clienttracker/crm-system/internal/core/domain"
	"github.com/clienttracker/crm-system/internal/core/ports"
)

const collectionClients = "clients"

// ClientRepository implements ports.ClientRepository on MongoDB. Documents
// are addressed by the string "id" field, not the native _id.
type ClientRepository struct {
	col *mongo.Collection
}

func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{col: db.Collection(collectionClients)}
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, c)
	return err
}

func (r *ClientRepository) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var c domain.Client
	if err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) List(ctx context.Context, filter ports.ClientFilter) ([]*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.OwnerID != "" {
		query["assigned_bde"] = filter.OwnerID
	}
	if filter.Stage != 0 {
		query["stage"] = filter.Stage
	}
	if filter.Search != "" {
		query["company_name"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
	}
	if filter.Dropped != nil {
		query["is_dropped"] = *filter.Dropped
	}

	cur, err := r.col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var clients []*domain.Client
	if err := cur.All(ctx, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *ClientRepository) Update(ctx context.Context, id string, patch ports.ClientPatch) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"last_interaction": time.Now().UTC()}
	setIf := func(key string, v any, ok bool) {
		if ok {
			set[key] = v
		}
	}
	setIf("company_name", deref(patch.CompanyName), patch.CompanyName != nil)
	setIf("contact_name", deref(patch.ContactName), patch.ContactName != nil)
	setIf("email", deref(patch.Email), patch.Email != nil)
	setIf("phone", deref(patch.Phone), patch.Phone != nil)
	setIf("budget", derefF(patch.Budget), patch.Budget != nil)
	setIf("budget_currency", deref(patch.BudgetCurrency), patch.BudgetCurrency != nil)
	setIf("source", deref(patch.Source), patch.Source != nil)
	setIf("referrer", deref(patch.Referrer), patch.Referrer != nil)
	setIf("requirements", deref(patch.Requirements), patch.Requirements != nil)
	setIf("timeline", deref(patch.Timeline), patch.Timeline != nil)
	setIf("decision_maker", deref(patch.DecisionMaker), patch.DecisionMaker != nil)
	setIf("drop_reason", deref(patch.DropReason), patch.DropReason != nil)
	if patch.Stage != nil {
		set["stage"] = *patch.Stage
	}
	if patch.AssignedBDE != nil {
		set["assigned_bde"] = *patch.AssignedBDE
	}
	if patch.IsDropped != nil {
		set["is_dropped"] = *patch.IsDropped
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

// PrependNote inserts the formatted note at position 0 so the sequence stays
// newest first, and refreshes last_interaction.
func (r *ClientRepository) PrependNote(ctx context.Context, id string, note string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$push": bson.M{"notes": bson.M{"$each": bson.A{note}, "$position": 0}},
		"$set":  bson.M{"last_interaction": time.Now().UTC()},
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *ClientRepository) AppendAttachment(ctx context.Context, id string, att domain.Attachment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$push": bson.M{"attachments": att},
		"$set":  bson.M{"last_interaction": time.Now().UTC()},
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *ClientRepository) CountActiveOwnedBy(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{"assigned_bde": userID, "is_dropped": false})
}

func (r *ClientRepository) IDsOwnedBy(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"assigned_bde": userID},
		options.Find().SetProjection(bson.M{"id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []struct {
		ID string `bson:"id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

// EnsureIndexes creates the indexes the list and guard queries rely on.
func (r *ClientRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "assigned_bde", Value: 1}}},
		{Keys: bson.D{{Key: "stage", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefF(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
