package clubs

import (
	"context"
	"errors"

	"github.com/smartcampus/portal/backend/internal/apperrors"
	"github.com/smartcampus/portal/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository persists clubs. Get, Update and membership changes return
// (nil, nil) for unknown ids; Create and Update report a taken name as
// ErrDuplicate.
type Repository interface {
	Create(ctx context.Context, c *models.Club) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Club, error)
	List(ctx context.Context) ([]*models.Club, error)
	Update(ctx context.Context, id primitive.ObjectID, set Patch) (*models.Club, error)
	AddMember(ctx context.Context, id, member primitive.ObjectID) (*models.Club, error)
	RemoveMember(ctx context.Context, id, member primitive.ObjectID) (*models.Club, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

var errNameTaken = apperrors.New(apperrors.ErrDuplicate, "Club name already exists")

// MongoRepository stores clubs in a collection with a unique name index.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

// EnsureIndexes creates the unique name index.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)}
	_, err := r.col.Indexes().CreateOne(ctx, idx)
	return err
}

func (r *MongoRepository) Create(ctx context.Context, c *models.Club) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errNameTaken
		}
		return err
	}
	return nil
}

func (r *MongoRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Club, error) {
	var c models.Club
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoRepository) List(ctx context.Context) ([]*models.Club, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Club{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepository) findAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Club, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.Club
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, errNameTaken
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoRepository) Update(ctx context.Context, id primitive.ObjectID, p Patch) (*models.Club, error) {
	set := bson.M{}
	if p.Name != "" {
		set["name"] = p.Name
	}
	if p.Description != "" {
		set["description"] = p.Description
	}
	if p.Contact != "" {
		set["contact"] = p.Contact
	}
	if len(set) == 0 {
		return r.Get(ctx, id)
	}
	return r.findAndUpdate(ctx, id, bson.M{"$set": set})
}

func (r *MongoRepository) AddMember(ctx context.Context, id, member primitive.ObjectID) (*models.Club, error) {
	return r.findAndUpdate(ctx, id, bson.M{"$addToSet": bson.M{"members": member}})
}

func (r *MongoRepository) RemoveMember(ctx context.Context, id, member primitive.ObjectID) (*models.Club, error) {
	return r.findAndUpdate(ctx, id, bson.M{"$pull": bson.M{"members": member}})
}

func (r *MongoRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
