package storage

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harikeshranjan/TodoX/internal/core"
)

// MongoStore implements core.Store on a MongoDB database. Record IDs
// are ObjectID hex strings at the core boundary.
type MongoStore struct {
	client *mongo.Client
	users  *mongo.Collection
	tasks  *mongo.Collection
}

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type taskDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	DueDate   time.Time          `bson:"dueDate"`
	Priority  string             `bson:"priority"`
	Tags      []string           `bson:"tags"`
	Completed bool               `bson:"completed"`
	UserID    primitive.ObjectID `bson:"userId"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

// NewMongoStore connects to MongoDB and ensures the unique indexes on
// user email and username.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetMaxPoolSize(10))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}

	db := client.Database(database)
	store := &MongoStore{
		client: client,
		users:  db.Collection("users"),
		tasks:  db.Collection("tasks"),
	}
	if err := store.ensureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return store, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return err
	}
	_, err = s.tasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "dueDate", Value: 1}},
	})
	return err
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) InsertUser(ctx context.Context, u *core.User) error {
	doc := userDoc{
		ID:        primitive.NewObjectID(),
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.PasswordHash,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return core.ErrDuplicate
		}
		return err
	}
	u.ID = doc.ID.Hex()
	return nil
}

func (s *MongoStore) UserByID(ctx context.Context, id string) (*core.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, core.ErrNotFound
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) UserByEmail(ctx context.Context, email string) (*core.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *MongoStore) UserByUsername(ctx context.Context, username string) (*core.User, error) {
	return s.findUser(ctx, bson.M{"username": username})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*core.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &core.User{
		ID:           doc.ID.Hex(),
		Username:     doc.Username,
		Email:        doc.Email,
		PasswordHash: doc.Password,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}, nil
}

func (s *MongoStore) InsertTask(ctx context.Context, t *core.Task) error {
	owner, err := primitive.ObjectIDFromHex(t.UserID)
	if err != nil {
		return err
	}
	doc := taskDoc{
		ID:        primitive.NewObjectID(),
		Title:     t.Title,
		DueDate:   t.DueDate,
		Priority:  t.Priority,
		Tags:      t.Tags,
		Completed: t.Completed,
		UserID:    owner,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	if _, err := s.tasks.InsertOne(ctx, doc); err != nil {
		return err
	}
	t.ID = doc.ID.Hex()
	return nil
}

func (s *MongoStore) TaskByID(ctx context.Context, id string) (*core.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, core.ErrNotFound
	}
	var doc taskDoc
	if err := s.tasks.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	t := doc.toTask()
	return &t, nil
}

func (s *MongoStore) TasksByOwner(ctx context.Context, userID string, f core.TaskFilter) ([]core.Task, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, core.ErrNotFound
	}

	filter := bson.M{"userId": oid}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.Tag != "" {
		filter["tags"] = f.Tag
	}
	if f.DueFrom != nil || f.DueBefore != nil {
		due := bson.M{}
		if f.DueFrom != nil {
			due["$gte"] = *f.DueFrom
		}
		if f.DueBefore != nil {
			due["$lt"] = *f.DueBefore
		}
		filter["dueDate"] = due
	}
	if f.Completed != nil {
		filter["completed"] = *f.Completed
	}

	opts := options.Find()
	if f.SortByDue {
		opts.SetSort(bson.D{{Key: "dueDate", Value: 1}})
	}

	cursor, err := s.tasks.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []core.Task
	for cursor.Next(ctx) {
		var doc taskDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		tasks = append(tasks, doc.toTask())
	}
	return tasks, cursor.Err()
}

func (s *MongoStore) DistinctTags(ctx context.Context, userID string) ([]string, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, core.ErrNotFound
	}
	values, err := s.tasks.Distinct(ctx, "tags", bson.M{"userId": oid})
	if err != nil {
		return nil, err
	}
	tags := make([]string, 0, len(values))
	for _, v := range values {
		if tag, ok := v.(string); ok {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

func (s *MongoStore) UpdateTask(ctx context.Context, t *core.Task) error {
	oid, err := primitive.ObjectIDFromHex(t.ID)
	if err != nil {
		return core.ErrNotFound
	}
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	res, err := s.tasks.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"title":     t.Title,
		"dueDate":   t.DueDate,
		"priority":  t.Priority,
		"tags":      tags,
		"completed": t.Completed,
		"updatedAt": t.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteTask(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return core.ErrNotFound
	}
	res, err := s.tasks.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (d taskDoc) toTask() core.Task {
	return core.Task{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		DueDate:   d.DueDate,
		Priority:  d.Priority,
		Tags:      d.Tags,
		Completed: d.Completed,
		UserID:    d.UserID.Hex(),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
