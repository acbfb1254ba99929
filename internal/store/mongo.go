package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nxsg/chat-api/internal/models"
)

const (
	usersCollection = "users"
	chatsCollection = "chats"
)

// MongoStore persists users and chats in MongoDB.
type MongoStore struct {
	users *mongo.Collection
	chats *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		users: db.Collection(usersCollection),
		chats: db.Collection(chatsCollection),
	}
}

// EnsureIndexes creates the unique indexes backing email and chatName lookups.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	if _, err := s.chats.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "chatName", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("chats index: %w", err)
	}
	return nil
}

// ── users ────────────────────────────────────────────────────

func (s *MongoStore) InsertUser(ctx context.Context, u *models.User) error {
	res, err := s.users.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("mongo insert user: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo find user: %w", err)
	}
	return &u, nil
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	cur, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongo list users: %w", err)
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("mongo list users: %w", err)
	}
	return users, nil
}

func (s *MongoStore) SetUserToken(ctx context.Context, email, token string) error {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"token": token}},
	)
	if err != nil {
		return fmt.Errorf("mongo set token: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearUserToken empties the stored token only if it still equals token.
func (s *MongoStore) ClearUserToken(ctx context.Context, email, token string) error {
	_, err := s.users.UpdateOne(ctx,
		bson.M{"email": email, "token": token},
		bson.M{"$set": bson.M{"token": ""}},
	)
	if err != nil {
		return fmt.Errorf("mongo clear token: %w", err)
	}
	return nil
}

// ── chats ────────────────────────────────────────────────────

func (s *MongoStore) InsertChat(ctx context.Context, c *models.Chat) error {
	if c.Messages == nil {
		c.Messages = []models.Message{}
	}
	res, err := s.chats.InsertOne(ctx, c)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("mongo insert chat: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid
	}
	return nil
}

func (s *MongoStore) FindChatByName(ctx context.Context, name string) (*models.Chat, error) {
	var c models.Chat
	if err := s.chats.FindOne(ctx, bson.M{"chatName": name}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo find chat: %w", err)
	}
	return &c, nil
}

func (s *MongoStore) ListChats(ctx context.Context) ([]models.Chat, error) {
	cur, err := s.chats.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongo list chats: %w", err)
	}
	defer cur.Close(ctx)

	var chats []models.Chat
	if err := cur.All(ctx, &chats); err != nil {
		return nil, fmt.Errorf("mongo list chats: %w", err)
	}
	return chats, nil
}

// AddChatMember appends email to the chat's users in a single conditional
// update and returns the updated chat.
func (s *MongoStore) AddChatMember(ctx context.Context, name, email string) (*models.Chat, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.Chat
	err := s.chats.FindOneAndUpdate(ctx,
		bson.M{"chatName": name, "users": bson.M{"$ne": email}},
		bson.M{"$push": bson.M{"users": email}},
		opts,
	).Decode(&c)
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("mongo add member: %w", err)
	}

	// No match: either the chat is missing or email is already in it.
	n, err := s.chats.CountDocuments(ctx, bson.M{"chatName": name})
	if err != nil {
		return nil, fmt.Errorf("mongo add member: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrAlreadyMember
}

// AppendMessage pushes msg onto the chat's messages if msg.Creator is a
// member. A missing chat and a non-member creator both yield ErrNotFound.
func (s *MongoStore) AppendMessage(ctx context.Context, name string, msg models.Message) error {
	res, err := s.chats.UpdateOne(ctx,
		bson.M{"chatName": name, "users": msg.Creator},
		bson.M{"$push": bson.M{"messages": msg}},
	)
	if err != nil {
		return fmt.Errorf("mongo append message: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
