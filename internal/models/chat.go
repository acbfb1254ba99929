package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a single chat entry, embedded in its Chat.
type Message struct {
	Date    time.Time `json:"date"    bson:"date"`
	Creator string    `json:"creator" bson:"creator"`
	Message string    `json:"message" bson:"message"`
}

// Chat is a document in the chats collection. Users holds member emails
// with the owner at index 0.
type Chat struct {
	ID       primitive.ObjectID `json:"id"       bson:"_id,omitempty"`
	ChatName string             `json:"chatName" bson:"chatName"`
	Owner    string             `json:"owner"    bson:"owner"`
	Users    []string           `json:"users"    bson:"users"`
	Invite   string             `json:"invite"   bson:"invite"`
	Messages []Message          `json:"messages" bson:"messages"`
}

// HasMember reports whether email is in the chat's member list.
func (c *Chat) HasMember(email string) bool {
	for _, u := range c.Users {
		if u == email {
			return true
		}
	}
	return false
}

// CreateChatRequest is the JSON body for POST /api/chats/newChat. Owner is
// accepted for compatibility and must match the caller when present.
type CreateChatRequest struct {
	ChatName string `json:"chatName"`
	Owner    string `json:"owner"`
}

// AddUserRequest is the JSON body for POST /api/chats/invite/{chatName}.
type AddUserRequest struct {
	UserName string `json:"userName"`
}

// PostMessageRequest is the JSON body for POST /api/chats/messages/{chatName}.
type PostMessageRequest struct {
	Message string `json:"message"`
	Creator string `json:"creator"`
}
