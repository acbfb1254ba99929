package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is a document in the users collection.
type User struct {
	ID       primitive.ObjectID `json:"id"              bson:"_id,omitempty"`
	Name     string             `json:"name"            bson:"name"`
	Email    string             `json:"email"           bson:"email"`
	Password string             `json:"-"               bson:"password"` // never serialize
	Token    string             `json:"token,omitempty" bson:"token"`
}

// Public returns a copy safe to hand to other clients: no session token.
func (u User) Public() User {
	u.Token = ""
	return u
}

// RegisterRequest is the JSON body for POST /api/users/newUser.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the JSON body for POST /api/users/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Email string `json:"email"`
	Token string `json:"token"`
}
