package store

import "errors"

var (
	ErrNotFound      = errors.New("store: document not found")
	ErrDuplicate     = errors.New("store: duplicate key")
	ErrAlreadyMember = errors.New("store: already a member")
)
