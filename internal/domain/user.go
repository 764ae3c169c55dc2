package domain

import "context"

// User is the persisted user record, read only to resolve display identities.
type User struct {
	ID          string
	Username    string
	DisplayName string
	Active      bool
}

// UserRepository abstracts user persistence.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (User, error)
}
