// Package repository holds the persistence interfaces used by the services
// together with their MongoDB and in-memory implementations.
package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"travel-blog-server/models"
)

// timestamp matches the millisecond precision BSON dates are stored with.
func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

var (
	ErrNotFound  = errors.New("repository: document not found")
	ErrDuplicate = errors.New("repository: duplicate key")
)

// UserRepository is the credential store.
type UserRepository interface {
	// Create inserts u and sets its ID.
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	// FindByIDs returns the users that exist among ids, in no particular order.
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error)

	// Edge writes touch a single document each.
	AddFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error
	AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) error
	RemoveFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error
	RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) error
}

// PostRepository is the content store.
type PostRepository interface {
	// Create inserts p and sets its ID.
	Create(ctx context.Context, p *models.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	// List returns the posts matching filter, newest first.
	List(ctx context.Context, filter models.PostFilter) ([]models.Post, error)
	Update(ctx context.Context, id primitive.ObjectID, update models.PostUpdate) (*models.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// CountByCountry and CountByRegion skip posts without the field and sort
	// by count descending, then name ascending.
	CountByCountry(ctx context.Context) ([]models.CountryCount, error)
	CountByRegion(ctx context.Context) ([]models.RegionCount, error)
}

var (
	_ UserRepository = (*MongoUserRepository)(nil)
	_ UserRepository = (*MemoryUserRepository)(nil)
	_ PostRepository = (*MongoPostRepository)(nil)
	_ PostRepository = (*MemoryPostRepository)(nil)
)
