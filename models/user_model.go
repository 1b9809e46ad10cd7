package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultProfilePhoto = "default-profile.jpg"
	DefaultCoverPhoto   = "default-cover.jpg"
)

type User struct {
	ID               primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Username         string               `json:"username" bson:"username"`
	Email            string               `json:"email" bson:"email"`
	PasswordHash     string               `json:"-" bson:"password_hash"`
	Bio              string               `json:"bio" bson:"bio"`
	Location         string               `json:"location" bson:"location"`
	ProfilePhoto     string               `json:"profilePhoto" bson:"profile_photo"`
	CoverPhoto       string               `json:"coverPhoto" bson:"cover_photo"`
	Interests        []string             `json:"interests" bson:"interests"`
	VisitedCountries []string             `json:"visitedCountries" bson:"visited_countries"`
	BucketList       []string             `json:"bucketList" bson:"bucket_list"`
	Followers        []primitive.ObjectID `json:"followers" bson:"followers"`
	Following        []primitive.ObjectID `json:"following" bson:"following"`
	CreatedAt        time.Time            `json:"createdAt" bson:"created_at"`
	UpdatedAt        time.Time            `json:"updatedAt" bson:"updated_at"`
}

// IsFollowing reports whether u has target in its following list.
func (u *User) IsFollowing(target primitive.ObjectID) bool {
	for _, id := range u.Following {
		if id == target {
			return true
		}
	}
	return false
}

// HasFollower reports whether follower is in u's followers list.
func (u *User) HasFollower(follower primitive.ObjectID) bool {
	for _, id := range u.Followers {
		if id == follower {
			return true
		}
	}
	return false
}

// Profile is the public view of a user. It never carries the credential.
type Profile struct {
	ID               primitive.ObjectID   `json:"id"`
	Username         string               `json:"username"`
	Email            string               `json:"email"`
	Bio              string               `json:"bio"`
	Location         string               `json:"location"`
	ProfilePhoto     string               `json:"profilePhoto"`
	CoverPhoto       string               `json:"coverPhoto"`
	Interests        []string             `json:"interests"`
	VisitedCountries []string             `json:"visitedCountries"`
	BucketList       []string             `json:"bucketList"`
	Followers        []primitive.ObjectID `json:"followers"`
	Following        []primitive.ObjectID `json:"following"`
	FollowersCount   int                  `json:"followersCount"`
	FollowingCount   int                  `json:"followingCount"`
	CreatedAt        time.Time            `json:"createdAt"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		Bio:              u.Bio,
		Location:         u.Location,
		ProfilePhoto:     u.ProfilePhoto,
		CoverPhoto:       u.CoverPhoto,
		Interests:        nonNil(u.Interests),
		VisitedCountries: nonNil(u.VisitedCountries),
		BucketList:       nonNil(u.BucketList),
		Followers:        nonNilIDs(u.Followers),
		Following:        nonNilIDs(u.Following),
		FollowersCount:   len(u.Followers),
		FollowingCount:   len(u.Following),
		CreatedAt:        u.CreatedAt,
	}
}

// UserSummary is what login and registration hand back to the client.
type UserSummary struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Email    string             `json:"email"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Email: u.Email}
}

// ProfileUpdate holds the fields of a partial profile update. A nil field is
// left untouched.
type ProfileUpdate struct {
	Bio              *string   `json:"bio" validate:"omitempty,max=500"`
	Location         *string   `json:"location" validate:"omitempty,max=200"`
	Interests        *[]string `json:"interests"`
	VisitedCountries *[]string `json:"visitedCountries"`
	BucketList       *[]string `json:"bucketList"`
	ProfilePhoto     *string   `json:"profilePhoto"`
	CoverPhoto       *string   `json:"coverPhoto"`
}

func (p ProfileUpdate) IsEmpty() bool {
	return p.Bio == nil && p.Location == nil && p.Interests == nil && p.VisitedCountries == nil &&
		p.BucketList == nil && p.ProfilePhoto == nil && p.CoverPhoto == nil
}

// Apply copies the set fields of p onto u.
func (p ProfileUpdate) Apply(u *User) {
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.Interests != nil {
		u.Interests = *p.Interests
	}
	if p.VisitedCountries != nil {
		u.VisitedCountries = *p.VisitedCountries
	}
	if p.BucketList != nil {
		u.BucketList = *p.BucketList
	}
	if p.ProfilePhoto != nil {
		u.ProfilePhoto = *p.ProfilePhoto
	}
	if p.CoverPhoto != nil {
		u.CoverPhoto = *p.CoverPhoto
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilIDs(s []primitive.ObjectID) []primitive.ObjectID {
	if s == nil {
		return []primitive.ObjectID{}
	}
	return s
}
