package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRegionValid(t *testing.T) {
	for _, r := range Regions {
		if !r.Valid() {
			t.Errorf("%q should be valid", r)
		}
	}
	for _, r := range []Region{"", "europe", "Oceania"} {
		if r.Valid() {
			t.Errorf("%q should not be valid", r)
		}
	}
}

func TestPostUpdateApply(t *testing.T) {
	p := Post{Title: "old", Summary: "keep", Location: Location{Country: "France", Region: RegionEurope}}
	title := "new"
	region := RegionAsia
	PostUpdate{Title: &title, Region: &region}.Apply(&p)

	if p.Title != "new" || p.Summary != "keep" {
		t.Errorf("unexpected title/summary: %q %q", p.Title, p.Summary)
	}
	if p.Location.Region != RegionAsia || p.Location.Country != "France" {
		t.Errorf("unexpected location: %+v", p.Location)
	}
}

func TestParseImageKind(t *testing.T) {
	tests := map[string]ImageKind{
		"post":           ImageKindPost,
		"profilePhoto":   ImageKindProfilePhoto,
		"profilePicture": ImageKindProfilePhoto,
		"coverPicture":   ImageKindCoverPhoto,
	}
	for in, want := range tests {
		got, ok := ParseImageKind(in)
		if !ok || got != want {
			t.Errorf("ParseImageKind(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := ParseImageKind("avatar"); ok {
		t.Error("unknown kind accepted")
	}
}

func TestUserFollowHelpers(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	u := User{Following: []primitive.ObjectID{a}, Followers: []primitive.ObjectID{b}}
	if !u.IsFollowing(a) || u.IsFollowing(b) {
		t.Error("IsFollowing mismatch")
	}
	if !u.HasFollower(b) || u.HasFollower(a) {
		t.Error("HasFollower mismatch")
	}
	p := u.Profile()
	if p.FollowingCount != 1 || p.FollowersCount != 1 {
		t.Errorf("counts = %d/%d", p.FollowingCount, p.FollowersCount)
	}
	if p.Interests == nil {
		t.Error("profile slices should never be nil")
	}
}
