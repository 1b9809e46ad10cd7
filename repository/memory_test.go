package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"travel-blog-server/models"
)

func seedPosts(t *testing.T, repo PostRepository, posts ...models.Post) []models.Post {
	t.Helper()
	out := make([]models.Post, 0, len(posts))
	for i := range posts {
		p := posts[i]
		if err := repo.Create(context.Background(), &p); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		out = append(out, p)
	}
	return out
}

func TestMemoryPostListFiltersAndOrder(t *testing.T) {
	repo := NewMemoryPostRepository()
	author := primitive.NewObjectID()
	created := seedPosts(t, repo,
		models.Post{Title: "Alps", Categories: []string{"hiking"}, Location: models.Location{Country: "Switzerland", Region: models.RegionEurope}, Author: author},
		models.Post{Title: "Kyoto", Categories: []string{"food"}, Location: models.Location{Country: "Japan", Region: models.RegionAsia}},
		models.Post{Title: "Lisbon", Categories: []string{"food", "city"}, Location: models.Location{Country: "Portugal", Region: models.RegionEurope}},
	)

	tests := []struct {
		name   string
		filter models.PostFilter
		want   []string
	}{
		{"no filter newest first", models.PostFilter{}, []string{"Lisbon", "Kyoto", "Alps"}},
		{"region", models.PostFilter{Region: models.RegionEurope}, []string{"Lisbon", "Alps"}},
		{"category", models.PostFilter{Category: "food"}, []string{"Lisbon", "Kyoto"}},
		{"region and category", models.PostFilter{Region: models.RegionEurope, Category: "food"}, []string{"Lisbon"}},
		{"country", models.PostFilter{Country: "Japan"}, []string{"Kyoto"}},
		{"author", models.PostFilter{Author: author}, []string{"Alps"}},
		{"no match", models.PostFilter{Region: models.RegionAntarctica}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := repo.List(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(posts) != len(tt.want) {
				t.Fatalf("got %d posts, want %d", len(posts), len(tt.want))
			}
			for i, p := range posts {
				if p.Title != tt.want[i] {
					t.Errorf("posts[%d] = %q, want %q", i, p.Title, tt.want[i])
				}
			}
		})
	}

	if created[0].ID.IsZero() {
		t.Error("Create should assign an id")
	}
}

func TestMemoryPostCounts(t *testing.T) {
	repo := NewMemoryPostRepository()
	seedPosts(t, repo,
		models.Post{Location: models.Location{Country: "France", Region: models.RegionEurope}},
		models.Post{Location: models.Location{Country: "France", Region: models.RegionEurope}},
		models.Post{Location: models.Location{Country: "Japan", Region: models.RegionAsia}},
		models.Post{Location: models.Location{}},
	)

	countries, err := repo.CountByCountry(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []models.CountryCount{{Country: "France", Count: 2}, {Country: "Japan", Count: 1}}
	if len(countries) != len(want) {
		t.Fatalf("countries = %+v", countries)
	}
	for i := range want {
		if countries[i] != want[i] {
			t.Errorf("countries[%d] = %+v, want %+v", i, countries[i], want[i])
		}
	}

	regions, err := repo.CountByRegion(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(regions) != 2 || regions[0].Region != models.RegionEurope || regions[0].Count != 2 {
		t.Errorf("regions = %+v", regions)
	}
}

func TestMemoryPostUpdateDelete(t *testing.T) {
	repo := NewMemoryPostRepository()
	p := seedPosts(t, repo, models.Post{Title: "old"})[0]

	title := "new"
	updated, err := repo.Update(context.Background(), p.ID, models.PostUpdate{Title: &title})
	if err != nil || updated.Title != "new" {
		t.Fatalf("Update() = %+v, %v", updated, err)
	}
	if err := repo.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.FindByID(context.Background(), p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByID after delete error = %v", err)
	}
	if err := repo.Delete(context.Background(), p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v", err)
	}
}

func TestTimestampsHaveMillisecondPrecision(t *testing.T) {
	ctx := context.Background()
	posts := NewMemoryPostRepository()
	p := seedPosts(t, posts, models.Post{Title: "Alps"})[0]
	if !p.CreatedAt.Equal(p.CreatedAt.Truncate(time.Millisecond)) {
		t.Errorf("post createdAt %v carries sub-millisecond precision", p.CreatedAt)
	}

	title := "Alps in Winter"
	updated, err := posts.Update(ctx, p.ID, models.PostUpdate{Title: &title})
	if err != nil {
		t.Fatal(err)
	}
	if !updated.UpdatedAt.Equal(updated.UpdatedAt.Truncate(time.Millisecond)) {
		t.Errorf("post updatedAt %v carries sub-millisecond precision", updated.UpdatedAt)
	}

	users := NewMemoryUserRepository()
	u := &models.User{Username: "alice", Email: "alice@example.com"}
	if err := users.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	if !u.CreatedAt.Equal(u.CreatedAt.Truncate(time.Millisecond)) {
		t.Errorf("user createdAt %v carries sub-millisecond precision", u.CreatedAt)
	}
}

func TestMemoryUserEdges(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()
	a := &models.User{Username: "a", Email: "a@example.com"}
	b := &models.User{Username: "b", Email: "b@example.com"}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(ctx, b); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(ctx, &models.User{Username: "a", Email: "other@example.com"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate username error = %v", err)
	}

	// addToSet semantics: a repeated add leaves one edge.
	for i := 0; i < 2; i++ {
		if err := repo.AddFollowing(ctx, a.ID, b.ID); err != nil {
			t.Fatal(err)
		}
	}
	got, _ := repo.FindByID(ctx, a.ID)
	if len(got.Following) != 1 || got.Following[0] != b.ID {
		t.Errorf("following = %v", got.Following)
	}

	if err := repo.RemoveFollowing(ctx, a.ID, b.ID); err != nil {
		t.Fatal(err)
	}
	got, _ = repo.FindByID(ctx, a.ID)
	if len(got.Following) != 0 {
		t.Errorf("following after pull = %v", got.Following)
	}

	if err := repo.AddFollower(ctx, primitive.NewObjectID(), a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("edge on missing user error = %v", err)
	}
}

func TestMemoryUserReturnsCopies(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()
	u := &models.User{Username: "a", Email: "a@example.com", Interests: []string{"ski"}}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	got, _ := repo.FindByID(ctx, u.ID)
	got.Interests[0] = "changed"

	again, _ := repo.FindByID(ctx, u.ID)
	if again.Interests[0] != "ski" {
		t.Error("caller mutation leaked into the store")
	}
}
