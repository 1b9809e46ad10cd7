package services

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"travel-blog-server/models"
)

func TestCreatePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice")

	p, err := f.post.Create(ctx, u.ID, CreatePostInput{
		Title:      "Alps Trip",
		Summary:    "Snow",
		Categories: ParseCategories("hiking, , mountains"),
		Country:    "Switzerland",
		Region:     "Europe",
	}, jpeg(32))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.Author != u.ID || p.AuthorUsername != "alice" {
		t.Errorf("author = %v / %q", p.Author, p.AuthorUsername)
	}
	if len(p.Categories) != 2 || p.Categories[1] != "mountains" {
		t.Errorf("categories = %v", p.Categories)
	}
	prefix := "http://cdn.test/" + u.ID.Hex() + "/post_"
	if !strings.HasPrefix(p.ImageURL, prefix) || !strings.HasSuffix(p.ImageURL, ".jpg") {
		t.Errorf("imageUrl = %q, want prefix %q", p.ImageURL, prefix)
	}

	noRegion := f.createPost(t, u.ID, "Somewhere", "", "")
	if noRegion.Location.Region != models.RegionUncategorized {
		t.Errorf("region = %q, want Uncategorized", noRegion.Location.Region)
	}
}

func TestCreatePostRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice")
	valid := CreatePostInput{Title: "T", Summary: "S"}

	_, err := f.post.Create(ctx, u.ID, valid, nil)
	expectStatus(t, err, http.StatusBadRequest)

	_, err = f.post.Create(ctx, u.ID, CreatePostInput{Summary: "S"}, jpeg(8))
	expectStatus(t, err, http.StatusBadRequest)

	_, err = f.post.Create(ctx, u.ID, CreatePostInput{Title: "T", Summary: "S", Region: "Atlantis"}, jpeg(8))
	expectStatus(t, err, http.StatusBadRequest)

	pdf := jpeg(8)
	pdf.ContentType = "application/pdf"
	_, err = f.post.Create(ctx, u.ID, valid, pdf)
	expectStatus(t, err, http.StatusBadRequest)

	_, err = f.post.Create(ctx, u.ID, valid, jpeg(5<<20+1))
	expectStatus(t, err, http.StatusRequestEntityTooLarge)

	if f.store.puts != 0 {
		t.Errorf("rejected uploads reached storage %d times", f.store.puts)
	}
	if posts, _ := f.posts.List(ctx, models.PostFilter{}); len(posts) != 0 {
		t.Errorf("rejected creates stored %d posts", len(posts))
	}
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "alice")
	b := f.register(t, "bob")

	alps := f.createPost(t, a.ID, "Alps", "Switzerland", "Europe")
	tokyo := f.createPost(t, b.ID, "Tokyo", "Japan", "Asia")
	rome := f.createPost(t, b.ID, "Rome", "Italy", "Europe")

	europe, err := f.post.List(ctx, models.PostFilter{Region: models.RegionEurope})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(europe) != 2 || europe[0].ID != rome.ID || europe[1].ID != alps.ID {
		t.Fatalf("europe = %v", titles(europe))
	}
	if europe[0].AuthorUsername != "bob" || europe[1].AuthorUsername != "alice" {
		t.Errorf("authors = %q, %q", europe[0].AuthorUsername, europe[1].AuthorUsername)
	}

	byBob, _ := f.post.List(ctx, models.PostFilter{Author: b.ID})
	if len(byBob) != 2 || byBob[1].ID != tokyo.ID {
		t.Errorf("by bob = %v", titles(byBob))
	}

	none, err := f.post.List(ctx, models.PostFilter{Country: "Peru"})
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("no match = %v, %v", none, err)
	}

	_, err = f.post.List(ctx, models.PostFilter{Region: "Atlantis"})
	expectStatus(t, err, http.StatusBadRequest)
}

func titles(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}

func TestNonAuthorCannotModify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "alice")
	other := f.register(t, "bob")
	p := f.createPost(t, owner.ID, "Alps", "Switzerland", "Europe")
	putsBefore := f.store.puts

	title := "Hijacked"
	_, err := f.post.Update(ctx, other.ID, p.ID, UpdatePostInput{Title: &title}, jpeg(8))
	expectStatus(t, err, http.StatusForbidden)

	err = f.post.Delete(ctx, other.ID, p.ID)
	expectStatus(t, err, http.StatusForbidden)

	got, err := f.post.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "Alps" || got.ImageURL != p.ImageURL {
		t.Errorf("post modified by non-author: %+v", got)
	}
	if f.store.puts != putsBefore || f.store.deletes != 0 {
		t.Errorf("non-author touched storage: puts=%d deletes=%d", f.store.puts-putsBefore, f.store.deletes)
	}
}

func TestUpdatePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice")
	p := f.createPost(t, u.ID, "Alps", "Switzerland", "Europe")

	title := "  Alps in Winter "
	region := "Asia"
	updated, err := f.post.Update(ctx, u.ID, p.ID, UpdatePostInput{Title: &title, Region: &region}, nil)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "Alps in Winter" || updated.Location.Region != models.RegionAsia || updated.Summary != p.Summary {
		t.Errorf("updated = %+v", updated)
	}

	empty := "   "
	_, err = f.post.Update(ctx, u.ID, p.ID, UpdatePostInput{Title: &empty}, nil)
	expectStatus(t, err, http.StatusBadRequest)

	_, err = f.post.Update(ctx, u.ID, primitive.NewObjectID(), UpdatePostInput{}, nil)
	expectStatus(t, err, http.StatusNotFound)
}

func TestUpdatePostReplacesImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice")
	p := f.createPost(t, u.ID, "Alps", "Switzerland", "Europe")

	updated, err := f.post.Update(ctx, u.ID, p.ID, UpdatePostInput{}, jpeg(64))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.ImageURL == p.ImageURL {
		t.Fatal("image url unchanged")
	}
	if f.store.Len() != 1 {
		t.Errorf("stored objects = %d, want 1", f.store.Len())
	}

	// a failing delete of the old image never blocks the update
	f.store.failDrop = true
	again, err := f.post.Update(ctx, u.ID, p.ID, UpdatePostInput{}, jpeg(64))
	if err != nil {
		t.Fatalf("Update() with failing delete error = %v", err)
	}
	if again.ImageURL == updated.ImageURL {
		t.Error("image url unchanged after second replacement")
	}

	f.store.failDrop = false
	f.store.failPut = true
	_, err = f.post.Update(ctx, u.ID, p.ID, UpdatePostInput{}, jpeg(64))
	expectStatus(t, err, http.StatusInternalServerError)
}

func TestDeletePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice")
	p := f.createPost(t, u.ID, "Alps", "Switzerland", "Europe")

	if err := f.post.Delete(ctx, u.ID, p.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if f.store.Len() != 0 {
		t.Errorf("image survived delete")
	}
	_, err := f.post.Get(ctx, p.ID)
	expectStatus(t, err, http.StatusNotFound)

	err = f.post.Delete(ctx, u.ID, p.ID)
	expectStatus(t, err, http.StatusNotFound)
}

func TestDeletePostWithFailingStorage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice")
	p := f.createPost(t, u.ID, "Alps", "Switzerland", "Europe")

	f.store.failDrop = true
	if err := f.post.Delete(ctx, u.ID, p.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := f.posts.FindByID(ctx, p.ID); err == nil {
		t.Error("post survived delete")
	}
}

func TestMapData(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice")

	f.createPost(t, u.ID, "Alps", "Switzerland", "Europe")
	f.createPost(t, u.ID, "Zermatt", "Switzerland", "Europe")
	f.createPost(t, u.ID, "Tokyo", "Japan", "Asia")
	f.createPost(t, u.ID, "Nowhere", "", "")

	data, err := f.post.MapData(ctx)
	if err != nil {
		t.Fatalf("MapData() error = %v", err)
	}
	wantCountries := []models.CountryCount{{Country: "Switzerland", Count: 2}, {Country: "Japan", Count: 1}}
	if len(data.CountryCounts) != len(wantCountries) {
		t.Fatalf("countryCounts = %+v", data.CountryCounts)
	}
	for i, want := range wantCountries {
		if data.CountryCounts[i] != want {
			t.Errorf("countryCounts[%d] = %+v, want %+v", i, data.CountryCounts[i], want)
		}
	}
	wantRegions := []models.RegionCount{
		{Region: models.RegionEurope, Count: 2},
		{Region: models.RegionAsia, Count: 1},
		{Region: models.RegionUncategorized, Count: 1},
	}
	if len(data.RegionCounts) != len(wantRegions) {
		t.Fatalf("regionCounts = %+v", data.RegionCounts)
	}
	for i, want := range wantRegions {
		if data.RegionCounts[i] != want {
			t.Errorf("regionCounts[%d] = %+v, want %+v", i, data.RegionCounts[i], want)
		}
	}
}

func TestMapDataEmpty(t *testing.T) {
	f := newFixture(t)
	data, err := f.post.MapData(context.Background())
	if err != nil {
		t.Fatalf("MapData() error = %v", err)
	}
	if data.CountryCounts == nil || data.RegionCounts == nil {
		t.Errorf("empty map data must encode as arrays: %+v", data)
	}
}
