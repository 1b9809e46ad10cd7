package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"travel-blog-server/cache"
	"travel-blog-server/models"
	"travel-blog-server/repository"
	"travel-blog-server/storage"
	apierrors "travel-blog-server/utils/errors"
)

const testSecret = "test-secret"

// countingStore wraps a MemoryStore and records every call that would reach
// object storage.
type countingStore struct {
	*storage.MemoryStore
	mu       sync.Mutex
	puts     int
	deletes  int
	failPut  bool
	failDrop bool
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: storage.NewMemoryStore("http://cdn.test")}
}

func (s *countingStore) Put(ctx context.Context, key, contentType string, body io.ReadSeeker, size int64) (string, error) {
	s.mu.Lock()
	s.puts++
	fail := s.failPut
	s.mu.Unlock()
	if fail {
		return "", errors.New("storage unavailable")
	}
	return s.MemoryStore.Put(ctx, key, contentType, body, size)
}

func (s *countingStore) Delete(ctx context.Context, objectURL string) error {
	s.mu.Lock()
	s.deletes++
	fail := s.failDrop
	s.mu.Unlock()
	if fail {
		return errors.New("storage unavailable")
	}
	return s.MemoryStore.Delete(ctx, objectURL)
}

// mapCache is an in-process ProfileCache used to observe invalidation.
type mapCache struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newMapCache() *mapCache { return &mapCache{users: map[string]models.User{}} }

func (c *mapCache) Get(_ context.Context, id string) (*models.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.users[id]
	if !ok {
		return nil, cache.ErrMiss
	}
	return &u, nil
}

func (c *mapCache) Set(_ context.Context, u *models.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[u.ID.Hex()] = *u
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.users, id)
	}
	return nil
}

func (c *mapCache) has(id primitive.ObjectID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.users[id.Hex()]
	return ok
}

type fixture struct {
	users  *repository.MemoryUserRepository
	posts  *repository.MemoryPostRepository
	store  *countingStore
	cache  *mapCache
	auth   *AuthService
	user   *UserService
	images *ImageService
	post   *PostService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users: repository.NewMemoryUserRepository(),
		posts: repository.NewMemoryPostRepository(),
		store: newCountingStore(),
		cache: newMapCache(),
	}
	f.auth = NewAuthService(f.users, testSecret, time.Hour)
	f.user = NewUserService(f.users, f.cache)
	f.images = NewImageService(f.store, 5<<20)
	f.post = NewPostService(f.posts, f.users, f.images)
	return f
}

func (f *fixture) register(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), RegisterInput{
		Username:        username,
		Email:           username + "@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	})
	if err != nil {
		t.Fatalf("Register(%s) error = %v", username, err)
	}
	return u
}

func jpeg(size int) *models.Attachment {
	return &models.Attachment{
		Filename:    "photo.JPG",
		ContentType: "image/jpeg",
		Size:        int64(size),
		Body:        bytes.NewReader(bytes.Repeat([]byte{0xff}, size)),
	}
}

func (f *fixture) createPost(t *testing.T, author primitive.ObjectID, title, country, region string) *models.Post {
	t.Helper()
	p, err := f.post.Create(context.Background(), author, CreatePostInput{
		Title:   title,
		Summary: "summary of " + title,
		Country: country,
		Region:  region,
	}, jpeg(16))
	if err != nil {
		t.Fatalf("Create(%s) error = %v", title, err)
	}
	return p
}

func statusOf(err error) int {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}

func expectStatus(t *testing.T, err error, want int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d, got nil", want)
	}
	if got := statusOf(err); got != want {
		t.Fatalf("status = %d, want %d (err = %v)", got, want, err)
	}
}
