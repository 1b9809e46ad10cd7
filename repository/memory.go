package repository

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"travel-blog-server/models"
)

// MemoryUserRepository keeps users in process memory. It backs the memory
// store driver used for local development and tests.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[primitive.ObjectID]models.User)}
}

func cloneUser(u models.User) *models.User {
	u.Interests = append([]string(nil), u.Interests...)
	u.VisitedCountries = append([]string(nil), u.VisitedCountries...)
	u.BucketList = append([]string(nil), u.BucketList...)
	u.Followers = append([]primitive.ObjectID{}, u.Followers...)
	u.Following = append([]primitive.ObjectID{}, u.Following...)
	return &u
}

func (r *MemoryUserRepository) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return ErrDuplicate
		}
	}
	now := timestamp()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.users[u.ID] = *cloneUser(*u)
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *MemoryUserRepository) findWhere(match func(models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.findWhere(func(u models.User) bool { return u.Email == email })
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return r.findWhere(func(u models.User) bool { return u.Username == username })
}

func (r *MemoryUserRepository) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var users []models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			users = append(users, *cloneUser(u))
		}
	}
	return users, nil
}

func (r *MemoryUserRepository) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	_, err := r.findWhere(func(u models.User) bool { return u.Email == email || u.Username == username })
	return err == nil, nil
}

func (r *MemoryUserRepository) UpdateProfile(_ context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	update.Apply(&u)
	u.UpdatedAt = timestamp()
	r.users[id] = *cloneUser(u)
	return cloneUser(u), nil
}

func (r *MemoryUserRepository) mutate(id primitive.ObjectID, fn func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = timestamp()
	r.users[id] = u
	return nil
}

func addToSet(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(append([]primitive.ObjectID{}, ids...), id)
}

func pull(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func (r *MemoryUserRepository) AddFollowing(_ context.Context, userID, targetID primitive.ObjectID) error {
	return r.mutate(userID, func(u *models.User) { u.Following = addToSet(u.Following, targetID) })
}

func (r *MemoryUserRepository) AddFollower(_ context.Context, userID, followerID primitive.ObjectID) error {
	return r.mutate(userID, func(u *models.User) { u.Followers = addToSet(u.Followers, followerID) })
}

func (r *MemoryUserRepository) RemoveFollowing(_ context.Context, userID, targetID primitive.ObjectID) error {
	return r.mutate(userID, func(u *models.User) { u.Following = pull(u.Following, targetID) })
}

func (r *MemoryUserRepository) RemoveFollower(_ context.Context, userID, followerID primitive.ObjectID) error {
	return r.mutate(userID, func(u *models.User) { u.Followers = pull(u.Followers, followerID) })
}

// MemoryPostRepository keeps posts in process memory.
type MemoryPostRepository struct {
	mu    sync.RWMutex
	posts map[primitive.ObjectID]models.Post
}

func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{posts: make(map[primitive.ObjectID]models.Post)}
}

func clonePost(p models.Post) *models.Post {
	p.Categories = append([]string{}, p.Categories...)
	return &p
}

func (r *MemoryPostRepository) Create(_ context.Context, p *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := timestamp()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Categories == nil {
		p.Categories = []string{}
	}
	r.posts[p.ID] = *clonePost(*p)
	return nil
}

func (r *MemoryPostRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePost(p), nil
}

func matches(p models.Post, filter models.PostFilter) bool {
	if filter.Region != "" && p.Location.Region != filter.Region {
		return false
	}
	if filter.Country != "" && p.Location.Country != filter.Country {
		return false
	}
	if !filter.Author.IsZero() && p.Author != filter.Author {
		return false
	}
	if filter.Category != "" {
		for _, c := range p.Categories {
			if c == filter.Category {
				return true
			}
		}
		return false
	}
	return true
}

func (r *MemoryPostRepository) List(_ context.Context, filter models.PostFilter) ([]models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	posts := []models.Post{}
	for _, p := range r.posts {
		if matches(p, filter) {
			posts = append(posts, *clonePost(p))
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return bytes.Compare(posts[i].ID[:], posts[j].ID[:]) > 0
	})
	return posts, nil
}

func (r *MemoryPostRepository) Update(_ context.Context, id primitive.ObjectID, update models.PostUpdate) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	update.Apply(&p)
	p.UpdatedAt = timestamp()
	r.posts[id] = *clonePost(p)
	return clonePost(p), nil
}

func (r *MemoryPostRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *MemoryPostRepository) countBy(key func(models.Post) string) []keyCount {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := map[string]int{}
	for _, p := range r.posts {
		if k := key(p); k != "" {
			counts[k]++
		}
	}
	out := make([]keyCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, keyCount{key: k, count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}

type keyCount struct {
	key   string
	count int
}

func (r *MemoryPostRepository) CountByCountry(_ context.Context) ([]models.CountryCount, error) {
	grouped := r.countBy(func(p models.Post) string { return p.Location.Country })
	counts := make([]models.CountryCount, 0, len(grouped))
	for _, g := range grouped {
		counts = append(counts, models.CountryCount{Country: g.key, Count: g.count})
	}
	return counts, nil
}

func (r *MemoryPostRepository) CountByRegion(_ context.Context) ([]models.RegionCount, error) {
	grouped := r.countBy(func(p models.Post) string { return string(p.Location.Region) })
	counts := make([]models.RegionCount, 0, len(grouped))
	for _, g := range grouped {
		counts = append(counts, models.RegionCount{Region: models.Region(g.key), Count: g.count})
	}
	return counts, nil
}
