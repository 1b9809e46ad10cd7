package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"travel-blog-server/logging"
	"travel-blog-server/metrics"
	"travel-blog-server/models"
	"travel-blog-server/repository"
	apierrors "travel-blog-server/utils/errors"
	"travel-blog-server/validation"
)

type PostService struct {
	posts  repository.PostRepository
	users  repository.UserRepository
	images *ImageService
}

func NewPostService(posts repository.PostRepository, users repository.UserRepository, images *ImageService) *PostService {
	return &PostService{posts: posts, users: users, images: images}
}

type CreatePostInput struct {
	Title      string   `json:"title" validate:"required,max=200"`
	Summary    string   `json:"summary" validate:"required"`
	Categories []string `json:"categories"`
	Country    string   `json:"country" validate:"max=100"`
	City       string   `json:"city" validate:"max=100"`
	Region     string   `json:"region" validate:"region"`
}

// UpdatePostInput carries optional fields; nil means unchanged.
type UpdatePostInput struct {
	Title      *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Summary    *string   `json:"summary" validate:"omitempty,min=1"`
	Categories *[]string `json:"categories"`
	Country    *string   `json:"country" validate:"omitempty,max=100"`
	City       *string   `json:"city" validate:"omitempty,max=100"`
	Region     *string   `json:"region" validate:"omitempty,region"`
}

// ParseCategories splits a comma separated list, dropping blanks.
func ParseCategories(raw string) []string {
	categories := []string{}
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			categories = append(categories, c)
		}
	}
	return categories
}

// Create stores a new post authored by callerID. The image is required.
func (s *PostService) Create(ctx context.Context, callerID primitive.ObjectID, in CreatePostInput, image *models.Attachment) (*models.Post, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Summary = strings.TrimSpace(in.Summary)
	if err := validation.ValidateStruct(&in); err != nil {
		return nil, err
	}
	if err := s.images.Validate(image); err != nil {
		return nil, err
	}

	region := models.Region(in.Region)
	if region == "" {
		region = models.RegionUncategorized
	}
	categories := in.Categories
	if categories == nil {
		categories = []string{}
	}

	imageURL, err := s.images.Upload(ctx, callerID, models.ImageKindPost, image)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:      in.Title,
		Summary:    in.Summary,
		ImageURL:   imageURL,
		Categories: categories,
		Location: models.Location{
			Country: strings.TrimSpace(in.Country),
			City:    strings.TrimSpace(in.City),
			Region:  region,
		},
		Author: callerID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, apierrors.Internal(err, "DB_ERROR")
	}

	metrics.PostsCreated.Inc()
	logging.Ctx(ctx).Info().Str("post_id", post.ID.Hex()).Str("author", callerID.Hex()).Msg("Post created")
	s.attachAuthors(ctx, []*models.Post{post})
	return post, nil
}

func (s *PostService) Get(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	s.attachAuthors(ctx, []*models.Post{post})
	return post, nil
}

// List returns the posts matching filter, newest first.
func (s *PostService) List(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	if filter.Region != "" && !filter.Region.Valid() {
		return nil, apierrors.Invalid("INVALID_REGION", "Unknown region: "+string(filter.Region))
	}
	posts, err := s.posts.List(ctx, filter)
	if err != nil {
		return nil, apierrors.Internal(err, "DB_ERROR")
	}
	if posts == nil {
		posts = []models.Post{}
	}

	refs := make([]*models.Post, len(posts))
	for i := range posts {
		refs[i] = &posts[i]
	}
	s.attachAuthors(ctx, refs)
	return posts, nil
}

// Update applies in (and optionally a replacement image) to a post owned by
// callerID. An old image is deleted before the new one is uploaded; a failed
// upload after that point leaves the post pointing at the removed image.
func (s *PostService) Update(ctx context.Context, callerID, id primitive.ObjectID, in UpdatePostInput, image *models.Attachment) (*models.Post, error) {
	post, err := s.authorize(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	in.Title, in.Summary = trimmed(in.Title), trimmed(in.Summary)
	in.Country, in.City = trimmed(in.Country), trimmed(in.City)
	if err := validation.ValidateStruct(&in); err != nil {
		return nil, err
	}
	if image != nil {
		if err := s.images.Validate(image); err != nil {
			return nil, err
		}
	}

	update := models.PostUpdate{
		Title:      in.Title,
		Summary:    in.Summary,
		Categories: in.Categories,
		Country:    in.Country,
		City:       in.City,
	}
	if in.Region != nil {
		region := models.Region(*in.Region)
		if region == "" {
			region = models.RegionUncategorized
		}
		update.Region = &region
	}

	if image != nil {
		s.images.DeleteBestEffort(ctx, post.ImageURL)
		imageURL, err := s.images.Upload(ctx, callerID, models.ImageKindPost, image)
		if err != nil {
			return nil, err
		}
		update.ImageURL = &imageURL
	}

	updated, err := s.posts.Update(ctx, id, update)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierrors.NotFound("Post")
	}
	if err != nil {
		return nil, apierrors.Internal(err, "DB_ERROR")
	}

	logging.Ctx(ctx).Info().Str("post_id", id.Hex()).Bool("image_replaced", image != nil).Msg("Post updated")
	s.attachAuthors(ctx, []*models.Post{updated})
	return updated, nil
}

// Delete removes a post owned by callerID, then its image on a best-effort basis.
func (s *PostService) Delete(ctx context.Context, callerID, id primitive.ObjectID) error {
	post, err := s.authorize(ctx, callerID, id)
	if err != nil {
		return err
	}

	err = s.posts.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apierrors.NotFound("Post")
	}
	if err != nil {
		return apierrors.Internal(err, "DB_ERROR")
	}
	s.images.DeleteBestEffort(ctx, post.ImageURL)

	metrics.PostsDeleted.Inc()
	logging.Ctx(ctx).Info().Str("post_id", id.Hex()).Str("author", callerID.Hex()).Msg("Post deleted")
	return nil
}

// MapData aggregates post counts per country and region.
func (s *PostService) MapData(ctx context.Context) (*models.MapData, error) {
	countries, err := s.posts.CountByCountry(ctx)
	if err != nil {
		return nil, apierrors.Internal(err, "DB_ERROR")
	}
	regions, err := s.posts.CountByRegion(ctx)
	if err != nil {
		return nil, apierrors.Internal(err, "DB_ERROR")
	}
	if countries == nil {
		countries = []models.CountryCount{}
	}
	if regions == nil {
		regions = []models.RegionCount{}
	}
	return &models.MapData{CountryCounts: countries, RegionCounts: regions}, nil
}

func (s *PostService) find(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierrors.NotFound("Post")
	}
	if err != nil {
		return nil, apierrors.Internal(err, "DB_ERROR")
	}
	return post, nil
}

// authorize loads the post and checks that callerID wrote it.
func (s *PostService) authorize(ctx context.Context, callerID, id primitive.ObjectID) (*models.Post, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Author != callerID {
		logging.Ctx(ctx).Warn().Str("post_id", id.Hex()).Str("caller", callerID.Hex()).
			Msg("Rejected modification by non-author")
		return nil, apierrors.ErrForbidden
	}
	return post, nil
}

// attachAuthors fills AuthorUsername with a single batched lookup. A failed
// lookup leaves the names empty.
func (s *PostService) attachAuthors(ctx context.Context, posts []*models.Post) {
	if len(posts) == 0 {
		return
	}
	seen := make(map[primitive.ObjectID]struct{}, len(posts))
	ids := make([]primitive.ObjectID, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.Author]; !ok {
			seen[p.Author] = struct{}{}
			ids = append(ids, p.Author)
		}
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int("authors", len(ids)).Msg("Failed to resolve post authors")
		return
	}
	names := make(map[primitive.ObjectID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	for _, p := range posts {
		p.AuthorUsername = names[p.Author]
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
