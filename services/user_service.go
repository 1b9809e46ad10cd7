package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"travel-blog-server/cache"
	"travel-blog-server/logging"
	"travel-blog-server/metrics"
	"travel-blog-server/models"
	"travel-blog-server/repository"
	apierrors "travel-blog-server/utils/errors"
	"travel-blog-server/validation"
)

type UserService struct {
	users repository.UserRepository
	cache cache.ProfileCache
}

func NewUserService(users repository.UserRepository, profileCache cache.ProfileCache) *UserService {
	if profileCache == nil {
		profileCache = cache.NoopProfileCache{}
	}
	return &UserService{users: users, cache: profileCache}
}

// EdgeSummary describes one side of a follow relationship after a transition.
type EdgeSummary struct {
	ID             primitive.ObjectID   `json:"id"`
	Username       string               `json:"username"`
	FollowersCount int                  `json:"followersCount"`
	FollowingCount int                  `json:"followingCount"`
	Followers      []primitive.ObjectID `json:"followers"`
	Following      []primitive.ObjectID `json:"following"`
}

func edgeSummary(u *models.User) EdgeSummary {
	p := u.Profile()
	return EdgeSummary{
		ID:             p.ID,
		Username:       p.Username,
		FollowersCount: p.FollowersCount,
		FollowingCount: p.FollowingCount,
		Followers:      p.Followers,
		Following:      p.Following,
	}
}

// FollowResult is returned by Follow and Unfollow.
type FollowResult struct {
	Current EdgeSummary
	Target  EdgeSummary
}

// GetUser retrieves a user from the profile cache or the store
func (s *UserService) GetUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	cached, err := s.cache.Get(ctx, userID.Hex())
	switch {
	case err == nil:
		metrics.RecordProfileCache("hit")
		return cached, nil
	case errors.Is(err, cache.ErrMiss):
		metrics.RecordProfileCache("miss")
	default:
		metrics.RecordProfileCache("error")
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", userID.Hex()).Msg("Profile cache read failed")
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierrors.NotFound("User")
	}
	if err != nil {
		return nil, apierrors.Internal(err, "DB_ERROR")
	}

	if err := s.cache.Set(ctx, user); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", userID.Hex()).Msg("Profile cache write failed")
	}
	return user, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := user.Profile()
	return &profile, nil
}

func (s *UserService) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierrors.NotFound("User")
	}
	if err != nil {
		return nil, apierrors.Internal(err, "DB_ERROR")
	}
	profile := user.Profile()
	return &profile, nil
}

// UpdateProfile applies a partial update to the caller's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, callerID primitive.ObjectID, update models.ProfileUpdate) (*models.Profile, error) {
	if err := validation.ValidateStruct(&update); err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return nil, apierrors.Invalid("NO_FIELDS", "No profile fields to update")
	}

	user, err := s.users.UpdateProfile(ctx, callerID, update)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierrors.NotFound("User")
	}
	if err != nil {
		return nil, apierrors.Internal(err, "DB_ERROR")
	}
	s.invalidate(ctx, callerID)

	profile := user.Profile()
	return &profile, nil
}

// loadPair reads caller and target straight from the store; edge checks must
// not be answered from the cache.
func (s *UserService) loadPair(ctx context.Context, callerID, targetID primitive.ObjectID) (*models.User, *models.User, error) {
	target, err := s.users.FindByID(ctx, targetID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, apierrors.NotFound("User")
	}
	if err != nil {
		return nil, nil, apierrors.Internal(err, "DB_ERROR")
	}
	current, err := s.users.FindByID(ctx, callerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, apierrors.NotFound("User")
	}
	if err != nil {
		return nil, nil, apierrors.Internal(err, "DB_ERROR")
	}
	return current, target, nil
}

// Follow adds the caller → target edge. The caller's following list and the
// target's followers list are written separately; a failure in between
// leaves the edge one-sided.
func (s *UserService) Follow(ctx context.Context, callerID, targetID primitive.ObjectID) (*FollowResult, error) {
	if callerID == targetID {
		return nil, apierrors.Invalid("CANNOT_FOLLOW_SELF", "You cannot follow yourself")
	}
	current, _, err := s.loadPair(ctx, callerID, targetID)
	if err != nil {
		return nil, err
	}
	if current.IsFollowing(targetID) {
		return nil, apierrors.Invalid("ALREADY_FOLLOWING", "You are already following this user")
	}

	if err := s.users.AddFollowing(ctx, callerID, targetID); err != nil {
		return nil, apierrors.Internal(err, "DB_ERROR")
	}
	if err := s.users.AddFollower(ctx, targetID, callerID); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("follower", callerID.Hex()).Str("followee", targetID.Hex()).
			Msg("Follow edge left one-sided: followers write failed")
		s.invalidate(ctx, callerID, targetID)
		return nil, apierrors.Internal(err, "DB_ERROR")
	}
	s.invalidate(ctx, callerID, targetID)
	metrics.RecordFollow("follow")
	logging.Ctx(ctx).Info().Str("follower", callerID.Hex()).Str("followee", targetID.Hex()).Msg("User followed")

	return s.result(ctx, callerID, targetID)
}

// Unfollow removes the caller → target edge with the same two writes as Follow.
func (s *UserService) Unfollow(ctx context.Context, callerID, targetID primitive.ObjectID) (*FollowResult, error) {
	current, _, err := s.loadPair(ctx, callerID, targetID)
	if err != nil {
		return nil, err
	}
	if !current.IsFollowing(targetID) {
		return nil, apierrors.Invalid("NOT_FOLLOWING", "You are not following this user")
	}

	if err := s.users.RemoveFollowing(ctx, callerID, targetID); err != nil {
		return nil, apierrors.Internal(err, "DB_ERROR")
	}
	if err := s.users.RemoveFollower(ctx, targetID, callerID); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("follower", callerID.Hex()).Str("followee", targetID.Hex()).
			Msg("Unfollow edge left one-sided: followers write failed")
		s.invalidate(ctx, callerID, targetID)
		return nil, apierrors.Internal(err, "DB_ERROR")
	}
	s.invalidate(ctx, callerID, targetID)
	metrics.RecordFollow("unfollow")
	logging.Ctx(ctx).Info().Str("follower", callerID.Hex()).Str("followee", targetID.Hex()).Msg("User unfollowed")

	return s.result(ctx, callerID, targetID)
}

func (s *UserService) result(ctx context.Context, callerID, targetID primitive.ObjectID) (*FollowResult, error) {
	current, target, err := s.loadPair(ctx, callerID, targetID)
	if err != nil {
		return nil, err
	}
	return &FollowResult{Current: edgeSummary(current), Target: edgeSummary(target)}, nil
}

func (s *UserService) invalidate(ctx context.Context, ids ...primitive.ObjectID) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.Hex()
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Strs("user_ids", keys).Msg("Profile cache invalidation failed")
	}
}
