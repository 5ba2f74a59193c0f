package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"foodgram/internal/apperr"
	"foodgram/internal/microservices/http-api/models"
)

func sequence(tokens ...string) TokenGenerator {
	i := 0
	return func() (string, error) {
		t := tokens[i%len(tokens)]
		i++
		return t, nil
	}
}

func uniqueViolation() error {
	return fmt.Errorf("create short link: %w", &pgconn.PgError{Code: "23505", ConstraintName: "idx_short_links_token"})
}

func TestNewTokenGenerator(t *testing.T) {
	gen := NewTokenGenerator(12)
	seen := make(map[string]struct{}, 1000)

	for i := 0; i < 1000; i++ {
		token, err := gen()
		require.NoError(t, err)
		require.Len(t, token, 12)
		for _, r := range token {
			assert.Contains(t, tokenAlphabet, string(r))
		}
		seen[token] = struct{}{}
	}
	assert.Len(t, seen, 1000)
}

func TestShorten_ReturnsExistingMapping(t *testing.T) {
	ctx := context.Background()
	repo := new(MockShortLinkRepository)
	svc := NewShortLinkService(repo, nil, sequence("unused"), 3, quietLogger())

	existing := &models.ShortLink{ID: 1, Token: "AAAAAAAAAAAA", OriginalURL: "https://food.example/recipes/1"}
	repo.On("FindByURL", ctx, existing.OriginalURL).Return(existing, nil)

	first, err := svc.Shorten(ctx, existing.OriginalURL)
	require.NoError(t, err)
	second, err := svc.Shorten(ctx, existing.OriginalURL)
	require.NoError(t, err)

	assert.Equal(t, first.Token, second.Token)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestShorten_CreatesAndCaches(t *testing.T) {
	ctx := context.Background()
	repo := new(MockShortLinkRepository)
	cache := new(MockLinkCache)
	svc := NewShortLinkService(repo, cache, sequence("Tok3n"), 3, quietLogger())
	target := "https://food.example/recipes/2"

	repo.On("FindByURL", ctx, target).Return(nil, nil)
	repo.On("Create", ctx, mock.MatchedBy(func(l *models.ShortLink) bool {
		return l.Token == "Tok3n" && l.OriginalURL == target
	})).Return(nil)
	cache.On("Set", ctx, "Tok3n", target).Return(nil)

	link, err := svc.Shorten(ctx, target)

	require.NoError(t, err)
	assert.Equal(t, "Tok3n", link.Token)
	cache.AssertExpectations(t)
}

func TestShorten_RetriesOnCollision(t *testing.T) {
	ctx := context.Background()
	repo := new(MockShortLinkRepository)
	svc := NewShortLinkService(repo, nil, sequence("taken", "free"), 3, quietLogger())
	target := "https://food.example/recipes/3"

	repo.On("FindByURL", ctx, target).Return(nil, nil)
	repo.On("Create", ctx, mock.MatchedBy(func(l *models.ShortLink) bool { return l.Token == "taken" })).
		Return(uniqueViolation())
	repo.On("Create", ctx, mock.MatchedBy(func(l *models.ShortLink) bool { return l.Token == "free" })).
		Return(nil)

	link, err := svc.Shorten(ctx, target)

	require.NoError(t, err)
	assert.Equal(t, "free", link.Token)
	repo.AssertNumberOfCalls(t, "Create", 2)
}

func TestShorten_ConcurrentCreateSettlesOnOldest(t *testing.T) {
	ctx := context.Background()
	repo := new(MockShortLinkRepository)
	cache := new(MockLinkCache)
	svc := NewShortLinkService(repo, cache, sequence("late"), 3, quietLogger())
	target := "https://food.example/recipes/4"
	winner := &models.ShortLink{ID: 7, Token: "early", OriginalURL: target}

	// Another request inserts its row between the lookup and the insert.
	repo.On("FindByURL", ctx, target).Return(nil, nil).Once()
	repo.On("Create", ctx, mock.Anything).Return(nil).Once()
	repo.On("FindByURL", ctx, target).Return(winner, nil).Once()
	cache.On("Set", ctx, "early", target).Return(nil)

	link, err := svc.Shorten(ctx, target)

	require.NoError(t, err)
	assert.Equal(t, "early", link.Token)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestShorten_RereadFailureKeepsCreated(t *testing.T) {
	ctx := context.Background()
	repo := new(MockShortLinkRepository)
	svc := NewShortLinkService(repo, nil, sequence("mine"), 3, quietLogger())
	target := "https://food.example/recipes/5"

	repo.On("FindByURL", ctx, target).Return(nil, nil).Once()
	repo.On("Create", ctx, mock.Anything).Return(nil).Once()
	repo.On("FindByURL", ctx, target).Return(nil, errors.New("connection reset")).Once()

	link, err := svc.Shorten(ctx, target)

	require.NoError(t, err)
	assert.Equal(t, "mine", link.Token)
}

func TestShorten_TokenSpaceExhausted(t *testing.T) {
	ctx := context.Background()
	repo := new(MockShortLinkRepository)
	svc := NewShortLinkService(repo, nil, sequence("taken"), 4, quietLogger())
	target := "https://food.example/recipes/4"

	repo.On("FindByURL", ctx, target).Return(nil, nil)
	repo.On("Create", ctx, mock.Anything).Return(uniqueViolation())

	_, err := svc.Shorten(ctx, target)

	assert.ErrorIs(t, err, apperr.ErrTokenSpaceExhausted)
	repo.AssertNumberOfCalls(t, "Create", 4)
}

func TestShorten_OtherStoreErrorIsNotRetried(t *testing.T) {
	ctx := context.Background()
	repo := new(MockShortLinkRepository)
	svc := NewShortLinkService(repo, nil, sequence("x"), 4, quietLogger())
	target := "https://food.example/recipes/5"

	repo.On("FindByURL", ctx, target).Return(nil, nil)
	repo.On("Create", ctx, mock.Anything).Return(errors.New("connection refused"))

	_, err := svc.Shorten(ctx, target)

	assert.ErrorContains(t, err, "connection refused")
	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestShorten_InvalidURL(t *testing.T) {
	svc := NewShortLinkService(new(MockShortLinkRepository), nil, sequence("x"), 1, quietLogger())

	for _, raw := range []string{"", "not a url", "/relative/path", "ftp://files.example/x", "https://"} {
		_, err := svc.Shorten(context.Background(), raw)
		assert.ErrorIs(t, err, apperr.ErrInvalidURL, raw)
	}
}

func TestResolve_CacheHit(t *testing.T) {
	ctx := context.Background()
	repo := new(MockShortLinkRepository)
	cache := new(MockLinkCache)
	svc := NewShortLinkService(repo, cache, sequence("x"), 1, quietLogger())

	cache.On("Get", ctx, "abc").Return("https://food.example/recipes/1", true, nil)

	target, err := svc.Resolve(ctx, "abc")

	require.NoError(t, err)
	assert.Equal(t, "https://food.example/recipes/1", target)
	repo.AssertNotCalled(t, "FindByToken", mock.Anything, mock.Anything)
}

func TestResolve_CacheFailureFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	repo := new(MockShortLinkRepository)
	cache := new(MockLinkCache)
	svc := NewShortLinkService(repo, cache, sequence("x"), 1, quietLogger())

	cache.On("Get", ctx, "abc").Return("", false, errors.New("redis down"))
	repo.On("FindByToken", ctx, "abc").Return(&models.ShortLink{Token: "abc", OriginalURL: "https://x.example"}, nil)
	cache.On("Set", ctx, "abc", "https://x.example").Return(errors.New("redis down"))

	target, err := svc.Resolve(ctx, "abc")

	require.NoError(t, err)
	assert.Equal(t, "https://x.example", target)
}

func TestResolve_UnknownToken(t *testing.T) {
	ctx := context.Background()
	repo := new(MockShortLinkRepository)
	svc := NewShortLinkService(repo, nil, sequence("x"), 1, quietLogger())

	repo.On("FindByToken", ctx, "nope").Return(nil, apperr.ErrLinkNotFound)

	_, err := svc.Resolve(ctx, "nope")

	assert.ErrorIs(t, err, apperr.ErrLinkNotFound)
}
