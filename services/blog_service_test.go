package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/JJublanc/tidimondo-sub001/models"
	"github.com/JJublanc/tidimondo-sub001/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryImageStore struct {
	uploads []string
}

func (s *memoryImageStore) UploadImage(_ context.Context, prefix string, img *utils.DataURI) (string, error) {
	key := fmt.Sprintf("%s/%d%s", prefix, len(s.uploads)+1, img.Extension())
	s.uploads = append(s.uploads, key)
	return "https://cdn.example/" + key, nil
}

type fixedModerator struct {
	labels []string
}

func (m fixedModerator) ModerationLabels(context.Context, *utils.DataURI) ([]string, error) {
	return m.labels, nil
}

var coverImage = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))

func TestBlogPostModerationFlow(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	n := &recordingNotifier{}
	blog := NewBlogService(db, nil, nil, n)
	author := createUser(t, db, "author")

	post, err := blog.Create(ctx, author.ID, PostInput{Title: "Fondue savoyarde", Content: "# Fondue\n\nThree **cheeses**."})
	require.NoError(t, err)
	assert.Equal(t, "fondue-savoyarde", post.Slug)
	assert.Equal(t, models.PostPending, post.Status)
	assert.Contains(t, post.ContentHTML, "<strong>cheeses</strong>")

	_, err = blog.BySlug(ctx, post.Slug)
	assert.ErrorIs(t, err, ErrNotFound)
	published, err := blog.Published(ctx, Page{})
	require.NoError(t, err)
	assert.Empty(t, published)

	post, err = blog.Moderate(ctx, post.ID, ModerationInput{Approve: true})
	require.NoError(t, err)
	require.NotNil(t, post.PublishedAt)
	got, err := blog.BySlug(ctx, "fondue-savoyarde")
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)

	post, err = blog.Update(ctx, author.ID, post.ID, PostInput{Title: "Fondue savoyarde", Content: "Updated"})
	require.NoError(t, err)
	assert.Equal(t, models.PostPending, post.Status)
	assert.Nil(t, post.PublishedAt)

	_, err = blog.Moderate(ctx, post.ID, ModerationInput{Approve: false, Note: " Too short "})
	require.NoError(t, err)

	require.Len(t, n.alerts, 2)
	assert.Equal(t, recordedAlert{UserID: author.ID, Type: "info", Message: `Your post "Fondue savoyarde" was published.`}, n.alerts[0])
	assert.Equal(t, "warning", n.alerts[1].Type)
	assert.True(t, strings.HasSuffix(n.alerts[1].Message, "Note: Too short"))

	rejected, err := blog.ByStatus(ctx, models.PostRejected, Page{})
	require.NoError(t, err)
	assert.Len(t, rejected, 1)
}

func TestBlogSlugsStayUnique(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	blog := NewBlogService(db, nil, nil, nil)
	author := createUser(t, db, "author")

	first, err := blog.Create(ctx, author.ID, PostInput{Title: "Raclette", Content: "a"})
	require.NoError(t, err)
	require.NoError(t, blog.Delete(ctx, author.ID, first.ID, false))

	second, err := blog.Create(ctx, author.ID, PostInput{Title: "Raclette", Content: "b"})
	require.NoError(t, err)
	assert.NotEqual(t, first.Slug, second.Slug)
	assert.True(t, strings.HasPrefix(second.Slug, "raclette-"))

	untitled, err := blog.Create(ctx, author.ID, PostInput{Title: "!!!", Content: "c"})
	require.NoError(t, err)
	assert.Equal(t, "post", untitled.Slug)
}

func TestBlogAuthorship(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	blog := NewBlogService(db, nil, nil, nil)
	author := createUser(t, db, "author")
	other := createUser(t, db, "other")

	post, err := blog.Create(ctx, author.ID, PostInput{Title: "Crozets", Content: "Buckwheat pasta"})
	require.NoError(t, err)

	_, err = blog.Update(ctx, other.ID, post.ID, PostInput{Title: "Mine", Content: "x"})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, blog.Delete(ctx, other.ID, post.ID, false), ErrForbidden)
	assert.NoError(t, blog.Delete(ctx, other.ID, post.ID, true))

	mine, err := blog.Mine(ctx, author.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestBlogCoverImage(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	author := createUser(t, db, "author")

	_, err := NewBlogService(db, nil, nil, nil).Create(ctx, author.ID, PostInput{Title: "A", Content: "a", CoverImage: coverImage})
	assert.ErrorIs(t, err, ErrNotConfigured)

	store := &memoryImageStore{}
	rejecting := NewBlogService(db, store, fixedModerator{labels: []string{"Violence"}}, nil)
	_, err = rejecting.Create(ctx, author.ID, PostInput{Title: "B", Content: "b", CoverImage: coverImage})
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Empty(t, store.uploads)

	_, err = rejecting.Create(ctx, author.ID, PostInput{Title: "C", Content: "c", CoverImage: "data:text/plain;base64,eA=="})
	assert.ErrorIs(t, err, ErrInvalid)

	accepting := NewBlogService(db, store, fixedModerator{}, nil)
	post, err := accepting.Create(ctx, author.ID, PostInput{Title: "D", Content: "d", CoverImage: coverImage})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/blog/1.png", post.CoverImageURL)
}
