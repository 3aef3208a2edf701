package services_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-app/inkwell-be/internal/auth"
	"github.com/inkwell-app/inkwell-be/internal/models"
	"github.com/inkwell-app/inkwell-be/internal/services"
)

type fakeRemover struct {
	removed []string
}

func (f *fakeRemover) Remove(path string) {
	f.removed = append(f.removed, path)
}

type postFixture struct {
	db      *sql.DB
	users   *services.UserService
	posts   *services.PostService
	remover *fakeRemover
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()
	db := newTestDB(t)
	codec := auth.NewTokenCodec("test-secret", time.Hour)
	events := services.NewEventService(db, nil)
	remover := &fakeRemover{}
	return &postFixture{
		db:      db,
		users:   services.NewUserService(db, codec, events),
		posts:   services.NewPostService(db, remover, events, 2),
		remover: remover,
	}
}

func (f *postFixture) register(t *testing.T, email string) auth.Result {
	t.Helper()
	user, err := f.users.Register(context.Background(), services.RegisterInput{
		Email:    email,
		Password: "secret",
		Name:     "Author",
	})
	require.NoError(t, err)
	return auth.Result{Authenticated: true, UserID: user.ID}
}

func strPtr(s string) *string { return &s }

func validPost(title string) services.PostInput {
	return services.PostInput{Title: title, Content: "Long enough content"}
}

func TestCreatePostRequiresAuthentication(t *testing.T) {
	f := newPostFixture(t)

	_, err := f.posts.Create(context.Background(), auth.Result{}, validPost("A fine title"))
	appErr := asAppErr(t, err)
	assert.Equal(t, 401, appErr.Status)
	assert.Equal(t, "Not authenticated", appErr.Message)
}

func TestCreatePostValidation(t *testing.T) {
	f := newPostFixture(t)
	authn := f.register(t, "jane@example.com")

	_, err := f.posts.Create(context.Background(), authn, services.PostInput{Title: "abc", Content: "hi"})
	appErr := asAppErr(t, err)
	assert.Equal(t, 422, appErr.Status)
	messages := violationMessages(appErr)
	assert.Contains(t, messages, "The title is empty or less than 5 characters.")
	assert.Contains(t, messages, "You must put valid content")
}

func TestCreatePostUnknownActingUser(t *testing.T) {
	f := newPostFixture(t)

	_, err := f.posts.Create(context.Background(), auth.Result{Authenticated: true, UserID: "gone"}, validPost("A fine title"))
	appErr := asAppErr(t, err)
	assert.Equal(t, 401, appErr.Status)
	assert.Equal(t, "You are invalid user.", appErr.Message)
}

func TestCreatePostAssignsOwner(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	authn := f.register(t, "jane@example.com")

	input := validPost("A fine title")
	input.ImageURL = strPtr("images/cover.png")
	post, err := f.posts.Create(ctx, authn, input)
	require.NoError(t, err)

	assert.Equal(t, authn.UserID, post.CreatorID)
	require.NotNil(t, post.Creator)
	assert.Equal(t, authn.UserID, post.Creator.ID)
	assert.Equal(t, "images/cover.png", post.ImageURL)
	assert.False(t, post.CreatedAt.IsZero())

	// The owner's collection grew by one.
	owner, err := f.users.CurrentUser(ctx, authn)
	require.NoError(t, err)
	require.Len(t, owner.Posts, 1)
	assert.Equal(t, post.ID, owner.Posts[0].ID)
}

func TestGetPostNotFound(t *testing.T) {
	f := newPostFixture(t)
	authn := f.register(t, "jane@example.com")

	_, err := f.posts.Get(context.Background(), authn, "missing")
	appErr := asAppErr(t, err)
	assert.Equal(t, 404, appErr.Status)
	assert.Equal(t, "Unable to get the post by post id.", appErr.Message)
}

func TestListPostsPagination(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	authn := f.register(t, "jane@example.com")

	for i := 1; i <= 5; i++ {
		_, err := f.posts.Create(ctx, authn, validPost(fmt.Sprintf("Post number %d", i)))
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond) // distinct creation times for a stable order
	}

	t.Run("second page", func(t *testing.T) {
		page, err := f.posts.List(ctx, authn, 2)
		require.NoError(t, err)
		assert.Equal(t, 5, page.TotalPosts)
		require.Len(t, page.Posts, 2)
		assert.Equal(t, "Post number 3", page.Posts[0].Title)
		assert.Equal(t, "Post number 2", page.Posts[1].Title)
	})

	t.Run("page defaults to first", func(t *testing.T) {
		page, err := f.posts.List(ctx, authn, 0)
		require.NoError(t, err)
		require.Len(t, page.Posts, 2)
		assert.Equal(t, "Post number 5", page.Posts[0].Title)
		assert.Equal(t, "Post number 4", page.Posts[1].Title)
	})

	t.Run("owner resolved eagerly", func(t *testing.T) {
		page, err := f.posts.List(ctx, authn, 1)
		require.NoError(t, err)
		require.NotNil(t, page.Posts[0].Creator)
		assert.Equal(t, "jane@example.com", page.Posts[0].Creator.Email)
	})

	t.Run("anonymous", func(t *testing.T) {
		_, err := f.posts.List(ctx, auth.Result{}, 1)
		assert.Equal(t, 401, asAppErr(t, err).Status)
	})
}

func TestUpdatePost(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com")
	stranger := f.register(t, "stranger@example.com")

	input := validPost("Original title")
	input.ImageURL = strPtr("images/original.png")
	post, err := f.posts.Create(ctx, owner, input)
	require.NoError(t, err)

	t.Run("non-owner is forbidden", func(t *testing.T) {
		_, err := f.posts.Update(ctx, stranger, post.ID, validPost("Hijacked title"))
		appErr := asAppErr(t, err)
		assert.Equal(t, 403, appErr.Status)
		assert.Equal(t, "You are not authorized to edit this post.", appErr.Message)

		// Post left unmodified.
		got, err := f.posts.Get(ctx, owner, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Original title", got.Title)
	})

	t.Run("nil image keeps the stored reference", func(t *testing.T) {
		updated, err := f.posts.Update(ctx, owner, post.ID, validPost("Updated title"))
		require.NoError(t, err)
		assert.Equal(t, "Updated title", updated.Title)
		assert.Equal(t, "images/original.png", updated.ImageURL)
	})

	t.Run("supplied image replaces the reference", func(t *testing.T) {
		input := validPost("Updated title")
		input.ImageURL = strPtr("images/replacement.png")
		updated, err := f.posts.Update(ctx, owner, post.ID, input)
		require.NoError(t, err)
		assert.Equal(t, "images/replacement.png", updated.ImageURL)
	})

	t.Run("empty image is an explicit value, not absence", func(t *testing.T) {
		input := validPost("Updated title")
		input.ImageURL = strPtr("")
		updated, err := f.posts.Update(ctx, owner, post.ID, input)
		require.NoError(t, err)
		assert.Empty(t, updated.ImageURL)
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := f.posts.Update(ctx, owner, "missing", validPost("A fine title"))
		assert.Equal(t, 404, asAppErr(t, err).Status)
	})
}

func TestDeletePost(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com")
	stranger := f.register(t, "stranger@example.com")

	input := validPost("Doomed post")
	input.ImageURL = strPtr("images/doomed.png")
	post, err := f.posts.Create(ctx, owner, input)
	require.NoError(t, err)

	t.Run("non-owner is forbidden", func(t *testing.T) {
		_, err := f.posts.Delete(ctx, stranger, post.ID)
		assert.Equal(t, 403, asAppErr(t, err).Status)
	})

	t.Run("owner deletes", func(t *testing.T) {
		ok, err := f.posts.Delete(ctx, owner, post.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		// Image removal was invoked, best-effort.
		assert.Equal(t, []string{"images/doomed.png"}, f.remover.removed)

		// Gone from the store and from the owner's collection.
		_, err = f.posts.Get(ctx, owner, post.ID)
		assert.Equal(t, 404, asAppErr(t, err).Status)

		user, err := f.users.CurrentUser(ctx, owner)
		require.NoError(t, err)
		assert.Empty(t, user.Posts)
	})

	t.Run("already gone", func(t *testing.T) {
		_, err := f.posts.Delete(ctx, owner, post.ID)
		assert.Equal(t, 404, asAppErr(t, err).Status)
	})
}

func TestDeletePostWithoutImageSkipsRemoval(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com")

	post, err := f.posts.Create(ctx, owner, validPost("No image here"))
	require.NoError(t, err)

	_, err = f.posts.Delete(ctx, owner, post.ID)
	require.NoError(t, err)
	assert.Empty(t, f.remover.removed)
}

func TestEventServiceRecordsActivity(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	authn := f.register(t, "jane@example.com")

	_, err := f.posts.Create(ctx, authn, validPost("A fine title"))
	require.NoError(t, err)

	events := services.NewEventService(f.db, nil)
	recent, err := events.GetRecentEvents(ctx, 10)
	require.NoError(t, err)

	types := make([]string, 0, len(recent))
	for _, event := range recent {
		types = append(types, event.Type)
	}
	assert.Contains(t, types, "user.register")
	assert.Contains(t, types, "post.create")

	var created models.Event
	for _, event := range recent {
		if event.Type == "post.create" {
			created = event
		}
	}
	require.NotNil(t, created.ActorID)
	assert.Equal(t, authn.UserID, *created.ActorID)
}
