package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/inkwell-app/inkwell-be/internal/apperr"
	"github.com/inkwell-app/inkwell-be/internal/auth"
	"github.com/inkwell-app/inkwell-be/internal/models"
	"github.com/inkwell-app/inkwell-be/internal/validation"
)

// PostInput is the payload for the createPost and updatePost operations.
// ImageURL is a pointer so "no new image supplied" stays distinguishable from
// an explicitly empty image reference.
type PostInput struct {
	Title    string  `json:"title" validate:"required,min=5"`
	Content  string  `json:"content" validate:"required,min=5"`
	ImageURL *string `json:"imageUrl"`
}

// ImageRemover deletes a stored image file, best-effort.
type ImageRemover interface {
	Remove(path string)
}

// PostServiceProvider defines the interface for post operations.
type PostServiceProvider interface {
	Create(ctx context.Context, authn auth.Result, input PostInput) (models.Post, error)
	Get(ctx context.Context, authn auth.Result, id string) (models.Post, error)
	List(ctx context.Context, authn auth.Result, page int) (models.PostPage, error)
	Update(ctx context.Context, authn auth.Result, id string, input PostInput) (models.Post, error)
	Delete(ctx context.Context, authn auth.Result, id string) (bool, error)
}

// PostService provides the post CRUD and feed pipeline. Every operation
// checks authentication first, then input validity, then ownership, before
// touching the store.
type PostService struct {
	db       *sql.DB
	images   ImageRemover
	events   EventServiceProvider
	pageSize int
}

// NewPostService creates a new PostService. The page size comes from
// configuration rather than living inline in the feed query.
func NewPostService(db *sql.DB, images ImageRemover, events EventServiceProvider, pageSize int) *PostService {
	return &PostService{db: db, images: images, events: events, pageSize: pageSize}
}

// Create persists a new post owned by the acting user.
func (s *PostService) Create(ctx context.Context, authn auth.Result, input PostInput) (models.Post, error) {
	if !authn.Authenticated {
		return models.Post{}, apperr.Unauthorized("Not authenticated")
	}
	if violations := validation.Check(input); len(violations) > 0 {
		return models.Post{}, apperr.Validation(violations)
	}

	var creator models.User
	row := s.db.QueryRowContext(ctx, "SELECT id, email, name, status, created_at FROM users WHERE id = ?", authn.UserID)
	err := row.Scan(&creator.ID, &creator.Email, &creator.Name, &creator.Status, &creator.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Post{}, apperr.Unauthorized("You are invalid user.")
	}
	if err != nil {
		return models.Post{}, err
	}

	now := time.Now().UTC()
	post := models.Post{
		ID:        uuid.New().String(),
		Title:     input.Title,
		Content:   input.Content,
		CreatorID: creator.ID,
		Creator:   &creator,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.ImageURL != nil {
		post.ImageURL = *input.ImageURL
	}

	// A single insert; the owner's post collection is the foreign-key
	// relation, so no second write is needed.
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO posts (id, title, content, image_url, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		post.ID, post.Title, post.Content, post.ImageURL, post.CreatorID, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return models.Post{}, err
	}

	s.recordEvent(ctx, "post.create", "Post '"+post.Title+"' created", creator.ID)
	return post, nil
}

// Get loads a single post with its creator resolved.
func (s *PostService) Get(ctx context.Context, authn auth.Result, id string) (models.Post, error) {
	if !authn.Authenticated {
		return models.Post{}, apperr.Unauthorized("Not authenticated")
	}
	return s.getPostWithCreator(ctx, id)
}

// List returns one page of the feed, newest first, plus the total count.
// Page values below 1 default to the first page.
func (s *PostService) List(ctx context.Context, authn auth.Result, page int) (models.PostPage, error) {
	if !authn.Authenticated {
		return models.PostPage{}, apperr.Unauthorized("Not authenticated")
	}
	if page < 1 {
		page = 1
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&total); err != nil {
		return models.PostPage{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.title, p.content, p.image_url, p.owner_id, p.created_at, p.updated_at,
		       u.id, u.email, u.name, u.status, u.created_at
		FROM posts p
		JOIN users u ON u.id = p.owner_id
		ORDER BY p.created_at DESC, p.rowid DESC
		LIMIT ? OFFSET ?`, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return models.PostPage{}, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		post, err := scanPostWithCreator(rows)
		if err != nil {
			return models.PostPage{}, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return models.PostPage{}, err
	}
	return models.PostPage{Posts: posts, TotalPosts: total}, nil
}

// Update applies new title/content, and a new image reference only when one
// was actually supplied. Only the owner may update.
func (s *PostService) Update(ctx context.Context, authn auth.Result, id string, input PostInput) (models.Post, error) {
	if !authn.Authenticated {
		return models.Post{}, apperr.Unauthorized("Not authenticated")
	}
	if violations := validation.Check(input); len(violations) > 0 {
		return models.Post{}, apperr.Validation(violations)
	}

	post, err := s.getPostWithCreator(ctx, id)
	if err != nil {
		return models.Post{}, err
	}
	if post.CreatorID != authn.UserID {
		return models.Post{}, apperr.Forbidden("You are not authorized to edit this post.")
	}

	post.Title = input.Title
	post.Content = input.Content
	if input.ImageURL != nil {
		post.ImageURL = *input.ImageURL
	}
	post.UpdatedAt = time.Now().UTC()

	// The owner column is never part of the update.
	_, err = s.db.ExecContext(ctx,
		"UPDATE posts SET title = ?, content = ?, image_url = ?, updated_at = ? WHERE id = ?",
		post.Title, post.Content, post.ImageURL, post.UpdatedAt, post.ID)
	if err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// Delete removes a post and, best-effort, its stored image file. Only the
// owner may delete.
func (s *PostService) Delete(ctx context.Context, authn auth.Result, id string) (bool, error) {
	if !authn.Authenticated {
		return false, apperr.Unauthorized("Not authenticated")
	}

	var (
		imageURL string
		ownerID  string
	)
	err := s.db.QueryRowContext(ctx, "SELECT image_url, owner_id FROM posts WHERE id = ?", id).Scan(&imageURL, &ownerID)
	if err == sql.ErrNoRows {
		return false, apperr.NotFound("Unable to get the post by post id.")
	}
	if err != nil {
		return false, err
	}
	if ownerID != authn.UserID {
		return false, apperr.Forbidden("You are not authorized to edit this post.")
	}

	if imageURL != "" && s.images != nil {
		s.images.Remove(imageURL)
	}

	// Deleting the row also prunes it from the owner's collection; the
	// relation lives on the post side.
	if _, err := s.db.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id); err != nil {
		return false, err
	}

	s.recordEvent(ctx, "post.delete", "Post "+id+" deleted", authn.UserID)
	return true, nil
}

func (s *PostService) getPostWithCreator(ctx context.Context, id string) (models.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT p.id, p.title, p.content, p.image_url, p.owner_id, p.created_at, p.updated_at,
		       u.id, u.email, u.name, u.status, u.created_at
		FROM posts p
		JOIN users u ON u.id = p.owner_id
		WHERE p.id = ?`, id)

	post, err := scanPostWithCreator(row)
	if err == sql.ErrNoRows {
		return models.Post{}, apperr.NotFound("Unable to get the post by post id.")
	}
	if err != nil {
		return models.Post{}, err
	}
	return post, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPostWithCreator(row rowScanner) (models.Post, error) {
	var (
		post    models.Post
		creator models.User
	)
	err := row.Scan(
		&post.ID, &post.Title, &post.Content, &post.ImageURL, &post.CreatorID, &post.CreatedAt, &post.UpdatedAt,
		&creator.ID, &creator.Email, &creator.Name, &creator.Status, &creator.CreatedAt)
	if err != nil {
		return models.Post{}, err
	}
	post.Creator = &creator
	return post, nil
}

func (s *PostService) recordEvent(ctx context.Context, eventType, message, actorID string) {
	if s.events == nil {
		return
	}
	if err := s.events.CreateEvent(ctx, eventType, "info", message, &actorID); err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("Failed to record activity event")
	}
}
