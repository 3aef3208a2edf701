package services

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkwell-app/inkwell-be/internal/apperr"
	"github.com/inkwell-app/inkwell-be/internal/auth"
	"github.com/inkwell-app/inkwell-be/internal/models"
	"github.com/inkwell-app/inkwell-be/internal/validation"
)

// bcryptCost matches the work factor user passwords have always been hashed with.
const bcryptCost = 12

// RegisterInput is the payload for the createUser operation.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=5"`
	Name     string `json:"name" validate:"required"`
}

// UserServiceProvider defines the interface for user operations.
type UserServiceProvider interface {
	Register(ctx context.Context, input RegisterInput) (models.User, error)
	Login(ctx context.Context, email, password string) (models.AuthData, error)
	CurrentUser(ctx context.Context, authn auth.Result) (models.User, error)
	UpdateStatus(ctx context.Context, authn auth.Result, status string) (models.User, error)
}

// UserService provides registration, login, and profile operations.
type UserService struct {
	db     *sql.DB
	codec  *auth.TokenCodec
	events EventServiceProvider
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, codec *auth.TokenCodec, events EventServiceProvider) *UserService {
	return &UserService{db: db, codec: codec, events: events}
}

// Register validates the input, rejects duplicate emails, and persists a new
// user with a hashed password.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	if violations := validation.Check(input); len(violations) > 0 {
		return models.User{}, apperr.Validation(violations)
	}

	var existingID string
	err := s.db.QueryRowContext(ctx, "SELECT id FROM users WHERE email = ?", input.Email).Scan(&existingID)
	if err == nil {
		return models.User{}, apperr.Conflict("User exists already!")
	}
	if err != sql.ErrNoRows {
		return models.User{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:        uuid.New().String(),
		Email:     input.Email,
		Name:      input.Name,
		Status:    models.DefaultStatus,
		Posts:     []models.Post{},
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, name, status, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		user.ID, user.Email, string(hashedPassword), user.Name, user.Status, user.CreatedAt)
	if err != nil {
		return models.User{}, err
	}

	s.recordEvent(ctx, "user.register", "New user "+user.Email+" registered", user.ID)
	return user, nil
}

// Login verifies the credentials and issues a signed token.
func (s *UserService) Login(ctx context.Context, email, password string) (models.AuthData, error) {
	var (
		userID string
		hash   string
	)
	err := s.db.QueryRowContext(ctx, "SELECT id, password_hash FROM users WHERE email = ?", email).Scan(&userID, &hash)
	if err == sql.ErrNoRows {
		// Served as 401 so unknown emails and wrong passwords look alike.
		return models.AuthData{}, &apperr.Error{Status: http.StatusUnauthorized, Message: "User not found."}
	}
	if err != nil {
		return models.AuthData{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return models.AuthData{}, apperr.Unauthorized("Password is incorrect")
	}

	token, err := s.codec.Issue(userID, email)
	if err != nil {
		return models.AuthData{}, err
	}

	s.recordEvent(ctx, "user.login", "User "+email+" logged in", userID)
	return models.AuthData{UserID: userID, Token: token}, nil
}

// CurrentUser returns the acting user with their posts resolved.
func (s *UserService) CurrentUser(ctx context.Context, authn auth.Result) (models.User, error) {
	if !authn.Authenticated {
		return models.User{}, apperr.Unauthorized("Not authenticated")
	}
	return s.getUserByID(ctx, authn.UserID)
}

// UpdateStatus sets the acting user's status line. Ownership is implied: the
// user is loaded by the acting id, so no separate authorization check exists.
func (s *UserService) UpdateStatus(ctx context.Context, authn auth.Result, status string) (models.User, error) {
	if !authn.Authenticated {
		return models.User{}, apperr.Unauthorized("Not authenticated")
	}

	user, err := s.getUserByID(ctx, authn.UserID)
	if err != nil {
		return models.User{}, err
	}

	user.Status = status
	_, err = s.db.ExecContext(ctx, "UPDATE users SET status = ? WHERE id = ?", status, user.ID)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *UserService) getUserByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	row := s.db.QueryRowContext(ctx, "SELECT id, email, name, status, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Status, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return models.User{}, apperr.NotFound("Unable to get the user to find the status.")
	}
	if err != nil {
		return models.User{}, err
	}

	user.Posts, err = s.postsByOwner(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// postsByOwner resolves a user's posts in creation order.
func (s *UserService) postsByOwner(ctx context.Context, ownerID string) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, content, image_url, owner_id, created_at, updated_at FROM posts WHERE owner_id = ? ORDER BY created_at ASC, rowid ASC", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.ID, &post.Title, &post.Content, &post.ImageURL, &post.CreatorID, &post.CreatedAt, &post.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (s *UserService) recordEvent(ctx context.Context, eventType, message, actorID string) {
	if s.events == nil {
		return
	}
	if err := s.events.CreateEvent(ctx, eventType, "info", message, &actorID); err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("Failed to record activity event")
	}
}
