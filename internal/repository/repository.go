// Package repository defines the storage interfaces consumed by the service
// layer. Services depend on these interfaces, never on a concrete database
// type — tests inject in-memory mocks, production injects the sqlite package.
package repository

import (
	"context"

	"github.com/breakline/surfspots/internal/model"
)

// UserRepository manages user accounts.
type UserRepository interface {
	// UpsertByEmail creates the user on first sign-in or refreshes their
	// profile fields (username, image, provider) on return visits.
	// The email is the identity key; role is never touched by upsert.
	UpsertByEmail(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// SpotRepository manages surf spots, including their embedded forecast
// snapshot (written and read as part of the spot row).
type SpotRepository interface {
	CreateSpot(ctx context.Context, spot *model.SurfSpot) error
	GetSpotByID(ctx context.Context, id string) (*model.SurfSpot, error)
	// ListSpots returns all spots, newest first, with User populated.
	ListSpots(ctx context.Context) ([]model.SurfSpot, error)
	UpdateSpot(ctx context.Context, spot *model.SurfSpot) error
	// DeleteSpot removes the spot and every comment attached to it.
	DeleteSpot(ctx context.Context, id string) error
}

// CommentRepository manages the flat two-level comment records.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetCommentByID(ctx context.Context, id string) (*model.Comment, error)
	// ListCommentsBySpot returns a spot's comments, newest first, with User populated.
	ListCommentsBySpot(ctx context.Context, spotID string) ([]model.Comment, error)
	// ListComments returns every comment in the system, newest first, with User populated.
	ListComments(ctx context.Context) ([]model.Comment, error)
	UpdateComment(ctx context.Context, comment *model.Comment) error
	// DeleteCommentCascade deletes the comment and, when it is top-level,
	// all comments whose parent is that comment — atomically.
	DeleteCommentCascade(ctx context.Context, id string) error
}
