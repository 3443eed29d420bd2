// Package service contains the business logic layer of the application.
//
// Handlers parse HTTP and shape responses; services enforce the domain
// rules; repositories talk to the database. Services receive repository
// interfaces, never concrete types, so tests inject in-memory mocks.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/breakline/surfspots/internal/apperror"
	"github.com/breakline/surfspots/internal/model"
	"github.com/breakline/surfspots/internal/repository"
)

// CommentService enforces the comment domain rules:
//
//   - a top-level comment requires a rating in [1,5]
//   - a reply inherits its spot from the parent and never carries a rating
//   - only the author or an admin may edit or delete a comment
//   - deleting a top-level comment takes its direct replies with it
//
// These rules run as explicit validation before every write — there is no
// implicit model-layer hook to rely on.
type CommentService struct {
	comments repository.CommentRepository
	spots    repository.SpotRepository
	logger   *slog.Logger
}

// NewCommentService creates a CommentService.
func NewCommentService(comments repository.CommentRepository, spots repository.SpotRepository, logger *slog.Logger) *CommentService {
	return &CommentService{
		comments: comments,
		spots:    spots,
		logger:   logger,
	}
}

// Create validates and saves a new comment authored by actor.
//
// For replies (parentID set), the referenced parent must exist; the spot is
// inherited from the parent — the caller's spotID is ignored — and any
// supplied rating is discarded. For top-level comments, spotID must name an
// existing spot and rating is mandatory.
func (s *CommentService) Create(ctx context.Context, actor *model.User, spotID, parentID, text string, rating *int) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.ValidationFailed("text", "text is required")
	}

	comment := &model.Comment{
		UserID: actor.ID,
		Text:   text,
	}

	if parentID != "" {
		parent, err := s.comments.GetCommentByID(ctx, parentID)
		if err != nil {
			return nil, err
		}
		// Replies always attach to the parent's spot and never carry a
		// rating, regardless of what the caller sent.
		comment.SpotID = parent.SpotID
		comment.ParentID = &parent.ID
	} else {
		if spotID == "" {
			return nil, apperror.ValidationFailed("spotId", "spotId is required for top-level comments")
		}
		if rating == nil {
			return nil, apperror.ValidationFailed("rating", "rating is required for top-level comments")
		}
		if *rating < model.MinRating || *rating > model.MaxRating {
			return nil, apperror.ValidationFailed("rating",
				fmt.Sprintf("rating must be between %d and %d", model.MinRating, model.MaxRating))
		}
		if _, err := s.spots.GetSpotByID(ctx, spotID); err != nil {
			return nil, err
		}
		comment.SpotID = spotID
		r := *rating
		comment.Rating = &r
	}

	if err := s.comments.CreateComment(ctx, comment); err != nil {
		s.logger.Error("failed to create comment",
			slog.String("spotID", comment.SpotID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	s.logger.Info("comment created",
		slog.String("id", comment.ID),
		slog.String("spotID", comment.SpotID),
		slog.Bool("reply", comment.IsReply()),
	)

	// Re-read so the response carries the populated author.
	return s.comments.GetCommentByID(ctx, comment.ID)
}

// Get retrieves a single comment with its author populated.
func (s *CommentService) Get(ctx context.Context, id string) (*model.Comment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "comment ID is required")
	}
	return s.comments.GetCommentByID(ctx, id)
}

// ListAll returns every comment in the system, authors populated.
func (s *CommentService) ListAll(ctx context.Context) ([]model.Comment, error) {
	comments, err := s.comments.ListComments(ctx)
	if err != nil {
		s.logger.Error("failed to list comments", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}

// Update changes a comment's text and marks it edited. Only the author or
// an admin may do this; rating and parent are immutable after creation.
// Authorization failures happen before any write, so a rejected update
// leaves no partial state.
func (s *CommentService) Update(ctx context.Context, actor *model.User, id, text string) (*model.Comment, error) {
	comment, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authorizeCommentMutation(actor, comment, "update"); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.ValidationFailed("text", "text is required")
	}

	comment.Text = text
	comment.Edited = true

	if err := s.comments.UpdateComment(ctx, comment); err != nil {
		s.logger.Error("failed to update comment",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating comment: %w", err)
	}

	s.logger.Info("comment updated", slog.String("id", id))
	return comment, nil
}

// Delete removes a comment. Only the author or an admin may do this.
// A top-level comment takes its direct replies with it (one level — the
// reply tree never nests deeper); a reply removes only itself.
func (s *CommentService) Delete(ctx context.Context, actor *model.User, id string) error {
	comment, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return err
	}

	if err := authorizeCommentMutation(actor, comment, "delete"); err != nil {
		return err
	}

	if err := s.comments.DeleteCommentCascade(ctx, id); err != nil {
		s.logger.Error("failed to delete comment",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting comment: %w", err)
	}

	s.logger.Info("comment deleted",
		slog.String("id", id),
		slog.Bool("reply", comment.IsReply()),
	)
	return nil
}

// authorizeCommentMutation allows the comment's author and admins through.
func authorizeCommentMutation(actor *model.User, comment *model.Comment, action string) error {
	if actor.ID == comment.UserID || actor.IsAdmin() {
		return nil
	}
	return apperror.Forbidden(fmt.Sprintf("not authorized to %s this comment", action))
}
