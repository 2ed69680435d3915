package comments

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/engine/items"
	"taskhub/internal/pkg/errors"
	"taskhub/internal/platform/activity"
	"taskhub/internal/platform/models"
)

// Notifier receives the comment-added fan-out trigger after commit.
type Notifier interface {
	CommentAdded(comment *models.Comment, item *models.Item, author *models.User)
}

type Service struct {
	repo     *Repository
	items    *items.Repository
	activity *activity.Logger
	notifier Notifier
	hooks    items.Dispatcher
}

func NewService(repo *Repository, itemRepo *items.Repository, logger *activity.Logger, notifier Notifier, hooks items.Dispatcher) *Service {
	return &Service{repo: repo, items: itemRepo, activity: logger, notifier: notifier, hooks: hooks}
}

func (s *Service) Add(itemID, orgID string, author *models.User, content string) (*models.Comment, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", errors.ErrValidation)
	}

	item, err := s.items.GetByID(itemID, orgID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.ErrNotFound
	}

	now := time.Now().Unix()
	authorID := author.ID
	comment := &models.Comment{
		ID:        "cmt_" + uuid.New().String(),
		ItemID:    item.ID,
		AuthorID:  &authorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := s.repo.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.repo.CreateTx(tx, comment); err != nil {
		return nil, err
	}
	if err := s.activity.LogTx(tx, &activity.Entry{
		Action:     "commented",
		EntityType: "item",
		EntityID:   item.ID,
		UserID:     &authorID,
		ItemID:     &item.ID,
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.CommentAdded(comment, item, author)
	}
	if s.hooks != nil {
		s.hooks.Dispatch("comment.created", orgID, comment)
	}

	return comment, nil
}

func (s *Service) ListByItem(itemID, orgID string) ([]*models.Comment, error) {
	ok, err := s.items.ItemExists(itemID, orgID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.ErrNotFound
	}
	return s.repo.ListByItem(itemID)
}
