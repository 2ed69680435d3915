package items

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/pkg/errors"
	"taskhub/internal/platform/activity"
	"taskhub/internal/platform/models"
)

// Notifier receives fan-out triggers after a mutation commits. Failures
// inside the notifier never affect the mutation.
type Notifier interface {
	ItemCreated(item *models.Item, creator *models.User)
	ItemUpdated(item *models.Item, updater *models.User, changes map[string]interface{})
	ItemCompleted(item *models.Item, completer *models.User)
}

// Dispatcher delivers outbound webhook events, fire-and-forget.
type Dispatcher interface {
	Dispatch(event, orgID string, data interface{})
}

type CreateInput struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Status         string   `json:"status"`
	Priority       string   `json:"priority"`
	DueDate        *int64   `json:"due_date"`
	EstimatedHours *int     `json:"estimated_hours"`
	TeamID         *string  `json:"team_id"`
	ParentItemID   *string  `json:"parent_item_id"`
	AssigneeIDs    []string `json:"assignee_ids"`
	TagIDs         []string `json:"tag_ids"`
}

type Service struct {
	repo     *Repository
	activity *activity.Logger
	notifier Notifier
	hooks    Dispatcher
}

func NewService(repo *Repository, logger *activity.Logger, notifier Notifier, hooks Dispatcher) *Service {
	return &Service{repo: repo, activity: logger, notifier: notifier, hooks: hooks}
}

func (s *Service) Create(orgID string, creator *models.User, input CreateInput) (*models.Item, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", errors.ErrValidation)
	}
	if input.Status == "" {
		input.Status = models.StatusTodo
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !models.ValidStatus(input.Status) {
		return nil, fmt.Errorf("%w: invalid status %q", errors.ErrValidation, input.Status)
	}
	if !models.ValidPriority(input.Priority) {
		return nil, fmt.Errorf("%w: invalid priority %q", errors.ErrValidation, input.Priority)
	}

	if input.TeamID != nil {
		ok, err := s.repo.TeamExists(*input.TeamID, orgID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("team: %w", errors.ErrNotFound)
		}
	}
	if input.ParentItemID != nil {
		ok, err := s.repo.ItemExists(*input.ParentItemID, orgID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("parent item: %w", errors.ErrNotFound)
		}
	}

	// Unresolvable assignee/tag ids are dropped, not rejected.
	assigneeIDs, err := s.repo.ResolveAssigneeIDs(orgID, input.AssigneeIDs)
	if err != nil {
		return nil, err
	}
	tagIDs, err := s.repo.ResolveTagIDs(input.TagIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	creatorID := creator.ID
	item := &models.Item{
		ID:             "itm_" + uuid.New().String(),
		OrganizationID: orgID,
		TeamID:         input.TeamID,
		CreatedByID:    &creatorID,
		ParentItemID:   input.ParentItemID,
		Title:          input.Title,
		Description:    input.Description,
		Status:         input.Status,
		Priority:       input.Priority,
		DueDate:        input.DueDate,
		EstimatedHours: input.EstimatedHours,
		CreatedAt:      now,
		UpdatedAt:      now,
		AssigneeIDs:    assigneeIDs,
		TagIDs:         tagIDs,
	}

	tx, err := s.repo.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.repo.CreateTx(tx, item); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceAssigneesTx(tx, item.ID, assigneeIDs); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceTagsTx(tx, item.ID, tagIDs); err != nil {
		return nil, err
	}
	if err := s.activity.LogTx(tx, &activity.Entry{
		Action:     "created",
		EntityType: "item",
		EntityID:   item.ID,
		UserID:     &creatorID,
		ItemID:     &item.ID,
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.ItemCreated(item, creator)
	}
	if s.hooks != nil {
		s.hooks.Dispatch("item.created", orgID, item)
	}

	return item, nil
}

func (s *Service) Get(itemID, orgID string) (*models.Item, error) {
	item, err := s.repo.GetByID(itemID, orgID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.ErrNotFound
	}
	return item, nil
}

func (s *Service) List(orgID string, filter Filter) ([]*models.Item, error) {
	return s.repo.List(orgID, filter)
}

func (s *Service) Update(itemID, orgID string, updater *models.User, patch Patch) (*models.Item, error) {
	item, err := s.repo.GetByID(itemID, orgID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.ErrNotFound
	}

	if patch.Status != nil && !models.ValidStatus(*patch.Status) {
		return nil, fmt.Errorf("%w: invalid status %q", errors.ErrValidation, *patch.Status)
	}
	if patch.Priority != nil && !models.ValidPriority(*patch.Priority) {
		return nil, fmt.Errorf("%w: invalid priority %q", errors.ErrValidation, *patch.Priority)
	}
	if patch.TeamID != nil && *patch.TeamID != "" {
		ok, err := s.repo.TeamExists(*patch.TeamID, orgID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("team: %w", errors.ErrNotFound)
		}
	}

	changes := patch.applyScalars(item)

	var newAssignees, newTags []string
	replaceAssignees := patch.AssigneeIDs != nil
	replaceTags := patch.TagIDs != nil
	if replaceAssignees {
		newAssignees, err = s.repo.ResolveAssigneeIDs(orgID, *patch.AssigneeIDs)
		if err != nil {
			return nil, err
		}
		changes["assignees"] = newAssignees
	}
	if replaceTags {
		newTags, err = s.repo.ResolveTagIDs(*patch.TagIDs)
		if err != nil {
			return nil, err
		}
		changes["tags"] = newTags
	}

	// completed_at is stamped exactly once, on the first transition to
	// DONE, and is never cleared by later updates.
	completedNow := false
	if item.Status == models.StatusDone && item.CompletedAt == nil {
		now := time.Now().Unix()
		item.CompletedAt = &now
		completedNow = true
	}

	item.UpdatedAt = time.Now().Unix()

	tx, err := s.repo.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.repo.UpdateTx(tx, item); err != nil {
		return nil, err
	}
	if replaceAssignees {
		if err := s.repo.ReplaceAssigneesTx(tx, item.ID, newAssignees); err != nil {
			return nil, err
		}
		item.AssigneeIDs = newAssignees
	}
	if replaceTags {
		if err := s.repo.ReplaceTagsTx(tx, item.ID, newTags); err != nil {
			return nil, err
		}
		item.TagIDs = newTags
	}

	if len(changes) > 0 {
		updaterID := updater.ID
		if err := s.activity.LogTx(tx, &activity.Entry{
			Action:     "updated",
			EntityType: "item",
			EntityID:   item.ID,
			UserID:     &updaterID,
			ItemID:     &item.ID,
			Details:    changes,
		}); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if len(changes) > 0 && s.notifier != nil {
		s.notifier.ItemUpdated(item, updater, changes)
	}
	if completedNow && s.notifier != nil {
		s.notifier.ItemCompleted(item, updater)
	}
	if len(changes) > 0 && s.hooks != nil {
		s.hooks.Dispatch("item.updated", orgID, item)
		if completedNow {
			s.hooks.Dispatch("item.completed", orgID, item)
		}
	}

	return item, nil
}

func (s *Service) Delete(itemID, orgID string, actor *models.User) error {
	item, err := s.repo.GetByID(itemID, orgID)
	if err != nil {
		return err
	}
	if item == nil {
		return errors.ErrNotFound
	}

	tx, err := s.repo.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// The "deleted" row references no item so it survives the cascade.
	actorID := actor.ID
	if err := s.activity.LogTx(tx, &activity.Entry{
		Action:     "deleted",
		EntityType: "item",
		EntityID:   item.ID,
		UserID:     &actorID,
	}); err != nil {
		return err
	}
	if err := s.repo.DeleteTx(tx, item.ID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	if s.hooks != nil {
		s.hooks.Dispatch("item.deleted", orgID, map[string]string{"id": item.ID, "title": item.Title})
	}
	return nil
}

func (s *Service) AddAttachment(itemID, orgID string, uploader *models.User, att *models.Attachment) (*models.Attachment, error) {
	ok, err := s.repo.ItemExists(itemID, orgID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.ErrNotFound
	}

	uploaderID := uploader.ID
	att.ID = "att_" + uuid.New().String()
	att.ItemID = itemID
	att.UploadedByID = &uploaderID
	att.CreatedAt = time.Now().Unix()

	if err := s.repo.CreateAttachment(att); err != nil {
		return nil, err
	}
	return att, nil
}

func (s *Service) ListAttachments(itemID, orgID string) ([]*models.Attachment, error) {
	ok, err := s.repo.ItemExists(itemID, orgID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.ErrNotFound
	}
	return s.repo.ListAttachments(itemID)
}
