package notifications

import (
	apperrors "taskhub/internal/pkg/errors"
	"taskhub/internal/platform/models"
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(userID string, filter ListFilter) ([]*models.Notification, error) {
	return s.repo.List(userID, filter)
}

func (s *Service) Get(id, userID string) (*models.Notification, error) {
	n, err := s.repo.GetByID(id, userID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, apperrors.ErrNotFound
	}
	return n, nil
}

func (s *Service) MarkRead(id, userID string) (*models.Notification, error) {
	if _, err := s.repo.MarkRead(id, userID); err != nil {
		return nil, err
	}
	return s.Get(id, userID)
}

func (s *Service) MarkAllRead(userID string) (int64, error) {
	return s.repo.MarkAllRead(userID)
}

func (s *Service) MarkBulkRead(ids []string, userID string) (int64, error) {
	return s.repo.MarkBulkRead(ids, userID)
}

func (s *Service) Delete(id, userID string) error {
	deleted, err := s.repo.Delete(id, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *Service) DeleteAllRead(userID string) (int64, error) {
	return s.repo.DeleteAllRead(userID)
}

func (s *Service) GetStats(userID string) (*Stats, error) {
	return s.repo.GetStats(userID)
}

func (s *Service) GetPreferences(userID string) (*models.NotificationPreference, error) {
	return s.repo.GetOrCreatePreferences(userID)
}

func (s *Service) UpdatePreferences(userID string, patch PreferencePatch) (*models.NotificationPreference, error) {
	return s.repo.UpdatePreferences(userID, patch)
}
