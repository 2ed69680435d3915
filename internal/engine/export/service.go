package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"taskhub/internal/engine/analytics"
	"taskhub/internal/platform/models"
)

// itemCSVHeader is fixed; consumers parse exports by column position,
// so the header is emitted even when no rows match.
var itemCSVHeader = []string{
	"ID", "Title", "Description", "Status", "Priority", "Team ID", "Created By",
	"Assignees", "Tags", "Created At", "Due Date", "Completed At",
	"Estimated Hours", "Actual Hours",
}

type Service struct {
	repo  *Repository
	stats *analytics.Service
}

func NewService(repo *Repository, stats *analytics.Service) *Service {
	return &Service{repo: repo, stats: stats}
}

func (s *Service) ItemsCSV(orgID string, filter Filter) ([]byte, error) {
	records, err := s.repo.ListItems(orgID, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(itemCSVHeader); err != nil {
		return nil, err
	}
	for _, rec := range records {
		item := rec.Item
		row := []string{
			item.ID,
			item.Title,
			item.Description,
			item.Status,
			item.Priority,
			strPtr(item.TeamID),
			rec.CreatedByName,
			strings.Join(rec.AssigneeNames, ", "),
			strings.Join(rec.TagNames, ", "),
			formatUnix(item.CreatedAt),
			formatUnixPtr(item.DueDate),
			formatUnixPtr(item.CompletedAt),
			intPtr(item.EstimatedHours),
			intPtr(item.ActualHours),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type itemJSON struct {
	*models.Item
	CreatedByName string            `json:"created_by_name,omitempty"`
	AssigneeNames []string          `json:"assignee_names,omitempty"`
	TagNames      []string          `json:"tag_names,omitempty"`
	Comments      []*models.Comment `json:"comments,omitempty"`
}

type itemsEnvelope struct {
	ExportDate     string      `json:"export_date"`
	OrganizationID string      `json:"organization_id"`
	TotalItems     int         `json:"total_items"`
	Items          []*itemJSON `json:"items"`
}

func (s *Service) ItemsJSON(orgID string, filter Filter, includeComments bool) ([]byte, error) {
	records, err := s.repo.ListItems(orgID, filter)
	if err != nil {
		return nil, err
	}

	env := &itemsEnvelope{
		ExportDate:     time.Now().UTC().Format(time.RFC3339),
		OrganizationID: orgID,
		Items:          make([]*itemJSON, 0, len(records)),
	}
	for _, rec := range records {
		if includeComments {
			if err := s.repo.loadComments(rec); err != nil {
				return nil, err
			}
		}
		env.Items = append(env.Items, &itemJSON{
			Item:          rec.Item,
			CreatedByName: rec.CreatedByName,
			AssigneeNames: rec.AssigneeNames,
			TagNames:      rec.TagNames,
			Comments:      rec.Comments,
		})
	}
	env.TotalItems = len(env.Items)
	return json.MarshalIndent(env, "", "  ")
}

func (s *Service) ActivityCSV(orgID string) ([]byte, error) {
	rows, err := s.repo.ListActivity(orgID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"ID", "Action", "Entity Type", "Entity ID", "User", "Item ID", "Details", "Created At"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := []string{
			row.ID, row.Action, row.EntityType, row.EntityID, row.Username,
			row.ItemID, row.Details, formatUnix(row.CreatedAt),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatUnix(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}

func formatUnixPtr(ts *int64) string {
	if ts == nil {
		return ""
	}
	return formatUnix(*ts)
}

func strPtr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intPtr(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
