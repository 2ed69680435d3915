package models

type Item struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organization_id"`
	TeamID         *string `json:"team_id,omitempty"`
	CreatedByID    *string `json:"created_by_id,omitempty"`
	ParentItemID   *string `json:"parent_item_id,omitempty"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Status         string  `json:"status"`
	Priority       string  `json:"priority"`
	DueDate        *int64  `json:"due_date,omitempty"`
	CompletedAt    *int64  `json:"completed_at,omitempty"`
	EstimatedHours *int    `json:"estimated_hours,omitempty"`
	ActualHours    *int    `json:"actual_hours,omitempty"`
	CreatedAt      int64   `json:"created_at"`
	UpdatedAt      int64   `json:"updated_at"`

	AssigneeIDs []string `json:"assignee_ids"`
	TagIDs      []string `json:"tag_ids"`
}

// IsAssignee reports whether userID is in the item's resolved assignee set.
func (i *Item) IsAssignee(userID string) bool {
	for _, id := range i.AssigneeIDs {
		if id == userID {
			return true
		}
	}
	return false
}
