package items

import (
	"fmt"

	"taskhub/internal/platform/models"
)

// Patch is an explicit optional-field update: nil means "leave alone".
// AssigneeIDs and TagIDs, when present, replace the current set.
type Patch struct {
	Title          *string   `json:"title"`
	Description    *string   `json:"description"`
	Status         *string   `json:"status"`
	Priority       *string   `json:"priority"`
	DueDate        *int64    `json:"due_date"`
	EstimatedHours *int      `json:"estimated_hours"`
	ActualHours    *int      `json:"actual_hours"`
	TeamID         *string   `json:"team_id"`
	AssigneeIDs    *[]string `json:"assignee_ids"`
	TagIDs         *[]string `json:"tag_ids"`
}

// applyScalars writes the set scalar fields onto the item and returns a
// {field: {from, to}} record per field whose value actually changed.
func (p *Patch) applyScalars(item *models.Item) map[string]interface{} {
	changes := make(map[string]interface{})

	setString := func(field string, target *string, value *string) {
		if value == nil || *target == *value {
			return
		}
		changes[field] = change(*target, *value)
		*target = *value
	}

	setString("title", &item.Title, p.Title)
	setString("description", &item.Description, p.Description)
	setString("status", &item.Status, p.Status)
	setString("priority", &item.Priority, p.Priority)

	if p.DueDate != nil && !int64PtrEq(item.DueDate, p.DueDate) {
		changes["due_date"] = change(int64PtrStr(item.DueDate), int64PtrStr(p.DueDate))
		v := *p.DueDate
		item.DueDate = &v
	}
	if p.EstimatedHours != nil && !intPtrEq(item.EstimatedHours, p.EstimatedHours) {
		changes["estimated_hours"] = change(intPtrStr(item.EstimatedHours), intPtrStr(p.EstimatedHours))
		v := *p.EstimatedHours
		item.EstimatedHours = &v
	}
	if p.ActualHours != nil && !intPtrEq(item.ActualHours, p.ActualHours) {
		changes["actual_hours"] = change(intPtrStr(item.ActualHours), intPtrStr(p.ActualHours))
		v := *p.ActualHours
		item.ActualHours = &v
	}
	if p.TeamID != nil && !strPtrEq(item.TeamID, p.TeamID) {
		changes["team_id"] = change(strPtrStr(item.TeamID), *p.TeamID)
		v := *p.TeamID
		item.TeamID = &v
	}

	return changes
}

func change(from, to string) map[string]interface{} {
	return map[string]interface{}{"from": from, "to": to}
}

func int64PtrEq(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intPtrEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func strPtrEq(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func int64PtrStr(p *int64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%d", *p)
}

func intPtrStr(p *int) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%d", *p)
}

func strPtrStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
