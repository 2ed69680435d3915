package export

import (
	"database/sql"
	"errors"
	"math"
	"time"

	apperrors "taskhub/internal/pkg/errors"
	"taskhub/internal/platform/models"
)

// TeamReport aggregates item progress and member workload for one team.
func (s *Service) TeamReport(orgID, teamID string) (map[string]interface{}, error) {
	var name, description string
	err := s.repo.db.QueryRow(`
		SELECT name, description FROM teams WHERE id = ? AND organization_id = ?
	`, teamID, orgID).Scan(&name, &description)
	if err != nil {
		return nil, notFoundOr(err)
	}

	var memberCount int
	if err := s.repo.db.QueryRow(`
		SELECT COUNT(*) FROM user_teams WHERE team_id = ?
	`, teamID).Scan(&memberCount); err != nil {
		return nil, err
	}

	records, err := s.repo.ListItems(orgID, Filter{TeamID: teamID})
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	statusBreakdown := map[string]int{}
	priorityBreakdown := map[string]int{}
	workload := map[string]map[string]int{}
	var total, completed, inProgress, overdue int
	for _, rec := range records {
		item := rec.Item
		total++
		statusBreakdown[item.Status]++
		priorityBreakdown[item.Priority]++
		if item.Status == models.StatusDone {
			completed++
		}
		if item.Status == models.StatusInProgress {
			inProgress++
		}
		if item.DueDate != nil && *item.DueDate < now && item.Status != models.StatusDone {
			overdue++
		}
		for _, assignee := range rec.AssigneeNames {
			w := workload[assignee]
			if w == nil {
				w = map[string]int{"assigned": 0, "completed": 0}
				workload[assignee] = w
			}
			w["assigned"]++
			if item.Status == models.StatusDone {
				w["completed"]++
			}
		}
	}

	return map[string]interface{}{
		"team": map[string]interface{}{
			"id":           teamID,
			"name":         name,
			"description":  description,
			"member_count": memberCount,
		},
		"summary": map[string]interface{}{
			"total_items":       total,
			"completed_items":   completed,
			"in_progress_items": inProgress,
			"overdue_items":     overdue,
			"completion_rate":   rate(completed, total),
		},
		"status_breakdown":   statusBreakdown,
		"priority_breakdown": priorityBreakdown,
		"member_workload":    workload,
		"generated_at":       time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// UserReport aggregates a user's assignments, created items, hours, and
// recent activity.
func (s *Service) UserReport(orgID, userID string) (map[string]interface{}, error) {
	var fullName, email, role string
	err := s.repo.db.QueryRow(`
		SELECT full_name, email, role FROM users WHERE id = ? AND organization_id = ?
	`, userID, orgID).Scan(&fullName, &email, &role)
	if err != nil {
		return nil, notFoundOr(err)
	}

	rows, err := s.repo.db.Query(`
		SELECT i.status, i.priority, i.due_date, i.estimated_hours, i.actual_hours
		FROM items i
		JOIN item_assignees ia ON ia.item_id = i.id
		WHERE ia.user_id = ? AND i.organization_id = ?
	`, userID, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now().Unix()
	priorityBreakdown := map[string]int{}
	var totalAssigned, completedAssigned, inProgressAssigned, overdueAssigned int
	var totalEstimated, totalActual int
	for rows.Next() {
		var status, priority string
		var dueDate *int64
		var estimated, actual *int
		if err := rows.Scan(&status, &priority, &dueDate, &estimated, &actual); err != nil {
			return nil, err
		}
		totalAssigned++
		priorityBreakdown[priority]++
		if status == models.StatusDone {
			completedAssigned++
		}
		if status == models.StatusInProgress {
			inProgressAssigned++
		}
		if dueDate != nil && *dueDate < now && status != models.StatusDone {
			overdueAssigned++
		}
		if estimated != nil {
			totalEstimated += *estimated
		}
		if actual != nil {
			totalActual += *actual
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var createdCount int
	if err := s.repo.db.QueryRow(`
		SELECT COUNT(*) FROM items WHERE created_by_id = ? AND organization_id = ?
	`, userID, orgID).Scan(&createdCount); err != nil {
		return nil, err
	}

	arows, err := s.repo.db.Query(`
		SELECT action, entity_type, created_at FROM activity_logs
		WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT 10
	`, userID)
	if err != nil {
		return nil, err
	}
	defer arows.Close()
	recent := []map[string]interface{}{}
	for arows.Next() {
		var action, entityType string
		var createdAt int64
		if err := arows.Scan(&action, &entityType, &createdAt); err != nil {
			return nil, err
		}
		recent = append(recent, map[string]interface{}{
			"action":      action,
			"entity_type": entityType,
			"created_at":  formatUnix(createdAt),
		})
	}
	if err := arows.Err(); err != nil {
		return nil, err
	}

	hours := map[string]interface{}{
		"total_estimated": totalEstimated,
		"total_actual":    totalActual,
		"variance":        nil,
	}
	if totalActual > 0 {
		hours["variance"] = totalActual - totalEstimated
	}

	return map[string]interface{}{
		"user": map[string]interface{}{
			"id":    userID,
			"name":  fullName,
			"email": email,
			"role":  role,
		},
		"assigned_items": map[string]interface{}{
			"total":           totalAssigned,
			"completed":       completedAssigned,
			"in_progress":     inProgressAssigned,
			"overdue":         overdueAssigned,
			"completion_rate": rate(completedAssigned, totalAssigned),
		},
		"created_items": map[string]interface{}{
			"total": createdCount,
		},
		"priority_breakdown": priorityBreakdown,
		"hours":              hours,
		"recent_activities":  recent,
		"generated_at":       time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// OrgSummary aggregates headline counts and top contributors for one
// organization.
func (s *Service) OrgSummary(orgID string) (map[string]interface{}, error) {
	var name string
	var createdAt int64
	err := s.repo.db.QueryRow(`
		SELECT name, created_at FROM organizations WHERE id = ?
	`, orgID).Scan(&name, &createdAt)
	if err != nil {
		return nil, notFoundOr(err)
	}

	itemStats, err := s.stats.ItemAnalytics(orgID)
	if err != nil {
		return nil, err
	}

	var teamCount, userCount int
	if err := s.repo.db.QueryRow(`SELECT COUNT(*) FROM teams WHERE organization_id = ?`, orgID).Scan(&teamCount); err != nil {
		return nil, err
	}
	if err := s.repo.db.QueryRow(`SELECT COUNT(*) FROM users WHERE organization_id = ?`, orgID).Scan(&userCount); err != nil {
		return nil, err
	}

	thirtyDaysAgo := time.Now().Unix() - 30*86400
	var activeUsers int
	if err := s.repo.db.QueryRow(`
		SELECT COUNT(DISTINCT ia.user_id)
		FROM item_assignees ia
		JOIN items i ON i.id = ia.item_id
		WHERE i.organization_id = ? AND i.created_at >= ?
	`, orgID, thirtyDaysAgo).Scan(&activeUsers); err != nil {
		return nil, err
	}

	rows, err := s.repo.db.Query(`
		SELECT u.full_name, COUNT(i.id) AS items_created
		FROM users u
		JOIN items i ON i.created_by_id = u.id
		WHERE u.organization_id = ?
		GROUP BY u.id, u.full_name
		ORDER BY items_created DESC
		LIMIT 5
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	contributors := []map[string]interface{}{}
	for rows.Next() {
		var contributor string
		var count int
		if err := rows.Scan(&contributor, &count); err != nil {
			return nil, err
		}
		contributors = append(contributors, map[string]interface{}{
			"name":          contributor,
			"items_created": count,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"organization": map[string]interface{}{
			"id":         orgID,
			"name":       name,
			"created_at": formatUnix(createdAt),
		},
		"overview": map[string]interface{}{
			"total_teams":      teamCount,
			"total_users":      userCount,
			"active_users_30d": activeUsers,
		},
		"items":            itemStats,
		"top_contributors": contributors,
		"generated_at":     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}

func notFoundOr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	return err
}
