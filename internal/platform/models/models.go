package models

// Enum values below are the persisted wire strings. They must never change:
// stored rows and API consumers depend on the exact literals.

const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusInReview   = "in_review"
	StatusDone       = "done"
	StatusArchived   = "archived"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleViewer = "viewer"
)

const (
	TierFree         = "free"
	TierStarter      = "starter"
	TierProfessional = "professional"
	TierEnterprise   = "enterprise"
)

var roleRanks = map[string]int{
	RoleViewer: 0,
	RoleMember: 1,
	RoleAdmin:  2,
	RoleOwner:  3,
}

// RoleRank returns the hierarchy rank for a role. Unknown roles rank
// below viewer so they never pass a gate.
func RoleRank(role string) int {
	if rank, ok := roleRanks[role]; ok {
		return rank
	}
	return -1
}

func ValidStatus(s string) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusInReview, StatusDone, StatusArchived:
		return true
	}
	return false
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func ValidRole(r string) bool {
	_, ok := roleRanks[r]
	return ok
}

type Organization struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Slug             string `json:"slug"`
	SubscriptionTier string `json:"subscription_tier"`
	MaxUsers         int    `json:"max_users"`
	MaxItems         int    `json:"max_items"`
	IsActive         bool   `json:"is_active"`
	CreatedAt        int64  `json:"created_at"`
	UpdatedAt        int64  `json:"updated_at"`
}

type User struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	PasswordHash   string `json:"-"`
	FullName       string `json:"full_name"`
	Role           string `json:"role"`
	IsActive       bool   `json:"is_active"`
	LastLoginAt    *int64 `json:"last_login_at,omitempty"`
	CreatedAt      int64  `json:"created_at"`

	Organization *Organization `json:"organization,omitempty"`
}

type Team struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	CreatedAt      int64  `json:"created_at"`

	Members []*User `json:"members,omitempty"`
}

// Tags are a shared pool, deliberately not scoped to an organization.
type Tag struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	CreatedAt int64  `json:"created_at"`
}

type Comment struct {
	ID        string  `json:"id"`
	ItemID    string  `json:"item_id"`
	AuthorID  *string `json:"author_id,omitempty"`
	Content   string  `json:"content"`
	CreatedAt int64   `json:"created_at"`
	UpdatedAt int64   `json:"updated_at"`
}

type Attachment struct {
	ID           string  `json:"id"`
	ItemID       string  `json:"item_id"`
	Filename     string  `json:"filename"`
	FilePath     string  `json:"file_path"`
	FileSize     int64   `json:"file_size"`
	MimeType     string  `json:"mime_type"`
	UploadedByID *string `json:"uploaded_by_id,omitempty"`
	CreatedAt    int64   `json:"created_at"`
}

type UsageLog struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Endpoint       string `json:"endpoint"`
	Method         string `json:"method"`
	StatusCode     int    `json:"status_code"`
	ResponseTimeMS int64  `json:"response_time_ms"`
	CreatedAt      int64  `json:"created_at"`
}
