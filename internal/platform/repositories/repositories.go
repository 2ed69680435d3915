package repositories

import (
	"database/sql"
	"time"

	"taskhub/internal/platform/models"
)

type OrganizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) Create(org *models.Organization) error {
	_, err := r.db.Exec(`
		INSERT INTO organizations (id, name, slug, subscription_tier, max_users, max_items, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, org.ID, org.Name, org.Slug, org.SubscriptionTier, org.MaxUsers, org.MaxItems, org.IsActive, org.CreatedAt, org.UpdatedAt)
	return err
}

func (r *OrganizationRepository) GetByID(id string) (*models.Organization, error) {
	org := &models.Organization{}
	err := r.db.QueryRow(`
		SELECT id, name, slug, subscription_tier, max_users, max_items, is_active, created_at, updated_at
		FROM organizations WHERE id = ?
	`, id).Scan(&org.ID, &org.Name, &org.Slug, &org.SubscriptionTier, &org.MaxUsers, &org.MaxItems, &org.IsActive, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return org, nil
}

func (r *OrganizationRepository) GetBySlug(slug string) (*models.Organization, error) {
	org := &models.Organization{}
	err := r.db.QueryRow(`
		SELECT id, name, slug, subscription_tier, max_users, max_items, is_active, created_at, updated_at
		FROM organizations WHERE slug = ?
	`, slug).Scan(&org.ID, &org.Name, &org.Slug, &org.SubscriptionTier, &org.MaxUsers, &org.MaxItems, &org.IsActive, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return org, nil
}

func (r *OrganizationRepository) Update(org *models.Organization) error {
	_, err := r.db.Exec(`
		UPDATE organizations SET name = ?, max_users = ?, max_items = ?, updated_at = ?
		WHERE id = ?
	`, org.Name, org.MaxUsers, org.MaxItems, org.UpdatedAt, org.ID)
	return err
}

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *models.User) error {
	_, err := r.db.Exec(`
		INSERT INTO users (id, organization_id, email, username, password_hash, full_name, role, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.OrganizationID, user.Email, user.Username, user.PasswordHash, user.FullName, user.Role, user.IsActive, user.CreatedAt)
	return err
}

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.OrganizationID, &user.Email, &user.Username, &user.PasswordHash,
		&user.FullName, &user.Role, &user.IsActive, &user.LastLoginAt, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(id string) (*models.User, error) {
	return scanUser(r.db.QueryRow(`
		SELECT id, organization_id, email, username, password_hash, full_name, role, is_active, last_login_at, created_at
		FROM users WHERE id = ?
	`, id))
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	return scanUser(r.db.QueryRow(`
		SELECT id, organization_id, email, username, password_hash, full_name, role, is_active, last_login_at, created_at
		FROM users WHERE email = ?
	`, email))
}

func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	return scanUser(r.db.QueryRow(`
		SELECT id, organization_id, email, username, password_hash, full_name, role, is_active, last_login_at, created_at
		FROM users WHERE username = ?
	`, username))
}

func (r *UserRepository) ListByOrg(orgID string) ([]*models.User, error) {
	rows, err := r.db.Query(`
		SELECT id, organization_id, email, username, password_hash, full_name, role, is_active, last_login_at, created_at
		FROM users WHERE organization_id = ? ORDER BY created_at ASC
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.OrganizationID, &user.Email, &user.Username, &user.PasswordHash,
			&user.FullName, &user.Role, &user.IsActive, &user.LastLoginAt, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepository) UpdateLastLogin(userID string, timestamp int64) error {
	_, err := r.db.Exec(`UPDATE users SET last_login_at = ? WHERE id = ?`, timestamp, userID)
	return err
}

func (r *UserRepository) UpdateRole(userID, orgID, role string) (bool, error) {
	res, err := r.db.Exec(`UPDATE users SET role = ? WHERE id = ? AND organization_id = ?`, role, userID, orgID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *UserRepository) Deactivate(userID, orgID string) (bool, error) {
	res, err := r.db.Exec(`UPDATE users SET is_active = 0 WHERE id = ? AND organization_id = ?`, userID, orgID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

type TeamRepository struct {
	db *sql.DB
}

func NewTeamRepository(db *sql.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) Create(team *models.Team) error {
	_, err := r.db.Exec(`
		INSERT INTO teams (id, organization_id, name, description, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, team.ID, team.OrganizationID, team.Name, team.Description, team.CreatedAt)
	return err
}

func (r *TeamRepository) GetByID(id, orgID string) (*models.Team, error) {
	team := &models.Team{}
	err := r.db.QueryRow(`
		SELECT id, organization_id, name, description, created_at
		FROM teams WHERE id = ? AND organization_id = ?
	`, id, orgID).Scan(&team.ID, &team.OrganizationID, &team.Name, &team.Description, &team.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return team, nil
}

func (r *TeamRepository) ListByOrg(orgID string) ([]*models.Team, error) {
	rows, err := r.db.Query(`
		SELECT id, organization_id, name, description, created_at
		FROM teams WHERE organization_id = ? ORDER BY created_at ASC
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team := &models.Team{}
		if err := rows.Scan(&team.ID, &team.OrganizationID, &team.Name, &team.Description, &team.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// AddMember is idempotent: the join table's primary key plus OR IGNORE
// makes duplicate adds a no-op.
func (r *TeamRepository) AddMember(teamID, userID string) error {
	_, err := r.db.Exec(`INSERT OR IGNORE INTO user_teams (user_id, team_id) VALUES (?, ?)`, userID, teamID)
	return err
}

func (r *TeamRepository) ListMembers(teamID string) ([]*models.User, error) {
	rows, err := r.db.Query(`
		SELECT u.id, u.organization_id, u.email, u.username, u.password_hash, u.full_name, u.role, u.is_active, u.last_login_at, u.created_at
		FROM users u
		JOIN user_teams ut ON ut.user_id = u.id
		WHERE ut.team_id = ?
		ORDER BY u.created_at ASC
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.OrganizationID, &user.Email, &user.Username, &user.PasswordHash,
			&user.FullName, &user.Role, &user.IsActive, &user.LastLoginAt, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

type TagRepository struct {
	db *sql.DB
}

func NewTagRepository(db *sql.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) Create(tag *models.Tag) error {
	if tag.CreatedAt == 0 {
		tag.CreatedAt = time.Now().Unix()
	}
	_, err := r.db.Exec(`INSERT INTO tags (id, name, color, created_at) VALUES (?, ?, ?, ?)`,
		tag.ID, tag.Name, tag.Color, tag.CreatedAt)
	return err
}

func (r *TagRepository) List() ([]*models.Tag, error) {
	rows, err := r.db.Query(`SELECT id, name, color, created_at FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*models.Tag
	for rows.Next() {
		tag := &models.Tag{}
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
