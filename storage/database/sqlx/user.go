package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/taskforge/backend/core"
	"github.com/taskforge/backend/core/user"
)

type userRow struct {
	ID           string      `db:"id"`
	DisplayName  null.String `db:"display_name"`
	Email        string      `db:"email"`
	Role         string      `db:"role"`
	PasswordHash []byte      `db:"password_hash"`
	IsActive     bool        `db:"is_active"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	LastActivity null.Time   `db:"last_activity"`
}

func (r userRow) user() user.User {
	return user.User{
		ID:           r.ID,
		DisplayName:  r.DisplayName,
		Email:        r.Email,
		Role:         r.Role,
		PasswordHash: r.PasswordHash,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastActivity: r.LastActivity,
	}
}

func newUserRow(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		DisplayName:  usr.DisplayName,
		Email:        usr.Email,
		Role:         usr.Role,
		PasswordHash: usr.PasswordHash,
		IsActive:     usr.IsActive,
		CreatedAt:    usr.CreatedAt,
		UpdatedAt:    usr.UpdatedAt,
		LastActivity: usr.LastActivity,
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) users(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.user())
	}
	return users
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	q := `SELECT EXISTS(SELECT 1 FROM "user" WHERE email = ?`
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		q += " AND id NOT IN (?)"
		var err error
		if q, args, err = sqlx.In(q+")", email, ids); err != nil {
			return errors.Wrap(err, "checking user uniqueness")
		}
	} else {
		q += ")"
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	row := newUserRow(usr)
	_, err := repo.db.NamedExecContext(ctx,
		`INSERT INTO "user" (id, display_name, email, role, password_hash, is_active, created_at, updated_at, last_activity)
		 VALUES (:id, :display_name, :email, :role, :password_hash, :is_active, :created_at, :updated_at, :last_activity)`, row)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return row.user(), nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context, orderings ...core.DBOrdering) ([]user.User, error) {
	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM "user"`+orderBy(orderings)); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return repo.users(rows), nil
}

func (repo userRepository) RecentUsers(ctx context.Context, limit int) ([]user.User, error) {
	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM "user" ORDER BY created_at DESC LIMIT $1`, limit); err != nil {
		return nil, errors.Wrap(err, "querying recent users")
	}
	return repo.users(rows), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrNotFound
	}
	var row userRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM "user" WHERE id = $1`, id); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by ID")
	}
	return row.user(), nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var row userRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM "user" WHERE email = $1`, email); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by email")
	}
	return row.user(), nil
}

func (repo userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter, orderings ...core.DBOrdering) ([]user.User, error) {
	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, "(display_name ILIKE "+p+" OR email ILIKE "+p+")")
	}
	if filter.Role != "" {
		conds = append(conds, "role = "+arg(filter.Role))
	}
	if filter.IsActive != nil {
		conds = append(conds, "is_active = "+arg(*filter.IsActive))
	}
	if !filter.CreatedFrom.IsZero() {
		conds = append(conds, "created_at >= "+arg(filter.CreatedFrom.UTC()))
	}
	if !filter.CreatedTo.IsZero() {
		conds = append(conds, "created_at <= "+arg(filter.CreatedTo.UTC()))
	}

	q := `SELECT * FROM "user"`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += orderBy(orderings)

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return repo.users(rows), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	orig, err := repo.GetUserByID(ctx, usr.ID)
	if err != nil {
		return user.User{}, err
	}
	merged := mergeUser(orig, usr, isActive)

	row := newUserRow(merged)
	if _, err = repo.db.NamedExecContext(ctx,
		`UPDATE "user"
		 SET display_name = :display_name, email = :email, role = :role,
		     password_hash = :password_hash, is_active = :is_active,
		     updated_at = :updated_at, last_activity = :last_activity
		 WHERE id = :id`, row); err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return merged, nil
}

// mergeUser applies the set fields of upd onto orig.
func mergeUser(orig, upd user.User, isActive *bool) user.User {
	if upd.DisplayName.Valid {
		orig.DisplayName = upd.DisplayName
	}
	if upd.Email != "" {
		orig.Email = upd.Email
	}
	if upd.Role != "" {
		orig.Role = upd.Role
	}
	if upd.PasswordHash != nil {
		orig.PasswordHash = upd.PasswordHash
	}
	if isActive != nil {
		orig.IsActive = *isActive
	}
	if upd.LastActivity.Valid {
		orig.LastActivity = upd.LastActivity
	}
	if !upd.UpdatedAt.IsZero() {
		orig.UpdatedAt = upd.UpdatedAt
	}
	return orig
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	q, args, err := sqlx.In(`DELETE FROM "user" WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting users")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
