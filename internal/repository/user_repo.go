package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"talentlink/internal/model"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// ProfileUpdate lists the editable profile fields per the dashboard forms.
type ProfileUpdate struct {
	Name         string `json:"name"`
	ContactNo    string `json:"contact_no"`
	BusinessName string `json:"business_name"`
	Bio          string `json:"bio"`
	Skills       string `json:"skills"`
	HourlyRate   string `json:"hourly_rate"`
	Availability string `json:"availability"`
}

// CreateUser inserts a new user.
func (r *UserRepository) CreateUser(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (email, password_hash, name, role, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id
    `
	return r.db.QueryRow(ctx, query, u.Email, u.PasswordHash, u.Name, u.Role).Scan(&u.ID)
}

// FindByEmail returns the user with this email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
        SELECT id, email, password_hash, name, role,
               contact_no, business_name, bio, skills, hourly_rate, availability,
               created_at
        FROM users
        WHERE email = $1
    `
	var u model.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role,
		&u.ContactNo, &u.BusinessName, &u.Bio, &u.Skills, &u.HourlyRate, &u.Availability,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByID returns the user with this id.
func (r *UserRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	query := `
        SELECT id, email, password_hash, name, role,
               contact_no, business_name, bio, skills, hourly_rate, availability,
               created_at
        FROM users
        WHERE id = $1
    `
	var u model.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role,
		&u.ContactNo, &u.BusinessName, &u.Bio, &u.Skills, &u.HourlyRate, &u.Availability,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile replaces the editable profile columns.
func (r *UserRepository) UpdateProfile(ctx context.Context, id int, upd ProfileUpdate) error {
	query := `
        UPDATE users
        SET name = $1, contact_no = $2, business_name = $3, bio = $4,
            skills = $5, hourly_rate = $6, availability = $7
        WHERE id = $8
    `
	_, err := r.db.Exec(ctx, query,
		upd.Name, upd.ContactNo, upd.BusinessName, upd.Bio,
		upd.Skills, upd.HourlyRate, upd.Availability, id,
	)
	return err
}
