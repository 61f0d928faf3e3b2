package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"milan/internal/database"
	"milan/internal/models"
)

type StudentRepository struct {
	db *database.DB
}

func NewStudentRepository(db *database.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// GetByEmail looks a student up case-insensitively; nil when absent
func (r *StudentRepository) GetByEmail(ctx context.Context, email string) (*models.Student, error) {
	student := &models.Student{}
	query := `
		SELECT email, full_name, registration_number, batch
		FROM students
		WHERE LOWER(email) = $1`

	err := r.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))).Scan(
		&student.Email,
		&student.FullName,
		&student.RegistrationNumber,
		&student.Batch,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get student by email: %w", err)
	}

	return student, nil
}
