package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Detection represents one confirmed sign detection.
type Detection struct {
	ID          string
	Gesture     string
	Confidence  float64
	Translation string
	CreatedAt   time.Time
}

// DetectionRepository provides operations on the detection history.
type DetectionRepository struct {
	db *sql.DB
}

// Detections returns the detection repository for this store.
func (s *Store) Detections() *DetectionRepository {
	return &DetectionRepository{db: s.db}
}

// Create inserts a new detection. A missing ID is generated.
func (r *DetectionRepository) Create(d *Detection) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO detections (id, gesture, confidence, translation, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.Gesture, d.Confidence, d.Translation, d.CreatedAt,
	)
	if err != nil {
		return err
	}

	return nil
}

// GetByID retrieves a detection by its ID.
func (r *DetectionRepository) GetByID(id string) (*Detection, error) {
	d := &Detection{}

	err := r.db.QueryRow(
		`SELECT id, gesture, confidence, translation, created_at
		 FROM detections WHERE id = ?`,
		id,
	).Scan(&d.ID, &d.Gesture, &d.Confidence, &d.Translation, &d.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return d, nil
}

// List retrieves the most recent detections, newest first. A limit of 0
// returns everything.
func (r *DetectionRepository) List(limit int) ([]*Detection, error) {
	query := `SELECT id, gesture, confidence, translation, created_at
	          FROM detections ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var detections []*Detection
	for rows.Next() {
		d := &Detection{}
		if err := rows.Scan(&d.ID, &d.Gesture, &d.Confidence, &d.Translation, &d.CreatedAt); err != nil {
			return nil, err
		}
		detections = append(detections, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return detections, nil
}

// Count returns the total number of recorded detections.
func (r *DetectionRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM detections`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Clear removes all recorded detections.
func (r *DetectionRepository) Clear() error {
	_, err := r.db.Exec(`DELETE FROM detections`)
	return err
}
