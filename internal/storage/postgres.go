package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/your-org/reunite/internal/config"
	"github.com/your-org/reunite/internal/models"
)

// ErrAlreadyMatched is returned when confirming a report whose status is no
// longer MISSING. Staff see an explicit "already matched" response instead
// of a generic write failure.
var ErrAlreadyMatched = errors.New("report already matched")

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Shelters ---

func (s *PostgresStore) CreateShelter(ctx context.Context, name, district, contactPhone string) (*models.Shelter, error) {
	sh := &models.Shelter{
		ID:           uuid.New(),
		Name:         name,
		District:     district,
		ContactPhone: contactPhone,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO shelters (id, name, district, contact_phone) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		sh.ID, sh.Name, sh.District, sh.ContactPhone,
	).Scan(&sh.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create shelter: %w", err)
	}
	return sh, nil
}

func (s *PostgresStore) GetShelter(ctx context.Context, id uuid.UUID) (*models.Shelter, error) {
	sh := &models.Shelter{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, district, contact_phone, created_at FROM shelters WHERE id = $1`, id,
	).Scan(&sh.ID, &sh.Name, &sh.District, &sh.ContactPhone, &sh.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get shelter: %w", err)
	}
	return sh, nil
}

func (s *PostgresStore) ListShelters(ctx context.Context) ([]models.Shelter, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, district, contact_phone, created_at FROM shelters ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list shelters: %w", err)
	}
	defer rows.Close()

	var shelters []models.Shelter
	for rows.Next() {
		var sh models.Shelter
		if err := rows.Scan(&sh.ID, &sh.Name, &sh.District, &sh.ContactPhone, &sh.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan shelter: %w", err)
		}
		shelters = append(shelters, sh)
	}
	return shelters, nil
}

// --- Persons ---

func (s *PostgresStore) CreatePerson(ctx context.Context, p *models.Person) error {
	p.ID = uuid.New()
	return s.pool.QueryRow(ctx,
		`INSERT INTO persons (id, shelter_id, full_name, age, gender, national_id, photo_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at, updated_at`,
		p.ID, p.ShelterID, p.FullName, p.Age, p.Gender, p.NationalID, p.PhotoKey,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (s *PostgresStore) GetPerson(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	p := &models.Person{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, shelter_id, full_name, age, gender, national_id, photo_key, missing_report_id, matched_at, created_at, updated_at
		 FROM persons WHERE id = $1`, id,
	).Scan(&p.ID, &p.ShelterID, &p.FullName, &p.Age, &p.Gender, &p.NationalID,
		&p.PhotoKey, &p.MissingReportID, &p.MatchedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get person: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ListPersons(ctx context.Context, shelterID *uuid.UUID) ([]models.Person, error) {
	query := `SELECT id, shelter_id, full_name, age, gender, national_id, photo_key, missing_report_id, matched_at, created_at, updated_at
	          FROM persons`
	var args []interface{}
	if shelterID != nil {
		query += ` WHERE shelter_id = $1`
		args = append(args, *shelterID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	defer rows.Close()

	var persons []models.Person
	for rows.Next() {
		var p models.Person
		if err := rows.Scan(&p.ID, &p.ShelterID, &p.FullName, &p.Age, &p.Gender, &p.NationalID,
			&p.PhotoKey, &p.MissingReportID, &p.MatchedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		persons = append(persons, p)
	}
	return persons, nil
}

func (s *PostgresStore) SetPersonPhoto(ctx context.Context, id uuid.UUID, photoKey string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE persons SET photo_key = $1, updated_at = now() WHERE id = $2`, photoKey, id)
	if err != nil {
		return fmt.Errorf("set person photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Missing-person reports ---

func (s *PostgresStore) CreateReport(ctx context.Context, r *models.MissingPersonReport) error {
	r.ID = uuid.New()
	r.Status = models.ReportStatusMissing

	// Poster codes are short; retry on the rare collision.
	for attempt := 0; attempt < 5; attempt++ {
		r.PosterCode = NewPosterCode()
		err := s.pool.QueryRow(ctx,
			`INSERT INTO missing_person_reports
			 (id, full_name, age, gender, national_id, photo_key, last_seen_location, last_seen_district,
			  last_seen_date, clothing_description, reporter_name, reporter_phone, alternate_phone,
			  poster_code, locale, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			 RETURNING created_at, updated_at`,
			r.ID, r.FullName, r.Age, r.Gender, r.NationalID, r.PhotoKey,
			r.LastSeenLocation, r.LastSeenDistrict, r.LastSeenDate, r.ClothingDescription,
			r.ReporterName, r.ReporterPhone, r.AlternatePhone, r.PosterCode, r.Locale, r.Status,
		).Scan(&r.CreatedAt, &r.UpdatedAt)
		if isUniqueViolation(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		return nil
	}
	return fmt.Errorf("create report: poster code collisions exhausted retries")
}

const reportColumns = `id, full_name, age, gender, national_id, photo_key, last_seen_location,
	last_seen_district, last_seen_date, clothing_description, reporter_name, reporter_phone,
	alternate_phone, poster_code, locale, status, created_at, updated_at`

func scanReport(row pgx.Row, r *models.MissingPersonReport) error {
	return row.Scan(&r.ID, &r.FullName, &r.Age, &r.Gender, &r.NationalID, &r.PhotoKey,
		&r.LastSeenLocation, &r.LastSeenDistrict, &r.LastSeenDate, &r.ClothingDescription,
		&r.ReporterName, &r.ReporterPhone, &r.AlternatePhone, &r.PosterCode, &r.Locale,
		&r.Status, &r.CreatedAt, &r.UpdatedAt)
}

func (s *PostgresStore) GetReport(ctx context.Context, id uuid.UUID) (*models.MissingPersonReport, error) {
	r := &models.MissingPersonReport{}
	row := s.pool.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM missing_person_reports WHERE id = $1`, id)
	if err := scanReport(row, r); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get report: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) GetReportByPosterCode(ctx context.Context, code string) (*models.MissingPersonReport, error) {
	r := &models.MissingPersonReport{}
	row := s.pool.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM missing_person_reports WHERE poster_code = $1`, code)
	if err := scanReport(row, r); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get report by poster code: %w", err)
	}
	return r, nil
}

// ListOpenReports returns every report still eligible as a match candidate.
func (s *PostgresStore) ListOpenReports(ctx context.Context) ([]models.MissingPersonReport, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+reportColumns+` FROM missing_person_reports WHERE status = $1 ORDER BY created_at`,
		models.ReportStatusMissing)
	if err != nil {
		return nil, fmt.Errorf("list open reports: %w", err)
	}
	defer rows.Close()

	var reports []models.MissingPersonReport
	for rows.Next() {
		var r models.MissingPersonReport
		if err := scanReport(rows, &r); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func (s *PostgresStore) ListReports(ctx context.Context, status *models.ReportStatus) ([]models.MissingPersonReport, error) {
	query := `SELECT ` + reportColumns + ` FROM missing_person_reports`
	var args []interface{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []models.MissingPersonReport
	for rows.Next() {
		var r models.MissingPersonReport
		if err := scanReport(rows, &r); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func (s *PostgresStore) SetReportPhoto(ctx context.Context, id uuid.UUID, photoKey string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE missing_person_reports SET photo_key = $1, updated_at = now() WHERE id = $2`, photoKey, id)
	if err != nil {
		return fmt.Errorf("set report photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Match confirmation ---

// ConfirmMatch performs the atomic three-write state transition linking a
// person to a report: insert the Match row, flip the report to FOUND, and
// point the person at the report. All three succeed or none do.
//
// The report row is locked and re-checked inside the transaction so that two
// staff confirming concurrently cannot both succeed: the first to take the
// lock wins, the loser gets ErrAlreadyMatched. The unique constraint on
// matches.report_id backs this up at the schema level.
func (s *PostgresStore) ConfirmMatch(ctx context.Context, personID, reportID uuid.UUID, score float64, method models.MatchMethod, confirmedBy string) (*models.Match, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin confirm tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var status models.ReportStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM missing_person_reports WHERE id = $1 FOR UPDATE`, reportID,
	).Scan(&status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("report %s: %w", reportID, ErrNotFound)
		}
		return nil, fmt.Errorf("lock report: %w", err)
	}
	if status != models.ReportStatusMissing {
		return nil, ErrAlreadyMatched
	}

	m := &models.Match{
		ID:          uuid.New(),
		ReportID:    reportID,
		PersonID:    personID,
		Score:       score,
		Method:      method,
		ConfirmedBy: confirmedBy,
		ConfirmedAt: time.Now().UTC(),
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO matches (id, report_id, person_id, score, method, confirmed_by, confirmed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.ReportID, m.PersonID, m.Score, m.Method, m.ConfirmedBy, m.ConfirmedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyMatched
		}
		return nil, fmt.Errorf("insert match: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE missing_person_reports SET status = $1, updated_at = now() WHERE id = $2`,
		models.ReportStatusFound, reportID)
	if err != nil {
		return nil, fmt.Errorf("update report status: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE persons SET missing_report_id = $1, matched_at = $2, updated_at = now() WHERE id = $3`,
		reportID, m.ConfirmedAt, personID)
	if err != nil {
		return nil, fmt.Errorf("update person: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("person %s: %w", personID, ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit confirm tx: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	m := &models.Match{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, report_id, person_id, score, method, confirmed_by, confirmed_at, notification_sent, notified_at
		 FROM matches WHERE id = $1`, id,
	).Scan(&m.ID, &m.ReportID, &m.PersonID, &m.Score, &m.Method, &m.ConfirmedBy,
		&m.ConfirmedAt, &m.NotificationSent, &m.NotifiedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get match: %w", err)
	}
	return m, nil
}

// MarkNotified records successful delivery of the confirmation SMS.
func (s *PostgresStore) MarkNotified(ctx context.Context, matchID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE matches SET notification_sent = true, notified_at = now() WHERE id = $1`, matchID)
	if err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
