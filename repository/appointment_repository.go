package repository

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"teleconsult/entity"

	"github.com/jmoiron/sqlx"
)

// AppointmentRepository persists what the portal saw about appointments and
// their video calls for MIS reporting. The CRM remains the system of record.
type AppointmentRepository interface {
	Upsert(req *entity.StoreAppointmentRequest) (int, bool, error)
	GetByAppNo(appNo string) (*entity.Appointment, error)
	ResolveAppointmentID(ref string) (int, error)
	StoreVideoCallEvent(appointmentID int, req *entity.StoreVideoCallEventRequest, eventData string, eventTimestamp time.Time) error
	StartCallSession(appointmentID int, req *entity.StartCallSessionRequest) error
	EndCallSession(appointmentID int) error
}

// appointmentRepository implements AppointmentRepository on Postgres
type appointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository creates a new appointment repository instance
func NewAppointmentRepository(db *sqlx.DB) AppointmentRepository {
	return &appointmentRepository{
		db: db,
	}
}

// ParseAppointmentDate converts the link's DD/MM/YYYY date (optionally with a
// trailing time part) into a time.Time. Returns nil for empty or unparseable
// input rather than failing the whole upsert.
func ParseAppointmentDate(dateString string) *time.Time {
	if dateString == "" {
		return nil
	}
	dateOnly := dateString
	if idx := strings.IndexByte(dateOnly, ' '); idx >= 0 {
		dateOnly = dateOnly[:idx]
	}
	t, err := time.Parse("02/01/2006", dateOnly)
	if err != nil {
		return nil
	}
	return &t
}

// NormalizeAppointmentTime pads HH:MM to HH:MM:SS.
func NormalizeAppointmentTime(timeString string) string {
	if len(timeString) == 5 {
		return timeString + ":00"
	}
	return timeString
}

// Upsert inserts or updates the appointment keyed by (app_no, userid) and
// returns the row id plus whether a new row was created.
func (r *appointmentRepository) Upsert(req *entity.StoreAppointmentRequest) (int, bool, error) {
	var existingID int
	err := r.db.Get(&existingID,
		`SELECT id FROM appointments WHERE app_no = $1 AND userid = $2`,
		req.AppNo, req.UserID)
	if err != nil && err != sql.ErrNoRows {
		return 0, false, fmt.Errorf("failed to check appointment: %w", err)
	}

	date := ParseAppointmentDate(req.AppointmentDate)
	timeOfDay := NormalizeAppointmentTime(req.AppointmentTime)

	if err == nil {
		_, err = r.db.Exec(`
			UPDATE appointments SET
				username = $1,
				doctorname = $2,
				speciality = $3,
				appointment_date = $4,
				appointment_time = $5,
				room_id = $6,
				updated_at = NOW()
			WHERE id = $7
		`, req.Username, req.DoctorName, req.Speciality, date, timeOfDay, req.RoomID, existingID)
		if err != nil {
			return 0, false, fmt.Errorf("failed to update appointment: %w", err)
		}
		return existingID, false, nil
	}

	var newID int
	err = r.db.Get(&newID, `
		INSERT INTO appointments
			(app_no, username, userid, doctorname, speciality, appointment_date, appointment_time, room_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id
	`, req.AppNo, req.Username, req.UserID, req.DoctorName, req.Speciality, date, timeOfDay, req.RoomID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to create appointment: %w", err)
	}
	return newID, true, nil
}

// GetByAppNo retrieves an appointment by its appointment number
func (r *appointmentRepository) GetByAppNo(appNo string) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := r.db.Get(&appointment, `
		SELECT id, app_no, username, userid, doctorname, speciality,
		       appointment_date, appointment_time, room_id, created_at, updated_at
		FROM appointments
		WHERE app_no = $1
	`, appNo)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

// ResolveAppointmentID accepts either a numeric row id or an appointment
// number and returns the row id.
func (r *appointmentRepository) ResolveAppointmentID(ref string) (int, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		return id, nil
	}

	var id int
	err := r.db.Get(&id, `SELECT id FROM appointments WHERE app_no = $1`, ref)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("appointment not found: %s", ref)
		}
		return 0, fmt.Errorf("failed to resolve appointment: %w", err)
	}
	return id, nil
}

// StoreVideoCallEvent records one tracked event for a call
func (r *appointmentRepository) StoreVideoCallEvent(appointmentID int, req *entity.StoreVideoCallEventRequest, eventData string, eventTimestamp time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO video_call_events
			(appointment_id, event_type, event_timestamp, event_data, room_id, user_id, username, session_id, duration_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`, appointmentID, req.EventType, eventTimestamp, eventData, req.RoomID, req.UserID, req.Username, req.SessionID, req.DurationSeconds)
	if err != nil {
		return fmt.Errorf("failed to store video call event: %w", err)
	}
	return nil
}

// StartCallSession ends any active session for the appointment and opens a
// new one.
func (r *appointmentRepository) StartCallSession(appointmentID int, req *entity.StartCallSessionRequest) error {
	_, err := r.db.Exec(`
		UPDATE call_sessions
		SET session_end = NOW(),
		    duration_seconds = EXTRACT(EPOCH FROM (NOW() - session_start))::int,
		    status = 'ended'
		WHERE appointment_id = $1 AND status = 'active'
	`, appointmentID)
	if err != nil {
		return fmt.Errorf("failed to end previous call sessions: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO call_sessions (appointment_id, session_start, room_id, user_id, username, status)
		VALUES ($1, NOW(), $2, $3, $4, 'active')
	`, appointmentID, req.RoomID, req.UserID, req.Username)
	if err != nil {
		return fmt.Errorf("failed to start call session: %w", err)
	}
	return nil
}

// EndCallSession closes the active session for the appointment
func (r *appointmentRepository) EndCallSession(appointmentID int) error {
	_, err := r.db.Exec(`
		UPDATE call_sessions
		SET session_end = NOW(),
		    duration_seconds = EXTRACT(EPOCH FROM (NOW() - session_start))::int,
		    status = 'ended'
		WHERE appointment_id = $1 AND status = 'active'
	`, appointmentID)
	if err != nil {
		return fmt.Errorf("failed to end call session: %w", err)
	}
	return nil
}
