package entity

import (
	"time"
)

// Appointment is the persisted record of a consultation booking as received
// from the link, used for MIS reporting. The system of record stays in the
// CRM; this table only mirrors what the portal saw.
type Appointment struct {
	ID              int        `db:"id" json:"id"`
	AppNo           string     `db:"app_no" json:"app_no"`
	Username        string     `db:"username" json:"username"`
	UserID          string     `db:"userid" json:"userid"`
	DoctorName      string     `db:"doctorname" json:"doctorname"`
	Speciality      string     `db:"speciality" json:"speciality"`
	AppointmentDate *time.Time `db:"appointment_date" json:"appointment_date"`
	AppointmentTime string     `db:"appointment_time" json:"appointment_time"`
	RoomID          string     `db:"room_id" json:"room_id"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       *time.Time `db:"updated_at" json:"updated_at"`
}

// TableName returns the table name for the Appointment entity
func (Appointment) TableName() string {
	return "appointments"
}

// StoreAppointmentRequest upserts an appointment seen by the portal.
type StoreAppointmentRequest struct {
	AppNo           string `json:"app_no" validate:"required"`
	Username        string `json:"username" validate:"required"`
	UserID          string `json:"userid" validate:"required"`
	DoctorName      string `json:"doctorname"`
	Speciality      string `json:"speciality"`
	AppointmentDate string `json:"appointment_date"` // DD/MM/YYYY
	AppointmentTime string `json:"appointment_time"` // HH:MM or HH:MM:SS
	RoomID          string `json:"roomID"`
}

// VideoCallEvent is a single tracked event within a video call.
type VideoCallEvent struct {
	ID              int       `db:"id" json:"id"`
	AppointmentID   int       `db:"appointment_id" json:"appointment_id"`
	EventType       string    `db:"event_type" json:"event_type"`
	EventTimestamp  time.Time `db:"event_timestamp" json:"event_timestamp"`
	EventData       string    `db:"event_data" json:"event_data"`
	RoomID          string    `db:"room_id" json:"room_id"`
	UserID          string    `db:"user_id" json:"user_id"`
	Username        string    `db:"username" json:"username"`
	SessionID       string    `db:"session_id" json:"session_id"`
	DurationSeconds int       `db:"duration_seconds" json:"duration_seconds"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// TableName returns the table name for the VideoCallEvent entity
func (VideoCallEvent) TableName() string {
	return "video_call_events"
}

// StoreVideoCallEventRequest records a call event against an appointment.
// AppointmentRef may be the numeric row id or the appointment number.
type StoreVideoCallEventRequest struct {
	AppointmentRef  string                 `json:"appointment_id" validate:"required"`
	EventType       string                 `json:"event_type" validate:"required"`
	EventTimestamp  string                 `json:"event_timestamp"`
	EventData       map[string]interface{} `json:"event_data"`
	RoomID          string                 `json:"roomID" validate:"required"`
	UserID          string                 `json:"user_id" validate:"required"`
	Username        string                 `json:"username" validate:"required"`
	SessionID       string                 `json:"session_id"`
	DurationSeconds int                    `json:"duration_seconds"`
}

// CallSession tracks one active or ended call attached to an appointment.
type CallSession struct {
	ID              int        `db:"id" json:"id"`
	AppointmentID   int        `db:"appointment_id" json:"appointment_id"`
	SessionStart    time.Time  `db:"session_start" json:"session_start"`
	SessionEnd      *time.Time `db:"session_end" json:"session_end"`
	DurationSeconds *int       `db:"duration_seconds" json:"duration_seconds"`
	RoomID          string     `db:"room_id" json:"room_id"`
	UserID          string     `db:"user_id" json:"user_id"`
	Username        string     `db:"username" json:"username"`
	Status          string     `db:"status" json:"status"`
}

// TableName returns the table name for the CallSession entity
func (CallSession) TableName() string {
	return "call_sessions"
}

// StartCallSessionRequest begins a call session for an appointment.
type StartCallSessionRequest struct {
	AppointmentRef string `json:"appointment_id" validate:"required"`
	RoomID         string `json:"roomID" validate:"required"`
	UserID         string `json:"user_id" validate:"required"`
	Username       string `json:"username" validate:"required"`
}

// EndCallSessionRequest closes the active call session for an appointment.
type EndCallSessionRequest struct {
	AppointmentRef string `json:"appointment_id" validate:"required"`
}
