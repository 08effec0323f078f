package service

import (
	"encoding/json"
	"fmt"
	"time"

	"teleconsult/entity"
	"teleconsult/pkg/logger"
	"teleconsult/repository"
)

// AppointmentService persists appointments and call telemetry.
type AppointmentService interface {
	StoreAppointment(req *entity.StoreAppointmentRequest) (int, string, error)
	GetAppointment(appNo string) (*entity.Appointment, error)
	StoreVideoCallEvent(req *entity.StoreVideoCallEventRequest) (int, error)
	StartCallSession(req *entity.StartCallSessionRequest) (int, error)
	EndCallSession(req *entity.EndCallSessionRequest) (int, error)
}

type appointmentService struct {
	repo   repository.AppointmentRepository
	logger *logger.Logger
}

// NewAppointmentService creates a new appointment service instance
func NewAppointmentService(repo repository.AppointmentRepository, log *logger.Logger) AppointmentService {
	return &appointmentService{
		repo:   repo,
		logger: log,
	}
}

func (s *appointmentService) StoreAppointment(req *entity.StoreAppointmentRequest) (int, string, error) {
	id, created, err := s.repo.Upsert(req)
	if err != nil {
		s.logger.Errorw("Failed to store appointment", "app_no", req.AppNo, "error", err)
		return 0, "", fmt.Errorf("failed to store appointment: %w", err)
	}

	message := "Appointment updated successfully"
	if created {
		message = "Appointment created successfully"
	}
	s.logger.Infow("Appointment stored", "app_no", req.AppNo, "appointment_id", id, "created", created)
	return id, message, nil
}

func (s *appointmentService) GetAppointment(appNo string) (*entity.Appointment, error) {
	return s.repo.GetByAppNo(appNo)
}

func (s *appointmentService) StoreVideoCallEvent(req *entity.StoreVideoCallEventRequest) (int, error) {
	appointmentID, err := s.repo.ResolveAppointmentID(req.AppointmentRef)
	if err != nil {
		return 0, err
	}

	eventData := "{}"
	if req.EventData != nil {
		data, err := json.Marshal(req.EventData)
		if err != nil {
			return 0, fmt.Errorf("failed to serialize event data: %w", err)
		}
		eventData = string(data)
	}

	eventTimestamp := time.Now()
	if req.EventTimestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, req.EventTimestamp); err == nil {
			eventTimestamp = parsed
		}
	}

	if err := s.repo.StoreVideoCallEvent(appointmentID, req, eventData, eventTimestamp); err != nil {
		s.logger.Errorw("Failed to store video call event", "appointment_id", appointmentID, "error", err)
		return 0, err
	}

	return appointmentID, nil
}

func (s *appointmentService) StartCallSession(req *entity.StartCallSessionRequest) (int, error) {
	appointmentID, err := s.repo.ResolveAppointmentID(req.AppointmentRef)
	if err != nil {
		return 0, err
	}

	if err := s.repo.StartCallSession(appointmentID, req); err != nil {
		s.logger.Errorw("Failed to start call session", "appointment_id", appointmentID, "error", err)
		return 0, err
	}

	s.logger.Infow("Call session started", "appointment_id", appointmentID, "room_id", req.RoomID)
	return appointmentID, nil
}

func (s *appointmentService) EndCallSession(req *entity.EndCallSessionRequest) (int, error) {
	appointmentID, err := s.repo.ResolveAppointmentID(req.AppointmentRef)
	if err != nil {
		return 0, err
	}

	if err := s.repo.EndCallSession(appointmentID); err != nil {
		s.logger.Errorw("Failed to end call session", "appointment_id", appointmentID, "error", err)
		return 0, err
	}

	s.logger.Infow("Call session ended", "appointment_id", appointmentID)
	return appointmentID, nil
}
