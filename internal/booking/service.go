package booking

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"dialysis-scheduler/internal/apperr"
	"dialysis-scheduler/internal/clock"
	"dialysis-scheduler/internal/model"
	"dialysis-scheduler/internal/parse"
	"dialysis-scheduler/internal/store"
)

// Grid is the per-date view of the slot registry.
type Grid struct {
	Date           string       `json:"date"`
	Morning        []model.Slot `json:"morning"`
	Afternoon      []model.Slot `json:"afternoon"`
	TotalSlots     int          `json:"totalSlots"`
	AvailableSlots int          `json:"availableSlots"`
	BookedSlots    int          `json:"bookedSlots"`
}

// Service books and releases slots for patients.
type Service struct {
	store          store.Store
	clock          clock.Clock
	slotsPerPeriod int
	logger         *zap.Logger
}

// NewService creates a booking service.
func NewService(s store.Store, c clock.Clock, slotsPerPeriod int, logger *zap.Logger) *Service {
	return &Service{store: s, clock: c, slotsPerPeriod: slotsPerPeriod, logger: logger}
}

// GetSlots returns the grid for a date. A date that was never initialized
// yields an empty grid.
func (s *Service) GetSlots(ctx context.Context, rawDate string) (*Grid, error) {
	date, err := parse.Date(rawDate)
	if err != nil {
		return nil, err
	}

	slots, err := s.store.ListSlots(ctx, date)
	if err != nil {
		return nil, err
	}

	grid := &Grid{
		Date:      date,
		Morning:   []model.Slot{},
		Afternoon: []model.Slot{},
	}
	for _, slot := range slots {
		switch slot.Period {
		case model.PeriodMorning:
			grid.Morning = append(grid.Morning, slot)
		case model.PeriodAfternoon:
			grid.Afternoon = append(grid.Afternoon, slot)
		}
		grid.TotalSlots++
		if slot.Booked {
			grid.BookedSlots++
		}
		if slot.Available() {
			grid.AvailableSlots++
		}
	}
	return grid, nil
}

// Book claims the cell for the patient. Any other slot the patient holds on
// the same date is released in the same transaction.
func (s *Service) Book(ctx context.Context, rawDate, rawPeriod string, slotNumber int, patientID int64) (*model.Slot, error) {
	date, err := parse.Date(rawDate)
	if err != nil {
		return nil, err
	}
	period, err := parse.Period(rawPeriod)
	if err != nil {
		return nil, err
	}
	if slotNumber, err = parse.SlotNumber(slotNumber, s.slotsPerPeriod); err != nil {
		return nil, err
	}
	if _, err := s.store.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}

	slot, err := s.store.ClaimSlot(ctx, store.ClaimRequest{
		Date:       date,
		Period:     period,
		SlotNumber: slotNumber,
		PatientID:  patientID,
		Now:        s.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("slot booked",
		zap.String("date", date),
		zap.String("period", string(period)),
		zap.Int("slot_number", slotNumber),
		zap.Int64("machine_id", slot.MachineID),
		zap.Int64("patient_id", patientID))
	return slot, nil
}

// Cancel releases the patient's booking on date.
func (s *Service) Cancel(ctx context.Context, rawDate string, patientID int64) (*model.Slot, error) {
	date, err := parse.Date(rawDate)
	if err != nil {
		return nil, err
	}

	slot, err := s.store.ReleaseBooking(ctx, date, patientID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("slot released",
		zap.String("date", date),
		zap.String("period", string(slot.Period)),
		zap.Int("slot_number", slot.SlotNumber),
		zap.Int64("patient_id", patientID))
	return slot, nil
}

// ToggleDisable flips the administrative disabled flag of a slot.
func (s *Service) ToggleDisable(ctx context.Context, slotID int64) (*model.Slot, error) {
	slot, err := s.store.ToggleDisable(ctx, slotID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("slot disable toggled",
		zap.Int64("slot_id", slotID),
		zap.String("date", slot.Date),
		zap.Bool("disabled", slot.Disabled))
	return slot, nil
}

// NextEligibleDate resolves the patient's next treatment date on or after from.
// An empty from means today.
func (s *Service) NextEligibleDate(ctx context.Context, patientID int64, rawFrom string) (string, error) {
	from := s.clock.Today()
	if rawFrom != "" {
		var err error
		if from, err = parse.Date(rawFrom); err != nil {
			return "", err
		}
	}

	patient, err := s.store.GetPatient(ctx, patientID)
	if err != nil {
		return "", err
	}
	return s.clock.NextEligibleDate(patient.Schedule, from)
}

// RegisterPatient adds a patient to the directory with the scheduling fields
// booking depends on. An empty period defaults to morning.
func (s *Service) RegisterPatient(ctx context.Context, name, rawSchedule, rawPeriod string) (*model.Patient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	schedule, err := parse.WeekdaySet(rawSchedule)
	if err != nil {
		return nil, err
	}
	period := model.PeriodMorning
	if rawPeriod != "" {
		if period, err = parse.Period(rawPeriod); err != nil {
			return nil, err
		}
	}

	p := &model.Patient{Name: name, Schedule: schedule, PreferredPeriod: period}
	if err := s.store.CreatePatient(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("patient registered",
		zap.Int64("patient_id", p.ID),
		zap.String("schedule", string(schedule)))
	return p, nil
}
