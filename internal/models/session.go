package models

import "time"

// Mode is the active menu choice of a chat. Values match the mode names
// written to the interaction log.
type Mode string

const (
	ModeIdle       Mode = ""
	ModeService    Mode = "layanan"
	ModeComplaint  Mode = "keluhan"
	ModeOilPrice   Mode = "harga_oli"
	ModeCarPrice   Mode = "harga_umum_mobil"
	ModeTruckPrice Mode = "harga_umum_bis"
)

// Domain returns the retrieval corpus a question-answering mode reads from.
func (m Mode) Domain() (Domain, bool) {
	switch m {
	case ModeService:
		return DomainService, true
	case ModeOilPrice:
		return DomainOil, true
	case ModeCarPrice:
		return DomainCar, true
	case ModeTruckPrice:
		return DomainTruck, true
	}
	return "", false
}

// Complaint field names collected during the booking flow.
const (
	FieldName      = "name"
	FieldBrand     = "brand"
	FieldModel     = "model"
	FieldPlate     = "plate"
	FieldComplaint = "complaint"
)

type ComplaintStep string

const (
	StepCollectingTemplate   ComplaintStep = "collecting_template"
	StepAwaitingPlate        ComplaintStep = "awaiting_plate"
	StepAwaitingConfirmation ComplaintStep = "awaiting_confirmation"
)

type Session struct {
	ChatID               int64             `json:"chat_id"`
	Mode                 Mode              `json:"mode"`
	Fields               map[string]string `json:"fields,omitempty"`
	AwaitingPlate        bool              `json:"awaiting_plate"`
	AwaitingConfirmation bool              `json:"awaiting_confirmation"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

func NewSession(chatID int64, mode Mode) *Session {
	return &Session{
		ChatID: chatID,
		Mode:   mode,
		Fields: map[string]string{},
	}
}

// Step derives the complaint sub-state from the awaiting flags.
func (s *Session) Step() ComplaintStep {
	switch {
	case s.AwaitingConfirmation:
		return StepAwaitingConfirmation
	case s.AwaitingPlate:
		return StepAwaitingPlate
	default:
		return StepCollectingTemplate
	}
}

// Clone returns a deep copy so stores never share the Fields map with callers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Fields = make(map[string]string, len(s.Fields))
	for k, v := range s.Fields {
		out.Fields[k] = v
	}
	return &out
}
