package models

import (
	"time"

	"github.com/google/uuid"
)

type JobCardStatus string

const (
	JobCardStatusWaiting JobCardStatus = "Menunggu"
)

// DateLayout is how scheduled dates are rendered to users and operators.
const DateLayout = "2006-01-02"

type JobCard struct {
	ID            uuid.UUID     `db:"id"`
	SenderName    string        `db:"sender_name"`
	CarBrand      string        `db:"car_brand"`
	CarModel      string        `db:"car_model"`
	Plate         string        `db:"plate"`
	Complaint     string        `db:"complaint"`
	CreatedAt     time.Time     `db:"created_at"`
	ScheduledDate time.Time     `db:"scheduled_date"`
	QueuePosition int           `db:"queue_position"`
	Status        JobCardStatus `db:"status"`
}
