package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AppointmentStatusConfirmed  = "confirmed"
	AppointmentStatusInProgress = "in-progress"
	AppointmentStatusCompleted  = "completed"
	AppointmentStatusCancelled  = "cancelled"

	DefaultEstimatedDuration = 120

	UserRoleAdmin = "admin"
)

// AppointmentStatuses lists the lifecycle values in display order.
var AppointmentStatuses = []string{
	AppointmentStatusConfirmed,
	AppointmentStatusInProgress,
	AppointmentStatusCompleted,
	AppointmentStatusCancelled,
}

func IsValidStatus(status string) bool {
	for _, s := range AppointmentStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsActiveStatus reports whether work on the appointment is still pending.
func IsActiveStatus(status string) bool {
	return status == AppointmentStatusConfirmed || status == AppointmentStatusInProgress
}

type Appointment struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Seq               int64              `bson:"seq" json:"seq"`
	ClientName        string             `bson:"clientName" json:"clientName"`
	ClientPhone       string             `bson:"clientPhone" json:"clientPhone"`
	ClientAddress     string             `bson:"clientAddress" json:"clientAddress"`
	CarLicense        string             `bson:"carLicense" json:"carLicense"`
	CarEngine         string             `bson:"carEngine" json:"carEngine"`
	AppointmentDate   time.Time          `bson:"appointmentDate" json:"appointmentDate"`
	MechanicID        string             `bson:"mechanicId" json:"mechanicId"`
	MechanicName      string             `bson:"mechanicName" json:"mechanicName"`
	Status            string             `bson:"status" json:"status"`
	EstimatedDuration int                `bson:"estimatedDuration" json:"estimatedDuration"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Mechanic struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone" json:"phone"`
	Specialty string             `bson:"specialty" json:"specialty"`
	Available bool               `bson:"available" json:"available"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// DefaultMechanics returns the directory used when the mechanics collection is empty.
func DefaultMechanics(now time.Time) []Mechanic {
	return []Mechanic{
		{Name: "Mike Johnson", Email: "mike@autofix.com", Phone: "555-0101", Specialty: "Engine Repair", Available: true, CreatedAt: now},
		{Name: "David Wilson", Email: "david@autofix.com", Phone: "555-0102", Specialty: "Transmission", Available: true, CreatedAt: now},
		{Name: "Robert Brown", Email: "robert@autofix.com", Phone: "555-0103", Specialty: "Brakes & Suspension", Available: true, CreatedAt: now},
		{Name: "James Davis", Email: "james@autofix.com", Phone: "555-0104", Specialty: "Electrical Systems", Available: true, CreatedAt: now},
	}
}
