package appointments

import (
	"strconv"

	"workshop-backend/internal/bsonx"
	"workshop-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	placeholderClient   = "Unknown Client"
	placeholderPhone    = "No Phone"
	placeholderLicense  = "No License"
	placeholderMechanic = "Unassigned"
	placeholderStatus   = models.AppointmentStatusConfirmed
)

// FromDocument rebuilds an appointment field by field. position is the
// 1-based cursor position, used to label documents without an _id.
func FromDocument(doc bson.M, position int) Entry {
	var e Entry

	if id, ok := bsonx.ID(doc); ok {
		e.ID = id
	} else {
		e.ID = "doc_" + strconv.Itoa(position)
		e.flag("_id")
	}

	e.ClientName = e.required(doc, "clientName", placeholderClient)
	e.ClientPhone = e.required(doc, "clientPhone", placeholderPhone)
	e.CarLicense = e.required(doc, "carLicense", placeholderLicense)
	e.MechanicName = e.required(doc, "mechanicName", placeholderMechanic)
	e.Status = e.required(doc, "status", placeholderStatus)
	if !models.IsValidStatus(e.Status) {
		e.flag("status")
	}

	e.ClientAddress, _ = bsonx.String(doc, "clientAddress")
	e.CarEngine, _ = bsonx.String(doc, "carEngine")
	e.MechanicID, _ = bsonx.String(doc, "mechanicId")
	e.Seq, _ = bsonx.Int(doc, "seq")
	e.EstimatedDuration, _ = bsonx.Int(doc, "estimatedDuration")

	var ok bool
	if e.AppointmentDate, ok = bsonx.Time(doc, "appointmentDate"); !ok {
		e.flag("appointmentDate")
	}
	e.CreatedAt, _ = bsonx.Time(doc, "createdAt")
	e.UpdatedAt, _ = bsonx.Time(doc, "updatedAt")

	return e
}

// ErrorEntry stands in for a document that could not be decoded.
func ErrorEntry(position int) Entry {
	return Entry{
		View: View{
			ID:           "error_doc_" + strconv.Itoa(position),
			ClientName:   "Error Loading Client",
			ClientPhone:  "Error",
			CarLicense:   "Error",
			MechanicName: "Error",
			Status:       placeholderStatus,
		},
		Degraded: true,
		Issues:   []string{"document"},
	}
}

func (e *Entry) required(doc bson.M, key, placeholder string) string {
	if v, ok := bsonx.String(doc, key); ok && v != "" {
		return v
	}
	e.flag(key)
	return placeholder
}

func (e *Entry) flag(field string) {
	e.Degraded = true
	e.Issues = append(e.Issues, field)
}
