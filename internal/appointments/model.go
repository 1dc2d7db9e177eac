package appointments

import (
	"net/url"
	"strings"
	"time"

	"workshop-backend/internal/models"
	"workshop-backend/internal/validation"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookRequest struct {
	ClientName      string `json:"clientName" validate:"required"`
	ClientPhone     string `json:"clientPhone" validate:"required"`
	ClientAddress   string `json:"clientAddress" validate:"required"`
	CarLicense      string `json:"carLicense" validate:"required"`
	CarEngine       string `json:"carEngine" validate:"required"`
	AppointmentDate string `json:"appointmentDate" validate:"required"`
	MechanicID      string `json:"mechanicId" validate:"required"`
}

func (r *BookRequest) trim() {
	r.ClientName = strings.TrimSpace(r.ClientName)
	r.ClientPhone = strings.TrimSpace(r.ClientPhone)
	r.ClientAddress = strings.TrimSpace(r.ClientAddress)
	r.CarLicense = strings.TrimSpace(r.CarLicense)
	r.CarEngine = strings.TrimSpace(r.CarEngine)
	r.AppointmentDate = strings.TrimSpace(r.AppointmentDate)
	r.MechanicID = strings.TrimSpace(r.MechanicID)
}

type StatusRequest struct {
	AppointmentID string `json:"appointmentId"`
	Status        string `json:"status"`
}

// ListFilter holds the filters that survived parsing. Zero values mean
// "not filtered".
type ListFilter struct {
	Date       time.Time
	MechanicID string
	Status     string
}

// ParseListFilter reads date, mechanicId and status from a query string.
// Malformed values are dropped rather than rejected.
func ParseListFilter(values url.Values) ListFilter {
	var f ListFilter
	if raw := strings.TrimSpace(values.Get("date")); raw != "" {
		if day, err := time.Parse(validation.DateLayout, raw); err == nil {
			f.Date = day.UTC()
		}
	}
	if raw := strings.TrimSpace(values.Get("mechanicId")); primitive.IsValidObjectID(raw) {
		f.MechanicID = strings.ToLower(raw)
	}
	if raw := strings.TrimSpace(values.Get("status")); models.IsValidStatus(raw) {
		f.Status = raw
	}
	return f
}

// CacheKey identifies the filtered listing in the response cache.
func (f ListFilter) CacheKey() string {
	date := ""
	if !f.Date.IsZero() {
		date = f.Date.Format(validation.DateLayout)
	}
	return date + ":" + f.MechanicID + ":" + f.Status
}

// View is an appointment as rendered to clients.
type View struct {
	ID                string `json:"_id"`
	Seq               int64  `json:"seq,omitempty"`
	ClientName        string `json:"clientName"`
	ClientPhone       string `json:"clientPhone"`
	ClientAddress     string `json:"clientAddress"`
	CarLicense        string `json:"carLicense"`
	CarEngine         string `json:"carEngine"`
	AppointmentDate   string `json:"appointmentDate"`
	MechanicID        string `json:"mechanicId"`
	MechanicName      string `json:"mechanicName"`
	Status            string `json:"status"`
	EstimatedDuration int64  `json:"estimatedDuration,omitempty"`
	CreatedAt         string `json:"createdAt"`
	UpdatedAt         string `json:"updatedAt"`
}

// Entry is a listed appointment. Degraded entries were rebuilt with
// placeholder values; Issues names what was missing or unreadable.
type Entry struct {
	View
	Degraded bool     `json:"degraded,omitempty"`
	Issues   []string `json:"issues,omitempty"`
}

// RawDocument is one cursor result. Err is set when the document could not
// be decoded at all.
type RawDocument struct {
	Doc bson.M
	Err error
}

type ListResult struct {
	Entries  []Entry
	Degraded int
}

type StatusChange struct {
	ID             string `json:"_id"`
	ClientName     string `json:"clientName"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previousStatus"`
	UpdatedAt      string `json:"updatedAt"`
}

type Stats struct {
	Total    int64            `json:"total"`
	Active   int64            `json:"active"`
	ByStatus map[string]int64 `json:"byStatus"`
}
