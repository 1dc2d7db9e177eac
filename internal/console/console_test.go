package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"workshop-backend/internal/appointments"
	"workshop-backend/internal/mechanics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	entries  []appointments.Entry
	listErr  error
	updates  []string
	lists    int
	deleted  []string
	booked   []appointments.BookRequest
	mechList []mechanics.View
}

func (f *fakeAPI) List(ctx context.Context, params ListParams) (ListResponse, error) {
	f.lists++
	if f.listErr != nil {
		return ListResponse{}, f.listErr
	}
	return ListResponse{Appointments: f.entries, Count: len(f.entries)}, nil
}

func (f *fakeAPI) Get(ctx context.Context, id string) (appointments.Entry, error) {
	return appointments.Entry{}, &APIError{Status: 404, Kind: "not_found", Message: "Appointment not found with ID: " + id}
}

func (f *fakeAPI) UpdateStatus(ctx context.Context, id, status string) (string, error) {
	f.updates = append(f.updates, id+"="+status)
	for i := range f.entries {
		if f.entries[i].ID == id {
			previous := f.entries[i].Status
			f.entries[i].Status = status
			return "Appointment status updated from '" + previous + "' to '" + status + "' successfully", nil
		}
	}
	return "", &APIError{Status: 404, Message: "not found"}
}

func (f *fakeAPI) Book(ctx context.Context, req appointments.BookRequest) (appointments.Entry, error) {
	f.booked = append(f.booked, req)
	return appointments.Entry{View: appointments.View{
		ID:              "665f1c2a9d1e8b0012345678",
		MechanicName:    "Mike Johnson",
		AppointmentDate: req.AppointmentDate + "T00:00:00Z",
	}}, nil
}

func (f *fakeAPI) Delete(ctx context.Context, id string) (string, error) {
	f.deleted = append(f.deleted, id)
	return "Appointment deleted successfully", nil
}

func (f *fakeAPI) Mechanics(ctx context.Context) ([]mechanics.View, error) {
	return f.mechList, nil
}

func (f *fakeAPI) Stats(ctx context.Context) (appointments.Stats, error) {
	return appointments.Stats{Total: 2, Active: 1, ByStatus: map[string]int64{"confirmed": 1, "completed": 1}}, nil
}

const apptID = "665f1c2a9d1e8b0012345678"

func seeded() *fakeAPI {
	return &fakeAPI{entries: []appointments.Entry{{View: appointments.View{
		ID:              apptID,
		ClientName:      "Ana Pop",
		ClientPhone:     "0722",
		CarLicense:      "B-12-ABC",
		AppointmentDate: "2024-05-10T00:00:00Z",
		MechanicName:    "Mike Johnson",
		Status:          "confirmed",
	}}}}
}

func run(api API, stdin string, args ...string) (int, string, string) {
	var out, errOut bytes.Buffer
	code := New(api, strings.NewReader(stdin), &out, &errOut).Run(context.Background(), args)
	return code, out.String(), errOut.String()
}

func TestListRendersRowsAndSummary(t *testing.T) {
	code, out, _ := run(seeded(), "", "list")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Ana Pop")
	assert.Contains(t, out, "CONFIRMED")
	assert.Contains(t, out, "May 10, 2024")
	assert.Contains(t, out, "1 appointments, 1 active")
}

func TestStatusConfirmedThenRelists(t *testing.T) {
	api := seeded()
	code, out, errOut := run(api, "y\n", "status", apptID, "completed")

	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, `Update Ana Pop's appointment from "confirmed" to "completed"? [y/N]`)
	assert.Contains(t, out, "Appointment status updated from 'confirmed' to 'completed' successfully")
	assert.Equal(t, []string{apptID + "=completed"}, api.updates)
	assert.Equal(t, 2, api.lists)
	assert.Contains(t, out, "COMPLETED")
}

func TestStatusDeclined(t *testing.T) {
	api := seeded()
	code, out, _ := run(api, "\n", "status", apptID, "completed")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Cancelled.")
	assert.Empty(t, api.updates)
}

func TestStatusSameAsDisplayed(t *testing.T) {
	api := seeded()
	code, _, errOut := run(api, "y\n", "status", apptID, "confirmed", "--yes")
	assert.Equal(t, 1, code)
	assert.Equal(t, "error: please select a different status\n", errOut)
	assert.Empty(t, api.updates)
}

func TestStatusUnknownAppointment(t *testing.T) {
	code, _, errOut := run(seeded(), "", "status", "000000000000000000000000", "completed", "--yes")
	assert.Equal(t, 1, code)
	assert.Equal(t, "error: Appointment not found with ID: 000000000000000000000000\n", errOut)
}

func TestStatusInvalidValue(t *testing.T) {
	code, _, errOut := run(seeded(), "", "status", apptID, "pending")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "status must be one of")
}

func TestListFailure(t *testing.T) {
	api := seeded()
	api.listErr = &APIError{Status: 503, Kind: "transport", Message: "Database unavailable"}
	code, _, errOut := run(api, "", "list")
	assert.Equal(t, 1, code)
	assert.Equal(t, "error: Database unavailable\n", errOut)
}

func TestBookAndDelete(t *testing.T) {
	api := seeded()
	code, out, errOut := run(api, "", "book", "--name", "Ion", "--phone", "1", "--address", "x",
		"--license", "b-1", "--engine", "e", "--date", "2024-06-01", "--mechanic", "Mike Johnson", "--yes")
	require.Equal(t, 0, code, errOut)
	require.Len(t, api.booked, 1)
	assert.Equal(t, "Mike Johnson", api.booked[0].MechanicID)
	assert.Contains(t, out, "Appointment booked successfully")

	code, out, _ = run(api, "yes\n", "delete", apptID)
	require.Equal(t, 0, code)
	assert.Equal(t, []string{apptID}, api.deleted)
	assert.Contains(t, out, "Appointment deleted successfully")
}

func TestMechanicsAndStats(t *testing.T) {
	api := seeded()
	api.mechList = []mechanics.View{{ID: "m1", Name: "David Wilson", Specialty: "Transmission", Available: true}}

	code, out, _ := run(api, "", "mechanics")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "David Wilson")

	code, out, _ = run(api, "", "stats")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "2 appointments, 1 active")
}

func TestUnknownCommand(t *testing.T) {
	code, _, errOut := run(seeded(), "", "frobnicate")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, `unknown command "frobnicate"`)

	code, _, _ = run(seeded(), "")
	assert.Equal(t, 2, code)
}
