// Package console implements workshopctl, the operator's terminal view of
// the appointment list.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"workshop-backend/internal/appointments"
	"workshop-backend/internal/mechanics"
	"workshop-backend/internal/models"

	"github.com/spf13/pflag"
)

const usage = `Usage: workshopctl [--server URL] [--admin-key KEY] <command> [flags]

Commands:
  list       List appointments (--date, --mechanic, --status)
  status     Change an appointment status: status <id> <new-status> [--yes]
  book       Book an appointment
  delete     Delete an appointment: delete <id> [--yes]
  mechanics  List the mechanic directory
  stats      Show appointment counts by status
`

// API is the subset of the HTTP client the console drives.
type API interface {
	List(ctx context.Context, params ListParams) (ListResponse, error)
	Get(ctx context.Context, id string) (appointments.Entry, error)
	UpdateStatus(ctx context.Context, id, status string) (string, error)
	Book(ctx context.Context, req appointments.BookRequest) (appointments.Entry, error)
	Delete(ctx context.Context, id string) (string, error)
	Mechanics(ctx context.Context) ([]mechanics.View, error)
	Stats(ctx context.Context) (appointments.Stats, error)
}

type Console struct {
	api API
	in  *bufio.Reader
	out io.Writer
	err io.Writer
}

func New(api API, in io.Reader, out, errOut io.Writer) *Console {
	return &Console{api: api, in: bufio.NewReader(in), out: out, err: errOut}
}

// Run executes one command and returns the process exit code.
func (c *Console) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(c.err, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "list":
		err = c.list(ctx, args[1:])
	case "status":
		err = c.status(ctx, args[1:])
	case "book":
		err = c.book(ctx, args[1:])
	case "delete":
		err = c.delete(ctx, args[1:])
	case "mechanics":
		err = c.mechanics(ctx)
	case "stats":
		err = c.stats(ctx)
	case "help", "-h", "--help":
		fmt.Fprint(c.out, usage)
		return 0
	default:
		err = fmt.Errorf("unknown command %q", args[0])
	}

	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(c.err, "error: %s\n", err.Error())
		return 1
	}
	return 0
}

func (c *Console) newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(c.err)
	return fs
}

func (c *Console) list(ctx context.Context, args []string) error {
	var params ListParams
	fs := c.newFlagSet("list")
	fs.StringVar(&params.Date, "date", "", "only appointments on this day (YYYY-MM-DD)")
	fs.StringVar(&params.MechanicID, "mechanic", "", "only appointments for this mechanic id")
	fs.StringVar(&params.Status, "status", "", "only appointments with this status")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return c.render(ctx, params)
}

func (c *Console) render(ctx context.Context, params ListParams) error {
	list, err := c.api.List(ctx, params)
	if err != nil {
		return err
	}
	RenderAppointments(c.out, list)
	return nil
}

func (c *Console) status(ctx context.Context, args []string) error {
	fs := c.newFlagSet("status")
	yes := fs.BoolP("yes", "y", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("usage: workshopctl status <id> <new-status> [--yes]")
	}
	id, next := fs.Arg(0), fs.Arg(1)
	if !models.IsValidStatus(next) {
		return fmt.Errorf("status must be one of: %s", strings.Join(models.AppointmentStatuses, ", "))
	}

	current, err := c.lookup(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == next {
		return errors.New("please select a different status")
	}

	prompt := fmt.Sprintf("Update %s's appointment from %q to %q?", current.ClientName, current.Status, next)
	if !*yes && !c.confirm(prompt) {
		fmt.Fprintln(c.out, "Cancelled.")
		return nil
	}

	message, err := c.api.UpdateStatus(ctx, id, next)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	fmt.Fprintln(c.out, message)
	return c.render(ctx, ListParams{})
}

// lookup finds the appointment as currently displayed, falling back to a
// direct fetch when it is outside the listing window.
func (c *Console) lookup(ctx context.Context, id string) (appointments.Entry, error) {
	list, err := c.api.List(ctx, ListParams{})
	if err != nil {
		return appointments.Entry{}, err
	}
	for _, a := range list.Appointments {
		if a.ID == id {
			return a, nil
		}
	}
	return c.api.Get(ctx, id)
}

func (c *Console) book(ctx context.Context, args []string) error {
	var req appointments.BookRequest
	fs := c.newFlagSet("book")
	fs.StringVar(&req.ClientName, "name", "", "client name")
	fs.StringVar(&req.ClientPhone, "phone", "", "client phone")
	fs.StringVar(&req.ClientAddress, "address", "", "client address")
	fs.StringVar(&req.CarLicense, "license", "", "car licence plate")
	fs.StringVar(&req.CarEngine, "engine", "", "car engine number")
	fs.StringVar(&req.AppointmentDate, "date", "", "appointment day (YYYY-MM-DD)")
	fs.StringVar(&req.MechanicID, "mechanic", "", "mechanic id or name")
	yes := fs.BoolP("yes", "y", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}

	prompt := fmt.Sprintf("Book %s (%s) with %s on %s?", req.ClientName, req.CarLicense, req.MechanicID, req.AppointmentDate)
	if !*yes && !c.confirm(prompt) {
		fmt.Fprintln(c.out, "Cancelled.")
		return nil
	}

	entry, err := c.api.Book(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Appointment booked successfully: %s with %s on %s\n",
		entry.ID, entry.MechanicName, displayDate(entry.AppointmentDate))
	return nil
}

func (c *Console) delete(ctx context.Context, args []string) error {
	fs := c.newFlagSet("delete")
	yes := fs.BoolP("yes", "y", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: workshopctl delete <id> [--yes]")
	}
	id := fs.Arg(0)

	if !*yes && !c.confirm(fmt.Sprintf("Delete appointment %s?", id)) {
		fmt.Fprintln(c.out, "Cancelled.")
		return nil
	}
	message, err := c.api.Delete(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, message)
	return c.render(ctx, ListParams{})
}

func (c *Console) mechanics(ctx context.Context) error {
	items, err := c.api.Mechanics(ctx)
	if err != nil {
		return err
	}
	RenderMechanics(c.out, items)
	return nil
}

func (c *Console) stats(ctx context.Context) error {
	stats, err := c.api.Stats(ctx)
	if err != nil {
		return err
	}
	RenderStats(c.out, stats)
	return nil
}

// confirm blocks on a y/N answer. Anything other than y or yes declines.
func (c *Console) confirm(prompt string) bool {
	fmt.Fprintf(c.out, "%s [y/N] ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
