package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/nhlarb/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// consoleRow es una fila visible en consola, identificada por su handle.
type consoleRow struct {
	handle string
	row    domain.DisplayRow
}

// Console implementa ports.Notifier sobre un terminal.
// Mantiene las filas mostradas y les aplica cada evento por handle, así que
// una fila conserva su posición entre scans aunque cambien sus cifras.
type Console struct {
	out   io.Writer
	table bool
	rows  []consoleRow
}

// NewConsole crea un notificador que escribe a stdout.
// Con table=true reimprime la tabla completa en cada scan con cambios.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Len devuelve el número de filas mostradas.
func (c *Console) Len() int {
	return len(c.rows)
}

// Notify aplica los eventos y los imprime en el modo configurado.
func (c *Console) Notify(_ context.Context, events []domain.RenderEvent) error {
	for _, ev := range events {
		c.apply(ev)
	}

	now := time.Now().Format("15:04:05")
	if len(events) == 0 {
		fmt.Fprintf(c.out, "[%s] no changes, %d arbitrage(s) displayed\n", now, len(c.rows))
		return nil
	}

	if c.table {
		c.printFull(now)
	} else {
		c.printCompact(now, events)
	}
	return nil
}

// apply modifica las filas según el evento.
func (c *Console) apply(ev domain.RenderEvent) {
	idx := c.indexOf(ev.Handle)
	switch ev.Kind {
	case domain.EventAdd:
		if idx >= 0 {
			c.rows[idx].row = ev.Opportunity.Display()
			return
		}
		c.rows = append(c.rows, consoleRow{handle: ev.Handle, row: ev.Opportunity.Display()})
	case domain.EventUpdate:
		if idx >= 0 {
			c.rows[idx].row = ev.Opportunity.Display()
		}
	case domain.EventRemove:
		if idx >= 0 {
			c.rows = append(c.rows[:idx], c.rows[idx+1:]...)
		}
	}
}

func (c *Console) indexOf(handle string) int {
	for i, r := range c.rows {
		if r.handle == handle {
			return i
		}
	}
	return -1
}

// printCompact imprime una línea por evento.
func (c *Console) printCompact(now string, events []domain.RenderEvent) {
	for _, ev := range events {
		row := ev.Opportunity.Display()
		switch ev.Kind {
		case domain.EventRemove:
			fmt.Fprintf(c.out, "[%s] - %s %s gone\n", now, row.Game, row.BetType)
		default:
			fmt.Fprintf(c.out, "[%s] %s %s\n", now, kindMark(ev.Kind), compactLine(row))
		}
	}
	fmt.Fprintf(c.out, "[%s] %d arbitrage(s) displayed\n", now, len(c.rows))
}

// printFull imprime la tabla con todas las filas mostradas.
func (c *Console) printFull(now string) {
	fmt.Fprintf(c.out, "\n[%s] %d arbitrage(s)\n", now, len(c.rows))
	if len(c.rows) == 0 {
		return
	}

	table := tablewriter.NewWriter(c.out)
	headers := make([]any, len(domain.DisplayHeaders))
	for i, h := range domain.DisplayHeaders {
		headers[i] = h
	}
	table.Header(headers...)

	for _, r := range c.rows {
		cells := r.row.Cells()
		args := make([]any, len(cells))
		for i, cell := range cells {
			args[i] = cell
		}
		table.Append(args...)
	}
	table.Render()
}

// PrintHistory imprime las oportunidades registradas en un periodo.
func (c *Console) PrintHistory(opps []domain.Opportunity, since time.Duration) {
	if len(opps) == 0 {
		fmt.Fprintf(c.out, "No arbitrage logged in the last %s\n", since)
		return
	}

	fmt.Fprintf(c.out, "\n=== ARBITRAGE LOG (last %s, %d entries) ===\n", since, len(opps))
	table := tablewriter.NewWriter(c.out)
	table.Header("Last seen", "Game", "Bet Type", "Team1 (Odds, Source)", "Team2 (Odds, Source)", "Profit", "Profit %")
	for _, opp := range opps {
		row := opp.Display()
		table.Append(
			opp.ScannedAt.Local().Format("01-02 15:04:05"),
			row.Game, row.BetType, row.Side1, row.Side2, row.Profit, row.ProfitPct,
		)
	}
	table.Render()
}

// --- helpers ---

func kindMark(k domain.EventKind) string {
	switch k {
	case domain.EventAdd:
		return "+"
	case domain.EventUpdate:
		return "~"
	default:
		return "-"
	}
}

func compactLine(r domain.DisplayRow) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s | %s / %s", r.Game, r.BetType, r.Side1, r.Side2)
	fmt.Fprintf(&sb, " | arb %s | %s / %s | profit %s (%s)", r.ArbPct, r.Stake1, r.Stake2, r.Profit, r.ProfitPct)
	return sb.String()
}
