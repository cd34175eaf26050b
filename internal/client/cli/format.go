package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/boostmanager/internal/client/models"
)

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func money(currency string, v float64) string {
	return fmt.Sprintf("%s %.2f", currency, v)
}

func date(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func printOrders(w io.Writer, list []*models.Order) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tORDER\tBOOSTER\tSERVICE\tPLATFORM\tSTATUS\tTOTAL\tSTART\tEND")
	for _, o := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			o.ID, o.OrderNumber, o.Booster, o.ServiceType, o.Platform, o.Status,
			money(o.Currency, o.TotalValue), date(&o.StartDate), date(o.EndDate))
	}
	return tw.Flush()
}

func printActiveOrders(w io.Writer, list []*models.ActiveOrder) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ORDER\tBOOSTER\tSERVICE\tSTATUS\tELAPSED")
	for _, o := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", o.OrderNumber, o.Booster, o.ServiceType, o.Status, o.Elapsed)
	}
	return tw.Flush()
}

func printCards(w io.Writer, c *models.Cards) error {
	tw := newTable(w)
	for _, card := range []models.Card{c.Revenue, c.Orders, c.InProgress, c.PayrollOwed} {
		fmt.Fprintf(tw, "%s\t%.2f\t%s\n", card.Title, card.Value, card.Subtitle)
	}
	fmt.Fprintf(tw, "Revenue (USD)\t%.2f\t1 USD = %.4f BRL\n", c.RevenueUSD, c.DollarRate)
	return tw.Flush()
}

func printPayroll(w io.Writer, list []*models.Payroll) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "BOOSTER\tEMAIL\tVALUE\tSTATUS")
	for _, p := range list {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\n", p.Name, p.Email, p.Value, p.Status)
	}
	return tw.Flush()
}

func printGames(w io.Writer, list []*models.Game) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "GAME\tAVAILABLE\tBADGE")
	for _, g := range list {
		badge := ""
		if g.Badge != nil {
			badge = g.Badge.Text
		}
		fmt.Fprintf(tw, "%s\t%t\t%s\n", g.Name, g.Available, badge)
	}
	return tw.Flush()
}

func printSummary(w io.Writer, s *models.Summary) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Health\t%s\t%s\n", s.Health, date(s.HealthCheckedAt))
	fmt.Fprintf(tw, "Active tenants\t%d\n", s.ActiveTenants)
	fmt.Fprintf(tw, "Active subscriptions\t%d\n", s.ActiveSubscriptions)
	fmt.Fprintf(tw, "Audit entries\t%d\n", s.AuditEntries)
	fmt.Fprintf(tw, "Online users\t%d\n", len(s.OnlineUsers))
	for _, u := range s.OnlineUsers {
		seen := "-"
		if u.LastSeen != nil {
			seen = u.LastSeen.Local().Format(time.TimeOnly)
		}
		fmt.Fprintf(tw, "\t%s\t%s\n", u.Email, seen)
	}
	for _, p := range s.ActivePlans {
		fmt.Fprintf(tw, "Plan\t%s\t%s\n", p.Plan, money(p.Currency, p.Amount))
	}
	return tw.Flush()
}

func printAudit(w io.Writer, list []*models.AuditEntry) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "TIME\tACTION\tENTITY\tDETAILS")
	for _, e := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\n", e.Timestamp.Local().Format(time.DateTime), e.Action, e.Entity, e.EntityID, e.Details)
	}
	return tw.Flush()
}

func printErrors(w io.Writer, list []*models.ErrorLog) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "TIME\tSTATUS\tPATH\tMESSAGE")
	for _, e := range list {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", e.CreatedAt.Local().Format(time.DateTime), e.Status, e.Path, e.Message)
	}
	return tw.Flush()
}
