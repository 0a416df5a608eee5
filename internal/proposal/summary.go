package proposal

import (
	"strconv"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hvacpro/proposals/internal/pricebook"
	"github.com/hvacpro/proposals/internal/pricing"
)

type moneyFormatter struct {
	printer *message.Printer
	prefix  string
}

func newMoneyFormatter(code string) moneyFormatter {
	f := moneyFormatter{printer: message.NewPrinter(language.AmericanEnglish), prefix: "$"}
	if unit, err := currency.ParseISO(code); err == nil && unit != currency.USD {
		f.prefix = unit.String() + " "
	}
	return f
}

func (f moneyFormatter) format(v float64) string {
	if v < 0 {
		return "-" + f.prefix + f.printer.Sprintf("%.2f", -v)
	}
	return f.prefix + f.printer.Sprintf("%.2f", v)
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

// Summary renders a plain-text presentation of a proposal priced at totals.
func Summary(p Proposal, totals pricing.Totals, book pricebook.Book) string {
	money := newMoneyFormatter(book.Settings.Currency)
	sel := p.State.Selections
	var b strings.Builder

	title := p.Title
	if title == "" {
		title = "HVAC proposal"
	}
	b.WriteString(title + "\n")
	if name := p.State.Customer.Name; name != "" {
		b.WriteString("Prepared for: " + name + "\n")
	}
	if addr := formatAddress(p.State.Property); addr != "" {
		b.WriteString("Property: " + addr + "\n")
	}
	b.WriteString("\n")

	if tier, ok := book.Item(sel.TierID); ok {
		line := "System: " + tier.Name
		if tier.SEER > 0 {
			line += " (" + strconv.FormatFloat(tier.SEER, 'f', -1, 64) + " SEER)"
		}
		b.WriteString(line + "  " + money.format(totals.EquipmentPrice) + "\n")
	}

	if len(sel.AddOnIDs) > 0 {
		b.WriteString("Add-ons:  " + money.format(totals.AddOnsTotal) + "\n")
		for _, id := range sel.AddOnIDs {
			if addOn, ok := book.Item(id); ok {
				b.WriteString("  - " + addOn.Name + "\n")
			}
		}
	}

	if plan, ok := book.Item(sel.PlanID); ok && totals.Maintenance != nil {
		line := "Maintenance: " + plan.Name + ", " + strconv.Itoa(totals.Maintenance.Years) + " years"
		if totals.Maintenance.DiscountPercent > 0 {
			line += " (" + percent(totals.Maintenance.DiscountPercent) + " off)"
		}
		b.WriteString(line + "  " + money.format(totals.MaintenanceTotal) + "\n")
	}

	if len(sel.IncentiveIDs) > 0 {
		b.WriteString("Incentives:\n")
		for _, id := range sel.IncentiveIDs {
			if inc, ok := book.Incentive(id); ok {
				b.WriteString("  - " + inc.Name + "  " + money.format(-inc.Amount) + "\n")
			}
		}
	}

	b.WriteString("\n")
	b.WriteString("Subtotal: " + money.format(totals.Subtotal) + "\n")
	if totals.IncentivesTotal > 0 {
		b.WriteString("Incentives: " + money.format(-totals.IncentivesTotal) + "\n")
	}
	b.WriteString("Total: " + money.format(totals.GrandTotal) + "\n")

	if pay := totals.Payment; pay != nil {
		line := "or " + money.format(pay.MonthlyPayment) + "/mo"
		switch pay.Type {
		case pricing.FinancingFinance:
			line += " for " + strconv.Itoa(pay.TermMonths) + " months at " + percent(pay.APR) + " APR"
		case pricing.FinancingLease:
			line += " for " + strconv.Itoa(pay.TermMonths/12) + " years (" + pay.EscalatorNote + ")"
		}
		b.WriteString(line + "\n")
	}

	return b.String()
}

func formatAddress(p Property) string {
	cityLine := strings.TrimSpace(strings.Join(nonEmpty(p.City, strings.TrimSpace(p.State+" "+p.Zip)), ", "))
	return strings.Join(nonEmpty(p.Address, cityLine), ", ")
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
