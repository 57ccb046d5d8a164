// Package digest aggregates the reports relevant to one subscriber, decides
// whether anything is worth sending and renders the email subject and body.
package digest

import (
	"fmt"
	"strings"
	"time"

	"github.com/timnew/Fuel-price/pkg/fuel"
	"github.com/timnew/Fuel-price/pkg/report"
)

// Sender delivers one rendered digest. Fire-and-forget: a nil error means the
// message was handed to the transport, not that it was delivered.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// Digest collects the reports one subscriber cares about for a single run.
// Transient: build, AddReports, TrySend, discard.
type Digest struct {
	Recipient string
	FuelTypes []fuel.FuelType
	HomeState fuel.Region // empty when the subscriber has none
	ForceSend bool

	now     time.Time
	reports []report.Report
	changed bool
}

func New(recipient string, fuelTypes []fuel.FuelType, homeState fuel.Region, forceSend bool, now time.Time) *Digest {
	return &Digest{
		Recipient: recipient,
		FuelTypes: fuelTypes,
		HomeState: homeState,
		ForceSend: forceSend,
		now:       now,
	}
}

// AddReports picks the subscriber's reports out of set: every subscribed fuel
// type, for the aggregate region and the home state if set. Missing reports
// are skipped silently.
func (d *Digest) AddReports(set report.Set) {
	regions := []fuel.Region{fuel.All}
	if d.HomeState != "" {
		regions = append(regions, d.HomeState)
	}
	for _, fuelType := range d.FuelTypes {
		for _, region := range regions {
			r, ok := set[fuel.Key{FuelType: fuelType, Region: region}]
			if !ok {
				continue
			}
			d.reports = append(d.reports, r)
			if r.Trend != fuel.NoChange {
				d.changed = true
			}
		}
	}
}

// Changed reports whether any collected report moved.
func (d *Digest) Changed() bool {
	return d.changed
}

// Reports returns the collected reports in selection order.
func (d *Digest) Reports() []report.Report {
	return d.reports
}

// TrySend delivers the digest when something changed or the subscriber forces
// delivery; otherwise it is a no-op. Returns whether a send was attempted.
func (d *Digest) TrySend(sender Sender) (bool, error) {
	if !d.changed && !d.ForceSend {
		return false, nil
	}
	if err := sender.Send(d.Recipient, d.Subject(), d.Body()); err != nil {
		return true, err
	}
	return true, nil
}

// Subject summarizes the collected reports in one line, collapsing each facet
// to its single value when uniform or to a count otherwise.
func (d *Digest) Subject() string {
	fuels := make([]fuel.FuelType, len(d.reports))
	regions := make([]fuel.Region, len(d.reports))
	rising := make([]bool, len(d.reports))
	fast := make([]bool, len(d.reports))
	for i, r := range d.reports {
		fuels[i] = r.FuelType
		regions[i] = r.Region
		rising[i] = r.Trend.Rising()
		fast[i] = r.Trend.IsFast()
	}

	fuelPhrase := fmt.Sprintf("%d fuel types", countDistinct(fuels))
	if v, unique := uniqueValue(fuels); unique {
		fuelPhrase = string(v)
	}
	regionPhrase := fmt.Sprintf("%d regions", countDistinct(regions))
	if v, unique := uniqueValue(regions); unique {
		regionPhrase = string(v)
	}

	direction := "changed"
	if v, unique := uniqueValue(rising); unique {
		if v {
			direction = "increased"
		} else {
			direction = "dropped"
		}
	}
	speed := "with variant speed"
	if v, unique := uniqueValue(fast); unique {
		if v {
			speed = "significantly"
		} else {
			speed = "gradually"
		}
	}

	return fmt.Sprintf("%s@%s has %s %s", fuelPhrase, regionPhrase, direction, speed)
}

// Body renders one summary line per report followed by its history and
// latest-price tables, as simple HTML.
func (d *Digest) Body() string {
	var b strings.Builder
	for _, r := range d.reports {
		best := "n/a"
		if len(r.LatestPrices) > 0 {
			best = formatPrice(r.LatestPrices[0].Price)
		}
		fmt.Fprintf(&b, "<p>%s@%s has %s by %s at %s</p>\n",
			r.FuelType, r.Region, r.Trend.Arrow(), formatDelta(r.PriceDelta), best)

		b.WriteString("<table>\n<tr><th>When</th><th>Price</th></tr>\n")
		for _, p := range r.HistoryPrices {
			fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td></tr>\n",
				RelativeTime(d.now, p.Timestamp), formatPrice(p.Price))
		}
		b.WriteString("</table>\n")

		b.WriteString("<table>\n<tr><th>Suburb</th><th>State</th><th>Price</th></tr>\n")
		for _, p := range r.LatestPrices {
			fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td></tr>\n",
				p.Suburb, p.State, formatPrice(p.Price))
		}
		b.WriteString("</table>\n")
	}
	return b.String()
}

// uniqueValue returns the shared value when every element is identical.
func uniqueValue[T comparable](values []T) (T, bool) {
	var first T
	if len(values) == 0 {
		return first, false
	}
	first = values[0]
	for _, v := range values[1:] {
		if v != first {
			var zero T
			return zero, false
		}
	}
	return first, true
}

func countDistinct[T comparable](values []T) int {
	seen := make(map[T]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}

func formatPrice(price float64) string {
	return fmt.Sprintf("%.1f", price)
}

func formatDelta(delta float64) string {
	return fmt.Sprintf("%.2f", delta)
}
