package digest

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/timnew/Fuel-price/pkg/fuel"
	"github.com/timnew/Fuel-price/pkg/report"
)

type fakeSender struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to, subject, body string
}

func (f *fakeSender) Send(to, subject, htmlBody string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

var runTime = time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)

func makeReport(ft fuel.FuelType, region fuel.Region, trend fuel.Trend, delta float64) report.Report {
	p := fuel.PricePoint{Timestamp: runTime, State: string(region), Suburb: "Melbourne", Price: 145.9}
	return report.Report{
		FuelType:      ft,
		Region:        region,
		LatestPrices:  []fuel.PricePoint{p},
		HistoryPrices: []fuel.PricePoint{p},
		PriceDelta:    delta,
		Trend:         trend,
	}
}

func makeSet(reports ...report.Report) report.Set {
	set := make(report.Set)
	for _, r := range reports {
		set[fuel.Key{FuelType: r.FuelType, Region: r.Region}] = r
	}
	return set
}

func TestAddReportsSelection(t *testing.T) {
	set := makeSet(
		makeReport(fuel.U91, fuel.All, fuel.Raised, 1.2),
		makeReport(fuel.U91, fuel.VIC, fuel.NoChange, 0),
		makeReport(fuel.Diesel, fuel.All, fuel.NoChange, 0),
		makeReport(fuel.U98, fuel.All, fuel.FastDrop, -4.0), // not subscribed
	)

	d := New("a@example.com", []fuel.FuelType{fuel.U91, fuel.Diesel}, fuel.VIC, false, runTime)
	d.AddReports(set)

	// U91@All, U91@VIC, Diesel@All; Diesel@VIC is absent and skipped silently.
	if len(d.Reports()) != 3 {
		t.Fatalf("collected %d reports, want 3", len(d.Reports()))
	}
	if !d.Changed() {
		t.Error("Changed() = false, want true (U91@All raised)")
	}
}

func TestAddReportsNoHomeState(t *testing.T) {
	set := makeSet(
		makeReport(fuel.U91, fuel.All, fuel.NoChange, 0),
		makeReport(fuel.U91, fuel.VIC, fuel.Raised, 1.0),
	)

	d := New("a@example.com", []fuel.FuelType{fuel.U91}, "", false, runTime)
	d.AddReports(set)

	if len(d.Reports()) != 1 {
		t.Fatalf("collected %d reports, want 1 (All only)", len(d.Reports()))
	}
	if d.Changed() {
		t.Error("Changed() = true, want false (VIC report not selected)")
	}
}

func TestSubject(t *testing.T) {
	tests := []struct {
		name    string
		reports []report.Report
		want    string
	}{
		{
			name: "single report",
			reports: []report.Report{
				makeReport(fuel.U91, fuel.All, fuel.Raised, 1.2),
			},
			want: "U91@All has increased gradually",
		},
		{
			name: "two regions same type",
			reports: []report.Report{
				makeReport(fuel.U91, fuel.All, fuel.FastRaise, 4.0),
				makeReport(fuel.U91, fuel.VIC, fuel.FastRaise, 4.2),
			},
			want: "U91@2 regions has increased significantly",
		},
		{
			name: "two types one region mixed direction",
			reports: []report.Report{
				makeReport(fuel.U91, fuel.All, fuel.Raised, 1.2),
				makeReport(fuel.Diesel, fuel.All, fuel.Dropped, -1.0),
			},
			want: "2 fuel types@All has changed gradually",
		},
		{
			name: "mixed speed",
			reports: []report.Report{
				makeReport(fuel.U91, fuel.All, fuel.FastDrop, -4.0),
				makeReport(fuel.U91, fuel.VIC, fuel.Dropped, -1.0),
			},
			want: "U91@2 regions has dropped with variant speed",
		},
		{
			// A NoChange report counts as "not increased", so an all-flat
			// digest reads as dropped. Matches the send gating: such a
			// digest only goes out under force send.
			name: "all flat",
			reports: []report.Report{
				makeReport(fuel.U91, fuel.All, fuel.NoChange, 0),
			},
			want: "U91@All has dropped gradually",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New("a@example.com", nil, "", false, runTime)
			d.reports = tt.reports
			if got := d.Subject(); got != tt.want {
				t.Errorf("Subject() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTrySendGating(t *testing.T) {
	tests := []struct {
		name      string
		changed   bool
		forceSend bool
		wantSent  bool
	}{
		{"no change no force", false, false, false},
		{"no change forced", false, true, true},
		{"changed", true, false, true},
		{"changed and forced", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			d := New("a@example.com", nil, "", tt.forceSend, runTime)
			d.changed = tt.changed

			sent, err := d.TrySend(sender)
			if err != nil {
				t.Fatalf("TrySend: %v", err)
			}
			if sent != tt.wantSent {
				t.Errorf("sent = %v, want %v", sent, tt.wantSent)
			}
			if got := len(sender.sent); got != boolToCount(tt.wantSent) {
				t.Errorf("sender calls = %d, want %d", got, boolToCount(tt.wantSent))
			}
		})
	}
}

func boolToCount(b bool) int {
	if b {
		return 1
	}
	return 0
}

func TestTrySendError(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	d := New("a@example.com", nil, "", true, runTime)

	sent, err := d.TrySend(sender)
	if !sent {
		t.Error("sent = false, want true (attempt was made)")
	}
	if err == nil {
		t.Error("expected send error")
	}
}

func TestBody(t *testing.T) {
	r := makeReport(fuel.U91, fuel.VIC, fuel.Raised, 1.2)
	r.HistoryPrices = []fuel.PricePoint{
		{Timestamp: runTime.Add(-48 * time.Hour), Price: 143.5},
		{Timestamp: runTime, Price: 145.9},
	}
	d := New("a@example.com", nil, "", false, runTime)
	d.reports = []report.Report{r}

	body := d.Body()
	for _, want := range []string{
		"U91@VIC has ↑ by 1.20 at 145.9",
		"2 days ago",
		"0 seconds ago",
		"<td>Melbourne</td><td>VIC</td><td>145.9</td>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}
