package marketdata

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"

	"twsclient/src/logger"
	"twsclient/src/models"
)

// SessionCalendar decides which trading session a tick belongs to. Synthetic
// volume is reseeded whenever the session changes.
type SessionCalendar struct {
	MIC      string
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// Routing exchange or primary listing to ISO 10383 MIC.
var exchangeMICs = map[string]string{
	"NYSE":     "xnys",
	"ARCA":     "xnys",
	"AMEX":     "xnys",
	"BATS":     "xnys",
	"NASDAQ":   "xnas",
	"ISLAND":   "xnas",
	"LSE":      "xlon",
	"SBF":      "xpar",
	"IBIS":     "xetr",
	"FWB":      "xfra",
	"AEB":      "xams",
	"ENEXT.BE": "xbru",
	"BVME":     "xmil",
	"BM":       "xmad",
	"SFB":      "xsto",
	"EBS":      "xswx",
	"TSE":      "xtse",
	"VENTURE":  "xtsx",
	"TSEJ":     "xtks",
	"SEHK":     "xhkg",
	"ASX":      "xasx",
}

var currencyMICs = map[string]string{
	"USD": "xnys",
	"GBP": "xlon",
	"EUR": "xpar",
	"CHF": "xswx",
	"CAD": "xtse",
	"JPY": "xtks",
	"HKD": "xhkg",
	"AUD": "xasx",
}

// MICForContract picks a calendar for c: primary exchange first, then the
// routing exchange, then the currency. US equities are the default.
func MICForContract(c models.MContract) string {
	for _, ex := range []string{c.PrimaryExch, c.Exchange} {
		if mic, ok := exchangeMICs[strings.ToUpper(ex)]; ok {
			return mic
		}
	}
	if mic, ok := currencyMICs[strings.ToUpper(c.Currency)]; ok {
		return mic
	}
	return "xnys"
}

// -----------------------------------------------------------------------------

// NewSessionCalendar loads the calendar for mic. When neither mic nor xnys can
// be loaded it falls back to Mon-Fri 09:30-16:00 New York time.
func NewSessionCalendar(mic string, log *logger.Logger) *SessionCalendar {
	mic = strings.ToLower(mic)
	if mic == "" {
		mic = "xnys"
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil {
		cal = calendar.GetCalendar("xnys")
	}

	if cal == nil {
		if log != nil {
			log.Warning("Failed to load calendar for MIC '%s' and fallback 'xnys'. Using Mon-Fri 09:30-16:00 New York.", mic)
		}
		nyLoc, _ := time.LoadLocation("America/New_York")
		if nyLoc == nil {
			nyLoc = time.UTC
		}
		return &SessionCalendar{MIC: mic, Fallback: true, Timezone: nyLoc}
	}

	return &SessionCalendar{MIC: mic, Calendar: cal, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func (sc *SessionCalendar) local(t time.Time) time.Time {
	if sc.Timezone != nil {
		return t.In(sc.Timezone)
	}
	return t
}

// -----------------------------------------------------------------------------

func (sc *SessionCalendar) IsTradingDay(t time.Time) bool {
	t = sc.local(t)
	if sc.Fallback {
		wd := t.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	return sc.Calendar.IsBusinessDay(t)
}

// -----------------------------------------------------------------------------

// IsOpen reports whether the regular session is running at t.
func (sc *SessionCalendar) IsOpen(t time.Time) bool {
	t = sc.local(t)
	if sc.Fallback {
		if !sc.IsTradingDay(t) {
			return false
		}
		hour, minute := t.Hour(), t.Minute()
		return (hour > 9 || (hour == 9 && minute >= 30)) && hour < 16
	}
	return sc.Calendar.IsOpen(t)
}

// -----------------------------------------------------------------------------

// SessionKey names the session t falls in: the exchange-local calendar date.
// Ticks on non-trading days are attributed to that calendar date as well.
func (sc *SessionCalendar) SessionKey(t time.Time) string {
	return sc.local(t).Format("2006-01-02")
}
