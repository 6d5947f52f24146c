package services

import (
	"crypto/md5" //nolint:gosec // Non-cryptographic: stable row key from provider id
	"encoding/hex"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/custodia-labs/meetsync/internal/core/domain"
)

// Default classification thresholds. Both are tunable via ClassifierConfig;
// the values mirror the dashboard's historical behaviour.
const (
	// DefaultMinDurationMinutes drops meetings shorter than this.
	DefaultMinDurationMinutes = 15

	// DefaultImportantDurationMinutes is the importance cutoff.
	DefaultImportantDurationMinutes = 30

	// companyNameMaxLen caps the truncated-summary fallback.
	companyNameMaxLen = 30

	// UnknownCompany is the terminal fallback company name.
	UnknownCompany = "Unknown"
)

// publicDomains are consumer mail providers that never identify a company.
// The domain fallback skips attendees from these.
var publicDomains = map[string]bool{
	"gmail.com":      true,
	"googlemail.com": true,
	"yahoo.co.jp":    true,
	"yahoo.com":      true,
	"outlook.com":    true,
	"hotmail.com":    true,
	"icloud.com":     true,
}

// companyRule is one entry in the ordered company-name rule table.
// The first rule whose pattern matches the summary wins; group selects
// the capture group holding the name.
type companyRule struct {
	name    string
	pattern *regexp.Regexp
	group   int
}

// defaultCompanyRules is the canonical ordered rule table. Earlier entries
// take priority: legal-entity markers beat brackets beat separators.
var defaultCompanyRules = []companyRule{
	{"jp-entity-prefix", regexp.MustCompile(`((?:株式会社|有限会社|合同会社)[^\s　]+)`), 1},
	{"jp-entity-suffix", regexp.MustCompile(`([^\s　]+(?:株式会社|有限会社|合同会社))`), 1},
	{"en-entity-suffix", regexp.MustCompile(`([A-Za-z][A-Za-z0-9&.' -]*(?:Inc\.|LLC|Corp\.|Co\., ?Ltd\.?|Ltd\.))`), 1},
	{"bracket-lenticular", regexp.MustCompile(`【([^】]+)】`), 1},
	{"bracket-square", regexp.MustCompile(`\[([^\]]+)\]`), 1},
	{"bracket-corner", regexp.MustCompile(`「([^」]+)」`), 1},
	{"with", regexp.MustCompile(`(?i)\bwith\s+([^\s　]+)`), 1},
	{"at-sign", regexp.MustCompile(`@ ([^\s　]+)`), 1},
	{"dash", regexp.MustCompile(`[-–—]\s*([^\s　]+)`), 1},
}

// ClassifierConfig tunes the pure event classifier.
type ClassifierConfig struct {
	// InternalDomains is the allowlist of email domains considered part
	// of the organisation. Everyone else is external.
	InternalDomains []string

	// MinDurationMinutes drops shorter meetings from the pipeline.
	// Zero means DefaultMinDurationMinutes.
	MinDurationMinutes int

	// ImportantDurationMinutes is the importance cutoff.
	// Zero means DefaultImportantDurationMinutes.
	ImportantDurationMinutes int
}

// Classifier maps raw provider events to classified CalendarEvents.
// It is a pure function over its configuration: no I/O, deterministic
// for the same input and the same rule table.
type Classifier struct {
	internalDomains map[string]bool
	minMinutes      int
	importantMins   int
	rules           []companyRule
}

// NewClassifier creates a classifier from configuration.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	internal := make(map[string]bool, len(cfg.InternalDomains))
	for _, d := range cfg.InternalDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			internal[d] = true
		}
	}

	minMins := cfg.MinDurationMinutes
	if minMins <= 0 {
		minMins = DefaultMinDurationMinutes
	}
	importantMins := cfg.ImportantDurationMinutes
	if importantMins <= 0 {
		importantMins = DefaultImportantDurationMinutes
	}

	return &Classifier{
		internalDomains: internal,
		minMinutes:      minMins,
		importantMins:   importantMins,
		rules:           defaultCompanyRules,
	}
}

// Classify maps one raw event to a CalendarEvent. Returns (nil, false)
// when the event must be skipped: missing either time bound, or shorter
// than the minimum duration. It never returns an error - the caller
// counts skips.
func (c *Classifier) Classify(raw *domain.RawEvent, now time.Time) (*domain.CalendarEvent, bool) {
	if raw == nil || raw.ProviderID == "" {
		return nil, false
	}
	if raw.Start.IsZero() || raw.End.IsZero() {
		return nil, false
	}

	duration := int(math.Round(raw.End.Sub(raw.Start).Minutes()))
	if duration < c.minMinutes {
		return nil, false
	}

	attendees := normaliseAttendees(raw.Attendees)
	external := c.externalAttendees(attendees)

	event := &domain.CalendarEvent{
		EventID:           hashEventID(raw.ProviderID),
		Summary:           raw.Summary,
		Description:       raw.Description,
		Location:          raw.Location,
		MeetingURL:        raw.MeetingURL,
		OrganizerEmail:    strings.ToLower(raw.OrganizerEmail),
		StartTime:         raw.Start,
		EndTime:           raw.End,
		Attendees:         attendees,
		ExternalAttendees: external,
		DurationMinutes:   duration,
		IsImportant:       duration >= c.importantMins && len(external) > 0,
		CompanyName:       c.companyName(raw.Summary, external),
		ProposalStatus:    domain.ProposalPending,
		SyncedAt:          now,
	}

	return event, true
}

// externalAttendees filters attendees whose domain is outside the
// internal allowlist. Attendees without a parseable domain stay internal:
// a malformed address never marks a meeting external.
func (c *Classifier) externalAttendees(attendees []domain.Attendee) []domain.Attendee {
	var external []domain.Attendee
	for _, a := range attendees {
		d := a.Domain()
		if d == "" {
			continue
		}
		if !c.internalDomains[d] {
			external = append(external, a)
		}
	}
	return external
}

// companyName runs the ordered rule table against the summary, then falls
// back to the first external attendee's domain, then to a truncated
// summary, then to UnknownCompany.
func (c *Classifier) companyName(summary string, external []domain.Attendee) string {
	for _, rule := range c.rules {
		m := rule.pattern.FindStringSubmatch(summary)
		if m == nil || rule.group >= len(m) {
			continue
		}
		if name := strings.TrimSpace(m[rule.group]); name != "" {
			return name
		}
	}

	if name := companyFromDomain(external); name != "" {
		return name
	}

	if s := strings.TrimSpace(summary); s != "" {
		return truncateRunes(s, companyNameMaxLen)
	}
	return UnknownCompany
}

// companyFromDomain derives a name from the first external attendee whose
// domain is not a consumer mail provider: the first label, capitalised.
func companyFromDomain(external []domain.Attendee) string {
	for _, a := range external {
		d := a.Domain()
		if d == "" || publicDomains[d] {
			continue
		}
		label, _, _ := strings.Cut(d, ".")
		if label == "" {
			continue
		}
		runes := []rune(label)
		runes[0] = unicode.ToUpper(runes[0])
		return string(runes)
	}
	return ""
}

// normaliseAttendees lowercases emails and fills missing names from the
// email local part.
func normaliseAttendees(attendees []domain.Attendee) []domain.Attendee {
	if len(attendees) == 0 {
		return nil
	}
	out := make([]domain.Attendee, len(attendees))
	for i, a := range attendees {
		a.Email = strings.ToLower(strings.TrimSpace(a.Email))
		if a.Name == "" {
			a.Name, _, _ = strings.Cut(a.Email, "@")
		}
		if a.ResponseStatus == "" {
			a.ResponseStatus = "needsAction"
		}
		out[i] = a
	}
	return out
}

// hashEventID derives the stable row key from the provider's event id.
func hashEventID(providerID string) string {
	sum := md5.Sum([]byte(providerID)) //nolint:gosec // Row key, not security
	return hex.EncodeToString(sum[:])
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
