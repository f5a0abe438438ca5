package notify

import (
	"fmt"
	"net/url"
	"strings"

	"safetrip/internal/domain"
)

const whatsAppBase = "https://wa.me/?text="

// Linker builds the share URLs that reach guardians without a push token.
type Linker struct {
	siteURL string
}

func NewLinker(siteURL string) *Linker {
	return &Linker{siteURL: strings.TrimRight(siteURL, "/")}
}

// IncidentURL is the public live page of the incident.
func (l *Linker) IncidentURL(id fmt.Stringer) string {
	return l.siteURL + "/incident/" + id.String()
}

func (l *Linker) AlertText(inc *domain.Incident) string {
	return "🚨 EMERGENCY ALERT 🚨\n\nSomeone needs immediate assistance. View live location:\n" + l.IncidentURL(inc.ID)
}

// FallbackLink is a wa.me link prefilled with the alert text.
func (l *Linker) FallbackLink(inc *domain.Incident) string {
	return whatsAppBase + encodeURIComponent(l.AlertText(inc))
}

func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
