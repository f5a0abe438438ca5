package postgres

// Escalation joins the trip and incident repositories into the single
// store the escalation engine works against.
type Escalation struct {
	*TripRepo
	*IncidentRepo
}

func (p *Postgres) Escalation() *Escalation {
	return &Escalation{TripRepo: p.Trips, IncidentRepo: p.Incidents}
}
