package team

// Status tells whether a rating is still settling.
type Status string

const (
	StatusProvisional Status = "PROVISIONAL"
	StatusEstablished Status = "ESTABLISHED"
)

// StatusFor returns the status of a team that has played matchesPlayed games
// given the early-matches threshold.
func StatusFor(matchesPlayed, earlyThreshold int) Status {
	if matchesPlayed < earlyThreshold {
		return StatusProvisional
	}
	return StatusEstablished
}

func (s Status) Label() string {
	if s == StatusProvisional {
		return "Provisional"
	}
	return "Established"
}
