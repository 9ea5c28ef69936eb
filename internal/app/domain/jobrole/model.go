package jobrole

import "time"

// Role is an advertised position with a finite number of hires available.
// OpenPositions is mutated only by a successful hire.
type Role struct {
	ID               int64
	Name             string
	Location         string
	ClosingDate      time.Time
	Description      string
	Responsibilities string
	InfoURL          string
	OpenPositions    int

	CapabilityID int64
	BandID       int64
	StatusID     int64

	// Reference names, populated by enriched reads for presentation.
	CapabilityName string
	BandName       string
	StatusName     string
}
