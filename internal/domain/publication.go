package domain

import "time"

// Publication is a research output reported by an applicant against a
// completed application.
type Publication struct {
	ID                int32      `json:"id"`
	ApplicationID     int32      `json:"application_id"`
	Title             string     `json:"title"`
	Authors           string     `json:"authors"`
	DOI               string     `json:"doi"`
	Journal           string     `json:"journal"`
	PublicationYear   *int32     `json:"publication_year,omitempty"`
	RedibAcknowledged bool       `json:"redib_acknowledged"`
	ReportedBy        int32      `json:"reported_by"`
	ReportedAt        time.Time  `json:"reported_at"`
	Verified          bool       `json:"verified"`
	VerifiedAt        *time.Time `json:"verified_at,omitempty"`
	UpdatedOn         time.Time  `json:"updated_on"`
}
