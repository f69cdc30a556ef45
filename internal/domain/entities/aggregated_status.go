package entities

// LiveStatus is the consensus level derived from a center's recent reports.
type LiveStatus string

const (
	LiveStatusOK            LiveStatus = "OK"
	LiveStatusWarning       LiveStatus = "WARNING"
	LiveStatusCriticalIssue LiveStatus = "CRITICAL_ISSUE"
)

var liveStatusPriority = map[LiveStatus]int{
	LiveStatusOK:            0,
	LiveStatusWarning:       1,
	LiveStatusCriticalIssue: 2,
}

// Priority returns the sort rank of the status, lower is better. Unknown
// values rank after OK so they never displace a clean center.
func (s LiveStatus) Priority() int {
	if p, ok := liveStatusPriority[s]; ok {
		return p
	}
	return 1
}

// AggregatedStatus is the consensus view of one center's reports inside the
// freshness window. Reason holds the canonical English form; localized
// variants are rendered at the response boundary from the structured fields.
type AggregatedStatus struct {
	CenterName           string     `json:"center_name"`
	FinalStatus          LiveStatus `json:"final_status"`
	Reason               string     `json:"reason"`
	CriticalCount        int        `json:"critical_count"`
	ReportCount          int        `json:"report_count"`
	LatestStatus         string     `json:"latest_status"`
	LatestCriticalStatus string     `json:"latest_critical_status,omitempty"`
	LatestTimestamp      int64      `json:"latest_timestamp"`
}
