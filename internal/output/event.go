package output

// Event is a lifecycle record for NDJSON streaming output.
//
// In NDJSON mode, sinks emit Events (one JSON object per line), including:
// - update.started
// - submodule.updated
// - submodule.failed
// - submodule.skipped
// - update.finished
//
// JSON mode remains an aggregate array of the same Events.
type Event struct {
	Type string `json:"type"`
	// Path is the submodule's display path (prefix-composed), when the
	// event concerns one submodule.
	Path        string `json:"path,omitempty"`
	OID         string `json:"oid,omitempty"`
	JustCreated bool   `json:"just_created,omitempty"`
	Message     string `json:"message,omitempty"`
	// Code is the update procedure's raw status for submodule.* events.
	Code     int  `json:"code,omitempty"`
	ExitCode *int `json:"exit_code,omitempty"`
}
