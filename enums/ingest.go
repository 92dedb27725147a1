package enums

type RawStatus string

const (
	RawNew    RawStatus = "NEW"
	RawParsed RawStatus = "PARSED"
	RawError  RawStatus = "ERROR"
)

type IngestMode string

const (
	IngestManual    IngestMode = "MANUAL"
	IngestScheduled IngestMode = "SCHEDULED"
	IngestReparse   IngestMode = "REPARSE"
)

type IngestStatus string

const (
	IngestSuccess IngestStatus = "SUCCESS"

	// IngestPartial means the run finished but some items failed to parse.
	IngestPartial IngestStatus = "PARTIAL"

	IngestFailure IngestStatus = "FAILURE"
)
