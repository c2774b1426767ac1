package record

import "encoding/json"

// ExportSchemaVersion is written in the header line of every export file.
const ExportSchemaVersion = "1"

// ExportLine is one line of a JSONL export. The first line is a header
// (DashboardExport true); every other line carries one record.
type ExportLine struct {
	// Header fields
	DashboardExport bool   `json:"_dashboard_export,omitempty"`
	SchemaVersion   string `json:"schema_version,omitempty"`
	ExportedAt      int64  `json:"exported_at,omitempty"`

	// Record fields
	Collection Kind            `json:"collection,omitempty"`
	Record     json.RawMessage `json:"record,omitempty"`
}

// ToRecord decodes the record carried by a non-header line.
func (l ExportLine) ToRecord() (Record, error) {
	r := Record{Kind: l.Collection}
	if err := json.Unmarshal(l.Record, &r); err != nil {
		return Record{}, err
	}
	return r, nil
}

// RecordToExportLine wraps r for export.
func RecordToExportLine(r Record) (ExportLine, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return ExportLine{}, err
	}
	return ExportLine{Collection: r.Kind, Record: data}, nil
}
