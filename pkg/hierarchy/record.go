package hierarchy

import (
	"strings"
)

const (
	recordSeparator = "\t"
	fieldSeparator  = ","
)

// record is one raw id,managerId,salary triple and where it came from.
type record struct {
	line   int
	column int
	raw    string
	fields []string
}

// splitLine splits a line into its tab-separated records. Whitespace-only
// lines carry no records.
func splitLine(line string, lineNo int) []record {
	if strings.TrimSpace(line) == "" {
		return nil
	}

	parts := strings.Split(line, recordSeparator)
	records := make([]record, 0, len(parts))
	for i, raw := range parts {
		records = append(records, record{
			line:   lineNo,
			column: i + 1,
			raw:    raw,
			fields: strings.Split(raw, fieldSeparator),
		})
	}
	return records
}

func (r record) id() string { return r.fields[0] }

// managerID and salary are only valid once the record has three fields.
func (r record) managerID() string { return r.fields[1] }
func (r record) salary() string    { return strings.TrimSpace(r.fields[2]) }
