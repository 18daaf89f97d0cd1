// Package ledger maintains the append-only submission record kept in the
// repository: a three-column CSV whose rows are only ever added, never
// edited or reordered.
package ledger

import (
	"bytes"
	"fmt"

	"github.com/gocarina/gocsv"
)

// Record is one ledger row. Column order is fixed by field order here and
// survives every rewrite unchanged.
type Record struct {
	Name     string `csv:"name" json:"name"`
	Form     string `csv:"form" json:"form"`
	SignedOn string `csv:"signed_on" json:"signedOn"`
}

// Decode parses CSV bytes into records. Empty input decodes to an empty
// table, same as a file holding only the header row.
func Decode(data []byte) ([]Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []Record{}, nil
	}
	var records []Record
	if err := gocsv.UnmarshalBytes(data, &records); err != nil {
		return nil, fmt.Errorf("ledger: decode csv: %w", err)
	}
	return records, nil
}

// Encode renders records back to CSV, header row included, no index column.
func Encode(records []Record) ([]byte, error) {
	out, err := gocsv.MarshalBytes(&records)
	if err != nil {
		return nil, fmt.Errorf("ledger: encode csv: %w", err)
	}
	return out, nil
}
