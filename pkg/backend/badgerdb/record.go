package badgerdb

import (
	"bytes"
	"fmt"

	xdr "github.com/rasky/go-xdr/xdr2"
)

// objectRecord is the on-disk representation of one stored object.
//
// The record is XDR-encoded: a fixed, language-neutral binary schema that
// keeps the database readable by other tooling. Field order is the schema;
// do not reorder fields.
type objectRecord struct {
	// ModTimeNanos is the modification time in Unix nanoseconds.
	ModTimeNanos int64

	// Data is the object payload.
	Data []byte
}

func encodeRecord(r *objectRecord) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, r); err != nil {
		return nil, fmt.Errorf("marshal object record: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeRecord(value []byte) (*objectRecord, error) {
	record := &objectRecord{}
	if _, err := xdr.Unmarshal(bytes.NewReader(value), record); err != nil {
		return nil, fmt.Errorf("unmarshal object record: %w", err)
	}
	return record, nil
}
