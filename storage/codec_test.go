package storage

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestCodec_LineageRoundTrip(t *testing.T) {
	lineage := testLineage()

	data, err := EncodeLineage(lineage)
	if err != nil {
		t.Fatalf("encoding: %v", err)
	}
	got, err := DecodeLineage(data)
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(got) != len(lineage) {
		t.Fatalf("decoded %d records, want %d", len(got), len(lineage))
	}
	if got[0] != lineage[0] || got[1] != lineage[1] {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, lineage)
	}
}

func TestCodec_RejectsVersionMismatch(t *testing.T) {
	data, err := json.Marshal(envelope{
		SchemaVersion: CurrentSchemaVersion + 1,
		CodecVersion:  CurrentCodecVersion,
		Payload:       json.RawMessage(`[]`),
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := DecodeLineage(data); !errors.Is(err, ErrVersionMismatch) {
		t.Errorf("decode error = %v, want ErrVersionMismatch", err)
	}
}

func TestCodec_RejectsGarbage(t *testing.T) {
	if _, err := DecodeRun([]byte("not json")); err == nil {
		t.Error("expected decode error for garbage input")
	}
}
