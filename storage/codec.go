package storage

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Schema and codec versions are embedded in every persisted payload so a
// store can refuse blobs written by an incompatible build instead of
// silently misreading them.
const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("storage: payload version mismatch")

type envelope struct {
	SchemaVersion int             `json:"schema_version"`
	CodecVersion  int             `json:"codec_version"`
	Payload       json.RawMessage `json:"payload"`
}

func encode(payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return json.Marshal(envelope{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
		Payload:       raw,
	})
}

func decode(data []byte, payload any) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decoding envelope: %w", err)
	}
	if env.SchemaVersion != CurrentSchemaVersion || env.CodecVersion != CurrentCodecVersion {
		return fmt.Errorf("%w: schema %d codec %d, want %d/%d",
			ErrVersionMismatch, env.SchemaVersion, env.CodecVersion,
			CurrentSchemaVersion, CurrentCodecVersion)
	}
	if err := json.Unmarshal(env.Payload, payload); err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}
	return nil
}

// EncodeRun serializes a run record with the version envelope.
func EncodeRun(run RunRecord) ([]byte, error) { return encode(run) }

// DecodeRun deserializes a run record, rejecting version mismatches.
func DecodeRun(data []byte) (RunRecord, error) {
	var run RunRecord
	err := decode(data, &run)
	return run, err
}

// EncodeLineage serializes a lineage slice with the version envelope.
func EncodeLineage(lineage []LineageRecord) ([]byte, error) { return encode(lineage) }

// DecodeLineage deserializes a lineage slice, rejecting version mismatches.
func DecodeLineage(data []byte) ([]LineageRecord, error) {
	var lineage []LineageRecord
	err := decode(data, &lineage)
	return lineage, err
}

// EncodeHistory serializes an energy-history series with the version envelope.
func EncodeHistory(history []float64) ([]byte, error) { return encode(history) }

// DecodeHistory deserializes an energy-history series.
func DecodeHistory(data []byte) ([]float64, error) {
	var history []float64
	err := decode(data, &history)
	return history, err
}
