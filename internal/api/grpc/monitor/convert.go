package monitor

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lilycand/eldig/internal/service/driver"
)

// toStruct converts a driver snapshot to its wire representation. Field
// names follow the snapshot's JSON tags.
func toStruct(snapshot driver.Snapshot) (*structpb.Struct, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	var fields map[string]any
	if err = json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode snapshot fields: %w", err)
	}

	result, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build status struct: %w", err)
	}

	return result, nil
}

// fromStruct converts the wire representation back to a driver snapshot.
func fromStruct(status *structpb.Struct) (driver.Snapshot, error) {
	var snapshot driver.Snapshot

	data, err := protojson.Marshal(status)
	if err != nil {
		return snapshot, fmt.Errorf("encode status struct: %w", err)
	}

	if err = json.Unmarshal(data, &snapshot); err != nil {
		return snapshot, fmt.Errorf("decode status: %w", err)
	}

	return snapshot, nil
}
