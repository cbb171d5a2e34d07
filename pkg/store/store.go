// Package store persists marginalized graphs.
//
// A [Record] keeps the serialized marginal together with the content hash
// of the graph it came from and the strain set, so a result can be traced
// back to its inputs. Two implementations of [Store] are provided: [Mongo]
// for shared deployments and [Memory] for tests and single-process use.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get for unknown record ids.
var ErrNotFound = errors.New("record not found")

// Record is one stored marginalization result.
type Record struct {
	ID         string    `bson:"_id" json:"id"`
	SourceHash string    `bson:"source_hash" json:"source_hash"`
	Strains    []string  `bson:"strains" json:"strains"`
	Graph      []byte    `bson:"graph" json:"-"`
	Blocks     int       `bson:"blocks" json:"blocks"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// Store saves and loads records.
type Store interface {
	// Save inserts r. Saving an existing id replaces the record.
	Save(ctx context.Context, r Record) error
	// Get loads a record by id.
	Get(ctx context.Context, id string) (Record, error)
	// BySource lists the records derived from a source graph, newest first.
	BySource(ctx context.Context, sourceHash string) ([]Record, error)
	// Close releases resources.
	Close(ctx context.Context) error
}
