package ingest

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sobani/cardvault/internal/store"
	"github.com/sobani/cardvault/pkg/errors"
	"github.com/sobani/cardvault/pkg/logging"
)

// Batch accumulates planned mutation intents for one ingestion task. It is
// built up through the pipeline and consumed exactly once by the committer.
type Batch struct {
	intents  []store.Intent
	consumed bool
}

// NewBatch creates an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Add appends an intent. Nil intents (no-op plans) are ignored.
func (b *Batch) Add(intent store.Intent) {
	if intent == nil {
		return
	}
	b.intents = append(b.intents, intent)
}

// Len returns the number of accumulated intents.
func (b *Batch) Len() int {
	return len(b.intents)
}

// take hands the intents to the committer and marks the batch consumed.
func (b *Batch) take() ([]store.Intent, error) {
	if b.consumed {
		return nil, errors.New("batch already committed")
	}
	b.consumed = true
	return b.intents, nil
}

// Committer applies a batch as one unordered bulk operation against the
// catalog store.
type Committer struct {
	store  store.Store
	logger zerolog.Logger
}

// NewCommitter creates a committer over the store.
func NewCommitter(st store.Store) *Committer {
	return &Committer{
		store:  st,
		logger: logging.Component("committer"),
	}
}

// Commit applies the batch. An empty batch is not an error; there was simply
// nothing to do.
func (c *Committer) Commit(ctx context.Context, batch *Batch) error {
	intents, err := batch.take()
	if err != nil {
		return err
	}

	if len(intents) == 0 {
		c.logger.Debug().Msg("there are no operations to complete")
		return nil
	}

	result, err := c.store.BulkWrite(ctx, intents)
	if err != nil {
		return err
	}

	c.logger.Info().
		Int("intents", len(intents)).
		Int64("matched", result.Matched).
		Int64("modified", result.Modified).
		Int64("upserted", result.Upserted).
		Msg("batch committed")
	return nil
}
