package store

import (
	"context"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sobani/cardvault/pkg/catalogs"
	"github.com/sobani/cardvault/pkg/constants"
	"github.com/sobani/cardvault/pkg/errors"
	"github.com/sobani/cardvault/pkg/logging"
)

// Mongo is the production Store backed by a MongoDB collection with an Atlas
// Search index on the name fields.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
	logger zerolog.Logger
}

var _ Store = (*Mongo)(nil)

// NewMongo connects to the deployment, pings it, and returns a store over
// the given database and collection.
func NewMongo(ctx context.Context, uri, database, collection string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.WrapStore("connect", collection, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, constants.StoreConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, errors.WrapStore("ping", collection, err)
	}

	return &Mongo{
		client: client,
		coll:   client.Database(database).Collection(collection),
		logger: logging.Component("store"),
	}, nil
}

// Close disconnects from the deployment.
func (s *Mongo) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Snapshot loads the full collection. The set-number containment match needs
// an asymmetric substring test no index-backed query can express, so tasks
// match in-process against this copy.
func (s *Mongo) Snapshot(ctx context.Context) ([]*catalogs.Card, error) {
	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, errors.WrapStore("snapshot", s.coll.Name(), err)
	}

	var cards []*catalogs.Card
	if err := cur.All(ctx, &cards); err != nil {
		return nil, errors.WrapStore("snapshot", s.coll.Name(), err)
	}
	return cards, nil
}

// SearchByName runs the Atlas Search fuzzy text query against the name field
// for the locale and returns the top-ranked card.
func (s *Mongo) SearchByName(ctx context.Context, locale catalogs.Locale, query string) (*catalogs.Card, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$search", Value: bson.D{
			{Key: "index", Value: constants.NameSearchIndex},
			{Key: "text", Value: bson.D{
				{Key: "query", Value: query},
				{Key: "path", Value: "name." + string(locale)},
				{Key: "fuzzy", Value: bson.D{
					{Key: "maxEdits", Value: constants.NameSearchMaxEdits},
				}},
			}},
		}}},
		{{Key: "$limit", Value: 1}},
	}

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.WrapStore("search", s.coll.Name(), err)
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return nil, errors.WrapStore("search", s.coll.Name(), err)
		}
		return nil, errors.NewNotFoundError("card", query)
	}

	var card catalogs.Card
	if err := cur.Decode(&card); err != nil {
		return nil, errors.WrapStore("search", s.coll.Name(), err)
	}
	return &card, nil
}

// FindSentinel returns the generic token placeholder card.
func (s *Mongo) FindSentinel(ctx context.Context) (*catalogs.Card, error) {
	var card catalogs.Card
	err := s.coll.FindOne(ctx, bson.D{{Key: "konami_id", Value: catalogs.SentinelKonamiID}}).Decode(&card)
	if err == mongo.ErrNoDocuments {
		return nil, errors.NewNotFoundError("card", "sentinel")
	}
	if err != nil {
		return nil, errors.WrapStore("find_sentinel", s.coll.Name(), err)
	}
	return &card, nil
}

// BulkWrite applies the intents as one unordered bulk write. Individual
// intent failures are logged and do not abort the batch.
func (s *Mongo) BulkWrite(ctx context.Context, intents []Intent) (*BulkResult, error) {
	if len(intents) == 0 {
		return nil, errors.ErrEmptyBatch
	}

	models := make([]mongo.WriteModel, 0, len(intents))
	for _, intent := range intents {
		models = append(models, writeModel(intent))
	}

	res, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		bwe, ok := err.(mongo.BulkWriteException)
		if !ok {
			return nil, errors.WrapStore("bulk_write", s.coll.Name(), err)
		}
		// Unordered execution: unaffected intents still applied.
		for _, we := range bwe.WriteErrors {
			s.logger.Warn().
				Int("index", we.Index).
				Str("message", we.Message).
				Msg("bulk write intent failed")
		}
	}

	result := &BulkResult{}
	if res != nil {
		result.Matched = res.MatchedCount
		result.Modified = res.ModifiedCount
		result.Upserted = res.UpsertedCount
	}
	return result, nil
}

// EnsurePriceFields initializes card_prices on cards that lack the field.
func (s *Mongo) EnsurePriceFields(ctx context.Context) error {
	filter := bson.D{{Key: "card_prices", Value: bson.D{{Key: "$exists", Value: false}}}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "card_prices", Value: catalogs.NewCardPrices()}}}}

	_, err := s.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return errors.WrapStore("ensure_price_fields", s.coll.Name(), err)
	}
	return nil
}

// writeModel translates an intent into the driver's write model.
func writeModel(intent Intent) mongo.WriteModel {
	switch it := intent.(type) {
	case ReplaceEntry:
		path := "card_prices." + string(it.Market)
		return mongo.NewUpdateOneModel().
			SetFilter(bson.D{
				{Key: "_id", Value: it.DocID},
				{Key: path + ".id", Value: it.Entry.ID},
			}).
			SetUpdate(bson.D{{Key: "$set", Value: bson.D{
				{Key: path + ".$", Value: it.Entry},
			}}})

	case PatchEntryStatus:
		path := "card_prices." + string(it.Market)
		return mongo.NewUpdateOneModel().
			SetFilter(bson.D{
				{Key: "_id", Value: it.DocID},
				{Key: path + ".id", Value: it.EntryID},
			}).
			SetUpdate(bson.D{{Key: "$set", Value: bson.D{
				{Key: path + ".$.status", Value: it.Status},
				{Key: path + ".$.last_modified", Value: it.LastModified},
			}}})

	case AppendEntry:
		// The id guard keeps the append insert-if-absent; without it a
		// duplicate observation in one run would land twice.
		path := "card_prices." + string(it.Market)
		return mongo.NewUpdateOneModel().
			SetFilter(bson.D{
				{Key: "_id", Value: it.DocID},
				{Key: path + ".id", Value: bson.D{{Key: "$ne", Value: it.Entry.ID}}},
			}).
			SetUpdate(bson.D{{Key: "$push", Value: bson.D{
				{Key: path, Value: it.Entry},
			}}})

	case UpsertCard:
		card := it.Card

		var filter bson.D
		setOp := "$setOnInsert"
		if card.Identified() {
			filter = bson.D{{Key: "konami_id", Value: card.KonamiID}}
			setOp = "$set"
		} else {
			filter = bson.D{{Key: "name.en", Value: card.Name.EN}}
		}

		meta := bson.D{
			{Key: "name", Value: card.Name},
			{Key: "konami_id", Value: card.KonamiID},
			{Key: "password", Value: card.Password},
		}

		return mongo.NewUpdateOneModel().
			SetFilter(filter).
			SetUpdate(bson.D{
				{Key: setOp, Value: meta},
				{Key: "$addToSet", Value: bson.D{
					{Key: "sets.ja", Value: bson.D{{Key: "$each", Value: setsOrEmpty(card.Sets.JA)}}},
					{Key: "sets.ae", Value: bson.D{{Key: "$each", Value: setsOrEmpty(card.Sets.AE)}}},
				}},
			}).
			SetUpsert(true)
	}

	return nil
}

// setsOrEmpty keeps $each well-formed for nil locale lists.
func setsOrEmpty(sets []catalogs.SetRef) []catalogs.SetRef {
	if sets == nil {
		return []catalogs.SetRef{}
	}
	return sets
}
