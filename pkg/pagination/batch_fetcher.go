package pagination

import (
	"context"
	"maps"
	"time"

	"github.com/Sternrassler/fpds-client/pkg/records"
	"github.com/Sternrassler/fpds-client/pkg/search"
	"golang.org/x/sync/errgroup"
)

// MetadataContractID is the metadata key SearchContracts stamps with the
// originating contract identifier.
const MetadataContractID = "contract_id"

// SearchOptions are shared by every query of a SearchContracts batch.
type SearchOptions struct {
	// DateRange is an optional SIGNED_DATE filter, e.g. "[2022/01/01, 2024/12/31]".
	DateRange string

	// Params are extra filters added to every query. PIID is overwritten.
	Params search.Params

	// Metadata, when non-nil, is copied onto every record together with
	// the contract id of the query that produced it.
	Metadata records.Metadata
}

// BatchResult is the outcome of SearchContracts.
type BatchResult struct {
	// Records of all successful queries, grouped by query in input order.
	Records []records.ContractRecord

	// Failed maps each failed contract id to its error.
	Failed map[string]error
}

// SearchContracts runs one full Fetch per contract id, all concurrently.
// Queries share this fetcher's gate. A failed query contributes no records
// and is reported in Failed; it never affects its siblings, and
// SearchContracts itself never fails.
func (f *Fetcher) SearchContracts(ctx context.Context, contractIDs []string, opts SearchOptions) *BatchResult {
	start := time.Now()
	results := make([][]records.ContractRecord, len(contractIDs))
	errs := make([]error, len(contractIDs))

	var g errgroup.Group
	for i, id := range contractIDs {
		g.Go(func() error {
			params := opts.Params.Clone()
			params.Set(search.PIID, id)
			if opts.DateRange != "" {
				params.Set(search.SignedDate, opts.DateRange)
			}

			res, err := f.Fetch(ctx, params)
			if err != nil {
				errs[i] = err
				return nil
			}

			recs := res.Records
			if opts.Metadata != nil {
				meta := maps.Clone(opts.Metadata)
				meta[MetadataContractID] = id
				recs = records.WithMetadata(recs, meta)
			}
			results[i] = recs
			return nil
		})
	}
	_ = g.Wait()

	batch := &BatchResult{Failed: map[string]error{}}
	for i, id := range contractIDs {
		if errs[i] != nil {
			queryFailuresTotal.Inc()
			f.logger.Warn().
				Err(errs[i]).
				Str("contract_id", id).
				Msg("Query failed, continuing with remaining contracts")
			batch.Failed[id] = errs[i]
			continue
		}
		batch.Records = append(batch.Records, results[i]...)
	}

	f.logger.Info().
		Int("queries", len(contractIDs)).
		Int("failed", len(batch.Failed)).
		Int("records", len(batch.Records)).
		Dur("duration", time.Since(start)).
		Msg("Contract search complete")

	if batch.Records == nil {
		batch.Records = []records.ContractRecord{}
	}
	return batch
}
