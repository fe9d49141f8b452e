// Package das talks to a Digital Asset Standard (DAS) capable Solana RPC
// node. The gateway's tools depend only on the Querier interface; the
// concrete Client is an adapter over the node's JSON-RPC surface.
package das

import (
	"context"
	"encoding/json"
)

// Page bundles the pagination arguments shared by the list queries.
// Zero values mean "let the node default".
type Page struct {
	Page  int
	Limit int
}

// Querier enumerates exactly the read-only DAS operations the gateway
// dispatches to. Results are opaque JSON; the gateway never interprets
// asset payloads, it only relays them.
type Querier interface {
	// GetAsset fetches a single asset record by its ID.
	GetAsset(ctx context.Context, id string) (json.RawMessage, error)

	// GetAssetBatch fetches several asset records in one call.
	GetAssetBatch(ctx context.Context, ids []string) (json.RawMessage, error)

	// GetAssetProof fetches the merkle proof for a compressed asset.
	GetAssetProof(ctx context.Context, id string) (json.RawMessage, error)

	// GetSignaturesForAsset fetches transaction signatures touching an asset.
	GetSignaturesForAsset(ctx context.Context, id string, page Page) (json.RawMessage, error)

	// GetAssetsByAuthority lists assets controlled by an update authority.
	GetAssetsByAuthority(ctx context.Context, authority string, page Page) (json.RawMessage, error)

	// GetAssetsByCreator lists assets attributed to a creator address.
	GetAssetsByCreator(ctx context.Context, creator string, onlyVerified bool, page Page) (json.RawMessage, error)

	// GetAssetsByGroup lists assets in a group, e.g. a collection.
	GetAssetsByGroup(ctx context.Context, groupKey, groupValue string, page Page) (json.RawMessage, error)

	// GetAssetsByOwner lists assets held by a wallet.
	GetAssetsByOwner(ctx context.Context, owner string, page Page) (json.RawMessage, error)
}
