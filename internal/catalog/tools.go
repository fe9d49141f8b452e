package catalog

import (
	"context"

	"github.com/assetgate/assetgate/internal/das"
	"github.com/assetgate/assetgate/internal/registry"
	"github.com/assetgate/assetgate/internal/schema"
)

// pagingFields are the optional pagination fields shared by the list
// queries.
var pagingFields = []schema.Field{
	{Name: "page", Type: schema.TypeInteger, Description: "Page number, starting at 1"},
	{Name: "limit", Type: schema.TypeInteger, Description: "Maximum results per page"},
}

func withPaging(fields ...schema.Field) schema.Shape {
	return schema.Shape{Fields: append(fields, pagingFields...)}
}

// Tools returns the DAS tool definitions. Every handler is a thin
// passthrough: validation happened in the registry, query failures are
// the querier's to report.
func Tools(q das.Querier) []registry.ToolDefinition {
	return []registry.ToolDefinition{
		{
			Name:        "getAsset",
			Description: "Fetch a single digital asset record by its public key",
			Input: schema.Shape{Fields: []schema.Field{
				{Name: "publicKey", Type: schema.TypeString, Required: true, Description: "Base58 asset ID"},
			}},
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return q.GetAsset(ctx, stringArg(args, "publicKey"))
			},
		},
		{
			Name:        "getAssetBatch",
			Description: "Fetch several digital asset records in one call",
			Input: schema.Shape{Fields: []schema.Field{
				{Name: "publicKeys", Type: schema.TypeString, Array: true, Required: true, Description: "Base58 asset IDs"},
			}},
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return q.GetAssetBatch(ctx, stringSliceArg(args, "publicKeys"))
			},
		},
		{
			Name:        "getAssetProof",
			Description: "Fetch the merkle proof for a compressed asset",
			Input: schema.Shape{Fields: []schema.Field{
				{Name: "publicKey", Type: schema.TypeString, Required: true, Description: "Base58 asset ID"},
			}},
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return q.GetAssetProof(ctx, stringArg(args, "publicKey"))
			},
		},
		{
			Name:        "getSignaturesForAsset",
			Description: "List transaction signatures involving a compressed asset",
			Input: withPaging(
				schema.Field{Name: "publicKey", Type: schema.TypeString, Required: true, Description: "Base58 asset ID"},
			),
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return q.GetSignaturesForAsset(ctx, stringArg(args, "publicKey"), pageArg(args))
			},
		},
		{
			Name:        "getAssetsByAuthority",
			Description: "List assets controlled by an update authority",
			Input: withPaging(
				schema.Field{Name: "authorityAddress", Type: schema.TypeString, Required: true, Description: "Base58 authority address"},
			),
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return q.GetAssetsByAuthority(ctx, stringArg(args, "authorityAddress"), pageArg(args))
			},
		},
		{
			Name:        "getAssetsByCreator",
			Description: "List assets attributed to a creator address",
			Input: withPaging(
				schema.Field{Name: "creatorAddress", Type: schema.TypeString, Required: true, Description: "Base58 creator address"},
				schema.Field{Name: "onlyVerified", Type: schema.TypeBoolean, Description: "Only include assets with a verified creator signature"},
			),
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return q.GetAssetsByCreator(ctx, stringArg(args, "creatorAddress"), boolArg(args, "onlyVerified"), pageArg(args))
			},
		},
		{
			Name:        "getAssetsByGroup",
			Description: "List assets in a group, e.g. a collection",
			Input: withPaging(
				schema.Field{Name: "groupKey", Type: schema.TypeString, Required: true, Description: "Group key, e.g. \"collection\""},
				schema.Field{Name: "groupValue", Type: schema.TypeString, Required: true, Description: "Base58 group value address"},
			),
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return q.GetAssetsByGroup(ctx, stringArg(args, "groupKey"), stringArg(args, "groupValue"), pageArg(args))
			},
		},
		{
			Name:        "getAssetsByOwner",
			Description: "List assets held by a wallet",
			Input: withPaging(
				schema.Field{Name: "ownerAddress", Type: schema.TypeString, Required: true, Description: "Base58 wallet address"},
			),
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return q.GetAssetsByOwner(ctx, stringArg(args, "ownerAddress"), pageArg(args))
			},
		},
	}
}
