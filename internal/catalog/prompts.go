package catalog

import (
	"fmt"

	"github.com/assetgate/assetgate/internal/registry"
	"github.com/assetgate/assetgate/internal/schema"
)

// Prompts returns the prompt templates. Render functions are pure: given
// validated args they always produce the same ordered message sequence.
func Prompts() []registry.PromptDefinition {
	return []registry.PromptDefinition{
		{
			Name:        "asset-lookup",
			Description: "Walk through inspecting a single digital asset",
			Args: &schema.Shape{Fields: []schema.Field{
				{Name: "publicKey", Type: schema.TypeString, Required: true, Description: "Base58 asset ID to inspect"},
			}},
			Render: func(args map[string]any) ([]registry.PromptMessage, error) {
				key := stringArg(args, "publicKey")
				return []registry.PromptMessage{
					{
						Role: "user",
						Text: fmt.Sprintf("Look up the digital asset %s with the getAsset tool.", key),
					},
					{
						Role: "user",
						Text: "Summarize its name, ownership, royalty configuration, and whether it is compressed. " +
							"If it is compressed, fetch its merkle proof with getAssetProof as well.",
					},
				}, nil
			},
		},
		{
			Name:        "wallet-portfolio",
			Description: "Survey every asset held by a wallet",
			Args: &schema.Shape{Fields: []schema.Field{
				{Name: "ownerAddress", Type: schema.TypeString, Required: true, Description: "Base58 wallet address"},
			}},
			Render: func(args map[string]any) ([]registry.PromptMessage, error) {
				owner := stringArg(args, "ownerAddress")
				return []registry.PromptMessage{
					{
						Role: "user",
						Text: fmt.Sprintf("List the assets held by wallet %s using the getAssetsByOwner tool, paging through all results.", owner),
					},
					{
						Role: "user",
						Text: "Group the holdings by collection and point out anything with unusual royalty or delegation settings.",
					},
				}, nil
			},
		},
	}
}
