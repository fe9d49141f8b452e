package catalog

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetgate/assetgate/internal/das"
	"github.com/assetgate/assetgate/internal/mcperrors"
	"github.com/assetgate/assetgate/internal/registry"
)

// fakeQuerier records the last call made against it.
type fakeQuerier struct {
	lastMethod string
	lastPage   das.Page
	fail       error
}

func (f *fakeQuerier) reply(method string, page das.Page) (json.RawMessage, error) {
	f.lastMethod = method
	f.lastPage = page
	if f.fail != nil {
		return nil, f.fail
	}
	return json.RawMessage(`{"ok":true}`), nil
}

func (f *fakeQuerier) GetAsset(_ context.Context, _ string) (json.RawMessage, error) {
	return f.reply("getAsset", das.Page{})
}

func (f *fakeQuerier) GetAssetBatch(_ context.Context, _ []string) (json.RawMessage, error) {
	return f.reply("getAssetBatch", das.Page{})
}

func (f *fakeQuerier) GetAssetProof(_ context.Context, _ string) (json.RawMessage, error) {
	return f.reply("getAssetProof", das.Page{})
}

func (f *fakeQuerier) GetSignaturesForAsset(_ context.Context, _ string, page das.Page) (json.RawMessage, error) {
	return f.reply("getSignaturesForAsset", page)
}

func (f *fakeQuerier) GetAssetsByAuthority(_ context.Context, _ string, page das.Page) (json.RawMessage, error) {
	return f.reply("getAssetsByAuthority", page)
}

func (f *fakeQuerier) GetAssetsByCreator(_ context.Context, _ string, _ bool, page das.Page) (json.RawMessage, error) {
	return f.reply("getAssetsByCreator", page)
}

func (f *fakeQuerier) GetAssetsByGroup(_ context.Context, _, _ string, page das.Page) (json.RawMessage, error) {
	return f.reply("getAssetsByGroup", page)
}

func (f *fakeQuerier) GetAssetsByOwner(_ context.Context, _ string, page das.Page) (json.RawMessage, error) {
	return f.reply("getAssetsByOwner", page)
}

type fakeFetcher struct {
	lastURL string
	text    string
	fail    error
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.lastURL = url
	return f.text, f.fail
}

func newCatalogRegistry(t *testing.T, q das.Querier, f DocumentFetcher) *registry.Registry {
	t.Helper()
	reg := registry.New(nil)
	require.NoError(t, Register(reg, q, f))
	return reg
}

func TestRegister_InstallsFullCatalogWithoutConflicts(t *testing.T) {
	reg := newCatalogRegistry(t, &fakeQuerier{}, &fakeFetcher{})

	assert.Len(t, reg.Tools(), 8)
	assert.Len(t, reg.Resources(), 2)
	assert.Len(t, reg.Prompts(), 2)
}

func TestRegister_Twice_FailsWithDuplicateName(t *testing.T) {
	reg := newCatalogRegistry(t, &fakeQuerier{}, &fakeFetcher{})

	err := Register(reg, &fakeQuerier{}, &fakeFetcher{})
	require.Error(t, err)
	assert.Equal(t, mcperrors.CodeDuplicateName, mcperrors.CodeOf(err))
}

func TestTools_DispatchRoutesToMatchingQuery(t *testing.T) {
	tests := []struct {
		tool       string
		params     string
		wantMethod string
		wantPage   das.Page
	}{
		{"getAsset", `{"publicKey":"k"}`, "getAsset", das.Page{}},
		{"getAssetBatch", `{"publicKeys":["a","b"]}`, "getAssetBatch", das.Page{}},
		{"getAssetProof", `{"publicKey":"k"}`, "getAssetProof", das.Page{}},
		{"getSignaturesForAsset", `{"publicKey":"k","page":2,"limit":10}`, "getSignaturesForAsset", das.Page{Page: 2, Limit: 10}},
		{"getAssetsByAuthority", `{"authorityAddress":"k"}`, "getAssetsByAuthority", das.Page{}},
		{"getAssetsByCreator", `{"creatorAddress":"k","onlyVerified":true}`, "getAssetsByCreator", das.Page{}},
		{"getAssetsByGroup", `{"groupKey":"collection","groupValue":"k"}`, "getAssetsByGroup", das.Page{}},
		{"getAssetsByOwner", `{"ownerAddress":"k","limit":5}`, "getAssetsByOwner", das.Page{Limit: 5}},
	}
	for _, tc := range tests {
		t.Run(tc.tool, func(t *testing.T) {
			querier := &fakeQuerier{}
			reg := newCatalogRegistry(t, querier, &fakeFetcher{})

			result := reg.DispatchTool(context.Background(), tc.tool, json.RawMessage(tc.params))
			require.True(t, result.OK, "dispatch failed: %s", result.Message)
			assert.Equal(t, tc.wantMethod, querier.lastMethod)
			assert.Equal(t, tc.wantPage, querier.lastPage)
		})
	}
}

func TestTools_QuerierFailure_BecomesBackendFailureResult(t *testing.T) {
	querier := &fakeQuerier{fail: errors.New("node unreachable")}
	reg := newCatalogRegistry(t, querier, &fakeFetcher{})

	result := reg.DispatchTool(context.Background(), "getAsset", json.RawMessage(`{"publicKey":"k"}`))
	require.False(t, result.OK)
	assert.Equal(t, mcperrors.CodeBackend, result.Code)
	assert.Contains(t, result.Message, "node unreachable")
}

func TestTools_MissingRequiredArg_FailsValidation(t *testing.T) {
	querier := &fakeQuerier{}
	reg := newCatalogRegistry(t, querier, &fakeFetcher{})

	result := reg.DispatchTool(context.Background(), "getAsset", json.RawMessage(`{}`))
	require.False(t, result.OK)
	assert.Equal(t, mcperrors.CodeValidation, result.Code)
	assert.Empty(t, querier.lastMethod, "the querier must not be touched on invalid input")
}

func TestResources_FetchTheirConfiguredURLs(t *testing.T) {
	fetcher := &fakeFetcher{text: "docs body"}
	reg := newCatalogRegistry(t, &fakeQuerier{}, fetcher)

	result := reg.ResolveResource(context.Background(), "das://docs/overview")
	require.True(t, result.OK)
	content, ok := result.Payload.(registry.ResourceContent)
	require.True(t, ok)
	assert.Equal(t, "docs body", content.Text)
	assert.Equal(t, overviewURL, fetcher.lastURL)

	result = reg.ResolveResource(context.Background(), "das://docs/methods")
	require.True(t, result.OK)
	assert.Equal(t, methodsURL, fetcher.lastURL)
}

func TestResources_FetchFailure_SurfacesAsErrorContent(t *testing.T) {
	fetcher := &fakeFetcher{fail: errors.New("503 from docs host")}
	reg := newCatalogRegistry(t, &fakeQuerier{}, fetcher)

	result := reg.ResolveResource(context.Background(), "das://docs/overview")
	require.True(t, result.OK)
	content, ok := result.Payload.(registry.ResourceContent)
	require.True(t, ok)
	assert.Contains(t, content.Text, "503 from docs host")
}

func TestPrompts_RenderDeterministicOrderedMessages(t *testing.T) {
	reg := newCatalogRegistry(t, &fakeQuerier{}, &fakeFetcher{})

	first := reg.RenderPrompt("asset-lookup", json.RawMessage(`{"publicKey":"SomeKey"}`))
	require.True(t, first.OK)
	messages, ok := first.Payload.([]registry.PromptMessage)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Contains(t, messages[0].Text, "SomeKey")
	assert.Contains(t, messages[0].Text, "getAsset")

	second := reg.RenderPrompt("asset-lookup", json.RawMessage(`{"publicKey":"SomeKey"}`))
	assert.Equal(t, first.Payload, second.Payload, "rendering is pure")
}

func TestPrompts_WalletPortfolio_RequiresOwnerAddress(t *testing.T) {
	reg := newCatalogRegistry(t, &fakeQuerier{}, &fakeFetcher{})

	result := reg.RenderPrompt("wallet-portfolio", json.RawMessage(`{}`))
	require.False(t, result.OK)
	assert.Equal(t, mcperrors.CodeValidation, result.Code)
}
