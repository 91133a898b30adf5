// Package integrations provides HTTP clients for package index APIs.
//
// # Overview
//
// distmeta talks to package indexes for one purpose: checking that the
// requirements declared by a descriptor can be met by released versions.
// The only index flavour spoken is the PyPI JSON API, implemented in [pypi];
// distmeta's own server speaks the same API, so the client can target either.
//
// # Shared Infrastructure
//
// [Client] provides the plumbing every index client uses:
//
//   - Response caching through any [cache.Cache] backend (file, Redis, none)
//   - Retry with exponential backoff for network errors and 5xx responses
//   - [ErrNotFound] / [ErrNetwork] sentinels for callers to branch on
//   - HTTP events reported through [observability.HTTP]
//   - [Client.PostJSON] for publishing, with [StatusError] exposing the
//     body of a rejected request
//
// [pypi]: github.com/matzehuels/distmeta/pkg/integrations/pypi
// [cache.Cache]: github.com/matzehuels/distmeta/pkg/cache.Cache
// [observability.HTTP]: github.com/matzehuels/distmeta/pkg/observability.HTTP
package integrations
