// Package contentapi provides the content resolution and ordering engine
// behind a read-only JSON content API.
//
// Clients ask for content by slug, by tag or by content kind. The Service
// resolves tag ambiguity, filters by publication lifecycle, orders results
// (curated, alphabetical or by date), paginates them and computes the
// RFC-5988 Link relations shared by every collection endpoint.
//
// Persistence, authorization, rendering, asset lookup and search are
// collaborators expressed as interfaces (Store, Authorizer, Formatter,
// AssetLookup, SearchClient). Implementations live in subpackages: repo/memory,
// repo/postgres and repo/mongo for the Store, auth for JWT based authorization,
// render for markup, assets/s3 for asset URLs and search for the unified
// search backend.
//
// # Request scope
//
// Role scoping is explicit. Every query carries a Scope value naming the role
// tag the caller is restricted to; nothing is kept on the service between
// requests except the lazily built TagCatalog.
package contentapi
