// Package services implements the clients the list cache talks to.
//
// # Remote Store
//
// [RESTStore] issues create/read/update/delete requests for custom lists against the
// persistence service. It holds no cache and no business logic. Every transport or
// non-2xx failure is wrapped with [shared.ErrRemote]; a 404 additionally wraps
// [shared.ErrNotFound].
//
// # Metadata Lookup
//
// [TMDBService] resolves a movie id to a [models.Movie] through the TMDB v3 API. A v4 read
// access token is sent as a bearer token through an oauth2 static token source; otherwise the
// v3 api_key query parameter is used. Requests are paced client-side with a token bucket.
//
// # Session
//
// [FileSession] persists the signed-in user as JSON on disk. [StaticSession] is a fixed
// identity for tests and one-off commands.
package services
