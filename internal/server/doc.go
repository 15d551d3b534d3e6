// Package server implements the mock REST backend the list cache talks to.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] uses
// [http.ServeMux] patterns, so handlers read path wildcards with [http.Request.PathValue].
//
// [Middleware] is applied with the first registered as the outermost wrapper.
// [RequestLogger] and [Recoverer] are installed by [NewBackend].
//
// # Resources
//
//	GET    /custom-lists?createdBy=<id>   lists owned by a user
//	GET    /custom-lists?isPublic=true    public lists
//	POST   /custom-lists                  create; the server assigns the id
//	GET    /custom-lists/{id}             one list with items
//	PATCH  /custom-lists/{id}             partial update; items replaced wholesale
//	DELETE /custom-lists/{id}             soft delete
//	GET    /users?email=<email>           user lookup
//	POST   /users                         registration
//
// Failures are reported as {"error": "..."} with 400, 404, 409 or 500.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// so one type can own every route of its resource.
package server
