// Package models defines domain entities and persistence interfaces for the cinelist movie catalog.
//
// The package contains three categories of types:
//
// 1. Wire entities shared by the client and the mock REST backend
//   - [CustomList] : A named, user-owned collection of movies
//   - [CustomListItem] : One movie entry inside a list, optionally carrying enriched [Movie] details
//   - [User] : Account identity that owns lists
//
// 2. Request shapes
//   - [CreateListRequest] : Fields supplied when creating a list (the server assigns the id)
//   - [ListPatch] : Partial update where nil fields are left untouched
//
// 3. Query descriptors
//   - [Filter] and [SortKey] : Ephemeral parameters for the catalog filter/sort engine; never persisted
//
// The Repository[T] interface defines standard CRUD operations for database access.
package models
