// Package types defines the record kinds, the storage Medium interface,
// trash entries, query criteria and the standard error types for the shelf
// content store.
//
// Four content kinds (news, activities, achievements, FAQ) each live in a
// named collection stored as a JSON array. A record removed from its
// collection is kept in the trash ledger, tagged with its origin kind, until
// it is restored or purged.
package types
