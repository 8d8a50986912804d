// Package catalog holds the fixed tour content: tours, cluster components,
// manifest field mappings and quiz questions. The embedded document is
// validated once at load and the resulting tables are never modified
package catalog
