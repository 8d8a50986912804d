// Package util provides small generic data structures shared across kubetour
//
// This package includes the set type used for step active tags and the path
// tree that indexes manifest field mappings
package util
