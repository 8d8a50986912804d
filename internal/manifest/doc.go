// Package manifest annotates Kubernetes manifests with the components that
// act on their fields
package manifest
