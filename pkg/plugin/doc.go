// Package plugin activates bundles into namespace plugins.
//
// Activation reads two property files from the bundle:
//
//	META-INF/spring.handlers   namespace URI -> handler factory name
//	META-INF/spring.schemas    system id     -> schema path in the bundle
//
// The resulting Plugin answers handler lookups by namespace URI and entity
// lookups by public and system id. Compatibility returns the registry
// condition that keeps bundles built against an incompatible handler API
// from being activated.
package plugin
