// Package registry implements a concurrent store of lazily activated
// providers.
//
// A Registry keeps two stores keyed by an identity-comparable handle:
// active providers, which are ready for queries, and lazy keys, which are
// turned into providers by an Activator the first time a query reaches
// them. A lazy key may be gated by a compatibility Condition, checked once;
// a key that fails it is discarded for good.
//
// Queries go through the generic Apply function, which asks active
// providers first and lazy ones after, returning the first result:
//
//	reg := registry.New(activate, registry.WithName[*bundle.Bundle]("namespaces"))
//	_ = reg.Add(ctx, b, true, false)
//
//	h, ok, err := registry.Apply(ctx, reg,
//	    func(ctx context.Context, p *plugin.Plugin) (handler.Handler, bool, error) {
//	        return p.ResolveHandler(uri)
//	    })
//
// # Concurrency
//
// Apply takes no registry-wide lock. Activation of a key happens at most
// once per registration no matter how many calls reach it together; the
// winner publishes the provider to the active store with an insert-if-absent
// and records the promotion. The last Apply call to finish removes the
// promoted keys from the lazy store. Remove and Clear are authoritative:
// once they return, no Apply call started afterwards can reach the removed
// keys.
//
// # Activation failures
//
// An eager Add returns the activation error. A lazy activation failure is
// logged and counted; the key is skipped for the current query, discarded
// from the lazy store, and the query continues with the next candidate.
// Adding the key again retries activation.
//
// # Metrics
//
// The package exports Prometheus counters prefixed nsplugins_registry_,
// labelled by registry name.
package registry
