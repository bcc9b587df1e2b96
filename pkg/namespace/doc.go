// Package namespace resolves XML namespace handlers and schemas across the
// installed bundles.
//
// Plugins is the resolver. Bundles are added as they are installed and
// removed as they go away, from any goroutine, while lookups run
// concurrently:
//
//	plugins := namespace.NewPlugins()
//	_ = plugins.AddPlugin(ctx, b, b.IsLazy(), plugin.RequiresCompatibilityCheck(b))
//
//	h, err := plugins.ResolveHandler(ctx, "http://www.example.org/schema/tx")
//	src, err := plugins.ResolveEntity(ctx, "", "http://www.example.org/schema/tx/tx.xsd")
//
// Lookups ask already activated plugins first, then activate lazy bundles
// one by one until one of them answers. A lazy bundle that declares a
// handler API range excluding the host version is discarded without being
// activated.
//
// Resolve calls run through an Executor. The default runs them directly;
// PrivilegedExecutor runs them as the registry owner on behalf of the
// caller.
//
// Alongside the resolver, Definitions describes every published namespace
// (prefix, display name, schema locations) and feeds the XML catalog.
package namespace
