// Package handler provides XML namespace handlers and the global factory
// registry that creates them.
//
// Bundles name their handlers in META-INF/spring.handlers, mapping a
// namespace URI to a factory name. Activating a bundle instantiates every
// named handler; a name that no factory was registered for fails the
// activation.
//
// Factories register themselves from init functions:
//
//	func init() {
//	    handler.MustRegister("tx", newTxHandler)
//	}
//
// The "generic" handler is always available. It decodes an element's name
// and attributes.
package handler
