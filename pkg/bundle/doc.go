// Package bundle models installed modules and their lifecycle.
//
// A Bundle is a directory or jar/zip archive with a META-INF/MANIFEST.MF.
// The manifest supplies the symbolic name, version, activation policy and
// package imports:
//
//	Manifest-Version: 1.0
//	Bundle-SymbolicName: org.example.tx;singleton:=true
//	Bundle-Version: 2.5.6
//	Bundle-ActivationPolicy: lazy
//	Import-Package: nsplugins.xml;version="[1.0,2.0)"
//
// Bundles are identity-comparable handles: the same *Bundle pointer is the
// key used by the provider registry, and a reloaded bundle is a new key.
//
// LoadDir reads every bundle under a root directory in parallel. A Watcher
// then reports bundles that are added, replaced or removed under that root
// as Installed and Uninstalled events.
package bundle
