// Package cli implements the nsplugins command-line interface.
//
// # Overview
//
// The nsplugins CLI inspects a directory of namespace bundles offline: it
// loads every bundle under the bundle root, registers those contributing
// XML namespace handlers or schemas, and reports or resolves against the
// resulting state. It also moves bundles between the bundle root and OCI
// registries.
//
// # Commands
//
// namespaces - List registered namespace definitions:
//
//	nsplugins namespaces --bundles DIR [--output FILE] [--format yaml|json|table]
//
// bundles - List registered bundles and their activation state:
//
//	nsplugins bundles --bundles DIR
//
// catalog - Print the XML catalog entries published by the bundles:
//
//	nsplugins catalog --bundles DIR
//
// resolve - Resolve a namespace handler or a schema entity:
//
//	nsplugins resolve handler --uri http://www.example.org/schema/tx
//	nsplugins resolve entity --system-id http://www.example.org/schema/tx/tx.xsd [--raw]
//
// pull - Install a bundle artifact from an OCI registry:
//
//	nsplugins pull oci://ghcr.io/example/bundles/tx:1.0.0 --bundles DIR
//
// push - Publish a bundle directory or archive to an OCI registry:
//
//	nsplugins push ./tx oci://ghcr.io/example/bundles/tx:1.0.0
//
// # Global Flags
//
//	--log-level    Logging verbosity: debug, info, warn, error (default: info)
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Output
//
// Commands producing documents accept --output (-o) and --format (-t).
// The output may be a file path or a ConfigMap URI (cm://namespace/name);
// the default is stdout in YAML.
//
// # Environment Variables
//
//	LOG_LEVEL             Logging verbosity
//	NSPLUGINS_BUNDLE_ROOT Default for --bundles
//	KUBECONFIG            Kubeconfig used for cm:// outputs
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/nsplugins/nsplugins/pkg/cli.version=1.0.0'"
package cli
