// Package schema holds the naming conventions of XML schema files
// published by bundles: target namespace extraction, version suffixes and
// the choice of a namespace's default schema.
package schema
