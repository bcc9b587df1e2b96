// Package catalog keeps the XML catalog contributed by installed bundles:
// system entries for schema locations and public entries for namespace
// URIs. Entries are added and removed per bundle.
package catalog
