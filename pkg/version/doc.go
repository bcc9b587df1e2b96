// Package version parses and compares bundle and schema versions.
//
// Versions follow the manifest form major.minor.micro.qualifier, where
// every component after the major number is optional:
//
//	v := version.MustParseVersion("2.5")             // 2.5.0
//	r, _ := version.ParseRange("[2.5,4)")            // 2.5.0 <= v < 4.0.0
//	r.Includes(version.MustParseVersion("3.1"))      // true
//
// Ranges are used to decide whether a bundle was built against a compatible
// host API, and versions order the schema files of a namespace so the newest
// one becomes the default.
package version
