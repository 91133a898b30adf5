// Package pypi provides an HTTP client for the Python Package Index JSON API.
//
// # Usage
//
//	client := pypi.NewClient(backend, 24*time.Hour, "")  // "" = pypi.org
//
//	pkg, err := client.FetchPackage(ctx, "DecoratorTools", false)  // false = use cache
//	if err != nil {
//	    return err
//	}
//	fmt.Println(pkg.Name, pkg.Version, pkg.Versions)
//
// The index URL is configurable. distmeta's own server exposes the same
// /pypi/{name}/json shape, so requirement checks can run against a private
// index of published descriptors.
//
// # PackageInfo
//
// [Client.FetchPackage] returns a [PackageInfo] containing:
//
//   - Name, Version: Package identity and latest release
//   - Versions: Every non-yanked release, ordered by PEP 440
//   - Dependencies: Direct runtime dependencies (extras/dev filtered out)
//   - Summary, License, Author: Package metadata
//   - ProjectURLs, HomePage: Links
//
// # Caching
//
// Responses are cached per index URL. Pass refresh=true to
// [Client.FetchPackage] to bypass the cache.
package pypi
