// Package descriptor builds distribution descriptors from static manifests.
//
// A [Descriptor] is the metadata record of one distributable Python unit:
// identity (name, version), a one-line summary, a long description derived
// from the project's README, install requirements, authorship, license, and
// the packages it ships. It is the static replacement for calling setup()
// from a setup.py script.
//
// # Manifests
//
// Descriptors are built from one of three manifest formats, each handled by
// a [Loader]:
//
//   - setup.toml: flat table of setup() keywords ([SetupTOML])
//   - setup.yaml / setup.yml: the same keys in YAML ([SetupYAML])
//   - pyproject.toml: PEP 621 [project] table plus [tool.setuptools] ([Pyproject])
//
// [DetectLoader] picks the loader from the file name, mirroring how the
// rest of the toolchain detects manifests.
//
// # Building
//
//	d, err := descriptor.Build(ctx, "setup.toml", descriptor.BuildOptions{})
//
// [Build] loads the manifest, extracts the long description from the README
// (see package readme), discovers packages when the manifest asks for it,
// and validates the result. README open failures abort the build.
//
// # Export
//
// [WriteJSON], [WriteYAML] and [WritePKGInfo] serialize a descriptor.
// [ParsePKGInfo] reads the PKG-INFO form back.
package descriptor
