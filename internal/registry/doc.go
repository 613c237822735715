// Package registry provides the mapping from project file extensions to the
// loaders able to evaluate them.
//
// The Registry stores two associations: file extension to language name
// (e.g. ".csproj" to "C#") and language name to the ProjectFileLoader that
// asks the evaluation engine for that language's project description.
// Callers may associate new extensions before a load starts. The registry is
// not synchronized: mutating it while a load is in flight is a caller error
// with undefined results.
//
// During loader construction the registry is validated to ensure every
// associated language has a loader, preventing a class of "known extension,
// unknown language" failures at load time.
package registry
