// Package settings implements typed, defaultable settings persisted as a flat
// JSON object.
//
// A Setting is one named value with a default. Loading never fails at the
// level of a single setting: a missing key, a value of the wrong JSON kind or
// an unknown enumeration name resets that setting to its default and is
// reported as UsedDefault, while the siblings load normally.
//
// An Aggregate groups settings into one document. File level operations
// (LoadFromFile, SaveToFile, FromJSONString) report a single boolean; a failed
// load leaves the previously loaded values in place.
//
// BatchSettings is the concrete document exchanged between the orchestrator
// and the worker through the settings file.
package settings
