// Package options implements the command-line vocabulary shared by the
// orchestrator and the worker.
//
// Options are written as "--name value" pairs. Switch names are matched
// case-insensitively; a value is the single token following its switch unless
// that token is itself a switch. Registry.Parse always returns an entry for
// every registered option, and Registry.InvalidOptions lists every switch
// outside the vocabulary so a caller can reject all offenders at once.
//
// BuildArgs and ConstructCommandLineArguments go the other way, from name and
// value pairs to argument tokens. A nil pair list is a caller bug and is
// rejected with ErrNilArguments; an empty list is a valid, empty command line.
package options
