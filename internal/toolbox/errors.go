package toolbox

import "errors"

// errAbsentFilePath signals an operation was asked to act on a file the
// editor reports does not exist (spec.md §4.C edge cases).
var errAbsentFilePath = errors.New("toolbox: file path does not exist")
