package atomic

import jsoniter "github.com/json-iterator/go"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// nocmp makes a struct non-comparable so cells cannot be compared with ==.
type nocmp [0]func()
