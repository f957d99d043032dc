package static

import _ "embed"

// DispatchMd contains the embedded integration guide for dispatch and
// scheduling systems that consume the blocked-resource view.
//
//go:embed dispatch.md
var DispatchMd string
