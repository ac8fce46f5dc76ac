package vmctx

import (
	"fmt"

	"github.com/kubkon/wasmnative/backend"
	"github.com/kubkon/wasmnative/moduleinfo"
)

// The label spellings below are the exact strings spec.md §4.3/§8 names
// in its worked scenarios (S1-S3); they are part of the VMContext
// accessor's observable contract, not incidental naming, so they are
// reproduced verbatim rather than restyled.

func memoryDefinitionLabel(i moduleinfo.Index) backend.Label {
	return backend.Label(fmt.Sprintf("memory %d definition", i))
}

func memoryBasePtrLabel(i moduleinfo.Index) backend.Label {
	return backend.Label(fmt.Sprintf("memory base_ptr %d", i))
}

func tableDefinitionLabel(i moduleinfo.Index) backend.Label {
	return backend.Label(fmt.Sprintf("table %d definition", i))
}

func tableBasePtrLabel(i moduleinfo.Index) backend.Label {
	return backend.Label(fmt.Sprintf("table_base_ptr %d", i))
}

func tableBoundsLabel(i moduleinfo.Index) backend.Label {
	return backend.Label(fmt.Sprintf("table_bounds %d", i))
}

func sigIndexLabel(i int) backend.Label {
	return backend.Label(fmt.Sprintf("sigindex %d", i))
}

func globalPtrLabel(i moduleinfo.Index) backend.Label {
	return backend.Label(fmt.Sprintf("global_ptr %d", i))
}

func globalLabel(i moduleinfo.Index) backend.Label {
	return backend.Label(fmt.Sprintf("global %d", i))
}
