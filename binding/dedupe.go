package binding

import "sort"

// Dedupe removes redundant sampler-only bindings that collide with an
// already-declared binding at the same (set, binding) coordinates and returns
// a stable, binding-ordered list.
//
// A texture-and-sampler pair may be reflected as two separate bindings sharing
// the same coordinates: one combined image-sampler binding plus a redundant
// standalone sampler declaration. Only one binding may occupy a slot, so the
// sampler is dropped in favor of whatever already holds the coordinates.
//
// Dedupe is pure, deterministic, total, and idempotent: running it on its own
// output returns an equal list.
//
// Parameters:
//   - bindings: the resource bindings to deduplicate, in declaration order
//
// Returns:
//   - []ResourceBinding: the deduplicated list, stably sorted ascending by binding index
func Dedupe(bindings []ResourceBinding) []ResourceBinding {
	kept := make([]ResourceBinding, 0, len(bindings))
	samplers := make([]ResourceBinding, 0, len(bindings))

	for _, b := range bindings {
		if b.Type.Kind() == SemanticSampledImage {
			samplers = append(samplers, b)
		} else {
			kept = append(kept, b)
		}
	}

	for _, s := range samplers {
		if !slotOccupied(kept, s.Set, s.Binding) {
			kept = append(kept, s)
		}
	}

	SortByBinding(kept)
	return kept
}

// SortByBinding stably sorts resource bindings ascending by binding index,
// preserving the original order of equal indices. This guarantees a
// deterministic, reproducible layout-creation order independent of the
// reflection provider's iteration order.
//
// Parameters:
//   - bindings: the resource bindings to sort in place
func SortByBinding(bindings []ResourceBinding) {
	sort.SliceStable(bindings, func(i, j int) bool {
		return bindings[i].Binding < bindings[j].Binding
	})
}

// slotOccupied reports whether any binding in the list already holds the
// given (set, binding) coordinates.
func slotOccupied(bindings []ResourceBinding, set, bindingIndex uint32) bool {
	for _, b := range bindings {
		if b.Set == set && b.Binding == bindingIndex {
			return true
		}
	}
	return false
}
