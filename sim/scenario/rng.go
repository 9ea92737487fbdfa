package scenario

import "hash/fnv"

// SeedFor derives the simulator random seed for one scenario from the
// master seed and the scenario name. Two generation runs with the same
// master seed produce identical scenario files, while each scenario still
// gets its own stream of simulator randomness.
func SeedFor(master int64, name string) uint32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return uint32(uint64(master) ^ h.Sum64())
}
