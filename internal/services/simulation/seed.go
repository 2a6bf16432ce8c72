package simulation

import "math/rand/v2"

const goldenGamma = 0x9e3779b97f4a7c15

// splitmix64 is the SplitMix64 finalizer. It turns correlated inputs such as
// consecutive iteration indexes into well-mixed 64-bit seeds.
func splitmix64(x uint64) uint64 {
	x += goldenGamma
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// iterationSeeds derives the two PCG seed words for one iteration of one
// stream. The result depends only on its arguments, so an iteration draws
// the same numbers whichever worker runs it.
func iterationSeeds(base int64, stream uint64, iteration int) (uint64, uint64) {
	s := splitmix64(uint64(base) ^ splitmix64(stream))
	s1 := splitmix64(s + uint64(iteration)*goldenGamma)
	return s1, splitmix64(s1)
}

// newIterationRand returns the generator owned by one iteration
func newIterationRand(base int64, stream uint64, iteration int) *rand.Rand {
	return rand.New(rand.NewPCG(iterationSeeds(base, stream, iteration)))
}

// DeriveSeed returns a child seed for a dependent run, such as the
// withdrawal phase that follows an accumulation run.
func DeriveSeed(base int64, stream uint64) int64 {
	return int64(splitmix64(uint64(base) ^ splitmix64(stream^goldenGamma)))
}
