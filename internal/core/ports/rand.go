package ports

// RandSource is the random generator used by weighted sampling. Injectable
// so tests can drive selection deterministically. *math/rand/v2.Rand
// satisfies it.
type RandSource interface {
	Float64() float64
	IntN(n int) int
}
