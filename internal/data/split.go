package data

import "math/rand/v2"

// Holdout shuffles the rows with a seeded generator and holds out testFrac of them.
// At least one row stays on each side when the series has two or more rows.
func Holdout(s Series, testFrac float64, seed uint64) (train, test Series) {
    n := s.Len()
    rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
    idx := rng.Perm(n)
    nTest := int(testFrac * float64(n))
    if n >= 2 {
        if nTest < 1 { nTest = 1 }
        if nTest > n-1 { nTest = n - 1 }
    } else {
        nTest = 0
    }
    return s.Subset(idx[nTest:]), s.Subset(idx[:nTest])
}
