package universe

import (
	"math/rand/v2"
	"time"
)

//NewRNG creates the PCG random source for randomization
//zero seed means the seed is taken from the current time
func NewRNG(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, 0))
}
