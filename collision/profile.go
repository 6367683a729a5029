package collision

import (
	"fmt"
	"time"
)

// Profile accumulates GJK and TOI statistics for one caller. It is plain
// data: give each goroutine its own Profile and Merge them afterwards.
type Profile struct {
	GJKCalls    int
	GJKIters    int
	GJKMaxIters int

	TOICalls        int
	TOIIters        int
	TOIMaxIters     int
	TOIRootIters    int
	TOIMaxRootIters int
	TOITime         time.Duration
	TOIMaxTime      time.Duration
}

// AddDistance records one Distance call.
func (p *Profile) AddDistance(out DistanceOutput) {
	p.GJKCalls++
	p.GJKIters += out.Iterations
	p.GJKMaxIters = max(p.GJKMaxIters, out.Iterations)
}

// AddTOI records one TimeOfImpact call that took elapsed.
func (p *Profile) AddTOI(out TOIOutput, elapsed time.Duration) {
	p.TOICalls++
	p.TOIIters += out.Iterations
	p.TOIMaxIters = max(p.TOIMaxIters, out.Iterations)
	p.TOIRootIters += out.RootIterations
	p.TOIMaxRootIters = max(p.TOIMaxRootIters, out.MaxRootIterations)
	p.TOITime += elapsed
	p.TOIMaxTime = max(p.TOIMaxTime, elapsed)
}

// Merge folds other into p.
func (p *Profile) Merge(other Profile) {
	p.GJKCalls += other.GJKCalls
	p.GJKIters += other.GJKIters
	p.GJKMaxIters = max(p.GJKMaxIters, other.GJKMaxIters)
	p.TOICalls += other.TOICalls
	p.TOIIters += other.TOIIters
	p.TOIMaxIters = max(p.TOIMaxIters, other.TOIMaxIters)
	p.TOIRootIters += other.TOIRootIters
	p.TOIMaxRootIters = max(p.TOIMaxRootIters, other.TOIMaxRootIters)
	p.TOITime += other.TOITime
	p.TOIMaxTime = max(p.TOIMaxTime, other.TOIMaxTime)
}

func (p Profile) String() string {
	return fmt.Sprintf("gjk calls=%d iters=%d max=%d toi calls=%d iters=%d max=%d root=%d rootmax=%d time=%s maxtime=%s",
		p.GJKCalls, p.GJKIters, p.GJKMaxIters,
		p.TOICalls, p.TOIIters, p.TOIMaxIters, p.TOIRootIters, p.TOIMaxRootIters,
		p.TOITime, p.TOIMaxTime)
}
