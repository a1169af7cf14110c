package newton

// ProgressFunc receives completion percentages in [0,100]. Within one
// compute call the values never decrease and the last one is 100.
type ProgressFunc func(percent int)

const (
	progressSetup = 5
	progressBase  = 10
	progressSpan  = 90
	progressDone  = 100
)

// progress maps completed tiles onto the percentage sequence
// 5, 10+90*done/total..., 100. A nil sink is never called.
type progress struct {
	fn    ProgressFunc
	total int
	done  int
}

func newProgress(fn ProgressFunc, total int) *progress {
	return &progress{fn: fn, total: total}
}

func (p *progress) report(percent int) {
	if p.fn != nil {
		p.fn(percent)
	}
}

func (p *progress) setup() {
	p.report(progressSetup)
}

func (p *progress) tileDone() {
	p.done++
	p.report(progressBase + progressSpan*p.done/p.total)
}

func (p *progress) finish() {
	p.report(progressDone)
}
