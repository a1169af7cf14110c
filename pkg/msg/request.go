package msg

import (
	"encoding/json"
	"log"
	"os"
	"path"
	"sync"

	"newtonmachine/pkg/render"
	"newtonmachine/pkg/utils"

	"github.com/go-chi/valve"
)

// Requester publishes render requests, skipping the ones whose output already
// exists or that were already sent by this process.
type Requester struct {
	producer Publisher
	valve    *valve.Valve
	outPath  string
	requests []render.Request
	done     chan struct{}

	mu      sync.Mutex
	pending map[string]bool
}

// NewRequester constructs a Requester that publishes requests once started.
// The output path is checked for results that already exist.
func NewRequester(v *valve.Valve, p Publisher, outPath string, requests ...render.Request) *Requester {
	return &Requester{
		producer: p,
		valve:    v,
		outPath:  outPath,
		requests: requests,
		done:     make(chan struct{}),
		pending:  map[string]bool{},
	}
}

// Start publishes the requests in the background. Done is closed once all
// were sent or the valve is shutting down.
func (r *Requester) Start() {
	go func() {
		defer close(r.done)
		sent, skipped := 0, 0

	loop:
		for _, req := range r.requests {
			select {
			case <-r.valve.Stop(): // valve is being shutdown
				break loop
			default:
			}

			ok, err := r.Send(req)
			if err != nil {
				log.Println("[requester] giving up:", err)
				break loop
			}
			if ok {
				sent++
			} else {
				skipped++
			}
		}

		log.Println("[requester] done. sent:", sent, "skipped:", skipped)
	}()
}

// Done is closed when Start has finished publishing
func (r *Requester) Done() <-chan struct{} {
	return r.done
}

// Send publishes one request. It reports false when the request was skipped.
func (r *Requester) Send(req render.Request) (bool, error) {
	rr, err := NewRenderRequest(req)
	if err != nil {
		return false, err
	}

	exists, err := utils.PathExists(path.Join(r.outPath, rr.Filename()))
	if err != nil {
		return false, err
	}
	if exists {
		log.Println("[requester] already rendered:", rr, "skipping.")
		return false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending[rr.ID] {
		log.Println("[requester] already requested:", rr, "skipping.")
		return false, nil
	}

	b, err := json.Marshal(rr)
	if err != nil {
		log.Println("[requester] failed to marshal request:", rr, "\n\t", err)
		return false, err
	}

	// Synchronously publish a single message to the specified topic.
	if err := r.producer.Publish(requestTopic, b); err != nil {
		log.Println("[requester] failed to publish message:", err)
		return false, err
	}
	r.pending[rr.ID] = true

	log.Println("[requester] requested:", rr)
	return true, nil
}

// OutputPath is where finished renders are stored: NEWTON_OUTPUT_PATH or
// the working directory.
func OutputPath() string {
	if p := os.Getenv("NEWTON_OUTPUT_PATH"); p != "" {
		return p
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}
