package msg

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime"
	"time"

	"newtonmachine/pkg/render"
	"newtonmachine/pkg/utils"

	"github.com/go-chi/valve"
	"github.com/nsqio/go-nsq"
)

// Generator consumes render requests, computes them and publishes the
// encoded images for the store.
type Generator struct {
	valve    *valve.Valve
	ctx      context.Context
	cancel   context.CancelFunc
	producer Publisher
}

// NewGenerator constructs a Generator publishing through p. Renders in
// progress are cancelled when the valve shuts down.
func NewGenerator(v *valve.Valve, p Publisher) *Generator {
	ctx, cancel := utils.StopContext(v)
	return &Generator{valve: v, ctx: ctx, cancel: cancel, producer: p}
}

// Close releases the generator's context
func (g *Generator) Close() error {
	g.cancel()
	return nil
}

// Start starts the NSQ consumer to service request messages
func (g *Generator) Start() {
	// each render is sequential, so run one per core
	maxInFlight := runtime.GOMAXPROCS(0)

	log.Println("[generator] starting consumer on", requestTopic, generateChan, "maxInFlight:", maxInFlight)
	go func() {
		if err := utils.StartConsumer(g.ctx, requestTopic, generateChan, maxInFlight, g); err != nil {
			log.Fatal(err)
		}
	}()
}

// HandleMessage implements the nsq.Handler interface.
func (g *Generator) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		// Returning nil will automatically send a FIN command to NSQ to mark the message as processed.
		return nil
	}

	if err := g.valve.Open(); err != nil {
		log.Println("[generator] error opening valve while handling message:", err)
		return err
	}
	defer g.valve.Close()

	req := &RenderRequest{Request: render.NewRequest("")}
	if err := json.Unmarshal(m.Body, req); err != nil {
		log.Println("[generator] failed to unmarshal request:", err)
		return g.reject(m.Body)
	}

	log.Println("[generator] render requested:", req)
	start := time.Now()

	var (
		data []byte
		err  error
	)
	done := make(chan struct{})
	ticker := time.NewTicker(utils.TouchSec * time.Second)
	defer ticker.Stop()

	go func() {
		defer close(done)
		data, err = req.Render(g.ctx, nil)
	}()

loop:
	for {
		select {
		case <-done:
			break loop
		case <-ticker.C:
			m.Touch()
		}
	}

	if err != nil {
		log.Println("[generator] render failed:", req.ID, err)
		if render.IsBadRequest(err) {
			return g.reject(m.Body)
		}
		// Returning a non-nil error will automatically send a REQ command to NSQ to re-queue the message.
		return err
	}

	elapsed := time.Since(start)
	if err := g.publish(req, data, elapsed); err != nil {
		return g.reject(m.Body)
	}

	log.Println("[generator] completed", req.ID, "in", elapsed)
	return nil
}

func (g *Generator) publish(req *RenderRequest, data []byte, elapsed time.Duration) error {
	b, err := json.Marshal(RenderResult{Request: *req, Image: data, Elapsed: elapsed.String()})
	if err != nil {
		log.Println("[generator] failed to marshal result:", err)
		return err
	}

	if len(b) > utils.MaxMessageSize {
		log.Println("[generator] result too large:", req, len(b), "bytes")
		return fmt.Errorf("result too large: %d bytes", len(b))
	}

	if err := g.producer.Publish(responseTopic, b); err != nil {
		log.Println("[generator] failed to publish result:", err)
		return err
	}
	return nil
}

// reject moves a request that can never succeed to the errors topic
func (g *Generator) reject(body []byte) error {
	if err := g.producer.Publish(errorTopic, body); err != nil {
		log.Println("[generator] error publishing error message:", err)
		return err
	}
	return nil
}
