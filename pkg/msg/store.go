package msg

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path"
	"runtime"
	"time"

	"newtonmachine/pkg/utils"

	"github.com/briandowns/spinner"
	"github.com/go-chi/valve"
	"github.com/nsqio/go-nsq"
)

// Store handles the storage of completed renders to local disk
type Store struct {
	valve   *valve.Valve
	ctx     context.Context
	cancel  context.CancelFunc
	outPath string
	spin    *spinner.Spinner
}

// NewStore constructs a new Store writing into outPath
func NewStore(v *valve.Valve, outPath string) *Store {
	ctx, cancel := utils.StopContext(v)
	return &Store{valve: v, ctx: ctx, cancel: cancel, outPath: outPath}
}

// Start starts consuming results and shows a spinner while waiting
func (s *Store) Start() {
	maxInFlight := runtime.GOMAXPROCS(0) * 2

	// the spinner exists before the consumer so handlers never see it change
	s.spin = spinner.New(spinner.CharSets[43], 100*time.Millisecond)
	s.spin.Suffix = fmt.Sprintf(" saving renders maxInFlight: %d", maxInFlight)
	s.spin.Start()

	log.Println("[store] starting consumer on", responseTopic, storeChan, "into", s.outPath)
	go func() {
		if err := utils.StartConsumer(s.ctx, responseTopic, storeChan, maxInFlight, s); err != nil {
			log.Fatal(err)
		}
	}()
}

// status updates the spinner text. The spinner goroutine reads Suffix under
// its own lock.
func (s *Store) status(text string) {
	if s.spin == nil {
		return
	}
	s.spin.Lock()
	s.spin.Suffix = text
	s.spin.Unlock()
}

// Close stops the spinner
func (s *Store) Close() error {
	s.cancel()
	if s.spin != nil {
		s.spin.Stop()
	}
	return nil
}

// HandleMessage handles completed renders from the Generator and stores them
// on the local disk
func (s *Store) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	if err := s.valve.Open(); err != nil {
		log.Println("[store] failed to open valve:", err)
		return err
	}
	defer s.valve.Close()

	res := &RenderResult{}
	if err := json.Unmarshal(m.Body, res); err != nil {
		log.Println("[store] failed to unmarshal result:", err)
		return err
	}

	if res.Request.ID == "" || len(res.Image) == 0 {
		log.Println("[store] discarding incomplete result:", res.Request.ID)
		return nil
	}

	if err := utils.CreateFolder(s.outPath); err != nil {
		log.Println("[store] error creating folder:", err)
		return err
	}

	fpath := path.Join(s.outPath, path.Base(res.Request.Filename()))
	s.status(" saving " + fpath)
	if err := os.WriteFile(fpath, res.Image, 0644); err != nil {
		log.Println("[store] error saving render:", err)
		// Returning a non-nil error will automatically send a REQ command to NSQ to re-queue the message.
		return err
	}

	log.Println("[store] saved", fpath, "rendered in", res.Elapsed)
	return nil
}
