package msg

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"newtonmachine/pkg/render"
)

const (
	requestTopic  = "render-request"
	responseTopic = "render-response"
	errorTopic    = "render-errors"
	generateChan  = "generate"
	storeChan     = "store"
)

// Starter is a basic interface that provides a Start() method
type Starter interface {
	Start()
}

// Publisher is the part of *nsq.Producer the workers use
type Publisher interface {
	Publish(topic string, body []byte) error
}

// RenderRequest is a queued render job
type RenderRequest struct {
	ID string `json:"id"`
	render.Request
}

// NewRenderRequest wraps r and derives its ID from the request contents so
// identical requests share one output file.
func NewRenderRequest(r render.Request) (*RenderRequest, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}

	sum := sha1.Sum(b)
	return &RenderRequest{ID: hex.EncodeToString(sum[:8]), Request: r}, nil
}

func (r *RenderRequest) String() string {
	return fmt.Sprint(r.ID, " ", r.Request)
}

// Filename is the name the store saves the result under
func (r *RenderRequest) Filename() string {
	format, err := render.NormalizeFormat(r.Format)
	if err != nil {
		format = render.PNG
	}
	return r.ID + "." + format
}

// RenderResult is published by the generator once a request is encoded
type RenderResult struct {
	Request RenderRequest `json:"request"`
	Image   []byte        `json:"image"`
	Elapsed string        `json:"elapsed"`
}

// ZoomSeries returns frames requests that zoom into center, shrinking the
// viewport by factor each frame. The first frame is base itself.
func ZoomSeries(base render.Request, center complex128, factor float64, frames int) []render.Request {
	out := make([]render.Request, 0, frames)

	v := base.Params.Viewport
	halfW := (v.RealMax - v.RealMin) / 2
	halfH := (v.ImagMax - v.ImagMin) / 2

	for i := 0; i < frames; i++ {
		r := base
		if i > 0 {
			r.Params.Viewport.RealMin = real(center) - halfW
			r.Params.Viewport.RealMax = real(center) + halfW
			r.Params.Viewport.ImagMin = imag(center) - halfH
			r.Params.Viewport.ImagMax = imag(center) + halfH
		}
		out = append(out, r)

		halfW /= factor
		halfH /= factor
	}
	return out
}
