package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/foolin/goview"

	"newtonmachine/pkg/render"
)

var (
	// ErrBadQuery is returned for missing or malformed query parameters
	ErrBadQuery = errors.New("bad query")
)

func (s *Server) serveIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := render.NewRequest("z**3 - 1")
		if q, err := parseQuery(r.URL.Query()); err == nil {
			req = q
		}

		err := s.views.Render(w, http.StatusOK, "index", goview.M{
			"host":     s.host + ":" + s.port,
			"req":      req,
			"query":    template.URL(encodeQuery(req).Encode()),
			"palettes": render.PaletteNames(),
		})
		if err != nil {
			log.Println("[server] render index error:", err)
			http.Error(w, "render index error: "+err.Error(), http.StatusInternalServerError)
		}
	}
}

func (s *Server) serveRender() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		req, err := parseQuery(r.URL.Query())
		if err != nil {
			renderError(w, err)
			return
		}

		if err := s.valve.Open(); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		defer s.valve.Close()

		fn, err := s.cache.get(req.Expr)
		if err != nil {
			renderError(w, err)
			return
		}

		// a client that goes away or a server shutdown both stop the render
		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		stop := context.AfterFunc(s.ctx, cancel)
		defer stop()

		b, err := req.RenderFunc(ctx, fn, nil)
		if err != nil {
			renderError(w, err)
			return
		}

		renderTotal.WithLabelValues("ok").Inc()
		renderDuration.Observe(time.Since(start).Seconds())
		renderPixels.Add(float64(req.Params.Grid.Len()))

		format, _ := render.NormalizeFormat(req.Format)
		writeImage(w, b, render.ContentType(format))
	}
}

func renderError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrBadQuery) || render.IsBadRequest(err) {
		renderTotal.WithLabelValues("bad_request").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Println("[server] render failed:", err)
	renderTotal.WithLabelValues("error").Inc()
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// writeImage writes an encoded image into the ResponseWriter
func writeImage(w http.ResponseWriter, b []byte, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))

	if _, err := w.Write(b); err != nil {
		log.Println("[server] unable to write image to response:", err)
	}
}

// parseQuery builds a render request from the query string. Only f is
// required; every other parameter falls back to the render defaults.
func parseQuery(q url.Values) (render.Request, error) {
	req := render.NewRequest(q.Get("f"))
	if req.Expr == "" {
		return req, fmt.Errorf("%w: f is required", ErrBadQuery)
	}

	p := &req.Params
	floats := []struct {
		key string
		dst *float64
	}{
		{"rmin", &p.Viewport.RealMin},
		{"rmax", &p.Viewport.RealMax},
		{"imin", &p.Viewport.ImagMin},
		{"imax", &p.Viewport.ImagMax},
		{"tol", &p.Tol},
	}
	for _, f := range floats {
		if err := parseFloat(q, f.key, f.dst); err != nil {
			return req, err
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"w", &p.Grid.Width},
		{"h", &p.Grid.Height},
		{"iter", &p.MaxIter},
		{"tile", &p.TileSize},
	}
	for _, i := range ints {
		if err := parseInt(q, i.key, i.dst); err != nil {
			return req, err
		}
	}

	if err := req.CheckSize(); err != nil {
		return req, err
	}

	if v := q.Get("palette"); v != "" {
		req.Palette = v
	}
	if v := q.Get("format"); v != "" {
		req.Format = v
	}

	return req, nil
}

func parseFloat(q url.Values, key string, dst *float64) error {
	v := q.Get(key)
	if v == "" {
		return nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not a number", ErrBadQuery, key, v)
	}
	*dst = f
	return nil
}

func parseInt(q url.Values, key string, dst *int) error {
	v := q.Get(key)
	if v == "" {
		return nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not an integer", ErrBadQuery, key, v)
	}
	*dst = n
	return nil
}

// encodeQuery is the inverse of parseQuery
func encodeQuery(req render.Request) url.Values {
	p := req.Params
	fmtFloat := func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

	q := url.Values{}
	q.Set("f", req.Expr)
	q.Set("rmin", fmtFloat(p.Viewport.RealMin))
	q.Set("rmax", fmtFloat(p.Viewport.RealMax))
	q.Set("imin", fmtFloat(p.Viewport.ImagMin))
	q.Set("imax", fmtFloat(p.Viewport.ImagMax))
	q.Set("w", strconv.Itoa(p.Grid.Width))
	q.Set("h", strconv.Itoa(p.Grid.Height))
	q.Set("iter", strconv.Itoa(p.MaxIter))
	q.Set("tol", fmtFloat(p.Tol))
	q.Set("tile", strconv.Itoa(p.TileSize))
	if req.Palette != "" {
		q.Set("palette", req.Palette)
	}
	if req.Format != "" {
		q.Set("format", req.Format)
	}
	return q
}
