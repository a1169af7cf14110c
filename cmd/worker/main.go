package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/valve"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"newtonmachine/pkg/msg"
	"newtonmachine/pkg/render"
	"newtonmachine/pkg/utils"
)

func main() {
	godotenv.Load()

	app := &cli.App{
		Name:  "worker",
		Usage: "queue, generate and store renders over nsq",
		Commands: []*cli.Command{
			{
				Name:    "generate",
				Aliases: []string{"gen"},
				Usage:   "compute queued render requests",
				Action:  generate,
			},
			{
				Name:    "store",
				Aliases: []string{"sto"},
				Usage:   "save rendered images under NEWTON_OUTPUT_PATH",
				Action:  store,
			},
			{
				Name:    "request",
				Aliases: []string{"req"},
				Usage:   "queue a render, or a zoom series of renders",
				Flags: append(render.Flags(),
					&cli.Float64Flag{Name: "zoom-re", Usage: "real part of the zoom center"},
					&cli.Float64Flag{Name: "zoom-im", Usage: "imaginary part of the zoom center"},
					&cli.Float64Flag{Name: "zoom-factor", Value: 2, Usage: "viewport shrink per frame"},
					&cli.IntFlag{Name: "frames", Value: 1, Usage: "number of zoom frames"},
				),
				Action: request,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func checkEnv() error {
	if os.Getenv("NEWTON_NSQLOOKUP") == "" {
		return errors.New("NEWTON_NSQLOOKUP is not exported")
	}
	return nil
}

func generate(c *cli.Context) error {
	if err := checkEnv(); err != nil {
		return err
	}

	p, err := utils.NewProducer()
	if err != nil {
		return err
	}
	defer p.Stop()

	v := valve.New()
	g := msg.NewGenerator(v, p)
	defer g.Close()

	return serve(v, g, nil)
}

func store(c *cli.Context) error {
	if err := checkEnv(); err != nil {
		return err
	}

	v := valve.New()
	s := msg.NewStore(v, msg.OutputPath())
	defer s.Close()

	return serve(v, s, nil)
}

func request(c *cli.Context) error {
	if c.Int("frames") < 1 {
		return cli.Exit("frames must be at least 1", 2)
	}

	p, err := utils.NewProducer()
	if err != nil {
		return err
	}
	defer p.Stop()

	base := render.RequestFromContext(c)
	center := complex(c.Float64("zoom-re"), c.Float64("zoom-im"))
	frames := msg.ZoomSeries(base, center, c.Float64("zoom-factor"), c.Int("frames"))

	v := valve.New()
	r := msg.NewRequester(v, p, msg.OutputPath(), frames...)
	return serve(v, r, r.Done())
}

// serve starts s and blocks until a termination signal arrives or done is
// closed, then shuts the valve down.
func serve(v *valve.Valve, s msg.Starter, done <-chan struct{}) error {
	s.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Println("[worker] waiting for signal to exit")

	select {
	case <-sigChan:
		log.Println("[worker] received termination request")
	case <-done:
		log.Println("[worker] process completed")
	}

	log.Println("[worker] waiting for processes to finish...")
	v.Shutdown(10 * time.Second)
	log.Println("[worker] processes complete.")
	return nil
}
