package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"newtonmachine/pkg/expr"
	"newtonmachine/pkg/newton"
	"newtonmachine/pkg/render"
	"newtonmachine/pkg/utils"
)

func main() {
	godotenv.Load()

	app := &cli.App{
		Name:  "newton",
		Usage: "render Newton-Raphson fractals",
		Commands: []*cli.Command{
			{
				Name:  "render",
				Usage: "render one image to a file",
				Flags: append(render.Flags(),
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file, format follows the extension"},
					&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log the compiled function and timing"},
				),
				Action: renderImage,
			},
			{
				Name:      "derive",
				Usage:     "print the derivative of a function",
				ArgsUsage: "EXPR",
				Action:    derive,
			},
			{
				Name:  "palettes",
				Usage: "list the named palettes",
				Action: func(c *cli.Context) error {
					for _, name := range render.PaletteNames() {
						fmt.Println(name)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func renderImage(c *cli.Context) error {
	req := render.RequestFromContext(c)

	pal, err := render.ParsePalette(req.Palette)
	if err != nil {
		return err
	}

	e, err := newton.NewEngine(req.Expr, req.Params)
	if err != nil {
		return err
	}
	e.Verbose = c.Bool("verbose")
	if e.Verbose {
		log.Println("[newton] f(z) =", e.Function().Expr(), " f'(z) =", e.Function().Derivative())
	}

	out := c.String("out")
	if out == "" {
		out = filepath.Join(utils.EnvDefault("NEWTON_OUTPUT_PATH", "."), render.DefaultFilename(req.Expr, time.Now()))
	}
	if _, err := render.FormatFromPath(out); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	spin := spinner.New(spinner.CharSets[43], 100*time.Millisecond)
	spin.Suffix = " computing " + req.String()
	spin.Start()

	img, err := e.Compute(ctx, func(percent int) {
		spin.Lock()
		spin.Suffix = fmt.Sprintf(" %3d%% %s", percent, req.Expr)
		spin.Unlock()
	})
	spin.Stop()
	if err != nil {
		return err
	}

	if err := render.Save(out, render.ToNRGBA(img, pal)); err != nil {
		return err
	}

	fmt.Println(out)
	return nil
}

func derive(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("derive takes exactly one expression", 2)
	}

	fn, err := expr.Compile(c.Args().First())
	if err != nil {
		return err
	}

	fmt.Println("f(z)  =", fn.Expr())
	fmt.Println("f'(z) =", fn.Derivative())
	return nil
}
