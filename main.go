package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"framecrop/geom"
)

const outputDirName = "output"

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func run() error {
	var args cliArgs
	cliCtx := kong.Parse(
		&args,
		kong.Name("framecrop"),
		kong.Description("Pan, zoom and crop photos inside a fixed-size edit area."),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON, "~/.config/framecrop.json"),
	)
	setupLogger(args.Verbose)
	if err := cliCtx.Run(&args.Globals); err != nil {
		return err
	}

	return nil
}

func setupLogger(verbose bool) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = log.Output(zerolog.NewConsoleWriter()).Level(level)
	zerolog.DefaultContextLogger = &log.Logger
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	return log.Logger.WithContext(ctx), cancel
}

type Globals struct {
	Verbose bool            `help:"Enable verbose logging" env:"FRAMECROP_VERBOSE"`
	Config  kong.ConfigFlag `help:"Load flag defaults from a JSON file"`
}

// outputFlags describe the images written by every command.
type outputFlags struct {
	MaxWidth  int    `help:"Width of the box saved images are fitted into" default:"1920" env:"FRAMECROP_MAX_WIDTH"`
	MaxHeight int    `help:"Height of the box saved images are fitted into" default:"1080" env:"FRAMECROP_MAX_HEIGHT"`
	Format    string `help:"Format of saved images" enum:"jpg,png,webp" default:"jpg" env:"FRAMECROP_FORMAT"`
	Quality   int    `help:"JPEG and WebP quality (1-100)" default:"90" env:"FRAMECROP_QUALITY"`
}

func (o outputFlags) Validate() error {
	// Scaling into a box needs distinct positive sides.
	if _, err := geom.MinScalingFactor(geom.Size{Width: 1, Height: 1}, o.MaxWidth, o.MaxHeight); err != nil {
		return fmt.Errorf("output box: %w", err)
	}
	if o.Quality < 1 || o.Quality > 100 {
		return fmt.Errorf("quality must be between 1 and 100, got %d", o.Quality)
	}
	switch o.Format {
	case "jpg", "png", "webp":
	default:
		return fmt.Errorf("unsupported format %q", o.Format)
	}
	return nil
}

func (o outputFlags) cropper() (*ViewCropper, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return NewViewCropper(NewImagingCodec(o.Format, o.Quality), o.MaxWidth, o.MaxHeight), nil
}

type serveCmd struct {
	RootDir string      `arg:"" help:"Root directory to serve files from" type:"existingdir"`
	Open    bool        `help:"Open the browser automatically when the server starts" default:"true"`
	JSON    bool        `help:"Output operations in JSON format without executing"`
	Once    bool        `help:"Run the server once and exit after save" default:"true"`
	Output  outputFlags `embed:""`
}

func (cmd *serveCmd) Run(g *Globals) error {
	cropper, err := cmd.Output.cropper()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	executor := &OperationExecutor{
		BaseDir:   cmd.RootDir,
		OutputDir: filepath.Join(cmd.RootDir, outputDirName),
		Cropper:   cropper,
		Ext:       cropper.Codec.Ext(),
	}

	app := NewWebApp(Config{
		RootDir:   cmd.RootDir,
		Codec:     cropper.Codec,
		MaxWidth:  cmd.Output.MaxWidth,
		MaxHeight: cmd.Output.MaxHeight,
		OnBeforeShutdown: func() {
			log.Ctx(ctx).Info().Msg("Shutting down web application...")
		},
		OnReady: func(addr string) {
			log.Ctx(ctx).Info().Msgf("Server started at %s", addr)
			if cmd.Open {
				if err := openBrowser(addr); err != nil {
					log.Error().Err(err).Msg("Failed to open browser")
				}
			}
		},
		OnSave: func(ops Operations) {
			if cmd.JSON {
				printJSONL(ops)
			} else {
				if err := executor.Exec(ctx, ops); err != nil {
					log.Ctx(ctx).Error().Err(err).Msg("Failed to execute operations")
				}
			}

			if cmd.Once {
				cancel()
			}
		},
	})

	if err := app.Run(ctx); err != nil {
		return err
	}

	return nil
}

type resizeCmd struct {
	Files  []string    `arg:"" help:"Images to fit into the output box"`
	Out    string      `help:"Directory to write resized images to" default:"resized" type:"path"`
	Output outputFlags `embed:""`
}

func (cmd *resizeCmd) Run(g *Globals) error {
	cropper, err := cmd.Output.cropper()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	ops := make(Operations, 0, len(cmd.Files))
	for _, f := range cmd.Files {
		ops = append(ops, Operation{Resize: &ResizeOperation{
			Filename:  f,
			MaxWidth:  cmd.Output.MaxWidth,
			MaxHeight: cmd.Output.MaxHeight,
		}})
	}

	executor := &OperationExecutor{
		OutputDir: cmd.Out,
		Cropper:   cropper,
		Ext:       cropper.Codec.Ext(),
	}
	return executor.Exec(ctx, ops)
}

type fitCmd struct {
	Width     int     `arg:"" help:"Width of the source image"`
	Height    int     `arg:"" help:"Height of the source image"`
	MaxWidth  int     `help:"Width of the bounding box" default:"1920"`
	MaxHeight int     `help:"Height of the bounding box" default:"1080"`
	Zoom      float64 `help:"Zoom applied after fitting"`
	JSON      bool    `help:"Print the result as JSON"`
}

type fitResult struct {
	Source    geom.Size `json:"source"`
	MinFactor float64   `json:"min_factor"`
	MaxFactor float64   `json:"max_factor"`
	Fitted    geom.Size `json:"fitted"`
	Zoomed    geom.Size `json:"zoomed"`
}

func (cmd *fitCmd) Run(g *Globals) error {
	res, err := fit(cmd.Width, cmd.Height, cmd.MaxWidth, cmd.MaxHeight, cmd.Zoom)
	if err != nil {
		return err
	}
	if cmd.JSON {
		printJSONL([]fitResult{res})
		return nil
	}
	fmt.Printf("%s -> %s (factor %.4f)\n", res.Source, res.Zoomed, res.MinFactor)
	return nil
}

func fit(width, height, maxWidth, maxHeight int, zoom float64) (fitResult, error) {
	source, err := geom.NewSize(width, height)
	if err != nil {
		return fitResult{}, err
	}
	res := fitResult{Source: source}
	if res.MinFactor, err = geom.MinScalingFactor(source, maxWidth, maxHeight); err != nil {
		return fitResult{}, err
	}
	if res.MaxFactor, err = geom.MaxScalingFactor(source, maxWidth, maxHeight); err != nil {
		return fitResult{}, err
	}
	if res.Fitted, err = geom.CalculateNewSize(source, maxWidth, maxHeight); err != nil {
		return fitResult{}, err
	}
	if res.Zoomed, err = geom.Scale(res.Fitted, zoom); err != nil {
		return fitResult{}, err
	}
	return res, nil
}

type cliArgs struct {
	Globals

	Serve  serveCmd  `cmd:"" default:"withargs" help:"Serve the editor for a directory of photos"`
	Resize resizeCmd `cmd:"" help:"Fit images into the output box"`
	Fit    fitCmd    `cmd:"" help:"Print the size an image gets when fitted into a box"`
}

func printJSONL[T any](data []T) {
	enc := json.NewEncoder(os.Stdout)
	for _, item := range data {
		if err := enc.Encode(item); err != nil {
			log.Error().Err(err).Msg("Failed to encode item to JSON")
			continue
		}
	}
}
