package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/rs/zerolog/log"

	"framecrop/geom"
)

//go:embed static
var staticFS embed.FS
var isDebug = os.Getenv("DEBUG") == "1"

type Config struct {
	RootDir string
	Codec   Codec
	// MaxWidth and MaxHeight bound the saved images.
	MaxWidth         int
	MaxHeight        int
	OnBeforeShutdown func()
	OnReady          func(addr string)
	OnSave           func(ops Operations)
}

type WebApp struct {
	config       Config
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

func NewWebApp(config Config) *WebApp {
	return &WebApp{
		config:     config,
		shutdownCh: make(chan struct{}),
	}
}

func (a *WebApp) Shutdown() {
	a.shutdownOnce.Do(func() {
		close(a.shutdownCh)
	})
}

type clipRequest struct {
	Pic   geom.Point `json:"pic"`
	Image geom.Size  `json:"image"`
	Edit  geom.Size  `json:"edit"`
}

type clipResponse struct {
	Box     geom.CropBox `json:"box"`
	Visible bool         `json:"visible"`
}

func errorHandler(c *fiber.Ctx, err error) error {
	log.Ctx(c.Context()).Error().
		Err(err).
		Str("path", c.Path()).
		Str("method", c.Method()).
		Msg("Request failed")
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		if fiberErr.Code == http.StatusNotFound && c.Path() == "/favicon.ico" {
			return nil
		}
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}
	if errors.Is(err, geom.ErrInvalidArgument) || errors.Is(err, geom.ErrOutOfRange) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
}

func (a *WebApp) newApp(ctx context.Context) *fiber.App {
	webapp := fiber.New(fiber.Config{
		Immutable:             true,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	filesRoot := http.Dir(a.config.RootDir)
	webapp.Get("/api/view", func(c *fiber.Ctx) error {
		filePath := c.Query("file")
		return filesystem.SendFile(c, filesRoot, filePath)
	})

	webapp.Get("/api/ls", func(c *fiber.Ctx) error {
		dir, err := walkImages(ctx, a.config.RootDir, a.config.Codec)
		if err != nil {
			return fmt.Errorf("failed to walk dir: %w", err)
		}

		for i := range dir.Files {
			dir.Files[i].URL = "/api/view?file=" + url.QueryEscape(dir.Files[i].Name)
		}

		var response struct {
			Name   string     `json:"name"`
			Files  []FileInfo `json:"files"`
			Output geom.Size  `json:"output"`
		}
		response.Name = dir.Name
		response.Files = dir.Files
		response.Output = geom.Size{Width: a.config.MaxWidth, Height: a.config.MaxHeight}

		return c.JSON(response)
	})

	webapp.Post("/api/clip", func(c *fiber.Ctx) error {
		var request clipRequest
		if err := c.BodyParser(&request); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		img, err := geom.NewSize(request.Image.Width, request.Image.Height)
		if err != nil {
			return err
		}
		edit, err := geom.NewSize(request.Edit.Width, request.Edit.Height)
		if err != nil {
			return err
		}

		box, visible := geom.CropBox{Width: img.Width, Height: img.Height}.Clip(request.Pic, img, edit)
		return c.JSON(clipResponse{Box: box, Visible: visible})
	})

	webapp.Get("/api/fit", func(c *fiber.Ctx) error {
		size, err := geom.NewSize(c.QueryInt("w"), c.QueryInt("h"))
		if err != nil {
			return err
		}
		fitted, err := geom.CalculateNewSize(size, a.config.MaxWidth, a.config.MaxHeight)
		if err != nil {
			return err
		}
		zoomed, err := geom.Scale(fitted, c.QueryFloat("zoom"))
		if err != nil {
			return err
		}
		return c.JSON(zoomed)
	})

	webapp.Get("/api/suggest", func(c *fiber.Ctx) error {
		if c.Query("file") == "" {
			return fiber.NewError(http.StatusBadRequest, "file is required")
		}
		f, err := filesRoot.Open(c.Query("file"))
		if err != nil {
			return fiber.NewError(http.StatusNotFound, "file not found")
		}
		defer f.Close()

		img, err := decodeOriented(ctx, a.config.Codec, f)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", c.Query("file"), err)
		}
		box, err := suggestCrop(img, c.QueryInt("w"), c.QueryInt("h"))
		if err != nil {
			return err
		}
		return c.JSON(box)
	})

	webapp.Post("/api/save", func(c *fiber.Ctx) error {
		var request struct {
			Operations []Operation `json:"operations"`
		}

		if err := c.BodyParser(&request); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		for _, op := range request.Operations {
			if filename, _ := op.target(); !filepath.IsLocal(filename) {
				return fiber.NewError(http.StatusBadRequest, fmt.Sprintf("%s: %q", errOutsideRoot, filename))
			}
		}

		if fn := a.config.OnSave; fn != nil {
			fn(request.Operations)
		}

		return c.SendStatus(http.StatusNoContent)
	})
	webapp.Post("/api/shutdown", func(c *fiber.Ctx) error {
		a.Shutdown()
		return nil
	})

	if isDebug {
		log.Debug().Msg("Debug mode enabled, serving static files from './static' directory")
		webapp.Static("/", "static")
	} else {
		log.Debug().Msg("Serving static files from embedded filesystem")
		webapp.Use("/", filesystem.New(filesystem.Config{
			Root:       http.FS(staticFS),
			PathPrefix: "/static",
		}))
	}

	return webapp
}

func (a *WebApp) Run(ctx context.Context) error {
	webapp := a.newApp(ctx)

	webapp.Hooks().OnListen(func(listen fiber.ListenData) error {
		if fn := a.config.OnReady; fn != nil {
			fn(fmt.Sprintf("http://%s:%s", listen.Host, listen.Port))
		}
		return nil
	})

	go func() {
		select {
		case <-ctx.Done():
		case <-a.shutdownCh:
		}
		if fn := a.config.OnBeforeShutdown; fn != nil {
			fn()
		}
		if err := webapp.ShutdownWithTimeout(5 * time.Second); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("Failed to shutdown web application")
		}
	}()

	// Let the OS assign a random available port
	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", 0))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	// Use the listener that was already created
	if err := webapp.Listener(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
