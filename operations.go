package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

type Operations = []Operation

type Operation struct {
	Crop   *CropOperation
	Pick   *PickOperation
	Resize *ResizeOperation
}

// unmarshal
func (o *Operation) UnmarshalJSON(data []byte) error {
	var op struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &op); err != nil {
		return fmt.Errorf("failed to unmarshal operation: %w", err)
	}

	switch op.Type {
	case "crop":
		var crop CropOperation
		if err := json.Unmarshal(data, &crop); err != nil {
			return fmt.Errorf("failed to unmarshal crop operation: %w", err)
		}
		o.Crop = &crop
	case "pick":
		var pick PickOperation
		if err := json.Unmarshal(data, &pick); err != nil {
			return fmt.Errorf("failed to unmarshal pick operation: %w", err)
		}
		o.Pick = &pick
	case "resize":
		var resize ResizeOperation
		if err := json.Unmarshal(data, &resize); err != nil {
			return fmt.Errorf("failed to unmarshal resize operation: %w", err)
		}
		o.Resize = &resize
	default:
		return fmt.Errorf("unknown operation %q", op.Type)
	}
	return nil
}

func (o Operation) MarshalJSON() ([]byte, error) {
	switch {
	case o.Crop != nil:
		return json.Marshal(struct {
			Type string `json:"type"`
			*CropOperation
		}{"crop", o.Crop})
	case o.Pick != nil:
		return json.Marshal(struct {
			Type string `json:"type"`
			*PickOperation
		}{"pick", o.Pick})
	case o.Resize != nil:
		return json.Marshal(struct {
			Type string `json:"type"`
			*ResizeOperation
		}{"resize", o.Resize})
	}
	return []byte("null"), nil
}

// target names the source file of the operation and the suffix added to its
// output name. Picks keep the original name.
func (o Operation) target() (filename, suffix string) {
	switch {
	case o.Crop != nil:
		return o.Crop.Filename, o.Crop.View.ID()
	case o.Pick != nil:
		return o.Pick.Filename, ""
	case o.Resize != nil:
		return o.Resize.Filename, fmt.Sprintf("%dx%d", o.Resize.MaxWidth, o.Resize.MaxHeight)
	}
	return "", ""
}

type CropOperation struct {
	Filename string `json:"filename"`
	View     View   `json:"view"`
}

type PickOperation struct {
	Filename string `json:"filename"`
}

type ResizeOperation struct {
	Filename  string `json:"filename"`
	MaxWidth  int    `json:"max_width"`
	MaxHeight int    `json:"max_height"`
}

var errOutsideRoot = errors.New("path escapes the image directory")

type Cropper interface {
	Crop(ctx context.Context, r io.Reader, w io.Writer, view View) error
	Resize(ctx context.Context, r io.Reader, w io.Writer, maxWidth, maxHeight int) error
}

type OperationExecutor struct {
	BaseDir   string
	OutputDir string
	Cropper   Cropper
	// Ext is the extension of written images, without the dot.
	Ext string
}

func (r OperationExecutor) Exec(ctx context.Context, ops []Operation) error {
	if len(ops) == 0 {
		log.Ctx(ctx).Warn().Msg("no operations to execute")
		return nil
	}

	ops, err := r.plan(ctx, ops)
	if err != nil {
		return err
	}

	pooler := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(runtime.NumCPU())

	if err := os.MkdirAll(r.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", r.OutputDir, err)
	}
	for _, op := range ops {
		op := op
		pooler.Go(func(ctx context.Context) error {
			if err := r.executeOperation(ctx, op); err != nil {
				log.Ctx(ctx).Error().Err(err).
					Interface("op", op).
					Msg("failed to execute operation")
				return err
			}
			return nil
		})
	}

	if err := pooler.Wait(); err != nil {
		log.Ctx(ctx).Error().
			Err(err).
			Msg("finished with errors")
		return err
	}

	return nil
}

// plan checks every operation's paths before any work starts. Repeats of the
// same operation are dropped. Two different operations writing the same
// output file are rejected.
func (r OperationExecutor) plan(ctx context.Context, ops []Operation) ([]Operation, error) {
	type claim struct {
		index  int
		source string
	}
	claimed := make(map[string]claim, len(ops))
	planned := make([]Operation, 0, len(ops))
	for i, op := range ops {
		filename, suffix := op.target()
		src, dst, err := r.paths(filename, suffix)
		if err != nil {
			return nil, err
		}
		if prev, ok := claimed[dst]; ok {
			if prev.source == src {
				log.Ctx(ctx).Debug().Str("filename", filename).Int("op", i).Msg("skipping repeated operation")
				continue
			}
			return nil, fmt.Errorf("operations %d and %d both write %s", prev.index, i, dst)
		}
		claimed[dst] = claim{index: i, source: src}
		planned = append(planned, op)
	}
	return planned, nil
}

// paths resolves filename against BaseDir and returns where its output goes.
// The relative directory of filename is kept under OutputDir so files with the
// same name in different folders do not collide. With a BaseDir set, filename
// must stay inside it.
func (r OperationExecutor) paths(filename, suffix string) (src, dst string, err error) {
	local := filepath.IsLocal(filename)
	if r.BaseDir != "" && !local {
		return "", "", fmt.Errorf("%w: %q", errOutsideRoot, filename)
	}
	src = filepath.Join(r.BaseDir, filename)

	name := filepath.Base(filename)
	if suffix != "" {
		name = fmt.Sprintf("%s-%s.%s", strings.TrimSuffix(name, filepath.Ext(name)), suffix, r.ext())
	}
	if local {
		return src, filepath.Join(r.OutputDir, filepath.Dir(filename), name), nil
	}
	return src, filepath.Join(r.OutputDir, name), nil
}

func (r OperationExecutor) executeOperation(ctx context.Context, op Operation) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	switch {
	case op.Crop != nil:
		return r.executeCrop(ctx, *op.Crop)
	case op.Pick != nil:
		return r.executePick(ctx, *op.Pick)
	case op.Resize != nil:
		return r.executeResize(ctx, *op.Resize)
	}
	return nil
}

func (r OperationExecutor) executeCrop(ctx context.Context, op CropOperation) error {
	log.Ctx(ctx).Info().Str("filename", op.Filename).Stringer("view", op.View).Msg("cropping")
	return r.render(Operation{Crop: &op}, func(src io.Reader, dst io.Writer) error {
		return r.Cropper.Crop(ctx, src, dst, op.View)
	})
}

func (r OperationExecutor) executeResize(ctx context.Context, op ResizeOperation) error {
	log.Ctx(ctx).Info().Str("filename", op.Filename).Int("max_width", op.MaxWidth).Int("max_height", op.MaxHeight).Msg("resizing")
	return r.render(Operation{Resize: &op}, func(src io.Reader, dst io.Writer) error {
		return r.Cropper.Resize(ctx, src, dst, op.MaxWidth, op.MaxHeight)
	})
}

// render feeds the source file of op through fn and writes the result to
// <dir>/<name>-<suffix>.<ext> under OutputDir. Nothing is written when fn fails.
func (r OperationExecutor) render(op Operation, fn func(io.Reader, io.Writer) error) error {
	filename, suffix := op.target()
	sourcePath, outPath, err := r.paths(filename, suffix)
	if err != nil {
		return err
	}
	f, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", sourcePath, err)
	}
	defer f.Close()
	var b bytes.Buffer
	if err := fn(f, &b); err != nil {
		return fmt.Errorf("failed to process %s: %w", filename, err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory for %s: %w", outPath, err)
	}
	wf, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", outPath, err)
	}
	defer wf.Close()
	if _, err := b.WriteTo(wf); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", outPath, err)
	}
	return nil
}

func (r OperationExecutor) ext() string {
	if r.Ext == "" {
		return "jpg"
	}
	return r.Ext
}

func (r OperationExecutor) executePick(ctx context.Context, op PickOperation) error {
	log.Ctx(ctx).Info().Str("filename", op.Filename).Msg("picking")
	sourcePath, savePath, err := r.paths(op.Filename, "")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(savePath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory for %s: %w", savePath, err)
	}
	if err := copyFile(sourcePath, savePath); err != nil {
		return fmt.Errorf("failed to pick file %s: %w", op.Filename, err)
	}
	return nil
}

func copyFile(sourcePath, destPath string) error {
	sourceFile, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", sourcePath, err)
	}
	defer sourceFile.Close()

	destFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", destPath, err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return fmt.Errorf("failed to copy file from %s to %s: %w", sourcePath, destPath, err)
	}

	return nil
}
