package pdfdoc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

var ErrNoImages = errors.New("pdftoppm produced no images")

var pageImageRe = regexp.MustCompile(`^page-(\d+)\.png$`)

// Rasterizer renders PDF pages to PNG files with poppler's pdftoppm.
type Rasterizer struct {
	Binary string
	DPI    int
}

func NewRasterizer(dpi int) *Rasterizer {
	if dpi <= 0 {
		dpi = 200
	}
	return &Rasterizer{Binary: "pdftoppm", DPI: dpi}
}

// Rasterize writes data to a scratch directory and renders every page. The
// returned cleanup removes the directory and must be called by the caller.
func (r *Rasterizer) Rasterize(ctx context.Context, data []byte) ([]string, func(), error) {
	if _, err := exec.LookPath(r.Binary); err != nil {
		return nil, func() {}, fmt.Errorf("%s not found in PATH: %w", r.Binary, err)
	}

	dir, err := os.MkdirTemp("", "docai-ocr-*")
	if err != nil {
		return nil, func() {}, fmt.Errorf("mkdir temp: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	pdfPath := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(pdfPath, data, 0o600); err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("write temp pdf: %w", err)
	}

	cmd := exec.CommandContext(ctx, r.Binary, r.args(pdfPath, filepath.Join(dir, "page"))...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("pdftoppm failed: %w; out=%s", err, string(out))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("read temp dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	images := sortPageImages(names)
	if len(images) == 0 {
		cleanup()
		return nil, func() {}, ErrNoImages
	}

	paths := make([]string, len(images))
	for i, name := range images {
		paths[i] = filepath.Join(dir, name)
	}
	return paths, cleanup, nil
}

func (r *Rasterizer) args(pdfPath, prefix string) []string {
	return []string{"-r", strconv.Itoa(r.DPI), "-png", pdfPath, prefix}
}

// sortPageImages keeps pdftoppm output names and orders them by page number.
// pdftoppm zero-pads page numbers only as wide as the page count needs.
func sortPageImages(names []string) []string {
	type img struct {
		name string
		page int
	}
	var imgs []img
	for _, n := range names {
		m := pageImageRe.FindStringSubmatch(n)
		if m == nil {
			continue
		}
		p, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		imgs = append(imgs, img{name: n, page: p})
	}
	sort.Slice(imgs, func(i, j int) bool { return imgs[i].page < imgs[j].page })

	out := make([]string, len(imgs))
	for i, im := range imgs {
		out[i] = im.name
	}
	return out
}
