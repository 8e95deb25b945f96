package render

import (
	"bytes"
	"os/exec"
	"strconv"
	"strings"

	"github.com/matzehuels/collatz/pkg/errors"
)

// converter is the librsvg command line tool used for raster and PDF output.
const converter = "rsvg-convert"

const installHint = "install librsvg (brew install librsvg, or apt install librsvg2-bin)"

// Available reports whether rsvg-convert is on PATH.
func Available() bool {
	_, err := exec.LookPath(converter)
	return err == nil
}

// ToPDF converts an SVG document to a single-page PDF.
func ToPDF(svg []byte) ([]byte, error) {
	return convertSVG(svg, "pdf")
}

// ToPNG converts an SVG document to PNG, zoomed by scale. Non-positive
// scales render at 1x.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return convertSVG(svg, "png", "--zoom", strconv.FormatFloat(scale, 'f', 2, 64))
}

func convertSVG(svg []byte, format string, flags ...string) ([]byte, error) {
	path, err := exec.LookPath(converter)
	if err != nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "%s output needs %s: %s", format, converter, installHint)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(path, append([]string{"--format", format}, flags...)...)
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s: %s", converter, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
