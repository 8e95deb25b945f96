package render

import (
	"bytes"
	"testing"

	"github.com/matzehuels/collatz/pkg/errors"
)

const tinySVG = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><circle cx="5" cy="5" r="4"/></svg>`

func TestConvert_MissingTool(t *testing.T) {
	if Available() {
		t.Skip("rsvg-convert is installed")
	}
	if _, err := ToPDF([]byte(tinySVG)); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ToPDF error = %v, want UNSUPPORTED", err)
	}
	if _, err := ToPNG([]byte(tinySVG), 2); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ToPNG error = %v, want UNSUPPORTED", err)
	}
}

func TestConvert(t *testing.T) {
	if !Available() {
		t.Skip("rsvg-convert not installed")
	}
	pdf, err := ToPDF([]byte(tinySVG))
	if err != nil {
		t.Fatalf("ToPDF: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
	png, err := ToPNG([]byte(tinySVG), 0)
	if err != nil {
		t.Fatalf("ToPNG: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}
