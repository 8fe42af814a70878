package main

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/hellovr/pkg/formats"
)

func writeQuad(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quad.model")
	var out bytes.Buffer
	if err := cmdQuad(&out, []string{path}); err != nil {
		t.Fatalf("quad failed: %v", err)
	}
	return path
}

func TestCmdInfo(t *testing.T) {
	path := writeQuad(t)

	var out bytes.Buffer
	if err := cmdInfo(&out, []string{path}); err != nil {
		t.Fatalf("info failed: %v", err)
	}
	for _, want := range []string{"Vertices:  4", "Triangles: 2", "Texture:   2x2", "(-0.5000, -0.5000, 0.0000)"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("missing %q in:\n%s", want, out.String())
		}
	}
}

func TestCmdPlan(t *testing.T) {
	path := writeQuad(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"defaults", []string{path}, []string{"363750 replicas", "792166 replicas", "Draw:            1 replicas, 6 indices"}},
		{"small buffers", []string{"-vb", "1120", "-ib", "240", "-draw", "100", path}, []string{"10 replicas of 112 bytes (0 unused)", "Draw:            4 replicas, 24 indices"}},
		{"workaround", []string{"-workaround", path}, []string{"Aux components:  2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := cmdPlan(&out, tt.args); err != nil {
				t.Fatalf("plan failed: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("missing %q in:\n%s", want, out.String())
				}
			}
		})
	}

	var out bytes.Buffer
	if err := cmdPlan(&out, []string{"-vb", "10", path}); err == nil {
		t.Error("expected error for a buffer smaller than the model")
	}
}

func TestCmdRetexture(t *testing.T) {
	in := writeQuad(t)
	dir := t.TempDir()

	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	img.SetRGBA(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
	imgPath := filepath.Join(dir, "skin.png")
	if err := os.WriteFile(imgPath, buf.Bytes(), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	outPath := filepath.Join(dir, "out.model")
	var out bytes.Buffer
	if err := cmdRetexture(&out, []string{in, imgPath, outPath}); err != nil {
		t.Fatalf("retexture failed: %v", err)
	}

	m, err := formats.LoadRenderModel(outPath)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if m.Texture.Width != 8 || m.Texture.Height != 4 {
		t.Errorf("texture size: got %dx%d", m.Texture.Width, m.Texture.Height)
	}
	if !bytes.Equal(m.Texture.Pixels[:4], []byte{10, 20, 30, 255}) {
		t.Errorf("first pixel: got %v", m.Texture.Pixels[:4])
	}
	if len(m.Vertices) != 4 {
		t.Errorf("geometry changed: %d vertices", len(m.Vertices))
	}
}

func TestUsageErrors(t *testing.T) {
	cmds := map[string]func(*bytes.Buffer) error{
		"info":      func(w *bytes.Buffer) error { return cmdInfo(w, nil) },
		"plan":      func(w *bytes.Buffer) error { return cmdPlan(w, nil) },
		"plan flag": func(w *bytes.Buffer) error { return cmdPlan(w, []string{"-bogus"}) },
		"quad":      func(w *bytes.Buffer) error { return cmdQuad(w, []string{"a", "b"}) },
		"retexture": func(w *bytes.Buffer) error { return cmdRetexture(w, []string{"a"}) },
	}
	for name, run := range cmds {
		var out bytes.Buffer
		if err := run(&out); !errors.Is(err, errUsage) {
			t.Errorf("%s: expected usage error, got %v", name, err)
		}
	}
}

func TestCmdInfoMissingFile(t *testing.T) {
	var out bytes.Buffer
	err := cmdInfo(&out, []string{filepath.Join(t.TempDir(), "missing.model")})
	if err == nil || errors.Is(err, errUsage) {
		t.Errorf("expected load error, got %v", err)
	}
}
