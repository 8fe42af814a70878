// modeltool is a CLI utility for inspecting and creating .model render model files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/hellovr/internal/engine/rendermodel"
	"github.com/Faultbox/hellovr/internal/engine/texture"
	"github.com/Faultbox/hellovr/pkg/formats"
)

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(os.Stdout, args)
	case "plan":
		err = cmdPlan(os.Stdout, args)
	case "quad":
		err = cmdQuad(os.Stdout, args)
	case "retexture":
		err = cmdRetexture(os.Stdout, args)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if errors.Is(err, errUsage) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `modeltool - render model (.model) utility

Usage:
  modeltool <command> [options]

Commands:
  info <file.model>                           Show vertex, triangle and texture counts
  plan [options] <file.model>                 Show how the model is replicated into GPU buffers
  quad <out.model>                            Write a textured sample quad
  retexture <in.model> <image> <out.model>    Replace the texture (png, jpeg, bmp, tga)

Plan options:
  -vb N         vertex buffer bytes (default 40740000)
  -ib N         index buffer bytes (default 19012000)
  -draw N       replicas covered by each draw (default 1)
  -workaround   declare the auxiliary attribute with two components

Examples:
  modeltool info vr_controller_vive_1_5.model
  modeltool plan -draw 8 vr_controller_vive_1_5.model
  modeltool quad quad.model`)
}

func usage(format string) error {
	return fmt.Errorf("%w: modeltool %s", errUsage, format)
}

func cmdInfo(w io.Writer, args []string) error {
	if len(args) != 1 {
		return usage("info <file.model>")
	}

	m, err := formats.LoadRenderModel(args[0])
	if err != nil {
		return err
	}

	lo, hi := m.Bounds()
	fmt.Fprintf(w, "Model:     %s\n", args[0])
	fmt.Fprintf(w, "Vertices:  %d\n", len(m.Vertices))
	fmt.Fprintf(w, "Triangles: %d\n", m.TriangleCount())
	fmt.Fprintf(w, "Texture:   %dx%d\n", m.Texture.Width, m.Texture.Height)
	fmt.Fprintf(w, "Bounds:    (%.4f, %.4f, %.4f) - (%.4f, %.4f, %.4f)\n",
		lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
	return nil
}

func cmdPlan(w io.Writer, args []string) error {
	defaults := rendermodel.DefaultOptions()

	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	vb := fs.Int("vb", defaults.VertexBufferBytes, "vertex buffer bytes")
	ib := fs.Int("ib", defaults.IndexBufferBytes, "index buffer bytes")
	draw := fs.Int("draw", defaults.DrawReplicas, "replicas per draw")
	workaround := fs.Bool("workaround", false, "two-component auxiliary attribute")
	if err := fs.Parse(args); err != nil {
		return usage("plan [-vb N] [-ib N] [-draw N] [-workaround] <file.model>")
	}
	if fs.NArg() != 1 {
		return usage("plan [-vb N] [-ib N] [-draw N] [-workaround] <file.model>")
	}

	m, err := formats.LoadRenderModel(fs.Arg(0))
	if err != nil {
		return err
	}

	opts := rendermodel.Options{
		VertexBufferBytes: *vb,
		IndexBufferBytes:  *ib,
		UseWorkaround:     *workaround,
		DrawReplicas:      *draw,
	}
	l, err := rendermodel.PlanLayout(len(m.Vertices), len(m.Indices), opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Vertex buffer:   %d bytes, %d replicas of %d bytes (%d unused)\n",
		opts.VertexBufferBytes, l.VertexReplicas, l.VertexBlockBytes,
		opts.VertexBufferBytes-l.VertexReplicas*l.VertexBlockBytes)
	fmt.Fprintf(w, "Index buffer:    %d bytes, %d replicas of %d bytes (%d unused)\n",
		opts.IndexBufferBytes, l.IndexReplicas, l.IndexBlockBytes,
		opts.IndexBufferBytes-l.IndexReplicas*l.IndexBlockBytes)
	fmt.Fprintf(w, "Replica stride:  %d vertices\n", l.ReplicaVertexStride)
	fmt.Fprintf(w, "Aux components:  %d\n", opts.AuxComponents())
	fmt.Fprintf(w, "Draw:            %d replicas, %d indices\n", l.DrawReplicas, l.DrawIndexCount)
	return nil
}

func cmdQuad(w io.Writer, args []string) error {
	if len(args) != 1 {
		return usage("quad <out.model>")
	}
	if err := formats.SaveRenderModel(args[0], formats.NewQuad()); err != nil {
		return err
	}
	fmt.Fprintf(w, "Wrote %s\n", args[0])
	return nil
}

func cmdRetexture(w io.Writer, args []string) error {
	if len(args) != 3 {
		return usage("retexture <in.model> <image> <out.model>")
	}

	m, err := formats.LoadRenderModel(args[0])
	if err != nil {
		return err
	}
	img, err := texture.Load(args[1])
	if err != nil {
		return err
	}

	b := img.Bounds()
	m.Texture = texture.ToRenderModelTexture(img)
	if int(m.Texture.Width) != b.Dx() || int(m.Texture.Height) != b.Dy() {
		fmt.Fprintf(w, "Scaled %dx%d to %dx%d\n", b.Dx(), b.Dy(), m.Texture.Width, m.Texture.Height)
	}

	if err := formats.SaveRenderModel(args[2], m); err != nil {
		return err
	}
	fmt.Fprintf(w, "Wrote %s (%dx%d texture)\n", args[2], m.Texture.Width, m.Texture.Height)
	return nil
}
