package shader

import (
	_ "embed"
	"fmt"
	"strings"
)

// ControllerVertexShader transforms colored controller axis lines.
//
//go:embed glsl/controller.vert
var ControllerVertexShader string

// ControllerFragmentShader outputs the interpolated line color.
//
//go:embed glsl/controller.frag
var ControllerFragmentShader string

// RenderModelVertexShader transforms render model vertices by the matrix uniform.
//
//go:embed glsl/rendermodel.vert
var RenderModelVertexShader string

// RenderModelFragmentShader samples the diffuse texture.
//
//go:embed glsl/rendermodel.frag
var RenderModelFragmentShader string

// Source is a named vertex and fragment shader pair.
type Source struct {
	Name     string
	Vertex   string
	Fragment string
}

// Controller returns the controller program sources.
func Controller() Source {
	return Source{Name: "controller", Vertex: ControllerVertexShader, Fragment: ControllerFragmentShader}
}

// RenderModel returns the render model program sources.
func RenderModel() Source {
	return Source{Name: "render model", Vertex: RenderModelVertexShader, Fragment: RenderModelFragmentShader}
}

// Check reports sources that cannot compile as a matrix program before they
// reach the driver.
func (s Source) Check() error {
	for stage, src := range map[string]string{"vertex": s.Vertex, "fragment": s.Fragment} {
		if !strings.HasPrefix(strings.TrimSpace(src), "#version 410") {
			return fmt.Errorf("%s %s shader: missing #version 410 directive", s.Name, stage)
		}
	}
	if !strings.Contains(s.Vertex, "uniform mat4 "+MatrixUniform+";") {
		return fmt.Errorf("%s vertex shader: %w", s.Name, ErrNoMatrixUniform)
	}
	return nil
}
