package shader

import (
	"errors"
	"strings"
	"testing"
)

func TestEmbeddedSources(t *testing.T) {
	for _, src := range []Source{Controller(), RenderModel()} {
		if err := src.Check(); err != nil {
			t.Errorf("%s: %v", src.Name, err)
		}
	}
}

func TestRenderModelAttributeLocations(t *testing.T) {
	// Locations must match the vertex layout declared by the uploader.
	for _, want := range []string{
		"layout(location = 0) in vec4 aPosition;",
		"layout(location = 1) in vec2 aTexCoord;",
		"layout(location = 2) in float aThirdAttribute;",
	} {
		if !strings.Contains(RenderModelVertexShader, want) {
			t.Errorf("render model vertex shader is missing %q", want)
		}
	}
	if !strings.Contains(RenderModelFragmentShader, "uniform sampler2D diffuse;") {
		t.Error("render model fragment shader is missing the diffuse sampler")
	}
}

func TestSourceCheck(t *testing.T) {
	tests := []struct {
		name    string
		src     Source
		wantErr bool
		noMat   bool
	}{
		{"valid", RenderModel(), false, false},
		{"no version", Source{Name: "x", Vertex: "uniform mat4 matrix;", Fragment: "#version 410\n"}, true, false},
		{"no matrix", Source{Name: "x", Vertex: "#version 410\nuniform mat4 mvp;\n", Fragment: "#version 410\n"}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.src.Check()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.noMat && !errors.Is(err, ErrNoMatrixUniform) {
				t.Errorf("expected ErrNoMatrixUniform, got %v", err)
			}
		})
	}
}
