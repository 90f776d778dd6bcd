package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	errorsmod "cosmossdk.io/errors"
)

// Texture is an opaque handle to a surface image. The kernel stores it on an
// entity and hands it back to the renderer; it never reads pixel data.
type Texture struct {
	Name     string `json:"name"`
	Path     string `json:"path,omitempty"`
	Color    Color  `json:"color"`
	Fallback bool   `json:"fallback"`
}

// Model is an opaque handle to a decorative mesh
type Model struct {
	Kind     string  `json:"kind"`
	Path     string  `json:"path,omitempty"`
	Scale    float64 `json:"scale"`
	Shape    string  `json:"shape,omitempty"`
	Fallback bool    `json:"fallback"`
}

// Loader fetches assets for the renderer.
//
// A failed load is not fatal: implementations return the deterministic
// fallback together with an error wrapping ErrLoadFailed, and callers keep
// the fallback. Only ErrUnknownKind comes back without an asset.
type Loader interface {
	LoadTexture(ctx context.Context, name string) (*Texture, error)
	LoadModel(ctx context.Context, kind string) (*Model, error)
}

// FallbackTexture returns the flat-color texture used for name
func FallbackTexture(name string) *Texture {
	color, ok := fallbackColors[name]
	if !ok {
		color = defaultFallbackColor
	}
	return &Texture{Name: name, Color: color, Fallback: true}
}

// FallbackModel returns the wireframe primitive used for kind
func FallbackModel(mk ModelKind) *Model {
	return &Model{Kind: mk.Name, Scale: mk.Scale, Shape: mk.Shape, Fallback: true}
}

// DirLoader resolves assets against directories on disk
type DirLoader struct {
	TextureDir string
	ModelDir   string
}

// NewDirLoader creates a loader rooted at the given directories
func NewDirLoader(textureDir, modelDir string) *DirLoader {
	return &DirLoader{TextureDir: textureDir, ModelDir: modelDir}
}

// LoadTexture looks for <TextureDir>/<name>.jpg
func (l *DirLoader) LoadTexture(ctx context.Context, name string) (*Texture, error) {
	path := filepath.Join(l.TextureDir, name+".jpg")
	if err := l.check(ctx, path); err != nil {
		return FallbackTexture(name), errorsmod.Wrapf(ErrLoadFailed, "texture %s: %v", name, err)
	}

	tex := FallbackTexture(name)
	tex.Path = path
	tex.Fallback = false
	return tex, nil
}

// LoadModel looks for the catalog file of kind under ModelDir
func (l *DirLoader) LoadModel(ctx context.Context, kind string) (*Model, error) {
	mk, err := LookupModelKind(kind)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(l.ModelDir, mk.File)
	if err := l.check(ctx, path); err != nil {
		return FallbackModel(mk), errorsmod.Wrapf(ErrLoadFailed, "model %s: %v", kind, err)
	}

	return &Model{Kind: mk.Name, Path: path, Scale: mk.Scale}, nil
}

func (l *DirLoader) check(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s is empty", path)
	}
	return nil
}
