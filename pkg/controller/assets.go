package controller

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/oxygene76/orrery/pkg/assets"
)

// assetResult is a finished load waiting to be applied between frames
type assetResult struct {
	target  uuid.UUID
	kind    string
	name    string
	texture *assets.Texture
	model   *assets.Model
	err     error
}

func (c *Controller) loadTexture(target uuid.UUID, name string) {
	if c.loader == nil || name == "" {
		return
	}
	c.startLoad(func(ctx context.Context) assetResult {
		tex, err := c.loader.LoadTexture(ctx, name)
		return assetResult{target: target, kind: "texture", name: name, texture: tex, err: err}
	})
}

func (c *Controller) loadModel(target uuid.UUID, kind string) {
	if c.loader == nil {
		return
	}
	c.startLoad(func(ctx context.Context) assetResult {
		m, err := c.loader.LoadModel(ctx, kind)
		return assetResult{target: target, kind: "model", name: kind, model: m, err: err}
	})
}

func (c *Controller) startLoad(load func(ctx context.Context) assetResult) {
	c.loads.Add(1)
	go func() {
		defer c.loads.Done()

		ctx := c.ctx
		if c.loadTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.loadTimeout)
			defer cancel()
		}

		res := load(ctx)
		select {
		case c.results <- res:
		case <-c.ctx.Done():
		}
	}()
}

// applyResults drains finished loads without blocking
func (c *Controller) applyResults() {
	for {
		select {
		case res := <-c.results:
			c.applyResult(res)
		default:
			return
		}
	}
}

// Settle waits for every outstanding load and applies the results. It
// must be called from the owning goroutine and only when nothing else
// starts loads concurrently.
func (c *Controller) Settle() {
	done := make(chan struct{})
	go func() {
		c.loads.Wait()
		close(done)
	}()

	for {
		select {
		case res := <-c.results:
			c.applyResult(res)
		case <-done:
			c.applyResults()
			return
		}
	}
}

func (c *Controller) applyResult(res assetResult) {
	if res.err != nil {
		if !errors.Is(res.err, assets.ErrLoadFailed) {
			log.Printf("Warning: %s %s not loaded: %v", res.kind, res.name, res.err)
			return
		}
		log.Printf("Warning: %v, using fallback", res.err)
	}

	var err error
	if res.kind == "texture" {
		if res.texture == nil {
			return
		}
		c.observer.ObserveAsset(res.kind, res.texture.Fallback)
		err = c.state.ApplyTextureByID(res.target, res.texture)
	} else {
		if res.model == nil {
			return
		}
		c.observer.ObserveAsset(res.kind, res.model.Fallback)
		err = c.state.AttachModel(res.target, res.model)
	}

	// the entity may have been removed while its asset was loading
	if err != nil && c.verbose {
		log.Printf("Dropping %s %s: %v", res.kind, res.name, err)
	}
}
