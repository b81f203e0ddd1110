package layers

import "fmt"

// Image is a raster buffer storing painted layer alpha. A shared image
// packs up to three layers, one per color channel; a dedicated image
// belongs to a single layer.
type Image struct {
	Name   string
	Width  int
	Height int

	pixels []float32
	users  [3]string
	shared bool
}

// Pixels returns the backing samples.
func (img *Image) Pixels() []float32 {
	return img.pixels
}

// Shared reports whether the image packs multiple layers.
func (img *Image) Shared() bool {
	return img.shared
}

// UserCount returns how many layers currently occupy the image.
func (img *Image) UserCount() int {
	if !img.shared {
		if img.users[0] != "" {
			return 1
		}
		return 0
	}
	count := 0
	for _, user := range img.users {
		if user != "" {
			count++
		}
	}
	return count
}

func (img *Image) freeChannel() int {
	for i, user := range img.users {
		if user == "" {
			return i
		}
	}
	return -1
}

// ImagePool manages the raster buffers behind paint layers.
type ImagePool interface {
	// AllocateImageToLayer binds alpha storage to layer. A no-op when the
	// layer already has an image.
	AllocateImageToLayer(layer *Layer) error
	// DeallocateLayerImage releases layer's alpha storage, dropping the
	// backing image once its last user is gone.
	DeallocateLayerImage(layer *Layer)
}

// MemoryImagePool keeps images in process memory. With shared images
// enabled it packs up to three layers per buffer, one color channel each.
type MemoryImagePool struct {
	prefs  Preferences
	images []*Image
	seq    int
}

// NewMemoryImagePool constructs a pool sized by prefs.
func NewMemoryImagePool(prefs Preferences) *MemoryImagePool {
	if prefs.ImageWidth <= 0 || prefs.ImageHeight <= 0 {
		defaults := DefaultPreferences()
		prefs.ImageWidth = defaults.ImageWidth
		prefs.ImageHeight = defaults.ImageHeight
	}
	return &MemoryImagePool{prefs: prefs}
}

// Images returns the pool's live images.
func (p *MemoryImagePool) Images() []*Image {
	out := make([]*Image, len(p.images))
	copy(out, p.images)
	return out
}

func (p *MemoryImagePool) AllocateImageToLayer(layer *Layer) error {
	if layer == nil || !layer.IsInitialized() {
		return fmt.Errorf("%w: cannot allocate an image to an uninitialized layer", ErrInvalidArgument)
	}
	if layer.HasImage() {
		return nil
	}

	if p.prefs.SharedImages {
		img := p.sharedImageWithFreeChannel()
		channel := img.freeChannel()
		img.users[channel] = layer.Identifier()
		layer.setImage(img, channel)
		return nil
	}

	img := p.newImage(false)
	img.users[0] = layer.Identifier()
	layer.setImage(img, -1)
	return nil
}

func (p *MemoryImagePool) DeallocateLayerImage(layer *Layer) {
	if layer == nil || !layer.HasImage() {
		return
	}
	img := layer.image
	slot := layer.imageChannel
	if slot < 0 {
		slot = 0
	}
	if slot < len(img.users) {
		img.users[slot] = ""
	}
	if img.UserCount() == 0 {
		p.dropImage(img)
	}
	layer.setImage(nil, -1)
}

func (p *MemoryImagePool) sharedImageWithFreeChannel() *Image {
	for _, img := range p.images {
		if img.shared && img.freeChannel() >= 0 {
			return img
		}
	}
	return p.newImage(true)
}

func (p *MemoryImagePool) newImage(shared bool) *Image {
	p.seq++
	prefix := ".ml_layer_data"
	if shared {
		prefix = ".ml_shared_data"
	}
	img := &Image{
		Name:   fmt.Sprintf("%s.%03d", prefix, p.seq),
		Width:  p.prefs.ImageWidth,
		Height: p.prefs.ImageHeight,
		pixels: make([]float32, p.prefs.ImageWidth*p.prefs.ImageHeight*4),
		shared: shared,
	}
	p.images = append(p.images, img)
	return img
}

func (p *MemoryImagePool) dropImage(target *Image) {
	for i, img := range p.images {
		if img == target {
			p.images = append(p.images[:i], p.images[i+1:]...)
			return
		}
	}
}
