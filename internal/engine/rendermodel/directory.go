package rendermodel

import (
	"fmt"
	"path/filepath"
	"sort"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/hellovr/internal/logger"
	"github.com/Faultbox/hellovr/pkg/formats"
)

// Loader returns the render model data for a model name.
type Loader func(name string) (*formats.RenderModel, error)

// FileLoader loads models from dir/<name><ext>.
func FileLoader(dir, ext string) Loader {
	return func(name string) (*formats.RenderModel, error) {
		return formats.LoadRenderModel(filepath.Join(dir, name+ext))
	}
}

// SlotRange maps the inclusive device slot range [First, Last] to a model name.
type SlotRange struct {
	First int    `yaml:"first"`
	Last  int    `yaml:"last"`
	Model string `yaml:"model"`
}

// SlotMap maps device slots to model names. The first matching range wins.
type SlotMap []SlotRange

// DefaultSlotMap maps the controller slots and the base station slots.
func DefaultSlotMap() SlotMap {
	return SlotMap{
		{First: 0, Last: 2, Model: "vr_controller_vive_1_5"},
		{First: 3, Last: 4, Model: "lh_basestation_vive"},
	}
}

// ModelFor returns the model name for a slot. Unmapped slots return false.
func (sm SlotMap) ModelFor(slot int) (string, bool) {
	for _, r := range sm {
		if slot >= r.First && slot <= r.Last && r.Model != "" {
			return r.Model, true
		}
	}
	return "", false
}

// Directory owns every loaded render model, one per name, and tracks which
// model each device slot renders.
type Directory struct {
	dev    Device
	load   Loader
	slots  SlotMap
	opts   Options
	byName map[string]*Model
	bySlot map[int]*Model
}

// NewDirectory creates an empty directory.
func NewDirectory(dev Device, load Loader, slots SlotMap, opts Options) *Directory {
	return &Directory{
		dev:    dev,
		load:   load,
		slots:  slots,
		opts:   opts,
		byName: make(map[string]*Model),
		bySlot: make(map[int]*Model),
	}
}

// Options returns the options used for new uploads.
func (d *Directory) Options() Options {
	return d.opts
}

// Find returns the loaded model for name.
func (d *Directory) Find(name string) (*Model, bool) {
	m, ok := d.byName[name]
	return m, ok
}

// FindOrLoad returns the loaded model for name, loading and uploading it on first use.
func (d *Directory) FindOrLoad(name string) (*Model, error) {
	if m, ok := d.byName[name]; ok {
		return m, nil
	}

	data, err := d.load(name)
	if err != nil {
		return nil, fmt.Errorf("loading render model %s: %w", name, err)
	}
	m, err := Upload(d.dev, name, data, d.opts)
	if err != nil {
		return nil, err
	}

	d.byName[name] = m
	return m, nil
}

// SetupForDevice loads the model for a device slot. Unmapped slots are not an error.
func (d *Directory) SetupForDevice(slot int) error {
	name, ok := d.slots.ModelFor(slot)
	if !ok {
		delete(d.bySlot, slot)
		return nil
	}

	m, err := d.FindOrLoad(name)
	if err != nil {
		delete(d.bySlot, slot)
		return fmt.Errorf("device slot %d: %w", slot, err)
	}
	d.bySlot[slot] = m
	return nil
}

// Setup releases every loaded model and then loads models for slots with opts.
// A slot that fails to load is skipped; all failures are returned together.
func (d *Directory) Setup(slots []int, opts Options) error {
	d.ReleaseAll()
	d.opts = opts

	var errs error
	for _, slot := range slots {
		if err := d.SetupForDevice(slot); err != nil {
			logger.Warn("unable to load render model for device", zap.Int("slot", slot), zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}

	logger.Info("render models ready",
		zap.Int("models", len(d.byName)),
		zap.Int("slots", len(d.bySlot)),
		zap.Bool("workaround", opts.UseWorkaround),
	)
	return errs
}

// ForSlot returns the model rendered for a device slot.
func (d *Directory) ForSlot(slot int) (*Model, bool) {
	m, ok := d.bySlot[slot]
	return m, ok
}

// Slots returns the device slots that have a model, in ascending order.
func (d *Directory) Slots() []int {
	slots := make([]int, 0, len(d.bySlot))
	for slot := range d.bySlot {
		slots = append(slots, slot)
	}
	sort.Ints(slots)
	return slots
}

// Models returns the loaded model names in ascending order.
func (d *Directory) Models() []string {
	names := make([]string, 0, len(d.byName))
	for name := range d.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of loaded models.
func (d *Directory) Len() int {
	return len(d.byName)
}

// ReleaseAll frees every loaded model and forgets all slot assignments.
func (d *Directory) ReleaseAll() {
	for name, m := range d.byName {
		m.Release()
		delete(d.byName, name)
	}
	for slot := range d.bySlot {
		delete(d.bySlot, slot)
	}
}
