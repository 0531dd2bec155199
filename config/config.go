// Package config loads isoslice scene files.
//
// A scene file is YAML. Keys it leaves out keep the embedded defaults, so the
// smallest useful scene lists just its surfaces.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/isoslice"
	"github.com/gogpu/isoslice/field"
	"github.com/gogpu/isoslice/visual"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid scene")

// Config holds a scene: grid metrics, plane setup, field generator settings
// and the surfaces to slice.
type Config struct {
	Grid       GridConfig       `yaml:"grid"`
	Plane      PlaneConfig      `yaml:"plane"`
	Field      FieldConfig      `yaml:"field"`
	Template   TemplateConfig   `yaml:"template"`
	Simulation SimulationConfig `yaml:"simulation"`
	Surfaces   []SurfaceConfig  `yaml:"surfaces"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// GridConfig holds the grid metrics.
type GridConfig struct {
	PointsPerChunk int `yaml:"points_per_chunk"`
	NumThreads     int `yaml:"num_threads"`
}

// PlaneConfig holds the plane's initial pose and behavior.
type PlaneConfig struct {
	Position    [3]float64 `yaml:"position"`
	Rotation    [3]float64 `yaml:"rotation"` // Euler degrees
	Orientation string     `yaml:"orientation"`
	Proximity   float64    `yaml:"proximity"`
	Selection   string     `yaml:"selection"`
	RetainPool  bool       `yaml:"retain_pool"`
	CPUOnly     bool       `yaml:"cpu_only"`
}

// FieldConfig holds field generator parameters.
type FieldConfig struct {
	Seed       int64   `yaml:"seed"`
	NoiseScale float64 `yaml:"noise_scale"`
	PadVolume  bool    `yaml:"pad_volume"`
}

// TemplateConfig names the segment visual prototype. An empty name disables
// it, which makes every render skip its segments.
type TemplateConfig struct {
	Name string `yaml:"name"`
	Mesh string `yaml:"mesh"`
}

// SimulationConfig drives headless runs.
type SimulationConfig struct {
	Ticks int        `yaml:"ticks"`
	Step  [3]float64 `yaml:"step"` // handle movement per tick
}

// SurfaceConfig describes one implicit surface.
type SurfaceConfig struct {
	Name        string     `yaml:"name"`
	Position    [3]float64 `yaml:"position"`
	Size        float64    `yaml:"size"` // grid units
	Function    string     `yaml:"function"`
	Orientation string     `yaml:"orientation"`
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	Metrics      isoslice.Metrics
	Mode         isoslice.OrientationMode
	Policy       isoslice.SelectionPolicy
	Pose         isoslice.Pose
	Step         isoslice.Vec3
	Surfaces     []*isoslice.Surface
	SurfaceIndex map[string]int // name -> index into Surfaces
}

var functionNames = map[string]int{
	"sphere":   field.FuncSphere,
	"box":      field.FuncBox,
	"cylinder": field.FuncCylinder,
	"noise":    field.FuncNoise,
}

var orientationNames = map[string]int{
	"":     field.OrientNone,
	"none": field.OrientNone,
	"x90":  field.OrientX90,
	"y90":  field.OrientY90,
	"z90":  field.OrientZ90,
}

// Load loads a scene from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	if path == "" {
		return Parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a scene over the embedded defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if len(data) > 0 {
		// Unmarshal into same struct - only overwrites fields present in data
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived validates the scene and fills Derived.
func (c *Config) computeDerived() error {
	d := &c.Derived

	d.Metrics = isoslice.Metrics{PointsPerChunk: c.Grid.PointsPerChunk, NumThreads: c.Grid.NumThreads}
	if err := d.Metrics.Validate(); err != nil {
		return fmt.Errorf("%w: grid: %w", ErrInvalid, err)
	}

	mode, err := isoslice.ParseOrientationMode(c.Plane.Orientation)
	if err != nil {
		return fmt.Errorf("%w: plane: %w", ErrInvalid, err)
	}
	d.Mode = mode

	policy, err := isoslice.ParseSelectionPolicy(c.Plane.Selection)
	if err != nil {
		return fmt.Errorf("%w: plane: %w", ErrInvalid, err)
	}
	d.Policy = policy

	if c.Plane.Proximity <= 0 {
		return fmt.Errorf("%w: plane: proximity %v must be positive", ErrInvalid, c.Plane.Proximity)
	}
	if c.Simulation.Ticks < 0 {
		return fmt.Errorf("%w: simulation: negative ticks %d", ErrInvalid, c.Simulation.Ticks)
	}

	r := c.Plane.Rotation
	d.Pose = isoslice.Pose{Position: vec(c.Plane.Position), Rotation: isoslice.Euler(r[0], r[1], r[2])}
	d.Step = vec(c.Simulation.Step)

	d.Surfaces = make([]*isoslice.Surface, 0, len(c.Surfaces))
	d.SurfaceIndex = make(map[string]int, len(c.Surfaces))
	for i, sc := range c.Surfaces {
		s, err := sc.surface(i)
		if err != nil {
			return err
		}
		if _, dup := d.SurfaceIndex[s.Name]; dup {
			return fmt.Errorf("%w: duplicate surface name %q", ErrInvalid, s.Name)
		}
		d.SurfaceIndex[s.Name] = len(d.Surfaces)
		d.Surfaces = append(d.Surfaces, s)
	}
	return nil
}

func (sc SurfaceConfig) surface(i int) (*isoslice.Surface, error) {
	name := sc.Name
	if name == "" {
		name = fmt.Sprintf("surface-%d", i)
	}
	fn, ok := functionNames[sc.Function]
	if !ok {
		return nil, fmt.Errorf("%w: surface %q: %w %q", ErrInvalid, name, field.ErrUnknownFunction, sc.Function)
	}
	orient, ok := orientationNames[sc.Orientation]
	if !ok {
		return nil, fmt.Errorf("%w: surface %q: %w %q", ErrInvalid, name, field.ErrUnknownOrientation, sc.Orientation)
	}
	if sc.Size <= 0 {
		return nil, fmt.Errorf("%w: surface %q: %w", ErrInvalid, name, field.ErrInvalidSize)
	}
	return &isoslice.Surface{
		Name:        name,
		Position:    vec(sc.Position),
		Size:        sc.Size,
		Function:    fn,
		Orientation: orient,
	}, nil
}

// Generator returns the field generator for the scene.
func (c *Config) Generator() *field.Generator {
	return field.NewGenerator(field.Config{
		PointsPerChunk: c.Grid.PointsPerChunk,
		Seed:           c.Field.Seed,
		NoiseScale:     c.Field.NoiseScale,
		PadVolume:      c.Field.PadVolume,
	})
}

// SegmentTemplate returns the segment visual prototype, or nil when disabled.
func (c *Config) SegmentTemplate() *visual.Template {
	if c.Template.Name == "" {
		return nil
	}
	return &visual.Template{Name: c.Template.Name, Mesh: c.Template.Mesh}
}

// Registry returns a registry holding the scene's surfaces in file order.
func (c *Config) Registry() *isoslice.Registry {
	r := isoslice.NewRegistry()
	r.SetProximity(c.Plane.Proximity)
	r.SetPolicy(c.Derived.Policy)
	for _, s := range c.Derived.Surfaces {
		r.Attach(s)
	}
	return r
}

// PlaneOptions converts the scene to plane options. Extra options are
// appended and win over the scene's.
func (c *Config) PlaneOptions(extra ...isoslice.PlaneOption) []isoslice.PlaneOption {
	opts := []isoslice.PlaneOption{
		isoslice.WithMetrics(c.Derived.Metrics),
		isoslice.WithRegistry(c.Registry()),
		isoslice.WithPose(c.Derived.Pose),
		isoslice.WithOrientation(c.Derived.Mode),
		isoslice.WithTemplate(c.SegmentTemplate()),
		isoslice.WithRetainedPool(c.Plane.RetainPool),
	}
	if c.Plane.CPUOnly {
		opts = append(opts, isoslice.WithCPUKernel())
	}
	return append(opts, extra...)
}

// NewPlane builds the scene's plane over its field generator.
func (c *Config) NewPlane(extra ...isoslice.PlaneOption) (*isoslice.Plane, error) {
	return isoslice.NewPlane(c.Generator(), c.PlaneOptions(extra...)...)
}

func vec(a [3]float64) isoslice.Vec3 {
	return isoslice.V3(a[0], a[1], a[2])
}
