package decompose

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/image-decompose/internal/extract"
	"github.com/ironsheep/image-decompose/internal/repair"
)

// Config carries every tunable of the decomposition engine. It is built
// once and passed into the controller; nothing reads ambient process
// state.
type Config struct {
	// MaxDepth is the hard recursion backstop. The root frame is depth
	// zero.
	MaxDepth int `yaml:"max_depth"`

	// MinSize is the minimum element width and height, in pixels, for
	// recursion into its sub-image.
	MinSize float64 `yaml:"min_size"`

	// MinArea is the minimum element area, in square pixels, for
	// recursion.
	MinArea float64 `yaml:"min_area"`

	// MaxCoverageRatio disqualifies elements covering more than this
	// fraction of their parent frame; such an element is effectively
	// the frame itself.
	MaxCoverageRatio float64 `yaml:"max_coverage_ratio"`

	// ContainerTypes are the element type tags whose sub-images may be
	// analyzed recursively.
	ContainerTypes []string `yaml:"container_types"`

	// EraseCoverageCutoff excludes near-whole-frame boxes from the
	// background repair set; they are false-positive detections.
	EraseCoverageCutoff float64 `yaml:"erase_coverage_cutoff"`

	// EraseMargin expands every erase box outward by this many pixels
	// so repair covers stale anti-aliased edges.
	EraseMargin float64 `yaml:"erase_margin"`

	// MaxConcurrency bounds the batch worker pool.
	MaxConcurrency int `yaml:"max_concurrency"`

	// WorkDir is where per-frame artifacts (crops, clean backgrounds,
	// masks) are written. Empty disables artifact output.
	WorkDir string `yaml:"work_dir"`

	// SaveMasks writes each frame's erase mask PNG next to its clean
	// background.
	SaveMasks bool `yaml:"save_masks"`

	// OCRLanguage selects the Tesseract language model.
	OCRLanguage string `yaml:"ocr_language"`

	// Layout configures the Document AI layout extraction backend.
	Layout extract.LayoutConfig `yaml:"layout"`

	// Generative configures the remote inpainting backend.
	Generative repair.GenerativeConfig `yaml:"generative"`
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MaxDepth:            3,
		MinSize:             200,
		MinArea:             40000,
		MaxCoverageRatio:    0.85,
		ContainerTypes:      []string{"image", "figure", "chart", "table"},
		EraseCoverageCutoff: 0.95,
		EraseMargin:         10,
		MaxConcurrency:      4,
		OCRLanguage:         "eng",
	}
}

// Validate rejects configurations that would make the recursion policy
// or batch pool meaningless.
func (c Config) Validate() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0, got %d", c.MaxDepth)
	}
	if c.MinSize <= 0 {
		return fmt.Errorf("min_size must be positive, got %g", c.MinSize)
	}
	if c.MinArea <= 0 {
		return fmt.Errorf("min_area must be positive, got %g", c.MinArea)
	}
	if c.MaxCoverageRatio <= 0 || c.MaxCoverageRatio > 1 {
		return fmt.Errorf("max_coverage_ratio must be in (0,1], got %g", c.MaxCoverageRatio)
	}
	if c.EraseCoverageCutoff <= 0 || c.EraseCoverageCutoff > 1 {
		return fmt.Errorf("erase_coverage_cutoff must be in (0,1], got %g", c.EraseCoverageCutoff)
	}
	if c.EraseMargin < 0 {
		return fmt.Errorf("erase_margin must be >= 0, got %g", c.EraseMargin)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be >= 1, got %d", c.MaxConcurrency)
	}
	if len(c.ContainerTypes) == 0 {
		return fmt.Errorf("container_types must not be empty")
	}
	return nil
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// isContainer reports whether the type tag may hold an analyzable
// sub-image.
func (c Config) isContainer(typeTag string) bool {
	for _, t := range c.ContainerTypes {
		if t == typeTag {
			return true
		}
	}
	return false
}
