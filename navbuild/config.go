package navbuild

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// Partition selects the region partitioning strategy of a build.
type Partition int

const (
	// PartitionWatershed grows regions from the distance field maxima.
	PartitionWatershed Partition = iota
	// PartitionMonotone sweeps the field into hole free regions.
	PartitionMonotone
	// PartitionLayers builds non-overlapping layer regions.
	PartitionLayers
)

var partitionNames = map[Partition]string{
	PartitionWatershed: "watershed",
	PartitionMonotone:  "monotone",
	PartitionLayers:    "layers",
}

func (p Partition) String() string {
	if name, ok := partitionNames[p]; ok {
		return name
	}
	return fmt.Sprintf("partition(%d)", int(p))
}

// ParsePartition maps the textual form of a partition back to its value.
func ParsePartition(s string) (Partition, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range partitionNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown partition %q (want watershed, monotone or layers)", s)
}

func (p Partition) MarshalYAML() (interface{}, error) {
	if _, ok := partitionNames[p]; !ok {
		return nil, fmt.Errorf("unknown partition %d", int(p))
	}
	return p.String(), nil
}

func (p *Partition) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParsePartition(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*p = parsed
	return nil
}

// Config holds the human facing build tunables. Lengths are in world units,
// AgentMaxSlope is in radians.
type Config struct {
	CellSize             float64   `yaml:"cell_size"`
	CellHeight           float64   `yaml:"cell_height"`
	AgentHeight          float64   `yaml:"agent_height"`
	AgentRadius          float64   `yaml:"agent_radius"`
	AgentMaxClimb        float64   `yaml:"agent_max_climb"`
	AgentMaxSlope        float64   `yaml:"agent_max_slope"`
	EdgeMaxLen           float64   `yaml:"edge_max_len"`
	EdgeMaxError         float64   `yaml:"edge_max_error"`
	RegionMinSize        float64   `yaml:"region_min_size"`
	RegionMergeSize      float64   `yaml:"region_merge_size"`
	VertsPerPoly         int       `yaml:"verts_per_poly"`
	DetailSampleDist     float64   `yaml:"detail_sample_dist"`
	DetailSampleMaxError float64   `yaml:"detail_sample_max_error"`
	Partition            Partition `yaml:"partition"`
}

// DefaultConfig returns the reference build settings.
func DefaultConfig() Config {
	return Config{
		CellSize:             0.3,
		CellHeight:           0.2,
		AgentHeight:          2.0,
		AgentRadius:          0.6,
		AgentMaxClimb:        0.9,
		AgentMaxSlope:        0.785398,
		EdgeMaxLen:           12,
		EdgeMaxError:         1.3,
		RegionMinSize:        8,
		RegionMergeSize:      20,
		VertsPerPoly:         6,
		DetailSampleDist:     6,
		DetailSampleMaxError: 1,
		Partition:            PartitionWatershed,
	}
}

const maxTunable = 30.0

// Validate checks every tunable against its accepted range.
func (c Config) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"cell_size", c.CellSize},
		{"cell_height", c.CellHeight},
	}
	for _, f := range positive {
		if !(f.value > 0 && f.value <= maxTunable) {
			return fmt.Errorf("%s must be in (0, %g], got %g", f.name, maxTunable, f.value)
		}
	}

	ranged := []struct {
		name  string
		value float64
	}{
		{"agent_height", c.AgentHeight},
		{"agent_radius", c.AgentRadius},
		{"agent_max_climb", c.AgentMaxClimb},
		{"edge_max_len", c.EdgeMaxLen},
		{"edge_max_error", c.EdgeMaxError},
		{"region_min_size", c.RegionMinSize},
		{"region_merge_size", c.RegionMergeSize},
		{"detail_sample_dist", c.DetailSampleDist},
		{"detail_sample_max_error", c.DetailSampleMaxError},
	}
	for _, f := range ranged {
		if !(f.value >= 0 && f.value <= maxTunable) {
			return fmt.Errorf("%s must be in [0, %g], got %g", f.name, maxTunable, f.value)
		}
	}

	if !(c.AgentMaxSlope >= 0 && c.AgentMaxSlope <= math.Pi/2) {
		return fmt.Errorf("agent_max_slope must be in [0, pi/2] radians, got %g", c.AgentMaxSlope)
	}
	if c.VertsPerPoly < 3 || c.VertsPerPoly > 10 {
		return fmt.Errorf("verts_per_poly must be in [3, 10], got %d", c.VertsPerPoly)
	}
	if _, ok := partitionNames[c.Partition]; !ok {
		return fmt.Errorf("unknown partition %d", int(c.Partition))
	}
	return nil
}
