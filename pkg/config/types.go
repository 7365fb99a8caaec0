package config

const (
	// DefaultPairCap bounds the candidate pairs drawn per domain interface
	DefaultPairCap = 50
	// DefaultInstancesPerType is the target RRS instance count per DMI type
	DefaultInstancesPerType = 4
)

// Config represents the RRS build configuration
type Config struct {
	LogLevel   string   `yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	LogFormat  string   `yaml:"log_format,omitempty" validate:"omitempty,oneof=json text"`
	Inputs     Inputs   `yaml:"inputs"`
	Sampling   Sampling `yaml:"sampling"`
	Replicates []string `yaml:"replicates,omitempty" validate:"dive,required"`
	Output     Output   `yaml:"output"`
}

// Inputs lists the files the entity store is loaded from
type Inputs struct {
	ProteinDir             string `yaml:"protein_dir" validate:"required"`
	KnownPPIFile           string `yaml:"known_ppi_file" validate:"required"`
	SlimTypeFile           string `yaml:"slim_type_file" validate:"required"`
	DMITypeFile            string `yaml:"dmi_type_file" validate:"required"`
	SmartDomainTypesFile   string `yaml:"smart_domain_types_file,omitempty"`
	PfamDomainTypesFile    string `yaml:"pfam_domain_types_file,omitempty"`
	SmartDomainMatchesFile string `yaml:"smart_domain_matches_file,omitempty"`
	PfamDomainMatchesFile  string `yaml:"pfam_domain_matches_file,omitempty"`
	FeaturesDir            string `yaml:"features_dir,omitempty"`
	NetworkDir             string `yaml:"network_dir,omitempty"` // empty: no network restriction
}

// DomainMatchFiles returns the configured domain match files
func (in Inputs) DomainMatchFiles() []string {
	files := make([]string, 0, 2)
	for _, f := range []string{in.SmartDomainMatchesFile, in.PfamDomainMatchesFile} {
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}

// DomainTypeFiles returns the configured domain type catalog files
func (in Inputs) DomainTypeFiles() []string {
	files := make([]string, 0, 2)
	for _, f := range []string{in.SmartDomainTypesFile, in.PfamDomainTypesFile} {
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}

// Sampling holds the parameters of candidate generation and instance selection
type Sampling struct {
	PairCap          int   `yaml:"pair_cap" validate:"gte=0"`
	InstancesPerType int   `yaml:"instances_per_type" validate:"gte=0"`
	Seed             int64 `yaml:"seed"` // 0: time-seeded
	ExcludeSelfPairs bool  `yaml:"exclude_self_pairs"`
}

// Output controls where replicate files are written
type Output struct {
	Dir      string `yaml:"dir"`
	Compress bool   `yaml:"compress"` // snappy-framed .tsv.sz
}

// Default returns a configuration with defaults applied and no inputs set
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults
func (c *Config) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.Sampling.PairCap == 0 {
		c.Sampling.PairCap = DefaultPairCap
	}
	if c.Sampling.InstancesPerType == 0 {
		c.Sampling.InstancesPerType = DefaultInstancesPerType
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
}
