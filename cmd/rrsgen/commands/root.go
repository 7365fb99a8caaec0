package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/KatjaLuckLab/DMI-predictor/pkg/config"
	"github.com/KatjaLuckLab/DMI-predictor/pkg/logger"
)

// inputArgs is the number of positional input paths, in order:
// prot_dir ppi_file slim_type_file dmi_type_file smart_domain_types
// pfam_domain_types smart_matches_json pfam_matches_json features_dir network_dir
const inputArgs = 10

type rootOptions struct {
	v *viper.Viper
}

// NewRootCommand builds the rrsgen command tree. Flags can also be set from
// the environment with the RRS_ prefix, e.g. RRS_SEED or RRS_PAIR_CAP.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{v: viper.New()}
	opts.v.SetEnvPrefix("RRS")
	opts.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	opts.v.AutomaticEnv()

	root := &cobra.Command{
		Use:          "rrsgen",
		Short:        "Generate random reference sets of domain-motif interfaces",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "YAML configuration file; replaces the positional inputs")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	opts.bind(root.PersistentFlags().Lookup("config"), root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(buildCmd(opts), groupsCmd(opts), configCmd(opts))
	return root
}

func (o *rootOptions) bind(flags ...*pflag.Flag) {
	for _, f := range flags {
		// Binding only fails for a nil flag
		_ = o.v.BindPFlag(f.Name, f)
	}
}

// resolveConfig builds the effective configuration from --config or the
// positional arguments, then applies flag and environment overrides.
// Positional form: the input paths, then optionally number_instances and
// replicate labels. With --config, any arguments are replicate labels.
func (o *rootOptions) resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	if path := o.v.GetString("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		if len(args) > 0 {
			cfg.Replicates = append([]string(nil), args...)
		}
	} else {
		if len(args) < inputArgs {
			return nil, fmt.Errorf("expected %d input paths or --config, got %d arguments", inputArgs, len(args))
		}
		cfg = config.Default()
		cfg.Inputs = config.Inputs{
			ProteinDir:             args[0],
			KnownPPIFile:           args[1],
			SlimTypeFile:           args[2],
			DMITypeFile:            args[3],
			SmartDomainTypesFile:   args[4],
			PfamDomainTypesFile:    args[5],
			SmartDomainMatchesFile: args[6],
			PfamDomainMatchesFile:  args[7],
			FeaturesDir:            args[8],
			NetworkDir:             args[9],
		}
		if len(args) > inputArgs {
			n, err := strconv.Atoi(args[inputArgs])
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("number_instances must be a positive integer, got %q", args[inputArgs])
			}
			cfg.Sampling.InstancesPerType = n
			cfg.Replicates = append([]string(nil), args[inputArgs+1:]...)
		}
	}

	o.applyOverrides(cfg)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger.SetDefault(logger.NewFormat(cfg.LogFormat, cfg.LogLevel, cmd.ErrOrStderr()))
	return cfg, nil
}

func (o *rootOptions) applyOverrides(cfg *config.Config) {
	v := o.v
	if v.IsSet("log-level") {
		cfg.LogLevel = v.GetString("log-level")
	}
	if v.IsSet("seed") {
		cfg.Sampling.Seed = v.GetInt64("seed")
	}
	if v.IsSet("pair-cap") {
		cfg.Sampling.PairCap = v.GetInt("pair-cap")
	}
	if v.IsSet("exclude-self-pairs") {
		cfg.Sampling.ExcludeSelfPairs = v.GetBool("exclude-self-pairs")
	}
	if v.IsSet("output-dir") {
		cfg.Output.Dir = v.GetString("output-dir")
	}
	if v.IsSet("compress") {
		cfg.Output.Compress = v.GetBool("compress")
	}
}
