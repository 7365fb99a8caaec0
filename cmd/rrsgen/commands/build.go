package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/KatjaLuckLab/DMI-predictor/internal/entity"
	"github.com/KatjaLuckLab/DMI-predictor/internal/matcher"
	"github.com/KatjaLuckLab/DMI-predictor/internal/metrics"
	"github.com/KatjaLuckLab/DMI-predictor/internal/output"
	"github.com/KatjaLuckLab/DMI-predictor/internal/replicate"
	"github.com/KatjaLuckLab/DMI-predictor/pkg/logger"
	"github.com/KatjaLuckLab/DMI-predictor/pkg/utils"
)

func buildCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use: "build <prot_dir> <ppi_file> <slim_type_file> <dmi_type_file> <smart_domain_types> " +
			"<pfam_domain_types> <smart_matches_json> <pfam_matches_json> <features_dir> <network_dir> " +
			"<number_instances> <label> [label...]",
		Short: "Build RRS replicates and write one TSV per label",
		Long: "Build random reference set replicates. Each label produces an independent replicate\n" +
			"written to <output-dir>/<label>.tsv. With --config the inputs come from the file and\n" +
			"any arguments replace its replicate labels.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolveConfig(cmd, args)
			if err != nil {
				return err
			}
			if len(cfg.Replicates) == 0 {
				return errors.New("at least one replicate label is required")
			}

			log := logger.Default
			start := time.Now()
			store, err := entity.Load(cfg.Inputs, log)
			if err != nil {
				return err
			}
			index := replicate.NewIndex(store, log)

			rng := utils.NewRandSource(cfg.Sampling.Seed)
			log.Info("building replicates", "replicates", len(cfg.Replicates), "seed", rng.Seed(),
				"instances_per_type", cfg.Sampling.InstancesPerType, "pair_cap", cfg.Sampling.PairCap)

			b := replicate.NewBuilder(index, matcher.NewRegexMatcher(store), rng,
				replicate.OptionsFromConfig(cfg.Sampling), metrics.DefaultRegistry(), log)
			reps, err := b.BuildAll(cmd.Context(), cfg.Replicates)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, rep := range reps {
				path, err := output.WriteFile(cfg.Output.Dir, rep, index, cfg.Output.Compress)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t%d\n", path, rep.Len())
			}
			log.Info("done", "duration", time.Since(start))
			return nil
		},
	}

	cmd.Flags().Int64("seed", 0, "random seed (0: time-seeded)")
	cmd.Flags().Int("pair-cap", 0, "max candidate pairs drawn per domain interface (default 50)")
	cmd.Flags().Bool("exclude-self-pairs", false, "drop candidate pairs of a protein with itself")
	cmd.Flags().String("output-dir", "", "directory replicate files are written to (default .)")
	cmd.Flags().Bool("compress", false, "write snappy-framed .tsv.sz files")
	opts.bind(
		cmd.Flags().Lookup("seed"),
		cmd.Flags().Lookup("pair-cap"),
		cmd.Flags().Lookup("exclude-self-pairs"),
		cmd.Flags().Lookup("output-dir"),
		cmd.Flags().Lookup("compress"),
	)
	return cmd
}
