package commands

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KatjaLuckLab/DMI-predictor/internal/entity"
	"github.com/KatjaLuckLab/DMI-predictor/internal/replicate"
	"github.com/KatjaLuckLab/DMI-predictor/pkg/logger"
)

func groupsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use: "groups <prot_dir> <ppi_file> <slim_type_file> <dmi_type_file> <smart_domain_types> " +
			"<pfam_domain_types> <smart_matches_json> <pfam_matches_json> <features_dir> <network_dir>",
		Short: "Print motif and domain group sizes per DMI type",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolveConfig(cmd, args)
			if err != nil {
				return err
			}
			store, err := entity.Load(cfg.Inputs, logger.Default)
			if err != nil {
				return err
			}
			index := replicate.NewIndex(store, logger.Default)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "dmi_type\tname\tmotif_proteins\tinterfaces\tdomains")
			for _, gs := range index.Sizes() {
				ifaces := make([]string, 0, len(gs.Interfaces))
				for _, key := range slices.Sorted(maps.Keys(gs.Interfaces)) {
					ifaces = append(ifaces, fmt.Sprintf("%s=%d", key, gs.Interfaces[key]))
				}
				domains := make([]string, 0, len(gs.DomainNames))
				for _, id := range slices.Sorted(maps.Keys(gs.DomainNames)) {
					domains = append(domains, id+":"+gs.DomainNames[id])
				}
				fmt.Fprintf(out, "%s\t%s\t%d\t%s\t%s\n", gs.DMIType, gs.Name, gs.Motif,
					strings.Join(ifaces, ","), strings.Join(domains, ","))
			}
			return nil
		},
	}
}
