package entity

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/KatjaLuckLab/DMI-predictor/pkg/config"
)

// Load builds a read-only store from the configured inputs. When a network
// directory is configured, only proteins with network information are kept;
// the restriction happens before any annotation is attached.
func Load(in config.Inputs, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}

	s := NewStore()
	n, err := LoadProteins(s, in.ProteinDir)
	if err != nil {
		return nil, err
	}
	log.Info("loaded proteins", "count", n, "dir", in.ProteinDir)

	if in.NetworkDir != "" {
		ids, err := NetworkProteinIDs(in.NetworkDir)
		if err != nil {
			return nil, err
		}
		s = s.Restrict(func(id string) bool { return ids[id] })
		log.Info("restricted proteins to network", "count", s.ProteinCount(), "network_ids", len(ids))
	}

	known, err := LoadKnownPPIs(in.KnownPPIFile, func(id string) bool {
		_, ok := s.Protein(id)
		return ok
	})
	if err != nil {
		return nil, err
	}
	s.SetKnownPPIs(known)
	log.Info("loaded known PPIs", "count", known.Len())

	slims, err := LoadSlimTypes(in.SlimTypeFile)
	if err != nil {
		return nil, err
	}
	if err := LoadDMITypes(s, in.DMITypeFile, slims); err != nil {
		return nil, err
	}
	log.Info("loaded DMI types", "slim_types", len(slims), "dmi_types", len(s.DMITypes()))

	for _, path := range in.DomainTypeFiles() {
		n, err := LoadDomainTypes(s, path)
		if err != nil {
			return nil, err
		}
		log.Debug("loaded domain types", "file", path, "count", n)
	}
	if s.DomainTypeCount() > 0 {
		log.Info("loaded domain type catalogs", "count", s.DomainTypeCount())
	}

	for _, path := range in.DomainMatchFiles() {
		n, err := LoadDomainMatches(s, path)
		if err != nil {
			return nil, err
		}
		log.Info("loaded domain matches", "file", path, "hits", n)
	}

	if skipped := ScanMotifs(s, log); len(skipped) > 0 {
		log.Warn("SLiM regexes skipped", "count", len(skipped))
	}

	if in.FeaturesDir != "" {
		info, err := os.Stat(in.FeaturesDir)
		if err != nil {
			return nil, fmt.Errorf("features directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("features directory %s is not a directory", in.FeaturesDir)
		}
	}
	return s, nil
}
