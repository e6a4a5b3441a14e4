package commands

import (
	"fmt"
	"iter"
	"math"

	"combitest/internal/catalog"
	"combitest/internal/config"
	"combitest/internal/domain"
	"combitest/internal/generation"
)

// space is the combination sequence selected by the config and flags.
type space struct {
	catalog   *catalog.Catalog
	file      *catalog.File
	generator *generation.Generator
	seq       iter.Seq[domain.Combination]
	// size is the number of combinations in seq, or -1 when a filter makes
	// it unknown up front.
	size int
}

func catalogName(cfg *config.Config) string {
	if cfg.CatalogPath == "" {
		return "built-in"
	}
	return cfg.CatalogPath
}

// generationConfig fits the default size range to small catalogs; explicit
// --min/--max values are passed through and validated by the generator.
func generationConfig(cfg *config.Config, dimensions int) generation.Config {
	gc := generation.Config{
		MinDimensions:         cfg.MinDimensions,
		MaxDimensions:         cfg.MaxDimensions,
		MaxValuesPerDimension: cfg.MaxValuesPerDimension,
		Mode:                  generation.ModeExhaustive,
	}
	if cfg.Flags.Max == 0 && gc.MaxDimensions > dimensions {
		gc.MaxDimensions = dimensions
	}
	if cfg.Flags.Min == 0 && gc.MinDimensions > gc.MaxDimensions {
		gc.MinDimensions = gc.MaxDimensions
	}
	if cfg.Samples > 0 {
		gc.Mode = generation.ModeSampled
		gc.SamplesPerSize = cfg.Samples
		gc.Seed = cfg.Seed
	}
	return gc
}

func loadSpace(cfg *config.Config) (*space, error) {
	if cfg.Flags.Limit < 0 {
		return nil, fmt.Errorf("invalid limit %d", cfg.Flags.Limit)
	}
	cat, file, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	gen, err := generation.New(cat, generationConfig(cfg, cat.Len()))
	if err != nil {
		return nil, err
	}

	s := &space{catalog: cat, file: file, generator: gen, seq: gen.Combinations(), size: -1}
	if total := gen.Total(); total <= math.MaxInt {
		s.size = int(total)
	}

	if cfg.Flags.Shard != "" {
		index, count, err := generation.ParseShard(cfg.Flags.Shard)
		if err != nil {
			return nil, err
		}
		if s.seq, err = generation.Shard(s.seq, index, count); err != nil {
			return nil, err
		}
		if s.size >= 0 {
			n := s.size / count
			if index < s.size%count {
				n++
			}
			s.size = n
		}
	}
	if cfg.Flags.Filter != "" {
		s.seq = generation.Filter(s.seq, cfg.Flags.Filter)
		s.size = -1
	}
	if cfg.Flags.Limit > 0 {
		s.seq = generation.Limit(s.seq, cfg.Flags.Limit)
		if s.size > cfg.Flags.Limit {
			s.size = cfg.Flags.Limit
		}
	}
	return s, nil
}
