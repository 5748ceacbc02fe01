package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/BigB742/bigb-analyzer/internal/domain/player"
)

const DefaultStatsProvider = "sleeper"

// ProviderStats is the fixed counter schema every stats provider maps into.
type ProviderStats struct {
	PassAttempts    float64
	PassCompletions float64
	PassYards       float64
	PassTDs         float64
	Interceptions   float64
	RushAttempts    float64
	RushYards       float64
	RushTDs         float64
	RecTargets      float64
	RecReceptions   float64
	RecYards        float64
	RecTDs          float64
	Fumbles         float64
	TwoPt           float64
	FGM0To19        float64
	FGM20To29       float64
	FGM30To39       float64
	FGM40To49       float64
	FGM50To59       float64
	FGM60Plus       float64
	XPM             float64
	FGMiss          float64
	XPMiss          float64
}

type ProviderStatRow struct {
	ProviderPlayerID string
	Season           int
	Week             int
	Name             string
	Team             string
	Position         string
	Stats            ProviderStats
}

type StatsProvider interface {
	Name() string
	FetchWeeklyStats(ctx context.Context, season, week int) ([]ProviderStatRow, error)
}

// PlayerCatalog is a provider's active roster at fantasy positions.
type PlayerCatalog struct {
	Players     []player.Record
	FilteredOut int
}

type PlayerCatalogProvider interface {
	FetchPlayers(ctx context.Context) (PlayerCatalog, error)
}

// StatsProviderRegistry resolves providers by case-insensitive name.
type StatsProviderRegistry struct {
	providers   map[string]StatsProvider
	defaultName string
}

func NewStatsProviderRegistry(defaultName string, providers ...StatsProvider) *StatsProviderRegistry {
	r := &StatsProviderRegistry{
		providers:   make(map[string]StatsProvider, len(providers)),
		defaultName: normalizeProviderName(defaultName),
	}
	if r.defaultName == "" {
		r.defaultName = DefaultStatsProvider
	}
	for _, p := range providers {
		if p == nil {
			continue
		}
		r.providers[normalizeProviderName(p.Name())] = p
	}
	return r
}

// Get returns the named provider, or the default one for an empty name.
func (r *StatsProviderRegistry) Get(name string) (StatsProvider, error) {
	key := normalizeProviderName(name)
	if key == "" {
		key = r.defaultName
	}
	p, ok := r.providers[key]
	if !ok {
		available := strings.Join(r.Names(), ", ")
		if available == "" {
			available = "none"
		}
		return nil, fmt.Errorf("%w: unknown stats provider %q, available: %s", ErrInvalidInput, name, available)
	}
	return p, nil
}

func (r *StatsProviderRegistry) Names() []string {
	out := make([]string, 0, len(r.providers))
	for name := range r.providers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func normalizeProviderName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
