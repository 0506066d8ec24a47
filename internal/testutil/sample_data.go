// Package testutil generates sample catalog data for tests and local seeding.
package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/jmylchreest/showbook/internal/models"
)

// Word lists for generated titles. All names are fictional.
var (
	TitleAdjectives = []string{
		"Crimson", "Electric", "Silent", "Golden", "Midnight",
		"Broken", "Endless", "Hidden", "Northern", "Velvet",
	}

	TitleNouns = []string{
		"Horizon", "Carousel", "Lighthouse", "Tide", "Machine",
		"Garden", "Storm", "Mirror", "Compass", "Circus",
	}

	TagNames = []string{
		"jazz", "classical", "latin", "rock", "cinematic",
		"americana", "world", "ballad",
	}

	ArrangementTypes = []string{
		"Full Orchestral", "Chamber Orchestral", "Marching Band",
		"Jazz Ensemble", "Brass Quintet",
	}
)

// SampleDataGenerator produces shows and arrangements from a seeded source.
type SampleDataGenerator struct {
	rng *rand.Rand
}

// NewSampleDataGenerator creates a new sample data generator with a random seed.
func NewSampleDataGenerator() *SampleDataGenerator {
	return NewSampleDataGeneratorWithSeed(rand.Int63())
}

// NewSampleDataGeneratorWithSeed creates a new generator with a fixed seed for reproducibility.
func NewSampleDataGeneratorWithSeed(seed int64) *SampleDataGenerator {
	return &SampleDataGenerator{rng: rand.New(rand.NewSource(seed))}
}

// ShowGenerateOptions configures show generation.
type ShowGenerateOptions struct {
	MinYear       int
	MaxYear       int
	FeaturedRatio float64 // 0.0-1.0
	MaxTags       int

	// Start is the creation time of the first show; each later show is
	// created one hour after the previous one.
	Start time.Time
}

// DefaultShowGenerateOptions returns default generation options.
func DefaultShowGenerateOptions() ShowGenerateOptions {
	return ShowGenerateOptions{
		MinYear:       2005,
		MaxYear:       2025,
		FeaturedRatio: 0.15,
		MaxTags:       2,
		Start:         time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (g *SampleDataGenerator) pick(list []string) string {
	return list[g.rng.Intn(len(list))]
}

// GenerateTitle returns an "Adjective Noun" title.
func (g *SampleDataGenerator) GenerateTitle() string {
	return g.pick(TitleAdjectives) + " " + g.pick(TitleNouns)
}

// price returns a price between lo and hi rounded to a multiple of 5.
func (g *SampleDataGenerator) price(lo, hi float64) float64 {
	return math.Round((lo+g.rng.Float64()*(hi-lo))/5) * 5
}

// GenerateShows generates count valid shows. Tags carry names only; the show
// repository resolves them on create.
func (g *SampleDataGenerator) GenerateShows(count int, opts ShowGenerateOptions) []models.Show {
	shows := make([]models.Show, count)
	span := opts.MaxYear - opts.MinYear + 1

	for i := range shows {
		s := models.Show{
			Title:        g.GenerateTitle(),
			Year:         opts.MinYear + g.rng.Intn(span),
			Difficulty:   models.Difficulties[g.rng.Intn(len(models.Difficulties))],
			Featured:     g.rng.Float64() < opts.FeaturedRatio,
			DisplayOrder: i,
			Duration:     fmt.Sprintf("%d:%02d", 6+g.rng.Intn(6), g.rng.Intn(60)),
			Price:        g.price(50, 500),
		}
		if g.rng.Intn(2) == 0 {
			desc := fmt.Sprintf("A %s show in %d movements.", s.Difficulty, 3+g.rng.Intn(3))
			s.Description = &desc
		}
		s.CreatedAt = opts.Start.Add(time.Duration(i) * time.Hour)

		if opts.MaxTags > 0 {
			for _, idx := range g.rng.Perm(len(TagNames))[:g.rng.Intn(opts.MaxTags+1)] {
				s.Tags = append(s.Tags, models.Tag{Name: TagNames[idx]})
			}
		}
		shows[i] = s
	}
	return shows
}

// GenerateArrangements generates count arrangements. Roughly two thirds
// belong to one of shows (which must already have IDs); the rest are
// standalone. About one in six has no type.
func (g *SampleDataGenerator) GenerateArrangements(count int, shows []models.Show) []models.Arrangement {
	arrangements := make([]models.Arrangement, count)
	for i := range arrangements {
		a := models.Arrangement{
			Title: g.GenerateTitle() + " Suite",
			Price: g.price(25, 300),
		}
		if g.rng.Intn(6) != 0 {
			t := g.pick(ArrangementTypes)
			a.Type = &t
		}
		if len(shows) > 0 && g.rng.Intn(3) != 0 {
			id := shows[g.rng.Intn(len(shows))].ID
			a.ShowID = &id
		}
		arrangements[i] = a
	}
	return arrangements
}
