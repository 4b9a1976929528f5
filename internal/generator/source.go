package generator

import (
	"strings"

	"github.com/brianvoe/gofakeit/v6"
)

// Source is the random source every generator draws from. Pipelines own their
// Source; nothing reads ambient global random state.
type Source interface {
	// IntRange returns a uniform int in [min, max].
	IntRange(min, max int) int
	Bool() bool
	// Digits returns n random decimal digits.
	Digits(n int) string
	// Letters returns n random upper-case ASCII letters.
	Letters(n int) string
	PersonName() string
	CompanyName() string
}

type fakerSource struct {
	f *gofakeit.Faker
}

// NewSource returns a gofakeit-backed Source. A zero seed draws a random seed.
func NewSource(seed int64) Source {
	return &fakerSource{f: gofakeit.New(seed)}
}

func (s *fakerSource) IntRange(min, max int) int {
	if max <= min {
		return min
	}
	return s.f.IntRange(min, max)
}

func (s *fakerSource) Bool() bool {
	return s.f.Bool()
}

func (s *fakerSource) Digits(n int) string {
	if n <= 0 {
		return ""
	}
	return s.f.Numerify(strings.Repeat("#", n))
}

func (s *fakerSource) Letters(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(strings.ToUpper(s.f.Letter()))
	}
	return b.String()
}

func (s *fakerSource) PersonName() string {
	return s.f.Name()
}

func (s *fakerSource) CompanyName() string {
	return s.f.Company()
}

// Shuffle permutes n elements in place with a Fisher-Yates pass.
func Shuffle(src Source, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := src.IntRange(0, i)
		swap(i, j)
	}
}

// pick returns a uniform element of options.
func pick(src Source, options []string) string {
	return options[src.IntRange(0, len(options)-1)]
}
