package skills

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/job-matcher/internal/domain"
)

func TestExtract(t *testing.T) {
	t.Parallel()
	ex := NewExtractor(nil)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{}},
		{"no skills", "We value kindness and coffee.", []string{}},
		{"java not inside javascript", "Strong JavaScript required", []string{"JavaScript"}},
		{"both java and javascript", "Java, JavaScript and more java.", []string{"Java", "JavaScript"}},
		{"canonical spelling", "experience with k8s and POSTGRES", []string{"Kubernetes", "PostgreSQL"}},
		{"longest phrase wins", "We build apps in React Native.", []string{"React Native"}},
		{"both react and react native", "React for web, react native for mobile", []string{"React", "React Native"}},
		{"punctuated names", "C++, C# and .NET; node.js.", []string{".NET", "C#", "C++", "Node.js"}},
		{"slash phrase", "Own our CI/CD pipelines on AWS", []string{"AWS", "CI/CD"}},
		{"hyphenated alias", "We practice test-driven development", []string{"TDD"}},
		{"multiword canonical", "Ruby on Rails and plain ruby", []string{"Ruby", "Ruby on Rails"}},
		{"no substring inside word", "reactive programming in javascripting", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ex.Extract(tt.text))
		})
	}
}

func TestExtract_EverydayWords(t *testing.T) {
	t.Parallel()
	ex := NewExtractor(nil)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			"prose with lowercase skill words",
			"We go the extra mile with swift delivery in spring; our rest apis team walks node trees. Must know Python.",
			[]string{"Python"},
		},
		{"rust and rails as words", "Remove rust from the guard rails, then rest.", []string{}},
		{"lambda as a word", "a lambda is an anonymous function", []string{}},
		{"proper casing", "Go, Swift, Rust, Node and Spring behind REST APIs on Lambda.", []string{"Go", "Node.js", "REST API", "Rust", "Serverless", "Spring Boot", "Swift"}},
		{"unambiguous aliases ignore casing", "GOLANG services on NODEJS, restful endpoints, aws lambda", []string{"Go", "Node.js", "REST API", "Serverless"}},
		{"multiword phrase unaffected", "ruby on rails shop", []string{"Ruby on Rails"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ex.Extract(tt.text))
		})
	}

	// explicit profile skills are canonicalized regardless of casing
	assert.Equal(t, "Go", ex.Canonical("go"))
	assert.Equal(t, "Spring Boot", ex.Canonical("spring"))
}

func TestExtract_Deterministic(t *testing.T) {
	t.Parallel()
	ex := NewExtractor(nil)
	text := "Senior engineer: Go, Kubernetes, Terraform, AWS, PostgreSQL, Redis, Kafka, gRPC, Docker."
	first := ex.Extract(text)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, ex.Extract(text))
	}
}

func TestCanonicalAndCategory(t *testing.T) {
	t.Parallel()
	ex := NewExtractor(nil)

	assert.Equal(t, "JavaScript", ex.Canonical("  javascript "))
	assert.Equal(t, "Kubernetes", ex.Canonical("K8S"))
	assert.Equal(t, "Underwater Basket Weaving", ex.Canonical(" Underwater Basket Weaving "))

	assert.Equal(t, CategoryDevOps, ex.Category("kubernetes"))
	assert.Equal(t, CategoryCloud, ex.Category("aws"))
	assert.Equal(t, CategoryLanguages, ex.Category("Go"))
	assert.Equal(t, CategoryOther, ex.Category("Underwater Basket Weaving"))
	assert.Equal(t, CategoryOther, ex.Category(""))
}

func TestNewTaxonomy_Errors(t *testing.T) {
	t.Parallel()
	_, err := NewTaxonomy("v1", []Entry{{Name: " "}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	_, err = NewTaxonomy("v1", []Entry{
		{Name: "Go", Aliases: []string{"golang"}},
		{Name: "Golang Tools", Aliases: []string{"golang"}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	_, err = NewTaxonomy("v1", []Entry{{Name: "Go", CaseSensitive: []string{"Gopher"}}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestParseTaxonomy_CaseSensitive(t *testing.T) {
	t.Parallel()
	tax, err := ParseTaxonomy([]byte(`
version: t1
skills:
  - {name: Dart, aliases: [dartlang], case_sensitive: [Dart]}
`))
	require.NoError(t, err)
	ex := NewExtractor(tax)
	assert.Equal(t, []string{}, ex.Extract("throw a dart"))
	assert.Equal(t, []string{"Dart"}, ex.Extract("Dart and Flutter"))
	assert.Equal(t, []string{"Dart"}, ex.Extract("DARTLANG"))
}

func TestParseTaxonomy(t *testing.T) {
	t.Parallel()
	raw := []byte(`
skills:
  - {name: Zig, category: languages, aliases: [ziglang]}
  - {name: Bun}
`)
	tax, err := ParseTaxonomy(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, tax.Len())
	assert.NotEmpty(t, tax.Version())

	again, err := ParseTaxonomy(raw)
	require.NoError(t, err)
	assert.Equal(t, tax.Version(), again.Version())

	ex := NewExtractor(tax)
	assert.Equal(t, []string{"Bun", "Zig"}, ex.Extract("ziglang with bun"))
	assert.Equal(t, CategoryOther, ex.Category("bun"))

	_, err = ParseTaxonomy([]byte("skills: []"))
	assert.Error(t, err)
	_, err = ParseTaxonomy([]byte("skills: [::"))
	assert.Error(t, err)
}

func TestDefaultTaxonomy(t *testing.T) {
	t.Parallel()
	tax := DefaultTaxonomy()
	assert.Equal(t, "builtin-2026.2", tax.Version())
	assert.Greater(t, tax.Len(), 50)
}

func TestSwap(t *testing.T) {
	t.Parallel()
	ex := NewExtractor(nil)
	tax, err := NewTaxonomy("custom", []Entry{{Name: "Zig", Category: CategoryLanguages}})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := ex.Extract("zig and kubernetes")
			// a reader sees one whole snapshot, never a mix
			assert.Len(t, got, 1)
		}()
	}
	ex.Swap(tax)
	wg.Wait()

	assert.Equal(t, "custom", ex.Version())
	assert.Equal(t, []string{"Zig"}, ex.Extract("zig and kubernetes"))

	ex.Swap(nil)
	assert.Equal(t, "custom", ex.Version())
}
