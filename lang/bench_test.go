package lang

import (
	"context"
	"testing"
)

func BenchmarkCompile(b *testing.B) {
	const source = `[page.title, "k" => items[0].name, obj.method(1, "x")]`

	b.Run("cached", func(b *testing.B) {
		ClearCache()

		for b.Loop() {
			if _, err := Compile(context.Background(), source); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("uncached", func(b *testing.B) {
		for b.Loop() {
			if _, err := ParseString(context.Background(), source); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkInterpolate(b *testing.B) {
	vars := Vars{
		"page":  map[string]any{"title": "Hello"},
		"items": []any{map[string]any{"name": "first"}},
	}

	in := NewInterpolator(vars)
	template := "<h1>${page.title}</h1><p>${items[0].name}</p>"

	for b.Loop() {
		if _, err := in.Interpolate(context.Background(), template); err != nil {
			b.Fatal(err)
		}
	}
}
