package probe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nop(ctx context.Context, env Env) (string, error) { return "", nil }

func TestDefault_OrderAndNames(t *testing.T) {
	checks := Default().Checks()
	want := []string{
		"Homepage loads",
		"Page has content",
		"No server errors",
		"Load time acceptable",
		"HTML structure valid",
		"No JavaScript errors",
		"HTTP accessible",
	}
	require.Len(t, checks, len(want))
	for i, c := range checks {
		assert.Equal(t, i+1, c.Order)
		assert.Equal(t, want[i], c.Name)
		assert.NotNil(t, c.Run)
	}
}

func TestNewRegistry_SortsByOrdinal(t *testing.T) {
	r, err := NewRegistry(
		Check{Order: 30, Name: "c", Run: nop},
		Check{Order: 10, Name: "a", Run: nop},
		Check{Order: 20, Name: "b", Run: nop},
	)
	require.NoError(t, err)
	var names []string
	for _, c := range r.Checks() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
	assert.Equal(t, 3, r.Len())
}

func TestNewRegistry_Rejects(t *testing.T) {
	cases := map[string][]Check{
		"duplicate ordinal": {{Order: 1, Name: "a", Run: nop}, {Order: 1, Name: "b", Run: nop}},
		"zero ordinal":      {{Order: 0, Name: "a", Run: nop}},
		"empty name":        {{Order: 1, Run: nop}},
		"nil procedure":     {{Order: 1, Name: "a"}},
	}
	for name, checks := range cases {
		_, err := NewRegistry(checks...)
		assert.Error(t, err, name)
	}
}

func TestRegistry_ChecksIsACopy(t *testing.T) {
	r := Default()
	cs := r.Checks()
	cs[0].Name = "mutated"
	assert.Equal(t, "Homepage loads", r.Checks()[0].Name)
}

func TestMustRegistry_Panics(t *testing.T) {
	assert.Panics(t, func() { MustRegistry(Check{Order: 1, Name: "a"}) })
}
