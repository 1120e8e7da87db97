package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_AllTestdata(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		s, err := LoadScenario(f)
		require.NoError(t, err, f)
		assert.NotEmpty(t, s.Name, f)
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_FlowStyle(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: flow
description: flow style steps
contexts: [A]
ids: [x1]
staleness: digest
quota: 500
steps:
  - {context: A, op: post, author: Ann, text: hi, expect: ok}
  - {op: advance, duration: 90s}
assertions:
  - {type: stored_contains, id: x1}
`))
	require.NoError(t, err)
	assert.Equal(t, "flow", s.Name)
	assert.Equal(t, []string{"x1"}, s.IDs)
	assert.Equal(t, "digest", s.Staleness)
	assert.Equal(t, 500, s.Quota)
	require.Len(t, s.Steps, 2)
	assert.Equal(t, OpPost, s.Steps[0].Op)
	assert.Equal(t, "90s", s.Steps[1].Duration)
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
description: has a typo
contexts: [A]
steps:
  - {context: A, op: post, auhtor: Ann, text: hi}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: "description: d\ncontexts: [A]\nsteps: [{op: refresh, context: A}]\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: n\ncontexts: [A]\nsteps: [{op: refresh, context: A}]\n",
			want: "description is required",
		},
		{
			name: "no contexts",
			yaml: "name: n\ndescription: d\nsteps: [{op: fail_writes}]\n",
			want: "contexts list is required",
		},
		{
			name: "no steps",
			yaml: "name: n\ndescription: d\ncontexts: [A]\n",
			want: "steps list is required",
		},
		{
			name: "duplicate context",
			yaml: "name: n\ndescription: d\ncontexts: [A, A]\nsteps: [{op: refresh, context: A}]\n",
			want: `duplicate context "A"`,
		},
		{
			name: "unknown staleness",
			yaml: "name: n\ndescription: d\ncontexts: [A]\nstaleness: hash\nsteps: [{op: refresh, context: A}]\n",
			want: "hash",
		},
		{
			name: "negative quota",
			yaml: "name: n\ndescription: d\ncontexts: [A]\nquota: -1\nsteps: [{op: refresh, context: A}]\n",
			want: "quota must be non-negative",
		},
		{
			name: "unknown op",
			yaml: "name: n\ndescription: d\ncontexts: [A]\nsteps: [{op: edit, context: A}]\n",
			want: `steps[0]: unknown op "edit"`,
		},
		{
			name: "unknown context",
			yaml: "name: n\ndescription: d\ncontexts: [A]\nsteps: [{op: post, context: B, author: a, text: t}]\n",
			want: `unknown context "B"`,
		},
		{
			name: "reply without parent",
			yaml: "name: n\ndescription: d\ncontexts: [A]\nsteps: [{op: reply, context: A, author: a, text: t}]\n",
			want: "reply needs a parent",
		},
		{
			name: "advance without duration",
			yaml: "name: n\ndescription: d\ncontexts: [A]\nsteps: [{op: advance}]\n",
			want: "advance needs a duration",
		},
		{
			name: "too few ids",
			yaml: "name: n\ndescription: d\ncontexts: [A]\nids: [x]\nsteps: [{op: post, context: A, author: a, text: t}, {op: post, context: A, author: a, text: u}]\n",
			want: "1 ids for 2 post/reply steps",
		},
		{
			name: "assertion without id",
			yaml: "name: n\ndescription: d\ncontexts: [A]\nsteps: [{op: refresh, context: A}]\nassertions: [{type: stored_contains}]\n",
			want: "id is required for stored_contains",
		},
		{
			name: "assertion unknown type",
			yaml: "name: n\ndescription: d\ncontexts: [A]\nsteps: [{op: refresh, context: A}]\nassertions: [{type: trace_contains}]\n",
			want: `unknown assertion type "trace_contains"`,
		},
		{
			name: "assertion unknown context",
			yaml: "name: n\ndescription: d\ncontexts: [A]\nsteps: [{op: refresh, context: A}]\nassertions: [{type: in_sync, context: Z}]\n",
			want: `unknown context "Z" for in_sync`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
