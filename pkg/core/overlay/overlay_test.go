package overlay

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/lead-allocator/pkg/core/model"
)

const validYAML = `managers:
  - memberID: m1
    name: Amy
    contact: "101"
    score: 1.5
    maxLeads: 4
    preferences:
      category.unknown: 1
      category.Finance: 2
  - memberID: m2
    name: Ben
    score: 0.5
    maxLeads: 2
categories:
  - id: c1
    name: Finance
    cost: 0.5
levels:
  - level: N
    value: 1
  - level: SSR
    value: 5
`

func TestParse_Valid(t *testing.T) {
	o, err := Parse("test", []byte(validYAML))
	require.NoError(t, err)

	require.Len(t, o.Managers, 2)
	assert.Equal(t, "m1", o.Managers[0].MemberID)
	assert.Equal(t, 1.5, o.Managers[0].Score)
	assert.Equal(t, 4, o.Managers[0].MaxLeads)
	assert.Equal(t, 2.0, o.Managers[0].Preferences["category.Finance"])
	assert.Len(t, o.Categories, 1)
	assert.Len(t, o.Levels, 2)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "managers: [unclosed"},
		{"empty document", ""},
		{"unknown field", "managers: []\nextra: 1\n"},
		{"negative score", "managers:\n  - memberID: m1\n    name: A\n    score: -1\n    maxLeads: 1\n"},
		{"negative quota", "managers:\n  - memberID: m1\n    name: A\n    score: 1\n    maxLeads: -1\n"},
		{"missing member id", "managers:\n  - name: A\n    score: 1\n    maxLeads: 1\n"},
		{"duplicate member id", "managers:\n  - memberID: m1\n    name: A\n  - memberID: m1\n    name: B\n"},
		{"bad preference key", "managers:\n  - memberID: m1\n    name: A\n    preferences:\n      Finance: 1\n"},
		{"negative preference", "managers:\n  - memberID: m1\n    name: A\n    preferences:\n      category.Finance: -1\n"},
		{"zero level value", "levels:\n  - level: N\n    value: 0\n"},
		{"negative cost", "categories:\n  - id: c1\n    cost: -0.5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("test", []byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed))

			var malformed *MalformedInputError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, "test", malformed.Source)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0644))

	o, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, o.Managers, 2)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestTablesConversion(t *testing.T) {
	o, err := Parse("test", []byte(validYAML))
	require.NoError(t, err)

	costs := o.CostTable()
	cat := "c1"
	assert.Equal(t, 1.5, costs.Cost(&cat))

	levels := o.LevelTable(model.DefaultBaselineLevel)
	require.NoError(t, levels.Validate())
	v, err := levels.Value("SSR")
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)
	v, err = levels.Value("XYZ")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestAgents(t *testing.T) {
	o, err := Parse("test", []byte(validYAML))
	require.NoError(t, err)

	roster := []model.ManagerRecord{
		{ID: "m2", Name: "Benjamin", Contact: "202"},
		{ID: "m3", Name: "Cat", Contact: "303"},
	}

	agents := o.Agents(roster, zap.NewNop())
	require.Len(t, agents, 2, "overlay managers are authoritative")

	assert.Equal(t, "m1", agents[0].ID)
	assert.Equal(t, "Amy(101)", agents[0].Label(), "falls back to overlay name and contact")
	assert.Equal(t, 1.5, agents[0].AbilityScore)
	assert.Equal(t, 4, agents[0].Capacity)

	assert.Equal(t, "Benjamin(202)", agents[1].Label(), "roster labels win")
	assert.Equal(t, 0.0, agents[1].PreferenceFor(model.UnknownCategoryKey))

	agents[0].Preference["category.Finance"] = 99
	assert.Equal(t, 2.0, o.Managers[0].Preferences["category.Finance"], "agents do not alias the overlay")
}

func TestSample(t *testing.T) {
	managers := []model.ManagerRecord{{ID: "m1", Name: "Amy", Contact: "101"}}
	categories := []model.Category{{ID: "c1", Name: "Finance"}, {ID: "c2", Name: "Design"}}

	o := Sample(managers, categories)
	require.NoError(t, Validate(o))

	require.Len(t, o.Managers, 1)
	m := o.Managers[0]
	assert.Equal(t, SampleScore, m.Score)
	assert.Equal(t, 0, m.MaxLeads)
	assert.Equal(t, map[string]float64{
		"category.unknown": 1,
		"category.Finance": 0,
		"category.Design":  0,
	}, m.Preferences)

	require.Len(t, o.Categories, 3)
	assert.Equal(t, "unknown", o.Categories[2].Name)
	for _, c := range o.Categories {
		assert.Equal(t, 0.5, c.Cost)
	}

	assert.Equal(t, []LevelConfig{{"N", 1}, {"R", 2}, {"SR", 3}, {"SSR", 5}}, o.Levels)

	o.Levels[0].Value = 10
	assert.Equal(t, 1.0, SampleLevels[0].Value, "sample does not alias the defaults")
}

func TestSample_RoundTripsThroughYAML(t *testing.T) {
	o := Sample([]model.ManagerRecord{{ID: "m1", Name: "Amy"}}, []model.Category{{ID: "c1", Name: "Finance"}})

	data, err := Marshal(o)
	require.NoError(t, err)

	parsed, err := Parse("sample", data)
	require.NoError(t, err)
	assert.Equal(t, o, parsed)
}

func TestFromTables(t *testing.T) {
	tables := Tables{
		Managers: [][]string{
			{"member_id", "Name", "contact", "score", "max_leads", "category.unknown", "category.Finance"},
			{"m1", "Amy", "101", "1.5", "3", "1", "2"},
			{"", "", ""},
			{"m2", "Ben", "", "0.5", "", "", "0.25"},
		},
		Categories: [][]string{
			{"id", "name", "cost"},
			{"c1", "Finance", "0.5"},
		},
		Levels: [][]string{
			{"level", "value"},
			{"N", "1"},
			{"SR", "3"},
		},
	}

	o, err := FromTables("sheet", tables)
	require.NoError(t, err)

	require.Len(t, o.Managers, 2)
	assert.Equal(t, ManagerConfig{
		MemberID:    "m1",
		Name:        "Amy",
		Contact:     "101",
		Score:       1.5,
		MaxLeads:    3,
		Preferences: map[string]float64{"category.unknown": 1, "category.Finance": 2},
	}, o.Managers[0])
	assert.Equal(t, 0, o.Managers[1].MaxLeads, "empty cells read as zero")
	assert.Equal(t, 0.25, o.Managers[1].Preferences["category.Finance"])

	assert.Equal(t, []CategoryConfig{{ID: "c1", Name: "Finance", Cost: 0.5}}, o.Categories)
	assert.Equal(t, []LevelConfig{{"N", 1}, {"SR", 3}}, o.Levels)
}

func TestFromTables_Malformed(t *testing.T) {
	good := Tables{
		Managers:   [][]string{{"member_id", "name", "score", "max_leads"}, {"m1", "Amy", "1", "2"}},
		Categories: [][]string{{"id", "cost"}},
		Levels:     [][]string{{"level", "value"}, {"N", "1"}},
	}

	tests := []struct {
		name   string
		mutate func(*Tables)
	}{
		{"empty manager tab", func(t *Tables) { t.Managers = nil }},
		{"non-numeric score", func(t *Tables) { t.Managers[1][2] = "high" }},
		{"fractional quota", func(t *Tables) { t.Managers[1][3] = "1.5" }},
		{"non-numeric level value", func(t *Tables) { t.Levels[1][1] = "one" }},
		{"missing member id", func(t *Tables) { t.Managers[1][0] = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := Tables{
				Managers:   copyTable(good.Managers),
				Categories: copyTable(good.Categories),
				Levels:     copyTable(good.Levels),
			}
			tt.mutate(&tables)

			_, err := FromTables("sheet", tables)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestToTables_RoundTrip(t *testing.T) {
	o := Sample(
		[]model.ManagerRecord{{ID: "m1", Name: "Amy", Contact: "101"}, {ID: "m2", Name: "Ben"}},
		[]model.Category{{ID: "c1", Name: "Finance"}},
	)

	tables := ToTables(o)
	assert.Equal(t, []string{"member_id", "name", "contact", "score", "max_leads", "category.unknown", "category.Finance"}, tables.Managers[0])
	assert.Equal(t, []string{"m1", "Amy", "101", "0.5", "0", "1", "0"}, tables.Managers[1])

	parsed, err := FromTables("sheet", tables)
	require.NoError(t, err)
	assert.Equal(t, o, parsed)
}

func copyTable(in [][]string) [][]string {
	out := make([][]string, len(in))
	for i, row := range in {
		out[i] = append([]string(nil), row...)
	}
	return out
}
