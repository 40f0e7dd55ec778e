package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navwar/navsim/internal/sim"
	"github.com/navwar/navsim/internal/unit"
)

const validScenario = `{
	"name": "Patrol Exercise",
	"units": [
		{
			"name": "Fletcher",
			"class": "destroyer",
			"faction": "blue",
			"position": {"lat": 28.0, "lon": -177.0},
			"destination": {"lat": 28.5, "lon": -177.0},
			"speed": 20
		},
		{
			"name": "Kongo",
			"class": "battleship",
			"faction": "red",
			"position": {"lat": 27.5, "lon": -177.5},
			"armor": 0.4,
			"health": 200
		}
	]
}`

func TestParse_Valid(t *testing.T) {
	s, err := Parse([]byte(validScenario))
	require.NoError(t, err)
	assert.Equal(t, "Patrol Exercise", s.Name)
	require.Len(t, s.Units, 2)
	assert.Equal(t, "destroyer", s.Units[0].Class)
	require.NotNil(t, s.Units[1].Armor)
	assert.Equal(t, 0.4, *s.Units[1].Armor)
}

func TestParse_MalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{"name": "broken"`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Violations[0], "malformed JSON")
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	bad := `{
		"name": "",
		"units": [
			{"name": "", "class": "zeppelin", "faction": "blue", "position": {"lat": 99, "lon": 0}},
			{"name": "Yukikaze", "class": "destroyer", "faction": "", "position": {"lat": 28, "lon": -177}, "speed": 50}
		]
	}`
	_, err := Parse([]byte(bad))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	joined := verr.Error()
	assert.Contains(t, joined, "name is required")
	assert.Contains(t, joined, `units[0].name: required`)
	assert.Contains(t, joined, `unknown class "zeppelin"`)
	assert.Contains(t, joined, "units[0].position")
	assert.Contains(t, joined, "units[1].faction: required")
	assert.Contains(t, joined, "exceeds class maximum")
	assert.GreaterOrEqual(t, len(verr.Violations), 6)
}

func TestValidate_RequiresUnits(t *testing.T) {
	_, err := Parse([]byte(`{"name": "Empty"}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "at least one unit is required")
}

func TestBuild_TemplatesAndOverrides(t *testing.T) {
	s, err := Parse([]byte(validScenario))
	require.NoError(t, err)

	units, err := s.Build()
	require.NoError(t, err)
	require.Len(t, units, 2)

	dd := units[0]
	assert.Equal(t, unit.ClassDestroyer, dd.Attr.Class)
	assert.Equal(t, "DD-1", dd.Attr.HullNumber)
	assert.Equal(t, 100.0, dd.Attr.Health)
	assert.Equal(t, 20.0, dd.Attr.Speed)
	require.NotNil(t, dd.Attr.Destination)
	assert.Equal(t, unit.StateMoving, dd.State())
	assert.NotNil(t, dd.Movement())
	assert.NotNil(t, dd.Detection())
	assert.NotNil(t, dd.Attack())

	bb := units[1]
	assert.Equal(t, 200.0, bb.Attr.Health)
	assert.Equal(t, 0.4, bb.Attr.Armor)
	assert.Equal(t, 250.0, bb.Attr.MaxHealth)
	assert.Equal(t, unit.StateIdle, bb.State())
}

func TestBuild_DistinctIDs(t *testing.T) {
	s, err := Parse([]byte(validScenario))
	require.NoError(t, err)
	units, err := s.Build()
	require.NoError(t, err)
	assert.NotEqual(t, units[0].ID(), units[1].ID())
}

func TestApply_RegistersAll(t *testing.T) {
	s, err := Parse([]byte(validScenario))
	require.NoError(t, err)

	o, err := sim.New(sim.Config{Name: s.Name})
	require.NoError(t, err)
	ids, err := Apply(s, o)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Equal(t, 2, o.UnitCount())
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patrol.json")
	require.NoError(t, os.WriteFile(path, []byte(validScenario), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Patrol Exercise", s.Name)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestDefault_IsValid(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())

	units, err := s.Build()
	require.NoError(t, err)
	assert.Len(t, units, 6)

	factions := map[string]int{}
	for _, u := range units {
		factions[u.Attr.Faction]++
	}
	assert.Equal(t, 3, factions["blue"])
	assert.Equal(t, 3, factions["red"])
}
