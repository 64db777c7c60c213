package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/mod/semver"
)

// manifestFile is the optional catalog manifest name.
const manifestFile = "manifest.json"

// Manifest describes a catalog directory.
type Manifest struct {
	Name string `json:"Name"`

	// MinEngineVersion gates the catalog on an engine release, e.g.
	// "v0.3.0". Empty means any engine.
	MinEngineVersion string `json:"MinEngineVersion"`
}

type rawChallenge struct {
	ID                 string         `json:"Id"`
	Name               string         `json:"Name"`
	Description        string         `json:"Description"`
	Icon               string         `json:"Icon"`
	LocationID         string         `json:"LocationId"`
	ParentLocationID   string         `json:"ParentLocationId"`
	InclusionContracts []string       `json:"InclusionContracts"`
	Tags               []string       `json:"Tags"`
	XP                 int            `json:"Xp"`
	Definition         map[string]any `json:"Definition"`
}

type rawGroup struct {
	CategoryID  string         `json:"CategoryId"`
	Name        string         `json:"Name"`
	Description string         `json:"Description"`
	Icon        string         `json:"Icon"`
	Image       string         `json:"Image"`
	Challenges  []rawChallenge `json:"Challenges"`
}

// Load reads every group file in dir, validates it, and builds the Index.
// Files load in lexicographic order so group ordering is stable across
// runs. engineVersion is the running engine release ("(devel)" builds skip
// the manifest gate).
func Load(dir string, engineVersion string) (*Index, error) {
	if err := checkManifest(dir, engineVersion); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read catalog dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" || e.Name() == manifestFile {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)

	var groups []Group
	var challenges []Challenge
	for _, name := range files {
		g, chs, err := loadGroupFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		groups = append(groups, g)
		challenges = append(challenges, chs...)
	}

	return NewIndex(groups, challenges)
}

func checkManifest(dir, engineVersion string) error {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}
	if m.MinEngineVersion == "" || engineVersion == "(devel)" {
		return nil
	}
	if !semver.IsValid(m.MinEngineVersion) {
		return fmt.Errorf("manifest MinEngineVersion %q is not valid semver", m.MinEngineVersion)
	}
	if !semver.IsValid(engineVersion) {
		return fmt.Errorf("engine version %q is not valid semver", engineVersion)
	}
	if semver.Compare(engineVersion, m.MinEngineVersion) < 0 {
		return fmt.Errorf("catalog %q requires engine %s or newer (running %s)",
			m.Name, m.MinEngineVersion, engineVersion)
	}
	return nil
}

func loadGroupFile(path string) (Group, []Challenge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Group{}, nil, err
	}

	// Validate the raw document first so decode errors surface as schema
	// violations with a path, not as partial structs.
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return Group{}, nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validateGroupFile(parsed); err != nil {
		return Group{}, nil, fmt.Errorf("schema validation: %w", err)
	}

	var raw rawGroup
	if err := json.Unmarshal(data, &raw); err != nil {
		return Group{}, nil, err
	}

	group := Group{
		CategoryID:  raw.CategoryID,
		Name:        raw.Name,
		Description: raw.Description,
		Icon:        raw.Icon,
		Image:       raw.Image,
	}

	challenges := make([]Challenge, 0, len(raw.Challenges))
	for _, rc := range raw.Challenges {
		challenges = append(challenges, convertChallenge(rc, group.CategoryID))
	}
	return group, challenges, nil
}

// convertChallenge lifts the scope, default context, constants, and
// listeners out of the raw definition object. The definition itself is
// kept whole: it is the transition specification handed to the evaluator.
func convertChallenge(rc rawChallenge, groupID string) Challenge {
	c := Challenge{
		ID:                 rc.ID,
		Name:               rc.Name,
		Description:        rc.Description,
		Icon:               rc.Icon,
		GroupID:            groupID,
		LocationID:         rc.LocationID,
		ParentLocationID:   rc.ParentLocationID,
		InclusionContracts: rc.InclusionContracts,
		Tags:               rc.Tags,
		XP:                 rc.XP,
		Definition:         rc.Definition,
		Scope:              ScopeSession,
	}

	if s, ok := rc.Definition["Scope"].(string); ok && s != "" {
		c.Scope = Scope(s)
	}
	if ctx, ok := rc.Definition["Context"].(map[string]any); ok {
		c.Context = ctx
	}
	if consts, ok := rc.Definition["Constants"].(map[string]any); ok {
		c.Constants = consts
	}
	if ls, ok := rc.Definition["ContextListeners"].(map[string]any); ok {
		c.ContextListeners = ls
	}
	return c
}
