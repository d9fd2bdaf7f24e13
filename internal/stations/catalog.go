package stations

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed stations.yaml
var embedded []byte

var ErrStationNotFound = errors.New("station not found")

// QuestionIDs is the closed set of question identifiers, in presentation order.
var QuestionIDs = []string{"main", "f1", "f2", "f3"}

type Timings struct {
	Reading   string `yaml:"reading" json:"reading"`
	Response  string `yaml:"response" json:"response"`
	FollowUps string `yaml:"follow_ups" json:"follow_ups"`
}

type Reference struct {
	Bullets      []string `yaml:"bullets" json:"bullets"`
	Full         string   `yaml:"full" json:"full"`
	BulletTarget string   `yaml:"bullet_target" json:"bullet_target,omitempty"`
	FullTarget   string   `yaml:"full_target" json:"full_target,omitempty"`
}

type Question struct {
	ID        string    `yaml:"id" json:"id"`
	Prompt    string    `yaml:"prompt" json:"prompt"`
	Reference Reference `yaml:"reference" json:"-"`
}

type Station struct {
	ID          string     `yaml:"id" json:"id"`
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description" json:"description"`
	Timings     Timings    `yaml:"timings" json:"timings"`
	// Examiner is the grader framing. Empty inherits the file-level examiner.
	Examiner    string     `yaml:"examiner" json:"-"`
	Questions   []Question `yaml:"questions" json:"questions"`
}

func (s Station) clone() Station {
	out := s
	out.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		q.Reference.Bullets = append([]string(nil), q.Reference.Bullets...)
		out.Questions[i] = q
	}
	return out
}

// ScoringSpec is the scoring policy declared for a station set.
type ScoringSpec struct {
	Domains     []string `yaml:"domains"`
	DomainMin   float64  `yaml:"domain_min"`
	DomainMax   float64  `yaml:"domain_max"`
	OverallMin  float64  `yaml:"overall_min"`
	OverallMax  float64  `yaml:"overall_max"`
	OverallMode string   `yaml:"overall_mode"`
	WordTargets struct {
		Main     string `yaml:"main"`
		FollowUp string `yaml:"follow_up"`
	} `yaml:"word_targets"`
}

type file struct {
	Version        int         `yaml:"version"`
	DefaultStation string      `yaml:"default_station"`
	Examiner       string      `yaml:"examiner"`
	Scoring        ScoringSpec `yaml:"scoring"`
	Stations       []Station   `yaml:"stations"`
}

// Catalog is read-only after Load and safe for concurrent use.
type Catalog struct {
	version        int
	defaultStation string
	scoring        ScoringSpec
	byID           map[string]Station
}

// LoadDefault parses the catalog compiled into the binary.
func LoadDefault() (*Catalog, error) {
	return Load(embedded)
}

func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read station catalog: %w", err)
	}
	return Load(data)
}

func Load(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse station catalog: %w", err)
	}
	if f.Version <= 0 {
		return nil, fmt.Errorf("station catalog: invalid version %d", f.Version)
	}
	if len(f.Stations) == 0 {
		return nil, fmt.Errorf("station catalog: no stations")
	}
	byID := make(map[string]Station, len(f.Stations))
	for i, st := range f.Stations {
		st.ID = strings.TrimSpace(st.ID)
		st.Examiner = strings.TrimSpace(st.Examiner)
		if st.Examiner == "" {
			st.Examiner = strings.TrimSpace(f.Examiner)
		}
		if err := validateStation(st); err != nil {
			return nil, fmt.Errorf("station catalog: stations[%d]: %w", i, err)
		}
		if _, dup := byID[st.ID]; dup {
			return nil, fmt.Errorf("station catalog: duplicate station id %q", st.ID)
		}
		byID[st.ID] = st.clone()
	}
	def := strings.TrimSpace(f.DefaultStation)
	if def == "" && len(f.Stations) == 1 {
		def = f.Stations[0].ID
	}
	if _, ok := byID[def]; !ok {
		return nil, fmt.Errorf("station catalog: default station %q not defined", def)
	}
	return &Catalog{
		version:        f.Version,
		defaultStation: def,
		scoring:        f.Scoring,
		byID:           byID,
	}, nil
}

func validateStation(st Station) error {
	if st.ID == "" {
		return fmt.Errorf("missing id")
	}
	if strings.TrimSpace(st.Title) == "" {
		return fmt.Errorf("%s: missing title", st.ID)
	}
	if st.Examiner == "" {
		return fmt.Errorf("%s: missing examiner framing", st.ID)
	}
	if n := len(st.Questions); n < 1 || n > len(QuestionIDs) {
		return fmt.Errorf("%s: expected 1-%d questions, got %d", st.ID, len(QuestionIDs), n)
	}
	for i, q := range st.Questions {
		// Question ids follow the fixed order main, f1, f2, f3.
		if q.ID != QuestionIDs[i] {
			return fmt.Errorf("%s: questions[%d] must have id %q, got %q", st.ID, i, QuestionIDs[i], q.ID)
		}
		if strings.TrimSpace(q.Prompt) == "" {
			return fmt.Errorf("%s/%s: empty prompt", st.ID, q.ID)
		}
		if len(q.Reference.Bullets) == 0 || strings.TrimSpace(q.Reference.Full) == "" {
			return fmt.Errorf("%s/%s: reference answer requires bullets and full text", st.ID, q.ID)
		}
	}
	return nil
}

// Lookup returns a copy of the station so callers cannot alter catalog content.
func (c *Catalog) Lookup(id string) (Station, error) {
	st, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return Station{}, fmt.Errorf("%w: %q", ErrStationNotFound, id)
	}
	return st.clone(), nil
}

func (c *Catalog) DefaultStation() string { return c.defaultStation }

func (c *Catalog) Version() int { return c.version }

func (c *Catalog) Scoring() ScoringSpec {
	out := c.scoring
	out.Domains = append([]string(nil), c.scoring.Domains...)
	return out
}

// List returns every station ordered by id.
func (c *Catalog) List() []Station {
	ids := make([]string, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Station, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.byID[id].clone())
	}
	return out
}
