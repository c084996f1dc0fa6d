package literary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Entry is one named row of a keyword table.
type Entry struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Tables holds the keyword tables used for movement and influence
// detection. Row order matters: it breaks ties between equal scores.
type Tables struct {
	Movements    []Entry `yaml:"movements"`
	Authors      []Entry `yaml:"authors"`
	Philosophies []Entry `yaml:"philosophies"`
}

// Validate rejects tables that would make detection meaningless.
func (t *Tables) Validate() error {
	if len(t.Movements) == 0 {
		return errors.New("at least one movement is required")
	}
	groups := map[string][]Entry{
		"movements":    t.Movements,
		"authors":      t.Authors,
		"philosophies": t.Philosophies,
	}
	for group, entries := range groups {
		for i, e := range entries {
			if e.Name == "" {
				return fmt.Errorf("%s[%d]: name is required", group, i)
			}
			if len(e.Keywords) == 0 {
				return fmt.Errorf("%s[%d] %q: keywords are required", group, i, e.Name)
			}
		}
	}
	return nil
}

// DefaultTables returns the built-in keyword tables.
func DefaultTables() *Tables {
	return &Tables{
		Movements: []Entry{
			{"romanticism", []string{"emotion", "nature", "imagination", "individual", "passion", "sublime", "feeling", "heart", "soul", "beauty"}},
			{"realism", []string{"reality", "ordinary", "everyday", "society", "social", "realistic", "life", "contemporary", "observation"}},
			{"modernism", []string{"consciousness", "fragmentation", "alienation", "stream", "experimental", "innovation", "urban", "modern"}},
			{"postmodernism", []string{"irony", "metafiction", "paradox", "self-referential", "pastiche", "deconstruction", "plurality"}},
			{"symbolism", []string{"symbol", "metaphor", "abstract", "spiritual", "mystical", "dream", "vision", "transcendent"}},
			{"naturalism", []string{"determinism", "survival", "environment", "instinct", "heredity", "scientific", "objective"}},
			{"surrealism", []string{"subconscious", "dream", "irrational", "unconscious", "bizarre", "fantasy", "surreal"}},
			{"classicism", []string{"order", "harmony", "reason", "balance", "proportion", "rational", "classical", "tradition"}},
			{"expressionism", []string{"distortion", "emotional", "subjective", "exaggeration", "intensity", "inner", "psychological"}},
			{"existentialism", []string{"existence", "freedom", "absurd", "choice", "responsibility", "meaning", "authentic", "being"}},
		},
		Authors: []Entry{
			{"shakespeare", []string{"drama", "theatre", "tragedy", "comedy", "sonnet", "elizabethan"}},
			{"cervantes", []string{"quixote", "knight", "chivalry", "satire", "picaresque"}},
			{"homer", []string{"epic", "odyssey", "iliad", "hero", "greek", "classical"}},
			{"dante", []string{"inferno", "divine", "hell", "paradise", "medieval"}},
			{"dostoyevsky", []string{"underground", "psychological", "crime", "punishment", "russian"}},
			{"tolstoy", []string{"war", "peace", "anna", "karenina", "russian", "epic"}},
			{"joyce", []string{"ulysses", "stream", "consciousness", "modernist", "dublin"}},
			{"kafka", []string{"metamorphosis", "trial", "absurd", "bureaucracy", "alienation"}},
			{"woolf", []string{"waves", "lighthouse", "orlando", "stream", "consciousness"}},
			{"proust", []string{"remembrance", "time", "past", "memory", "introspection"}},
			{"faulkner", []string{"yoknapatawpha", "south", "american", "stream", "consciousness"}},
			{"borges", []string{"labyrinth", "mirror", "infinity", "metaphysical", "argentine"}},
			{"garcia marquez", []string{"solitude", "magical", "realism", "macondo", "colombian"}},
			{"hemingway", []string{"old man", "sea", "arms", "sun", "sparse", "direct"}},
			{"poe", []string{"raven", "gothic", "horror", "detective", "macabre"}},
			{"dickens", []string{"expectation", "twist", "tale", "cities", "victorian"}},
			{"austen", []string{"pride", "prejudice", "sense", "sensibility", "manners"}},
			{"bronte", []string{"jane eyre", "wuthering", "heights", "gothic", "romantic"}},
		},
		Philosophies: []Entry{
			{"enlightenment", []string{"reason", "rational", "progress", "science", "empirical"}},
			{"romanticism", []string{"emotion", "nature", "individual", "imagination", "sublime"}},
			{"marxism", []string{"class", "proletariat", "capitalism", "revolution", "economic"}},
			{"freudian", []string{"unconscious", "psychoanalysis", "id", "ego", "dream"}},
			{"nietzschean", []string{"superman", "will", "power", "nihilism", "morality"}},
			{"existentialism", []string{"existence", "freedom", "absurd", "authentic", "being"}},
			{"structuralism", []string{"structure", "system", "sign", "language", "binary"}},
			{"poststructuralism", []string{"deconstruction", "difference", "trace", "supplement"}},
			{"feminism", []string{"gender", "women", "patriarchy", "equality", "feminist"}},
			{"postcolonialism", []string{"colonial", "empire", "identity", "hybridity", "subaltern"}},
		},
	}
}

// LoadTables reads a YAML tables file. Groups missing from the file keep
// their built-in rows.
func LoadTables(path string) (*Tables, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tables file: %w", err)
	}

	var parsed Tables
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse tables file %s: %w", path, err)
	}

	out := DefaultTables()
	if len(parsed.Movements) > 0 {
		out.Movements = parsed.Movements
	}
	if parsed.Authors != nil {
		out.Authors = parsed.Authors
	}
	if parsed.Philosophies != nil {
		out.Philosophies = parsed.Philosophies
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tables file %s: %w", path, err)
	}
	return out, nil
}

// TableSource hands out the current tables. Readers never see a partially
// replaced table; a reload swaps the whole value.
type TableSource struct {
	current atomic.Pointer[Tables]
	logger  *slog.Logger
}

// NewTableSource starts from t, or from the built-in tables when t is nil.
func NewTableSource(t *Tables, logger *slog.Logger) *TableSource {
	if t == nil {
		t = DefaultTables()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &TableSource{logger: logger}
	s.current.Store(t)
	return s
}

// Current returns the tables in effect.
func (s *TableSource) Current() *Tables {
	return s.current.Load()
}

// Reload re-reads path. On error the previous tables stay in effect.
func (s *TableSource) Reload(path string) error {
	t, err := LoadTables(path)
	if err != nil {
		return err
	}
	s.current.Store(t)
	s.logger.Info("literary tables reloaded",
		slog.String("path", path),
		slog.Int("movements", len(t.Movements)),
		slog.Int("authors", len(t.Authors)),
		slog.Int("philosophies", len(t.Philosophies)))
	return nil
}

// reloadDebounce coalesces the burst of events an editor save produces.
const reloadDebounce = 250 * time.Millisecond

// Watch reloads path whenever it changes until ctx is done. The parent
// directory is watched so that atomic rename-style saves are seen.
func (s *TableSource) Watch(ctx context.Context, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	go func() {
		defer func() {
			_ = w.Close()
		}()

		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(reloadDebounce)
				} else {
					timer.Reset(reloadDebounce)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				if err := s.Reload(abs); err != nil {
					s.logger.Warn("literary tables reload failed, keeping previous tables",
						slog.String("path", abs),
						slog.Any("error", err))
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.logger.Warn("literary tables watcher error", slog.Any("error", err))
			}
		}
	}()
	return nil
}
