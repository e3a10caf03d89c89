// ABOUTME: Task definition loaders for filesystem and embedded sources
// ABOUTME: LoadAll skips invalid files with a logged error instead of aborting
package taskdef

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tasklens/stepmatch/internal/models"
)

// Loader resolves task definitions from some source. The knowledge base
// depends only on this interface, never on a filesystem layout.
type Loader interface {
	// Load returns the definition for one task, or an error if it is
	// absent or invalid
	Load(taskName string) (*models.TaskKnowledge, error)

	// LoadAll returns every valid definition the source contains, keyed
	// by task name. Invalid definitions are logged and skipped.
	LoadAll() (map[string]*models.TaskKnowledge, error)
}

// DirLoader loads task definitions from *.yaml / *.yml files in a directory
type DirLoader struct {
	Dir string
}

// NewDirLoader creates a loader over a directory of definition files
func NewDirLoader(dir string) *DirLoader {
	return &DirLoader{Dir: dir}
}

// Load reads <dir>/<taskName>.yaml (or .yml)
func (l *DirLoader) Load(taskName string) (*models.TaskKnowledge, error) {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(l.Dir, taskName+ext)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read task definition %s: %w", path, err)
		}
		return parseNamed(data, path, taskName)
	}
	return nil, fmt.Errorf("no definition file found for task %q in %s", taskName, l.Dir)
}

// LoadAll reads every definition file in the directory
func (l *DirLoader) LoadAll() (map[string]*models.TaskKnowledge, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read task directory %s: %w", l.Dir, err)
	}

	tasks := make(map[string]*models.TaskKnowledge)
	for _, name := range definitionFiles(entries) {
		path := filepath.Join(l.Dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("[TaskDef] Skipping %s: %v", path, err)
			continue
		}
		tk, err := Parse(data, path)
		if err != nil {
			log.Printf("[TaskDef] Skipping %s: %v", path, err)
			continue
		}
		tasks[tk.TaskName] = tk
	}
	return tasks, nil
}

// FSLoader loads task definitions from an fs.FS, which covers embedded
// definitions via embed.FS as well as any other fs implementation
type FSLoader struct {
	FS fs.FS
}

// NewFSLoader creates a loader over an fs.FS rooted at the definitions
func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{FS: fsys}
}

// Load reads <taskName>.yaml (or .yml) from the fs root
func (l *FSLoader) Load(taskName string) (*models.TaskKnowledge, error) {
	for _, ext := range []string{".yaml", ".yml"} {
		data, err := fs.ReadFile(l.FS, taskName+ext)
		if err != nil {
			continue
		}
		return parseNamed(data, taskName+ext, taskName)
	}
	return nil, fmt.Errorf("no definition file found for task %q", taskName)
}

// LoadAll reads every definition file at the fs root
func (l *FSLoader) LoadAll() (map[string]*models.TaskKnowledge, error) {
	entries, err := fs.ReadDir(l.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read task definitions: %w", err)
	}

	tasks := make(map[string]*models.TaskKnowledge)
	for _, name := range definitionFiles(entries) {
		data, err := fs.ReadFile(l.FS, name)
		if err != nil {
			log.Printf("[TaskDef] Skipping %s: %v", name, err)
			continue
		}
		tk, err := Parse(data, name)
		if err != nil {
			log.Printf("[TaskDef] Skipping %s: %v", name, err)
			continue
		}
		tasks[tk.TaskName] = tk
	}
	return tasks, nil
}

// LoadFile parses and validates a single definition file by path,
// independent of any loader. Used when registering a brand new task.
func LoadFile(path string) (*models.TaskKnowledge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task definition %s: %w", path, err)
	}
	return Parse(data, path)
}

// parseNamed parses a definition and checks that the file's task_name
// matches the name it was looked up by
func parseNamed(data []byte, source, taskName string) (*models.TaskKnowledge, error) {
	tk, err := Parse(data, source)
	if err != nil {
		return nil, err
	}
	if tk.TaskName != taskName {
		return nil, &ValidationError{
			TaskName: taskName,
			Field:    "task_name",
			Reason:   fmt.Sprintf("file %s declares task_name %q", source, tk.TaskName),
		}
	}
	return tk, nil
}

// definitionFiles filters directory entries down to YAML files, sorted for
// deterministic load order
func definitionFiles(entries []fs.DirEntry) []string {
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
