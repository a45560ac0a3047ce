// Package project reads workspace configuration: the angular.json workspace
// file and the tsconfig files its build and test targets point at.
package project

import (
	"encoding/json"
	"sort"

	"github.com/robfig/ngc/errortypes"
	"github.com/robfig/ngc/vfs"
)

// workspaceFiles are the locations a workspace file is looked up at, in
// order.
var workspaceFiles = []string{"angular.json", ".angular.json"}

// Workspace is the parsed workspace file.
type Workspace struct {
	Path     string
	Projects map[string]*Project
}

// Project is one project of a workspace.
type Project struct {
	Root       string
	SourceRoot string
	Targets    map[string]*Target
}

// Target is a builder target such as build or test, with its default
// options and named configurations.
type Target struct {
	Options        map[string]interface{}            `json:"options"`
	Configurations map[string]map[string]interface{} `json:"configurations"`
}

type rawProject struct {
	Root       string             `json:"root"`
	SourceRoot string             `json:"sourceRoot"`
	Architect  map[string]*Target `json:"architect"`
	Targets    map[string]*Target `json:"targets"`
}

// ReadWorkspace reads the workspace file of tree.  A missing or malformed
// workspace file is a ConfigurationError.
func ReadWorkspace(tree *vfs.Tree) (*Workspace, error) {
	for _, name := range workspaceFiles {
		if !tree.Exists(name) {
			continue
		}
		var content, err = tree.Read(name)
		if err != nil {
			return nil, err
		}
		return ParseWorkspace(name, content)
	}
	return nil, errortypes.New(errortypes.ConfigurationError, "could not find a workspace file (angular.json)")
}

// ParseWorkspace parses the content of a workspace file.
func ParseWorkspace(name, content string) (*Workspace, error) {
	var raw struct {
		Projects map[string]*rawProject `json:"projects"`
	}
	if err := json.Unmarshal([]byte(stripComments(content)), &raw); err != nil {
		return nil, &errortypes.Error{Kind: errortypes.ConfigurationError, Path: name, Msg: "invalid workspace file: " + err.Error(), Err: err}
	}
	var ws = &Workspace{Path: name, Projects: make(map[string]*Project)}
	for projectName, p := range raw.Projects {
		if p == nil {
			continue
		}
		var targets = p.Targets
		if targets == nil {
			targets = p.Architect
		}
		ws.Projects[projectName] = &Project{Root: p.Root, SourceRoot: p.SourceRoot, Targets: targets}
	}
	return ws, nil
}

// ProjectNames returns the names of the projects in lexical order.
func (ws *Workspace) ProjectNames() []string {
	var names []string
	for name := range ws.Projects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// allOptions returns the default options of t followed by those of each
// configuration, in lexical order of configuration name.
func (t *Target) allOptions() []map[string]interface{} {
	var out []map[string]interface{}
	if t.Options != nil {
		out = append(out, t.Options)
	}
	var names []string
	for name := range t.Configurations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, t.Configurations[name])
	}
	return out
}

// TsConfigPaths returns the tsconfig files referenced by the build and test
// targets of every project.  Only files present in tree are returned, each
// at most once per list.  Without a workspace file both lists are empty.
func TsConfigPaths(tree *vfs.Tree) (build, test []string, err error) {
	var ws *Workspace
	ws, err = ReadWorkspace(tree)
	if err != nil {
		if errortypes.Is(err, errortypes.ConfigurationError) && !hasWorkspace(tree) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	var collect = func(target *Target, into *[]string) {
		if target == nil {
			return
		}
		var seen = make(map[string]bool)
		for _, name := range *into {
			seen[name] = true
		}
		for _, opts := range target.allOptions() {
			var name, ok = opts["tsConfig"].(string)
			if !ok {
				continue
			}
			name = vfs.Clean(name)
			if seen[name] || !tree.Exists(name) {
				continue
			}
			seen[name] = true
			*into = append(*into, name)
		}
	}
	for _, name := range ws.ProjectNames() {
		var p = ws.Projects[name]
		collect(p.Targets["build"], &build)
		collect(p.Targets["test"], &test)
	}
	return build, test, nil
}

func hasWorkspace(tree *vfs.Tree) bool {
	for _, name := range workspaceFiles {
		if tree.Exists(name) {
			return true
		}
	}
	return false
}
