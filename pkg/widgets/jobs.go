package widgets

import (
	"errors"
	"strconv"
	"strings"

	"github.com/goliatone/go-specviz/pkg/formstate"
)

// DefaultJobsPath is the FormState collection job selectors read from.
const DefaultJobsPath = "jobs"

// ErrUnknownJob reports a selection outside the offered options.
var ErrUnknownJob = errors.New("widgets: job is not a selectable option")

// OwnerIndex parses the index of the job that owns fieldPath, e.g. 2 for
// "jobs.2.needs" with jobsPath "jobs".
func OwnerIndex(fieldPath, jobsPath string) (int, bool) {
	prefix := formstate.Split(jobsPath)
	segments := formstate.Split(fieldPath)
	if len(segments) <= len(prefix) {
		return -1, false
	}
	for i, segment := range prefix {
		if segments[i] != segment {
			return -1, false
		}
	}
	idx, err := strconv.Atoi(segments[len(prefix)])
	if err != nil || idx < 0 {
		return -1, false
	}
	return idx, true
}

// JobOptions lists the names of the jobs in state, excluding the job owning
// fieldPath and any other job sharing its name. Jobs without a name are
// skipped.
func JobOptions(state map[string]any, fieldPath, jobsPath string) []string {
	if jobsPath == "" {
		jobsPath = DefaultJobsPath
	}
	raw, ok := formstate.Get(state, jobsPath)
	if !ok {
		return []string{}
	}
	jobs, ok := raw.([]any)
	if !ok {
		return []string{}
	}
	owner, owned := OwnerIndex(fieldPath, jobsPath)

	out := make([]string, 0, len(jobs))
	seen := make(map[string]struct{}, len(jobs))
	if owned && owner < len(jobs) {
		if entry, ok := jobs[owner].(map[string]any); ok {
			if name, _ := entry["name"].(string); strings.TrimSpace(name) != "" {
				seen[strings.TrimSpace(name)] = struct{}{}
			}
		}
	}
	for idx, job := range jobs {
		if owned && idx == owner {
			continue
		}
		entry, ok := job.(map[string]any)
		if !ok {
			continue
		}
		name, _ := entry["name"].(string)
		if name = strings.TrimSpace(name); name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// SelectJob validates a single selection; the empty key clears it.
func SelectJob(options []string, key string) (string, error) {
	if key == "" || contains(options, key) {
		return key, nil
	}
	return "", ErrUnknownJob
}

// AddJob appends key to the selection when missing.
func AddJob(current any, options []string, key string) ([]any, error) {
	if !contains(options, key) {
		return nil, ErrUnknownJob
	}
	list := append([]any(nil), asList(current)...)
	if Checked(list, key) {
		return list, nil
	}
	return append(list, key), nil
}

// RemoveJob drops every occurrence of key from the selection.
func RemoveJob(current any, key string) []any {
	list := asList(current)
	out := make([]any, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && s == key {
			continue
		}
		out = append(out, item)
	}
	return out
}

func contains(options []string, key string) bool {
	for _, option := range options {
		if option == key {
			return true
		}
	}
	return false
}
