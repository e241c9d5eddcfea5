package platform

import (
	"path/filepath"
	"strings"

	ps "github.com/mitchellh/go-ps"
)

// processIDs returns the ids of running processes whose executable matches
// name, in the order the OS lists them
func processIDs(name string) []int {
	procs, err := ps.Processes()
	if err != nil {
		return nil
	}

	var pids []int
	for _, p := range procs {
		if matchesProcess(p.Executable(), name) {
			pids = append(pids, p.Pid())
		}
	}
	return pids
}

// matchesProcess compares an executable name with a process name, ignoring
// case and a trailing ".exe"
func matchesProcess(executable, name string) bool {
	exe := filepath.Base(executable)
	exe = strings.TrimSuffix(strings.ToLower(exe), ".exe")
	return exe == strings.ToLower(name)
}

// pidSet returns the pids of name as a set
func pidSet(name string) map[int]bool {
	set := make(map[int]bool)
	for _, pid := range processIDs(name) {
		set[pid] = true
	}
	return set
}
