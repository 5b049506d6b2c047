package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
)

// Version is overridden at link time with -ldflags "-X main.Version=...".
var Version = "dev"

// compiledFeatures holds "group:name" entries registered from init().
var compiledFeatures []string

// featureGroups buckets compiledFeatures by prefix, names sorted.
func featureGroups() map[string][]string {
	groups := make(map[string][]string)
	for _, f := range compiledFeatures {
		group, name, ok := strings.Cut(f, ":")
		if !ok {
			group, name = "other", f
		}
		groups[group] = append(groups[group], name)
	}
	for _, names := range groups {
		sort.Strings(names)
	}
	return groups
}

func writeFeatures(w io.Writer) {
	fmt.Fprintf(w, "Video Surface %s (%s, %s/%s)\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	groups := featureGroups()
	if len(groups) == 0 {
		fmt.Fprintln(w, "no features compiled in")
		return
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-8s %s\n", k+":", strings.Join(groups[k], ", "))
	}
}

func printFeatures() { writeFeatures(os.Stdout) }
