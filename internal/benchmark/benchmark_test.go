// SPDX-License-Identifier: MPL-2.0

package benchmark

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/scanbridge/scanbridge/internal/analyzer"
	"github.com/scanbridge/scanbridge/internal/reducer"
	"github.com/scanbridge/scanbridge/internal/snapshot"
	"github.com/scanbridge/scanbridge/internal/testutil"
	"github.com/scanbridge/scanbridge/internal/walker"
)

// moduleCount is the number of library modules in the generated build. Each
// module depends on its predecessor, so classpaths grow along the chain.
const moduleCount = 120

// workspace writes a generated multi-module snapshot with matching source
// directories and returns the snapshot path.
func workspace(b *testing.B) string {
	b.Helper()
	root := b.TempDir()

	var sb strings.Builder
	sb.WriteString("rootDir: \".\"\nprojects: [\n")
	sb.WriteString("\t{path: \":\", name: \"bench\", group: \"org.example\", version: \"1.0\", dir: \".\"},\n")

	files := map[string]string{}
	for i := range moduleCount {
		name := fmt.Sprintf("m%03d", i)
		fmt.Fprintf(&sb, "\t{\n\t\tpath: \":%s\"\n\t\tname: %q\n\t\tdir: %q\n", name, name, name)
		sb.WriteString("\t\tplugins: [\"java-library\", \"jacoco\"]\n")
		sb.WriteString("\t\tsourceSets: [\n")
		sb.WriteString("\t\t\t{name: \"main\", java: [\"src/main/java\"], resources: [\"src/main/resources\"], outputs: [{file: \"build/classes/java/main\"}]},\n")
		sb.WriteString("\t\t\t{name: \"test\", java: [\"src/test/java\"]},\n")
		sb.WriteString("\t\t]\n")
		sb.WriteString("\t\tconfigurations: compileClasspath: [\n")
		fmt.Fprintf(&sb, "\t\t\t{artifact: \"org.example:ext%d:1\", file: \"../libs/ext%d.jar\"},\n", i%10, i%10)
		if i > 0 {
			fmt.Fprintf(&sb, "\t\t\t{project: \":m%03d\"},\n", i-1)
		}
		sb.WriteString("\t\t]\n\t},\n")

		files[name+"/src/main/java/"] = ""
		files[name+"/src/main/resources/"] = ""
		files[name+"/src/test/java/"] = ""
		files[name+"/build/classes/java/main/"] = ""
	}
	sb.WriteString("]\n")
	for i := range 10 {
		files[fmt.Sprintf("libs/ext%d.jar", i)] = "jar"
	}
	files[snapshot.DefaultFileName] = sb.String()

	testutil.WriteTree(b, root, files)
	return filepath.Join(root, snapshot.DefaultFileName)
}

// BenchmarkSnapshotParsing benchmarks CUE decoding and schema validation.
func BenchmarkSnapshotParsing(b *testing.B) {
	path := workspace(b)

	b.ResetTimer()
	for b.Loop() {
		if _, err := snapshot.Load(path); err != nil {
			b.Fatalf("Load failed: %v", err)
		}
	}
}

// BenchmarkTreeBuild benchmarks module tree construction and ordering.
func BenchmarkTreeBuild(b *testing.B) {
	snap, err := snapshot.Load(workspace(b))
	if err != nil {
		b.Fatalf("Load failed: %v", err)
	}

	b.ResetTimer()
	for b.Loop() {
		if _, err := walker.Build(snap, nil); err != nil {
			b.Fatalf("Build failed: %v", err)
		}
	}
}

// BenchmarkResolve benchmarks concurrent module resolution at different
// worker counts.
func BenchmarkResolve(b *testing.B) {
	snap, err := snapshot.Load(workspace(b))
	if err != nil {
		b.Fatalf("Load failed: %v", err)
	}
	tree, err := walker.Build(snap, nil)
	if err != nil {
		b.Fatalf("Build failed: %v", err)
	}

	for _, workers := range []int{1, runtime.GOMAXPROCS(0)} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			for b.Loop() {
				if _, err := walker.Resolve(b.Context(), tree, walker.Options{Workers: workers}); err != nil {
					b.Fatalf("Resolve failed: %v", err)
				}
			}
		})
	}
}

// BenchmarkReduce benchmarks property reduction over a resolved tree.
func BenchmarkReduce(b *testing.B) {
	snap, err := snapshot.Load(workspace(b))
	if err != nil {
		b.Fatalf("Load failed: %v", err)
	}
	tree, err := walker.Build(snap, nil)
	if err != nil {
		b.Fatalf("Build failed: %v", err)
	}
	res, err := walker.Resolve(b.Context(), tree, walker.Options{})
	if err != nil {
		b.Fatalf("Resolve failed: %v", err)
	}

	b.ResetTimer()
	for b.Loop() {
		if _, err := reducer.Reduce(tree, res, reducer.Options{}); err != nil {
			b.Fatalf("Reduce failed: %v", err)
		}
	}
}

// BenchmarkFullPipeline benchmarks snapshot to materialized properties.
func BenchmarkFullPipeline(b *testing.B) {
	path := workspace(b)
	svc := analyzer.New(nil)

	b.ResetTimer()
	for b.Loop() {
		r, err := svc.Properties(b.Context(), analyzer.Request{SnapshotPath: path})
		if err != nil {
			b.Fatalf("Properties failed: %v", err)
		}
		if len(r.Properties) == 0 {
			b.Fatal("no properties")
		}
	}
}
