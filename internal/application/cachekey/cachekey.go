// Package cachekey derives the structural hash that keys compiled bundles.
package cachekey

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sort"
	"strings"

	"github.com/aescanero/dagoc/pkg/domain"
)

// schemaSalt changes whenever the hashed layout changes, so keys written by an
// older layout never match.
const schemaSalt = "dagoc.cachekey/v2"

// Compute returns the hex SHA-256 of the graph's normalised content. Edges are
// hashed after normalisation: "A" and "A|" hash the same while "A" and "A|B"
// do not.
func Compute(spec *domain.GraphSpec) string {
	h := sha256.New()
	writeField(h, schemaSalt)
	writeField(h, spec.Name)
	writeField(h, spec.EntryPoint)

	for _, name := range spec.NodeNames() {
		n := spec.Nodes[name]
		writeField(h, "node")
		writeField(h, n.Name)
		writeField(h, n.AgentType)
		writeField(h, n.Context)
		writeField(h, strings.Join(n.InputFields, "|"))
		writeField(h, n.OutputField)
		writeField(h, n.Prompt)
		writeField(h, n.Description)
		for _, c := range n.EdgeConditions() {
			writeField(h, "edge:"+string(c))
			writeField(h, canonicalEdge(n.Edges[c]))
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Verify recomputes the hash of bundle.Graph and compares it with the embedded
// one.
func Verify(bundle *domain.Bundle) error {
	computed := Compute(bundle.Graph)
	if computed != bundle.Hash {
		return &domain.CacheConsistencyError{
			Graph:    bundle.Graph.Name,
			Embedded: bundle.Hash,
			Computed: computed,
		}
	}
	return nil
}

func canonicalEdge(t domain.EdgeTarget) string {
	return domain.FoldEdge(t,
		func() string { return "absent" },
		func(name string) string { return "single:" + name },
		func(names []string) string {
			sorted := append([]string(nil), names...)
			sort.Strings(sorted)
			return "parallel:" + strings.Join(sorted, "|")
		},
	)
}

// writeField writes a length-prefixed field so adjacent values cannot run
// into each other.
func writeField(w io.Writer, s string) {
	var prefix [8]byte
	n := uint64(len(s))
	for i := 7; i >= 0; i-- {
		prefix[i] = byte(n)
		n >>= 8
	}
	_, _ = w.Write(prefix[:])
	_, _ = io.WriteString(w, s)
}
