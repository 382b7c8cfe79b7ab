package navbuild

import (
	"github.com/gorustyt/navbuild/recast"
)

// Result holds the outcome of one build. PolyMesh and DetailMesh are owned
// by the caller until Release.
type Result struct {
	BuildID    string
	Params     Params
	PolyMesh   *recast.RcPolyMesh
	DetailMesh *recast.RcPolyMeshDetail

	report string
}

// Report is empty after a successful build and names the failing stage otherwise.
func (r *Result) Report() string {
	if r == nil {
		return ""
	}
	return r.report
}

// Succeeded reports whether both meshes are present.
func (r *Result) Succeeded() bool {
	return r != nil && r.PolyMesh != nil && r.DetailMesh != nil
}

// Release frees whichever meshes are present and clears the report.
// It is safe on a nil Result and may be called more than once.
func (r *Result) Release() error {
	if r == nil {
		return nil
	}
	if r.DetailMesh != nil {
		r.DetailMesh.Release()
		r.DetailMesh = nil
	}
	if r.PolyMesh != nil {
		r.PolyMesh.Release()
		r.PolyMesh = nil
	}
	r.report = ""
	return nil
}

type releaseEntry struct {
	stage    string
	artifact Artifact
	final    bool
}

// releaseStack tracks the artifacts of a build in acquisition order.
type releaseStack struct {
	entries []releaseEntry
}

// push records a. Final artifacts survive releaseTransient.
func (s *releaseStack) push(stage string, a Artifact, final bool) {
	if a == nil {
		return
	}
	s.entries = append(s.entries, releaseEntry{stage: stage, artifact: a, final: final})
}

// releaseAll releases every recorded artifact, newest first.
func (s *releaseStack) releaseAll() {
	for i := len(s.entries) - 1; i >= 0; i-- {
		s.entries[i].artifact.Release()
	}
	s.entries = nil
}

// releaseTransient releases the non-final artifacts, newest first, and keeps the rest.
func (s *releaseStack) releaseTransient() {
	kept := s.entries[:0]
	for i := len(s.entries) - 1; i >= 0; i-- {
		if !s.entries[i].final {
			s.entries[i].artifact.Release()
		}
	}
	for _, e := range s.entries {
		if e.final {
			kept = append(kept, e)
		}
	}
	s.entries = kept
}

// clear forgets the recorded artifacts without releasing them.
func (s *releaseStack) clear() {
	s.entries = nil
}

func (s *releaseStack) stages() []string {
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.stage)
	}
	return out
}
