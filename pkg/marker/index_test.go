package marker_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opsbrain/dtree/pkg/marker"
)

var _ = Describe("Index", func() {
	var idx *marker.Index

	BeforeEach(func() {
		idx = marker.NewIndex()
	})

	Describe("Reindex", func() {
		It("records markers extracted from the body", func() {
			s := idx.Reindex("n1", "Decision: go with plan B")

			Expect(s.Has(marker.Decision)).To(BeTrue())
			Expect(idx.Contains(marker.Decision, "n1")).To(BeTrue())
			Expect(idx.Count(marker.Decision)).To(Equal(1))
		})

		It("replaces a node's previous entries on body change", func() {
			idx.Reindex("n1", "TODO: first draft")
			idx.Reindex("n1", "Decision: done, no more TODOs here")

			Expect(idx.Contains(marker.TODO, "n1")).To(BeFalse())
			Expect(idx.Contains(marker.Decision, "n1")).To(BeTrue())
			Expect(idx.Count(marker.TODO)).To(Equal(0))
		})

		It("leaves other nodes untouched", func() {
			idx.Reindex("n1", "TODO: a")
			idx.Reindex("n2", "TODO: b")

			idx.Reindex("n1", "plain text")

			Expect(idx.Contains(marker.TODO, "n2")).To(BeTrue())
			Expect(idx.Count(marker.TODO)).To(Equal(1))
		})
	})

	Describe("Forget", func() {
		It("removes all entries for a node", func() {
			idx.Reindex("n1", "Important: keep\nKEY: auth flow")

			idx.Forget("n1")

			Expect(idx.Of("n1")).To(BeEmpty())
			Expect(idx.Contains(marker.Important, "n1")).To(BeFalse())
			Expect(idx.Contains(marker.Key, "n1")).To(BeFalse())
		})

		It("is a no-op for unknown nodes", func() {
			idx.Forget("ghost")
			Expect(idx.Count(marker.Decision)).To(Equal(0))
		})
	})

	Describe("Of", func() {
		It("returns an empty set for unknown nodes", func() {
			Expect(idx.Of("missing")).To(BeEmpty())
		})

		It("returns the recorded set", func() {
			idx.Reindex("n1", "Decision: x\nKEY: y")
			Expect(idx.Of("n1").Kinds()).To(Equal([]marker.Kind{marker.Decision, marker.Key}))
		})

		It("returns a copy that cannot corrupt the index", func() {
			idx.Reindex("n1", "Decision: x")

			s := idx.Of("n1")
			delete(s, marker.Decision)
			s[marker.TODO] = struct{}{}

			Expect(idx.Of("n1").Kinds()).To(Equal([]marker.Kind{marker.Decision}))
			Expect(idx.Contains(marker.Decision, "n1")).To(BeTrue())
		})
	})

	Describe("Count", func() {
		It("counts nodes per kind", func() {
			idx.Reindex("n1", "TODO: a")
			idx.Reindex("n2", "TODO: b")
			idx.Reindex("n3", "Decision: c")

			Expect(idx.Count(marker.TODO)).To(Equal(2))
			Expect(idx.Count(marker.Decision)).To(Equal(1))
			Expect(idx.Count(marker.Important)).To(Equal(0))
		})
	})
})
