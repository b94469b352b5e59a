package treefile_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opsbrain/dtree/pkg/treefile"
)

var _ = Describe("naming", func() {
	date := time.Date(2025, 8, 25, 14, 30, 0, 0, time.UTC)

	Describe("Filename", func() {
		It("encodes the date", func() {
			Expect(treefile.Filename(date)).To(Equal("decision_tree_20250825_session.md"))
		})
	})

	Describe("SessionID", func() {
		It("combines project and date", func() {
			Expect(treefile.SessionID("myproject", date)).To(Equal("myproject-20250825"))
		})
	})

	Describe("ParseFilename", func() {
		It("extracts the date from a tree file name", func() {
			parsed, ok := treefile.ParseFilename("decision_tree_20250825_session.md")
			Expect(ok).To(BeTrue())
			Expect(parsed.Year()).To(Equal(2025))
			Expect(parsed.Month()).To(Equal(time.August))
			Expect(parsed.Day()).To(Equal(25))
		})

		It("rejects non-tree files", func() {
			for _, name := range []string{
				"session.lock",
				"notes.md",
				"decision_tree_session.md",
				"decision_tree_2025_session.md",
				"decision_tree_20250825_session.md.bak",
				".checkpoint-123456",
			} {
				_, ok := treefile.ParseFilename(name)
				Expect(ok).To(BeFalse(), "expected %q to be rejected", name)
			}
		})
	})

	Describe("IsTreeFile", func() {
		It("matches only dated tree files", func() {
			Expect(treefile.IsTreeFile("decision_tree_20250825_session.md")).To(BeTrue())
			Expect(treefile.IsTreeFile("decision_tree_99999999_session.md")).To(BeFalse())
			Expect(treefile.IsTreeFile("config.toml")).To(BeFalse())
		})
	})
})
