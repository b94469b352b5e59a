package treefile_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opsbrain/dtree/pkg/marker"
	"github.com/opsbrain/dtree/pkg/tree"
	"github.com/opsbrain/dtree/pkg/treefile"
)

// buildStore creates a small session tree: root with two children, one of
// which has a marker-carrying body.
func buildStore() (*tree.Store, []string) {
	s := tree.NewStore("myproject-20250825")

	rootID, err := s.Create("Session Start", "")
	Expect(err).NotTo(HaveOccurred())
	a, err := s.AddChild(rootID, "Investigate bug", "looked at the stack trace")
	Expect(err).NotTo(HaveOccurred())
	b, err := s.AddChild(rootID, "Decide", "Decision: roll back\nKEY: config drift")
	Expect(err).NotTo(HaveOccurred())

	return s, []string{rootID, a, b}
}

func roundTrip(s *tree.Store) *tree.Store {
	var buf bytes.Buffer
	Expect(treefile.Encode(&buf, s)).To(Succeed())

	loaded, err := treefile.Decode(&buf)
	Expect(err).NotTo(HaveOccurred())
	return loaded
}

var _ = Describe("Encode", func() {
	It("writes the session header and one block per node in pre-order", func() {
		s, ids := buildStore()

		var buf bytes.Buffer
		Expect(treefile.Encode(&buf, s)).To(Succeed())
		out := buf.String()

		Expect(out).To(HavePrefix("# decision tree: myproject-20250825\n"))
		for _, id := range ids {
			Expect(out).To(ContainSubstring("## node " + id))
		}

		// Pre-order: the root block appears before its children.
		Expect(strings.Index(out, "## node "+ids[0])).To(BeNumerically("<", strings.Index(out, "## node "+ids[1])))
	})

	It("writes the root's parent field as -", func() {
		s, ids := buildStore()

		var buf bytes.Buffer
		Expect(treefile.Encode(&buf, s)).To(Succeed())

		rootBlock := "## node " + ids[0] + "\n- title: Session Start\n- parent: -\n"
		Expect(buf.String()).To(ContainSubstring(rootBlock))
	})

	It("lengthens the body fence past any backtick run in the body", func() {
		s := tree.NewStore("p-20250825")
		rootID, err := s.Create("root", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(s.SetBody(rootID, "code:\n````\nnested fence\n````")).To(Succeed())

		var buf bytes.Buffer
		Expect(treefile.Encode(&buf, s)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("\n`````\n"))
	})
})

var _ = Describe("round-trip", func() {
	It("preserves ids, structure, titles, and bodies", func() {
		s, ids := buildStore()
		loaded := roundTrip(s)

		Expect(loaded.SessionID()).To(Equal(s.SessionID()))
		Expect(loaded.RootID()).To(Equal(s.RootID()))
		Expect(loaded.Len()).To(Equal(s.Len()))

		for _, id := range ids {
			want, err := s.Get(id)
			Expect(err).NotTo(HaveOccurred())
			got, err := loaded.Get(id)
			Expect(err).NotTo(HaveOccurred())

			Expect(got.Title).To(Equal(want.Title))
			Expect(got.Body).To(Equal(want.Body))
			Expect(got.ParentID).To(Equal(want.ParentID))
			Expect(got.Children).To(Equal(want.Children))
			Expect(got.CreatedAt).To(BeTemporally("==", want.CreatedAt))
			Expect(got.UpdatedAt).To(BeTemporally("==", want.UpdatedAt))
		}
	})

	It("re-derives markers from bodies on load", func() {
		s, ids := buildStore()
		loaded := roundTrip(s)

		Expect(loaded.NodesWith(marker.Decision)).To(Equal([]string{ids[2]}))
		Expect(loaded.NodesWith(marker.Key)).To(Equal([]string{ids[2]}))
		Expect(loaded.NodesWith(marker.TODO)).To(BeEmpty())
	})

	DescribeTable("preserves tricky bodies byte-exact",
		func(body string) {
			s := tree.NewStore("p-20250825")
			rootID, err := s.Create("root", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(s.SetBody(rootID, body)).To(Succeed())

			loaded := roundTrip(s)
			got, err := loaded.Get(rootID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Body).To(Equal(body))
		},
		Entry("empty body", ""),
		Entry("single line", "just one line"),
		Entry("trailing newline", "line\n"),
		Entry("multiple trailing newlines", "line\n\n\n"),
		Entry("blank lines inside", "para one\n\npara two"),
		Entry("looks like a node header", "## node fake-id\n- title: not a field"),
		Entry("looks like a file header", "# decision tree: fake"),
		Entry("contains a fence", "```\ncode\n```"),
		Entry("contains long backtick runs", "``````\nsix backticks\n``````"),
		Entry("unicode", "путь → решение ✓\n日本語"),
	)

	DescribeTable("preserves tricky titles",
		func(title string) {
			s := tree.NewStore("p-20250825")
			rootID, err := s.Create("root", "")
			Expect(err).NotTo(HaveOccurred())
			id, err := s.AddChild(rootID, title, "")
			Expect(err).NotTo(HaveOccurred())

			loaded := roundTrip(s)
			got, err := loaded.Get(id)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Title).To(Equal(title))
		},
		Entry("newline inside", "first line\nsecond line"),
		Entry("trailing newline", "line\n"),
		Entry("carriage return", "dos\r\nline"),
		Entry("literal backslash-n", `not a \n newline`),
		Entry("backslash before newline", "trailing slash\\\nnext"),
		Entry("looks like a field line", "- parent: ghost"),
	)

	It("keeps a multi-line title on a single title line", func() {
		s := tree.NewStore("p-20250825")
		rootID, err := s.Create("root", "")
		Expect(err).NotTo(HaveOccurred())
		_, err = s.AddChild(rootID, "first line\nsecond line", "")
		Expect(err).NotTo(HaveOccurred())

		var buf bytes.Buffer
		Expect(treefile.Encode(&buf, s)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring(`- title: first line\nsecond line` + "\n"))
	})

	It("round-trips a tree encoded twice identically", func() {
		s, _ := buildStore()

		var first bytes.Buffer
		Expect(treefile.Encode(&first, s)).To(Succeed())

		loaded, err := treefile.Decode(bytes.NewReader(first.Bytes()))
		Expect(err).NotTo(HaveOccurred())

		var second bytes.Buffer
		Expect(treefile.Encode(&second, loaded)).To(Succeed())

		Expect(second.String()).To(Equal(first.String()))
	})
})

var _ = Describe("Decode", func() {
	It("rejects input without a header", func() {
		_, err := treefile.Decode(strings.NewReader("## node abc\n"))
		Expect(err).To(MatchError(treefile.ErrMalformedTree))
	})

	It("rejects an empty file", func() {
		_, err := treefile.Decode(strings.NewReader(""))
		Expect(err).To(MatchError(treefile.ErrMalformedTree))
	})

	It("rejects a header with no nodes", func() {
		_, err := treefile.Decode(strings.NewReader("# decision tree: p-20250825\n\n"))
		Expect(err).To(MatchError(treefile.ErrMalformedTree))
	})

	It("rejects a node missing required fields", func() {
		input := `# decision tree: p-20250825

## node abc
- title: incomplete

` + "```\n```\n"
		_, err := treefile.Decode(strings.NewReader(input))
		Expect(err).To(MatchError(treefile.ErrMalformedTree))
		Expect(err.Error()).To(ContainSubstring("missing field"))
	})

	It("rejects an unterminated body fence", func() {
		input := `# decision tree: p-20250825

## node abc
- title: t
- parent: -
- children: -
- created: 2025-08-25T09:00:00Z
- updated: 2025-08-25T09:00:00Z

` + "```\nbody never ends\n"
		_, err := treefile.Decode(strings.NewReader(input))
		Expect(err).To(MatchError(treefile.ErrMalformedTree))
		Expect(err.Error()).To(ContainSubstring("unterminated"))
	})

	It("rejects a bad timestamp", func() {
		input := `# decision tree: p-20250825

## node abc
- title: t
- parent: -
- children: -
- created: yesterday
- updated: 2025-08-25T09:00:00Z

` + "```\n```\n"
		_, err := treefile.Decode(strings.NewReader(input))
		Expect(err).To(MatchError(treefile.ErrMalformedTree))
	})

	It("rejects a child id that is never defined", func() {
		input := `# decision tree: p-20250825

## node abc
- title: t
- parent: -
- children: ghost
- created: 2025-08-25T09:00:00Z
- updated: 2025-08-25T09:00:00Z

` + "```\n```\n"
		_, err := treefile.Decode(strings.NewReader(input))
		Expect(err).To(MatchError(treefile.ErrMalformedTree))
	})

	It("rejects two roots", func() {
		input := `# decision tree: p-20250825

## node abc
- title: one
- parent: -
- children: -
- created: 2025-08-25T09:00:00Z
- updated: 2025-08-25T09:00:00Z

` + "```\n```\n" + `
## node def
- title: two
- parent: -
- children: -
- created: 2025-08-25T09:00:00Z
- updated: 2025-08-25T09:00:00Z

` + "```\n```\n"
		_, err := treefile.Decode(strings.NewReader(input))
		Expect(err).To(MatchError(treefile.ErrMalformedTree))
	})

	It("accepts a hand-written minimal file", func() {
		input := `# decision tree: p-20250825

## node abc
- title: Session Start
- parent: -
- children: def
- created: 2025-08-25T09:00:00Z
- updated: 2025-08-25T09:00:00Z

` + "```\nTODO: everything\n```\n" + `
## node def
- title: First idea
- parent: abc
- children: -
- created: 2025-08-25T09:05:00Z
- updated: 2025-08-25T09:05:00Z

` + "```\n```\n"

		s, err := treefile.Decode(strings.NewReader(input))
		Expect(err).NotTo(HaveOccurred())
		Expect(s.RootID()).To(Equal("abc"))
		Expect(s.Len()).To(Equal(2))
		Expect(s.NodesWith(marker.TODO)).To(Equal([]string{"abc"}))
	})
})
