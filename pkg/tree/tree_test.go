package tree_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opsbrain/dtree/pkg/marker"
	"github.com/opsbrain/dtree/pkg/tree"
)

var _ = Describe("Store", func() {
	var s *tree.Store

	BeforeEach(func() {
		s = tree.NewStore("myproject-20250825")
	})

	Describe("Create", func() {
		It("initializes the tree with a root node", func() {
			id, err := s.Create("Session Start", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(id).NotTo(BeEmpty())

			Expect(s.RootID()).To(Equal(id))
			Expect(s.Len()).To(Equal(1))

			root, err := s.Get(id)
			Expect(err).NotTo(HaveOccurred())
			Expect(root.IsRoot()).To(BeTrue())
			Expect(root.IsLeaf()).To(BeTrue())
			Expect(root.Title).To(Equal("Session Start"))
		})

		It("rejects a second root", func() {
			_, err := s.Create("first", "")
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Create("second", "")
			Expect(err).To(MatchError(tree.ErrAlreadyInitialized))
		})
	})

	Describe("AddChild", func() {
		var rootID string

		BeforeEach(func() {
			var err error
			rootID, err = s.Create("Session Start", "")
			Expect(err).NotTo(HaveOccurred())
		})

		It("appends the new node to the parent's children", func() {
			a, err := s.AddChild(rootID, "a", "")
			Expect(err).NotTo(HaveOccurred())
			b, err := s.AddChild(rootID, "b", "")
			Expect(err).NotTo(HaveOccurred())

			root, err := s.Get(rootID)
			Expect(err).NotTo(HaveOccurred())
			Expect(root.Children).To(Equal([]string{a, b}))

			child, err := s.Get(a)
			Expect(err).NotTo(HaveOccurred())
			Expect(child.ParentID).To(Equal(rootID))
		})

		It("rejects a missing parent", func() {
			_, err := s.AddChild("nope", "orphan", "")
			Expect(err).To(MatchError(tree.ErrParentNotFound))
			Expect(s.Len()).To(Equal(1))
		})

		It("extracts markers from the body at creation", func() {
			id, err := s.AddChild(rootID, "decide", "Decision: use the cache")
			Expect(err).NotTo(HaveOccurred())

			markers, err := s.MarkersOf(id)
			Expect(err).NotTo(HaveOccurred())
			Expect(markers.Has(marker.Decision)).To(BeTrue())
		})

		It("issues unique ids", func() {
			seen := map[string]bool{}
			for range 50 {
				id, err := s.AddChild(rootID, "n", "")
				Expect(err).NotTo(HaveOccurred())
				Expect(seen[id]).To(BeFalse())
				seen[id] = true
			}
		})
	})

	Describe("Move", func() {
		var rootID, a, b, c string

		// root -> a -> b -> c
		BeforeEach(func() {
			var err error
			rootID, err = s.Create("root", "")
			Expect(err).NotTo(HaveOccurred())
			a, err = s.AddChild(rootID, "a", "")
			Expect(err).NotTo(HaveOccurred())
			b, err = s.AddChild(a, "b", "")
			Expect(err).NotTo(HaveOccurred())
			c, err = s.AddChild(b, "c", "")
			Expect(err).NotTo(HaveOccurred())
		})

		It("reattaches a subtree under a new parent", func() {
			Expect(s.Move(b, rootID)).To(Succeed())

			moved, err := s.Get(b)
			Expect(err).NotTo(HaveOccurred())
			Expect(moved.ParentID).To(Equal(rootID))
			// The subtree moves with its root.
			Expect(moved.Children).To(Equal([]string{c}))

			oldParent, err := s.Get(a)
			Expect(err).NotTo(HaveOccurred())
			Expect(oldParent.Children).To(BeEmpty())

			root, err := s.Get(rootID)
			Expect(err).NotTo(HaveOccurred())
			Expect(root.Children).To(Equal([]string{a, b}))

			Expect(s.Validate()).To(Succeed())
		})

		It("rejects moving a node under itself", func() {
			Expect(s.Move(a, a)).To(MatchError(tree.ErrCycleDetected))
		})

		It("rejects moving a node under its own descendant", func() {
			err := s.Move(a, c)
			Expect(err).To(MatchError(tree.ErrCycleDetected))

			// The rejected move left everything in place.
			unmoved, getErr := s.Get(a)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(unmoved.ParentID).To(Equal(rootID))
			Expect(s.Validate()).To(Succeed())
		})

		It("rejects moving the root", func() {
			Expect(s.Move(rootID, a)).To(MatchError(tree.ErrCycleDetected))
		})

		It("treats a move to the current parent as a no-op success", func() {
			before, err := s.Get(a)
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Move(b, a)).To(Succeed())

			after, err := s.Get(a)
			Expect(err).NotTo(HaveOccurred())
			Expect(after.Children).To(Equal(before.Children))
		})

		It("rejects unknown nodes and parents", func() {
			Expect(s.Move("nope", rootID)).To(MatchError(tree.ErrNodeNotFound))
			Expect(s.Move(a, "nope")).To(MatchError(tree.ErrParentNotFound))
		})
	})

	Describe("RemoveLeaf", func() {
		var rootID, a, b string

		BeforeEach(func() {
			var err error
			rootID, err = s.Create("root", "")
			Expect(err).NotTo(HaveOccurred())
			a, err = s.AddChild(rootID, "a", "")
			Expect(err).NotTo(HaveOccurred())
			b, err = s.AddChild(a, "b", "TODO: tidy up")
			Expect(err).NotTo(HaveOccurred())
		})

		It("removes a leaf and detaches it from its parent", func() {
			Expect(s.RemoveLeaf(b)).To(Succeed())

			_, err := s.Get(b)
			Expect(err).To(MatchError(tree.ErrNodeNotFound))

			parent, err := s.Get(a)
			Expect(err).NotTo(HaveOccurred())
			Expect(parent.Children).To(BeEmpty())
		})

		It("drops the removed node's markers from queries", func() {
			Expect(s.NodesWith(marker.TODO)).To(Equal([]string{b}))

			Expect(s.RemoveLeaf(b)).To(Succeed())

			Expect(s.NodesWith(marker.TODO)).To(BeEmpty())
		})

		It("rejects removing an interior node", func() {
			Expect(s.RemoveLeaf(a)).To(MatchError(tree.ErrNotALeaf))
		})

		It("rejects removing the root", func() {
			Expect(s.RemoveLeaf(b)).To(Succeed())
			Expect(s.RemoveLeaf(a)).To(Succeed())

			// Root is now a leaf, but still cannot be removed.
			Expect(s.RemoveLeaf(rootID)).To(MatchError(tree.ErrCannotRemoveRoot))
		})

		It("never reuses a removed id", func() {
			Expect(s.RemoveLeaf(b)).To(Succeed())

			for range 100 {
				id, err := s.AddChild(a, "fresh", "")
				Expect(err).NotTo(HaveOccurred())
				Expect(id).NotTo(Equal(b))
			}
		})
	})

	Describe("SetBody and SetTitle", func() {
		var rootID string

		BeforeEach(func() {
			var err error
			rootID, err = s.Create("root", "")
			Expect(err).NotTo(HaveOccurred())
		})

		It("updates the body and re-extracts markers", func() {
			Expect(s.SetBody(rootID, "Decision: ship it")).To(Succeed())

			markers, err := s.MarkersOf(rootID)
			Expect(err).NotTo(HaveOccurred())
			Expect(markers.Has(marker.Decision)).To(BeTrue())

			Expect(s.SetBody(rootID, "plain text now")).To(Succeed())

			markers, err = s.MarkersOf(rootID)
			Expect(err).NotTo(HaveOccurred())
			Expect(markers).To(BeEmpty())
		})

		It("updates the title", func() {
			Expect(s.SetTitle(rootID, "renamed")).To(Succeed())

			n, err := s.Get(rootID)
			Expect(err).NotTo(HaveOccurred())
			Expect(n.Title).To(Equal("renamed"))
		})

		It("bumps UpdatedAt but not CreatedAt", func() {
			before, err := s.Get(rootID)
			Expect(err).NotTo(HaveOccurred())

			Expect(s.SetTitle(rootID, "renamed")).To(Succeed())

			after, err := s.Get(rootID)
			Expect(err).NotTo(HaveOccurred())
			Expect(after.CreatedAt).To(Equal(before.CreatedAt))
			Expect(after.UpdatedAt).To(BeTemporally(">=", before.UpdatedAt))
		})

		It("rejects unknown nodes", func() {
			Expect(s.SetBody("nope", "x")).To(MatchError(tree.ErrNodeNotFound))
			Expect(s.SetTitle("nope", "x")).To(MatchError(tree.ErrNodeNotFound))
		})
	})

	Describe("Walk and Subtree", func() {
		var rootID, a, b, c string

		// root -> a -> c, root -> b
		BeforeEach(func() {
			var err error
			rootID, err = s.Create("root", "")
			Expect(err).NotTo(HaveOccurred())
			a, err = s.AddChild(rootID, "a", "")
			Expect(err).NotTo(HaveOccurred())
			b, err = s.AddChild(rootID, "b", "")
			Expect(err).NotTo(HaveOccurred())
			c, err = s.AddChild(a, "c", "")
			Expect(err).NotTo(HaveOccurred())
		})

		It("walks in pre-order with children in insertion order", func() {
			var order []string
			s.Walk(func(n *tree.Node) bool {
				order = append(order, n.ID)
				return true
			})
			Expect(order).To(Equal([]string{rootID, a, c, b}))
		})

		It("stops when the callback returns false", func() {
			var order []string
			s.Walk(func(n *tree.Node) bool {
				order = append(order, n.ID)
				return len(order) < 2
			})
			Expect(order).To(Equal([]string{rootID, a}))
		})

		It("yields a restartable pre-order sequence for a subtree", func() {
			seq, err := s.Subtree(a)
			Expect(err).NotTo(HaveOccurred())

			var first []string
			for n := range seq {
				first = append(first, n.ID)
			}
			Expect(first).To(Equal([]string{a, c}))

			// Ranging again restarts the traversal.
			var second []string
			for n := range seq {
				second = append(second, n.ID)
			}
			Expect(second).To(Equal(first))
		})

		It("rejects subtree queries for unknown nodes", func() {
			_, err := s.Subtree("nope")
			Expect(err).To(MatchError(tree.ErrNodeNotFound))
		})
	})

	Describe("NodesWith", func() {
		It("returns marked nodes in tree pre-order", func() {
			rootID, err := s.Create("root", "TODO: plan the day")
			Expect(err).NotTo(HaveOccurred())
			a, err := s.AddChild(rootID, "a", "")
			Expect(err).NotTo(HaveOccurred())
			c, err := s.AddChild(a, "c", "TODO: later")
			Expect(err).NotTo(HaveOccurred())
			b, err := s.AddChild(rootID, "b", "TODO: also later")
			Expect(err).NotTo(HaveOccurred())

			Expect(s.NodesWith(marker.TODO)).To(Equal([]string{rootID, c, b}))
			Expect(s.NodesWith(marker.Decision)).To(BeEmpty())
		})
	})

	Describe("Get", func() {
		It("returns a copy, not a live reference", func() {
			rootID, err := s.Create("root", "")
			Expect(err).NotTo(HaveOccurred())
			_, err = s.AddChild(rootID, "a", "")
			Expect(err).NotTo(HaveOccurred())

			n, err := s.Get(rootID)
			Expect(err).NotTo(HaveOccurred())
			n.Title = "tampered"
			n.Children[0] = "tampered"

			fresh, err := s.Get(rootID)
			Expect(err).NotTo(HaveOccurred())
			Expect(fresh.Title).To(Equal("root"))
			Expect(fresh.Children[0]).NotTo(Equal("tampered"))
		})
	})
})

var _ = Describe("Load", func() {
	ts := time.Date(2025, 8, 25, 9, 0, 0, 0, time.UTC)

	node := func(id, parent string, children ...string) *tree.Node {
		if children == nil {
			children = []string{}
		}
		return &tree.Node{
			ID:        id,
			Title:     "t-" + id,
			ParentID:  parent,
			Children:  children,
			CreatedAt: ts,
			UpdatedAt: ts,
		}
	}

	It("rebuilds a store preserving ids, edges, and timestamps", func() {
		s, err := tree.Load("p-20250825", []*tree.Node{
			node("r1", "", "c1", "c2"),
			node("c1", "r1"),
			node("c2", "r1"),
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(s.SessionID()).To(Equal("p-20250825"))
		Expect(s.RootID()).To(Equal("r1"))
		Expect(s.Len()).To(Equal(3))

		root, err := s.Get("r1")
		Expect(err).NotTo(HaveOccurred())
		Expect(root.Children).To(Equal([]string{"c1", "c2"}))
		Expect(root.CreatedAt).To(Equal(ts))
	})

	It("re-extracts markers instead of trusting the input", func() {
		n := node("r1", "")
		n.Body = "Decision: final"
		n.Markers = marker.NewSet(marker.TODO) // stale, should be ignored

		s, err := tree.Load("p", []*tree.Node{n})
		Expect(err).NotTo(HaveOccurred())

		markers, err := s.MarkersOf("r1")
		Expect(err).NotTo(HaveOccurred())
		Expect(markers.Kinds()).To(Equal([]marker.Kind{marker.Decision}))
	})

	It("rejects duplicate ids", func() {
		_, err := tree.Load("p", []*tree.Node{
			node("r1", "", "x"),
			node("x", "r1"),
			node("x", "r1"),
		})
		Expect(err).To(MatchError(tree.ErrCorruptedTree))
	})

	It("rejects multiple roots", func() {
		_, err := tree.Load("p", []*tree.Node{
			node("r1", ""),
			node("r2", ""),
		})
		Expect(err).To(MatchError(tree.ErrCorruptedTree))
	})

	It("rejects dangling parent references", func() {
		_, err := tree.Load("p", []*tree.Node{
			node("r1", "", "c1"),
			node("c1", "ghost"),
		})
		Expect(err).To(MatchError(tree.ErrCorruptedTree))
	})

	It("rejects a parent/child disagreement", func() {
		_, err := tree.Load("p", []*tree.Node{
			node("r1", ""),
			node("c1", "r1"), // r1 does not list c1
		})
		Expect(err).To(MatchError(tree.ErrCorruptedTree))
	})

	It("rejects a detached cycle", func() {
		_, err := tree.Load("p", []*tree.Node{
			node("r1", "", "a"),
			node("a", "r1"),
			node("b", "c", "c"),
			node("c", "b", "b"),
		})
		Expect(err).To(MatchError(tree.ErrCorruptedTree))
	})
})
