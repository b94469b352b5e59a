package mcp_test

import (
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opsbrain/dtree/api/mcp"
	"github.com/opsbrain/dtree/pkg/logger"
	"github.com/opsbrain/dtree/pkg/session"
)

var _ = Describe("MCP Server", func() {
	var (
		tmpDir  string
		manager *session.Manager
		server  *mcp.Server
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "mcp-test-*")
		Expect(err).NotTo(HaveOccurred())

		manager = session.NewManager(session.Config{
			Project:     "myproject",
			StorageRoot: tmpDir,
		}, logger.Nop())

		server, err = mcp.NewServer(mcp.Config{
			Manager: manager,
			Logger:  logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("NewServer", func() {
		It("returns an error when the session manager is nil", func() {
			_, err := mcp.NewServer(mcp.Config{
				Logger: logger.Nop(),
			})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("session manager is required"))
		})

		It("returns an error when the logger is nil", func() {
			_, err := mcp.NewServer(mcp.Config{
				Manager: manager,
			})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("logger is required"))
		})

		It("creates a server with valid config", func() {
			Expect(server).NotTo(BeNil())
		})
	})
})
