package document_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papyrusco/tome/pkg/document"
)

var _ = Describe("SupportedExtensions", func() {
	It("lists registered extensions in sorted order", func() {
		Expect(document.SupportedExtensions()).To(Equal([]string{".md", ".txt"}))
	})
})

var _ = Describe("LoaderFor", func() {
	It("rejects an unregistered extension", func() {
		_, err := document.LoaderFor("report.pdf")
		Expect(err).To(MatchError(document.ErrUnsupportedType))
	})

	It("matches extensions case-insensitively", func() {
		_, err := document.LoaderFor("NOTES.TXT")
		Expect(err).NotTo(HaveOccurred())
	})
})

var _ = Describe("Load", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "tome-document-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(tmpDir)
		})
	})

	It("loads a text file verbatim with line count metadata", func() {
		path := filepath.Join(tmpDir, "notes.txt")
		Expect(os.WriteFile(path, []byte("line one\nline two\nline three"), 0o644)).To(Succeed())

		doc, err := document.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Text).To(Equal("line one\nline two\nline three"))
		Expect(doc.Metadata["source"]).To(Equal(path))
		Expect(doc.Metadata["filename"]).To(Equal("notes.txt"))
		Expect(doc.Metadata["type"]).To(Equal("txt"))
		Expect(doc.Metadata["line_count"]).To(Equal(3))
	})

	It("loads a markdown file verbatim with heading count metadata", func() {
		path := filepath.Join(tmpDir, "guide.md")
		content := "# Title\n\nIntro paragraph.\n\n## Section\n\nBody text.\n"
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())

		doc, err := document.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Text).To(Equal(content))
		Expect(doc.Metadata["type"]).To(Equal("md"))
		Expect(doc.Metadata["heading_count"]).To(Equal(2))
	})

	It("wraps read failures in ErrLoad", func() {
		_, err := document.Load(filepath.Join(tmpDir, "missing.txt"))
		Expect(err).To(MatchError(document.ErrLoad))
	})

	It("rejects unsupported files before touching the disk", func() {
		_, err := document.Load(filepath.Join(tmpDir, "archive.zip"))
		Expect(err).To(MatchError(document.ErrUnsupportedType))
	})
})
