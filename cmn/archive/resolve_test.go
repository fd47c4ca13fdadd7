// Package archive_test: format chains, codecs, and containers
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package archive_test

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/NVIDIA/ouch/cmn/archive"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Resolve", func() {
	Describe("FromName", func() {
		DescribeTable("should resolve format chain by extensions",
			func(name string, kinds []archive.Kind, stem string) {
				chain, s, err := archive.FromName(name)
				Expect(err).NotTo(HaveOccurred())
				Expect(chain.Kinds()).To(Equal(kinds))
				Expect(s).To(Equal(stem))
			},
			Entry("tar.gz.xz", "a.tar.gz.xz", []archive.Kind{archive.Xz, archive.Gzip, archive.Tar}, "a"),
			Entry("tgz", "a.tgz", []archive.Kind{archive.Gzip, archive.Tar}, "a"),
			Entry("comic book zip", "photos.cbz", []archive.Kind{archive.Zip}, "photos"),
			Entry("bzip3 archive", "a.tar.bz3", []archive.Kind{archive.Bzip3, archive.Tar}, "a"),
			Entry("single codec", "notes.txt.zst", []archive.Kind{archive.Zstd}, "notes.txt"),
			Entry("upper case", "A.TAR.GZ", []archive.Kind{archive.Gzip, archive.Tar}, "A"),
			Entry("dotted stem", "v1.2.tar.gz", []archive.Kind{archive.Gzip, archive.Tar}, "v1.2"),
			Entry("with directory", "/tmp/x/data.7z", []archive.Kind{archive.SevenZip}, "data"),
			Entry("no extension", "README", []archive.Kind{}, "README"),
			Entry("unknown last extension", "a.tar.foo", []archive.Kind{}, "a.tar.foo"),
			Entry("extension only", ".gz", []archive.Kind{}, ".gz"),
		)

		It("should reject a container that is not the innermost", func() {
			_, _, err := archive.FromName("x.gz.tar")
			Expect(err).To(MatchError(archive.ErrMisplacedContainer))
			_, _, err = archive.FromName("x.zip.tar")
			Expect(err).To(MatchError(archive.ErrMisplacedContainer))
		})
	})

	Describe("ParseFormat", func() {
		It("should parse explicit formats", func() {
			chain, err := archive.ParseFormat("tar.gz")
			Expect(err).NotTo(HaveOccurred())
			Expect(chain.Kinds()).To(Equal([]archive.Kind{archive.Gzip, archive.Tar}))

			chain, err = archive.ParseFormat(".tzst")
			Expect(err).NotTo(HaveOccurred())
			Expect(chain.Kinds()).To(Equal([]archive.Kind{archive.Zstd, archive.Tar}))

			chain, err = archive.ParseFormat("gz.xz")
			Expect(err).NotTo(HaveOccurred())
			Expect(chain.Kinds()).To(Equal([]archive.Kind{archive.Xz, archive.Gzip}))
		})

		It("should fail on unknown tokens", func() {
			_, err := archive.ParseFormat("tar.foo")
			Expect(archive.IsErrUnknownExt(err)).To(BeTrue())
			_, err = archive.ParseFormat("")
			Expect(archive.IsErrUnknownExt(err)).To(BeTrue())
		})

		It("should fail on misplaced container", func() {
			_, err := archive.ParseFormat("gz.tar")
			Expect(err).To(MatchError(archive.ErrMisplacedContainer))
			Expect(archive.IsResolutionErr(err)).To(BeTrue())
		})
	})

	Describe("Chain", func() {
		It("should print in filename order", func() {
			chain := archive.NewChain(archive.Xz, archive.Gzip, archive.Tar)
			Expect(chain.String()).To(Equal("tar.gz.xz"))
			Expect(chain.Ext()).To(Equal(".tar.gz.xz"))
			Expect(chain.IsArchive()).To(BeTrue())
			Expect(chain.Streams().Kinds()).To(Equal([]archive.Kind{archive.Xz, archive.Gzip}))
		})

		It("should reject empty chains", func() {
			Expect(archive.Chain{}.Validate()).To(MatchError(archive.ErrEmptyChain))
		})

		It("should apply levels within codec ranges", func() {
			chain, err := archive.ParseFormat("tar.gz.xz")
			Expect(err).NotTo(HaveOccurred())
			leveled, err := chain.WithLevel(9)
			Expect(err).NotTo(HaveOccurred())
			for _, f := range leveled.Streams() {
				Expect(f.HasLevel).To(BeTrue())
				Expect(f.Level).To(Equal(9))
			}
			Expect(leveled[2].HasLevel).To(BeFalse())

			zst := archive.NewChain(archive.Zstd)
			_, err = zst.WithLevel(23)
			Expect(archive.IsErrLevelOutOfRange(err)).To(BeTrue())

			bz2 := archive.NewChain(archive.Bzip2)
			_, err = bz2.WithLevel(0)
			Expect(archive.IsErrLevelOutOfRange(err)).To(BeTrue())
		})

		It("should map presets to codec-specific levels", func() {
			chain := archive.NewChain(archive.Zstd, archive.Tar)
			Expect(chain.WithPreset(archive.PresetFastest)[0].Level).To(Equal(1))
			Expect(chain.WithPreset(archive.PresetBest)[0].Level).To(Equal(22))
			Expect(chain.WithPreset(archive.PresetNone)[0].HasLevel).To(BeFalse())

			br := archive.NewChain(archive.Brotli).WithPreset(archive.PresetBest)
			Expect(br[0].Level).To(Equal(11))
		})
	})

	Describe("Output names", func() {
		It("should require known extensions", func() {
			_, err := archive.ForOutput("out")
			Expect(archive.IsErrUnknownExt(err)).To(BeTrue())
			chain, err := archive.ForOutput("out.tar.lz4")
			Expect(err).NotTo(HaveOccurred())
			Expect(chain.Kinds()).To(Equal([]archive.Kind{archive.Lz4, archive.Tar}))
		})

		It("should suggest archive names", func() {
			Expect(archive.SuggestArchiveName(filepath.Join("dir", "x.bz.xz"))).To(Equal(filepath.Join("dir", "x.tar.bz.xz")))
			Expect(archive.SuggestArchiveName("x.tar.gz")).To(BeEmpty())
			Expect(archive.SuggestArchiveName("x.txt")).To(BeEmpty())
		})

		It("should list supported extensions", func() {
			exts := archive.SupportedExtensions()
			Expect(slices.IsSorted(exts)).To(BeTrue())
			Expect(exts).To(ContainElements("tar", "tgz", "zip", "7z", "rar", "zst", "br", "sz"))
		})
	})

	Describe("ResolveInput", func() {
		var (
			dir     string
			gzBytes = []byte{0x1f, 0x8b, 0x08, 0, 0, 0, 0, 0, 0, 0xff}
			yes     = func(*archive.SniffQuestion) bool { return true }
			no      = func(*archive.SniffQuestion) bool { return false }
		)
		BeforeEach(func() {
			dir = GinkgoT().TempDir()
		})

		It("should sniff files with no extension upon confirmation", func() {
			path := filepath.Join(dir, "blob")
			Expect(os.WriteFile(path, gzBytes, 0o644)).To(Succeed())

			var asked *archive.SniffQuestion
			chain, stem, err := archive.ResolveInput(path, func(q *archive.SniffQuestion) bool {
				asked = q
				return true
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(chain.Kinds()).To(Equal([]archive.Kind{archive.Gzip}))
			Expect(stem).To(Equal("blob"))
			Expect(asked).NotTo(BeNil())
			Expect(asked.ByExt).To(BeEmpty())

			_, _, err = archive.ResolveInput(path, no)
			Expect(err).To(MatchError(archive.ErrDeclined))
			_, _, err = archive.ResolveInput(path, nil)
			Expect(err).To(MatchError(archive.ErrDeclined))
		})

		It("should ask when the extension disagrees with the content", func() {
			path := filepath.Join(dir, "data.zst")
			Expect(os.WriteFile(path, gzBytes, 0o644)).To(Succeed())

			_, _, err := archive.ResolveInput(path, no)
			Expect(err).To(MatchError(archive.ErrDeclined))

			chain, stem, err := archive.ResolveInput(path, yes)
			Expect(err).NotTo(HaveOccurred())
			Expect(chain.Kinds()).To(Equal([]archive.Kind{archive.Zstd}))
			Expect(stem).To(Equal("data"))
		})

		It("should fail on unrecognized content without extension", func() {
			path := filepath.Join(dir, "plain")
			Expect(os.WriteFile(path, []byte("hello world"), 0o644)).To(Succeed())
			_, _, err := archive.ResolveInput(path, yes)
			Expect(archive.IsErrUnknownExt(err)).To(BeTrue())
		})
	})

	Describe("DetectBytes", func() {
		DescribeTable("should recognize signatures",
			func(header []byte, kind archive.Kind) {
				chain := archive.DetectBytes(header)
				Expect(chain).To(HaveLen(1))
				Expect(chain[0].Kind).To(Equal(kind))
			},
			Entry("zip", []byte("PK\x03\x04rest"), archive.Zip),
			Entry("bzip2", []byte("BZh91AY&SY"), archive.Bzip2),
			Entry("bzip3", []byte("BZ3v1\x00"), archive.Bzip3),
			Entry("xz", []byte{0xfd, '7', 'z', 'X', 'Z', 0, 0}, archive.Xz),
			Entry("zstd", []byte{0x28, 0xb5, 0x2f, 0xfd, 0}, archive.Zstd),
			Entry("lz4", []byte{0x04, 0x22, 0x4d, 0x18, 0}, archive.Lz4),
			Entry("rar5", []byte{0x52, 0x61, 0x72, 0x21, 0x1a, 0x07, 0x01, 0x00}, archive.Rar),
			Entry("7z", []byte{'7', 'z', 0xbc, 0xaf, 0x27, 0x1c, 0, 4}, archive.SevenZip),
		)

		It("should not detect plain text", func() {
			Expect(archive.DetectBytes([]byte("just some text"))).To(BeNil())
		})
	})
})
